package dashboard

import "errors"

var (
	ErrReadOnlyModal   = errors.New("station modal is read only")
	ErrModalClosed     = errors.New("station modal is not open")
	ErrNoPendingDelete = errors.New("no station deletion awaiting confirmation")
)
