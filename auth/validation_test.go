package auth_test

import (
	"testing"

	"github.com/jrsteele09/go-station-dashboard/auth"
	apperrors "github.com/jrsteele09/go-station-dashboard/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestValidator(t *testing.T) {
	v := auth.NewValidator()

	t.Run("login", func(t *testing.T) {
		require.NoError(t, v.ValidateLogin(" ana@example.com ", "x"))
		require.ErrorIs(t, v.ValidateLogin("ana@example.com", "   "), apperrors.ErrValidation)
		require.Equal(t, "Please enter a valid email", apperrors.UserMessage(v.ValidateLogin("ana@", "x")))
	})

	t.Run("new password", func(t *testing.T) {
		require.NoError(t, v.ValidateNewPassword("Secret12!", "Secret12!"))
		require.NoError(t, v.ValidateNewPassword("Secret12!", ""))

		err := v.ValidateNewPassword("Secret12!", "Secret12?")
		var ve *apperrors.ValidationError
		require.ErrorAs(t, err, &ve)
		require.Equal(t, "confirm_password", ve.Field)
	})

	t.Run("reset code", func(t *testing.T) {
		require.NoError(t, v.ValidateResetCode(" 123456 "))
		require.Equal(t, "Please enter the recovery code", apperrors.UserMessage(v.ValidateResetCode("")))
		require.Equal(t, "Incorrect recovery code", apperrors.UserMessage(v.ValidateResetCode("12345")))
	})
}
