package stations_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-station-dashboard/internal/errors"
	"github.com/jrsteele09/go-station-dashboard/internal/storage/kv"
	"github.com/jrsteele09/go-station-dashboard/stations"
	"github.com/jrsteele09/go-station-dashboard/stations/mockapi"
	"github.com/stretchr/testify/require"
)

func newMockServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(mockapi.NewCollection(kv.NewMemory()).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func testStation() stations.Station {
	return stations.Station{
		Name:               "Test",
		Location:           "X",
		Status:             stations.StatusActive,
		Latitude:           stations.NewNumber(10),
		Longitude:          stations.NewNumber(20),
		Type:               "Principal",
		CurrentTemperature: stations.NewNumber(15),
	}
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := stations.NewClient("not a url")
	require.Error(t, err)
	_, err = stations.NewClient("")
	require.Error(t, err)
}

func TestTimeoutLeavesSharedHTTPClientAlone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	shared := &http.Client{Timeout: time.Minute}
	client, err := stations.NewClient(srv.URL, stations.WithHTTPClient(shared), stations.WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	_, err = client.List(context.Background())
	require.Error(t, err)
	require.Equal(t, time.Minute, shared.Timeout)
}

func TestClientCRUD(t *testing.T) {
	ctx := context.Background()
	srv := newMockServer(t)

	client, err := stations.NewClient(srv.URL + "/")
	require.NoError(t, err)

	list, err := client.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)

	in := testStation()
	in.ID = "client-side-id"
	created, err := client.Create(ctx, in)
	require.NoError(t, err)
	require.Equal(t, "1", created.ID)
	require.Equal(t, "Test", created.Name)

	upd := created
	upd.Status = stations.StatusMaintenance
	updated, err := client.Update(ctx, created.ID, upd)
	require.NoError(t, err)
	require.Equal(t, stations.StatusMaintenance, updated.Status)

	list, err = client.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, client.Delete(ctx, created.ID))

	err = client.Delete(ctx, created.ID)
	require.ErrorIs(t, err, apperrors.ErrNetwork)
	var ne *apperrors.NetworkError
	require.ErrorAs(t, err, &ne)
	require.Equal(t, http.StatusNotFound, ne.StatusCode)

	_, err = client.Update(ctx, "", upd)
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client, err := stations.NewClient(srv.URL, stations.WithToken("s3cret"))
	require.NoError(t, err)
	_, err = client.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer s3cret", gotAuth)
}

func TestClientFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("non 2xx", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		client, err := stations.NewClient(srv.URL)
		require.NoError(t, err)

		_, err = client.Create(ctx, testStation())
		require.ErrorIs(t, err, apperrors.ErrNetwork)
		require.Contains(t, err.Error(), "503")
	})

	t.Run("garbage body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}))
		defer srv.Close()

		client, err := stations.NewClient(srv.URL)
		require.NoError(t, err)
		_, err = client.List(ctx)
		require.ErrorIs(t, err, apperrors.ErrNetwork)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		client, err := stations.NewClient(url, stations.WithTimeout(time.Second))
		require.NoError(t, err)
		_, err = client.List(ctx)
		require.ErrorIs(t, err, apperrors.ErrNetwork)
	})
}

func TestListWithFallback(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := stations.NewClient(srv.URL, stations.WithNowTime(func() time.Time { return now }))
	require.NoError(t, err)

	list, fallback := client.ListWithFallback(ctx)
	require.True(t, fallback)
	require.Len(t, list, 2)
	require.Equal(t, "1", list[0].ID)
	require.Equal(t, "Central Station", list[0].Name)
	require.Equal(t, "2", list[1].ID)
	require.Equal(t, "North Station", list[1].Name)
	require.Equal(t, "2024-06-01T12:00:00Z", list[0].LastReading)

	ok := newMockServer(t)
	client, err = stations.NewClient(ok.URL)
	require.NoError(t, err)
	list, fallback = client.ListWithFallback(ctx)
	require.False(t, fallback)
	require.Empty(t, list)
}
