package apiclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborvest/arborvest-go/pkg/apiclient"
	"github.com/arborvest/arborvest-go/pkg/credentials"
)

func writeEnvelope(w http.ResponseWriter, status int, success bool, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": success,
		"data":    data,
		"message": message,
	})
}

func newClient(t *testing.T, handler http.Handler, opts ...apiclient.Option) (*apiclient.Client, *credentials.MemoryStore) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := credentials.NewMemoryStore()
	client, err := apiclient.New(server.URL, store, opts...)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return client, store
}

func TestClient_Do_SuccessUnwrapsData(t *testing.T) {
	t.Parallel()

	router := chi.NewRouter()
	router.Get("/auth/profile", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		writeEnvelope(w, http.StatusOK, true, map[string]string{"email": "a@b.com"}, "")
	})

	client, store := newClient(t, router)
	require.NoError(t, store.Set(context.Background(), "tok-1"))

	resp, err := client.Do(context.Background(), apiclient.Request{
		Method: http.MethodGet,
		Path:   "/auth/profile",
	})
	require.NoError(t, err)
	require.True(t, resp.OK)
	assert.Equal(t, apiclient.KindNone, resp.Kind)

	var payload struct {
		Email string `json:"email"`
	}
	require.NoError(t, resp.DecodeData(&payload))
	assert.Equal(t, "a@b.com", payload.Email)
}

func TestClient_Do_DispatchesUnauthenticatedWithoutCredential(t *testing.T) {
	t.Parallel()

	router := chi.NewRouter()
	router.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		writeEnvelope(w, http.StatusOK, true, nil, "")
	})

	client, _ := newClient(t, router)

	resp, err := client.Do(context.Background(), apiclient.Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   map[string]string{"email": "a@b.com", "password": "pw"},
	})
	require.NoError(t, err)
	assert.True(t, resp.OK)
}

func TestClient_Do_UnauthorizedClearsStoreAndPublishes(t *testing.T) {
	t.Parallel()

	router := chi.NewRouter()
	router.Get("/auth/profile", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, false, nil, "token expired")
	})

	client, store := newClient(t, router)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "dead-token"))

	events := client.Invalidations().Subscribe(ctx)

	resp, err := client.Do(ctx, apiclient.Request{Method: http.MethodGet, Path: "/auth/profile"})
	require.NoError(t, err)
	assert.False(t, resp.OK)
	assert.Equal(t, apiclient.KindUnauthorized, resp.Kind)
	assert.Equal(t, "token expired", resp.Message)

	// The side effects land before Do returns: store already empty,
	// invalidation already buffered.
	_, getErr := store.Get(ctx)
	assert.ErrorIs(t, getErr, credentials.ErrNoCredential)

	select {
	case ev := <-events:
		assert.Equal(t, "/auth/profile", ev.Path)
		assert.Equal(t, "token expired", ev.Message)
	default:
		t.Fatal("invalidation was not published before Do returned")
	}
}

func TestClient_Do_ClassifiesFailureKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      int
		message     string
		wantKind    apiclient.ErrorKind
		wantMessage string
	}{
		{
			name:        "rate limited",
			status:      http.StatusTooManyRequests,
			message:     "slow down",
			wantKind:    apiclient.KindRateLimited,
			wantMessage: "slow down",
		},
		{
			name:     "server error",
			status:   http.StatusInternalServerError,
			wantKind: apiclient.KindServerError,
		},
		{
			name:     "bad gateway",
			status:   http.StatusBadGateway,
			wantKind: apiclient.KindServerError,
		},
		{
			name:        "validation rejection keeps server wording",
			status:      http.StatusUnprocessableEntity,
			message:     "Invalid credentials",
			wantKind:    apiclient.KindRequestRejected,
			wantMessage: "Invalid credentials",
		},
		{
			name:     "forbidden is a rejection, not an invalidation",
			status:   http.StatusForbidden,
			message:  "account locked",
			wantKind: apiclient.KindRequestRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := chi.NewRouter()
			router.Post("/op", func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, tt.status, false, nil, tt.message)
			})

			client, store := newClient(t, router)
			ctx := context.Background()
			require.NoError(t, store.Set(ctx, "tok"))

			resp, err := client.Do(ctx, apiclient.Request{Method: http.MethodPost, Path: "/op"})
			require.NoError(t, err)
			assert.False(t, resp.OK)
			assert.Equal(t, tt.wantKind, resp.Kind)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, resp.Message)
			} else {
				assert.NotEmpty(t, resp.Message, "generic fallback message expected")
			}

			// Only Unauthorized mutates the store.
			got, getErr := store.Get(ctx)
			require.NoError(t, getErr)
			assert.Equal(t, "tok", got)
		})
	}
}

func TestClient_Do_BusinessFailureOn2xx(t *testing.T) {
	t.Parallel()

	router := chi.NewRouter()
	router.Post("/auth/signup", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, false, nil, "email already registered")
	})

	client, _ := newClient(t, router)

	resp, err := client.Do(context.Background(), apiclient.Request{Method: http.MethodPost, Path: "/auth/signup"})
	require.NoError(t, err)
	assert.False(t, resp.OK)
	assert.Equal(t, apiclient.KindRequestRejected, resp.Kind)
	assert.Equal(t, "email already registered", resp.Message)
}

func TestClient_Do_MalformedEnvelopeIsServerError(t *testing.T) {
	t.Parallel()

	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))

	resp, err := client.Do(context.Background(), apiclient.Request{Method: http.MethodGet, Path: "/x"})
	require.NoError(t, err)
	assert.False(t, resp.OK)
	assert.Equal(t, apiclient.KindServerError, resp.Kind)
}

func TestClient_Do_TransportFailureIsNetworkError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	store := credentials.NewMemoryStore()
	client, err := apiclient.New(server.URL, store)
	require.NoError(t, err)
	defer client.Close()

	// Kill the server so the dial fails outright.
	server.Close()

	resp, err := client.Do(context.Background(), apiclient.Request{Method: http.MethodGet, Path: "/x"})
	require.NoError(t, err, "transport failures settle into the envelope, never escape as errors")
	assert.False(t, resp.OK)
	assert.Equal(t, apiclient.KindNetworkError, resp.Kind)
	assert.NotEmpty(t, resp.Message)
}

func TestClient_Do_TimeoutIsNetworkError(t *testing.T) {
	t.Parallel()

	router := chi.NewRouter()
	router.Get("/slow", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		writeEnvelope(w, http.StatusOK, true, nil, "")
	})

	client, _ := newClient(t, router, apiclient.WithTimeout(20*time.Millisecond))

	resp, err := client.Do(context.Background(), apiclient.Request{Method: http.MethodGet, Path: "/slow"})
	require.NoError(t, err)
	assert.Equal(t, apiclient.KindNetworkError, resp.Kind)
}

func TestClient_Do_RejectsMalformedRequests(t *testing.T) {
	t.Parallel()

	client, _ := newClient(t, chi.NewRouter())

	_, err := client.Do(context.Background(), apiclient.Request{Method: http.MethodGet, Path: "no-slash"})
	assert.ErrorIs(t, err, apiclient.ErrInvalidRequest)

	_, err = client.Do(context.Background(), apiclient.Request{
		Method: http.MethodPost,
		Path:   "/x",
		Body:   make(chan int), // not JSON-marshalable
	})
	assert.ErrorIs(t, err, apiclient.ErrInvalidRequest)
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := apiclient.New("https://api.example.com", nil)
	assert.ErrorIs(t, err, apiclient.ErrNoCredentialStore)

	_, err = apiclient.New("ftp://api.example.com", credentials.NewMemoryStore())
	assert.ErrorIs(t, err, apiclient.ErrInvalidBaseURL)

	_, err = apiclient.New("https://", credentials.NewMemoryStore())
	assert.ErrorIs(t, err, apiclient.ErrInvalidBaseURL)
}
