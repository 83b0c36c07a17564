package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/custodia-labs/dorcas-auth/internal/core/domain"
	"github.com/custodia-labs/dorcas-auth/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/dorcas-auth/internal/core/services"
)

// fakeDorcas is an in-memory identity service behind the mock client
type fakeDorcas struct {
	mu        sync.Mutex
	users     map[string]map[string]any
	owners    map[domain.BearerToken]string
	remember  map[string]string
	failPut   bool
	transport error
}

func (f *fakeDorcas) send(_ context.Context, req domain.RemoteRequest) (*domain.NormalizedResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.transport != nil {
		return nil, f.transport
	}

	if req.Path == "me" {
		id, ok := f.owners[req.AuthToken]
		if !ok {
			return mocks.Failure(http.StatusUnauthorized), nil
		}
		return mocks.Success(f.users[id], nil), nil
	}

	id := strings.TrimPrefix(req.Path, "users/")
	user, ok := f.users[id]
	if !ok {
		return mocks.Failure(http.StatusNotFound), nil
	}

	switch req.Method {
	case http.MethodPut:
		if f.failPut {
			return mocks.Failure(http.StatusInternalServerError), nil
		}
		f.remember[id], _ = req.Body["token"].(string)
		return mocks.Success(user, nil), nil
	default:
		if v := req.Query.Get("value"); v != "" && f.remember[id] != v {
			return mocks.Failure(http.StatusNotFound), nil
		}
		return mocks.Success(user, nil), nil
	}
}

type testEnv struct {
	server  *Server
	dorcas  *fakeDorcas
	client  *mocks.MockIdentityClient
	cache   *mocks.MockTokenCache
	signer  *mocks.MockAuthAdapter
	cookies *CookieQueue
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	dorcas := &fakeDorcas{
		users: map[string]map[string]any{
			"42": {"id": "42", "email": "jane@example.com", "password": "secret-hash"},
		},
		owners:   map[domain.BearerToken]string{"tok123": "42"},
		remember: map[string]string{},
	}

	client := mocks.NewMockIdentityClient()
	client.SendFn = dorcas.send

	exchanger := mocks.NewMockCredentialExchanger()
	exchanger.AddAccount("jane@example.com", "pw", "tok123")

	signer := mocks.NewMockAuthAdapter()
	cookies := NewCookieQueue(signer, false, logger)
	cache := mocks.NewMockTokenCache()

	users := services.NewUserProvider(services.UserProviderConfig{
		Client:    client,
		Exchanger: exchanger,
		Cache:     cache,
		Cookies:   cookies,
		Verifier:  signer,
		Logger:    logger,
	})

	server := NewServer(Config{Version: "1.2.3", ExposeToken: true}, Deps{
		Users:   users,
		Cookies: cookies,
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("# metrics\n"))
		}),
		Logger: logger,
	})

	return &testEnv{
		server:  server,
		dorcas:  dorcas,
		client:  client,
		cache:   cache,
		signer:  signer,
		cookies: cookies,
	}
}

func (e *testEnv) do(method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

// signedCookie builds a cookie as the queue would have set it
func (e *testEnv) signedCookie(t *testing.T, name, value string) *http.Cookie {
	t.Helper()
	signed, err := e.signer.SignCookie(name, value, domain.TokenTTL)
	if err != nil {
		t.Fatalf("failed to sign cookie: %v", err)
	}
	return &http.Cookie{Name: name, Value: signed}
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
