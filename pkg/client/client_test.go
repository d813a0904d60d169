package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient_LoginStoresTokensAndAttachesBearer(t *testing.T) {
	api := newFakeAPI()
	c := newTestClient(t, api, nil)

	result, err := c.Login(context.Background(), "a@x.com", "secret123")
	require.NoError(t, err)
	require.Equal(t, "a@x.com", result.User.Email)

	tokens, ok := c.TokenStore().Tokens()
	require.True(t, ok)
	require.Equal(t, Tokens{AccessToken: "access-1", RefreshToken: "refresh-1"}, tokens)

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, "u1", me.ID)
	require.Equal(t, "Bearer access-1", api.lastAuthorization())
	require.Zero(t, api.refreshCount())
}

func TestClient_RefreshesOnceAndReplays(t *testing.T) {
	api := newFakeAPI()
	c := newTestClient(t, api, nil)
	_, err := c.Login(context.Background(), "a@x.com", "secret123")
	require.NoError(t, err)

	api.expireAccess()

	portfolios, err := c.ListPortfolios(context.Background())
	require.NoError(t, err)
	require.Len(t, portfolios, 1)
	require.Equal(t, 1, api.refreshCount())
	require.Equal(t, "Bearer access-2", api.lastAuthorization())

	tokens, _ := c.TokenStore().Tokens()
	require.Equal(t, Tokens{AccessToken: "access-2", RefreshToken: "refresh-2"}, tokens)
}

func TestClient_RefreshFailureRequiresLogin(t *testing.T) {
	api := newFakeAPI()
	api.refreshDisabled = true
	var hookCalls atomic.Int32
	c := newTestClient(t, api, func() { hookCalls.Add(1) })
	_, err := c.Login(context.Background(), "a@x.com", "secret123")
	require.NoError(t, err)

	api.expireAccess()

	_, err = c.Me(context.Background())
	require.ErrorIs(t, err, ErrSessionExpired)
	require.Equal(t, int32(1), hookCalls.Load())
	require.Equal(t, 1, api.refreshCount())

	_, ok := c.TokenStore().Tokens()
	require.False(t, ok)
}

func TestClient_NeverRefreshesTwicePerRequest(t *testing.T) {
	api := newFakeAPI()
	c := newTestClient(t, api, nil)
	_, err := c.Login(context.Background(), "a@x.com", "secret123")
	require.NoError(t, err)

	api.setRejectAll(true)

	_, err = c.Me(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "invalid_token", apiErr.Code)
	require.Equal(t, 1, api.refreshCount())
}

func TestClient_LoginFailureDoesNotRefresh(t *testing.T) {
	api := newFakeAPI()
	var hookCalls atomic.Int32
	c := newTestClient(t, api, func() { hookCalls.Add(1) })

	_, err := c.Login(context.Background(), "a@x.com", "wrong-password")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "invalid_credentials", apiErr.Code)
	require.Equal(t, "invalid email or password", apiErr.Message)
	require.Zero(t, api.refreshCount())
	require.Zero(t, hookCalls.Load())
}

func TestClient_ConcurrentCallsShareOneRefresh(t *testing.T) {
	api := newFakeAPI()
	c := newTestClient(t, api, nil)
	_, err := c.Login(context.Background(), "a@x.com", "secret123")
	require.NoError(t, err)

	api.expireAccess()

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Me(context.Background())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, 1, api.refreshCount())
}

func TestClient_LogoutClearsStore(t *testing.T) {
	api := newFakeAPI()
	c := newTestClient(t, api, nil)
	_, err := c.Login(context.Background(), "a@x.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, c.Logout(context.Background()))
	_, ok := c.TokenStore().Tokens()
	require.False(t, ok)
}

func TestClient_DeletePortfolioNoContent(t *testing.T) {
	api := newFakeAPI()
	c := newTestClient(t, api, nil)
	_, err := c.Login(context.Background(), "a@x.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, c.DeletePortfolio(context.Background(), "p1"))

	err = c.DeletePortfolio(context.Background(), "someone-elses")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestNew_RejectsEmptyBaseURL(t *testing.T) {
	_, err := New("  ")
	require.Error(t, err)
}

func newTestClient(t *testing.T, api *fakeAPI, onLoginRequired func()) *Client {
	t.Helper()
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)
	c, err := New(server.URL, WithLoginRequired(onLoginRequired))
	require.NoError(t, err)
	return c
}

// fakeAPI imitates the auth contract: login issues access-1/refresh-1, one
// refresh rotates to access-2/refresh-2, and protected routes accept only
// the current access token.
type fakeAPI struct {
	mu              sync.Mutex
	validAccess     string
	refreshCalls    int
	refreshDisabled bool
	rejectAll       bool
	authorization   string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{}
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method + " " + r.URL.Path {
	case "POST /auth/login":
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["password"] != "secret123" {
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
			return
		}
		f.mu.Lock()
		f.validAccess = "access-1"
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{
			"accessToken":  "access-1",
			"refreshToken": "refresh-1",
			"user":         map[string]string{"id": "u1", "email": req["email"]},
		})
	case "POST /auth/refresh":
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.refreshCalls++
		ok := !f.refreshDisabled && req["refreshToken"] == "refresh-1"
		if ok {
			f.validAccess = "access-2"
		}
		f.mu.Unlock()
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid_refresh_token", "Invalid refresh token")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"message":      "Tokens refreshed successfully",
			"accessToken":  "access-2",
			"refreshToken": "refresh-2",
		})
	case "POST /auth/logout":
		writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
	default:
		if !f.authorized(r) {
			writeError(w, http.StatusUnauthorized, "invalid_token", "Invalid token")
			return
		}
		switch r.Method + " " + r.URL.Path {
		case "GET /auth/me":
			writeJSON(w, http.StatusOK, map[string]string{"id": "u1", "email": "a@x.com"})
		case "GET /portfolios":
			writeJSON(w, http.StatusOK, []map[string]string{{"id": "p1", "userId": "u1"}})
		case "DELETE /portfolios/p1":
			w.WriteHeader(http.StatusNoContent)
		default:
			writeError(w, http.StatusNotFound, "not_found", "portfolio not found")
		}
	}
}

func (f *fakeAPI) authorized(r *http.Request) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authorization = r.Header.Get("Authorization")
	return !f.rejectAll && f.validAccess != "" && f.authorization == "Bearer "+f.validAccess
}

func (f *fakeAPI) expireAccess() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validAccess = "expired"
}

func (f *fakeAPI) setRejectAll(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejectAll = v
}

func (f *fakeAPI) refreshCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls
}

func (f *fakeAPI) lastAuthorization() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authorization
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]map[string]string{"error": {"code": code, "message": message}})
}
