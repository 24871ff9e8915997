package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/elzpil/bookclub/internal/authtoken"
	"github.com/elzpil/bookclub/internal/ratelimit"
	"github.com/elzpil/bookclub/pkg/domain"
	"github.com/elzpil/bookclub/services/users/internal/app"
	"github.com/elzpil/bookclub/services/users/internal/store"
)

func newTestServer(t *testing.T, limiter *ratelimit.FixedWindowLimiter) *httptest.Server {
	t.Helper()
	tokens := authtoken.New("test-secret", time.Hour)
	appCore, err := app.New(app.Config{Store: store.NewMemoryStore(), Tokens: tokens})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	srv := New(Config{App: appCore, Tokens: tokens, Limiter: limiter})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func registerUser(t *testing.T, base, email, username string) (domain.User, string) {
	t.Helper()
	resp := postJSON(t, base+"/users/create", map[string]string{
		"email":    email,
		"username": username,
		"password": "password123",
		"name":     "Test User",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status: %d", resp.StatusCode)
	}
	var body struct {
		Token string      `json:"token"`
		User  domain.User `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return body.User, body.Token
}

func TestRegisterLoginAndFetch(t *testing.T) {
	ts := newTestServer(t, nil)
	user, token := registerUser(t, ts.URL, "alice@example.com", "alice")

	resp := postJSON(t, ts.URL+"/users/login", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status: %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/users/"+user.ID, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	getResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	defer getResp.Body.Close()
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("get user status: %d", getResp.StatusCode)
	}
	var fetched domain.User
	if err := json.NewDecoder(getResp.Body).Decode(&fetched); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if fetched.ID != user.ID {
		t.Fatalf("fetched wrong user: %s", fetched.ID)
	}
	if fetched.PasswordHash != "" {
		t.Fatalf("password hash must never be serialized")
	}
}

func TestLoginFailureReadsAs401(t *testing.T) {
	ts := newTestServer(t, nil)
	registerUser(t, ts.URL, "alice@example.com", "alice")

	resp := postJSON(t, ts.URL+"/users/login", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad credentials should read 401, got %d", resp.StatusCode)
	}
}

func TestAuthenticatedRoutesRejectMissingToken(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/users")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestExistsProbeIsPublic(t *testing.T) {
	ts := newTestServer(t, nil)
	user, _ := registerUser(t, ts.URL, "alice@example.com", "alice")

	resp, err := http.Get(ts.URL + "/users/exists/" + user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("known user should read 200, got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/users/exists/ghost")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown user should read 404, got %d", resp.StatusCode)
	}
}

func TestRegistrationRateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	limiter, err := ratelimit.NewRedisFixedWindowLimiter(mr.Addr(), "", "test:users", 1, time.Minute)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	ts := newTestServer(t, limiter)

	registerUser(t, ts.URL, "alice@example.com", "alice")
	resp := postJSON(t, ts.URL+"/users/create", map[string]string{
		"email":    "bob@example.com",
		"username": "bob",
		"password": "password123",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
}

func TestDuplicateRegistrationConflicts(t *testing.T) {
	ts := newTestServer(t, nil)
	registerUser(t, ts.URL, "alice@example.com", "alice")

	resp := postJSON(t, ts.URL+"/users/create", map[string]string{
		"email":    "alice@example.com",
		"username": "alice",
		"password": "password123",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Code != "USER_CONFLICT" {
		t.Fatalf("unexpected error code: %s", body.Code)
	}
}
