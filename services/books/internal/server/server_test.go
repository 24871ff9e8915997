package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/elzpil/bookclub/internal/authtoken"
	"github.com/elzpil/bookclub/pkg/domain"
	"github.com/elzpil/bookclub/services/books/internal/app"
	"github.com/elzpil/bookclub/services/books/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *authtoken.Manager) {
	t.Helper()
	tokens := authtoken.New("test-secret", time.Hour)
	appCore, err := app.New(app.Config{Store: store.NewMemoryStore()})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	srv := New(Config{App: appCore, Tokens: tokens})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, tokens
}

func bearerFor(t *testing.T, tokens *authtoken.Manager, userID string, role domain.UserRole) string {
	t.Helper()
	token, err := tokens.Issue(userID, userID, role)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + token
}

func doJSON(t *testing.T, method, url, auth string, payload any) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func createBook(t *testing.T, ts *httptest.Server, auth, title string) domain.Book {
	t.Helper()
	resp := doJSON(t, http.MethodPost, ts.URL+"/books", auth, map[string]string{
		"title":  title,
		"author": "Frank Herbert",
		"genre":  "sci-fi",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create book status: %d", resp.StatusCode)
	}
	var book domain.Book
	if err := json.NewDecoder(resp.Body).Decode(&book); err != nil {
		t.Fatalf("decode book: %v", err)
	}
	return book
}

func TestBookRoutesRequireToken(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/books")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestExistsProbeIsPublic(t *testing.T) {
	ts, tokens := newTestServer(t)
	auth := bearerFor(t, tokens, "u1", domain.RoleUser)
	book := createBook(t, ts, auth, "Dune")

	resp, err := http.Get(ts.URL + "/books/exists/" + book.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("known book should read 200, got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/books/exists/ghost")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown book should read 404, got %d", resp.StatusCode)
	}
}

func TestVerifyEndpointAdminGate(t *testing.T) {
	ts, tokens := newTestServer(t)
	owner := bearerFor(t, tokens, "u1", domain.RoleUser)
	admin := bearerFor(t, tokens, "u9", domain.RoleAdmin)
	book := createBook(t, ts, owner, "Dune")

	resp := doJSON(t, http.MethodPost, ts.URL+"/books/"+book.ID+"/verify", owner, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("owner verify should read 403, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/books/"+book.ID+"/verify", admin, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin verify status: %d", resp.StatusCode)
	}
	var verified domain.Book
	if err := json.NewDecoder(resp.Body).Decode(&verified); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !verified.Verified {
		t.Fatalf("book should be verified")
	}
}

func TestShelfDuplicateReads409(t *testing.T) {
	ts, tokens := newTestServer(t)
	auth := bearerFor(t, tokens, "u1", domain.RoleUser)
	book := createBook(t, ts, auth, "Dune")

	resp := doJSON(t, http.MethodPost, ts.URL+"/bookshelf", auth, map[string]string{
		"bookId": book.ID,
		"status": "READING",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first add status: %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/bookshelf", auth, map[string]string{
		"bookId": book.ID,
		"status": "READ",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate add should read 409, got %d", resp.StatusCode)
	}
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Code != "BOOK_CONFLICT" {
		t.Fatalf("unexpected error code: %s", body.Code)
	}
}

func TestNotFoundMessageShape(t *testing.T) {
	ts, tokens := newTestServer(t)
	auth := bearerFor(t, tokens, "u1", domain.RoleUser)

	resp := doJSON(t, http.MethodGet, ts.URL+"/books/999", auth, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "Book not found with ID: 999" {
		t.Fatalf("unexpected message: %q", body.Error)
	}
}
