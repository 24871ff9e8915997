package userclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elzpil/bookclub/pkg/probe"
)

func TestExistsThreeValued(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/exists/known":
			w.WriteHeader(http.StatusOK)
		case "/users/exists/missing":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	if presence, err := c.Exists(context.Background(), "known"); err != nil || presence != probe.Present {
		t.Fatalf("known user: %v, %v", presence, err)
	}
	if presence, err := c.Exists(context.Background(), "missing"); err != nil || presence != probe.Absent {
		t.Fatalf("missing user: %v, %v", presence, err)
	}
	if presence, err := c.Exists(context.Background(), "broken"); err == nil || presence != probe.Unknown {
		t.Fatalf("server error should read Unknown: %v, %v", presence, err)
	}
}
