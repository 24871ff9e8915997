package bookclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elzpil/bookclub/pkg/probe"
)

func TestExistsPresent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/books/exists/b1" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	presence, err := New(srv.URL).Exists(context.Background(), "b1")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if presence != probe.Present {
		t.Fatalf("expected Present, got %v", presence)
	}
}

func TestExistsAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	presence, err := New(srv.URL).Exists(context.Background(), "missing")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if presence != probe.Absent {
		t.Fatalf("expected Absent, got %v", presence)
	}
}

func TestExistsUnknownOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	presence, err := New(srv.URL).Exists(context.Background(), "b1")
	if err == nil {
		t.Fatalf("expected error for 500")
	}
	if presence != probe.Unknown {
		t.Fatalf("expected Unknown, got %v", presence)
	}
}

func TestExistsUnknownOnTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	srv.Close()

	presence, err := New(srv.URL).Exists(context.Background(), "b1")
	if err == nil {
		t.Fatalf("expected transport error")
	}
	if presence != probe.Unknown {
		t.Fatalf("expected Unknown, got %v", presence)
	}
}
