package app

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/elzpil/bookclub/internal/apperr"
	"github.com/elzpil/bookclub/services/books/internal/store"
)

type fakeObjectStore struct {
	objects map[string][]byte
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (f *fakeObjectStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeObjectStore) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://covers.test/" + key, nil
}

func (f *fakeObjectStore) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func TestCoverUploadAndURL(t *testing.T) {
	covers := newFakeObjectStore()
	a, err := New(Config{Store: store.NewMemoryStore(), Covers: covers})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	book := addBook(t, a, reader, "Dune", "Frank Herbert", "sci-fi")

	ctx := context.Background()
	body := strings.NewReader("fake-png-bytes")
	updated, err := a.UploadCover(ctx, reader, book.ID, "cover.png", body, int64(body.Len()), "image/png")
	if err != nil {
		t.Fatalf("upload cover: %v", err)
	}
	if updated.CoverKey == "" {
		t.Fatalf("cover key not recorded")
	}
	if _, ok := covers.objects[updated.CoverKey]; !ok {
		t.Fatalf("object not stored under %q", updated.CoverKey)
	}

	url, err := a.CoverURL(ctx, book.ID)
	if err != nil {
		t.Fatalf("cover url: %v", err)
	}
	if !strings.Contains(url, updated.CoverKey) {
		t.Fatalf("url should reference the stored key: %q", url)
	}
}

func TestCoverUploadRejectsUnsupportedType(t *testing.T) {
	a, err := New(Config{Store: store.NewMemoryStore(), Covers: newFakeObjectStore()})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	book := addBook(t, a, reader, "Dune", "Frank Herbert", "sci-fi")
	_, err = a.UploadCover(context.Background(), reader, book.ID, "cover.gif", strings.NewReader("x"), 1, "image/gif")
	if apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestCoverUploadOwnershipGate(t *testing.T) {
	a, err := New(Config{Store: store.NewMemoryStore(), Covers: newFakeObjectStore()})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	book := addBook(t, a, reader, "Dune", "Frank Herbert", "sci-fi")
	_, err = a.UploadCover(context.Background(), other, book.ID, "cover.png", strings.NewReader("x"), 1, "image/png")
	if apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestCoverUnavailableWithoutStorage(t *testing.T) {
	a, err := New(Config{Store: store.NewMemoryStore()})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	book := addBook(t, a, reader, "Dune", "Frank Herbert", "sci-fi")
	if _, err := a.CoverURL(context.Background(), book.ID); apperr.KindOf(err) != apperr.KindUnavailable {
		t.Fatalf("expected unavailable, got %v", err)
	}
}
