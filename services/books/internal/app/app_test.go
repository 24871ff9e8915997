package app

import (
	"strings"
	"testing"

	"github.com/elzpil/bookclub/internal/apperr"
	"github.com/elzpil/bookclub/internal/authz"
	"github.com/elzpil/bookclub/pkg/domain"
	"github.com/elzpil/bookclub/services/books/internal/store"
)

var (
	reader = authz.Caller{UserID: "u1", Username: "reader", Role: domain.RoleUser}
	other  = authz.Caller{UserID: "u2", Username: "other", Role: domain.RoleUser}
	admin  = authz.Caller{UserID: "u9", Username: "root", Role: domain.RoleAdmin}
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	a, err := New(Config{Store: store.NewMemoryStore()})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a
}

func addBook(t *testing.T, a *App, caller authz.Caller, title, author, genre string) domain.Book {
	t.Helper()
	book, err := a.CreateBook(caller, BookParams{Title: title, Author: author, Genre: genre})
	if err != nil {
		t.Fatalf("create book %q: %v", title, err)
	}
	return book
}

func TestCreateBookStartsUnverified(t *testing.T) {
	a := newTestApp(t)
	book := addBook(t, a, reader, "Dune", "Frank Herbert", "sci-fi")
	if book.Verified {
		t.Fatalf("new books must start unverified")
	}
	if book.UserID != reader.UserID {
		t.Fatalf("book owner should be the caller")
	}
}

func TestCreateBookRejectsBadDate(t *testing.T) {
	a := newTestApp(t)
	_, err := a.CreateBook(reader, BookParams{Title: "Dune", Author: "Frank Herbert", PublishedDate: "08/1965"})
	if apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestListBooksFilterPrecedence(t *testing.T) {
	a := newTestApp(t)
	addBook(t, a, reader, "Dune", "Frank Herbert", "sci-fi")
	addBook(t, a, reader, "Hyperion", "Dan Simmons", "sci-fi")
	addBook(t, a, reader, "Dune", "Someone Else", "fantasy")

	// genre wins over author and title
	books, err := a.ListBooks("sci-fi", "Someone Else", "Dune")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(books) != 2 {
		t.Fatalf("genre filter should apply alone, got %d books", len(books))
	}
	for _, b := range books {
		if b.Genre != "sci-fi" {
			t.Fatalf("unexpected genre: %s", b.Genre)
		}
	}

	// author wins over title when genre is empty
	books, err = a.ListBooks("", "Dan Simmons", "Dune")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(books) != 1 || books[0].Author != "Dan Simmons" {
		t.Fatalf("author filter should apply alone, got %+v", books)
	}

	// no filters returns everything
	books, err = a.ListBooks("", "", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(books) != 3 {
		t.Fatalf("expected all books, got %d", len(books))
	}
}

func TestVerifyBookAdminOnly(t *testing.T) {
	a := newTestApp(t)
	book := addBook(t, a, reader, "Dune", "Frank Herbert", "sci-fi")

	if _, err := a.VerifyBook(reader, book.ID); apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("owner without admin role must not verify, got %v", err)
	}
	verified, err := a.VerifyBook(admin, book.ID)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !verified.Verified {
		t.Fatalf("book should be verified")
	}
}

func TestUpdateBookOwnershipGate(t *testing.T) {
	a := newTestApp(t)
	book := addBook(t, a, reader, "Dune", "Frank Herbert", "sci-fi")

	title := "Changed"
	if _, err := a.UpdateBook(other, book.ID, BookUpdate{Title: &title}); apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized update, got %v", err)
	}
	got, err := a.GetBook(book.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Dune" {
		t.Fatalf("denied update must not change state")
	}
}

func TestReviewRatingAndUniqueness(t *testing.T) {
	a := newTestApp(t)
	book := addBook(t, a, reader, "Dune", "Frank Herbert", "sci-fi")

	if _, err := a.CreateReview(other, book.ID, ReviewParams{Rating: 0}); apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Fatalf("rating 0 should be rejected, got %v", err)
	}
	if _, err := a.CreateReview(other, book.ID, ReviewParams{Rating: 6}); apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Fatalf("rating 6 should be rejected, got %v", err)
	}
	review, err := a.CreateReview(other, book.ID, ReviewParams{Content: "great", Rating: 5})
	if err != nil {
		t.Fatalf("create review: %v", err)
	}
	if review.Username != other.Username {
		t.Fatalf("review should carry the caller's username")
	}
	if _, err := a.CreateReview(other, book.ID, ReviewParams{Content: "again", Rating: 4}); apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("second review should conflict, got %v", err)
	}
}

func TestReviewNotFoundMessage(t *testing.T) {
	a := newTestApp(t)
	_, err := a.GetReview("999")
	if got := apperr.Message(err); got != "Review not found with ID: 999" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestBookshelfDuplicateMessage(t *testing.T) {
	a := newTestApp(t)
	book := addBook(t, a, reader, "Dune", "Frank Herbert", "sci-fi")

	if _, err := a.AddToShelf(reader, book.ID, domain.ShelfReading); err != nil {
		t.Fatalf("add to shelf: %v", err)
	}
	_, err := a.AddToShelf(reader, book.ID, domain.ShelfRead)
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if !strings.Contains(apperr.Message(err), "already in the user's bookshelf") {
		t.Fatalf("unexpected message: %q", apperr.Message(err))
	}
}

func TestBookshelfRejectsUnknownStatus(t *testing.T) {
	a := newTestApp(t)
	book := addBook(t, a, reader, "Dune", "Frank Herbert", "sci-fi")
	if _, err := a.AddToShelf(reader, book.ID, "FINISHED"); apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Fatalf("unknown status should be rejected, got %v", err)
	}
}

func TestProgressBoundsAndUniqueness(t *testing.T) {
	a := newTestApp(t)
	book := addBook(t, a, reader, "Dune", "Frank Herbert", "sci-fi")

	if _, err := a.StartProgress(reader, book.ID, 101); apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Fatalf("percentage over 100 should be rejected, got %v", err)
	}
	if _, err := a.StartProgress(reader, book.ID, -1); apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Fatalf("negative percentage should be rejected, got %v", err)
	}
	progress, err := a.StartProgress(reader, book.ID, 10)
	if err != nil {
		t.Fatalf("start progress: %v", err)
	}
	if _, err := a.StartProgress(reader, book.ID, 20); apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("second record for the pair should conflict, got %v", err)
	}

	updated, err := a.UpdateProgress(reader, progress.ID, 55)
	if err != nil {
		t.Fatalf("update progress: %v", err)
	}
	if updated.Percentage != 55 {
		t.Fatalf("percentage not updated: %d", updated.Percentage)
	}
	if _, err := a.UpdateProgress(other, progress.ID, 60); apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("non-owner update should be rejected, got %v", err)
	}
}

func TestDeleteBookCascades(t *testing.T) {
	a := newTestApp(t)
	book := addBook(t, a, reader, "Dune", "Frank Herbert", "sci-fi")
	if _, err := a.CreateReview(other, book.ID, ReviewParams{Content: "great", Rating: 5}); err != nil {
		t.Fatalf("review: %v", err)
	}
	if _, err := a.AddToShelf(other, book.ID, domain.ShelfReading); err != nil {
		t.Fatalf("shelf: %v", err)
	}
	if err := a.DeleteBook(reader, book.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := a.GetBook(book.ID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("book should be gone, got %v", err)
	}
	shelf, err := a.ListShelf(other.UserID)
	if err != nil {
		t.Fatalf("list shelf: %v", err)
	}
	if len(shelf) != 0 {
		t.Fatalf("shelf entries should be gone, got %+v", shelf)
	}
}
