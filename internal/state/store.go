package state

import (
	"github.com/mrlokans/booksearch/internal/catalog"
	"github.com/mrlokans/booksearch/internal/entities"
)

// Top-level keys of the aggregate state.
const (
	BooksKey = "books"
	BookKey  = "book"
)

// Options controls behavior shared by both containers.
type Options struct {
	// DiscardStaleResponses drops settlements of fetches that were superseded
	// by a newer fetch on the same container. When false, the last fetch to
	// resolve wins regardless of start order.
	DiscardStaleResponses bool
	// CaptureDetailErrors records every detail-fetch failure message. When
	// false, only bare string error bodies are recorded.
	CaptureDetailErrors bool
}

// Store composes the two containers. It has no behavior of its own.
type Store struct {
	Books *SearchContainer
	Book  *DetailContainer
}

func NewStore(fetcher catalog.Fetcher, opts Options) *Store {
	return &Store{
		Books: NewSearchContainer(fetcher, opts.DiscardStaleResponses),
		Book:  NewDetailContainer(fetcher, opts.DiscardStaleResponses, opts.CaptureDetailErrors),
	}
}

// RootState is a point-in-time copy of the aggregate state.
type RootState struct {
	Books SearchState `json:"books"`
	Book  DetailState `json:"book"`
}

// InitialState is the aggregate state of a store nothing has been dispatched to.
func InitialState() RootState {
	return RootState{
		Books: initialSearchState(),
		Book:  initialDetailState(),
	}
}

// Snapshot copies both containers' state. The two halves are read separately
// and are not guaranteed to be mutually consistent.
func (s *Store) Snapshot() RootState {
	return RootState{
		Books: s.Books.State(),
		Book:  s.Book.State(),
	}
}

// Selectors.

func SelectBook(s RootState) entities.BookDetail {
	return s.Book.Book
}

func SelectBookStatus(s RootState) Status {
	return s.Book.Status
}

func SelectBookError(s RootState) string {
	return s.Book.ErrorMessage
}

func IsBookLoading(s RootState) bool {
	return s.Book.Status == StatusLoading
}

func SelectAllBooks(s RootState) []entities.BookSummary {
	return s.Books.Results
}

func SelectBooksStatus(s RootState) Status {
	return s.Books.Status
}

func SelectBooksError(s RootState) string {
	return s.Books.ErrorMessage
}

func IsBooksLoading(s RootState) bool {
	return s.Books.Status == StatusLoading
}

func SelectNumberOfPages(s RootState) int {
	return s.Books.PageCount
}

func SelectPage(s RootState) int {
	return s.Books.CurrentPage
}
