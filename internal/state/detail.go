package state

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/booksearch/internal/catalog"
	"github.com/mrlokans/booksearch/internal/entities"
)

// DetailState is the single-book slice of the aggregate state.
type DetailState struct {
	Book         entities.BookDetail `json:"book"`
	Status       Status              `json:"status"`
	ErrorMessage string              `json:"error_message,omitempty"`
}

func initialDetailState() DetailState {
	return DetailState{
		Book:   entities.EmptyBookDetail(),
		Status: StatusIdle,
	}
}

func (s DetailState) clone() DetailState {
	s.Book.AuthorNames = slices.Clone(s.Book.AuthorNames)
	s.Book.Subjects = slices.Clone(s.Book.Subjects)
	return s
}

func detailPending(s DetailState) DetailState {
	s.Status = StatusLoading
	s.ErrorMessage = ""
	return s
}

func detailFulfilled(s DetailState, book *entities.BookDetail) DetailState {
	s.Status = StatusResolved
	s.Book = *book
	s.Book.AuthorNames = slices.Clone(book.AuthorNames)
	s.Book.Subjects = slices.Clone(book.Subjects)
	return s
}

func detailRejected(s DetailState, message string) DetailState {
	s.Status = StatusRejected
	s.ErrorMessage = message
	return s
}

// detailRejectionMessage picks the message stored on a rejected detail fetch.
// Unless capture is set, only a bare string error body is kept; structured
// bodies, transport and decode failures leave the message empty.
func detailRejectionMessage(err error, capture bool) string {
	if capture {
		return catalog.Message(err)
	}
	var apiErr *catalog.APIError
	if errors.As(err, &apiErr) {
		if s, ok := apiErr.PayloadString(); ok {
			return s
		}
	}
	return ""
}

// DetailContainer owns the single-book state and the fetch-one operation.
type DetailContainer struct {
	fetcher       catalog.Fetcher
	discardStale  bool
	captureErrors bool

	mu    sync.Mutex
	state DetailState
	seq   uint64
}

// NewDetailContainer creates a container holding the empty placeholder book.
func NewDetailContainer(fetcher catalog.Fetcher, discardStale, captureErrors bool) *DetailContainer {
	return &DetailContainer{
		fetcher:       fetcher,
		discardStale:  discardStale,
		captureErrors: captureErrors,
		state:         initialDetailState(),
	}
}

// State returns a copy of the current state.
func (c *DetailContainer) State() DetailState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// FetchOne fetches the book addressed by key and blocks until it settles.
func (c *DetailContainer) FetchOne(ctx context.Context, key string) DetailState {
	seq := c.begin(ctx, key)
	book, err := c.fetcher.FetchBook(ctx, key)
	return c.settle(ctx, seq, key, book, err)
}

// FetchOneAsync enters the loading phase before returning and settles in the background.
func (c *DetailContainer) FetchOneAsync(ctx context.Context, key string) <-chan DetailState {
	seq := c.begin(ctx, key)
	done := make(chan DetailState, 1)
	go func() {
		defer close(done)
		book, err := c.fetcher.FetchBook(ctx, key)
		done <- c.settle(ctx, seq, key, book, err)
	}()
	return done
}

func (c *DetailContainer) begin(ctx context.Context, key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	c.state = detailPending(c.state)
	recordTransition(ctx, BookKey, StatusLoading, logrus.Fields{"key": key})
	return c.seq
}

func (c *DetailContainer) settle(ctx context.Context, seq uint64, key string, book *entities.BookDetail, err error) DetailState {
	c.mu.Lock()
	defer c.mu.Unlock()

	fields := logrus.Fields{"key": key}
	if c.discardStale && seq != c.seq {
		discardStale(ctx, BookKey, fields)
		return c.state.clone()
	}

	if err != nil {
		c.state = detailRejected(c.state, detailRejectionMessage(err, c.captureErrors))
		fields["error"] = err.Error()
		recordTransition(ctx, BookKey, StatusRejected, fields)
		return c.state.clone()
	}

	c.state = detailFulfilled(c.state, book)
	recordTransition(ctx, BookKey, StatusResolved, fields)
	return c.state.clone()
}
