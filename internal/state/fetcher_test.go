package state

import (
	"context"
	"fmt"

	"github.com/stretchr/testify/mock"

	"github.com/mrlokans/booksearch/internal/catalog"
	"github.com/mrlokans/booksearch/internal/entities"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Search(ctx context.Context, req catalog.SearchRequest) (*catalog.SearchResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.SearchResult), args.Error(1)
}

func (m *mockFetcher) FetchBook(ctx context.Context, key string) (*entities.BookDetail, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BookDetail), args.Error(1)
}

// gatedFetcher blocks each call until the test releases it, so tests can
// control the order in which concurrent fetches settle.
type gatedFetcher struct {
	searchGates map[string]chan *catalog.SearchResult
	bookGates   map[string]chan *entities.BookDetail
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{
		searchGates: make(map[string]chan *catalog.SearchResult),
		bookGates:   make(map[string]chan *entities.BookDetail),
	}
}

func (g *gatedFetcher) gateSearch(query string) chan *catalog.SearchResult {
	ch := make(chan *catalog.SearchResult)
	g.searchGates[query] = ch
	return ch
}

func (g *gatedFetcher) gateBook(key string) chan *entities.BookDetail {
	ch := make(chan *entities.BookDetail)
	g.bookGates[key] = ch
	return ch
}

func (g *gatedFetcher) Search(ctx context.Context, req catalog.SearchRequest) (*catalog.SearchResult, error) {
	gate, ok := g.searchGates[req.Query]
	if !ok {
		return nil, fmt.Errorf("no gate for %q", req.Query)
	}
	return <-gate, nil
}

func (g *gatedFetcher) FetchBook(ctx context.Context, key string) (*entities.BookDetail, error) {
	gate, ok := g.bookGates[key]
	if !ok {
		return nil, fmt.Errorf("no gate for %q", key)
	}
	return <-gate, nil
}

func summaries(n int) []entities.BookSummary {
	docs := make([]entities.BookSummary, n)
	for i := range docs {
		docs[i] = entities.BookSummary{
			Key:   fmt.Sprintf("/works/OL%dW", i+1),
			Title: fmt.Sprintf("Book %d", i+1),
		}
	}
	return docs
}
