package state

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/booksearch/internal/catalog"
	"github.com/mrlokans/booksearch/internal/entities"
)

func TestPageCountFor(t *testing.T) {
	tests := []struct {
		numFound int
		expected int
	}{
		{0, 1},
		{1, 1},
		{24, 1},
		{25, 2},
		{40, 2},
		{50, 3},
		{1234, 50},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, PageCountFor(tt.numFound), "numFound=%d", tt.numFound)
	}
}

func TestNewSearchContainer_InitialState(t *testing.T) {
	c := NewSearchContainer(&mockFetcher{}, true)
	s := c.State()

	assert.Equal(t, StatusIdle, s.Status)
	assert.Equal(t, 1, s.CurrentPage)
	assert.Equal(t, 0, s.PageCount)
	assert.Empty(t, s.Results)
	assert.Empty(t, s.ErrorMessage)
}

func TestSearch_Resolves(t *testing.T) {
	fetcher := &mockFetcher{}
	req := catalog.SearchRequest{Query: "dune", Page: 1, Sort: "relevance"}
	docs := summaries(25)
	fetcher.On("Search", mock.Anything, req).Return(&catalog.SearchResult{NumFound: 40, Docs: docs}, nil)

	c := NewSearchContainer(fetcher, true)
	s := c.Search(context.Background(), req)

	assert.Equal(t, StatusResolved, s.Status)
	assert.Equal(t, 2, s.PageCount)
	assert.Len(t, s.Results, 25)
	assert.Equal(t, docs, s.Results)
	assert.Empty(t, s.ErrorMessage)
	assert.Equal(t, s, c.State())
	fetcher.AssertExpectations(t)
}

func TestSearch_ResultsKeepResponseOrder(t *testing.T) {
	fetcher := &mockFetcher{}
	docs := []entities.BookSummary{
		{Key: "/works/OL3W"},
		{Key: "/works/OL1W"},
		{Key: "/works/OL3W"},
	}
	fetcher.On("Search", mock.Anything, mock.Anything).Return(&catalog.SearchResult{NumFound: 3, Docs: docs}, nil)

	s := NewSearchContainer(fetcher, true).Search(context.Background(), catalog.SearchRequest{Query: "x", Page: 1})

	assert.Equal(t, docs, s.Results)
}

func TestSearch_ReplacesResultsWholesale(t *testing.T) {
	fetcher := &mockFetcher{}
	first := catalog.SearchRequest{Query: "dune", Page: 1}
	second := catalog.SearchRequest{Query: "dune", Page: 2}
	fetcher.On("Search", mock.Anything, first).Return(&catalog.SearchResult{NumFound: 30, Docs: summaries(25)}, nil)
	fetcher.On("Search", mock.Anything, second).Return(&catalog.SearchResult{NumFound: 30, Docs: summaries(5)}, nil)

	c := NewSearchContainer(fetcher, true)
	c.Search(context.Background(), first)
	s := c.Search(context.Background(), second)

	assert.Len(t, s.Results, 5)
}

func TestSearch_EntersLoadingBeforeFetching(t *testing.T) {
	fetcher := &mockFetcher{}
	c := NewSearchContainer(fetcher, true)

	var observed SearchState
	fetcher.On("Search", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { observed = c.State() }).
		Return(&catalog.SearchResult{NumFound: 1, Docs: summaries(1)}, nil)

	require.Equal(t, StatusIdle, c.State().Status)
	s := c.Search(context.Background(), catalog.SearchRequest{Query: "dune", Page: 1})

	assert.Equal(t, StatusLoading, observed.Status)
	assert.Equal(t, StatusResolved, s.Status)
}

func TestSearch_LoadingClearsErrorButKeepsResults(t *testing.T) {
	fetcher := &mockFetcher{}
	c := NewSearchContainer(fetcher, true)

	ok := catalog.SearchRequest{Query: "dune", Page: 1}
	bad := catalog.SearchRequest{Query: "bad", Page: 1}
	again := catalog.SearchRequest{Query: "again", Page: 1}

	fetcher.On("Search", mock.Anything, ok).Return(&catalog.SearchResult{NumFound: 3, Docs: summaries(3)}, nil)
	fetcher.On("Search", mock.Anything, bad).Return(nil, &catalog.APIError{StatusCode: 500, Message: "boom"})

	c.Search(context.Background(), ok)
	rejected := c.Search(context.Background(), bad)
	require.Equal(t, "boom", rejected.ErrorMessage)

	var observed SearchState
	fetcher.On("Search", mock.Anything, again).
		Run(func(args mock.Arguments) { observed = c.State() }).
		Return(&catalog.SearchResult{NumFound: 1, Docs: summaries(1)}, nil)
	c.Search(context.Background(), again)

	assert.Equal(t, StatusLoading, observed.Status)
	assert.Empty(t, observed.ErrorMessage)
	assert.Len(t, observed.Results, 3, "previous results stay visible while loading")
}

func TestSearch_RejectedWithErrorBody(t *testing.T) {
	fetcher := &mockFetcher{}
	req := catalog.SearchRequest{Query: "zzzznotfound", Page: 1, Sort: "new"}
	fetcher.On("Search", mock.Anything, req).Return(nil, &catalog.APIError{StatusCode: 404, Message: "not found"})

	s := NewSearchContainer(fetcher, true).Search(context.Background(), req)

	assert.Equal(t, StatusRejected, s.Status)
	assert.Equal(t, "not found", s.ErrorMessage)
}

func TestSearch_RejectedKeepsPreviousPayload(t *testing.T) {
	fetcher := &mockFetcher{}
	ok := catalog.SearchRequest{Query: "dune", Page: 1}
	bad := catalog.SearchRequest{Query: "dune", Page: 2}
	docs := summaries(25)
	fetcher.On("Search", mock.Anything, ok).Return(&catalog.SearchResult{NumFound: 60, Docs: docs}, nil)
	fetcher.On("Search", mock.Anything, bad).Return(nil, errors.New("connection refused"))

	c := NewSearchContainer(fetcher, true)
	c.Search(context.Background(), ok)
	s := c.Search(context.Background(), bad)

	assert.Equal(t, StatusRejected, s.Status)
	assert.Equal(t, "connection refused", s.ErrorMessage)
	assert.Equal(t, docs, s.Results)
	assert.Equal(t, 3, s.PageCount)
}

func TestSearch_RejectedOnDecodeFailure(t *testing.T) {
	fetcher := &mockFetcher{}
	fetcher.On("Search", mock.Anything, mock.Anything).Return(nil, catalog.ErrMalformedResponse)

	s := NewSearchContainer(fetcher, true).Search(context.Background(), catalog.SearchRequest{Query: "x", Page: 1})

	assert.Equal(t, StatusRejected, s.Status)
	assert.NotEmpty(t, s.ErrorMessage)
	assert.Empty(t, s.Results)
}

func TestSetPage(t *testing.T) {
	fetcher := &mockFetcher{}
	c := NewSearchContainer(fetcher, true)

	for _, n := range []int{7, 1, 42} {
		c.SetPage(n)
		assert.Equal(t, n, c.State().CurrentPage)
	}
	assert.Equal(t, StatusIdle, c.State().Status, "changing page does not fetch")
	fetcher.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestResetPage(t *testing.T) {
	c := NewSearchContainer(&mockFetcher{}, true)

	for _, n := range []int{1, 5, 300} {
		c.SetPage(n)
		c.ResetPage()
		assert.Equal(t, 1, c.State().CurrentPage)
	}
}

func TestSearch_DoesNotTouchCurrentPage(t *testing.T) {
	fetcher := &mockFetcher{}
	fetcher.On("Search", mock.Anything, mock.Anything).Return(&catalog.SearchResult{NumFound: 100, Docs: summaries(25)}, nil)

	c := NewSearchContainer(fetcher, true)
	c.SetPage(3)
	c.Search(context.Background(), catalog.SearchRequest{Query: "dune", Page: 1})

	assert.Equal(t, 3, c.State().CurrentPage)
}

func TestState_ReturnsCopy(t *testing.T) {
	fetcher := &mockFetcher{}
	fetcher.On("Search", mock.Anything, mock.Anything).Return(&catalog.SearchResult{NumFound: 2, Docs: summaries(2)}, nil)

	c := NewSearchContainer(fetcher, true)
	c.Search(context.Background(), catalog.SearchRequest{Query: "dune", Page: 1})

	s := c.State()
	s.Results[0].Title = "changed"

	assert.Equal(t, "Book 1", c.State().Results[0].Title)
}

func TestSearchAsync_DiscardsStaleResponse(t *testing.T) {
	fetcher := newGatedFetcher()
	slow := fetcher.gateSearch("slow")
	fast := fetcher.gateSearch("fast")

	c := NewSearchContainer(fetcher, true)
	first := c.SearchAsync(context.Background(), catalog.SearchRequest{Query: "slow", Page: 1})
	second := c.SearchAsync(context.Background(), catalog.SearchRequest{Query: "fast", Page: 1})
	assert.Equal(t, StatusLoading, c.State().Status)

	fast <- &catalog.SearchResult{NumFound: 1, Docs: []entities.BookSummary{{Key: "/works/fast"}}}
	s := <-second
	require.Equal(t, StatusResolved, s.Status)

	slow <- &catalog.SearchResult{NumFound: 100, Docs: []entities.BookSummary{{Key: "/works/slow"}}}
	<-first

	final := c.State()
	assert.Equal(t, StatusResolved, final.Status)
	require.Len(t, final.Results, 1)
	assert.Equal(t, "/works/fast", final.Results[0].Key)
	assert.Equal(t, 1, final.PageCount)
}

func TestSearchAsync_LastResolvedWinsWithoutGuard(t *testing.T) {
	fetcher := newGatedFetcher()
	slow := fetcher.gateSearch("slow")
	fast := fetcher.gateSearch("fast")

	c := NewSearchContainer(fetcher, false)
	first := c.SearchAsync(context.Background(), catalog.SearchRequest{Query: "slow", Page: 1})
	second := c.SearchAsync(context.Background(), catalog.SearchRequest{Query: "fast", Page: 1})

	fast <- &catalog.SearchResult{NumFound: 1, Docs: []entities.BookSummary{{Key: "/works/fast"}}}
	<-second
	slow <- &catalog.SearchResult{NumFound: 100, Docs: []entities.BookSummary{{Key: "/works/slow"}}}
	<-first

	final := c.State()
	require.Len(t, final.Results, 1)
	assert.Equal(t, "/works/slow", final.Results[0].Key)
	assert.Equal(t, 5, final.PageCount)
}

func TestSearch_StateDoesNotShareNestedSlices(t *testing.T) {
	docs := []entities.BookSummary{{Key: "/works/OL1W", Title: "Dune", AuthorNames: []string{"Herbert"}}}
	fetcher := &mockFetcher{}
	fetcher.On("Search", mock.Anything, mock.Anything).Return(&catalog.SearchResult{NumFound: 1, Docs: docs}, nil)

	c := NewSearchContainer(fetcher, true)
	settled := c.Search(context.Background(), catalog.SearchRequest{Query: "dune", Page: 1})

	settled.Results[0].AuthorNames[0] = "changed by caller"
	s := c.State()
	s.Results[0].AuthorNames[0] = "changed by caller"
	docs[0].AuthorNames[0] = "changed by fetcher"

	assert.Equal(t, []string{"Herbert"}, c.State().Results[0].AuthorNames)
}
