package state

import (
	"context"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/booksearch/internal/catalog"
	"github.com/mrlokans/booksearch/internal/entities"
	"github.com/mrlokans/booksearch/internal/logger"
	"github.com/mrlokans/booksearch/internal/metrics"
)

// SearchState is the list-search slice of the aggregate state.
type SearchState struct {
	Results      []entities.BookSummary `json:"results"`
	PageCount    int                    `json:"page_count"`
	CurrentPage  int                    `json:"current_page"`
	Status       Status                 `json:"status"`
	ErrorMessage string                 `json:"error_message,omitempty"`
}

func initialSearchState() SearchState {
	return SearchState{
		Results:     []entities.BookSummary{},
		CurrentPage: 1,
		Status:      StatusIdle,
	}
}

func (s SearchState) clone() SearchState {
	s.Results = cloneSummaries(s.Results)
	return s
}

func cloneSummaries(docs []entities.BookSummary) []entities.BookSummary {
	if docs == nil {
		return nil
	}
	out := make([]entities.BookSummary, len(docs))
	for i, d := range docs {
		d.AuthorNames = slices.Clone(d.AuthorNames)
		out[i] = d
	}
	return out
}

// PageCountFor returns the number of pages needed for numFound matches.
// It counts one page more than strictly needed when numFound is an exact
// multiple of the page size, which is how the catalog's pager has always behaved.
func PageCountFor(numFound int) int {
	return numFound/catalog.PageSize + 1
}

func searchPending(s SearchState) SearchState {
	s.Status = StatusLoading
	s.ErrorMessage = ""
	return s
}

func searchFulfilled(s SearchState, res *catalog.SearchResult) SearchState {
	s.Status = StatusResolved
	s.Results = cloneSummaries(res.Docs)
	if s.Results == nil {
		s.Results = []entities.BookSummary{}
	}
	s.PageCount = PageCountFor(res.NumFound)
	return s
}

func searchRejected(s SearchState, message string) SearchState {
	s.Status = StatusRejected
	s.ErrorMessage = message
	return s
}

func pageChanged(s SearchState, page int) SearchState {
	s.CurrentPage = page
	return s
}

func pageReset(s SearchState) SearchState {
	s.CurrentPage = 1
	return s
}

// SearchContainer owns the list-search state and the search operation.
type SearchContainer struct {
	fetcher      catalog.Fetcher
	discardStale bool

	mu    sync.Mutex
	state SearchState
	seq   uint64
}

// NewSearchContainer creates a container in the idle state. With discardStale
// set, a search that settles after a newer one has started leaves state untouched.
func NewSearchContainer(fetcher catalog.Fetcher, discardStale bool) *SearchContainer {
	return &SearchContainer{
		fetcher:      fetcher,
		discardStale: discardStale,
		state:        initialSearchState(),
	}
}

// State returns a copy of the current state.
func (c *SearchContainer) State() SearchState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Search fetches one page of results and blocks until it settles. Failures are
// recorded in the returned state; there is no error return.
func (c *SearchContainer) Search(ctx context.Context, req catalog.SearchRequest) SearchState {
	seq := c.begin(ctx, req)
	res, err := c.fetcher.Search(ctx, req)
	return c.settle(ctx, seq, req, res, err)
}

// SearchAsync enters the loading phase before returning and settles in the
// background. The final state is delivered on the returned channel.
func (c *SearchContainer) SearchAsync(ctx context.Context, req catalog.SearchRequest) <-chan SearchState {
	seq := c.begin(ctx, req)
	done := make(chan SearchState, 1)
	go func() {
		defer close(done)
		res, err := c.fetcher.Search(ctx, req)
		done <- c.settle(ctx, seq, req, res, err)
	}()
	return done
}

// SetPage overwrites the current page. It does not fetch.
func (c *SearchContainer) SetPage(page int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = pageChanged(c.state, page)
}

// ResetPage sets the current page back to 1.
func (c *SearchContainer) ResetPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = pageReset(c.state)
}

func (c *SearchContainer) begin(ctx context.Context, req catalog.SearchRequest) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	c.state = searchPending(c.state)
	recordTransition(ctx, BooksKey, StatusLoading, searchFields(req))
	return c.seq
}

func (c *SearchContainer) settle(ctx context.Context, seq uint64, req catalog.SearchRequest, res *catalog.SearchResult, err error) SearchState {
	c.mu.Lock()
	defer c.mu.Unlock()

	fields := searchFields(req)
	if c.discardStale && seq != c.seq {
		discardStale(ctx, BooksKey, fields)
		return c.state.clone()
	}

	if err != nil {
		c.state = searchRejected(c.state, catalog.Message(err))
		fields["error"] = err.Error()
		recordTransition(ctx, BooksKey, StatusRejected, fields)
		return c.state.clone()
	}

	c.state = searchFulfilled(c.state, res)
	fields["num_found"] = res.NumFound
	recordTransition(ctx, BooksKey, StatusResolved, fields)
	return c.state.clone()
}

func searchFields(req catalog.SearchRequest) logrus.Fields {
	return logrus.Fields{
		"query": req.Query,
		"page":  req.Page,
		"sort":  req.Sort,
	}
}

func recordTransition(ctx context.Context, container string, status Status, fields logrus.Fields) {
	metrics.StateTransitionsTotal.WithLabelValues(container, string(status)).Inc()

	entry := logger.For(ctx).WithFields(fields).WithFields(logrus.Fields{
		"container": container,
		"status":    string(status),
	})
	if status == StatusRejected {
		entry.Warn("fetch rejected")
		return
	}
	entry.Debug("state transition")
}

func discardStale(ctx context.Context, container string, fields logrus.Fields) {
	metrics.StaleResponsesTotal.WithLabelValues(container).Inc()
	logger.For(ctx).WithFields(fields).WithField("container", container).
		Info("discarding response from superseded fetch")
}
