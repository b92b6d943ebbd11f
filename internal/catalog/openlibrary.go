package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"

	"github.com/mrlokans/booksearch/internal/entities"
	"github.com/mrlokans/booksearch/internal/logger"
	"github.com/mrlokans/booksearch/internal/metrics"
)

const (
	// PageSize is the number of docs requested per search page.
	PageSize = 25

	DefaultBaseURL   = "https://openlibrary.org"
	DefaultUserAgent = "BookSearch/1.0 (https://github.com/mrlokans/booksearch)"
	DefaultTimeout   = 10 * time.Second

	coversBaseURL = "https://covers.openlibrary.org"

	endpointSearch = "search"
	endpointBook   = "book"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// SearchRequest describes one page of a catalog search.
type SearchRequest struct {
	Query string
	Page  int
	Sort  string // catalog vocabulary, e.g. "new", "old", "rating"; empty means relevance
}

// SearchResult is the decoded body of search.json.
type SearchResult struct {
	NumFound int                    `json:"numFound"`
	Docs     []entities.BookSummary `json:"docs"`
}

// Fetcher is the capability the state containers depend on.
type Fetcher interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResult, error)
	FetchBook(ctx context.Context, key string) (*entities.BookDetail, error)
}

// Options configures an OpenLibraryClient. Zero values fall back to defaults.
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// RequestsPerSecond caps outgoing requests; 0 or less disables the limit.
	RequestsPerSecond float64
}

// OpenLibraryClient fetches search pages and book records from the Open Library API.
type OpenLibraryClient struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
}

// NewOpenLibraryClient creates a client for the given options.
func NewOpenLibraryClient(opts Options) *OpenLibraryClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &OpenLibraryClient{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		limiter:   rate.NewLimiter(limit, 1),
	}
}

// Search fetches one page of docs matching req.
func (c *OpenLibraryClient) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	var res SearchResult
	if err := c.get(ctx, endpointSearch, c.searchURL(req), &res); err != nil {
		return nil, err
	}
	if res.Docs == nil {
		res.Docs = []entities.BookSummary{}
	}
	return &res, nil
}

func (c *OpenLibraryClient) searchURL(req SearchRequest) string {
	params := url.Values{}
	params.Set("q", req.Query)
	params.Set("page", strconv.Itoa(req.Page))
	if req.Sort != "" {
		params.Set("sort", req.Sort)
	}
	params.Set("limit", strconv.Itoa(PageSize))
	return c.baseURL + "/search.json?" + params.Encode()
}

// bookRecord is the wire shape of a work or edition record. Works carry their
// cover ids in "covers" rather than "cover_i".
type bookRecord struct {
	entities.BookDetail
	Covers []int `json:"covers"`
}

// FetchBook fetches the record addressed by a catalog key such as "/works/OL45804W".
func (c *OpenLibraryClient) FetchBook(ctx context.Context, key string) (*entities.BookDetail, error) {
	key = NormalizeKey(key)
	if key == "" {
		return nil, ErrEmptyKey
	}

	u, err := url.JoinPath(c.baseURL, key+".json")
	if err != nil {
		return nil, fmt.Errorf("build book url: %w", err)
	}

	var rec bookRecord
	if err := c.get(ctx, endpointBook, u, &rec); err != nil {
		return nil, err
	}

	book := rec.BookDetail
	if book.CoverID == 0 && len(rec.Covers) > 0 {
		book.CoverID = rec.Covers[0]
	}
	if book.AuthorNames == nil {
		book.AuthorNames = []string{}
	}
	return &book, nil
}

// NormalizeKey trims a catalog key and makes sure it starts with a slash.
func NormalizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	if !strings.HasPrefix(key, "/") {
		key = "/" + key
	}
	return key
}

// CoverURL builds the cover image URL for a cover id. size is S, M or L.
func CoverURL(coverID int, size string) string {
	if coverID <= 0 {
		return ""
	}
	if size == "" {
		size = "M"
	}
	return fmt.Sprintf("%s/b/id/%d-%s.jpg", coversBaseURL, coverID, size)
}

func (c *OpenLibraryClient) get(ctx context.Context, endpoint, u string, target any) error {
	defer logger.Track(ctx, "catalog "+endpoint)()

	start := time.Now()
	outcome := metrics.OutcomeOK
	defer func() {
		metrics.CatalogRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
		metrics.CatalogRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		outcome = metrics.OutcomeNetwork
		return fmt.Errorf("wait for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		outcome = metrics.OutcomeNetwork
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	logger.For(ctx).WithField("url", u).Debug("catalog request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		outcome = metrics.OutcomeNetwork
		return fmt.Errorf("fetch %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		outcome = metrics.OutcomeNetwork
		return fmt.Errorf("read %s response: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome = metrics.OutcomeHTTPError
		return newAPIError(resp.StatusCode, body)
	}

	if err := jsonAPI.Unmarshal(body, target); err != nil {
		outcome = metrics.OutcomeDecode
		return fmt.Errorf("%w: decode %s response: %w", ErrMalformedResponse, endpoint, err)
	}
	return nil
}
