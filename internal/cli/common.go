package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/mrlokans/booksearch/internal/catalog"
	"github.com/mrlokans/booksearch/internal/config"
	"github.com/mrlokans/booksearch/internal/entities"
	"github.com/mrlokans/booksearch/internal/state"
)

// newStore builds a process-local store backed by the configured catalog.
func newStore(cfg *config.Config, fetcher catalog.Fetcher) *state.Store {
	if fetcher == nil {
		fetcher = catalog.NewOpenLibraryClient(catalog.Options{
			BaseURL:           cfg.Catalog.BaseURL,
			UserAgent:         cfg.Catalog.UserAgent,
			Timeout:           cfg.Catalog.Timeout,
			RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
		})
	}
	return state.NewStore(fetcher, state.Options{
		DiscardStaleResponses: cfg.State.DiscardStaleResponses,
		CaptureDetailErrors:   cfg.State.CaptureDetailErrors,
	})
}

func commandContext(cfg *config.Config) (context.Context, context.CancelFunc) {
	if cfg.Catalog.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	// Rate limiter wait plus the request itself
	return context.WithTimeout(context.Background(), 2*cfg.Catalog.Timeout)
}

func writeJSON(out io.Writer, v any) error {
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatAuthors(authors []string) string {
	if len(authors) == 0 {
		return "(unknown author)"
	}
	return strings.Join(authors, ", ")
}

func printSummary(out io.Writer, n int, b entities.BookSummary) {
	year := ""
	if b.FirstPublishYear != "" {
		year = fmt.Sprintf(" (%s)", b.FirstPublishYear)
	}
	fmt.Fprintf(out, "%3d. %s%s by %s\n     %s\n", n, b.Title, year, formatAuthors(b.AuthorNames), b.Key)
}
