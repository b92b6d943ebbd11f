package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/booksearch/internal/catalog"
	"github.com/mrlokans/booksearch/internal/config"
	"github.com/mrlokans/booksearch/internal/state"
)

// SearchCommand runs one catalog search and prints the resulting page.
type SearchCommand struct {
	Query string
	Page  int
	Sort  string
	JSON  bool

	Config  *config.Config
	Fetcher catalog.Fetcher
	Out     io.Writer
}

func NewSearchCommand(cfg *config.Config) *SearchCommand {
	return &SearchCommand{Config: cfg, Out: os.Stdout}
}

func (cmd *SearchCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)

	fs.StringVar(&cmd.Query, "q", "", "Search query (required)")
	fs.IntVar(&cmd.Page, "page", 1, "Result page, starting at 1")
	fs.StringVar(&cmd.Sort, "sort", "", "Sort order understood by the catalog, e.g. 'new' or 'old'")
	fs.BoolVar(&cmd.JSON, "json", false, "Print the list-search state as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s search -q <query> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Search the Open Library catalog.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s search -q dune\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s search -q \"frank herbert\" -page 2 -sort new -json\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Query == "" {
		return fmt.Errorf("required flag -q not provided")
	}
	if cmd.Page < 1 {
		return fmt.Errorf("-page must be at least 1, got %d", cmd.Page)
	}

	return nil
}

func (cmd *SearchCommand) Run() error {
	store := newStore(cmd.Config, cmd.Fetcher)

	ctx, cancel := commandContext(cmd.Config)
	defer cancel()

	store.Books.Search(ctx, catalog.SearchRequest{Query: cmd.Query, Page: cmd.Page, Sort: cmd.Sort})
	snapshot := store.Snapshot()

	if cmd.JSON {
		if err := writeJSON(cmd.Out, snapshot.Books); err != nil {
			return fmt.Errorf("failed to encode state: %w", err)
		}
	}

	if state.SelectBooksStatus(snapshot) == state.StatusRejected {
		return fmt.Errorf("search failed: %s", state.SelectBooksError(snapshot))
	}
	if cmd.JSON {
		return nil
	}

	books := state.SelectAllBooks(snapshot)
	fmt.Fprintf(cmd.Out, "Results for %q, page %d of %d\n\n", cmd.Query, state.SelectPage(snapshot), state.SelectNumberOfPages(snapshot))
	if len(books) == 0 {
		fmt.Fprintln(cmd.Out, "No books found")
		return nil
	}
	offset := (cmd.Page - 1) * catalog.PageSize
	for i, b := range books {
		printSummary(cmd.Out, offset+i+1, b)
	}
	return nil
}
