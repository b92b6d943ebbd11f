package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mrlokans/booksearch/internal/catalog"
	"github.com/mrlokans/booksearch/internal/config"
	"github.com/mrlokans/booksearch/internal/state"
)

// ShowCommand fetches a single work or edition and prints it.
type ShowCommand struct {
	Key  string
	JSON bool

	Config  *config.Config
	Fetcher catalog.Fetcher
	Out     io.Writer
}

func NewShowCommand(cfg *config.Config) *ShowCommand {
	return &ShowCommand{Config: cfg, Out: os.Stdout}
}

func (cmd *ShowCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)

	fs.StringVar(&cmd.Key, "key", "", "Catalog key, e.g. /works/OL45804W (required)")
	fs.BoolVar(&cmd.JSON, "json", false, "Print the detail state as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s show -key <key> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Fetch one work or edition from the Open Library catalog.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s show -key /works/OL45804W\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s show -key /books/OL7353617M -json\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if catalog.NormalizeKey(cmd.Key) == "" {
		return fmt.Errorf("required flag -key not provided")
	}

	return nil
}

func (cmd *ShowCommand) Run() error {
	store := newStore(cmd.Config, cmd.Fetcher)

	ctx, cancel := commandContext(cmd.Config)
	defer cancel()

	store.Book.FetchOne(ctx, cmd.Key)
	snapshot := store.Snapshot()

	if cmd.JSON {
		if err := writeJSON(cmd.Out, snapshot.Book); err != nil {
			return fmt.Errorf("failed to encode state: %w", err)
		}
	}

	if state.SelectBookStatus(snapshot) == state.StatusRejected {
		if msg := state.SelectBookError(snapshot); msg != "" {
			return fmt.Errorf("fetch failed: %s", msg)
		}
		return fmt.Errorf("fetch failed for %s", cmd.Key)
	}
	if cmd.JSON {
		return nil
	}

	book := state.SelectBook(snapshot)
	fmt.Fprintf(cmd.Out, "%s\n", book.Title)
	fmt.Fprintf(cmd.Out, "%s\n", strings.Repeat("=", len(book.Title)))
	fmt.Fprintf(cmd.Out, "Key:     %s\n", book.Key)
	fmt.Fprintf(cmd.Out, "Authors: %s\n", formatAuthors(book.AuthorNames))
	if url := catalog.CoverURL(book.CoverID, "L"); url != "" {
		fmt.Fprintf(cmd.Out, "Cover:   %s\n", url)
	}
	if len(book.Subjects) > 0 {
		fmt.Fprintf(cmd.Out, "Subjects: %s\n", strings.Join(book.Subjects, ", "))
	}
	if text := book.Description.Text(); text != "" {
		fmt.Fprintf(cmd.Out, "\n%s\n", text)
	}
	return nil
}
