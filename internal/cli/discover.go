package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/medqa/internal/discover"
	"github.com/ppiankov/medqa/internal/extract"
	"github.com/ppiankov/medqa/internal/extract/adapters"
)

var (
	discoverOutput string
)

// discoverCmd represents the discover command
var discoverCmd = &cobra.Command{
	Use:   "discover <source>",
	Short: "List article URLs from a source's index pages",
	Long: `Discover walks the index pages of a source (vinmec, medlatec, medlineplus)
and writes every article URL found, one per line, in index order.

Example:
  medqa discover vinmec -o vinmec_urls.txt
  medqa discover medlineplus > urls.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().StringVarP(&discoverOutput, "output", "o", "", "output file (default: stdout)")
}

func runDiscover(cmd *cobra.Command, args []string) (err error) {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	registry := adapters.NewRegistry(extract.NewSegmenter())
	adapter, ok := registry.Lookup(args[0])
	if !ok {
		return fmt.Errorf("unknown source: %s (available: %s)", args[0], strings.Join(registry.Names(), ", "))
	}
	idx, ok := adapter.(adapters.Indexer)
	if !ok {
		return fmt.Errorf("source %s has no index pages", args[0])
	}

	banner("medqa Discover")
	fmt.Fprintf(os.Stderr, "  Source:       %s\n", adapter.Name())
	fmt.Fprintf(os.Stderr, "  Index pages:  %d\n", len(idx.IndexURLs()))
	fmt.Fprintf(os.Stderr, "\n")

	d := discover.New(discover.ConfigFromModel(cfg), log)
	res, err := d.Discover(context.Background(), idx, func(pageURL string, links int, perr error) {
		if perr != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", pageURL, perr)
			return
		}
		fmt.Fprintf(os.Stderr, "✓ %s (%d links)\n", pageURL, links)
	})
	if err != nil {
		return fmt.Errorf("discover: %w", err)
	}

	var out io.Writer = os.Stdout
	if discoverOutput != "" {
		f, ferr := os.Create(discoverOutput)
		if ferr != nil {
			return fmt.Errorf("create output: %w", ferr)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close output: %w", closeErr)
			}
		}()
		out = f
	}
	if err := writeLines(out, res.URLs); err != nil {
		return fmt.Errorf("write urls: %w", err)
	}

	banner("Discover Complete")
	fmt.Fprintf(os.Stderr, "  Pages:     %d\n", res.Pages)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", res.Failed)
	fmt.Fprintf(os.Stderr, "  URLs:      %d\n", len(res.URLs))
	if discoverOutput != "" {
		fmt.Fprintf(os.Stderr, "  Output:    %s\n", discoverOutput)
	}
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

func writeLines(w io.Writer, lines []string) error {
	bw := bufio.NewWriter(w)
	for _, l := range lines {
		if _, err := bw.WriteString(l + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
