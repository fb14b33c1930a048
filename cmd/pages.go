package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/brogergvhs/noveltomanga/internal/config"
	"github.com/brogergvhs/noveltomanga/internal/pages"
	"github.com/brogergvhs/noveltomanga/internal/synthetic"
)

var (
	flagPagesSelector string
	flagPagesFull     bool
)

func init() {
	pagesCmd := &cobra.Command{
		Use:   "pages <chapter-url>",
		Short: "Print the page list a chapter turns into",
		Args:  cobra.ExactArgs(1),
		RunE:  runPages,
	}

	pagesCmd.Flags().StringVar(&flagPagesSelector, "selector", "", "CSS selector of the chapter text container")
	pagesCmd.Flags().BoolVar(&flagPagesFull, "full", false, "print full page URLs instead of a text preview")

	rootCmd.AddCommand(pagesCmd)
}

func runPages(cmd *cobra.Command, args []string) error {
	s, err := openSession(config.Options{ContentSelector: flagPagesSelector})
	if err != nil {
		return err
	}
	defer s.Close()

	client, err := s.httpClient()
	if err != nil {
		return err
	}

	src := s.source(client)
	ch, nodes, err := src.Chapter(context.Background(), args[0])
	if err != nil {
		return err
	}

	list, err := pages.FromNodes(nodes, s.engine, s.store.Snapshot())
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d pages\n\n", ch.Title, len(list))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "INDEX\tORIGIN\tPAGE")
	for _, p := range list {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", p.Index, p.Origin, describe(p, flagPagesFull))
	}

	return w.Flush()
}

func describe(p pages.Page, full bool) string {
	if full || p.Origin == pages.Native {
		return p.URL
	}

	text, _ := synthetic.DecodeString(p.URL)
	text = strings.Join(strings.Fields(text), " ")
	if r := []rune(text); len(r) > 60 {
		text = string(r[:60]) + "…"
	}

	return fmt.Sprintf("%q", text)
}
