package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brogergvhs/noveltomanga/internal/config"
	"github.com/brogergvhs/noveltomanga/internal/content"
	"github.com/brogergvhs/noveltomanga/internal/pages"
	"github.com/brogergvhs/noveltomanga/internal/render"
	"github.com/brogergvhs/noveltomanga/internal/synthetic"
	"github.com/brogergvhs/noveltomanga/internal/util"
)

var (
	flagRenderIn  string
	flagRenderOut string
	flagRenderCBZ bool
)

func init() {
	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Render a local text file (paragraphs separated by blank lines) to page images",
		RunE:  runRender,
	}

	renderCmd.Flags().StringVar(&flagRenderIn, "in", "", "input text file")
	renderCmd.Flags().StringVar(&flagRenderOut, "out", "pages", "output folder for PNG pages")
	renderCmd.Flags().BoolVar(&flagRenderCBZ, "cbz", false, "also pack the pages into <out>.cbz")
	_ = renderCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	s, err := openSession(config.Options{})
	if err != nil {
		return err
	}
	defer s.Close()

	b, err := os.ReadFile(flagRenderIn)
	if err != nil {
		return err
	}

	cfg := s.store.Snapshot()
	list, err := pages.FromNodes(paragraphs(string(b)), s.engine, cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(flagRenderOut, 0755); err != nil {
		return err
	}

	files := make([]string, 0, len(list))
	for _, p := range list {
		text, _ := synthetic.DecodeString(p.URL)
		img, err := s.engine.Rasterize(text, cfg)
		if err != nil {
			return fmt.Errorf("page %d: %w", p.Index, err)
		}
		data, err := render.EncodePNG(img)
		if err != nil {
			return fmt.Errorf("page %d: %w", p.Index, err)
		}

		out := filepath.Join(flagRenderOut, fmt.Sprintf("page_%03d.png", p.Index))
		if err := os.WriteFile(out, data, 0644); err != nil {
			return err
		}
		files = append(files, out)
		s.log.Debugf("wrote %s (%s)\n", out, util.Human(int64(len(data))))
	}

	fmt.Printf("Rendered %d pages into %s\n", len(files), flagRenderOut)

	if flagRenderCBZ {
		cbz := strings.TrimRight(flagRenderOut, string(os.PathSeparator)) + ".cbz"
		title := strings.TrimSuffix(filepath.Base(flagRenderIn), filepath.Ext(flagRenderIn))
		if err := util.CreateCBZ(files, cbz, &util.ComicInfo{Title: title, PageCount: len(files), Manga: "Yes"}); err != nil {
			return err
		}
		fmt.Printf("Packed %s\n", cbz)
	}

	return nil
}

// paragraphs splits plain text on blank lines and joins wrapped lines inside a
// paragraph with a space.
func paragraphs(text string) []content.Node {
	var nodes []content.Node
	var cur []string

	flush := func() {
		if len(cur) > 0 {
			nodes = append(nodes, content.Text(strings.Join(cur, " ")))
			cur = nil
		}
	}

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		cur = append(cur, line)
	}
	flush()

	return nodes
}
