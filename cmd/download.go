package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/brogergvhs/noveltomanga/internal/chapters"
	"github.com/brogergvhs/noveltomanga/internal/config"
	"github.com/brogergvhs/noveltomanga/internal/downloader"
	"github.com/brogergvhs/noveltomanga/internal/pages"
	"github.com/brogergvhs/noveltomanga/internal/providers"
	"github.com/brogergvhs/noveltomanga/internal/ui"
	"github.com/brogergvhs/noveltomanga/internal/util"
)

var (
	// selection
	flagNovel   string
	flagChapter string
	flagRange   string
	flagList    string

	// runtime
	flagOutput         string
	flagImageWorkers   int
	flagChapterWorkers int
	flagKeepFolders    bool
	flagDryRun         bool
	flagSkipBroken     bool
	flagSelector       string

	// headers/auth
	flagCookie     string
	flagCookieFile string
	flagUserAgent  string
	flagCloudflare bool
	flagRPS        float64
)

func init() {
	downloadCmd := &cobra.Command{
		Use:   "download [chapter-url...]",
		Short: "Render novel chapters to pages and produce CBZ files. Uses the defaults from the selected config, overwritten by CLI flags",
		RunE:  runDownload,
	}

	// selection
	downloadCmd.Flags().StringVar(&flagNovel, "novel", "", "novel page URL to pick chapters from")
	downloadCmd.Flags().StringVar(&flagChapter, "chapter", "", "with --novel: single chapter by index or label (e.g. 5 or 28.5)")
	downloadCmd.Flags().StringVar(&flagRange, "range", "", "with --novel: range of chapters by index (e.g. 5-12)")
	downloadCmd.Flags().StringVar(&flagList, "list", "", "with --novel: specific chapter indices (e.g. 1,3,5)")

	// runtime
	downloadCmd.Flags().StringVar(&flagOutput, "output", "", "output folder for CBZ files")
	downloadCmd.Flags().IntVar(&flagImageWorkers, "image-workers", 5, "parallel page fetches per chapter")
	downloadCmd.Flags().IntVar(&flagChapterWorkers, "chapter-workers", 2, "parallel chapter downloads")
	downloadCmd.Flags().BoolVar(&flagKeepFolders, "keep-folders", false, "keep temporary folders")
	downloadCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "show chapters and page counts, write nothing")
	downloadCmd.Flags().BoolVar(&flagSkipBroken, "skip-broken", false, "skip failed pages instead of failing the whole chapter")
	downloadCmd.Flags().StringVar(&flagSelector, "selector", "", "CSS selector of the chapter text container")

	// headers/auth
	downloadCmd.Flags().StringVar(&flagCookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	downloadCmd.Flags().StringVar(&flagCookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")
	downloadCmd.Flags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")
	downloadCmd.Flags().BoolVar(&flagCloudflare, "cloudflare", false, "use a browser-like TLS setup for sites behind Cloudflare")
	downloadCmd.Flags().Float64Var(&flagRPS, "rps", 0, "max requests per second to the site (0 = unlimited)")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	if flagNovel == "" && len(args) == 0 {
		return fmt.Errorf("give chapter URLs or --novel <url>")
	}

	s, err := openSession(config.Options{
		Output:            flagOutput,
		KeepFolders:       flagKeepFolders,
		ContentSelector:   flagSelector,
		Cookie:            flagCookie,
		CookieFile:        flagCookieFile,
		UserAgent:         flagUserAgent,
		Cloudflare:        flagCloudflare,
		RequestsPerSecond: flagRPS,
		SkipBroken:        flagSkipBroken,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	cfg := s.cfg
	if cmd.Flags().Changed("image-workers") {
		cfg.ImageWorkers = flagImageWorkers
	}
	if cmd.Flags().Changed("chapter-workers") {
		cfg.ChapterWorkers = flagChapterWorkers
	}

	fmt.Printf("Config file: %s\n", s.usedPath)
	fmt.Println("Full config:")
	cfg.Print()
	fmt.Println()

	if err := os.MkdirAll(cfg.Output, 0755); err != nil {
		return fmt.Errorf("cannot create output folder: %w", err)
	}

	client, err := s.httpClient()
	if err != nil {
		return err
	}

	ctx := context.Background()
	src := s.source(client)

	selected, err := selectChapters(ctx, src, args)
	if err != nil {
		return err
	}

	if flagDryRun {
		return dryRun(ctx, s, src, selected)
	}

	util.SetupInterruptHandler(cfg.Output, s.log)

	pm := ui.NewProgressManager(os.Stdout)
	stats := &ui.Stats{}
	dl := downloader.New(client, s.log, cfg.SkipBroken)
	start := time.Now()

	sem := make(chan struct{}, max(1, cfg.ChapterWorkers))
	var wg sync.WaitGroup

	for _, ch := range selected {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			if err := downloadChapter(ctx, s, src, dl, pm, stats, ch); err != nil {
				s.log.Errorf("%s: %v\n", ch.URL, err)
			}
		}()
	}
	wg.Wait()
	pm.Close()

	fmt.Println()
	fmt.Println("Download Summary:")
	fmt.Printf("  %s\n", stats.Summary())
	fmt.Printf("  Time: %s\n", time.Since(start).Round(time.Second))
	fmt.Println("\nAll done.")

	return nil
}

func selectChapters(ctx context.Context, src providers.Source, args []string) ([]chapters.Chapter, error) {
	if flagNovel == "" {
		out := make([]chapters.Chapter, 0, len(args))
		for _, u := range args {
			out = append(out, chapters.Chapter{URL: u})
		}
		return out, nil
	}

	all, err := src.Chapters(ctx, flagNovel)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Found %d chapters on the site.\n\n", len(all))

	selected := chapters.Filter(all, flagChapter, flagRange, flagList)
	if len(selected) == 0 {
		return nil, fmt.Errorf("no chapters selected")
	}

	return selected, nil
}

func dryRun(ctx context.Context, s *session, src providers.Source, selected []chapters.Chapter) error {
	fmt.Printf("Dry-run: %d chapters selected.\n\n", len(selected))

	cfg := s.store.Snapshot()
	for i, ch := range selected {
		info, nodes, err := src.Chapter(ctx, ch.URL)
		if err != nil {
			fmt.Printf("%3d) %s\n    %s\n    error: %v\n", i+1, ch.Title, ch.URL, err)
			continue
		}

		list, err := pages.FromNodes(nodes, s.engine, cfg)
		if err != nil {
			return err
		}
		fmt.Printf("%3d) %s  [%s]\n    %s\n    %d pages -> %s\n", i+1, info.Title, info.Label, ch.URL, len(list), info.OutputCBZ())
	}

	return nil
}

func downloadChapter(
	ctx context.Context,
	s *session,
	src providers.Source,
	dl *downloader.Downloader,
	pm *ui.MPBProgressManager,
	stats *ui.Stats,
	ch chapters.Chapter,
) error {
	info, nodes, err := src.Chapter(ctx, ch.URL)
	if err != nil {
		return err
	}
	if ch.Title == "" {
		ch = info
	}

	// One snapshot per chapter: pagination and the files it produces agree.
	list, err := pages.FromNodes(nodes, s.engine, s.store.Snapshot())
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return fmt.Errorf("no pages")
	}

	label := ch.Label
	if label == "" {
		label = ch.Title
	}
	handle := pm.Register("Ch." + label)
	handle.SetTotal(len(list))

	tmpFolder := filepath.Join(s.cfg.Output, ch.FolderName())
	cbzOut := ch.OutputCBZPath(s.cfg.Output)

	files, n, err := dl.DownloadPages(ctx, list, tmpFolder, ch.URL, max(1, s.cfg.ImageWorkers), handle)
	if err != nil {
		_ = os.RemoveAll(tmpFolder)
		return err
	}

	meta := &util.ComicInfo{Title: ch.Title, Web: ch.URL, PageCount: len(files), Manga: "Yes"}
	if err := util.CreateCBZ(files, cbzOut, meta); err != nil {
		_ = os.RemoveAll(tmpFolder)
		return err
	}

	if !s.cfg.KeepFolders {
		_ = os.RemoveAll(tmpFolder)
	}

	stats.TotalChapters.Add(1)
	stats.TotalBytes.Add(n)
	for _, p := range list {
		if p.Origin == pages.Native {
			stats.NativePages.Add(1)
		} else {
			stats.SyntheticPages.Add(1)
		}
	}

	return nil
}
