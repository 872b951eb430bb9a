package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcap107/caparezzology/internal/catalog"
	"github.com/rcap107/caparezzology/internal/httpclient"
	"github.com/rcap107/caparezzology/internal/output"
	"github.com/rcap107/caparezzology/internal/pipeline"
	"github.com/rcap107/caparezzology/internal/scrape"
	"github.com/rcap107/caparezzology/internal/state"
	"github.com/rcap107/caparezzology/internal/throttle"
)

func newScrapeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape lyrics pages into a per-album text tree.",
	}
	cmd.PersistentFlags().StringVarP(&a.cfg.LyricsDir, "output", "o", a.cfg.LyricsDir, "lyrics output directory")
	cmd.AddCommand(newScrapeDiscographyCmd(a), newScrapeCSVCmd(a))
	return cmd
}

func newScrapeDiscographyCmd(a *app) *cobra.Command {
	cfg := a.cfg
	var resetState bool

	cmd := &cobra.Command{
		Use:   "discography [page-url]",
		Short: "Scrape every album listed on a discography page.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 1 {
				cfg.DiscographyURL = args[0]
			}

			strategy, err := scrape.StrategyByName(cfg.Strategy)
			if err != nil {
				return err
			}
			creds, err := a.loadCredentials()
			if err != nil {
				return err
			}
			fetcher := scrape.NewFetcher(a.httpClient(creds), scrape.FetcherOptions{Timeout: cfg.HTTPTimeout})
			scraper := scrape.NewDiscography(fetcher, strategy)

			if err := os.MkdirAll(cfg.LyricsDir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			store, err := state.Open(cfg.LyricsDir)
			if err != nil {
				return fmt.Errorf("initialize completion state: %w", err)
			}
			if resetState {
				if err := store.Reset(); err != nil {
					return fmt.Errorf("reset completion state: %w", err)
				}
				a.logger.Infof("Cleared completed albums in %s", store.Path())
			}

			cache := catalog.NewCache(resolveAlbumCachePath(*cfg))
			albums, err := loadAlbums(ctx, *cfg, a.logger, scraper, cache)
			if err != nil {
				return err
			}

			selected, err := chooseAlbums(*cfg, albums, store)
			if err != nil {
				return fmt.Errorf("select albums: %w", err)
			}
			if len(albums) > 0 && len(selected) == 0 {
				a.logger.Warnf("No albums selected; exiting")
				return nil
			}
			if len(selected) < len(albums) {
				a.logger.Infof("Selected %d/%d albums", len(selected), len(albums))
			}

			run := &pipeline.Discography{
				Scraper:      scraper,
				Writer:       output.NewWriter(a.logger),
				Store:        store,
				OutputDir:    cfg.LyricsDir,
				SongLimiter:  throttle.Every(cfg.SongInterval),
				AlbumLimiter: throttle.Every(cfg.AlbumInterval),
				Logger:       a.logger,
			}
			sum, err := run.Run(ctx, selected)
			if err != nil {
				return err
			}
			if sum.Failed > 0 {
				return fmt.Errorf("%d songs failed; run again to retry pending albums", sum.Failed)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.DiscographyURL, "url", cfg.DiscographyURL, "discography page URL")
	flags.StringVar(&cfg.Strategy, "strategy", cfg.Strategy, fmt.Sprintf("song page extraction strategy %v", scrape.StrategyNames()))
	flags.DurationVar(&cfg.SongInterval, "song-interval", cfg.SongInterval, "pause between song requests")
	flags.DurationVar(&cfg.AlbumInterval, "album-interval", cfg.AlbumInterval, "pause between albums")
	flags.StringVar(&cfg.Albums, "albums", cfg.Albums, "comma-separated album names to scrape, or \"all\"")
	flags.BoolVar(&cfg.ChooseAlbums, "choose-albums", cfg.ChooseAlbums, "interactively choose albums to scrape")
	flags.BoolVar(&cfg.RefreshAlbums, "refresh-albums", cfg.RefreshAlbums, "fetch the discography page even when the album cache is fresh")
	flags.StringVar(&cfg.AlbumCachePath, "album-cache", cfg.AlbumCachePath, "album cache file path (default: <output>/albums_cache.json)")
	flags.DurationVar(&cfg.AlbumCacheTTL, "album-cache-ttl", cfg.AlbumCacheTTL, "album cache lifetime (0 never expires)")
	flags.BoolVar(&resetState, "reset-state", false, "forget completed albums and scrape everything again")
	return cmd
}

func newScrapeCSVCmd(a *app) *cobra.Command {
	cfg := a.cfg
	var (
		credential string
		album      string
	)

	cmd := &cobra.Command{
		Use:   "csv [songs.csv]",
		Short: "Scrape the song URLs listed in a songs CSV from data-attribute lyrics pages.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 1 {
				cfg.SongsCSV = args[0]
			}

			records, err := output.ReadSongsCSV(cfg.SongsCSV)
			if err != nil {
				return err
			}
			creds, err := a.loadCredentials()
			if err != nil {
				return err
			}
			if credential != "" {
				if _, ok := creds.Get(credential); !ok {
					return &httpclient.ConfigurationError{Credential: credential}
				}
			}
			fetcher := scrape.NewFetcher(a.httpClient(creds), scrape.FetcherOptions{
				Credential: credential,
				Timeout:    cfg.HTTPTimeout,
			})

			run := &pipeline.Records{
				Scraper:      scrape.NewLyricsPage(fetcher),
				Writer:       output.NewWriter(a.logger),
				OutputDir:    cfg.LyricsDir,
				Album:        album,
				SkipExisting: cfg.SkipExisting,
				Limiter:      throttle.Every(cfg.CSVSongInterval),
				Logger:       a.logger,
			}
			sum, err := run.Run(ctx, records)
			if err != nil {
				return err
			}
			if sum.Failed > 0 {
				return fmt.Errorf("%d songs failed", sum.Failed)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.SongsCSV, "csv", cfg.SongsCSV, "songs CSV to read")
	flags.StringVar(&album, "album", "", "write lyrics under <output>/<album>/")
	flags.BoolVar(&cfg.SkipExisting, "skip-existing", cfg.SkipExisting, "skip songs whose lyrics file already exists")
	flags.DurationVar(&cfg.CSVSongInterval, "interval", cfg.CSVSongInterval, "pause between song requests")
	flags.StringVar(&credential, "auth", "", "credential name to send with page requests, e.g. genius_key")
	return cmd
}
