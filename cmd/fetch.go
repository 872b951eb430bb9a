package main

import (
	"github.com/spf13/cobra"

	"github.com/rcap107/caparezzology/internal/api"
	"github.com/rcap107/caparezzology/internal/model"
	"github.com/rcap107/caparezzology/internal/output"
	"github.com/rcap107/caparezzology/internal/throttle"
)

func newFetchCmd(a *app) *cobra.Command {
	cfg := a.cfg
	var credential string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch every song of an artist from the Genius API into a CSV.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			creds, err := a.loadCredentials()
			if err != nil {
				return err
			}
			client := api.New(a.httpClient(creds), a.logger, api.Options{
				BaseURL:     cfg.APIBaseURL,
				Credential:  credential,
				PageLimiter: throttle.Every(cfg.PageInterval),
				Timeout:     cfg.HTTPTimeout,
			})

			artistID := int64(cfg.ArtistID)
			if cfg.ArtistName != "" {
				artistID, err = client.ResolveArtistID(ctx, cfg.ArtistName)
				if err != nil {
					return err
				}
			}

			if artist, err := client.GetArtist(ctx, artistID); err != nil {
				a.logger.Warnf("Fetch artist %d details: %v", artistID, err)
			} else {
				a.logger.Infof("Artist: %s (%s)", artist.Name, artist.URL)
			}
			a.logger.Infof("Fetching all songs for artist id %d", artistID)

			songs, err := client.AllSongs(ctx, artistID, cfg.PerPage)
			if err != nil {
				return err
			}
			a.logger.Infof("Total songs fetched: %d", len(songs))

			_, err = output.NewWriter(a.logger).WriteSongsCSV(cfg.SongsCSV, model.Records(songs))
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.APIBaseURL, "api-base-url", cfg.APIBaseURL, "Genius API base URL")
	flags.IntVar(&cfg.ArtistID, "artist-id", cfg.ArtistID, "Genius artist id")
	flags.StringVar(&cfg.ArtistName, "artist", cfg.ArtistName, "resolve the artist id by name instead of --artist-id")
	flags.IntVar(&cfg.PerPage, "per-page", cfg.PerPage, "songs per page (1-50)")
	flags.DurationVar(&cfg.PageInterval, "page-interval", cfg.PageInterval, "pause between page requests")
	flags.StringVarP(&cfg.SongsCSV, "output", "o", cfg.SongsCSV, "songs CSV path")
	flags.StringVar(&credential, "credential", api.DefaultCredential, "credential name sent as access_token")
	return cmd
}
