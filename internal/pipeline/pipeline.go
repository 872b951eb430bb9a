// Package pipeline runs the sequential lyrics scraping loops.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rcap107/caparezzology/internal/logging"
	"github.com/rcap107/caparezzology/internal/model"
	"github.com/rcap107/caparezzology/internal/output"
	"github.com/rcap107/caparezzology/internal/scrape"
	"github.com/rcap107/caparezzology/internal/throttle"
)

// LyricsWriter persists one song's lyrics.
type LyricsWriter interface {
	WriteLyrics(body, path string) error
}

// CompletionStore records albums that were scraped without failures.
type CompletionStore interface {
	IsCompleted(album string) bool
	MarkCompleted(album string) error
}

// Summary counts what a run did.
type Summary struct {
	Albums        int
	SkippedAlbums int
	Saved         int
	Skipped       int
	Missing       int
	Failed        int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d saved, %d skipped, %d without lyrics, %d failed (%d albums, %d already completed)",
		s.Saved, s.Skipped, s.Missing, s.Failed, s.Albums, s.SkippedAlbums)
}

type songOutcome int

const (
	songSaved songOutcome = iota
	songMissing
	songFailed
)

func (s *Summary) add(o songOutcome) {
	switch o {
	case songSaved:
		s.Saved++
	case songMissing:
		s.Missing++
	case songFailed:
		s.Failed++
	}
}

// Discography scrapes every album of a grouping into OutputDir/<album>/.
type Discography struct {
	Scraper   scrape.Scraper
	Writer    LyricsWriter
	Store     CompletionStore
	OutputDir string
	// SongLimiter spaces song page requests; AlbumLimiter adds a pause
	// between albums.
	SongLimiter  *throttle.Limiter
	AlbumLimiter *throttle.Limiter
	Logger       *logging.Logger
}

// Run processes albums in order. Per-song network, status and filesystem
// errors are logged and counted; only context cancellation stops the run.
func (d *Discography) Run(ctx context.Context, grouping model.AlbumGrouping) (Summary, error) {
	var sum Summary
	if len(grouping) == 0 {
		d.Logger.Warnf("No albums found")
		return sum, nil
	}
	d.Logger.Infof("Found %d albums (song interval %s, album interval %s)",
		len(grouping), d.SongLimiter.Interval(), d.AlbumLimiter.Interval())

	for _, album := range grouping {
		if d.Store != nil && d.Store.IsCompleted(album.Name) {
			d.Logger.Infof("Skipping completed album: %s", album.Name)
			sum.SkippedAlbums++
			continue
		}
		if err := d.AlbumLimiter.Wait(ctx); err != nil {
			return sum, err
		}

		logger := d.Logger.With("album", album.Name)
		started := time.Now()
		sum.Albums++
		total := len(album.SongURLs)
		logger.Infof("Processing album, found %d songs", total)

		failures, saved := 0, 0
		for i, songURL := range album.SongURLs {
			if err := d.SongLimiter.Wait(ctx); err != nil {
				return sum, err
			}
			logger.Infof("[%d/%d] Scraping %s", i+1, total, songURL)

			outcome := d.song(ctx, logger, album.Name, songURL)
			switch outcome {
			case songFailed:
				failures++
			case songSaved:
				saved++
			}
			sum.add(outcome)
			if err := ctx.Err(); err != nil {
				return sum, err
			}
		}

		if failures > 0 {
			logger.Warnf("Finished with %d failed songs; album stays pending", failures)
			continue
		}
		// An album whose pages all came back empty is likely a layout the
		// strategy cannot read; leave it for a later run.
		if total > 0 && saved == 0 {
			logger.Warnf("No lyrics extracted from %d songs; album stays pending", total)
			continue
		}
		if d.Store != nil {
			if err := d.Store.MarkCompleted(album.Name); err != nil {
				logger.Errorf("Persist completion state: %v", err)
			}
		}
		logger.Infof("Completed album in %s", time.Since(started).Round(time.Millisecond))
	}

	d.Logger.Infof("Done! Lyrics saved to %s: %s", d.OutputDir, sum)
	return sum, nil
}

func (d *Discography) song(ctx context.Context, logger *logging.Logger, album, songURL string) songOutcome {
	doc, err := d.Scraper.ExtractSong(ctx, songURL)
	if err != nil {
		logger.Errorf("Error scraping %s: %v", songURL, err)
		return songFailed
	}
	if doc.Title == "" || !doc.HasBody() {
		logger.Warnf("Could not extract lyrics from %s", songURL)
		return songMissing
	}

	path := output.LyricsPath(d.OutputDir, album, doc.Title)
	if err := d.Writer.WriteLyrics(*doc.Body, path); err != nil {
		logger.Errorf("Error saving %s: %v", path, err)
		return songFailed
	}
	logger.Infof("Saved: %s", path)
	return songSaved
}

// Records scrapes the songs listed in a songs CSV, naming files after the
// CSV titles.
type Records struct {
	Scraper   scrape.Scraper
	Writer    LyricsWriter
	OutputDir string
	// Album optionally groups the files under OutputDir/<Album>/.
	Album string
	// SkipExisting leaves songs whose lyrics file already exists untouched
	// and does not fetch them.
	SkipExisting bool
	Limiter      *throttle.Limiter
	Logger       *logging.Logger
}

// Run scrapes records in order; per-song errors are logged and counted.
func (r *Records) Run(ctx context.Context, records []model.SongRecord) (Summary, error) {
	var sum Summary
	total := len(records)
	r.Logger.Infof("Scraping %d URLs (interval %s)", total, r.Limiter.Interval())

	for i, rec := range records {
		if rec.URL == "" || rec.Title == "" {
			r.Logger.Warnf("[%d/%d] Skipping row without title or url: %+v", i+1, total, rec)
			sum.Skipped++
			continue
		}

		path := output.LyricsPath(r.OutputDir, r.Album, rec.Title)
		if r.SkipExisting {
			if _, err := os.Stat(path); err == nil {
				r.Logger.Infof("[%d/%d] Skipping %q, %s already exists", i+1, total, rec.Title, path)
				sum.Skipped++
				continue
			} else if !errors.Is(err, os.ErrNotExist) {
				r.Logger.Warnf("[%d/%d] Stat %s: %v", i+1, total, path, err)
			}
		}

		if err := r.Limiter.Wait(ctx); err != nil {
			return sum, err
		}
		r.Logger.Infof("[%d/%d] Scraping: %s", i+1, total, rec.URL)
		sum.add(r.song(ctx, rec, path))
		if err := ctx.Err(); err != nil {
			return sum, err
		}
	}

	r.Logger.Infof("Done: %s", sum)
	return sum, nil
}

func (r *Records) song(ctx context.Context, rec model.SongRecord, path string) songOutcome {
	doc, err := r.Scraper.ExtractSong(ctx, rec.URL)
	if err != nil {
		r.Logger.Errorf("Error scraping %s: %v", rec.URL, err)
		return songFailed
	}
	if !doc.HasBody() {
		r.Logger.Warnf("Failed to scrape lyrics for %q from %s", rec.Title, rec.URL)
		return songMissing
	}
	if err := r.Writer.WriteLyrics(*doc.Body, path); err != nil {
		r.Logger.Errorf("Error saving %s: %v", path, err)
		return songFailed
	}
	r.Logger.Infof("Saved lyrics for %q to %s", rec.Title, path)
	return songSaved
}
