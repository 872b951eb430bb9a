package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/rcap107/caparezzology/internal/catalog"
	"github.com/rcap107/caparezzology/internal/config"
	"github.com/rcap107/caparezzology/internal/logging"
	"github.com/rcap107/caparezzology/internal/model"
)

type albumLister interface {
	ListAlbumLinks(ctx context.Context, pageURL string) (model.AlbumGrouping, error)
}

type completionChecker interface {
	IsCompleted(album string) bool
}

func resolveAlbumCachePath(cfg config.Config) string {
	if strings.TrimSpace(cfg.AlbumCachePath) != "" {
		return cfg.AlbumCachePath
	}
	return filepath.Join(cfg.LyricsDir, catalog.FileName)
}

func loadAlbums(
	ctx context.Context,
	cfg config.Config,
	logger *logging.Logger,
	lister albumLister,
	cache *catalog.Cache,
) (model.AlbumGrouping, error) {
	var cached model.AlbumGrouping
	var cachedAt time.Time
	hasCached := false

	loaded, fetchedAt, err := cache.Load(cfg.DiscographyURL)
	if err == nil {
		cached = loaded
		cachedAt = fetchedAt
		hasCached = true
	} else if !errors.Is(err, os.ErrNotExist) {
		logger.Warnf("Read album cache failed: %v", err)
	}

	if hasCached && !cfg.RefreshAlbums && shouldUseCachedAlbums(cachedAt, cfg.AlbumCacheTTL, time.Now()) {
		logger.Infof("Loaded %d albums (%d songs) from cache: %s", len(cached), cached.SongCount(), cache.Path())
		if !cachedAt.IsZero() {
			logger.Infof("Album cache timestamp: %s", cachedAt.Local().Format(time.RFC3339))
		}
		return cached, nil
	}

	logger.Infof("Fetching album listing from %s", cfg.DiscographyURL)
	albums, err := lister.ListAlbumLinks(ctx, cfg.DiscographyURL)
	if err != nil {
		if hasCached && ctx.Err() == nil {
			logger.Warnf("Fetch album listing failed (%v); using cached listing with %d albums", err, len(cached))
			return cached, nil
		}
		return nil, fmt.Errorf("fetch album listing: %w", err)
	}

	logger.Infof("Found %d albums with %d songs", len(albums), albums.SongCount())
	if len(albums) == 0 {
		return albums, nil
	}
	if err := cache.Save(cfg.DiscographyURL, albums); err != nil {
		logger.Warnf("Persist album cache failed: %v", err)
	} else {
		logger.Infof("Updated album cache: %s", cache.Path())
	}
	return albums, nil
}

// shouldUseCachedAlbums reports whether a listing fetched at cachedAt is
// still fresh. A non-positive ttl never expires.
func shouldUseCachedAlbums(cachedAt time.Time, ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return true
	}
	if cachedAt.IsZero() {
		return false
	}
	return now.Sub(cachedAt) <= ttl
}

func chooseAlbums(cfg config.Config, albums model.AlbumGrouping, done completionChecker) (model.AlbumGrouping, error) {
	if len(albums) == 0 {
		return nil, nil
	}

	if strings.TrimSpace(cfg.Albums) != "" {
		return selectAlbumsByQuery(albums, cfg.Albums)
	}
	if cfg.ChooseAlbums {
		return chooseAlbumsInteractively(albums, done)
	}
	return albums, nil
}

func selectAlbumsByQuery(albums model.AlbumGrouping, raw string) (model.AlbumGrouping, error) {
	parts := strings.Split(raw, ",")
	queries := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			queries = append(queries, p)
		}
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("no valid album query provided")
	}

	seen := make(map[string]struct{})
	selected := make(model.AlbumGrouping, 0, len(queries))
	for _, q := range queries {
		if strings.EqualFold(q, "all") {
			return albums, nil
		}

		match, err := resolveAlbumQuery(albums, q)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[match.Name]; ok {
			continue
		}
		seen[match.Name] = struct{}{}
		selected = append(selected, match)
	}

	return selected, nil
}

// resolveAlbumQuery matches an album name exactly, then by substring, both
// case-insensitively.
func resolveAlbumQuery(albums model.AlbumGrouping, query string) (model.Album, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return model.Album{}, fmt.Errorf("empty album query")
	}

	for _, a := range albums {
		if strings.EqualFold(a.Name, q) {
			return a, nil
		}
	}

	contains := make([]model.Album, 0, 4)
	for _, a := range albums {
		if strings.Contains(strings.ToLower(a.Name), q) {
			contains = append(contains, a)
		}
	}
	if len(contains) == 1 {
		return contains[0], nil
	}
	if len(contains) > 1 {
		labels := make([]string, 0, len(contains))
		for _, a := range contains {
			labels = append(labels, a.Name)
		}
		sort.Strings(labels)
		return model.Album{}, fmt.Errorf("album query %q is ambiguous: %s", query, strings.Join(labels, ", "))
	}

	return model.Album{}, fmt.Errorf("album query %q not found", query)
}

func chooseAlbumsInteractively(albums model.AlbumGrouping, done completionChecker) (model.AlbumGrouping, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return nil, fmt.Errorf("inspect stdin: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 {
		return nil, fmt.Errorf("interactive selection requires a terminal; use --albums instead")
	}

	selected := make(map[int]struct{})

	for {
		options := make([]huh.Option[int], 0, len(albums))
		for idx, album := range albums {
			option := huh.NewOption(albumLabel(album, done), idx)
			if _, ok := selected[idx]; ok {
				option = option.Selected(true)
			}
			options = append(options, option)
		}

		var selectedInView []int
		err = huh.NewForm(
			huh.NewGroup(
				huh.NewMultiSelect[int]().
					Title("Select albums to scrape").
					Description("Use x/space to toggle. Press / to filter by album name.").
					Options(options...).
					Value(&selectedInView),
			),
		).Run()
		if err != nil {
			return nil, fmt.Errorf("run interactive album selector: %w", err)
		}

		selected = make(map[int]struct{}, len(selectedInView))
		for _, idx := range selectedInView {
			selected[idx] = struct{}{}
		}

		selectedIndexes := selectedIndexesFromSet(selected)
		start, reviewErr := confirmSelectedAlbums(albums, selectedIndexes)
		if reviewErr != nil {
			return nil, fmt.Errorf("review selected albums: %w", reviewErr)
		}
		if start {
			return albumsFromIndexes(albums, selectedIndexes)
		}
	}
}

func albumLabel(album model.Album, done completionChecker) string {
	label := fmt.Sprintf("%s (%d songs)", album.Name, len(album.SongURLs))
	if done != nil && done.IsCompleted(album.Name) {
		label += " [done]"
	}
	return label
}

func selectedIndexesFromSet(selected map[int]struct{}) []int {
	indexes := make([]int, 0, len(selected))
	for idx := range selected {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)
	return indexes
}

func confirmSelectedAlbums(albums model.AlbumGrouping, selectedIndexes []int) (bool, error) {
	options := []huh.Option[string]{
		huh.NewOption("Back to selection", "back"),
	}
	if len(selectedIndexes) > 0 {
		options = append([]huh.Option[string]{huh.NewOption("Start scraping", "start")}, options...)
	}

	var action string
	err := huh.NewSelect[string]().
		Title("Review selected albums").
		Description(buildSelectedAlbumsPreview(albums, selectedIndexes, 16)).
		Options(options...).
		Value(&action).
		Run()
	if err != nil {
		return false, err
	}

	return action == "start", nil
}

func buildSelectedAlbumsPreview(albums model.AlbumGrouping, selectedIndexes []int, maxItems int) string {
	if len(selectedIndexes) == 0 {
		return "No albums selected yet."
	}
	if maxItems < 1 {
		maxItems = 1
	}

	var b strings.Builder
	songs := 0
	for _, idx := range selectedIndexes {
		if idx >= 0 && idx < len(albums) {
			songs += len(albums[idx].SongURLs)
		}
	}
	fmt.Fprintf(&b, "Selected %d album(s), %d songs:", len(selectedIndexes), songs)

	shown := 0
	for _, idx := range selectedIndexes {
		if idx < 0 || idx >= len(albums) {
			continue
		}
		shown++
		fmt.Fprintf(&b, "\n%d. %s", shown, albums[idx].Name)
		if shown >= maxItems {
			break
		}
	}

	if len(selectedIndexes) > shown {
		fmt.Fprintf(&b, "\n... and %d more", len(selectedIndexes)-shown)
	}

	return b.String()
}

func albumsFromIndexes(albums model.AlbumGrouping, indexes []int) (model.AlbumGrouping, error) {
	if len(indexes) == 0 {
		return nil, fmt.Errorf("no albums selected")
	}

	seen := make(map[int]struct{}, len(indexes))
	selected := make(model.AlbumGrouping, 0, len(indexes))
	for _, idx := range indexes {
		if idx < 0 || idx >= len(albums) {
			return nil, fmt.Errorf("selected album index %d out of bounds", idx)
		}
		if _, ok := seen[idx]; ok {
			continue
		}
		seen[idx] = struct{}{}
		selected = append(selected, albums[idx])
	}

	if len(selected) == 0 {
		return nil, fmt.Errorf("no albums selected")
	}
	return selected, nil
}
