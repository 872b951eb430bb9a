// Package scrape extracts album listings and lyrics from HTML pages.
//
// Page layouts are handled by strategies: pure functions over a parsed,
// read-only document. Supporting a new layout means adding a strategy.
package scrape

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/rcap107/caparezzology/internal/httpclient"
	"github.com/rcap107/caparezzology/internal/model"
)

// UserAgent is sent with every page request to get past basic bot filters.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// PageTimeout bounds a single page fetch.
const PageTimeout = 10 * time.Second

// Scraper lists album song links and extracts lyrics from song pages.
type Scraper interface {
	ListAlbumLinks(ctx context.Context, pageURL string) (model.AlbumGrouping, error)
	ExtractSong(ctx context.Context, songURL string) (model.LyricsDocument, error)
}

// FetcherOptions configures page fetching.
type FetcherOptions struct {
	// Credential, when set, is injected as a header (Genius keys become a
	// Bearer token).
	Credential string
	Timeout    time.Duration
}

// Fetcher downloads and parses HTML pages.
type Fetcher struct {
	client     *httpclient.Client
	credential string
	timeout    time.Duration
}

// NewFetcher creates a Fetcher.
func NewFetcher(client *httpclient.Client, opts FetcherOptions) *Fetcher {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = PageTimeout
	}
	return &Fetcher{client: client, credential: opts.Credential, timeout: timeout}
}

// Document fetches pageURL and parses it. Transport failures and non-2xx
// statuses are errors.
func (f *Fetcher) Document(ctx context.Context, pageURL string) (*goquery.Document, error) {
	resp, err := f.client.Get(ctx, httpclient.Request{
		URL:        pageURL,
		Credential: f.credential,
		Headers:    map[string]string{"User-Agent": UserAgent},
		Timeout:    f.timeout,
		Inject:     httpclient.InjectHeader,
	})
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, &httpclient.HTTPStatusError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	return doc, nil
}
