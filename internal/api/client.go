package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rcap107/caparezzology/internal/httpclient"
	"github.com/rcap107/caparezzology/internal/logging"
	"github.com/rcap107/caparezzology/internal/model"
	"github.com/rcap107/caparezzology/internal/throttle"
)

const (
	// DefaultBaseURL is the Genius API root.
	DefaultBaseURL = "https://api.genius.com"
	// DefaultCredential names the credential file holding the access token.
	DefaultCredential = "genius_key"
	// MaxPerPage is the largest page size the songs endpoint accepts.
	MaxPerPage = 50
)

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL    string
	Credential string
	// PageLimiter gates every songs page request after the first.
	PageLimiter *throttle.Limiter
	// Timeout bounds each request; zero uses httpclient.DefaultTimeout.
	Timeout time.Duration
}

// Client wraps calls to the Genius API.
type Client struct {
	http       *httpclient.Client
	baseURL    string
	credential string
	pages      *throttle.Limiter
	timeout    time.Duration
	logger     *logging.Logger
}

// New creates an API client.
func New(httpClient *httpclient.Client, logger *logging.Logger, opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	cred := opts.Credential
	if cred == "" {
		cred = DefaultCredential
	}
	return &Client{
		http:       httpClient,
		baseURL:    base,
		credential: cred,
		pages:      opts.PageLimiter,
		timeout:    opts.Timeout,
		logger:     logger,
	}
}

type envelope[T any] struct {
	Response *T `json:"response"`
}

// SongsPage is the payload of one songs-by-artist page.
type SongsPage struct {
	Songs    []model.Song `json:"songs"`
	NextPage *int         `json:"next_page"`
}

type searchPayload struct {
	Hits []model.SearchHit `json:"hits"`
}

type artistPayload struct {
	Artist *model.Artist `json:"artist"`
}

// SearchArtist queries the search endpoint.
func (c *Client) SearchArtist(ctx context.Context, query string) ([]model.SearchHit, error) {
	var out envelope[searchPayload]
	if err := c.getJSON(ctx, "/search", url.Values{"q": {query}}, &out); err != nil {
		return nil, err
	}
	if out.Response == nil {
		return nil, nil
	}
	return out.Response.Hits, nil
}

// ResolveArtistID returns the id of the first search hit whose primary artist
// matches name case-insensitively.
func (c *Client) ResolveArtistID(ctx context.Context, name string) (int64, error) {
	hits, err := c.SearchArtist(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("search artist %q: %w", name, err)
	}
	for _, h := range hits {
		a := h.Result.PrimaryArtist
		if a != nil && strings.EqualFold(strings.TrimSpace(a.Name), strings.TrimSpace(name)) {
			return a.ID, nil
		}
	}
	return 0, fmt.Errorf("artist %q not found in %d search hits", name, len(hits))
}

// GetArtist returns artist details.
func (c *Client) GetArtist(ctx context.Context, artistID int64) (model.Artist, error) {
	var out envelope[artistPayload]
	path := fmt.Sprintf("/artists/%d", artistID)
	if err := c.getJSON(ctx, path, nil, &out); err != nil {
		return model.Artist{}, err
	}
	if out.Response == nil || out.Response.Artist == nil {
		return model.Artist{}, fmt.Errorf("artist %d: empty response", artistID)
	}
	return *out.Response.Artist, nil
}

// SongsPage fetches a single page of an artist's songs. A nil page means the
// envelope carried no usable response payload.
func (c *Client) SongsPage(ctx context.Context, artistID int64, perPage, page int) (*SongsPage, error) {
	var out envelope[SongsPage]
	path := fmt.Sprintf("/artists/%d/songs", artistID)
	q := url.Values{
		"per_page": {strconv.Itoa(clampPerPage(perPage))},
		"page":     {strconv.Itoa(page)},
	}
	if err := c.getJSON(ctx, path, q, &out); err != nil {
		return nil, err
	}
	return out.Response, nil
}

// AllSongs walks the songs pages starting at 1 and returns every entry in
// page order. It stops on a missing payload, an empty page, or a null
// next_page. Any page error aborts the walk with no partial result.
func (c *Client) AllSongs(ctx context.Context, artistID int64, perPage int) ([]model.Song, error) {
	var all []model.Song
	for page := 1; ; page++ {
		if err := c.pages.Wait(ctx); err != nil {
			return nil, err
		}
		c.logger.Infof("Fetching page %d...", page)

		resp, err := c.SongsPage(ctx, artistID, perPage, page)
		if err != nil {
			return nil, fmt.Errorf("fetch songs page %d: %w", page, err)
		}
		if resp == nil || len(resp.Songs) == 0 {
			break
		}
		all = append(all, resp.Songs...)
		if resp.NextPage == nil {
			break
		}
	}
	return all, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, v any) error {
	return c.http.GetJSON(ctx, httpclient.Request{
		URL:        c.baseURL + path,
		Credential: c.credential,
		Query:      q,
		Headers:    map[string]string{"Accept": "application/json"},
		Timeout:    c.timeout,
		Inject:     httpclient.InjectQuery,
	}, v)
}

func clampPerPage(n int) int {
	if n < 1 || n > MaxPerPage {
		return MaxPerPage
	}
	return n
}
