package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rcap107/caparezzology/internal/credentials"
	"github.com/rcap107/caparezzology/internal/httpclient"
	"github.com/rcap107/caparezzology/internal/logging"
	"github.com/rcap107/caparezzology/internal/model"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(handler roundTripFunc) *Client {
	httpClient := &http.Client{Transport: handler}
	creds := credentials.FromMap(map[string]string{"genius_key": "secret"})
	hc := httpclient.New(httpClient, creds, logging.Nop())
	return New(hc, logging.Nop(), Options{BaseURL: "https://api.example.test"})
}

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

// pagedHandler serves bodies[page-1] and records requested pages.
func pagedHandler(t *testing.T, bodies []string, pages *[]string) roundTripFunc {
	return func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/artists/24580/songs" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		q := req.URL.Query()
		if q.Get("access_token") != "secret" {
			t.Fatalf("missing access_token")
		}
		if q.Get("per_page") != "50" {
			t.Fatalf("unexpected per_page: %s", q.Get("per_page"))
		}
		page := q.Get("page")
		*pages = append(*pages, page)
		idx := len(*pages) - 1
		if idx >= len(bodies) {
			t.Fatalf("unexpected request for page %s", page)
		}
		return response(200, bodies[idx]), nil
	}
}

func titles(songs []model.Song) string {
	parts := make([]string, 0, len(songs))
	for _, s := range songs {
		parts = append(parts, *s.Title)
	}
	return strings.Join(parts, ",")
}

func TestAllSongsStopsOnNullNextPage(t *testing.T) {
	var pages []string
	client := newTestClient(pagedHandler(t, []string{
		`{"response":{"songs":[{"id":1,"title":"A"},{"id":2,"title":"B"}],"next_page":2}}`,
		`{"response":{"songs":[{"id":3,"title":"C"}],"next_page":null}}`,
	}, &pages))

	songs, err := client.AllSongs(context.Background(), 24580, 50)
	if err != nil {
		t.Fatalf("AllSongs failed: %v", err)
	}
	if got := titles(songs); got != "A,B,C" {
		t.Fatalf("unexpected songs: %s", got)
	}
	if strings.Join(pages, ",") != "1,2" {
		t.Fatalf("expected exactly pages 1,2, got %v", pages)
	}
}

func TestAllSongsStopsOnEmptyPage(t *testing.T) {
	var pages []string
	client := newTestClient(pagedHandler(t, []string{
		`{"response":{"songs":[{"id":1,"title":"A"}],"next_page":2}}`,
		`{"response":{"songs":[{"id":2,"title":"B"}],"next_page":3}}`,
		`{"response":{"songs":[],"next_page":4}}`,
	}, &pages))

	songs, err := client.AllSongs(context.Background(), 24580, 0)
	if err != nil {
		t.Fatalf("AllSongs failed: %v", err)
	}
	if got := titles(songs); got != "A,B" {
		t.Fatalf("unexpected songs: %s", got)
	}
	if len(pages) != 3 {
		t.Fatalf("expected no request after the empty page, got %v", pages)
	}
}

func TestAllSongsStopsOnMissingResponse(t *testing.T) {
	var pages []string
	client := newTestClient(pagedHandler(t, []string{
		`{"meta":{"status":200}}`,
	}, &pages))

	songs, err := client.AllSongs(context.Background(), 24580, 50)
	if err != nil {
		t.Fatalf("AllSongs failed: %v", err)
	}
	if len(songs) != 0 || len(pages) != 1 {
		t.Fatalf("expected one request and no songs, got %d songs %v", len(songs), pages)
	}
}

func TestAllSongsMissingNextPageIsTerminal(t *testing.T) {
	var pages []string
	client := newTestClient(pagedHandler(t, []string{
		`{"response":{"songs":[{"id":1,"title":"A"}]}}`,
	}, &pages))

	songs, err := client.AllSongs(context.Background(), 24580, 50)
	if err != nil {
		t.Fatalf("AllSongs failed: %v", err)
	}
	if titles(songs) != "A" || len(pages) != 1 {
		t.Fatalf("unexpected result %s %v", titles(songs), pages)
	}
}

func TestAllSongsAbortsOnPageError(t *testing.T) {
	calls := 0
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			return response(200, `{"response":{"songs":[{"id":1,"title":"A"}],"next_page":2}}`), nil
		}
		return response(503, `{}`), nil
	})

	songs, err := client.AllSongs(context.Background(), 24580, 50)
	var statusErr *httpclient.HTTPStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != 503 {
		t.Fatalf("expected status error, got %v", err)
	}
	if songs != nil {
		t.Fatalf("expected no partial result, got %d songs", len(songs))
	}
}

func TestAllSongsDecodeError(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return response(200, `{invalid json`), nil
	})

	_, err := client.AllSongs(context.Background(), 24580, 50)
	var decodeErr *httpclient.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestAllSongsClampsPerPage(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		if got := req.URL.Query().Get("per_page"); got != "50" {
			t.Fatalf("expected clamped per_page, got %s", got)
		}
		return response(200, `{"response":{"songs":[]}}`), nil
	})

	if _, err := client.AllSongs(context.Background(), 24580, 500); err != nil {
		t.Fatalf("AllSongs failed: %v", err)
	}
}

func TestResolveArtistID(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/search" || req.URL.Query().Get("q") != "caparezza" {
			t.Fatalf("unexpected request: %s", req.URL.String())
		}
		return response(200, `{"response":{"hits":[
			{"type":"song","result":{"id":10,"title":"Remix","primary_artist":{"id":1,"name":"Someone Else"}}},
			{"type":"song","result":{"id":11,"title":"Vieni a ballare in Puglia","primary_artist":{"id":24580,"name":"Caparezza"}}}
		]}}`), nil
	})

	id, err := client.ResolveArtistID(context.Background(), "caparezza")
	if err != nil {
		t.Fatalf("ResolveArtistID failed: %v", err)
	}
	if id != 24580 {
		t.Fatalf("unexpected artist id %d", id)
	}
}

func TestResolveArtistIDNotFound(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return response(200, `{"response":{"hits":[]}}`), nil
	})

	if _, err := client.ResolveArtistID(context.Background(), "nobody"); err == nil {
		t.Fatalf("expected not found error")
	}
}

func TestGetArtist(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/artists/24580" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		return response(200, `{"response":{"artist":{"id":24580,"name":"Caparezza","url":"https://genius.com/artists/Caparezza"}}}`), nil
	})

	artist, err := client.GetArtist(context.Background(), 24580)
	if err != nil {
		t.Fatalf("GetArtist failed: %v", err)
	}
	if artist.Name != "Caparezza" {
		t.Fatalf("unexpected artist: %+v", artist)
	}
}

func TestRequestsUseConfiguredTimeout(t *testing.T) {
	var remaining time.Duration
	httpClient := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		deadline, ok := req.Context().Deadline()
		if !ok {
			t.Fatalf("expected a request deadline")
		}
		remaining = time.Until(deadline)
		return response(200, `{"response":{"artist":{"id":1,"name":"Caparezza"}}}`), nil
	})}
	creds := credentials.FromMap(map[string]string{"genius_key": "secret"})
	hc := httpclient.New(httpClient, creds, logging.Nop())
	client := New(hc, logging.Nop(), Options{BaseURL: "https://api.example.test", Timeout: 30 * time.Second})

	if _, err := client.GetArtist(context.Background(), 1); err != nil {
		t.Fatalf("GetArtist failed: %v", err)
	}
	if remaining <= httpclient.DefaultTimeout || remaining > 30*time.Second {
		t.Fatalf("expected a 30s deadline, %s remaining", remaining)
	}
}
