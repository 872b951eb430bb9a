package scrape

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rcap107/caparezzology/internal/model"
)

const lyricsContainerSelector = "[data-lyrics-container]"

// LyricsPage scrapes pages whose lyrics live in data-lyrics-container
// elements. It has no album listing.
type LyricsPage struct {
	fetcher *Fetcher
}

// NewLyricsPage creates a data-attribute scraper.
func NewLyricsPage(fetcher *Fetcher) *LyricsPage {
	return &LyricsPage{fetcher: fetcher}
}

// ListAlbumLinks is not supported by this layout.
func (p *LyricsPage) ListAlbumLinks(context.Context, string) (model.AlbumGrouping, error) {
	return nil, fmt.Errorf("data-attribute pages have no album listing: %w", errors.ErrUnsupported)
}

// ExtractSong fetches songURL and concatenates its lyrics containers.
func (p *LyricsPage) ExtractSong(ctx context.Context, songURL string) (model.LyricsDocument, error) {
	doc, err := p.fetcher.Document(ctx, songURL)
	if err != nil {
		return model.LyricsDocument{}, err
	}
	return DataAttributeContainers(doc), nil
}

// DataAttributeContainers joins the text of every lyrics container in
// document order: lines within a container are newline separated, containers
// are separated by a blank line. No containers yields a nil body.
func DataAttributeContainers(doc *goquery.Document) model.LyricsDocument {
	var blocks []string
	doc.Find(lyricsContainerSelector).Each(func(_ int, s *goquery.Selection) {
		if text := joinedText(s, "\n"); text != "" {
			blocks = append(blocks, text)
		}
	})
	return model.LyricsDocument{Body: bodyOrNil(strings.Join(blocks, "\n\n"))}
}
