package scrape

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/rcap107/caparezzology/internal/model"
)

// Structural markers of the discography site layout.
const (
	listContainerSelector = "div#listAlbum"
	albumHeaderSelector   = "div.album"
	songItemSelector      = "div.listalbum-item"
	mainContentSelector   = "div.col-xs-12.col-lg-8"
	anchorMarkerSelector  = "div.ringtone"
	endMarkerSelector     = "div.noprint"
)

// Discography scrapes an artist's song-list page and its song pages.
type Discography struct {
	fetcher  *Fetcher
	strategy SongStrategy
}

// NewDiscography creates a discography scraper. A nil strategy defaults to
// SiblingWalk.
func NewDiscography(fetcher *Fetcher, strategy SongStrategy) *Discography {
	if strategy == nil {
		strategy = SiblingWalk
	}
	return &Discography{fetcher: fetcher, strategy: strategy}
}

// ListAlbumLinks fetches pageURL and groups its song links by album.
func (d *Discography) ListAlbumLinks(ctx context.Context, pageURL string) (model.AlbumGrouping, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := d.fetcher.Document(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return ParseAlbumLinks(doc, base), nil
}

// ExtractSong fetches a song page and applies the configured strategy.
func (d *Discography) ExtractSong(ctx context.Context, songURL string) (model.LyricsDocument, error) {
	doc, err := d.fetcher.Document(ctx, songURL)
	if err != nil {
		return model.LyricsDocument{}, err
	}
	return d.strategy(doc), nil
}

// ParseAlbumLinks walks the direct children of the list container. An album
// header opens a new group; a song item adds its first link to the open
// group. Items before the first header and any other children are ignored.
func ParseAlbumLinks(doc *goquery.Document, base *url.URL) model.AlbumGrouping {
	grouping := model.AlbumGrouping{}

	container := doc.Find(listContainerSelector).First()
	if container.Length() == 0 {
		return grouping
	}

	var current string
	var open bool
	var links []string

	container.Children().Each(func(_ int, child *goquery.Selection) {
		switch {
		case child.Is(albumHeaderSelector):
			if open {
				grouping.Set(current, links)
			}
			current = joinedText(child, "")
			open = true
			links = []string{}
		case child.Is(songItemSelector):
			if !open {
				return
			}
			href, ok := child.Find("a[href]").First().Attr("href")
			if !ok {
				return
			}
			links = append(links, resolve(base, href))
		}
	})
	if open {
		grouping.Set(current, links)
	}
	return grouping
}

// resolve makes href absolute against base. Unparseable hrefs are kept as-is.
func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	ref, err := url.Parse(href)
	if err != nil || base == nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// SiblingWalk reads the title from the first <b> after the anchor marker and
// the lyrics from the first unclassed div between the anchor marker and the
// end marker.
func SiblingWalk(doc *goquery.Document) model.LyricsDocument {
	content := doc.Find(mainContentSelector).First()
	if content.Length() == 0 {
		return model.LyricsDocument{}
	}
	marker := content.Find(anchorMarkerSelector).First()
	if marker.Length() == 0 {
		return model.LyricsDocument{}
	}
	markerNode := marker.Nodes[0]

	out := model.LyricsDocument{Title: titleAfter(markerNode)}

	end := content.Find(endMarkerSelector).First()
	if end.Length() == 0 {
		return out
	}
	endNode := end.Nodes[0]

	for n := markerNode.NextSibling; n != nil && n != endNode; n = n.NextSibling {
		if isElement(n, "div") && isUnclassed(n) {
			out.Body = bodyOrNil(strings.Join(textParts(n), "\n"))
			break
		}
	}
	return out
}

// BreakDensity picks, among the unclassed div children of the main content,
// the one with the most <br> descendants. Ties go to the earliest.
func BreakDensity(doc *goquery.Document) model.LyricsDocument {
	content := doc.Find(mainContentSelector).First()
	if content.Length() == 0 {
		return model.LyricsDocument{}
	}

	var out model.LyricsDocument
	if marker := content.Find(anchorMarkerSelector).First(); marker.Length() > 0 {
		out.Title = titleAfter(marker.Nodes[0])
	} else {
		out.Title = joinedText(content.Find("b").First(), "")
	}

	var best *goquery.Selection
	bestCount := 0
	content.ChildrenFiltered("div").Each(func(_ int, div *goquery.Selection) {
		if !isUnclassed(div.Nodes[0]) {
			return
		}
		if count := div.Find("br").Length(); count > bestCount {
			best, bestCount = div, count
		}
	})
	if best != nil {
		out.Body = bodyOrNil(joinedText(best, "\n"))
	}
	return out
}

func titleAfter(marker *html.Node) string {
	for n := marker.NextSibling; n != nil; n = n.NextSibling {
		if isElement(n, "b") {
			return strings.Join(textParts(n), "")
		}
	}
	return ""
}
