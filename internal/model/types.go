package model

// Artist is the artist fragment embedded in song and search payloads.
type Artist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Song is one raw entry of the songs-by-artist endpoint.
type Song struct {
	ID            int64   `json:"id"`
	Title         *string `json:"title"`
	URL           *string `json:"url"`
	PrimaryArtist *Artist `json:"primary_artist"`
}

// SearchHit is one result of the search endpoint.
type SearchHit struct {
	Type   string `json:"type"`
	Result struct {
		ID            int64   `json:"id"`
		Title         string  `json:"title"`
		URL           string  `json:"url"`
		PrimaryArtist *Artist `json:"primary_artist"`
	} `json:"result"`
}

// SongRecord is a row of the songs CSV.
type SongRecord struct {
	Title         string
	URL           string
	PrimaryArtist string
}

// Record flattens a raw song, defaulting absent fields to empty strings.
func (s Song) Record() SongRecord {
	var r SongRecord
	if s.Title != nil {
		r.Title = *s.Title
	}
	if s.URL != nil {
		r.URL = *s.URL
	}
	if s.PrimaryArtist != nil {
		r.PrimaryArtist = s.PrimaryArtist.Name
	}
	return r
}

// Records flattens a slice of raw songs.
func Records(songs []Song) []SongRecord {
	out := make([]SongRecord, 0, len(songs))
	for _, s := range songs {
		out = append(out, s.Record())
	}
	return out
}

// Album is one group of a discography page.
type Album struct {
	Name     string   `json:"name"`
	SongURLs []string `json:"songUrls"`
}

// AlbumGrouping maps album names to song URLs in page order.
type AlbumGrouping []Album

// Set stores links for an album. A name seen before keeps its original
// position and has its links replaced.
func (g *AlbumGrouping) Set(name string, urls []string) {
	for i := range *g {
		if (*g)[i].Name == name {
			(*g)[i].SongURLs = urls
			return
		}
	}
	*g = append(*g, Album{Name: name, SongURLs: urls})
}

// Names returns album names in order.
func (g AlbumGrouping) Names() []string {
	names := make([]string, 0, len(g))
	for _, a := range g {
		names = append(names, a.Name)
	}
	return names
}

// SongCount returns the total number of song URLs.
func (g AlbumGrouping) SongCount() int {
	n := 0
	for _, a := range g {
		n += len(a.SongURLs)
	}
	return n
}

// LyricsDocument is the extraction result for one song page. A nil Body
// means extraction failed.
type LyricsDocument struct {
	Title string
	Body  *string
}

// HasBody reports whether lyrics were extracted.
func (d LyricsDocument) HasBody() bool {
	return d.Body != nil
}
