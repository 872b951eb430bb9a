package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func ptr(s string) *string { return &s }

func TestSongRecordDefaults(t *testing.T) {
	full := Song{Title: ptr("Fuori dal tunnel"), URL: ptr("https://x/1"), PrimaryArtist: &Artist{Name: "Caparezza"}}
	empty := Song{}

	got := Records([]Song{full, empty})
	want := []SongRecord{
		{Title: "Fuori dal tunnel", URL: "https://x/1", PrimaryArtist: "Caparezza"},
		{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestAlbumGroupingSetKeepsFirstPosition(t *testing.T) {
	var g AlbumGrouping
	g.Set("A", []string{"a1"})
	g.Set("B", []string{"b1"})
	g.Set("A", []string{"a2", "a3"})

	want := AlbumGrouping{
		{Name: "A", SongURLs: []string{"a2", "a3"}},
		{Name: "B", SongURLs: []string{"b1"}},
	}
	if diff := cmp.Diff(want, g); diff != "" {
		t.Fatalf("grouping mismatch (-want +got):\n%s", diff)
	}
	if g.SongCount() != 3 {
		t.Fatalf("unexpected song count %d", g.SongCount())
	}
}
