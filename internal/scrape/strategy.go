package scrape

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rcap107/caparezzology/internal/model"
)

// SongStrategy extracts a lyrics document from a parsed song page. It must
// not modify doc. Misses degrade to an empty title or a nil body.
type SongStrategy func(doc *goquery.Document) model.LyricsDocument

const (
	StrategySiblingWalk  = "sibling-walk"
	StrategyBreakDensity = "br-count"
)

// strategies lists the discography song page strategies. Each one reads the
// title from the page, which the discography loop requires for file names.
var strategies = map[string]SongStrategy{
	StrategySiblingWalk:  SiblingWalk,
	StrategyBreakDensity: BreakDensity,
}

// StrategyByName looks up a registered strategy.
func StrategyByName(name string) (SongStrategy, error) {
	s, ok := strategies[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown extraction strategy %q (known: %s)", name, strings.Join(StrategyNames(), ", "))
	}
	return s, nil
}

// StrategyNames lists registered strategy names.
func StrategyNames() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func bodyOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
