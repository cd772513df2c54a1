package fla

import (
	"sort"

	"flareader/internal/entrypath"
)

// Document is the root of a parsed FLA file.
type Document struct {
	Width           float64                `json:"width"`
	Height          float64                `json:"height"`
	FrameRate       float64                `json:"frameRate"`
	BackgroundColor string                 `json:"backgroundColor"`
	Timelines       []*Timeline            `json:"timelines"`
	Symbols         map[string]*Symbol     `json:"-"`
	Bitmaps         map[string]*BitmapItem `json:"-"`
	Sounds          map[string]*SoundItem  `json:"-"`
	Videos          map[string]*VideoItem  `json:"-"`
}

// Symbol looks up a library symbol by name, tolerating either path
// separator.
func (d *Document) Symbol(name string) (*Symbol, bool) {
	for _, v := range entrypath.Variants(name) {
		if s, ok := d.Symbols[v]; ok {
			return s, true
		}
	}
	return nil, false
}

// SymbolList returns each distinct symbol once, ordered by name. The
// Symbols map holds the same symbol under several key spellings.
func (d *Document) SymbolList() []*Symbol {
	seen := make(map[*Symbol]struct{}, len(d.Symbols))
	out := make([]*Symbol, 0, len(d.Symbols))
	for _, s := range d.Symbols {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SymbolType is the behaviour of a library symbol.
type SymbolType string

const (
	SymbolGraphic   SymbolType = "graphic"
	SymbolMovieClip SymbolType = "movieclip"
	SymbolButton    SymbolType = "button"
)

// Symbol is a reusable named sub-timeline.
type Symbol struct {
	Name     string     `json:"name"`
	ItemID   string     `json:"itemID,omitempty"`
	Type     SymbolType `json:"symbolType"`
	Timeline *Timeline  `json:"timeline"`
}
