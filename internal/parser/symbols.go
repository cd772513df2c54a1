package parser

import (
	"encoding/xml"
	"fmt"
	"path"
	"sort"
	"strings"

	"flareader/internal/archive"
	"flareader/internal/entrypath"
	"flareader/internal/fla"
	"flareader/internal/logging"
)

// loadSymbols parses every symbol named by an Include or present under
// LIBRARY/, each archive entry once.
func (r *run) loadSymbols(includes []xmlInclude) {
	var queue []string
	queued := make(map[string]bool)
	enqueue := func(key string) {
		if !queued[key] {
			queued[key] = true
			queue = append(queue, key)
		}
	}

	for _, inc := range includes {
		href := strings.TrimSpace(inc.Href)
		if href == "" {
			continue
		}
		key, ok := r.archive.Exact(archive.LibraryDir + href)
		if !ok {
			key, ok = r.archive.Lookup(href)
		}
		if !ok {
			r.logger.Debug("symbol include not found in archive", logging.String("href", href))
			continue
		}
		enqueue(key)
	}
	for _, key := range r.archive.LibraryXML() {
		enqueue(key)
	}

	for i, key := range queue {
		r.progress(fmt.Sprintf("Loading symbols... (%d/%d)", i+1, len(queue)))
		r.loadSymbol(key)
	}
}

// loadSymbol parses one symbol entry. Failures leave the symbol absent.
func (r *run) loadSymbol(key string) {
	r.loaded[key] = true
	logger := r.logger.With(logging.String(logging.FieldEntry, key))
	defer func() {
		if rec := recover(); rec != nil {
			logging.WarnWithContext(logger, "symbol parse panicked; skipping", "symbol_panic",
				logging.String("panic", fmt.Sprint(rec)),
				logging.String(logging.FieldImpact, "instances of this symbol render nothing"))
		}
	}()

	raw, err := r.archive.Read(key)
	if err != nil {
		logging.WarnWithContext(logger, "symbol entry unreadable; skipping", "symbol_unreadable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "instances of this symbol render nothing"))
		return
	}
	var item xmlSymbolItem
	if err := xml.Unmarshal(raw, &item); err != nil {
		logging.WarnWithContext(logger, "symbol XML malformed; skipping", "symbol_malformed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "instances of this symbol render nothing"))
		return
	}

	name := strings.TrimSpace(item.Name)
	if name == "" {
		name = strings.TrimSuffix(strings.TrimPrefix(key, archive.LibraryDir), path.Ext(key))
	}
	sym := &fla.Symbol{
		Name:     name,
		ItemID:   item.ItemID,
		Type:     symbolType(item.SymbolType),
		Timeline: r.timeline(item.Timeline),
	}
	if sym.Timeline.Name == "" {
		sym.Timeline.Name = name
	}

	for _, variant := range entrypath.Variants(name) {
		if existing, ok := r.doc.Symbols[variant]; ok && existing != sym {
			logger.Debug("symbol name already registered; keeping first definition",
				logging.String("symbol", variant))
			continue
		}
		r.doc.Symbols[variant] = sym
	}
	logger.Debug("loaded symbol",
		logging.String("symbol", name),
		logging.Int("layers", len(sym.Timeline.Layers)),
		logging.Int("frames", sym.Timeline.TotalFrames))
}

// resolveDangling retries instance targets missing from the symbol table
// through the archive's basename lookup, which tolerates case and folder
// mismatches between references and entry names. Names that still cannot be
// found are left dangling.
func (r *run) resolveDangling() {
	for {
		progressed := false
		for _, name := range r.danglingReferences() {
			key, ok := r.archive.Lookup(archive.LibraryDir + name + ".xml")
			if !ok || r.loaded[key] {
				continue
			}
			r.loadSymbol(key)
			progressed = true
		}
		if !progressed {
			break
		}
	}
	for _, name := range r.danglingReferences() {
		r.logger.Debug("symbol reference unresolved", logging.String("symbol", name))
	}
}

func (r *run) danglingReferences() []string {
	missing := make(map[string]struct{})
	visit := func(t *fla.Timeline) {
		for _, l := range t.Layers {
			for _, f := range l.Frames {
				for _, el := range f.Elements {
					inst, ok := el.(*fla.SymbolInstance)
					if !ok || inst.LibraryItemName == "" {
						continue
					}
					if _, found := r.doc.Symbol(inst.LibraryItemName); !found {
						missing[inst.LibraryItemName] = struct{}{}
					}
				}
			}
		}
	}
	for _, t := range r.doc.Timelines {
		visit(t)
	}
	for _, s := range r.doc.SymbolList() {
		visit(s.Timeline)
	}
	out := make([]string, 0, len(missing))
	for name := range missing {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func symbolType(s string) fla.SymbolType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "graphic":
		return fla.SymbolGraphic
	case "button":
		return fla.SymbolButton
	default:
		return fla.SymbolMovieClip
	}
}
