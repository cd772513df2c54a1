package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/flate"
	"golang.org/x/text/encoding/charmap"

	"flareader/internal/entrypath"
	"flareader/internal/logging"
	"flareader/internal/services"
	"flareader/internal/zipfix"
)

const (
	// DocumentEntry is the scene description every FLA archive must carry.
	DocumentEntry = "DOMDocument.xml"
	// LibraryDir holds symbol definitions and imported media.
	LibraryDir = "LIBRARY/"
	// BinDir holds binary media payloads.
	BinDir = "bin/"
)

// Archive is a loaded FLA container.
type Archive struct {
	files  map[string]*zip.File
	byBase map[string][]string
	keys   []string
	// Repaired names the repair strategy applied, empty when the archive
	// loaded as-is.
	Repaired zipfix.Strategy
	logger   *slog.Logger
}

// Open loads data as a ZIP archive, attempting structural repair when the
// primary loader rejects it. The returned error wraps
// services.ErrInvalidArchive and the original loader error.
func Open(data []byte, logger *slog.Logger) (*Archive, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	zr, err := newReader(data)
	if err == nil {
		return build(zr, "", logger), nil
	}
	loadErr := err

	logger.Debug("zip load failed; attempting repair", logging.Error(loadErr))
	repaired, strategy, repairErr := zipfix.Repair(data, Validate, logger)
	if repairErr != nil {
		logger.Debug("zip repair failed", logging.Error(repairErr))
		return nil, services.Wrap(services.ErrInvalidArchive, "archive", "open", "", loadErr)
	}
	zr, err = newReader(repaired)
	if err != nil {
		return nil, services.Wrap(services.ErrInvalidArchive, "archive", "open", "", loadErr)
	}
	return build(zr, strategy, logger), nil
}

// Validate reports whether data loads as a ZIP archive without repair.
func Validate(data []byte) error {
	_, err := newReader(data)
	return err
}

func newReader(data []byte) (*zip.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	// Backslash-separated names are expected in archives saved on Windows.
	if err != nil && !(errors.Is(err, zip.ErrInsecurePath) && zr != nil) {
		return nil, err
	}
	zr.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})
	return zr, nil
}

func build(zr *zip.Reader, strategy zipfix.Strategy, logger *slog.Logger) *Archive {
	a := &Archive{
		files:    make(map[string]*zip.File, len(zr.File)),
		byBase:   make(map[string][]string),
		Repaired: strategy,
		logger:   logger,
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		key := entrypath.Normalize(entryName(f))
		if key == "" {
			continue
		}
		if _, dup := a.files[key]; dup {
			continue
		}
		a.files[key] = f
		a.keys = append(a.keys, key)
		base := entrypath.FoldBase(key)
		a.byBase[base] = append(a.byBase[base], key)
	}
	return a
}

// entryName decodes legacy CP437 names for entries without the UTF-8 flag.
func entryName(f *zip.File) string {
	if !f.NonUTF8 || utf8.ValidString(f.Name) {
		return f.Name
	}
	decoded, err := charmap.CodePage437.NewDecoder().String(f.Name)
	if err != nil {
		return f.Name
	}
	return decoded
}

// Names returns every entry key in archive order.
func (a *Archive) Names() []string {
	return append([]string(nil), a.keys...)
}

// Len returns the number of file entries.
func (a *Archive) Len() int {
	return len(a.keys)
}

// Lookup resolves name to an entry key. It tries the canonical form of the
// name, then a case-insensitive basename match.
func (a *Archive) Lookup(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	if key, ok := a.Exact(name); ok {
		return key, true
	}
	candidates := a.byBase[entrypath.FoldBase(name)]
	if len(candidates) == 0 {
		return "", false
	}
	if len(candidates) > 1 {
		a.logger.Debug("basename lookup matched several entries",
			logging.String("name", name),
			logging.Int("candidates", len(candidates)),
			logging.String("chosen", candidates[0]))
	}
	return candidates[0], true
}

// Has reports whether name resolves to an entry.
func (a *Archive) Has(name string) bool {
	_, ok := a.Lookup(name)
	return ok
}

// ErrEntryNotFound reports an unresolvable entry name.
var ErrEntryNotFound = errors.New("archive entry not found")

// Read returns the content of the entry name resolves to. A checksum
// mismatch is logged and the bytes are still returned so codecs can salvage
// what they can.
func (a *Archive) Read(name string) ([]byte, error) {
	key, ok := a.Lookup(name)
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "archive", "read", name, ErrEntryNotFound)
	}
	return a.readKey(key)
}

func (a *Archive) readKey(key string) ([]byte, error) {
	f := a.files[key]
	rc, err := f.Open()
	if err != nil {
		return nil, services.Wrap(services.ErrCorrupt, "archive", "open entry", key, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		if errors.Is(err, zip.ErrChecksum) {
			a.logger.Warn("archive entry checksum mismatch; using content as-is",
				logging.String(logging.FieldEntry, key),
				logging.String(logging.FieldEventType, "entry_checksum_mismatch"),
				logging.String(logging.FieldErrorHint, "the archive may be damaged; decoded media can be incomplete"),
				logging.String(logging.FieldImpact, "payload recovered best-effort"))
			return data, nil
		}
		if len(data) > 0 {
			a.logger.Debug("archive entry truncated", logging.String(logging.FieldEntry, key), logging.Error(err))
			return data, nil
		}
		return nil, services.Wrap(services.ErrCorrupt, "archive", "read entry", key, err)
	}
	return data, nil
}

// LibraryXML lists symbol definition entries under LIBRARY/, sorted.
func (a *Archive) LibraryXML() []string {
	var out []string
	for _, key := range a.keys {
		if strings.HasPrefix(key, LibraryDir) && strings.EqualFold(pathExt(key), ".xml") {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// ResolveMedia locates a media payload. href names the item's data file
// (normally under bin/); fallbacks are tried in order, each under LIBRARY/
// and bin/ as well as verbatim.
func (a *Archive) ResolveMedia(href string, fallbacks ...string) (string, bool) {
	for _, name := range append([]string{href}, fallbacks...) {
		if name == "" {
			continue
		}
		for _, candidate := range []string{BinDir + name, LibraryDir + name, name} {
			if key, ok := a.Exact(candidate); ok {
				return key, true
			}
		}
	}
	for _, name := range append([]string{href}, fallbacks...) {
		if name == "" {
			continue
		}
		if key, ok := a.Lookup(name); ok {
			return key, true
		}
	}
	return "", false
}

// Exact resolves name by its canonical form only, without the basename
// fallback.
func (a *Archive) Exact(name string) (string, bool) {
	key := entrypath.Normalize(name)
	if _, ok := a.files[key]; ok {
		return key, true
	}
	return "", false
}

// Size returns the uncompressed size of an entry key.
func (a *Archive) Size(key string) (uint64, error) {
	f, ok := a.files[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrEntryNotFound, key)
	}
	return f.UncompressedSize64, nil
}

func pathExt(p string) string {
	if i := strings.LastIndexByte(p, '.'); i >= 0 && !strings.Contains(p[i:], "/") {
		return p[i:]
	}
	return ""
}
