package parser

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"flareader/internal/archive"
	"flareader/internal/fileutil"
	"flareader/internal/fla"
	"flareader/internal/logging"
	"flareader/internal/services"
)

// ErrMissingDocument reports an archive without DOMDocument.xml at its root.
var ErrMissingDocument = errors.New("Invalid FLA file: DOMDocument.xml not found")

// Parser reads FLA archives. Calls to Parse are serialized.
type Parser struct {
	mu     sync.Mutex
	opts   Options
	logger *slog.Logger
}

// New constructs a Parser. A nil logger discards output.
func New(opts Options, logger *slog.Logger) *Parser {
	opts = opts.withDefaults()
	logger = logging.NewComponentLogger(logger, "parser")
	if !opts.Debug {
		logger = logging.WithLevelOverride(logger, slog.LevelInfo)
	}
	return &Parser{opts: opts, logger: logger}
}

// Options returns the effective options after defaults were applied.
func (p *Parser) Options() Options {
	return p.opts
}

// ParseFile parses the FLA file at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*fla.Document, error) {
	m, err := fileutil.MapFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	defer m.Close()
	return p.Parse(ctx, m.Bytes())
}

// Parse builds a document from FLA archive bytes. Apart from ctx
// cancellation the only errors are ErrMissingDocument and archive load
// failures wrapping services.ErrInvalidArchive.
func (p *Parser) Parse(ctx context.Context, data []byte) (*fla.Document, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx = services.WithParseID(ctx, uuid.NewString())
	r := &run{
		opts:   p.opts,
		logger: logging.WithContext(ctx, p.logger),
		loaded: make(map[string]bool),
	}
	return r.parse(ctx, data)
}

// run holds the state of one Parse call.
type run struct {
	opts    Options
	logger  *slog.Logger
	archive *archive.Archive
	doc     *fla.Document
	// loaded records symbol entries already parsed, by archive key.
	loaded map[string]bool
}

func (r *run) parse(ctx context.Context, data []byte) (*fla.Document, error) {
	started := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.progress("Extracting archive...")
	arc, err := archive.Open(data, r.logger)
	if err != nil {
		return nil, err
	}
	r.archive = arc
	if arc.Repaired != "" {
		logging.WarnWithContext(r.logger, "archive was damaged and has been repaired", "archive_repaired",
			logging.String("strategy", string(arc.Repaired)),
			logging.String(logging.FieldErrorHint, "re-save the file in the authoring tool"),
			logging.String(logging.FieldImpact, "entries past the damaged region may be missing"))
	}

	key, ok := arc.Exact(archive.DocumentEntry)
	if !ok {
		return nil, ErrMissingDocument
	}

	r.progress("Parsing document...")
	var xdoc xmlDocument
	raw, err := arc.Read(key)
	if err != nil {
		logging.WarnWithContext(r.logger, "document entry unreadable; using defaults", "document_unreadable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "stage settings fall back to defaults and no scenes are read"))
	} else if err := xml.Unmarshal(raw, &xdoc); err != nil {
		logging.WarnWithContext(r.logger, "document XML malformed; keeping what was read", "document_malformed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "content after the malformed point is missing"))
	}

	r.doc = &fla.Document{
		Width:           positiveOr(parseFloat(xdoc.Width, 0), r.opts.DefaultWidth),
		Height:          positiveOr(parseFloat(xdoc.Height, 0), r.opts.DefaultHeight),
		FrameRate:       positiveOr(parseFloat(xdoc.FrameRate, 0), r.opts.DefaultFrameRate),
		BackgroundColor: hexColor(xdoc.BackgroundColor, r.opts.DefaultBackground),
		Timelines:       make([]*fla.Timeline, 0, len(xdoc.Timelines)),
		Symbols:         make(map[string]*fla.Symbol),
		Bitmaps:         make(map[string]*fla.BitmapItem),
		Sounds:          make(map[string]*fla.SoundItem),
		Videos:          make(map[string]*fla.VideoItem),
	}

	r.loadSymbols(xdoc.Symbols)
	for _, xt := range xdoc.Timelines {
		r.doc.Timelines = append(r.doc.Timelines, r.timeline(xt))
	}
	r.resolveDangling()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.decodeMedia(ctx, xdoc.Media)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.logger.Info("parsed document",
		logging.Float64("width", r.doc.Width),
		logging.Float64("height", r.doc.Height),
		logging.Int("timelines", len(r.doc.Timelines)),
		logging.Int("symbols", len(r.doc.SymbolList())),
		logging.Int("bitmaps", len(r.doc.Bitmaps)),
		logging.Int("sounds", len(r.doc.Sounds)),
		logging.Int("videos", len(r.doc.Videos)),
		logging.Duration("elapsed", time.Since(started)))
	return r.doc, nil
}

func (r *run) progress(message string) {
	r.logger.Debug(message)
	if r.opts.Progress != nil {
		r.opts.Progress(message)
	}
}

func positiveOr(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}
