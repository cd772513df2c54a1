package parser

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync"

	"flareader/internal/audio"
	"flareader/internal/bitmap"
	"flareader/internal/fla"
	"flareader/internal/flv"
	"flareader/internal/logging"
	"flareader/internal/mediacache"
	"flareader/internal/services"
)

type mediaJob struct {
	kind   string
	name   string
	decode func(ctx context.Context, logger *slog.Logger)
}

// decodeMedia registers every media item and decodes their payloads on a
// bounded set of goroutines. It returns once every started item has settled;
// a failing item only leaves its own payload unset. Cancellation stops new
// decodes from starting.
func (r *run) decodeMedia(ctx context.Context, m xmlMedia) {
	var jobs []mediaJob

	for _, x := range m.Bitmaps {
		item := &fla.BitmapItem{
			Name:           itemName(x.Name, x.Href),
			ItemID:         x.ItemID,
			Href:           x.Href,
			DataHref:       x.DataHref,
			SourcePath:     x.SourcePath,
			AllowSmoothing: parseBool(x.AllowSmoothing, false),
			Quality:        parseInt(x.Quality, 0),
			Width:          pixels(x.FrameRight, 0),
			Height:         pixels(x.FrameBottom, 0),
		}
		if !r.claim(item.Name, r.doc.Bitmaps[item.Name] != nil) {
			continue
		}
		r.doc.Bitmaps[item.Name] = item
		jobs = append(jobs, mediaJob{kind: "bitmap", name: item.Name, decode: func(ctx context.Context, logger *slog.Logger) {
			r.decodeBitmap(ctx, logger, item)
		}})
	}

	for _, x := range m.Sounds {
		item := &fla.SoundItem{
			Name:        itemName(x.Name, x.Href),
			ItemID:      x.ItemID,
			Href:        x.Href,
			DataHref:    x.DataHref,
			Format:      x.Format,
			SampleCount: max(parseInt(x.SampleCount, 0), 0),
		}
		if !r.claim(item.Name, r.doc.Sounds[item.Name] != nil) {
			continue
		}
		r.doc.Sounds[item.Name] = item
		jobs = append(jobs, mediaJob{kind: "sound", name: item.Name, decode: func(ctx context.Context, logger *slog.Logger) {
			r.decodeSound(ctx, logger, item)
		}})
	}

	for _, x := range m.Videos {
		item := &fla.VideoItem{
			Name:      itemName(x.Name, x.Href),
			ItemID:    x.ItemID,
			Href:      x.Href,
			DataHref:  x.DataHref,
			VideoType: x.VideoType,
			FPS:       parseFloat(x.FPS, 0),
			Width:     parseFloat(x.Width, 0),
			Height:    parseFloat(x.Height, 0),
			Length:    parseFloat(x.Length, 0),
		}
		if !r.claim(item.Name, r.doc.Videos[item.Name] != nil) {
			continue
		}
		r.doc.Videos[item.Name] = item
		jobs = append(jobs, mediaJob{kind: "video", name: item.Name, decode: func(ctx context.Context, logger *slog.Logger) {
			r.decodeVideo(logger, item)
		}})
	}

	if len(jobs) == 0 {
		return
	}
	r.progress(fmt.Sprintf("Decoding media... (%d items)", len(jobs)))

	sem := make(chan struct{}, r.opts.DecodeWorkers)
	var wg sync.WaitGroup
schedule:
	for _, job := range jobs {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			break schedule
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			jobCtx := services.WithEntry(ctx, job.name)
			logger := r.logger.With(logging.String(logging.FieldEntry, job.name), logging.String("media", job.kind))
			defer func() {
				if rec := recover(); rec != nil {
					logging.WarnWithContext(logger, "media decode panicked", "media_panic",
						logging.String("panic", fmt.Sprint(rec)))
				}
			}()
			job.decode(jobCtx, logger)
		}()
	}
	wg.Wait()
}

// claim reports whether a media item may be registered under name.
func (r *run) claim(name string, taken bool) bool {
	if name == "" {
		r.logger.Debug("media item without name or href ignored")
		return false
	}
	if taken {
		r.logger.Debug("duplicate media item ignored", logging.String("item", name))
		return false
	}
	return true
}

func itemName(name, href string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return strings.TrimSpace(href)
}

// payload locates and reads an item's data: the data href first, then the
// item href and name.
func (r *run) payload(logger *slog.Logger, kind string, names ...string) ([]byte, bool) {
	key, ok := r.archive.ResolveMedia(names[0], names[1:]...)
	if !ok {
		logging.WarnWithContext(logger, kind+" payload not found in archive", kind+"_missing",
			logging.String(logging.FieldErrorHint, "the library item references a file the archive does not contain"),
			logging.String(logging.FieldImpact, "item kept without decoded content"))
		return nil, false
	}
	raw, err := r.archive.Read(key)
	if err != nil {
		logging.WarnWithContext(logger, kind+" payload unreadable", kind+"_unreadable",
			logging.String("path", key),
			logging.Error(err),
			logging.String(logging.FieldImpact, "item kept without decoded content"))
		return nil, false
	}
	return raw, true
}

func (r *run) decodeBitmap(ctx context.Context, logger *slog.Logger, item *fla.BitmapItem) {
	raw, ok := r.payload(logger, "bitmap", item.DataHref, item.Href, item.Name)
	if !ok {
		return
	}
	key := mediacache.Key(mediacache.KindBitmap, raw)
	if e, hit := r.cacheLookup(ctx, logger, key); hit {
		if img, err := e.Image(); err == nil {
			setBitmap(item, img, e.Detail)
			return
		}
	}

	res, err := bitmap.Decode(raw, logger)
	if err != nil {
		logging.WarnWithContext(logger, "bitmap undecodable", "bitmap_undecodable",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the payload is damaged beyond every recovery stage"),
			logging.String(logging.FieldImpact, "bitmap renders as empty"))
		return
	}
	setBitmap(item, res.Image, string(res.Tier))
	r.cacheStore(ctx, logger, key, mediacache.BitmapEntry(res.Image, string(res.Tier)))
}

func setBitmap(item *fla.BitmapItem, img *image.NRGBA, recovery string) {
	item.Image = img
	item.Recovery = recovery
	b := img.Bounds()
	if item.Width <= 0 {
		item.Width = float64(b.Dx())
	}
	if item.Height <= 0 {
		item.Height = float64(b.Dy())
	}
}

func (r *run) decodeSound(ctx context.Context, logger *slog.Logger, item *fla.SoundItem) {
	raw, ok := r.payload(logger, "sound", item.DataHref, item.Href, item.Name)
	if !ok {
		return
	}
	key := fmt.Sprintf("%s|%s|%d", mediacache.Key(mediacache.KindSound, raw), item.Format, item.SampleCount)
	if e, hit := r.cacheLookup(ctx, logger, key); hit {
		if pcm, err := e.PCM(); err == nil {
			item.Audio = pcm
			return
		}
	}

	format, _ := audio.ParseFormat(item.Format)
	pcm, err := audio.Decode(raw, format, item.SampleCount)
	if err != nil {
		logging.WarnWithContext(logger, "sound undecodable", "sound_undecodable",
			logging.String("format", item.Format),
			logging.Error(err),
			logging.String(logging.FieldImpact, "sound plays as silence"))
		return
	}
	item.Audio = pcm
	r.cacheStore(ctx, logger, key, mediacache.SoundEntry(pcm))
}

func (r *run) decodeVideo(logger *slog.Logger, item *fla.VideoItem) {
	raw, ok := r.payload(logger, "video", item.DataHref, item.Href, item.Name)
	if !ok {
		return
	}
	summary, err := flv.Parse(raw)
	if err != nil {
		logging.WarnWithContext(logger, "video payload is not a readable FLV stream", "video_unreadable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "video kept without stream details"))
		return
	}
	item.Summary = summary
	if item.Width <= 0 {
		item.Width = summary.Width
	}
	if item.Height <= 0 {
		item.Height = summary.Height
	}
	if item.FPS <= 0 {
		item.FPS = summary.FrameRate
	}
	if item.Length <= 0 {
		item.Length = summary.Duration
	}
}

func (r *run) cacheLookup(ctx context.Context, logger *slog.Logger, key string) (mediacache.Entry, bool) {
	if r.opts.Cache == nil {
		return mediacache.Entry{}, false
	}
	e, ok, err := r.opts.Cache.Lookup(ctx, key)
	if err != nil {
		logger.Debug("media cache lookup failed", logging.Error(err))
		return mediacache.Entry{}, false
	}
	return e, ok
}

func (r *run) cacheStore(ctx context.Context, logger *slog.Logger, key string, e mediacache.Entry) {
	if r.opts.Cache == nil {
		return
	}
	if err := r.opts.Cache.Store(ctx, key, e); err != nil {
		logger.Debug("media cache store failed", logging.Error(err))
	}
}
