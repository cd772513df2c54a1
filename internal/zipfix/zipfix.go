package zipfix

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"

	"flareader/internal/logging"
)

const (
	// eocdSize is the fixed part of the End-Of-Central-Directory record.
	eocdSize = 22
	// maxComment is the largest comment the 16-bit length field can declare.
	maxComment = 0xFFFF
	// MaxScan bounds the backward EOCD search.
	MaxScan = eocdSize + maxComment

	offCDSize      = 12
	offCDOffset    = 16
	offCommentSize = 20
)

var eocdSignature = []byte{'P', 'K', 0x05, 0x06}

var (
	// ErrNoEOCD reports that no End-Of-Central-Directory signature was found.
	ErrNoEOCD = errors.New("end of central directory not found")
	// ErrUnrepairable reports that every strategy was rejected by the loader.
	ErrUnrepairable = errors.New("archive could not be repaired")
)

// Strategy names a repair approach.
type Strategy string

const (
	StrategyTruncate Strategy = "truncate_trailing"
	StrategyCDSize   Strategy = "patch_cd_size"
)

// Loader validates a candidate buffer. A nil error accepts it.
type Loader func(data []byte) error

// Record is the subset of the EOCD record the repair strategies consume.
type Record struct {
	Offset        int
	CDSize        uint32
	CDOffset      uint32
	CommentLength uint16
}

// End returns the offset just past the record and its comment.
func (r Record) End() int {
	return r.Offset + eocdSize + int(r.CommentLength)
}

// FindEOCD scans backward from the end of data for the EOCD signature.
func FindEOCD(data []byte) (Record, error) {
	if len(data) < eocdSize {
		return Record{}, ErrNoEOCD
	}
	floor := max(len(data)-MaxScan, 0)
	for i := len(data) - eocdSize; i >= floor; i-- {
		if !bytes.Equal(data[i:i+4], eocdSignature) {
			continue
		}
		return Record{
			Offset:        i,
			CDSize:        binary.LittleEndian.Uint32(data[i+offCDSize:]),
			CDOffset:      binary.LittleEndian.Uint32(data[i+offCDOffset:]),
			CommentLength: binary.LittleEndian.Uint16(data[i+offCommentSize:]),
		}, nil
	}
	return Record{}, ErrNoEOCD
}

type attempt struct {
	strategy Strategy
	build    func(data []byte, rec Record) ([]byte, bool)
}

var strategies = []attempt{
	{strategy: StrategyTruncate, build: truncateTrailing},
	{strategy: StrategyCDSize, build: patchCDSize},
}

// Repair tries each strategy in order and returns the first candidate the
// loader accepts. The input slice is never modified.
func Repair(data []byte, load Loader, logger *slog.Logger) ([]byte, Strategy, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	rec, err := FindEOCD(data)
	if err != nil {
		return nil, "", err
	}
	logger.Debug("located end of central directory",
		logging.Int("eocd_offset", rec.Offset),
		logging.Int("cd_offset", int(rec.CDOffset)),
		logging.Int("cd_size", int(rec.CDSize)),
		logging.Int("comment_length", int(rec.CommentLength)),
		logging.Int("buffer_length", len(data)))

	var lastErr error
	for _, a := range strategies {
		candidate, ok := a.build(data, rec)
		if !ok {
			continue
		}
		if err := load(candidate); err != nil {
			lastErr = err
			logger.Debug("zip repair strategy rejected",
				logging.String("strategy", string(a.strategy)),
				logging.Error(err))
			continue
		}
		logger.Info("zip archive repaired", logging.String("strategy", string(a.strategy)))
		return candidate, a.strategy, nil
	}
	if lastErr != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrUnrepairable, lastErr)
	}
	return nil, "", ErrUnrepairable
}

// truncateTrailing drops bytes after the declared end of the EOCD comment.
func truncateTrailing(data []byte, rec Record) ([]byte, bool) {
	end := rec.End()
	if end >= len(data) {
		return nil, false
	}
	return data[:end:end], true
}

// patchCDSize rewrites the declared central directory size with the distance
// between the central directory start and the EOCD record.
func patchCDSize(data []byte, rec Record) ([]byte, bool) {
	if int64(rec.CDOffset) > int64(rec.Offset) {
		return nil, false
	}
	actual := uint32(rec.Offset - int(rec.CDOffset))
	if actual == rec.CDSize {
		return nil, false
	}
	end := min(rec.End(), len(data))
	patched := make([]byte, end)
	copy(patched, data[:end])
	binary.LittleEndian.PutUint32(patched[rec.Offset+offCDSize:], actual)
	return patched, true
}
