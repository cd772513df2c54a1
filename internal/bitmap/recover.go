package bitmap

import (
	"bytes"
	"errors"
	"io"
	"log/slog"

	"github.com/klauspost/compress/flate"

	"flareader/internal/logging"
)

// Tier names the stage that produced a pixel buffer.
type Tier string

const (
	TierNone              Tier = ""
	TierUncompressed      Tier = "uncompressed"
	TierInflate           Tier = "inflate"
	TierPartial           Tier = "partial_inflate"
	TierDictionary        Tier = "dictionary_inflate"
	TierPartialDictionary Tier = "partial_dictionary_inflate"
	TierStored            Tier = "stored_blocks"
	TierImage             Tier = "image"
)

const (
	windowSize = 32 << 10
	chunkSize  = 16 << 10
)

// Recovery is the best buffer the pipeline produced.
type Recovery struct {
	Data     []byte
	Tier     Tier
	Complete bool
}

// recoveryState carries what earlier tiers learned to later ones.
type recoveryState struct {
	payload  []byte
	want     int
	partial  []byte
	consumed int
	corrupt  bool
	logger   *slog.Logger
}

type tier struct {
	name Tier
	// run returns a candidate buffer; stop ends the pipeline even when the
	// buffer is short (an intact stream that simply holds fewer rows).
	run func(st *recoveryState) (out []byte, stop bool)
}

var pipeline = []tier{
	{name: TierInflate, run: fullInflate},
	{name: TierPartial, run: partialInflate},
	{name: TierDictionary, run: dictionaryInflate},
	{name: TierPartialDictionary, run: partialDictionaryInflate},
	{name: TierStored, run: storedBlocks},
}

// Recover inflates a raw-deflate payload expected to hold want bytes. Tiers
// run in order until one yields a complete buffer; otherwise the longest
// candidate is returned. An empty Data means nothing was recovered.
func Recover(payload []byte, want int, logger *slog.Logger) Recovery {
	if logger == nil {
		logger = logging.NewNop()
	}
	st := &recoveryState{payload: payload, want: want, logger: logger}
	var best Recovery
	for _, t := range pipeline {
		out, stop := t.run(st)
		logger.Debug("bitmap recovery tier finished",
			logging.String("tier", string(t.name)),
			logging.Int("bytes", len(out)),
			logging.Int("expected_bytes", want))
		if len(out) > len(best.Data) {
			best = Recovery{Data: out, Tier: t.name}
		}
		if len(best.Data) >= want && want > 0 {
			best.Complete = true
			return best
		}
		if stop {
			break
		}
	}
	if best.Tier != TierNone && best.Tier != TierInflate {
		logger.Debug("bitmap recovered from damaged stream",
			logging.String("tier", string(best.Tier)),
			logging.Int("bytes", len(best.Data)),
			logging.Int("expected_bytes", want))
	}
	return best
}

func fullInflate(st *recoveryState) ([]byte, bool) {
	out, err := io.ReadAll(st.bound(flate.NewReader(bytes.NewReader(st.payload))))
	if err != nil {
		st.noteError(err)
		return nil, false
	}
	return st.clip(out), true
}

func partialInflate(st *recoveryState) ([]byte, bool) {
	src := bytes.NewReader(st.payload)
	out, err := readChunks(st.bound(flate.NewReader(src)))
	out = st.clip(out)
	st.consumed = len(st.payload) - src.Len()
	st.partial = out
	if err != nil {
		st.noteError(err)
	}
	return out, false
}

func dictionaryInflate(st *recoveryState) ([]byte, bool) {
	if !st.corrupt {
		return nil, false
	}
	var best []byte
	for _, dict := range st.dictionaries() {
		out, err := io.ReadAll(st.bound(flate.NewReaderDict(bytes.NewReader(st.payload), dict)))
		if err == nil && len(out) > len(best) {
			best = out
		}
	}
	return st.clip(best), false
}

func partialDictionaryInflate(st *recoveryState) ([]byte, bool) {
	if !st.corrupt {
		return nil, false
	}
	var best []byte
	for _, dict := range st.dictionaries() {
		out, _ := readChunks(st.bound(flate.NewReaderDict(bytes.NewReader(st.payload), dict)))
		if len(out) > len(best) {
			best = out
		}
	}
	return st.clip(best), false
}

// storedBlocks salvages literal stored blocks from the bytes the streaming
// inflate never reached and appends them to the partial output. With no
// partial output the whole payload is scanned.
func storedBlocks(st *recoveryState) ([]byte, bool) {
	start := 0
	if len(st.partial) > 0 {
		start = min(st.consumed, len(st.payload))
	}
	segments := scanStoredBlocks(st.payload, start)
	if len(segments) == 0 {
		return nil, false
	}
	out := make([]byte, 0, len(st.partial)+len(segments))
	out = append(out, st.partial...)
	return st.clip(append(out, segments...)), false
}

// bound caps a decompressor one byte past the expected size so a tiny
// declared bitmap cannot expand into an arbitrarily large buffer.
func (st *recoveryState) bound(r io.Reader) io.Reader {
	if st.want <= 0 {
		return r
	}
	return io.LimitReader(r, int64(st.want)+1)
}

func (st *recoveryState) clip(out []byte) []byte {
	if st.want > 0 && len(out) > st.want {
		return out[:st.want]
	}
	return out
}

// dictionaries lists preset dictionaries to retry with: the start of the
// partially decoded stream, then an all-zero window.
func (st *recoveryState) dictionaries() [][]byte {
	var dicts [][]byte
	if n := min(len(st.partial), windowSize); n > 0 {
		dicts = append(dicts, st.partial[:n])
	}
	return append(dicts, make([]byte, windowSize))
}

// noteError arms the dictionary tiers. flate reports a back-reference past
// the start of the window as a plain CorruptInputError offset, so that
// failure cannot be told apart from other corruption by type.
func (st *recoveryState) noteError(err error) {
	var corrupt flate.CorruptInputError
	if errors.As(err, &corrupt) {
		st.corrupt = true
	}
}

// readChunks drains r and keeps everything decoded before an error.
func readChunks(r io.Reader) ([]byte, error) {
	var out []byte
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}

// scanStoredBlocks finds stored blocks in buf at or after from and
// concatenates their literal bytes. A candidate needs a LEN/NLEN pair and a
// preceding byte that can end a stored block header.
func scanStoredBlocks(buf []byte, from int) []byte {
	var out []byte
	for i := max(from, 1); i+4 <= len(buf); {
		n := int(buf[i]) | int(buf[i+1])<<8
		nn := int(buf[i+2]) | int(buf[i+3])<<8
		if n > 0 && n == ^nn&0xFFFF && i+4+n <= len(buf) && storedHeader(buf[i-1]) {
			out = append(out, buf[i+4:i+4+n]...)
			i += 4 + n
			continue
		}
		i++
	}
	return out
}

// storedHeader reports whether b can hold the tail of a stored block header:
// BTYPE 00 followed by the zero padding that aligns LEN to a byte boundary.
// The header's bit offset is unknown, and at its latest in-byte position
// (bit 5) that leaves only the top two bits to check.
func storedHeader(b byte) bool {
	return b&0xC0 == 0
}
