package adpcm

import (
	"errors"
	"fmt"
	"math"
)

// FramesPerBlock is the number of frames per channel covered by one block
// header, including the initial sample.
const FramesPerBlock = 4096

var (
	// ErrChannels reports an unsupported channel count.
	ErrChannels = errors.New("adpcm: channel count must be 1 or 2")
	// ErrShort reports a payload too short to hold the width prefix and one block header.
	ErrShort = errors.New("adpcm: payload too short")
)

var stepTable = [89]int32{
	7, 8, 9, 10, 11, 12, 13, 14, 16, 17,
	19, 21, 23, 25, 28, 31, 34, 37, 41, 45,
	50, 55, 60, 66, 73, 80, 88, 97, 107, 118,
	130, 143, 157, 173, 190, 209, 230, 253, 279, 307,
	337, 371, 408, 449, 494, 544, 598, 658, 724, 796,
	876, 963, 1060, 1166, 1282, 1411, 1552, 1707, 1878, 2066,
	2272, 2499, 2749, 3024, 3327, 3660, 4026, 4428, 4871, 5358,
	5894, 6484, 7132, 7845, 8630, 9493, 10442, 11487, 12635, 13899,
	15289, 16818, 18500, 20350, 22385, 24623, 27086, 29794, 32767,
}

// indexTables is keyed by code width; entries are indexed by the magnitude
// bits of a code.
var indexTables = map[int][]int32{
	2: {-1, 2},
	3: {-1, -1, 2, 4},
	4: {-1, -1, -1, -1, 2, 4, 6, 8},
	5: {-1, -1, -1, -1, -1, -1, -1, -1, 1, 2, 4, 6, 8, 10, 13, 16},
}

type channelState struct {
	sample int32
	index  int32
}

// expand decodes one code and advances the channel state.
func (c *channelState) expand(code uint32, bits int) int16 {
	signMask := uint32(1) << (bits - 1)
	step := stepTable[c.index]
	var diff int32
	for k := signMask >> 1; k > 0; k >>= 1 {
		if code&k != 0 {
			diff += step
		}
		step >>= 1
	}
	diff += step
	if code&signMask != 0 {
		c.sample -= diff
	} else {
		c.sample += diff
	}
	c.sample = clamp(c.sample, math.MinInt16, math.MaxInt16)
	c.index = clamp(c.index+indexTables[bits][code&^signMask], 0, int32(len(stepTable)-1))
	return int16(c.sample)
}

func clamp(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Result is decoded interleaved PCM.
type Result struct {
	Samples      []int16
	Channels     int
	BitsPerCode  int
	Frames       int
	Truncated    bool
	BlocksParsed int
}

// Decode expands data into interleaved 16-bit samples. expectedFrames is the
// per-channel frame count to stop at; zero or negative decodes until the bit
// stream runs out. A stream that ends early yields only the complete frames
// decoded so far.
func Decode(data []byte, channels, expectedFrames int) (Result, error) {
	if channels != 1 && channels != 2 {
		return Result{}, fmt.Errorf("%w: got %d", ErrChannels, channels)
	}
	br := newBitReader(data)
	prefix, ok := br.read(2)
	if !ok {
		return Result{}, ErrShort
	}
	bits := int(prefix) + 2
	res := Result{Channels: channels, BitsPerCode: bits}

	limit := expectedFrames
	if limit <= 0 {
		limit = estimateFrames(len(data), channels, bits)
	}
	res.Samples = make([]int16, 0, limit*channels)

	states := make([]channelState, channels)
	frame := make([]int16, channels)
	for res.Frames < limit {
		for ch := range states {
			sample, ok1 := br.read(16)
			index, ok2 := br.read(6)
			if !ok1 || !ok2 {
				res.Truncated = expectedFrames > 0
				return finish(res), nil
			}
			states[ch].sample = int32(int16(sample))
			states[ch].index = clamp(int32(index), 0, int32(len(stepTable)-1))
			frame[ch] = int16(states[ch].sample)
		}
		res.BlocksParsed++
		res.Samples = append(res.Samples, frame...)
		res.Frames++

		for i := 1; i < FramesPerBlock && res.Frames < limit; i++ {
			for ch := range states {
				code, ok := br.read(bits)
				if !ok {
					res.Truncated = expectedFrames > 0
					return finish(res), nil
				}
				frame[ch] = states[ch].expand(code, bits)
			}
			res.Samples = append(res.Samples, frame...)
			res.Frames++
		}
	}
	return finish(res), nil
}

func finish(res Result) Result {
	res.Samples = res.Samples[:res.Frames*res.Channels]
	return res
}

// estimateFrames bounds the frame count a payload of n bytes can hold.
func estimateFrames(n, channels, bits int) int {
	total := n*8 - 2
	headerBits := 22 * channels
	blockBits := headerBits + (FramesPerBlock-1)*bits*channels
	frames := (total / blockBits) * FramesPerBlock
	rest := total % blockBits
	if rest >= headerBits {
		frames += 1 + (rest-headerBits)/(bits*channels)
	}
	return frames
}
