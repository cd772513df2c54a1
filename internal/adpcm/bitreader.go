package adpcm

// bitReader reads MSB-first bit fields.
type bitReader struct {
	data []byte
	pos  int // bit position
}

func newBitReader(data []byte) *bitReader {
	return &bitReader{data: data}
}

func (r *bitReader) remaining() int {
	return len(r.data)*8 - r.pos
}

// read returns the next n bits (n <= 32). It reports false without
// consuming anything when fewer than n bits remain.
func (r *bitReader) read(n int) (uint32, bool) {
	if n <= 0 || n > 32 || r.remaining() < n {
		return 0, false
	}
	var v uint32
	for i := 0; i < n; i++ {
		b := r.data[r.pos>>3]
		bit := (b >> (7 - uint(r.pos&7))) & 1
		v = v<<1 | uint32(bit)
		r.pos++
	}
	return v, true
}
