// Package adpcm decodes the bit-packed IMA-ADPCM variant stored in legacy
// sound payloads. A two-bit prefix selects the code width (2 to 5 bits);
// each block carries a 16-bit initial sample and a 6-bit step index per
// channel followed by up to 4095 codes per channel. Output is interleaved
// 16-bit PCM trimmed to the frames actually decoded.
package adpcm
