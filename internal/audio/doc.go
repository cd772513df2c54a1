// Package audio turns sound item payloads into interleaved 16-bit PCM.
//
// The container is sniffed from the payload: RIFF/WAVE files (go-audio/wav),
// MP3 streams (go-mp3), raw PCM whose length matches the item's declared
// format and sample count, and finally the legacy ADPCM bit stream. It also
// parses the editor's format strings ("22kHz 16bit Stereo") and writes PCM
// back out as WAV for export.
package audio
