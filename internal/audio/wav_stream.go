package audio

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
)

// WriteWAVHeaderStreaming writes a 44-byte WAV header suitable for streaming
// where the total data length is not known in advance. Both the RIFF chunk
// size and the data sub-chunk size are set to 0xFFFFFFFF, which is the
// conventional marker for an unknown/streaming length.
func WriteWAVHeaderStreaming(w io.Writer, sampleRate, channels int) (int, error) {
	var buf bytes.Buffer
	writeHeader(&buf, sampleRate, channels, 0xFFFFFFFF, 0xFFFFFFFF)
	return w.Write(buf.Bytes())
}

// WritePCM16Samples encodes float32 samples as little-endian 16-bit signed
// integers and writes them to w. Samples are clamped to [-1, 1].
func WritePCM16Samples(w io.Writer, samples []float32) (int, error) {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		clamped := math.Max(-1.0, math.Min(1.0, float64(s)))
		v := int16(clamped * 32767)
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(v))
	}

	return w.Write(buf)
}

// WriteBuffer writes b's samples as PCM16, bit-exact for Int16 buffers.
func WriteBuffer(w io.Writer, b Buffer) (int, error) {
	if b.Format != Int16 {
		return WritePCM16Samples(w, b.F32)
	}
	buf := make([]byte, len(b.S16)*2)
	for i, v := range b.S16 {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(v))
	}
	return w.Write(buf)
}
