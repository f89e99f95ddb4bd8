package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Hook post-processes interleaved samples.
type Hook func(samples []float32) []float32

// ApplyHooks runs hooks in order.
func ApplyHooks(samples []float32, hooks ...Hook) []float32 {
	out := samples
	for _, hook := range hooks {
		out = hook(out)
	}

	return out
}

// EncodeWAVPCM16 writes a canonical 44-byte header WAV without going through
// the encoder library; Int16 buffers are written bit-exact.
func EncodeWAVPCM16(b Buffer) ([]byte, error) {
	if b.SampleRate < 1 {
		return nil, fmt.Errorf("invalid sample rate: %d", b.SampleRate)
	}
	if b.Channels < 1 {
		return nil, fmt.Errorf("invalid channel count: %d", b.Channels)
	}

	pcm := b.S16
	if b.Format != Int16 {
		pcm = Float32ToInt16(b.F32)
	}

	buf := &bytes.Buffer{}
	writeHeader(buf, b.SampleRate, b.Channels, uint32(4+(8+16)+(8+len(pcm)*2)), uint32(len(pcm)*2))
	for _, s := range pcm {
		_ = binary.Write(buf, binary.LittleEndian, s)
	}

	return buf.Bytes(), nil
}

func writeHeader(buf *bytes.Buffer, sampleRate, channels int, riffSize, dataSize uint32) {
	const bitsPerSample = BitDepth
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, riffSize)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, dataSize)
}
