package audio

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/cwbudde/wav"
)

// BitDepth is the PCM sample width read and written by the WAV codec.
const BitDepth = 16

// ErrFormatMismatch is returned when a decoded WAV is not 16-bit PCM.
var ErrFormatMismatch = errors.New("WAV format mismatch")

// DecodeWAV decodes 16-bit PCM WAV bytes into a Float32 buffer carrying the
// file's sample rate and channel count.
func DecodeWAV(data []byte) (Buffer, error) {
	if len(data) == 0 {
		return Buffer{}, errors.New("empty WAV input")
	}

	r := bytes.NewReader(data)
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return Buffer{}, errors.New("invalid WAV file")
	}

	if dec.BitDepth != BitDepth {
		return Buffer{}, fmt.Errorf("%w: bit depth %d, want %d", ErrFormatMismatch, dec.BitDepth, BitDepth)
	}
	if dec.NumChans < 1 || dec.SampleRate < 1 {
		return Buffer{}, fmt.Errorf("%w: %d Hz, %d channels", ErrFormatMismatch, dec.SampleRate, dec.NumChans)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Buffer{}, fmt.Errorf("reading PCM data: %w", err)
	}

	return NewFloat32(buf.Data, int(dec.SampleRate), int(dec.NumChans)), nil
}
