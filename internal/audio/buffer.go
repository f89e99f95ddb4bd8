// Package audio holds the waveform types and the sample-rate converter
// applied to acoustic model output, plus WAV encoding and decoding for the
// command-line surface.
//
// Samples are interleaved by frame. Float32 samples are nominally in
// [-1, 1]; Int16 samples use the full signed range.
package audio

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// SampleFormat is the encoding of a buffer's samples.
type SampleFormat int

const (
	// FormatKeep is only meaningful in a ResampleSpec: keep the input format.
	FormatKeep SampleFormat = iota
	Float32
	Int16
)

func (f SampleFormat) String() string {
	switch f {
	case FormatKeep:
		return "keep"
	case Float32:
		return "f32"
	case Int16:
		return "s16"
	default:
		return fmt.Sprintf("SampleFormat(%d)", int(f))
	}
}

// ParseSampleFormat maps "f32", "s16" or "" (keep) to a SampleFormat.
func ParseSampleFormat(s string) (SampleFormat, error) {
	switch s {
	case "", "keep":
		return FormatKeep, nil
	case "f32", "float32", "float":
		return Float32, nil
	case "s16", "int16", "pcm16":
		return Int16, nil
	default:
		return FormatKeep, fmt.Errorf("unknown sample format %q (want f32|s16)", s)
	}
}

// ErrInvalidBuffer reports a buffer whose sample count, format or rate is
// inconsistent.
var ErrInvalidBuffer = errors.New("invalid audio buffer")

// Buffer is an interleaved multi-channel waveform. Exactly one of F32 or S16
// carries samples, selected by Format.
type Buffer struct {
	SampleRate int
	Channels   int
	Format     SampleFormat
	F32        []float32
	S16        []int16
}

// NewFloat32 wraps interleaved float samples.
func NewFloat32(samples []float32, sampleRate, channels int) Buffer {
	return Buffer{SampleRate: sampleRate, Channels: channels, Format: Float32, F32: samples}
}

// NewInt16 wraps interleaved 16-bit samples.
func NewInt16(samples []int16, sampleRate, channels int) Buffer {
	return Buffer{SampleRate: sampleRate, Channels: channels, Format: Int16, S16: samples}
}

// Len returns the number of samples across all channels.
func (b Buffer) Len() int {
	if b.Format == Int16 {
		return len(b.S16)
	}
	return len(b.F32)
}

// Frames returns the number of frames.
func (b Buffer) Frames() int {
	if b.Channels < 1 {
		return 0
	}
	return b.Len() / b.Channels
}

// Duration returns the buffer length in time.
func (b Buffer) Duration() time.Duration {
	if b.SampleRate < 1 {
		return 0
	}
	return time.Duration(float64(b.Frames()) / float64(b.SampleRate) * float64(time.Second))
}

// Validate checks the buffer's metadata against its samples.
func (b Buffer) Validate() error {
	switch {
	case b.Channels < 1:
		return fmt.Errorf("%w: channels %d", ErrInvalidBuffer, b.Channels)
	case b.SampleRate < 1:
		return fmt.Errorf("%w: sample rate %d", ErrInvalidBuffer, b.SampleRate)
	case b.Format != Float32 && b.Format != Int16:
		return fmt.Errorf("%w: format %s", ErrInvalidBuffer, b.Format)
	case b.Len()%b.Channels != 0:
		return fmt.Errorf("%w: %d samples is not a whole number of %d-channel frames", ErrInvalidBuffer, b.Len(), b.Channels)
	}
	return nil
}

// Clone returns a deep copy.
func (b Buffer) Clone() Buffer {
	out := b
	out.F32 = append([]float32(nil), b.F32...)
	out.S16 = append([]int16(nil), b.S16...)
	return out
}

// Float32Samples returns the samples as floats, converting Int16 data.
func (b Buffer) Float32Samples() []float32 {
	if b.Format == Int16 {
		return Int16ToFloat32(b.S16)
	}
	return b.F32
}

// As returns b in format f. FormatKeep and the current format return b.
func (b Buffer) As(f SampleFormat) Buffer {
	if f == FormatKeep || f == b.Format {
		return b
	}
	out := Buffer{SampleRate: b.SampleRate, Channels: b.Channels, Format: f}
	switch f {
	case Int16:
		out.S16 = Float32ToInt16(b.F32)
	case Float32:
		out.F32 = Int16ToFloat32(b.S16)
	}
	return out
}

// Float32ToInt16 clamps to [-1, 1] and scales by 32767.
func Float32ToInt16(in []float32) []int16 {
	out := make([]int16, len(in))
	for i, s := range in {
		clamped := math.Max(-1.0, math.Min(1.0, float64(s)))
		out[i] = int16(clamped * 32767)
	}
	return out
}

// Int16ToFloat32 scales by 1/32768.
func Int16ToFloat32(in []int16) []float32 {
	out := make([]float32, len(in))
	for i, s := range in {
		out[i] = float32(s) / 32768.0
	}
	return out
}

// Deinterleave splits interleaved samples into one plane per channel.
// A trailing partial frame is dropped.
func Deinterleave(samples []float32, channels int) [][]float32 {
	if channels < 1 {
		return nil
	}
	frames := len(samples) / channels
	planes := make([][]float32, channels)
	for c := range planes {
		planes[c] = make([]float32, frames)
	}
	for f := 0; f < frames; f++ {
		for c := 0; c < channels; c++ {
			planes[c][f] = samples[f*channels+c]
		}
	}
	return planes
}

// Interleave merges equal-length planes into interleaved samples. Planes
// are truncated to the shortest.
func Interleave(planes [][]float32) []float32 {
	if len(planes) == 0 {
		return nil
	}
	frames := len(planes[0])
	for _, p := range planes[1:] {
		frames = min(frames, len(p))
	}
	out := make([]float32, frames*len(planes))
	for f := 0; f < frames; f++ {
		for c, p := range planes {
			out[f*len(planes)+c] = p[f]
		}
	}
	return out
}

// Remix converts b to channels. Mono is duplicated into every output
// channel; multi-channel input mixed to mono is averaged per frame. Other
// conversions are rejected.
func Remix(b Buffer, channels int) (Buffer, error) {
	if channels < 1 {
		return Buffer{}, fmt.Errorf("%w: channels %d", ErrInvalidBuffer, channels)
	}
	if channels == b.Channels {
		return b, nil
	}
	if b.Channels != 1 && channels != 1 {
		return Buffer{}, fmt.Errorf("%w: cannot remix %d channels to %d", ErrInvalidBuffer, b.Channels, channels)
	}

	in := b.Float32Samples()
	var out []float32
	if b.Channels == 1 {
		out = make([]float32, len(in)*channels)
		for f, s := range in {
			for c := 0; c < channels; c++ {
				out[f*channels+c] = s
			}
		}
	} else {
		frames := len(in) / b.Channels
		out = make([]float32, frames)
		for f := 0; f < frames; f++ {
			var sum float64
			for c := 0; c < b.Channels; c++ {
				sum += float64(in[f*b.Channels+c])
			}
			out[f] = float32(sum / float64(b.Channels))
		}
	}

	res := NewFloat32(out, b.SampleRate, channels)
	if b.Format == Int16 {
		res = res.As(Int16)
	}
	return res, nil
}
