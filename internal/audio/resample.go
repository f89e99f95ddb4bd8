package audio

import (
	"errors"
	"fmt"
)

// ErrFlushed is returned when a State is used after Flush.
var ErrFlushed = errors.New("resampler state already flushed")

type streamer interface {
	process(in []float32) ([]float32, error)
	flush(limit int64) ([]float32, error)
}

// State carries filter history between the chunks of one stream. It is not
// safe for concurrent use; a new stream needs a new State.
type State struct {
	spec     ResampleSpec
	stream   streamer // nil for equal rates
	format   SampleFormat
	inFrames int64
	flushed  bool
}

// NewState validates spec and returns a fresh stream state.
func NewState(spec ResampleSpec) (*State, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	st := &State{spec: spec, format: Float32}
	if spec.Identity() {
		return st, nil
	}

	engine, _ := ParseEngine(string(spec.Engine))
	switch engine {
	case EngineSoxr:
		s, err := newSoxrStream(spec)
		if err != nil {
			return nil, err
		}
		st.stream = s
	default:
		s, err := newPolyphaseStream(spec)
		if err != nil {
			return nil, err
		}
		st.stream = s
	}
	return st, nil
}

// Spec returns the state's spec.
func (s *State) Spec() ResampleSpec { return s.spec }

// InputFrames returns the number of frames consumed so far.
func (s *State) InputFrames() int64 { return s.inFrames }

// Process converts one chunk. The output may be shorter than the chunk
// implies; the remainder is emitted by later chunks or Flush.
func (s *State) Process(chunk Buffer) (Buffer, error) {
	if s.flushed {
		return Buffer{}, ErrFlushed
	}
	if err := s.check(chunk); err != nil {
		return Buffer{}, err
	}
	s.format = chunk.Format
	s.inFrames += int64(chunk.Frames())

	if s.stream == nil {
		out := chunk.Clone().As(s.spec.Format)
		out.SampleRate = int(s.spec.TargetRate + 0.5)
		return out, nil
	}

	out, err := s.stream.process(chunk.Float32Samples())
	if err != nil {
		return Buffer{}, err
	}
	return s.wrap(out), nil
}

// Flush emits the tail so the stream's total output is
// round(inputFrames * target / source) frames. The state is unusable
// afterwards.
func (s *State) Flush() (Buffer, error) {
	if s.flushed {
		return Buffer{}, ErrFlushed
	}
	s.flushed = true
	if s.stream == nil {
		return s.wrap(nil), nil
	}
	out, err := s.stream.flush(s.spec.OutputFrames(s.inFrames))
	if err != nil {
		return Buffer{}, err
	}
	return s.wrap(out), nil
}

func (s *State) check(chunk Buffer) error {
	if chunk.Channels != s.spec.Channels {
		return fmt.Errorf("%w: chunk has %d channels, spec %d", ErrInvalidSpec, chunk.Channels, s.spec.Channels)
	}
	if chunk.SampleRate != 0 && float64(chunk.SampleRate) != s.spec.SourceRate {
		return fmt.Errorf("%w: chunk rate %d, spec source %v", ErrInvalidSpec, chunk.SampleRate, s.spec.SourceRate)
	}
	if chunk.Format != Float32 && chunk.Format != Int16 {
		return fmt.Errorf("%w: format %s", ErrInvalidBuffer, chunk.Format)
	}
	if chunk.Len()%chunk.Channels != 0 {
		return fmt.Errorf("%w: partial frame in chunk of %d samples", ErrInvalidBuffer, chunk.Len())
	}
	return nil
}

// wrap builds an output buffer in the requested format, or in the input's
// format when none was requested.
func (s *State) wrap(samples []float32) Buffer {
	target := s.spec.Format
	if target == FormatKeep {
		target = s.format
	}
	rate := int(s.spec.TargetRate + 0.5)
	if target == Int16 {
		return NewInt16(Float32ToInt16(samples), rate, s.spec.Channels)
	}
	if samples == nil {
		samples = []float32{}
	}
	return NewFloat32(samples, rate, s.spec.Channels)
}

// Resample converts a whole buffer. Equal rates return a copy without
// filtering.
func Resample(buf Buffer, spec ResampleSpec) (Buffer, error) {
	st, err := NewState(spec)
	if err != nil {
		return Buffer{}, err
	}
	head, err := st.Process(buf)
	if err != nil {
		return Buffer{}, err
	}
	tail, err := st.Flush()
	if err != nil {
		return Buffer{}, err
	}
	return Concat(head, tail)
}

// Concat joins buffers of the same rate, channel count and format.
func Concat(bufs ...Buffer) (Buffer, error) {
	if len(bufs) == 0 {
		return Buffer{}, nil
	}
	out := Buffer{SampleRate: bufs[0].SampleRate, Channels: bufs[0].Channels, Format: bufs[0].Format}
	for _, b := range bufs {
		if b.SampleRate != out.SampleRate || b.Channels != out.Channels || b.Format != out.Format {
			return Buffer{}, fmt.Errorf("%w: cannot concatenate %d Hz/%d ch/%s with %d Hz/%d ch/%s",
				ErrInvalidBuffer, out.SampleRate, out.Channels, out.Format, b.SampleRate, b.Channels, b.Format)
		}
		out.F32 = append(out.F32, b.F32...)
		out.S16 = append(out.S16, b.S16...)
	}
	return out, nil
}
