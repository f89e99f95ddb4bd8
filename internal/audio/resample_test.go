package audio

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"
)

func sine(freq float64, rate, frames, channels int) []float32 {
	out := make([]float32, frames*channels)
	for f := 0; f < frames; f++ {
		v := float32(0.5 * math.Sin(2*math.Pi*freq*float64(f)/float64(rate)))
		for c := 0; c < channels; c++ {
			// Channels carry the same tone at different levels.
			out[f*channels+c] = v / float32(c+1)
		}
	}
	return out
}

func noise(n int, seed int64) []float32 {
	r := rand.New(rand.NewSource(seed))
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(r.Float64()*2 - 1)
	}
	return out
}

// ---------------------------------------------------------------------------
// Spec validation
// ---------------------------------------------------------------------------

func TestResampleSpec_Validate(t *testing.T) {
	ok := ResampleSpec{SourceRate: 24000, TargetRate: 48000, Channels: 1}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid spec rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*ResampleSpec)
	}{
		{"zero source", func(s *ResampleSpec) { s.SourceRate = 0 }},
		{"negative target", func(s *ResampleSpec) { s.TargetRate = -16000 }},
		{"NaN source", func(s *ResampleSpec) { s.SourceRate = math.NaN() }},
		{"Inf target", func(s *ResampleSpec) { s.TargetRate = math.Inf(1) }},
		{"zero channels", func(s *ResampleSpec) { s.Channels = 0 }},
		{"too many channels", func(s *ResampleSpec) { s.Channels = MaxChannels + 1 }},
		{"source above max", func(s *ResampleSpec) { s.SourceRate = MaxSampleRate + 1 }},
		{"target above max", func(s *ResampleSpec) { s.TargetRate = 10 * MaxSampleRate }},
		{"unknown quality", func(s *ResampleSpec) { s.Quality = "ultra" }},
		{"unknown engine", func(s *ResampleSpec) { s.Engine = "ffmpeg" }},
		{"unknown format", func(s *ResampleSpec) { s.Format = SampleFormat(9) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := ok
			tt.mutate(&spec)
			if err := spec.Validate(); !errors.Is(err, ErrInvalidSpec) {
				t.Errorf("Validate = %v, want ErrInvalidSpec", err)
			}
			if _, err := Resample(NewFloat32([]float32{0}, 24000, 1), spec); !errors.Is(err, ErrInvalidSpec) {
				t.Errorf("Resample = %v, want ErrInvalidSpec", err)
			}
		})
	}
}

func TestParseQuality(t *testing.T) {
	for _, in := range []string{"", "low", "Medium", " HIGH ", "best"} {
		if _, err := ParseQuality(in); err != nil {
			t.Errorf("ParseQuality(%q): %v", in, err)
		}
	}
	if q, _ := ParseQuality(""); q != DefaultQuality {
		t.Errorf("ParseQuality(\"\") = %q, want %q", q, DefaultQuality)
	}
	if _, err := ParseQuality("lossless"); err == nil {
		t.Error("expected error for unknown quality")
	}
}

// ---------------------------------------------------------------------------
// Whole-buffer conversion
// ---------------------------------------------------------------------------

func TestResample_IdentityIsCopy(t *testing.T) {
	in := noise(1000, 1)
	buf := NewFloat32(in, 24000, 2)

	out, err := Resample(buf, ResampleSpec{SourceRate: 24000, TargetRate: 24000, Channels: 2})
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if out.Len() != len(in) || out.SampleRate != 24000 || out.Format != Float32 {
		t.Fatalf("out = %d samples %d Hz %s", out.Len(), out.SampleRate, out.Format)
	}
	for i := range in {
		if out.F32[i] != in[i] {
			t.Fatalf("sample %d = %v, want %v", i, out.F32[i], in[i])
		}
	}
	out.F32[0] = 42
	if in[0] == 42 {
		t.Error("identity output aliases the input")
	}

	pcm := []int16{-32768, -3, 0, 5, 32767}
	got, err := Resample(NewInt16(pcm, 8000, 1), ResampleSpec{SourceRate: 8000, TargetRate: 8000, Channels: 1})
	if err != nil {
		t.Fatalf("Resample int16: %v", err)
	}
	if got.Format != Int16 || len(got.S16) != len(pcm) {
		t.Fatalf("int16 identity = %s, %d samples", got.Format, len(got.S16))
	}
	for i := range pcm {
		if got.S16[i] != pcm[i] {
			t.Errorf("int16 sample %d = %d, want %d", i, got.S16[i], pcm[i])
		}
	}
}

func TestResample_16kTo48kOneSecond(t *testing.T) {
	buf := NewFloat32(sine(440, 16000, 16000, 1), 16000, 1)

	out, err := Resample(buf, ResampleSpec{SourceRate: 16000, TargetRate: 48000, Channels: 1})
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if out.SampleRate != 48000 || out.Channels != 1 {
		t.Errorf("out = %d Hz %d ch, want 48000 Hz mono", out.SampleRate, out.Channels)
	}
	if n := out.Frames(); n < 47999 || n > 48001 {
		t.Errorf("frames = %d, want 48000 ±1", n)
	}
}

func TestResample_DurationBound(t *testing.T) {
	pairs := [][2]float64{
		{44100, 16000}, {24000, 44100}, {48000, 8000}, {22050, 22051}, {8000, 48000}, {16000, 24000},
	}
	for _, p := range pairs {
		for _, frames := range []int{0, 1, 7, 1000, 4411} {
			for _, q := range Qualities() {
				spec := ResampleSpec{SourceRate: p[0], TargetRate: p[1], Channels: 2, Quality: q}
				out, err := Resample(NewFloat32(noise(frames*2, int64(frames)), int(p[0]), 2), spec)
				if err != nil {
					t.Fatalf("%v→%v: %v", p[0], p[1], err)
				}
				inDur := float64(frames) / p[0]
				outDur := float64(out.Frames()) / p[1]
				if math.Abs(inDur-outDur) > 1/p[1] {
					t.Errorf("%v→%v %s, %d frames: duration %v vs %v", p[0], p[1], q, frames, outDur, inDur)
				}
			}
		}
	}
}

func TestResample_PreservesTone(t *testing.T) {
	const freq = 1000.0
	in := NewFloat32(sine(freq, 16000, 8000, 1), 16000, 1)

	out, err := Resample(in, ResampleSpec{SourceRate: 16000, TargetRate: 48000, Channels: 1, Quality: QualityHigh})
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}

	// Away from the edges the output follows the analytic tone.
	var worst float64
	for k := 500; k < out.Frames()-500; k++ {
		want := 0.5 * math.Sin(2*math.Pi*freq*float64(k)/48000)
		worst = math.Max(worst, math.Abs(float64(out.F32[k])-want))
	}
	if worst > 5e-3 {
		t.Errorf("max deviation from tone = %g", worst)
	}
}

func TestResample_DownsampleKeepsDC(t *testing.T) {
	in := make([]float32, 4800)
	for i := range in {
		in[i] = 0.5
	}
	out, err := Resample(NewFloat32(in, 48000, 1), ResampleSpec{SourceRate: 48000, TargetRate: 16000, Channels: 1})
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	for k := 200; k < out.Frames()-200; k++ {
		if math.Abs(float64(out.F32[k])-0.5) > 1e-2 {
			t.Fatalf("sample %d = %v, want ≈0.5", k, out.F32[k])
		}
	}
}

// ---------------------------------------------------------------------------
// Streaming
// ---------------------------------------------------------------------------

func TestState_StreamingMatchesOneShot(t *testing.T) {
	specs := []ResampleSpec{
		{SourceRate: 24000, TargetRate: 48000, Channels: 2},
		{SourceRate: 44100, TargetRate: 16000, Channels: 1, Quality: QualityLow},
		{SourceRate: 24000, TargetRate: 22050, Channels: 2, Quality: QualityBest},
	}
	for _, spec := range specs {
		in := noise(3001*spec.Channels, 7)
		want, err := Resample(NewFloat32(in, int(spec.SourceRate), spec.Channels), spec)
		if err != nil {
			t.Fatalf("Resample: %v", err)
		}

		st, err := NewState(spec)
		if err != nil {
			t.Fatalf("NewState: %v", err)
		}
		r := rand.New(rand.NewSource(3))
		var got []float32
		for pos := 0; pos < len(in); {
			n := (1 + r.Intn(700)) * spec.Channels
			n = min(n, len(in)-pos)
			chunk, err := st.Process(NewFloat32(in[pos:pos+n], int(spec.SourceRate), spec.Channels))
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			got = append(got, chunk.F32...)
			pos += n
		}
		tail, err := st.Flush()
		if err != nil {
			t.Fatalf("Flush: %v", err)
		}
		got = append(got, tail.F32...)

		if len(got) != want.Len() {
			t.Fatalf("%v→%v: streamed %d samples, one-shot %d", spec.SourceRate, spec.TargetRate, len(got), want.Len())
		}
		for i := range got {
			if got[i] != want.F32[i] {
				t.Fatalf("%v→%v: sample %d = %v, one-shot %v", spec.SourceRate, spec.TargetRate, i, got[i], want.F32[i])
			}
		}
	}
}

func TestState_FlushEmitsTail(t *testing.T) {
	st, err := NewState(ResampleSpec{SourceRate: 16000, TargetRate: 48000, Channels: 1})
	if err != nil {
		t.Fatal(err)
	}
	head, err := st.Process(NewFloat32(sine(440, 16000, 160, 1), 16000, 1))
	if err != nil {
		t.Fatal(err)
	}
	tail, err := st.Flush()
	if err != nil {
		t.Fatal(err)
	}
	if tail.Frames() == 0 {
		t.Error("flush emitted nothing; tail would be truncated")
	}
	if total := head.Frames() + tail.Frames(); total != 480 {
		t.Errorf("total frames = %d, want 480", total)
	}

	if _, err := st.Process(NewFloat32([]float32{0}, 16000, 1)); !errors.Is(err, ErrFlushed) {
		t.Errorf("Process after Flush = %v, want ErrFlushed", err)
	}
	if _, err := st.Flush(); !errors.Is(err, ErrFlushed) {
		t.Errorf("second Flush = %v, want ErrFlushed", err)
	}
}

func TestState_RejectsMismatchedChunks(t *testing.T) {
	st, err := NewState(ResampleSpec{SourceRate: 16000, TargetRate: 48000, Channels: 2})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := st.Process(NewFloat32(make([]float32, 4), 16000, 1)); !errors.Is(err, ErrInvalidSpec) {
		t.Errorf("channel mismatch = %v, want ErrInvalidSpec", err)
	}
	if _, err := st.Process(NewFloat32(make([]float32, 4), 22050, 2)); !errors.Is(err, ErrInvalidSpec) {
		t.Errorf("rate mismatch = %v, want ErrInvalidSpec", err)
	}
	if _, err := st.Process(NewFloat32(make([]float32, 3), 16000, 2)); !errors.Is(err, ErrInvalidBuffer) {
		t.Errorf("partial frame = %v, want ErrInvalidBuffer", err)
	}
}

// ---------------------------------------------------------------------------
// Format conversion
// ---------------------------------------------------------------------------

func TestResample_FormatOnlyWhenRequested(t *testing.T) {
	pcm := Float32ToInt16(sine(300, 8000, 800, 1))

	keep, err := Resample(NewInt16(pcm, 8000, 1), ResampleSpec{SourceRate: 8000, TargetRate: 16000, Channels: 1})
	if err != nil {
		t.Fatal(err)
	}
	if keep.Format != Int16 || len(keep.S16) != 1600 {
		t.Errorf("keep = %s with %d samples, want s16 with 1600", keep.Format, len(keep.S16))
	}

	asFloat, err := Resample(NewInt16(pcm, 8000, 1), ResampleSpec{SourceRate: 8000, TargetRate: 16000, Channels: 1, Format: Float32})
	if err != nil {
		t.Fatal(err)
	}
	if asFloat.Format != Float32 || len(asFloat.F32) != 1600 {
		t.Errorf("asFloat = %s with %d samples", asFloat.Format, len(asFloat.F32))
	}

	loud := NewFloat32([]float32{2, -2, 0.5}, 8000, 1)
	clamped, err := Resample(loud, ResampleSpec{SourceRate: 8000, TargetRate: 8000, Channels: 1, Format: Int16})
	if err != nil {
		t.Fatal(err)
	}
	if clamped.S16[0] != 32767 || clamped.S16[1] != -32767 {
		t.Errorf("clamped = %v", clamped.S16)
	}
}

// ---------------------------------------------------------------------------
// Engines
// ---------------------------------------------------------------------------

var engines = []Engine{EngineSinc, EngineSoxr}

func TestResample_SoxrEngineLength(t *testing.T) {
	spec := ResampleSpec{SourceRate: 16000, TargetRate: 48000, Channels: 1, Engine: EngineSoxr}
	out, err := Resample(NewFloat32(sine(440, 16000, 16000, 1), 16000, 1), spec)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if out.Frames() != 48000 || out.SampleRate != 48000 {
		t.Errorf("soxr output = %d frames at %d Hz, want 48000 at 48000", out.Frames(), out.SampleRate)
	}
}

func TestResample_KeepsChannelsApart(t *testing.T) {
	// Left carries a tone, right is silent.
	const frames = 16000
	in := make([]float32, 2*frames)
	for f := 0; f < frames; f++ {
		in[2*f] = float32(0.5 * math.Sin(2*math.Pi*440*float64(f)/16000))
	}

	for _, engine := range engines {
		t.Run(string(engine), func(t *testing.T) {
			spec := ResampleSpec{SourceRate: 16000, TargetRate: 48000, Channels: 2, Engine: engine}
			out, err := Resample(NewFloat32(in, 16000, 2), spec)
			if err != nil {
				t.Fatalf("Resample: %v", err)
			}
			if out.Channels != 2 || out.Frames() != 48000 {
				t.Fatalf("out = %d ch, %d frames", out.Channels, out.Frames())
			}

			planes := Deinterleave(out.F32, 2)
			left, right := energyOf(planes[0]), energyOf(planes[1])
			if left < 1000 {
				t.Errorf("left energy = %g, want the tone", left)
			}
			if right > 1e-6*left {
				t.Errorf("right energy = %g with left %g; channels bleed", right, left)
			}
		})
	}
}

func TestResample_ImpulseAlignment(t *testing.T) {
	pairs := [][2]float64{{16000, 48000}, {48000, 16000}, {24000, 48000}, {44100, 48000}}
	const frames, at = 16000, 1000

	for _, engine := range engines {
		for _, p := range pairs {
			t.Run(fmt.Sprintf("%s/%v-%v", engine, p[0], p[1]), func(t *testing.T) {
				in := make([]float32, frames)
				in[at] = 1
				spec := ResampleSpec{SourceRate: p[0], TargetRate: p[1], Channels: 1, Engine: engine}
				out, err := Resample(NewFloat32(in, int(p[0]), 1), spec)
				if err != nil {
					t.Fatalf("Resample: %v", err)
				}

				peak := peakIndex(out.F32)
				want := int(math.Round(at * p[1] / p[0]))
				if peak < want-1 || peak > want+1 {
					t.Errorf("impulse peak at %d, want %d ±1", peak, want)
				}
			})
		}
	}
}

// ---------------------------------------------------------------------------
// Polyphase design
// ---------------------------------------------------------------------------

func TestPolyphaseRatio(t *testing.T) {
	tests := []struct {
		source, target float64
		up, down       int
	}{
		{16000, 48000, 3, 1},
		{44100, 48000, 160, 147},
		{48000, 44100, 147, 160},
		{48000, 80, 1, 600},
	}
	for _, tt := range tests {
		up, down, err := polyphaseRatio(tt.source, tt.target)
		if err != nil {
			t.Fatalf("polyphaseRatio(%v, %v): %v", tt.source, tt.target, err)
		}
		if up != tt.up || down != tt.down {
			t.Errorf("polyphaseRatio(%v, %v) = %d/%d, want %d/%d", tt.source, tt.target, up, down, tt.up, tt.down)
		}
	}

	// Coprime rates and fractional rates fall back to a bounded fraction.
	for _, p := range [][2]float64{{22050, 22051}, {44100.5, 48000}, {8000, 384001}} {
		up, down, err := polyphaseRatio(p[0], p[1])
		if err != nil {
			t.Fatalf("polyphaseRatio(%v, %v): %v", p[0], p[1], err)
		}
		if up < 1 || down < 1 || up > maxPolyphaseBranches {
			t.Errorf("polyphaseRatio(%v, %v) = %d/%d, want at most %d branches", p[0], p[1], up, down, maxPolyphaseBranches)
		}
	}
}

func TestPolyphase_DelayOffset(t *testing.T) {
	// An odd interpolation factor allows a whole-frame delay.
	odd, err := newPolyphaseStream(ResampleSpec{SourceRate: 16000, TargetRate: 48000, Channels: 1})
	if err != nil {
		t.Fatal(err)
	}
	if odd.offset != 0 {
		t.Errorf("16k→48k offset = %v, want 0", odd.offset)
	}

	even, err := newPolyphaseStream(ResampleSpec{SourceRate: 24000, TargetRate: 48000, Channels: 1})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(even.offset) > 0.5 {
		t.Errorf("24k→48k offset = %v, want within half a frame", even.offset)
	}
}

func TestPolyphase_KernelBounded(t *testing.T) {
	specs := []ResampleSpec{
		{SourceRate: 48000, TargetRate: 80, Channels: 1, Quality: QualityBest},
		{SourceRate: MaxSampleRate, TargetRate: 1, Channels: 1, Quality: QualityBest},
		{SourceRate: 8000, TargetRate: MaxSampleRate, Channels: 1},
	}
	for _, spec := range specs {
		s, err := newPolyphaseStream(spec)
		if err != nil {
			t.Fatalf("%v→%v: %v", spec.SourceRate, spec.TargetRate, err)
		}
		if n := len(s.rs[0].Prototype()); n > maxKernelTaps {
			t.Errorf("%v→%v: prototype has %d taps, bound %d", spec.SourceRate, spec.TargetRate, n, maxKernelTaps)
		}
	}

	huge := ResampleSpec{SourceRate: 1, TargetRate: MaxSampleRate, Channels: 1}
	if _, err := Resample(NewFloat32([]float32{0}, 1, 1), huge); !errors.Is(err, ErrInvalidSpec) {
		t.Errorf("1 Hz→%d Hz = %v, want ErrInvalidSpec", MaxSampleRate, err)
	}
}

func energyOf(s []float32) float64 {
	var sum float64
	for _, v := range s {
		sum += float64(v) * float64(v)
	}
	return sum
}

func peakIndex(s []float32) int {
	idx, best := -1, 0.0
	for i, v := range s {
		if a := math.Abs(float64(v)); a > best {
			idx, best = i, a
		}
	}
	return idx
}
