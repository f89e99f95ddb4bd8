package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/go-polyglot-tts/internal/audio"
	"github.com/example/go-polyglot-tts/internal/bench"
)

func TestBenchClip(t *testing.T) {
	clip, err := benchClip("", 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if clip.SampleRate != benchToneRate || clip.Frames() != benchToneRate/2 {
		t.Errorf("clip = %d Hz / %d frames", clip.SampleRate, clip.Frames())
	}

	if _, err := benchClip("", 0); err == nil {
		t.Error("want error for zero seconds")
	}

	path := filepath.Join(t.TempDir(), "clip.wav")
	data, err := audio.EncodeWAVPCM16(audio.NewFloat32(make([]float32, 220), 22050, 2))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	clip, err = benchClip(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	if clip.SampleRate != 22050 || clip.Channels != 2 || clip.Frames() != 110 {
		t.Errorf("loaded clip = %d Hz / %d ch / %d frames", clip.SampleRate, clip.Channels, clip.Frames())
	}
}

func TestWriteBenchReport(t *testing.T) {
	results := []bench.RunResult{{Index: 0, Cold: true, Tokens: 3}}

	var table, js bytes.Buffer
	if err := writeBenchReport(&table, "table", results); err != nil {
		t.Fatal(err)
	}
	if err := writeBenchReport(&js, "json", results); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(table.String(), "RTF") || !strings.HasPrefix(strings.TrimSpace(js.String()), "{") {
		t.Errorf("table:\n%s\njson:\n%s", table.String(), js.String())
	}
}

func TestBenchCmd_Validation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing text", []string{"bench"}},
		{"zero runs", []string{"bench", "--text", "hi", "--runs", "0"}},
		{"bad format", []string{"bench", "--text", "hi", "--format", "xml"}},
		{"rtf gate", []string{"--target-rate", "48000", "bench", "--text", "hi", "--runs", "1", "--rtf-threshold", "1e-12"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := runCLI(t, tt.args...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
