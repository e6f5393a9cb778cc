package capture

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestArchivePath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"rec", "rec.wav"},
		{"rec.wav", "rec.wav"},
		{"rec.WAV", "rec.WAV"},
		{"rec.mp3", "rec.mp3.wav"},
		{filepath.Join("a.b", "rec"), filepath.Join("a.b", "rec") + ".wav"},
	}
	for _, tc := range tests {
		if got := ArchivePath(tc.in); got != tc.want {
			t.Errorf("ArchivePath(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestAudioArchive(t *testing.T) {
	base := filepath.Join(t.TempDir(), "session")
	a, err := OpenArchive(base)
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	if a.Path() != base+".wav" {
		t.Errorf("Path() = %q", a.Path())
	}

	frames := [][]byte{{1, 0, 2, 0}, {3, 0}, {4, 0, 5, 0, 6, 0}}
	for _, f := range frames {
		if _, err := a.Write(f); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	frames[0][0] = 0xff // Write copies
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if a.Written() != 12 {
		t.Errorf("Written() = %d; want 12", a.Written())
	}
	if d := a.Duration(); d != 375*time.Microsecond {
		t.Errorf("Duration() = %v; want 375µs", d)
	}

	want := []byte{1, 0, 2, 0, 3, 0, 4, 0, 5, 0, 6, 0}
	raw, err := os.ReadFile(base + ".wav" + RawSuffix)
	if err != nil {
		t.Fatalf("read raw: %v", err)
	}
	if !bytes.Equal(raw, want) {
		t.Errorf("raw = %v; want %v", raw, want)
	}

	wav, err := os.ReadFile(base + ".wav")
	if err != nil {
		t.Fatalf("read wav: %v", err)
	}
	if len(wav) != wavHeaderSize+len(want) {
		t.Fatalf("wav size = %d; want %d", len(wav), wavHeaderSize+len(want))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" || string(wav[36:40]) != "data" {
		t.Errorf("bad header %q", wav[:wavHeaderSize])
	}
	if n := binary.LittleEndian.Uint32(wav[40:44]); n != 12 {
		t.Errorf("data size = %d; want 12", n)
	}
	if n := binary.LittleEndian.Uint32(wav[4:8]); n != 36+12 {
		t.Errorf("chunk size = %d; want 48", n)
	}
	if rate := binary.LittleEndian.Uint32(wav[24:28]); rate != uint32(MicFormat.SampleRate()) {
		t.Errorf("sample rate = %d", rate)
	}
	if !bytes.Equal(wav[wavHeaderSize:], want) {
		t.Errorf("samples = %v; want %v", wav[wavHeaderSize:], want)
	}

	if _, err := a.Write([]byte{1}); err == nil {
		t.Error("Write after Close succeeded")
	}
}

func TestEncodeWAV(t *testing.T) {
	samples := []byte{1, 2, 3, 4}
	wav := EncodeWAV(MicFormat, samples)
	if len(wav) != wavHeaderSize+4 {
		t.Fatalf("len = %d", len(wav))
	}
	if binary.LittleEndian.Uint16(wav[20:22]) != 1 || binary.LittleEndian.Uint16(wav[22:24]) != 1 {
		t.Errorf("format/channels = % x", wav[20:24])
	}
	if binary.LittleEndian.Uint32(wav[28:32]) != uint32(MicFormat.BytesRate()) {
		t.Errorf("byte rate = %d", binary.LittleEndian.Uint32(wav[28:32]))
	}
	if binary.LittleEndian.Uint16(wav[34:36]) != uint16(MicFormat.Depth()) {
		t.Errorf("bits = %d", binary.LittleEndian.Uint16(wav[34:36]))
	}
}
