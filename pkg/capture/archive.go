package capture

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/haivivi/framegear/pkg/buffer"
)

// RawSuffix is appended to the archive path for the raw sample dump.
const RawSuffix = ".s16le"

// AudioArchive records microphone frames to "<path>.wav" and a raw dump
// "<path>.wav.s16le". Writes are queued and never block the caller; the
// WAV header is finalized by Close.
type AudioArchive struct {
	wav *os.File
	raw *os.File

	chunks *buffer.Queue[[]byte]
	done   chan struct{}

	mu      sync.Mutex
	written int64
	err     error

	closeOnce sync.Once
	closeErr  error
}

// ArchivePath returns path unchanged when it ends in ".wav" and with ".wav"
// appended otherwise.
func ArchivePath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		return path
	}
	return path + ".wav"
}

// OpenArchive creates (or truncates) the archive files for path.
func OpenArchive(path string) (*AudioArchive, error) {
	path = ArchivePath(path)
	wav, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("capture: create %s: %w", path, err)
	}
	raw, err := os.Create(path + RawSuffix)
	if err != nil {
		wav.Close()
		return nil, fmt.Errorf("capture: create %s: %w", path+RawSuffix, err)
	}
	if err := writeWAVHeader(wav, 0, MicFormat); err != nil {
		wav.Close()
		raw.Close()
		return nil, fmt.Errorf("capture: write header: %w", err)
	}
	a := &AudioArchive{
		wav:    wav,
		raw:    raw,
		chunks: buffer.NewQueue[[]byte](64),
		done:   make(chan struct{}),
	}
	go a.drain()
	return a, nil
}

// Path returns the WAV file path.
func (a *AudioArchive) Path() string {
	return a.wav.Name()
}

// Write queues a copy of p. It implements io.Writer.
func (a *AudioArchive) Write(p []byte) (int, error) {
	if err := a.chunks.Add(slices.Clone(p)); err != nil {
		return 0, fmt.Errorf("capture: archive: %w", err)
	}
	return len(p), nil
}

func (a *AudioArchive) drain() {
	defer close(a.done)
	for {
		chunk, err := a.chunks.Next()
		if err != nil {
			return
		}
		if err := a.write(chunk); err != nil {
			slog.Error("capture: archive write failed", "path", a.wav.Name(), "error", err)
			a.mu.Lock()
			a.err = err
			a.mu.Unlock()
			a.chunks.CloseWithError(err)
			return
		}
	}
}

func (a *AudioArchive) write(chunk []byte) error {
	if _, err := a.wav.Write(chunk); err != nil {
		return err
	}
	if _, err := a.raw.Write(chunk); err != nil {
		return err
	}
	a.mu.Lock()
	a.written += int64(len(chunk))
	a.mu.Unlock()
	return nil
}

// Written returns the number of sample bytes stored so far.
func (a *AudioArchive) Written() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.written
}

// Duration returns the length of the audio stored so far.
func (a *AudioArchive) Duration() time.Duration {
	return MicFormat.Duration(a.Written())
}

// Close flushes queued frames, rewrites the WAV header with the final size
// and closes both files.
func (a *AudioArchive) Close() error {
	a.closeOnce.Do(func() {
		a.chunks.CloseWrite()
		<-a.done

		a.mu.Lock()
		errs := []error{a.err}
		n := a.written
		a.mu.Unlock()

		if _, err := a.wav.Seek(0, io.SeekStart); err != nil {
			errs = append(errs, err)
		} else if err := writeWAVHeader(a.wav, uint32(n), MicFormat); err != nil {
			errs = append(errs, err)
		}
		errs = append(errs, a.wav.Close(), a.raw.Close())
		if err := errors.Join(errs...); err != nil {
			a.closeErr = fmt.Errorf("capture: close archive: %w", err)
		}
	})
	return a.closeErr
}

var _ io.WriteCloser = (*AudioArchive)(nil)
