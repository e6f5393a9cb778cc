package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/haivivi/framegear/pkg/assistant"
	"github.com/haivivi/framegear/pkg/capture"
	"github.com/haivivi/framegear/pkg/console"
	"github.com/haivivi/framegear/pkg/framemsg"
	"github.com/haivivi/framegear/pkg/sentence"
	"github.com/haivivi/framegear/pkg/voice"
)

// Status banner colors and texts.
const (
	ColorConnected    = "SEABLUE"
	ColorDisconnected = "RED"

	StatusConnected    = "Connected"
	StatusDisconnected = "Disconnected"
	StatusResynced     = "Time Resynced"
)

// DefaultReplyTimeout bounds the wait for the reply to a console command.
const DefaultReplyTimeout = 30 * time.Second

// disconnectTimeout bounds the final status update.
const disconnectTimeout = 2 * time.Second

// ErrLinkClosed is returned by Run when the device link ends first.
var ErrLinkClosed = errors.New("session: link closed")

// errStop ends the session goroutines after the console exits.
var errStop = errors.New("session: stop")

// Config configures a Session. The zero value works with a device running
// the bundled application.
type Config struct {
	// Base is the message type base. Zero means framemsg.DefaultBase.
	Base byte

	// AppFile is the local Lua application. Defaults to
	// framemsg.DefaultAppFile.
	AppFile string
	// Libs holds the standard Lua libraries; LibNames defaults to
	// framemsg.DefaultLibs.
	Libs     fs.FS
	LibNames []string
	// Resend uploads and starts the application in Start.
	Resend bool
	// Settle is the bootstrap pause. Defaults to framemsg.DefaultSettle.
	Settle time.Duration

	// ReplyTimeout bounds raw console commands. Zero means
	// DefaultReplyTimeout; negative waits until the context is done.
	ReplyTimeout time.Duration

	// DevMode enables the unsandboxed .python command.
	DevMode bool

	// SaveAudio, if set, archives microphone audio to this path.
	SaveAudio string
	// ImageDir is where camera captures are saved. Empty means the
	// temporary directory.
	ImageDir string
	// OpenImage shows a saved capture. Defaults to the platform viewer.
	OpenImage func(path string) error

	// Speaker speaks agent replies. Optional; the caller closes it.
	Speaker voice.Speaker
	// STT and Agent drive the assistant. Both are optional.
	STT       assistant.SpeechToText
	Agent     assistant.Responder
	WakeWords []string

	// Out receives device output and echoed sentences. Defaults to
	// os.Stdout.
	Out io.Writer

	Logger *slog.Logger
}

// Session owns one device connection: its Router, Device and handlers,
// the assistant pipeline and the console commands. Create one per
// connection with New.
type Session struct {
	id  string
	cfg Config

	link    framemsg.Link
	device  *framemsg.Device
	router  *framemsg.Router
	types   framemsg.MsgTypes
	replied *framemsg.Signal

	out    *syncWriter
	logger *slog.Logger

	image    *capture.ImageAssembler
	archive  *capture.AudioArchive
	seg      *sentence.Segmenter
	listener *assistant.Listener

	shutdownOnce sync.Once
}

// New creates a session on link and registers its handlers.
func New(link framemsg.Link, cfg Config) (*Session, error) {
	if cfg.Base == 0 {
		cfg.Base = framemsg.DefaultBase
	}
	if cfg.AppFile == "" {
		cfg.AppFile = framemsg.DefaultAppFile
	}
	if cfg.LibNames == nil {
		cfg.LibNames = framemsg.DefaultLibs
	}
	if cfg.ReplyTimeout == 0 {
		cfg.ReplyTimeout = DefaultReplyTimeout
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		id:      uuid.NewString(),
		cfg:     cfg,
		link:    link,
		device:  framemsg.NewDevice(link),
		types:   framemsg.TypesAt(cfg.Base),
		replied: framemsg.NewSignal(),
		out:     &syncWriter{w: cfg.Out},
		image:   &capture.ImageAssembler{Dir: cfg.ImageDir, Open: cfg.OpenImage},
	}
	s.logger = logger.With("session", s.id)
	s.device.SetLogger(framemsg.SlogLogger(s.logger))
	s.router = framemsg.NewRouter(s.device)
	s.router.SetLogger(framemsg.SlogLogger(s.logger))

	if cfg.SaveAudio != "" {
		a, err := capture.OpenArchive(cfg.SaveAudio)
		if err != nil {
			return nil, err
		}
		s.archive = a
		s.logger.Info("archiving microphone audio", "path", a.Path())
	}

	s.seg = sentence.New(voice.NewEcho(s.out))
	s.seg.Logger = s.logger
	if cfg.Speaker != nil {
		s.seg.AddSink(cfg.Speaker)
	}
	s.seg.AddSink(sentence.SinkFunc(s.display))

	if cfg.Agent == nil {
		s.logger.Warn("no agent configured, assistant requests are dropped")
	}
	var gate *assistant.WakeGate
	if len(cfg.WakeWords) > 0 {
		gate = assistant.NewWakeGate(cfg.WakeWords)
	}
	s.listener = assistant.NewListener(assistant.ListenerConfig{
		STT:       cfg.STT,
		Gate:      gate,
		Responder: cfg.Agent,
		Segmenter: s.seg,
		OnWake: func(word, _ string) {
			s.printf("Wake word detected: %s\n", word)
		},
		OnTranscript: func(text string) {
			s.printf("Transcription: %s\n", text)
		},
		Logger: s.logger,
	})

	s.register()
	return s, nil
}

// ID returns the session id carried by its log lines.
func (s *Session) ID() string {
	return s.id
}

// Device returns the device of the session.
func (s *Session) Device() *framemsg.Device {
	return s.device
}

// Router returns the message router of the session.
func (s *Session) Router() *framemsg.Router {
	return s.router
}

// ArchivedAudio returns the archive path and the number of audio bytes
// written so far. The path is empty without an archive.
func (s *Session) ArchivedAudio() (path string, n int64) {
	if s.archive == nil {
		return "", 0
	}
	return s.archive.Path(), s.archive.Written()
}

// Start optionally bootstraps the application, then syncs the device
// clock and shows the connected banner. A failed bootstrap is reported and
// the session continues; only link errors are returned.
func (s *Session) Start(ctx context.Context) error {
	if s.cfg.Resend {
		if err := s.Resend(ctx, s.cfg.AppFile); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Error("resend failed", "file", s.cfg.AppFile, "error", err)
			s.printf("resend failed: %v\n", err)
		}
	}
	if err := framemsg.SyncTime(ctx, s.device, s.types.Reply); err != nil {
		return fmt.Errorf("session: sync time: %w", err)
	}
	if err := s.device.SendStatus(ctx, s.types.Status, ColorConnected, StatusConnected); err != nil {
		return fmt.Errorf("session: status: %w", err)
	}
	s.logger.Info("session started")
	return nil
}

// Run serves the link, runs the assistant and the console until the console
// exits, the link ends or ctx is done. On every exit path the disconnected
// banner is sent and the link is closed. The exit commands and the end of
// console input return nil.
func (s *Session) Run(ctx context.Context, con *console.Console) error {
	g, gctx := errgroup.WithContext(ctx)
	stop := context.AfterFunc(gctx, s.shutdown)
	defer stop()

	g.Go(func() error {
		if err := s.router.Serve(gctx, s.link); err != nil {
			return fmt.Errorf("session: serve: %w", err)
		}
		return ErrLinkClosed
	})
	g.Go(func() error {
		return s.listener.Run(gctx)
	})
	g.Go(func() error {
		if err := con.Run(gctx, s); err != nil {
			return err
		}
		return errStop
	})

	err := g.Wait()
	s.shutdown()
	if err := s.closeCapture(); err != nil {
		s.logger.Warn("close capture", "error", err)
	}
	if errors.Is(err, errStop) {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	s.logger.Error("session ended", "error", err)
	return err
}

// Close sends the disconnected banner, closes the link and finalizes the
// audio archive. It is for sessions that never Run.
func (s *Session) Close() error {
	s.shutdown()
	return s.closeCapture()
}

func (s *Session) shutdown() {
	s.shutdownOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
		defer cancel()
		if err := s.device.SendStatus(ctx, s.types.Status, ColorDisconnected, StatusDisconnected); err != nil {
			s.logger.Warn("send disconnected status", "error", err)
		}
		if err := s.link.Close(); err != nil {
			s.logger.Warn("close link", "error", err)
		}
		s.listener.Close()
		s.logger.Info("session closed")
	})
}

func (s *Session) closeCapture() error {
	if s.archive == nil {
		return nil
	}
	return s.archive.Close()
}

// display sends a spoken sentence to the device screen.
func (s *Session) display(ctx context.Context, text string) error {
	return s.device.SendMessage(ctx, s.types.Sentence, []byte(text))
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

// syncWriter serializes writes from handlers and the console.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}
