package assistant

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/haivivi/framegear/pkg/buffer"
	"github.com/haivivi/framegear/pkg/sentence"
)

// DefaultFollowUp is how long a bare wake word waits for the request.
const DefaultFollowUp = 10 * time.Second

// ListenerConfig wires a Listener. STT and Responder may be nil; the
// Listener then runs degraded and logs what it cannot do.
type ListenerConfig struct {
	STT       SpeechToText
	Gate      *WakeGate
	Responder Responder
	Segmenter *sentence.Segmenter

	// FollowUp defaults to DefaultFollowUp.
	FollowUp time.Duration

	// OnTranscript is called with every transcript.
	OnTranscript func(text string)
	// OnWake is called when a transcript contains a wake word.
	OnWake func(word, transcript string)

	Logger *slog.Logger
}

// Listener turns microphone audio into agent requests: utterances are cut
// by a Detector, transcribed, passed through the wake word gate and
// answered by the Responder through the Segmenter.
type Listener struct {
	cfg ListenerConfig

	feedMu     sync.Mutex
	detector   Detector
	utterances *buffer.Queue[[]byte]

	// respondMu serializes use of the segmenter.
	respondMu   sync.Mutex
	armedUntil  time.Time
	warnedNoSTT bool
}

// NewListener creates a Listener.
func NewListener(cfg ListenerConfig) *Listener {
	if cfg.Segmenter == nil {
		cfg.Segmenter = sentence.New()
	}
	if cfg.Gate == nil {
		cfg.Gate = NewWakeGate(ParseWakeWords(DefaultWakeWords))
	}
	if cfg.FollowUp <= 0 {
		cfg.FollowUp = DefaultFollowUp
	}
	return &Listener{
		cfg:        cfg,
		utterances: buffer.NewQueue[[]byte](4),
	}
}

// Detector returns the utterance detector for tuning before audio flows.
func (l *Listener) Detector() *Detector {
	return &l.detector
}

// Feed consumes microphone samples. It never blocks on transcription.
func (l *Listener) Feed(samples []byte) {
	l.feedMu.Lock()
	defer l.feedMu.Unlock()
	if l.cfg.STT == nil {
		if !l.warnedNoSTT {
			l.warnedNoSTT = true
			l.logger().Warn("assistant: no transcriber configured, microphone audio is ignored")
		}
		return
	}
	for _, u := range l.detector.Write(samples) {
		if err := l.utterances.Add(u); err != nil {
			return
		}
	}
}

// Run transcribes and answers queued utterances until Close or ctx is
// done.
func (l *Listener) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		l.utterances.CloseWithError(ctx.Err())
	})
	defer stop()
	for {
		u, err := l.utterances.Next()
		if err != nil {
			if errors.Is(err, buffer.ErrIteratorDone) {
				return nil
			}
			return ctx.Err()
		}
		l.handle(ctx, u)
	}
}

// Close drops the utterance in progress and ends Run once the queued
// utterances are answered. Audio fed after Close is ignored.
func (l *Listener) Close() error {
	l.feedMu.Lock()
	l.detector.Flush()
	l.feedMu.Unlock()
	return l.utterances.CloseWrite()
}

// Ask sends text straight to the responder, bypassing the wake word.
func (l *Listener) Ask(ctx context.Context, text string) (string, error) {
	if l.cfg.Responder == nil {
		return "", ErrNoAgent
	}
	l.respondMu.Lock()
	defer l.respondMu.Unlock()
	return l.cfg.Responder.Respond(ctx, text, l.cfg.Segmenter)
}

func (l *Listener) handle(ctx context.Context, samples []byte) {
	text, err := l.cfg.STT.Transcribe(ctx, samples)
	if err != nil {
		l.logger().Error("assistant: transcription failed", "bytes", len(samples), "error", err)
		return
	}
	if text == "" {
		return
	}
	l.logger().Debug("assistant: transcript", "text", text)
	if l.cfg.OnTranscript != nil {
		l.cfg.OnTranscript(text)
	}

	query := l.request(text)
	if query == "" {
		return
	}
	if _, err := l.Ask(ctx, query); err != nil {
		l.logger().Warn("assistant: no reply", "query", query, "error", err)
	}
}

// request returns the agent request carried by a transcript, or "".
func (l *Listener) request(text string) string {
	word, query, ok := l.cfg.Gate.Match(text)
	if !ok {
		if time.Now().Before(l.armedUntil) {
			l.armedUntil = time.Time{}
			return text
		}
		return ""
	}
	if l.cfg.OnWake != nil {
		l.cfg.OnWake(word, text)
	}
	if query == "" {
		l.armedUntil = time.Now().Add(l.cfg.FollowUp)
		return ""
	}
	l.armedUntil = time.Time{}
	return query
}

func (l *Listener) logger() *slog.Logger {
	if l.cfg.Logger != nil {
		return l.cfg.Logger
	}
	return slog.Default()
}
