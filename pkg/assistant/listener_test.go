package assistant

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/haivivi/framegear/pkg/sentence"
)

// scriptedSTT returns one transcript per call.
type scriptedSTT struct {
	mu    sync.Mutex
	texts []string
}

func (s *scriptedSTT) Transcribe(context.Context, []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.texts) == 0 {
		return "", errors.New("no more transcripts")
	}
	t := s.texts[0]
	s.texts = s.texts[1:]
	return t, nil
}

type echoResponder struct {
	mu   sync.Mutex
	asks []string
}

func (r *echoResponder) Respond(ctx context.Context, text string, seg *sentence.Segmenter) (string, error) {
	r.mu.Lock()
	r.asks = append(r.asks, text)
	r.mu.Unlock()
	seg.Feed(ctx, "You said "+text+".")
	seg.End(ctx)
	return "You said " + text + ".", nil
}

func (r *echoResponder) got() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.asks)
}

// utterance is long enough loud audio followed by enough silence to end it.
func utterance() []byte {
	return append(tone(400*time.Millisecond, 3000), tone(800*time.Millisecond, 0)...)
}

func runListener(t *testing.T, l *Listener, feeds int) {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- l.Run(context.Background()) }()
	for range feeds {
		l.Feed(utterance())
	}
	l.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not finish")
	}
}

func TestListener_WakeWordRequest(t *testing.T) {
	stt := &scriptedSTT{texts: []string{
		"just chatting",
		"Hey brain, what is up?",
	}}
	resp := &echoResponder{}
	rec := &sentenceRecorder{}
	var wakes []string
	var transcripts []string
	l := NewListener(ListenerConfig{
		STT:          stt,
		Responder:    resp,
		Segmenter:    sentence.New(rec),
		OnWake:       func(w, _ string) { wakes = append(wakes, w) },
		OnTranscript: func(s string) { transcripts = append(transcripts, s) },
	})
	runListener(t, l, 2)

	if got := resp.got(); !slices.Equal(got, []string{"what is up?"}) {
		t.Errorf("asks = %q", got)
	}
	if !slices.Equal(wakes, []string{"hey brain"}) {
		t.Errorf("wakes = %q", wakes)
	}
	if len(transcripts) != 2 {
		t.Errorf("transcripts = %q", transcripts)
	}
	if !slices.Equal(rec.got, []string{"You said what is up?."}) {
		t.Errorf("sentences = %q", rec.got)
	}
}

func TestListener_BareWakeWordArmsFollowUp(t *testing.T) {
	stt := &scriptedSTT{texts: []string{"Hey Frame.", "Tell me a joke", "and another"}}
	resp := &echoResponder{}
	l := NewListener(ListenerConfig{STT: stt, Responder: resp})
	runListener(t, l, 3)

	if got := resp.got(); !slices.Equal(got, []string{"Tell me a joke"}) {
		t.Errorf("asks = %q", got)
	}
}

func TestListener_NoTranscriber(t *testing.T) {
	resp := &echoResponder{}
	l := NewListener(ListenerConfig{Responder: resp})
	runListener(t, l, 2)
	if len(resp.got()) != 0 {
		t.Errorf("asks = %q", resp.got())
	}
}

func TestListener_Ask(t *testing.T) {
	resp := &echoResponder{}
	l := NewListener(ListenerConfig{Responder: resp})
	reply, err := l.Ask(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if reply != "You said hello." {
		t.Errorf("reply = %q", reply)
	}

	noAgent := NewListener(ListenerConfig{})
	if _, err := noAgent.Ask(context.Background(), "hello"); !errors.Is(err, ErrNoAgent) {
		t.Errorf("Ask without agent = %v; want ErrNoAgent", err)
	}
}

func TestListener_RunStopsOnCancel(t *testing.T) {
	l := NewListener(ListenerConfig{STT: &scriptedSTT{}})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run = %v; want Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run ignored cancel")
	}
}

func TestListener_CloseDropsUnfinishedUtterance(t *testing.T) {
	stt := &scriptedSTT{texts: []string{"hey frame finished", "hey frame cut off"}}
	resp := &echoResponder{}
	l := NewListener(ListenerConfig{STT: stt, Responder: resp})

	done := make(chan error, 1)
	go func() { done <- l.Run(context.Background()) }()
	l.Feed(utterance())
	l.Feed(tone(400*time.Millisecond, 3000))
	if !l.Detector().Speaking() {
		t.Fatal("second utterance not in progress")
	}
	l.Close()
	l.Feed(utterance())
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not finish")
	}
	if got := resp.got(); !slices.Equal(got, []string{"finished"}) {
		t.Errorf("asks = %q; want only the finished utterance", got)
	}
	if l.Detector().Speaking() {
		t.Error("detector still speaking after Close")
	}
}
