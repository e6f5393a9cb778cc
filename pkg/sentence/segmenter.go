package sentence

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode"

	"google.golang.org/api/iterator"
)

// Default reasoning markers.
const (
	DefaultReasoningStart = "<think>"
	DefaultReasoningEnd   = "</think>"
)

// Sink consumes completed sentences.
type Sink interface {
	WriteSentence(ctx context.Context, s string) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(ctx context.Context, s string) error

// WriteSentence implements Sink.
func (f SinkFunc) WriteSentence(ctx context.Context, s string) error {
	return f(ctx, s)
}

// TextIterator yields text fragments. Next returns iterator.Done at the end
// of the stream.
type TextIterator interface {
	Next() (string, error)
}

// Segmenter turns an incrementally arriving text stream into sentences and
// delivers each one to every registered sink. Text between the reasoning
// markers never reaches a sink.
//
// A Segmenter is not safe for concurrent use; it is owned by the goroutine
// reading the response stream.
type Segmenter struct {
	// ReasoningStart and ReasoningEnd delimit a reasoning span. Empty
	// values use DefaultReasoningStart and DefaultReasoningEnd.
	ReasoningStart string
	ReasoningEnd   string

	// Logger receives sink failures. Nil means slog.Default().
	Logger *slog.Logger

	sinks []Sink

	buf string
	// held is normal text that preceded a reasoning start marker and has
	// not ended a sentence yet. It resumes when the reasoning span closes.
	held        string
	inReasoning bool
}

// New creates a Segmenter delivering to sinks in the given order.
func New(sinks ...Sink) *Segmenter {
	return &Segmenter{sinks: sinks}
}

// AddSink appends a sink. Sinks receive each sentence in the order they were
// added.
func (s *Segmenter) AddSink(sink Sink) {
	s.sinks = append(s.sinks, sink)
}

// InReasoning reports whether the stream is inside a reasoning span.
func (s *Segmenter) InReasoning() bool {
	return s.inReasoning
}

// Feed appends a fragment and emits every sentence it completes.
func (s *Segmenter) Feed(ctx context.Context, fragment string) {
	s.buf += fragment
	s.drain(ctx, false)
}

// End marks the end of the stream. Buffered text outside a reasoning span is
// emitted as a final sentence, terminated or not, and the Segmenter is reset
// for the next stream.
func (s *Segmenter) End(ctx context.Context) {
	s.drain(ctx, true)
	if !s.inReasoning {
		s.emit(ctx, s.buf)
	}
	s.Reset()
}

// Reset discards buffered text and returns to the normal state.
func (s *Segmenter) Reset() {
	s.buf = ""
	s.held = ""
	s.inReasoning = false
}

// FeedAll feeds every fragment of it until it returns iterator.Done. The
// stream is not ended, so a later stream may continue the same text. Other
// errors are returned with the buffered text kept.
func (s *Segmenter) FeedAll(ctx context.Context, it TextIterator) error {
	for {
		text, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return err
		}
		s.Feed(ctx, text)
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// Consume feeds every fragment of it and ends the stream when it returns
// iterator.Done. Any other error discards the buffered text and is
// returned.
func (s *Segmenter) Consume(ctx context.Context, it TextIterator) error {
	if err := s.FeedAll(ctx, it); err != nil {
		s.Reset()
		return err
	}
	s.End(ctx)
	return nil
}

func (s *Segmenter) drain(ctx context.Context, final bool) {
	start, end := s.Markers()
	for {
		if s.inReasoning {
			i := strings.Index(s.buf, end)
			if i < 0 {
				// Keep a possible partial end marker only.
				s.buf = s.buf[len(s.buf)-markerTail(s.buf, end):]
				return
			}
			s.buf = s.held + s.buf[i+len(end):]
			s.held = ""
			s.inReasoning = false
			continue
		}

		si := strings.Index(s.buf, start)
		ei := strings.Index(s.buf, end)
		if ei >= 0 && (si < 0 || ei < si) {
			// A close without an open: everything before it was
			// reasoning that started before this stream was visible.
			s.buf = s.buf[ei+len(end):]
			continue
		}
		if si >= 0 {
			s.held = s.split(ctx, s.buf[:si], true)
			s.buf = s.buf[si+len(start):]
			s.inReasoning = true
			continue
		}

		pending := 0
		if !final {
			pending = max(markerTail(s.buf, start), markerTail(s.buf, end))
		}
		cut := len(s.buf) - pending
		s.buf = s.split(ctx, s.buf[:cut], final) + s.buf[cut:]
		return
	}
}

// split emits the completed sentences of text and returns the unterminated
// remainder. A run of terminal punctuation ends a sentence. A dot between
// two digits does not; a dot after a digit at the end of text is held back
// unless closed reports that no more text follows it.
func (s *Segmenter) split(ctx context.Context, text string, closed bool) string {
	from := 0
	for i := 0; i < len(text); i++ {
		if !isTerminal(text[i]) {
			continue
		}
		j := i + 1
		for j < len(text) && isTerminal(text[j]) {
			j++
		}
		if text[i] == '.' && j == i+1 && i > 0 && isDigit(text[i-1]) {
			if j == len(text) && !closed {
				break
			}
			if j < len(text) && isDigit(text[j]) {
				continue
			}
		}
		s.emit(ctx, text[from:j])
		from = j
		i = j - 1
	}
	return text[from:]
}

func (s *Segmenter) emit(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if !hasWord(text) {
		return
	}
	for i, sink := range s.sinks {
		if err := sink.WriteSentence(ctx, text); err != nil {
			s.logger().Warn("sentence: sink failed", "sink", i, "error", err)
		}
	}
}

// Markers returns the reasoning markers in effect.
func (s *Segmenter) Markers() (start, end string) {
	start, end = s.ReasoningStart, s.ReasoningEnd
	if start == "" {
		start = DefaultReasoningStart
	}
	if end == "" {
		end = DefaultReasoningEnd
	}
	return start, end
}

func (s *Segmenter) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// markerTail returns the length of the longest proper prefix of marker that
// text ends with.
func markerTail(text, marker string) int {
	for n := min(len(marker)-1, len(text)); n > 0; n-- {
		if strings.HasSuffix(text, marker[:n]) {
			return n
		}
	}
	return 0
}

func isTerminal(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

func isDigit(b byte) bool {
	return '0' <= b && b <= '9'
}

func hasWord(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
