package assistant

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/haivivi/framegear/pkg/audio/pcm"
	"github.com/haivivi/framegear/pkg/capture"
)

// DefaultSTTModel is the transcription model used when none is configured.
const DefaultSTTModel = "whisper-1"

// SpeechToText transcribes microphone speech in capture.MicFormat.
type SpeechToText interface {
	Transcribe(ctx context.Context, samples []byte) (string, error)
}

// TranscriberConfig configures an OpenAI compatible transcription endpoint.
type TranscriberConfig struct {
	BaseURL  string
	APIKey   string
	Model    string
	Language string

	// Format of the samples. The zero value is pcm.L16Mono16K.
	Format pcm.Format

	Options []option.RequestOption
}

// Transcriber sends utterances to an OpenAI compatible transcription
// endpoint.
type Transcriber struct {
	client   openai.Client
	model    string
	language string
	format   pcm.Format
}

// NewTranscriber creates a Transcriber from cfg.
func NewTranscriber(cfg TranscriberConfig) *Transcriber {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	opts = append(opts, cfg.Options...)
	t := &Transcriber{
		client:   openai.NewClient(opts...),
		model:    cfg.Model,
		language: cfg.Language,
		format:   cfg.Format,
	}
	if t.model == "" {
		t.model = DefaultSTTModel
	}
	return t
}

// Transcribe implements SpeechToText. The samples are uploaded as a WAV
// file in the configured format.
func (t *Transcriber) Transcribe(ctx context.Context, samples []byte) (string, error) {
	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(capture.EncodeWAV(t.format, samples)), "utterance.wav", "audio/wav"),
		Model: openai.AudioModel(t.model),
	}
	if t.language != "" {
		params.Language = openai.String(t.language)
	}
	res, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("assistant: transcribe %v of %v: %w", t.format.Duration(int64(len(samples))), t.format, err)
	}
	return strings.TrimSpace(res.Text), nil
}

var _ SpeechToText = (*Transcriber)(nil)
