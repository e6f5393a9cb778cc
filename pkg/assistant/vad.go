package assistant

import (
	"time"

	"github.com/haivivi/framegear/pkg/audio/pcm"
)

// Detector defaults.
const (
	DefaultThreshold    = 500.0
	DefaultSilence      = 700 * time.Millisecond
	DefaultMinSpeech    = 300 * time.Millisecond
	DefaultMaxUtterance = 15 * time.Second

	frameDuration = 20 * time.Millisecond
	prerollFrames = 10
)

// Detector cuts a 16-bit PCM stream into utterances with an energy
// threshold. An utterance starts at the first voiced frame, includes a
// short preroll, and ends after a run of silence or at the length limit.
// Utterances with too little voiced audio are dropped.
//
// A Detector is not safe for concurrent use.
type Detector struct {
	// Format of the samples. The zero value is pcm.L16Mono16K.
	Format pcm.Format

	// Threshold is the RMS level, on the int16 scale, of a voiced frame.
	Threshold float64

	Silence      time.Duration
	MinSpeech    time.Duration
	MaxUtterance time.Duration

	pending  []byte
	preroll  [][]byte
	utter    []byte
	speaking bool
	voiced   int
	silent   int
}

// Write consumes samples and returns the utterances they complete.
func (d *Detector) Write(samples []byte) [][]byte {
	var out [][]byte
	size := d.frameBytes()
	d.pending = append(d.pending, samples...)
	for len(d.pending) >= size {
		frame := d.pending[:size:size]
		d.pending = d.pending[size:]
		if u := d.frame(frame); u != nil {
			out = append(out, u)
		}
	}
	if len(d.pending) == 0 {
		d.pending = nil
	}
	return out
}

// Flush ends the current utterance and returns it if it is long enough.
func (d *Detector) Flush() []byte {
	if !d.speaking {
		return nil
	}
	return d.finish()
}

// Speaking reports whether an utterance is in progress.
func (d *Detector) Speaking() bool {
	return d.speaking
}

func (d *Detector) frame(f []byte) []byte {
	loud := pcm.RMS(f) >= d.threshold()
	if !d.speaking {
		if !loud {
			d.preroll = append(d.preroll, f)
			if len(d.preroll) > prerollFrames {
				d.preroll = d.preroll[1:]
			}
			return nil
		}
		d.speaking = true
		for _, p := range d.preroll {
			d.utter = append(d.utter, p...)
		}
		d.preroll = nil
	}

	d.utter = append(d.utter, f...)
	if loud {
		d.voiced++
		d.silent = 0
	} else {
		d.silent++
	}
	if d.silent >= frames(orDefault(d.Silence, DefaultSilence)) ||
		len(d.utter) >= frames(orDefault(d.MaxUtterance, DefaultMaxUtterance))*d.frameBytes() {
		return d.finish()
	}
	return nil
}

func (d *Detector) finish() []byte {
	u := d.utter
	enough := d.voiced >= frames(orDefault(d.MinSpeech, DefaultMinSpeech))
	d.utter = nil
	d.speaking = false
	d.voiced = 0
	d.silent = 0
	if !enough {
		return nil
	}
	return u
}

func (d *Detector) threshold() float64 {
	if d.Threshold > 0 {
		return d.Threshold
	}
	return DefaultThreshold
}

func orDefault(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}

func frames(d time.Duration) int {
	return max(1, int(d/frameDuration))
}

func (d *Detector) frameBytes() int {
	return int(d.Format.BytesInDuration(frameDuration))
}
