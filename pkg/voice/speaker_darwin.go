//go:build darwin

package voice

import (
	"context"
	"fmt"
	"os/exec"
)

// NewSpeaker returns a speaker running "say" once per sentence.
func NewSpeaker(_ context.Context) (Speaker, error) {
	if _, err := exec.LookPath("say"); err != nil {
		return nil, fmt.Errorf("voice: %w", err)
	}
	return NewCommandSpeaker("say"), nil
}
