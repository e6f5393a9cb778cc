//go:build !windows && !darwin

package voice

import (
	"context"
	"os/exec"
)

// NewSpeaker starts the platform synthesizer. On Linux and other Unix
// systems this is espeak reading sentences from standard input.
func NewSpeaker(ctx context.Context) (Speaker, error) {
	return StartProcess(exec.CommandContext(ctx, "espeak"))
}
