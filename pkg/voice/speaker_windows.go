//go:build windows

package voice

import (
	"context"
	"os/exec"
)

// sapiLoop speaks each line read from standard input with the SAPI
// synthesizer.
const sapiLoop = `Add-Type -AssemblyName System.Speech;` +
	`$s = New-Object System.Speech.Synthesis.SpeechSynthesizer;` +
	`while (($l = [Console]::In.ReadLine()) -ne $null) { $s.Speak($l) }`

// NewSpeaker starts a PowerShell process driving the SAPI synthesizer.
func NewSpeaker(ctx context.Context) (Speaker, error) {
	return StartProcess(exec.CommandContext(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", sapiLoop))
}
