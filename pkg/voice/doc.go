// Package voice provides sentence sinks that speak or echo agent replies.
//
// NewSpeaker picks the platform synthesizer once: espeak fed through
// standard input on Linux, "say" per sentence on macOS and a PowerShell
// SAPI loop on Windows. Sentences are queued so a slow synthesizer never
// blocks the caller.
package voice
