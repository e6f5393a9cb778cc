// Package capture stores what the glasses record: JPEG captures assembled
// from image chunks, and microphone audio archived as WAV plus a raw
// 16 kHz mono s16le dump.
package capture
