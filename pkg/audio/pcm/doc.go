// Package pcm describes the raw PCM audio formats streamed by the device.
//
// A Format carries the sample rate, channel count and bit depth, and
// converts between byte counts and durations:
//
//	format := pcm.L16Mono16K
//
//	// Bytes in one 20ms frame
//	n := format.BytesInDuration(20 * time.Millisecond)
//
//	// Length of an archive
//	d := format.Duration(written)
package pcm
