// Package sentence splits a streamed agent response into sentences for
// speech and display.
//
// Agents emit text token by token. A Segmenter buffers the tokens, cuts the
// buffer after each run of terminal punctuation (". ! ?") and hands every
// completed sentence to its sinks in registration order. Text between the
// reasoning markers (by default "<think>" and "</think>") is dropped, even
// when a marker arrives split across several tokens.
//
//	seg := sentence.New(speaker, display)
//	for tok := range tokens {
//		seg.Feed(ctx, tok)
//	}
//	seg.End(ctx)
package sentence
