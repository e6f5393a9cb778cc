// Package assistant connects the glasses microphone to a chat agent.
//
// Audio frames go through an energy based Detector that cuts them into
// utterances. Each utterance is transcribed by an OpenAI compatible
// transcription endpoint; transcripts that start a request with a wake word
// ("hey frame" and its usual mishearings) are answered by an Agent whose
// reply streams into a sentence.Segmenter for speech and display.
//
// Both endpoints are optional. Without a transcriber the microphone is
// ignored; without an agent requests are logged and dropped.
package assistant
