package repositories

import "context"

// Transcriber abstracts the speech-to-text side of the cloud speech service.
type Transcriber interface {
	// Transcribe converts a complete WAV clip to text. It returns an error
	// both on transport failure and when the service recognizes no speech.
	Transcribe(ctx context.Context, audio []byte) (string, error)
}
