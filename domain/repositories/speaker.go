package repositories

import "context"

// SpeakerDirectory abstracts the speaker-recognition side of the cloud
// speech service: voice profile lifecycle and identification.
type SpeakerDirectory interface {
	// CreateProfile requests a new text-independent identification profile
	// and returns its opaque handle.
	CreateProfile(ctx context.Context) (string, error)

	// EnrollProfile submits enrollment audio for the given profile handle.
	EnrollProfile(ctx context.Context, profileID string, audio []byte) error

	// Identify matches the audio against the given profile handles. It
	// returns the matched handle, or an empty string when the service
	// reports no confident match.
	Identify(ctx context.Context, audio []byte, profileIDs []string) (string, error)
}
