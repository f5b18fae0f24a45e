// Package speech provides mock implementations of the speech service
// interfaces for local development and tests.
package speech

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prasetyowira/notulis/domain/repositories"
)

// MockSpeechService is a placeholder speech service. It transcribes by clip
// size and identifies the most recently enrolled profile, so the full
// pipeline can run without cloud credentials.
type MockSpeechService struct {
	mu       sync.Mutex
	enrolled map[string]bool

	logger *zap.Logger
}

// NewMockSpeechService creates a mock speech service.
func NewMockSpeechService(logger *zap.Logger) *MockSpeechService {
	return &MockSpeechService{
		enrolled: make(map[string]bool),
		logger:   logger,
	}
}

var _ repositories.Transcriber = &MockSpeechService{}
var _ repositories.SpeakerDirectory = &MockSpeechService{}

// Transcribe returns a canned transcription based on clip size.
func (m *MockSpeechService) Transcribe(ctx context.Context, audio []byte) (string, error) {
	m.logger.Info("Processing mock transcription", zap.Int("audioSize", len(audio)))

	if len(audio) == 0 {
		return "", fmt.Errorf("no audio data received")
	}

	switch {
	case len(audio) > 100000:
		return "Thanks everyone for joining, let's walk through the agenda for today.", nil
	case len(audio) > 10000:
		return "Can we revisit the deadline we agreed on last week?", nil
	default:
		return "Hello there.", nil
	}
}

// CreateProfile issues a fresh random profile handle.
func (m *MockSpeechService) CreateProfile(ctx context.Context) (string, error) {
	profileID := uuid.New().String()
	m.logger.Info("Created mock voice profile", zap.String("profileID", profileID))
	return profileID, nil
}

// EnrollProfile marks the handle as enrolled.
func (m *MockSpeechService) EnrollProfile(ctx context.Context, profileID string, audio []byte) error {
	if len(audio) == 0 {
		return fmt.Errorf("no enrollment audio received")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.enrolled[profileID] = true

	m.logger.Info("Enrolled mock voice profile",
		zap.String("profileID", profileID),
		zap.Int("audioSize", len(audio)))
	return nil
}

// Identify returns the most recently enrolled handle among the candidates,
// or no match when none of them are enrolled.
func (m *MockSpeechService) Identify(ctx context.Context, audio []byte, profileIDs []string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(profileIDs) - 1; i >= 0; i-- {
		if m.enrolled[profileIDs[i]] {
			return profileIDs[i], nil
		}
	}
	return "", nil
}
