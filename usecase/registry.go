package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/prasetyowira/notulis/domain/entities"
	"github.com/prasetyowira/notulis/domain/repositories"
	"github.com/prasetyowira/notulis/internal/metrics"
)

// SpeakerRegistry maps opaque voice profile handles to enrolled speakers.
// State is process-local; restarting the process clears all enrollments.
type SpeakerRegistry struct {
	mu        sync.RWMutex
	directory repositories.SpeakerDirectory
	speakers  map[string]*entities.Speaker
	order     []string

	timeout time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewSpeakerRegistry creates an empty registry backed by the given directory.
// Each outbound directory call is bounded by timeout.
func NewSpeakerRegistry(directory repositories.SpeakerDirectory, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) *SpeakerRegistry {
	return &SpeakerRegistry{
		directory: directory,
		speakers:  make(map[string]*entities.Speaker),
		order:     make([]string, 0),
		timeout:   timeout,
		logger:    logger,
		metrics:   m,
	}
}

// Enroll registers a new speaker: a profile handle is requested from the
// directory, the audio is submitted as enrollment material, and only then is
// the speaker stored. Any failure leaves the registry unchanged. The lock is
// held across the whole sequence so the enrollment cap and the
// enroll-or-fail guarantee hold under concurrent callers.
func (r *SpeakerRegistry) Enroll(ctx context.Context, audio []byte, name string) (*entities.Speaker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.speakers) >= entities.MaxSpeakers {
		r.logger.Warn("Speaker enrollment rejected, free tier limit reached",
			zap.Int("enrolled", len(r.speakers)))
		return nil, ErrRegistryFull
	}

	profileID, err := r.timedCall(ctx, "create_profile", func(cctx context.Context) (string, error) {
		return r.directory.CreateProfile(cctx)
	})
	if err != nil {
		r.logger.Error("Failed to create voice profile", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrProfileCreation, err)
	}

	_, err = r.timedCall(ctx, "enroll", func(cctx context.Context) (string, error) {
		return "", r.directory.EnrollProfile(cctx, profileID, audio)
	})
	if err != nil {
		r.logger.Error("Failed to enroll voice profile",
			zap.String("profileID", profileID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrEnrollment, err)
	}

	speaker, err := entities.NewSpeaker(name, profileID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnrollment, err)
	}

	r.speakers[profileID] = speaker
	r.order = append(r.order, profileID)
	r.metrics.SpeakersEnrolled.Set(float64(len(r.speakers)))

	r.logger.Info("Speaker enrolled",
		zap.String("name", speaker.Name),
		zap.String("profileID", profileID),
		zap.Int("enrolled", len(r.speakers)))

	return speaker, nil
}

// Identify matches the audio against every enrolled profile. Identification
// is best effort: a failed call, an unknown handle, or no confident match
// all yield nil rather than an error.
func (r *SpeakerRegistry) Identify(ctx context.Context, audio []byte) *entities.Speaker {
	r.mu.RLock()
	profileIDs := make([]string, len(r.order))
	copy(profileIDs, r.order)
	r.mu.RUnlock()

	if len(profileIDs) == 0 {
		return nil
	}

	matched, err := r.timedCall(ctx, "identify", func(cctx context.Context) (string, error) {
		return r.directory.Identify(cctx, audio, profileIDs)
	})
	if err != nil {
		r.logger.Warn("Speaker identification failed", zap.Error(err))
		return nil
	}
	if matched == "" {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.speakers[matched]
}

// Size returns the current enrolled speaker count.
func (r *SpeakerRegistry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.speakers)
}

// Speakers returns every enrolled speaker in enrollment order.
func (r *SpeakerRegistry) Speakers() []*entities.Speaker {
	r.mu.RLock()
	defer r.mu.RUnlock()

	speakers := make([]*entities.Speaker, 0, len(r.order))
	for _, id := range r.order {
		speakers = append(speakers, r.speakers[id])
	}
	return speakers
}

func (r *SpeakerRegistry) timedCall(ctx context.Context, call string, fn func(context.Context) (string, error)) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	result, err := fn(cctx)
	r.metrics.UpstreamCallDuration.WithLabelValues(call).Observe(time.Since(start).Seconds())
	if err != nil {
		r.metrics.UpstreamCallFailures.WithLabelValues(call).Inc()
	}
	return result, err
}
