package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/prasetyowira/notulis/domain/entities"
	"github.com/prasetyowira/notulis/domain/repositories"
	"github.com/prasetyowira/notulis/internal/metrics"
)

var (
	// ErrTranscriptionFailed is returned when the speech service errs or
	// recognizes no speech. It is fatal to the submission.
	ErrTranscriptionFailed = errors.New("failed to transcribe audio")

	// ErrRegistryFull is returned when enrollment would exceed the free
	// tier speaker cap. The remote service is never contacted in this case.
	ErrRegistryFull = errors.New("speaker limit reached")

	// ErrProfileCreation is returned when the directory cannot issue a new
	// voice profile handle.
	ErrProfileCreation = errors.New("failed to create voice profile")

	// ErrEnrollment is returned when enrollment audio is rejected after a
	// profile handle was issued.
	ErrEnrollment = errors.New("failed to enroll speaker")
)

// EntryNotifier receives every transcript entry as it is appended. The
// websocket hub implements this to push entries to connected pages.
type EntryNotifier interface {
	EntryAppended(entry entities.FormattedEntry)
}

// RecognitionService coordinates one audio submission: transcribe the clip,
// identify the speaker against the registry, append the attributed text to
// the transcript. Identification is a best-effort enrichment; transcription
// failure is fatal because there is nothing useful to log without text.
type RecognitionService struct {
	transcriber repositories.Transcriber
	registry    *SpeakerRegistry
	transcript  *TranscriptLog
	notifier    EntryNotifier

	timeout time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewRecognitionService wires the coordinator. Each outbound transcription
// call is bounded by timeout.
func NewRecognitionService(
	transcriber repositories.Transcriber,
	registry *SpeakerRegistry,
	transcript *TranscriptLog,
	timeout time.Duration,
	logger *zap.Logger,
	m *metrics.Metrics,
) *RecognitionService {
	return &RecognitionService{
		transcriber: transcriber,
		registry:    registry,
		transcript:  transcript,
		timeout:     timeout,
		logger:      logger,
		metrics:     m,
	}
}

// SetNotifier registers a listener for appended entries.
func (s *RecognitionService) SetNotifier(n EntryNotifier) {
	s.notifier = n
}

// Process runs one submission through the pipeline and returns the full
// formatted transcript on success.
func (s *RecognitionService) Process(ctx context.Context, audio []byte) ([]entities.FormattedEntry, error) {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := s.transcriber.Transcribe(cctx, audio)
	s.metrics.UpstreamCallDuration.WithLabelValues("transcribe").Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.UpstreamCallFailures.WithLabelValues("transcribe").Inc()
		s.logger.Error("Transcription failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}

	speakerName := entities.UnknownSpeaker
	if speaker := s.registry.Identify(ctx, audio); speaker != nil {
		speakerName = speaker.Name
	}

	entry := s.transcript.Append(text, speakerName)
	s.metrics.TranscriptEntries.Inc()

	s.logger.Info("Transcript entry appended",
		zap.String("speaker", speakerName),
		zap.Int("textLength", len(text)))

	if s.notifier != nil {
		s.notifier.EntryAppended(entry.Formatted())
	}

	return s.transcript.Formatted(), nil
}

// Transcript returns the current formatted transcript.
func (s *RecognitionService) Transcript() []entities.FormattedEntry {
	return s.transcript.Formatted()
}
