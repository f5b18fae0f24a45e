package usecase

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/prasetyowira/notulis/internal/metrics"
)

// stubDirectory is a scriptable SpeakerDirectory recording call counts.
type stubDirectory struct {
	createCalls   int
	enrollCalls   int
	identifyCalls int

	createErr   error
	enrollErr   error
	identifyErr error

	identifyResult string
}

func (d *stubDirectory) CreateProfile(ctx context.Context) (string, error) {
	d.createCalls++
	if d.createErr != nil {
		return "", d.createErr
	}
	return fmt.Sprintf("profile-%d", d.createCalls), nil
}

func (d *stubDirectory) EnrollProfile(ctx context.Context, profileID string, audio []byte) error {
	d.enrollCalls++
	return d.enrollErr
}

func (d *stubDirectory) Identify(ctx context.Context, audio []byte, profileIDs []string) (string, error) {
	d.identifyCalls++
	if d.identifyErr != nil {
		return "", d.identifyErr
	}
	return d.identifyResult, nil
}

// stubTranscriber returns a fixed transcription or error.
type stubTranscriber struct {
	text  string
	err   error
	calls int
}

func (t *stubTranscriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	t.calls++
	if t.err != nil {
		return "", t.err
	}
	return t.text, nil
}

func newTestMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}
