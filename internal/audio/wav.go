// Package audio inspects uploaded WAV clips. The service never decodes or
// resamples audio; probing is used for request logging and enrollment
// sanity checks only.
package audio

import (
	"bytes"
	"fmt"
	"time"

	"github.com/youpy/go-wav"
)

// Info summarizes the container-level properties of a WAV clip.
type Info struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	Duration      time.Duration
}

// Probe parses the WAV header of the clip. It fails on anything that is not
// a RIFF/WAVE container.
func Probe(data []byte) (*Info, error) {
	reader := wav.NewReader(bytes.NewReader(data))

	format, err := reader.Format()
	if err != nil {
		return nil, fmt.Errorf("not a valid WAV file: %w", err)
	}

	duration, err := reader.Duration()
	if err != nil {
		return nil, fmt.Errorf("failed to read WAV duration: %w", err)
	}

	return &Info{
		SampleRate:    int(format.SampleRate),
		Channels:      int(format.NumChannels),
		BitsPerSample: int(format.BitsPerSample),
		Duration:      duration,
	}, nil
}
