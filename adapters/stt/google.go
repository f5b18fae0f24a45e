// Package stt provides an alternate transcriber backed by Google Cloud
// Speech-to-Text, for deployments where only transcription is needed or the
// Azure STT quota is exhausted. Speaker identification is not available
// through this adapter.
package stt

import (
	"context"
	"fmt"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
)

// GoogleSpeechToText implements repositories.Transcriber using the Google
// Cloud Speech synchronous recognition API. Credentials come from the
// standard Google application-default mechanism.
type GoogleSpeechToText struct {
	SampleRate int
	Language   string
}

// Transcribe runs one-shot recognition over a complete WAV clip and returns
// the best alternative of the first result.
func (g *GoogleSpeechToText) Transcribe(ctx context.Context, audio []byte) (string, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create speech client: %w", err)
	}
	defer client.Close()

	sampleRate := g.SampleRate
	if sampleRate == 0 {
		sampleRate = 16000
	}
	language := g.Language
	if language == "" {
		language = "en-US"
	}

	resp, err := client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz: int32(sampleRate),
			LanguageCode:    language,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", fmt.Errorf("recognition request failed: %w", err)
	}

	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 && result.Alternatives[0].Transcript != "" {
			return result.Alternatives[0].Transcript, nil
		}
	}

	return "", fmt.Errorf("no speech detected in audio")
}
