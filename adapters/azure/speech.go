// Package azure implements the speech service interfaces against the Azure
// Cognitive Services short-audio STT endpoint and the Speaker Recognition
// v2.0 text-independent identification API.
package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// noMatchProfileID is returned by the identification endpoint when no
// enrolled profile matches the audio.
const noMatchProfileID = "00000000-0000-0000-0000-000000000000"

// Client talks to the Azure speech and speaker recognition REST APIs. It
// implements repositories.Transcriber and repositories.SpeakerDirectory.
type Client struct {
	key      string
	language string

	sttBaseURL     string
	profileBaseURL string

	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds a client for the given subscription key and region.
// The per-request deadline comes from the caller's context; timeout is the
// transport-level ceiling in case a caller passes an unbounded context.
func NewClient(key, region, language string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		key:            key,
		language:       language,
		sttBaseURL:     fmt.Sprintf("https://%s.stt.speech.microsoft.com", region),
		profileBaseURL: fmt.Sprintf("https://%s.api.cognitive.microsoft.com", region),
		httpClient:     &http.Client{Timeout: timeout},
		logger:         logger,
	}
}

type recognitionResponse struct {
	RecognitionStatus string `json:"RecognitionStatus"`
	DisplayText       string `json:"DisplayText"`
}

// Transcribe sends the WAV clip to the short-audio recognition endpoint.
// A NoMatch result is reported as an error: the caller treats a clip with
// no recognizable speech as a failed submission.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	endpoint := fmt.Sprintf(
		"%s/speech/recognition/conversation/cognitiveservices/v1?language=%s",
		c.sttBaseURL, url.QueryEscape(c.language),
	)

	body, err := c.post(ctx, endpoint, "audio/wav", audio)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}

	var result recognitionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode recognition response: %w", err)
	}

	if result.RecognitionStatus != "Success" {
		return "", fmt.Errorf("no speech recognized, status %s", result.RecognitionStatus)
	}

	return result.DisplayText, nil
}

type profileResponse struct {
	ProfileID string `json:"profileId"`
}

// CreateProfile requests a new text-independent identification profile.
func (c *Client) CreateProfile(ctx context.Context) (string, error) {
	endpoint := c.profileBaseURL + "/speaker/identification/v2.0/text-independent/profiles"

	payload, _ := json.Marshal(map[string]string{"locale": c.language})
	body, err := c.post(ctx, endpoint, "application/json", payload)
	if err != nil {
		return "", fmt.Errorf("profile creation request failed: %w", err)
	}

	var result profileResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode profile response: %w", err)
	}
	if result.ProfileID == "" {
		return "", fmt.Errorf("profile creation returned no profile id")
	}

	c.logger.Info("Voice profile created", zap.String("profileID", result.ProfileID))
	return result.ProfileID, nil
}

type enrollmentResponse struct {
	EnrollmentStatus string `json:"enrollmentStatus"`
}

// EnrollProfile submits enrollment audio for the profile. The profile must
// reach the Enrolled state from this one clip; a clip too short to complete
// enrollment is an error.
func (c *Client) EnrollProfile(ctx context.Context, profileID string, audio []byte) error {
	endpoint := fmt.Sprintf(
		"%s/speaker/identification/v2.0/text-independent/profiles/%s/enrollments",
		c.profileBaseURL, url.PathEscape(profileID),
	)

	body, err := c.post(ctx, endpoint, "audio/wav", audio)
	if err != nil {
		return fmt.Errorf("enrollment request failed: %w", err)
	}

	var result enrollmentResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to decode enrollment response: %w", err)
	}
	if result.EnrollmentStatus != "Enrolled" {
		return fmt.Errorf("profile not enrolled, status %s", result.EnrollmentStatus)
	}

	return nil
}

type identifyResponse struct {
	IdentifiedProfile struct {
		ProfileID string  `json:"profileId"`
		Score     float64 `json:"score"`
	} `json:"identifiedProfile"`
}

// Identify matches the audio against the given profile handles. It returns
// an empty string when the service reports no confident match.
func (c *Client) Identify(ctx context.Context, audio []byte, profileIDs []string) (string, error) {
	endpoint := fmt.Sprintf(
		"%s/speaker/identification/v2.0/text-independent/profiles/identifySingleSpeaker?profileIds=%s",
		c.profileBaseURL, url.QueryEscape(strings.Join(profileIDs, ",")),
	)

	body, err := c.post(ctx, endpoint, "audio/wav", audio)
	if err != nil {
		return "", fmt.Errorf("identification request failed: %w", err)
	}

	var result identifyResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode identification response: %w", err)
	}

	matched := result.IdentifiedProfile.ProfileID
	if matched == "" || matched == noMatchProfileID {
		return "", nil
	}

	c.logger.Info("Speaker identified",
		zap.String("profileID", matched),
		zap.Float64("score", result.IdentifiedProfile.Score))
	return matched, nil
}

func (c *Client) post(ctx context.Context, endpoint, contentType string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
