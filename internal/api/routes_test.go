package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/prasetyowira/notulis/domain/entities"
	"github.com/prasetyowira/notulis/internal/metrics"
	"github.com/prasetyowira/notulis/internal/ratelimit"
	"github.com/prasetyowira/notulis/usecase"
)

type stubTranscriber struct {
	text string
	err  error
}

func (t *stubTranscriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if t.err != nil {
		return "", t.err
	}
	return t.text, nil
}

type stubDirectory struct {
	createCalls    int
	createErr      error
	enrollErr      error
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
	return d.enrollErr
}

func (d *stubDirectory) Identify(ctx context.Context, audio []byte, profileIDs []string) (string, error) {
	return d.identifyResult, nil
}

func newTestServer(transcriber *stubTranscriber, directory *stubDirectory, limiter *ratelimit.Limiter) *echo.Echo {
	logger := zap.NewNop()
	m := metrics.New(prometheus.NewRegistry())

	registry := usecase.NewSpeakerRegistry(directory, time.Second, logger, m)
	log := usecase.NewTranscriptLog()
	service := usecase.NewRecognitionService(transcriber, registry, log, time.Second, logger, m)

	e := echo.New()
	handler := NewHandler(service, registry, nil, limiter, m, logger)
	handler.InitRoutes(e)
	return e
}

func defaultTestServer(transcriber *stubTranscriber) *echo.Echo {
	return newTestServer(transcriber, &stubDirectory{}, ratelimit.New(100, time.Minute))
}

// multipartBody builds a multipart form with an audio file part and any
// extra string fields.
func multipartBody(t *testing.T, field, filename string, data []byte, extra map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if field != "" {
		part, err := writer.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("Failed to write form file: %v", err)
		}
	}
	for key, value := range extra {
		writer.WriteField(key, value)
	}
	writer.Close()

	return body, writer.FormDataContentType()
}

func postAudio(t *testing.T, e *echo.Echo, path, field, filename string, data []byte, extra map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := multipartBody(t, field, filename, data, extra)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode error response %q: %v", rec.Body.String(), err)
	}
	return resp.Error
}

func TestStartAndStopRecording(t *testing.T) {
	e := defaultTestServer(&stubTranscriber{text: "hi"})

	for path, message := range map[string]string{
		"/api/start-recording": "Recording started",
		"/api/stop-recording":  "Recording stopped",
	} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}

		var resp StatusResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s: failed to decode response: %v", path, err)
		}
		if resp.Status != "success" || resp.Message != message {
			t.Errorf("%s: expected success/%q, got %q/%q", path, message, resp.Status, resp.Message)
		}
	}
}

func TestProcessAudioSuccess(t *testing.T) {
	e := defaultTestServer(&stubTranscriber{text: "hello world"})

	rec := postAudio(t, e, "/api/process-audio", "audio", "clip1.wav", []byte("RIFFdata"), nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp TranscriptResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Status != "success" {
		t.Errorf("Expected status success, got %q", resp.Status)
	}
	if len(resp.Transcript) != 1 {
		t.Fatalf("Expected exactly 1 transcript entry, got %d", len(resp.Transcript))
	}
	if resp.Transcript[0].Text != "hello world" {
		t.Errorf("Expected text 'hello world', got %q", resp.Transcript[0].Text)
	}
	if resp.Transcript[0].Speaker != entities.UnknownSpeaker {
		t.Errorf("Expected speaker %q, got %q", entities.UnknownSpeaker, resp.Transcript[0].Speaker)
	}
}

func TestProcessAudioMissingFile(t *testing.T) {
	e := defaultTestServer(&stubTranscriber{text: "hi"})

	rec := postAudio(t, e, "/api/process-audio", "", "", nil, map[string]string{"other": "field"})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "No audio file found" {
		t.Errorf("Expected 'No audio file found', got %q", msg)
	}
}

func TestProcessAudioRejectsNonWav(t *testing.T) {
	e := defaultTestServer(&stubTranscriber{text: "hi"})

	rec := postAudio(t, e, "/api/process-audio", "audio", "clip.mp3", []byte("data"), nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "Invalid file format. Only WAV files are accepted." {
		t.Errorf("Expected WAV format error, got %q", msg)
	}
}

func TestProcessAudioAcceptsUppercaseExtension(t *testing.T) {
	e := defaultTestServer(&stubTranscriber{text: "hi"})

	rec := postAudio(t, e, "/api/process-audio", "audio", "CLIP.WAV", []byte("data"), nil)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected uppercase .WAV to be accepted, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestProcessAudioEmptyPayload(t *testing.T) {
	e := defaultTestServer(&stubTranscriber{text: "hi"})

	rec := postAudio(t, e, "/api/process-audio", "audio", "clip.wav", []byte{}, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "No audio data received" {
		t.Errorf("Expected 'No audio data received', got %q", msg)
	}
}

func TestProcessAudioTranscriptionFailure(t *testing.T) {
	transcriber := &stubTranscriber{err: errors.New("no speech recognized")}
	e := defaultTestServer(transcriber)

	rec := postAudio(t, e, "/api/process-audio", "audio", "clip.wav", []byte("data"), nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "Failed to transcribe audio" {
		t.Errorf("Expected 'Failed to transcribe audio', got %q", msg)
	}

	// The failed submission must leave the transcript empty.
	req := httptest.NewRequest(http.MethodGet, "/api/transcript", nil)
	getRec := httptest.NewRecorder()
	e.ServeHTTP(getRec, req)

	var resp TranscriptResponse
	if err := json.Unmarshal(getRec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode transcript: %v", err)
	}
	if len(resp.Transcript) != 0 {
		t.Errorf("Expected empty transcript after failure, got %d entries", len(resp.Transcript))
	}
}

func TestProcessAudioRateLimited(t *testing.T) {
	e := newTestServer(&stubTranscriber{text: "hi"}, &stubDirectory{}, ratelimit.New(1, 60*time.Second))

	first := postAudio(t, e, "/api/process-audio", "audio", "clip.wav", []byte("data"), nil)
	if first.Code != http.StatusOK {
		t.Fatalf("Expected first call to succeed, got %d", first.Code)
	}

	second := postAudio(t, e, "/api/process-audio", "audio", "clip.wav", []byte("data"), nil)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429 on second call, got %d", second.Code)
	}
	if msg := decodeError(t, second); msg != "Rate limit exceeded. Please wait before sending more audio." {
		t.Errorf("Expected rate limit message, got %q", msg)
	}
}

func TestEnrollSpeaker(t *testing.T) {
	e := defaultTestServer(&stubTranscriber{text: "hi"})

	rec := postAudio(t, e, "/api/enroll-speaker", "audio", "voice.wav", []byte("data"),
		map[string]string{"name": "Ada Lovelace"})

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp EnrollResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Speaker == nil || resp.Speaker.Name != "Ada Lovelace" {
		t.Errorf("Expected enrolled speaker Ada Lovelace, got %+v", resp.Speaker)
	}
}

func TestEnrollSpeakerRequiresName(t *testing.T) {
	e := defaultTestServer(&stubTranscriber{text: "hi"})

	rec := postAudio(t, e, "/api/enroll-speaker", "audio", "voice.wav", []byte("data"), nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "Speaker name is required" {
		t.Errorf("Expected name error, got %q", msg)
	}
}

func TestEnrollSpeakerUpstreamFailure(t *testing.T) {
	directory := &stubDirectory{enrollErr: errors.New("audio too short")}
	e := newTestServer(&stubTranscriber{text: "hi"}, directory, ratelimit.New(100, time.Minute))

	rec := postAudio(t, e, "/api/enroll-speaker", "audio", "voice.wav", []byte("data"),
		map[string]string{"name": "Ada Lovelace"})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "Failed to enroll speaker" {
		t.Errorf("Expected enrollment error, got %q", msg)
	}
}

func TestEnrollSpeakerLimitReached(t *testing.T) {
	e := defaultTestServer(&stubTranscriber{text: "hi"})

	for i := 0; i < entities.MaxSpeakers; i++ {
		rec := postAudio(t, e, "/api/enroll-speaker", "audio", "voice.wav", []byte("data"),
			map[string]string{"name": fmt.Sprintf("Speaker Number%d", i)})
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected enrollment %d to succeed, got %d", i+1, rec.Code)
		}
	}

	rec := postAudio(t, e, "/api/enroll-speaker", "audio", "voice.wav", []byte("data"),
		map[string]string{"name": "One Toomany"})

	if rec.Code != http.StatusConflict {
		t.Fatalf("Expected 409, got %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "Speaker limit reached" {
		t.Errorf("Expected limit error, got %q", msg)
	}
}

func TestHealth(t *testing.T) {
	e := defaultTestServer(&stubTranscriber{text: "hi"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
}
