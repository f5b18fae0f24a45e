package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	_ "embed"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/prasetyowira/notulis/internal/audio"
	"github.com/prasetyowira/notulis/internal/metrics"
	"github.com/prasetyowira/notulis/internal/ratelimit"
	"github.com/prasetyowira/notulis/internal/websocket"
	"github.com/prasetyowira/notulis/usecase"
)

//go:embed index.html
var indexHTML string

// Handler holds the dependencies of the HTTP boundary.
type Handler struct {
	service  *usecase.RecognitionService
	registry *usecase.SpeakerRegistry
	hub      *websocket.Hub
	limiter  *ratelimit.Limiter
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewHandler wires the boundary dependencies.
func NewHandler(
	service *usecase.RecognitionService,
	registry *usecase.SpeakerRegistry,
	hub *websocket.Hub,
	limiter *ratelimit.Limiter,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		service:  service,
		registry: registry,
		hub:      hub,
		limiter:  limiter,
		metrics:  m,
		logger:   logger,
	}
}

// InitRoutes registers all API routes.
func (h *Handler) InitRoutes(e *echo.Echo) {
	e.GET("/", h.index)
	e.GET("/health", h.health)

	e.POST("/api/start-recording", h.startRecording)
	e.POST("/api/stop-recording", h.stopRecording)
	e.POST("/api/process-audio", h.processAudio)
	e.POST("/api/enroll-speaker", h.enrollSpeaker)
	e.GET("/api/transcript", h.transcript)
	e.GET("/api/speakers", h.speakers)

	e.GET("/ws/transcript", h.transcriptFeed)
}

func (h *Handler) index(c echo.Context) error {
	return c.HTML(http.StatusOK, indexHTML)
}

func (h *Handler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "notulis",
	})
}

func (h *Handler) startRecording(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{
		Status:  "success",
		Message: "Recording started",
	})
}

func (h *Handler) stopRecording(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{
		Status:  "success",
		Message: "Recording stopped",
	})
}

// processAudio is the main submission path: rate limit, validate the upload,
// then run the clip through the recognition pipeline.
func (h *Handler) processAudio(c echo.Context) error {
	if !h.limiter.Admit() {
		h.metrics.RateLimitRejections.Inc()
		h.metrics.AudioRequests.WithLabelValues("rate_limited").Inc()
		return c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Error: "Rate limit exceeded. Please wait before sending more audio.",
		})
	}

	requestID := uuid.New().String()

	data, errResp := h.readAudioUpload(c)
	if errResp != nil {
		h.metrics.AudioRequests.WithLabelValues("validation_error").Inc()
		return c.JSON(http.StatusBadRequest, errResp)
	}

	if info, err := audio.Probe(data); err == nil {
		h.logger.Info("Received audio clip",
			zap.String("requestID", requestID),
			zap.Int("bytes", len(data)),
			zap.Int("sampleRate", info.SampleRate),
			zap.Duration("duration", info.Duration))
	} else {
		h.logger.Warn("Received clip with unreadable WAV header",
			zap.String("requestID", requestID),
			zap.Int("bytes", len(data)),
			zap.Error(err))
	}

	transcript, err := h.service.Process(c.Request().Context(), data)
	if errors.Is(err, usecase.ErrTranscriptionFailed) {
		h.metrics.AudioRequests.WithLabelValues("transcription_failed").Inc()
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to transcribe audio"})
	}
	if err != nil {
		h.metrics.AudioRequests.WithLabelValues("internal_error").Inc()
		h.logger.Error("Failed to process audio",
			zap.String("requestID", requestID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}

	h.metrics.AudioRequests.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, TranscriptResponse{
		Status:     "success",
		Transcript: transcript,
	})
}

// enrollSpeaker registers a new voice profile from an enrollment clip.
func (h *Handler) enrollSpeaker(c echo.Context) error {
	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Speaker name is required"})
	}

	data, errResp := h.readAudioUpload(c)
	if errResp != nil {
		return c.JSON(http.StatusBadRequest, errResp)
	}

	speaker, err := h.registry.Enroll(c.Request().Context(), data, name)
	if errors.Is(err, usecase.ErrRegistryFull) {
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "Speaker limit reached"})
	}
	if err != nil {
		h.logger.Error("Speaker enrollment failed", zap.String("name", name), zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to enroll speaker"})
	}

	return c.JSON(http.StatusOK, EnrollResponse{
		Status:  "success",
		Speaker: speaker,
	})
}

func (h *Handler) transcript(c echo.Context) error {
	return c.JSON(http.StatusOK, TranscriptResponse{
		Status:     "success",
		Transcript: h.service.Transcript(),
	})
}

func (h *Handler) speakers(c echo.Context) error {
	return c.JSON(http.StatusOK, SpeakersResponse{
		Speakers: h.registry.Speakers(),
	})
}

func (h *Handler) transcriptFeed(c echo.Context) error {
	return websocket.Serve(h.hub, c)
}

// readAudioUpload validates the multipart upload in order: field present,
// .wav filename, non-empty payload. It returns the raw bytes or the error
// payload to send back with a 400.
func (h *Handler) readAudioUpload(c echo.Context) ([]byte, *ErrorResponse) {
	file, err := c.FormFile("audio")
	if err != nil {
		h.logger.Error("No audio file found in request", zap.Error(err))
		return nil, &ErrorResponse{Error: "No audio file found"}
	}

	if !strings.HasSuffix(strings.ToLower(file.Filename), ".wav") {
		h.logger.Error("Rejected upload with non-WAV filename",
			zap.String("filename", file.Filename))
		return nil, &ErrorResponse{Error: "Invalid file format. Only WAV files are accepted."}
	}

	src, err := file.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded file", zap.Error(err))
		return nil, &ErrorResponse{Error: "No audio data received"}
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		h.logger.Error("Failed to read uploaded file", zap.Error(err))
		return nil, &ErrorResponse{Error: "No audio data received"}
	}

	if len(data) == 0 {
		h.logger.Error("Empty audio payload received")
		return nil, &ErrorResponse{Error: "No audio data received"}
	}

	return data, nil
}
