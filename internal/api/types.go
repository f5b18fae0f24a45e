package api

import "github.com/prasetyowira/notulis/domain/entities"

// StatusResponse is the generic acknowledgement payload.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorResponse carries a user-facing error message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TranscriptResponse returns the full formatted transcript.
type TranscriptResponse struct {
	Status     string                    `json:"status"`
	Transcript []entities.FormattedEntry `json:"transcript"`
}

// EnrollResponse confirms a successful speaker enrollment.
type EnrollResponse struct {
	Status  string            `json:"status"`
	Speaker *entities.Speaker `json:"speaker"`
}

// SpeakersResponse lists the enrolled speakers.
type SpeakersResponse struct {
	Speakers []*entities.Speaker `json:"speakers"`
}
