package entities

import "time"

// UnknownSpeaker is the label recorded when identification yields no match.
const UnknownSpeaker = "Unknown"

// NotRecognizedLabel is rendered in the formatted transcript for entries
// stored without any speaker at all.
const NotRecognizedLabel = "Not recognized"

// TranscriptEntry is one immutable line of the running transcript.
type TranscriptEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
	Speaker   string    `json:"speaker,omitempty"`
}

// FormattedEntry is the externally visible projection of a TranscriptEntry.
type FormattedEntry struct {
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
	Speaker   string `json:"speaker"`
}

// Formatted renders the entry with a local-time HH:MM:SS timestamp. Entries
// with no stored speaker render with the NotRecognizedLabel literal.
func (e TranscriptEntry) Formatted() FormattedEntry {
	speaker := e.Speaker
	if speaker == "" {
		speaker = NotRecognizedLabel
	}
	return FormattedEntry{
		Timestamp: e.Timestamp.Local().Format("15:04:05"),
		Text:      e.Text,
		Speaker:   speaker,
	}
}
