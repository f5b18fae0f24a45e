package usecase

import (
	"sync"
	"time"

	"github.com/prasetyowira/notulis/domain/entities"
)

// TranscriptLog is the ordered, append-only transcript of the running
// session. Appends from parallel requests are serialized by a mutex so
// insertion order stays consistent under concurrency.
type TranscriptLog struct {
	mu      sync.Mutex
	entries []entities.TranscriptEntry

	now func() time.Time
}

// NewTranscriptLog creates an empty transcript log.
func NewTranscriptLog() *TranscriptLog {
	return &TranscriptLog{
		entries: make([]entities.TranscriptEntry, 0),
		now:     time.Now,
	}
}

// Append records a new entry with the current wall-clock time and returns it.
func (l *TranscriptLog) Append(text, speakerName string) entities.TranscriptEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := entities.TranscriptEntry{
		Timestamp: l.now(),
		Text:      text,
		Speaker:   speakerName,
	}
	l.entries = append(l.entries, entry)
	return entry
}

// Formatted returns the human-readable projection of every entry, in the
// exact order they were appended.
func (l *TranscriptLog) Formatted() []entities.FormattedEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	formatted := make([]entities.FormattedEntry, 0, len(l.entries))
	for _, entry := range l.entries {
		formatted = append(formatted, entry.Formatted())
	}
	return formatted
}

// Len returns the number of entries in the log.
func (l *TranscriptLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
