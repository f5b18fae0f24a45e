package entities

import (
	"errors"
	"strings"
)

// MaxSpeakers is the enrollment ceiling imposed by the speech service's
// free tier. Enrollment beyond this count is rejected locally.
const MaxSpeakers = 50

// Speaker represents one enrolled voice identity. ProfileID is the opaque
// handle issued by the speech service and is the unique key for the speaker.
type Speaker struct {
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	ProfileID string `json:"profile_id"`
}

// NewSpeaker builds a Speaker from a display name and a profile handle.
// The display name is split on the first space into first and last name;
// a single-word name is stored with an empty last name.
func NewSpeaker(name, profileID string) (*Speaker, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("speaker name is required")
	}
	if profileID == "" {
		return nil, errors.New("profile id is required")
	}

	first, last := name, ""
	if idx := strings.Index(name, " "); idx >= 0 {
		first = name[:idx]
		last = strings.TrimSpace(name[idx+1:])
	}

	return &Speaker{
		Name:      name,
		FirstName: first,
		LastName:  last,
		ProfileID: profileID,
	}, nil
}
