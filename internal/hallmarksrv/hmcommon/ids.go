package hmcommon

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const eventIdAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewEventId returns a short unique id for audit trail entries.
func NewEventId() string {
	id, err := gonanoid.Generate(eventIdAlphabet, 16)
	if err != nil {
		return ""
	}
	return "ev_" + id
}
