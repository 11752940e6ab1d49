package entity

import (
	"time"

	"github.com/google/uuid"
)

// Feedback is the persisted screening result, keyed by application.
// Repeated runs for the same application overwrite it (upsert), so there
// is at most one row per applicant per posting and no feedback history.
type Feedback struct {
	ID            uuid.UUID
	ApplicationID uuid.UUID
	FeedbackText  string
	SectionsJSON  []byte
	TextSource    string // "EMBEDDED" | "OCR"
	PageCount     int
	Model         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
