package domain

import "time"

// MaxDocumentSize bounds a single uploaded document.
const MaxDocumentSize = 10 << 20

// Document describes a file a user uploaded, e.g. a purchase contract or
// mortgage pre-approval.
type Document struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
