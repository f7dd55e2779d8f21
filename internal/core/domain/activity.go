package domain

import "time"

// ActivityKind names something a user did that shows up on their dashboard.
type ActivityKind string

const (
	ActivitySignedIn              ActivityKind = "signed_in"
	ActivitySignedUp              ActivityKind = "signed_up"
	ActivityDocumentUploaded      ActivityKind = "document_uploaded"
	ActivityPropertyListed        ActivityKind = "property_listed"
	ActivityPropertyStatusChanged ActivityKind = "property_status_changed"
)

// Activity is one entry of a user's activity feed.
type Activity struct {
	UserID string       `json:"user_id" bson:"user_id"`
	Kind   ActivityKind `json:"kind" bson:"kind"`
	// Subject is the ID of the affected listing or document, if any.
	Subject string    `json:"subject,omitempty" bson:"subject,omitempty"`
	Detail  string    `json:"detail,omitempty" bson:"detail,omitempty"`
	At      time.Time `json:"at" bson:"at"`
}
