package model

type NotificationKind string

const (
	NotificationEmail      NotificationKind = "email"
	NotificationAdminAlert NotificationKind = "admin_alert"
)

// NotificationJob is the payload carried on the notification queue.
type NotificationJob struct {
	Kind    NotificationKind `json:"kind"`
	To      string           `json:"to,omitempty"`
	Subject string           `json:"subject,omitempty"`
	Body    string           `json:"body"`
	// Attempts counts failed deliveries so far.
	Attempts int `json:"attempts,omitempty"`
}
