package models

import "time"

// Template is a parsed notification template: title, body, and the ordered
// list of placeholder names substituted into them. Templates are loaded once
// at boot and immutable for the process lifetime.
type Template struct {
	Title      string   `json:"title"`
	Message    string   `json:"message"`
	Parameters []string `json:"parameters"`
}

// Notification is the rendered message published to delivery sinks.
// Immutable once constructed; subscribers must not modify it.
type Notification struct {
	ID            string    `json:"id"`
	Domain        Domain    `json:"domain"`
	Category      Category  `json:"category"`
	Message       string    `json:"message"`
	AttachmentURL string    `json:"attachment_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
