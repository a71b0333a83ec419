package models

import "time"

// User identifies a chat participant.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// LensPayload is the data recorded on a message by the Todo lens.
type LensPayload struct {
	Phrase string `json:"phrase"`
}

// Todo represents a todo item created from an actionable message.
type Todo struct {
	ID        string      `json:"id"`
	Created   time.Time   `json:"created"`
	CreatedBy User        `json:"createdBy"`
	MessageID string      `json:"messageId"`
	Content   string      `json:"content"`
	Payload   LensPayload `json:"payload"`
	Completed bool        `json:"completed"`
	SpaceID   string      `json:"spaceId"`
}
