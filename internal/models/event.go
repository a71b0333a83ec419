package models

import "time"

// Webhook event types sent by the platform.
const (
	EventVerification    = "verification"
	EventMessageCreated  = "message-created"
	EventAnnotationAdded = "message-annotation-added"
)

// Annotation types found on annotation events and on fetched messages.
const (
	AnnotationFocus          = "message-focus"
	AnnotationActionSelected = "actionSelected"
)

// Message is a chat message as returned by the platform's message query.
type Message struct {
	ID          string       `json:"id"`
	Created     time.Time    `json:"created"`
	CreatedBy   User         `json:"createdBy"`
	Content     string       `json:"content"`
	Annotations []Annotation `json:"annotations"`
}

// Annotation is the decoded form of an annotation payload. Focus annotations
// fill Lens/Phrase/Payload; action-selected annotations fill the action fields.
type Annotation struct {
	Type     string `json:"type"`
	Lens     string `json:"lens,omitempty"`
	Category string `json:"category,omitempty"`
	Phrase   string `json:"phrase,omitempty"`
	// Payload is a JSON document encoded as a string, as the platform stores it.
	Payload string `json:"payload,omitempty"`

	ActionID          string `json:"actionId,omitempty"`
	ConversationID    string `json:"conversationId,omitempty"`
	TargetDialogID    string `json:"targetDialogId,omitempty"`
	ReferralMessageID string `json:"referralMessageId,omitempty"`
}

// Event is an inbound webhook event. It is also the unit carried by the event queue.
type Event struct {
	Type              string      `json:"type"`
	Challenge         string      `json:"challenge,omitempty"`
	SpaceID           string      `json:"spaceId,omitempty"`
	MessageID         string      `json:"messageId,omitempty"`
	UserID            string      `json:"userId,omitempty"`
	UserName          string      `json:"userName,omitempty"`
	Content           string      `json:"content,omitempty"`
	AnnotationID      string      `json:"annotationId,omitempty"`
	AnnotationType    string      `json:"annotationType,omitempty"`
	AnnotationPayload string      `json:"annotationPayload,omitempty"`
	Time              int64       `json:"time,omitempty"`
	Annotation        *Annotation `json:"annotation,omitempty"`
}

// Key identifies a delivery for de-duplication and log correlation.
func (e Event) Key() string {
	if e.AnnotationID != "" {
		return e.Type + ":" + e.AnnotationID
	}
	return e.Type + ":" + e.MessageID
}

// ActionPayload is the JSON document carried as the action id of card buttons,
// e.g. {"action":"Complete","todoId":"..."}.
type ActionPayload struct {
	Action string `json:"action,omitempty"`
	TodoID string `json:"todoId,omitempty"`
}
