package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"todo-bot/internal/models"
	"todo-bot/internal/ui"
	"todo-bot/pkg/logger"
)

const messageQuery = `query getMessage($id: ID!) {
  message(id: $id) {
    id
    created
    content
    annotations
    createdBy { id displayName }
  }
}`

const addFocusMutation = `mutation addMessageFocus($input: AddFocusInput!) {
  addMessageFocus(input: $input) { message { id } }
}`

const targetedMessageMutation = `mutation createTargetedMessage($input: CreateTargetedMessageInput!) {
  createTargetedMessage(input: $input) { successful }
}`

type messageData struct {
	Message *struct {
		ID          string      `json:"id"`
		Created     int64       `json:"created"`
		Content     string      `json:"content"`
		Annotations []string    `json:"annotations"`
		CreatedBy   models.User `json:"createdBy"`
	} `json:"message"`
}

// GetMessage fetches a message with its author and decoded annotations.
// Annotations that do not decode are skipped.
func (c *Client) GetMessage(ctx context.Context, messageID string) (models.Message, error) {
	logger.Debug(ctx, "Retrieving message", "message_id", messageID)
	var data messageData
	if err := c.graphql(ctx, messageQuery, map[string]any{"id": messageID}, &data); err != nil {
		return models.Message{}, fmt.Errorf("get message %s: %w", messageID, err)
	}
	if data.Message == nil {
		return models.Message{}, fmt.Errorf("get message %s: not found", messageID)
	}

	m := data.Message
	msg := models.Message{
		ID:          m.ID,
		Created:     time.UnixMilli(m.Created).UTC(),
		CreatedBy:   m.CreatedBy,
		Content:     m.Content,
		Annotations: make([]models.Annotation, 0, len(m.Annotations)),
	}
	for _, raw := range m.Annotations {
		var a models.Annotation
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			logger.Debug(ctx, "Skipping undecodable annotation", "message_id", m.ID, "error", err)
			continue
		}
		msg.Annotations = append(msg.Annotations, a)
	}
	return msg, nil
}

// AddMessageFocus decorates phrase in msg with a lens whose selection reports actionID.
// payload is stored JSON-encoded on the focus.
func (c *Client) AddMessageFocus(ctx context.Context, msg models.Message, phrase, lens, category, actionID string, payload any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode focus payload: %w", err)
	}
	// Focus offsets count characters, not bytes.
	start, end := 0, 0
	if i := strings.Index(msg.Content, phrase); i >= 0 {
		start = utf8.RuneCountInString(msg.Content[:i])
		end = start + utf8.RuneCountInString(phrase)
	}
	input := map[string]any{
		"messageId": msg.ID,
		"messageFocus": map[string]any{
			"phrase":     phrase,
			"lens":       lens,
			"category":   category,
			"actions":    []string{actionID},
			"confidence": 0.99,
			"payload":    string(encoded),
			"start":      start,
			"end":        end,
			"version":    1,
			"hidden":     false,
		},
	}
	if err := c.graphql(ctx, addFocusMutation, map[string]any{"input": input}, nil); err != nil {
		return fmt.Errorf("add %s focus to message %s: %w", lens, msg.ID, err)
	}
	return nil
}

// SendTargetedMessage shows content to a single user in reply to the action
// annotation target. Generic content becomes a dialog, cards become card attachments.
func (c *Client) SendTargetedMessage(ctx context.Context, userID string, target models.Annotation, content ui.Content) error {
	input := map[string]any{
		"conversationId": target.ConversationID,
		"targetUserId":   userID,
		"targetDialogId": target.TargetDialogID,
	}
	switch v := content.(type) {
	case ui.Generic:
		input["annotations"] = []any{genericAnnotation(v)}
	case ui.Cards:
		attachments := make([]any, 0, len(v))
		for _, card := range v {
			attachments = append(attachments, cardAttachment(card))
		}
		input["attachments"] = attachments
	default:
		return fmt.Errorf("send targeted message: unsupported content %T", content)
	}
	if err := c.graphql(ctx, targetedMessageMutation, map[string]any{"input": input}, nil); err != nil {
		return fmt.Errorf("send targeted message to %s: %w", userID, err)
	}
	return nil
}

func genericAnnotation(g ui.Generic) map[string]any {
	buttons := make([]any, 0, len(g.Buttons))
	for _, b := range g.Buttons {
		buttons = append(buttons, map[string]any{
			"postbackButton": map[string]any{"id": b.ID, "title": b.Title, "style": b.Style},
		})
	}
	return map[string]any{
		"genericAnnotation": map[string]any{
			"title":   g.Title,
			"text":    g.Text,
			"buttons": buttons,
		},
	}
}

func cardAttachment(card ui.Card) map[string]any {
	buttons := make([]any, 0, len(card.Buttons))
	for _, b := range card.Buttons {
		buttons = append(buttons, map[string]any{"text": b.Text, "payload": b.Payload, "style": b.Style})
	}
	return map[string]any{
		"type": "CARD",
		"cardInput": map[string]any{
			"type": "INFORMATION",
			"informationCardInput": map[string]any{
				"title":    card.Title,
				"subtitle": card.Subtitle,
				"text":     card.Text,
				"date":     card.Date.UnixMilli(),
				"buttons":  buttons,
			},
		},
	}
}
