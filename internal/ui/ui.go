// Package ui builds the interactive structures sent back to the chat space:
// prompts with buttons and lists of cards.
package ui

import (
	"encoding/json"
	"time"
)

type Style string

const (
	Primary   Style = "PRIMARY"
	Secondary Style = "SECONDARY"
)

// Content is something that can be sent as a targeted message.
type Content interface {
	content()
}

// Button is a dialog button; ID is the action id reported when it is selected.
type Button struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Style Style  `json:"style"`
}

// Generic is a prompt dialog with a title, a body and buttons.
type Generic struct {
	Title   string   `json:"title"`
	Text    string   `json:"text"`
	Buttons []Button `json:"buttons"`
}

func (Generic) content() {}

// CardButton is a button on a card. Its Payload is sent back verbatim as the
// action id, so a JSON payload becomes a JSON action id.
type CardButton struct {
	Text    string `json:"text"`
	Payload string `json:"payload"`
	Style   Style  `json:"style"`
}

// Card is a single list entry.
type Card struct {
	Title    string       `json:"title"`
	Subtitle string       `json:"subtitle"`
	Text     string       `json:"text"`
	Date     time.Time    `json:"date"`
	Buttons  []CardButton `json:"buttons"`
}

// Cards is a list of cards sent as one message.
type Cards []Card

func (Cards) content() {}

// NewGeneric builds a prompt dialog.
func NewGeneric(title, text string, buttons ...Button) Generic {
	return Generic{Title: title, Text: text, Buttons: buttons}
}

// NewButton builds a primary dialog button.
func NewButton(id, title string) Button {
	return Button{ID: id, Title: title, Style: Primary}
}

// NewCard builds a card.
func NewCard(title, subtitle, text string, date time.Time, buttons ...CardButton) Card {
	return Card{Title: title, Subtitle: subtitle, Text: text, Date: date, Buttons: buttons}
}

// NewCardButton encodes payload as JSON. A nil payload yields "{}", a button
// that carries no action.
func NewCardButton(text string, payload any, secondary bool) CardButton {
	encoded := []byte("{}")
	if payload != nil {
		if b, err := json.Marshal(payload); err == nil {
			encoded = b
		}
	}
	style := Primary
	if secondary {
		style = Secondary
	}
	return CardButton{Text: text, Payload: string(encoded), Style: style}
}
