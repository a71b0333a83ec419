// Package lifecycle turns annotated messages into todos, flips their
// completion, and renders todo lists as cards.
package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"todo-bot/internal/models"
	"todo-bot/internal/repository"
	"todo-bot/internal/ui"
	"todo-bot/pkg/logger"

	"github.com/google/uuid"
)

// Lens is the name of the message decoration that records a detected phrase.
const Lens = "Todo"

// Action ids understood by the bot.
const (
	ViewActionID   = "View"
	ListActionID   = "List"
	AcceptActionID = "submit-action"
	CompleteAction = "Complete"
)

const (
	completeLabel = "Complete"
	removeLabel   = "Remove"
	promptTitle   = "Would you like to do?"
	acceptLabel   = "Add to List"
)

var ErrLensMissing = errors.New("todo lens not found on message")

// Engine applies todo lifecycle operations against a store.
type Engine struct {
	store *repository.Store
	newID func() string
}

// New returns an engine backed by store.
func New(store *repository.Store) *Engine {
	return &Engine{
		store: store,
		newID: func() string { return uuid.New().String() },
	}
}

// DetectPayload is the lens payload recorded for a focus annotation.
func DetectPayload(focus models.Annotation) models.LensPayload {
	return models.LensPayload{Phrase: focus.Phrase}
}

// LensPayload recovers the payload the Todo lens stored on msg.
func LensPayload(msg models.Message) (models.LensPayload, error) {
	for _, a := range msg.Annotations {
		if a.Lens != Lens {
			continue
		}
		var p models.LensPayload
		if a.Payload == "" {
			return p, nil
		}
		if err := json.Unmarshal([]byte(a.Payload), &p); err != nil {
			return models.LensPayload{}, fmt.Errorf("decode %s lens payload on message %s: %w", Lens, msg.ID, err)
		}
		return p, nil
	}
	return models.LensPayload{}, fmt.Errorf("message %s: %w", msg.ID, ErrLensMissing)
}

// Offer builds the confirmation prompt for a message carrying the Todo lens.
// A missing lens yields a prompt with a blank phrase.
func (e *Engine) Offer(ctx context.Context, msg models.Message) ui.Generic {
	payload, err := LensPayload(msg)
	if err != nil {
		logger.Error(ctx, "Lens payload unavailable for offer", "error", err)
	}
	return ui.NewGeneric(promptTitle, payload.Phrase, ui.NewButton(AcceptActionID, acceptLabel))
}

// BuildTodo builds a new, uncompleted todo owned by the message author.
func BuildTodo(id string, msg models.Message, payload models.LensPayload, spaceID string) models.Todo {
	return models.Todo{
		ID:        id,
		Created:   msg.Created,
		CreatedBy: msg.CreatedBy,
		MessageID: msg.ID,
		Content:   msg.Content,
		Payload:   payload,
		Completed: false,
		SpaceID:   spaceID,
	}
}

// Accept creates a todo from the referral message in the given space.
func (e *Engine) Accept(ctx context.Context, msg models.Message, spaceID string) (models.Todo, error) {
	payload, err := LensPayload(msg)
	if err != nil {
		return models.Todo{}, err
	}
	todo := BuildTodo(e.newID(), msg, payload, spaceID)
	logger.Debug(ctx, "Adding todo", "todo_id", todo.ID, "message_id", msg.ID, "space_id", spaceID)
	if err := e.store.Create(todo); err != nil {
		return models.Todo{}, fmt.Errorf("create todo %s: %w", todo.ID, err)
	}
	return todo, nil
}

// Toggle flips completion of a todo owned by userID.
func (e *Engine) Toggle(ctx context.Context, todoID, userID string) (models.Todo, error) {
	todo, err := e.store.Update(todoID, userID, func(t *models.Todo) {
		t.Completed = !t.Completed
	})
	if err != nil {
		return models.Todo{}, fmt.Errorf("toggle todo %s for user %s: %w", todoID, userID, err)
	}
	logger.Debug(ctx, "Toggled todo", "todo_id", todoID, "user_id", userID, "completed", todo.Completed)
	return todo, nil
}

// UserCards renders the todos owned by userID.
func (e *Engine) UserCards(userID string) ui.Cards {
	return Render(e.store.List(userID), userID)
}

// SpaceCards renders the todos of a space as seen by viewerID.
func (e *Engine) SpaceCards(spaceID, viewerID string) ui.Cards {
	return Render(e.store.ListSpace(spaceID), viewerID)
}

// Render builds one card per todo, in the given order. Only the todo's creator
// gets a button that carries a complete action.
func Render(todos []models.Todo, viewerID string) ui.Cards {
	cards := make(ui.Cards, 0, len(todos))
	for _, t := range todos {
		label := completeLabel
		if t.Completed {
			label = removeLabel
		}
		var action any
		if viewerID != "" && viewerID == t.CreatedBy.ID {
			action = models.ActionPayload{Action: CompleteAction, TodoID: t.ID}
		}
		cards = append(cards, ui.NewCard(t.Payload.Phrase, t.CreatedBy.DisplayName, t.Content, t.Created,
			ui.NewCardButton(label, action, t.Completed)))
	}
	return cards
}
