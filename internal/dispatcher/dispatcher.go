// Package dispatcher routes inbound platform events to the todo lifecycle and
// sends the results back through the messaging platform.
package dispatcher

import (
	"context"
	"fmt"

	"todo-bot/internal/lifecycle"
	"todo-bot/internal/models"
	"todo-bot/internal/ui"
	"todo-bot/pkg/logger"
)

// Messenger is the chat platform as seen by the dispatcher.
type Messenger interface {
	GetMessage(ctx context.Context, messageID string) (models.Message, error)
	SendTargetedMessage(ctx context.Context, userID string, target models.Annotation, content ui.Content) error
	AddMessageFocus(ctx context.Context, msg models.Message, phrase, lens, category, actionID string, payload any) error
}

// Dispatcher handles one event at a time. It never returns errors: every
// failure is logged and ends the handling of that event.
type Dispatcher struct {
	engine    *lifecycle.Engine
	messenger Messenger
}

// New returns a dispatcher.
func New(engine *lifecycle.Engine, messenger Messenger) *Dispatcher {
	return &Dispatcher{engine: engine, messenger: messenger}
}

// Handle decodes ev and runs the matching lifecycle operation.
func (d *Dispatcher) Handle(ctx context.Context, ev models.Event) {
	ctx = logger.WithEventID(ctx, ev.Key())
	act, err := Decode(ev)
	if err != nil {
		logger.Warn(ctx, "Ignoring action", "error", err, "action_id", act.Annotation.ActionID)
		return
	}
	if act.Kind == Ignore {
		logger.Debug(ctx, "No handler for event", "type", ev.Type, "annotation_type", ev.AnnotationType)
		return
	}
	logger.Debug(ctx, "Dispatching", "action", act.Kind.String(), "user_id", ev.UserID,
		"referral_message_id", act.Annotation.ReferralMessageID)

	if err := d.run(ctx, ev, act); err != nil {
		logger.Error(ctx, "Event handling failed", "action", act.Kind.String(), "error", err)
	}
}

func (d *Dispatcher) run(ctx context.Context, ev models.Event, act Action) error {
	switch act.Kind {
	case Detect:
		return d.detect(ctx, ev, act.Annotation)
	case View:
		return d.offer(ctx, ev, act.Annotation)
	case Accept:
		return d.accept(ctx, ev, act.Annotation)
	case List, SlashMe:
		return d.send(ctx, ev, act.Annotation, d.engine.UserCards(ev.UserID))
	case SlashSpace:
		return d.send(ctx, ev, act.Annotation, d.engine.SpaceCards(spaceOf(ev, act.Annotation), ev.UserID))
	case Complete:
		if _, err := d.engine.Toggle(ctx, act.TodoID, ev.UserID); err != nil {
			return err
		}
		return d.send(ctx, ev, act.Annotation, d.engine.UserCards(ev.UserID))
	}
	return nil
}

func (d *Dispatcher) detect(ctx context.Context, ev models.Event, focus models.Annotation) error {
	msg, err := d.messenger.GetMessage(ctx, ev.MessageID)
	if err != nil {
		return fmt.Errorf("fetch message %s: %w", ev.MessageID, err)
	}
	logger.Debug(ctx, "Adding lens", "lens", lifecycle.Lens, "message_id", msg.ID, "phrase", focus.Phrase)
	return d.messenger.AddMessageFocus(ctx, msg, focus.Phrase, lifecycle.Lens, "",
		lifecycle.ViewActionID, lifecycle.DetectPayload(focus))
}

func (d *Dispatcher) offer(ctx context.Context, ev models.Event, a models.Annotation) error {
	msg, err := d.messenger.GetMessage(ctx, a.ReferralMessageID)
	if err != nil {
		return fmt.Errorf("fetch referral message %s: %w", a.ReferralMessageID, err)
	}
	return d.send(ctx, ev, a, d.engine.Offer(ctx, msg))
}

func (d *Dispatcher) accept(ctx context.Context, ev models.Event, a models.Annotation) error {
	msg, err := d.messenger.GetMessage(ctx, a.ReferralMessageID)
	if err != nil {
		return fmt.Errorf("fetch referral message %s: %w", a.ReferralMessageID, err)
	}
	todo, err := d.engine.Accept(ctx, msg, spaceOf(ev, a))
	if err != nil {
		return err
	}
	logger.Info(ctx, "Todo accepted", "todo_id", todo.ID, "user_id", ev.UserID, "space_id", todo.SpaceID)
	return d.send(ctx, ev, a, d.engine.UserCards(ev.UserID))
}

func (d *Dispatcher) send(ctx context.Context, ev models.Event, a models.Annotation, content ui.Content) error {
	if err := d.messenger.SendTargetedMessage(ctx, ev.UserID, a, content); err != nil {
		return fmt.Errorf("send to user %s: %w", ev.UserID, err)
	}
	return nil
}

// spaceOf is the conversation an action happened in.
func spaceOf(ev models.Event, a models.Annotation) string {
	if a.ConversationID != "" {
		return a.ConversationID
	}
	return ev.SpaceID
}
