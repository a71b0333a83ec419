package dispatcher

import (
	"encoding/json"
	"errors"
	"strings"

	"todo-bot/internal/lifecycle"
	"todo-bot/internal/models"
)

// SlashCommand is the action id of the bot's slash command.
const SlashCommand = "/todos"

// Focus lenses the platform's annotator attaches to actionable phrases.
const (
	LensActionRequest = "ActionRequest"
	LensCommitment    = "Commitment"
)

var ErrMalformedAction = errors.New("malformed action id")

// Kind tags an Action.
type Kind int

const (
	Ignore Kind = iota
	Detect
	View
	Accept
	List
	Complete
	SlashMe
	SlashSpace
)

func (k Kind) String() string {
	switch k {
	case Detect:
		return "detect"
	case View:
		return "view"
	case Accept:
		return "accept"
	case List:
		return "list"
	case Complete:
		return "complete"
	case SlashMe:
		return "slash-me"
	case SlashSpace:
		return "slash-space"
	default:
		return "ignore"
	}
}

// Action is an inbound event decoded into what the bot should do.
type Action struct {
	Kind Kind
	// TodoID is set for Complete.
	TodoID string
	// Annotation is the event's decoded annotation, when it has one.
	Annotation models.Annotation
}

// Decode classifies an event. Events the bot does not handle decode to Ignore;
// an action id that looks like JSON but does not parse is ErrMalformedAction.
func Decode(ev models.Event) (Action, error) {
	if ev.Annotation == nil {
		return Action{Kind: Ignore}, nil
	}
	a := *ev.Annotation
	act := Action{Kind: Ignore, Annotation: a}

	switch a.Type {
	case models.AnnotationFocus:
		if a.Lens == LensActionRequest || a.Lens == LensCommitment {
			act.Kind = Detect
		}
	case models.AnnotationActionSelected:
		return decodeActionID(act, strings.TrimSpace(a.ActionID))
	}
	return act, nil
}

func decodeActionID(act Action, id string) (Action, error) {
	switch id {
	case lifecycle.ViewActionID:
		act.Kind = View
		return act, nil
	case lifecycle.AcceptActionID:
		act.Kind = Accept
		return act, nil
	case lifecycle.ListActionID:
		act.Kind = List
		return act, nil
	}

	if fields := strings.Fields(id); len(fields) > 0 && fields[0] == SlashCommand {
		option := "space"
		if len(fields) > 1 {
			option = strings.ToLower(fields[1])
		}
		switch option {
		case "space":
			act.Kind = SlashSpace
		case "me":
			act.Kind = SlashMe
		}
		return act, nil
	}

	if strings.HasPrefix(id, "{") {
		var payload models.ActionPayload
		if err := json.Unmarshal([]byte(id), &payload); err != nil {
			return act, errors.Join(ErrMalformedAction, err)
		}
		if payload.Action == lifecycle.CompleteAction && payload.TodoID != "" {
			act.Kind = Complete
			act.TodoID = payload.TodoID
		}
	}
	return act, nil
}
