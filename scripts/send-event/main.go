// send-event posts a signed webhook event to a running bot, for local testing.
// Run from project root: go run ./scripts/send-event --action "/todos me"
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"todo-bot/internal/middleware"
	"todo-bot/internal/models"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
)

func main() {
	url := pflag.String("url", "http://localhost:8080/webhook", "webhook URL")
	secret := pflag.String("secret", os.Getenv("TODO_WEBHOOK_SECRET"), "webhook secret")
	user := pflag.String("user", "local-user", "acting user id")
	space := pflag.String("space", "local-space", "space id")
	action := pflag.String("action", "", "action id to select, e.g. View, List, \"/todos space\"")
	referral := pflag.String("referral", "", "referral message id for View and submit-action")
	challenge := pflag.String("challenge", "", "send a verification event with this challenge instead")
	pflag.Parse()

	ev := models.Event{Type: models.EventVerification, Challenge: *challenge}
	if *challenge == "" {
		annotation, err := json.Marshal(models.Annotation{
			Type:              models.AnnotationActionSelected,
			ActionID:          *action,
			ConversationID:    *space,
			ReferralMessageID: *referral,
		})
		if err != nil {
			fail(err)
		}
		ev = models.Event{
			Type:              models.EventAnnotationAdded,
			AnnotationID:      uuid.New().String(),
			AnnotationType:    models.AnnotationActionSelected,
			AnnotationPayload: string(annotation),
			SpaceID:           *space,
			UserID:            *user,
			Time:              time.Now().UnixMilli(),
		}
	}

	body, err := json.Marshal(ev)
	if err != nil {
		fail(err)
	}
	req, err := http.NewRequest(http.MethodPost, *url, bytes.NewReader(body))
	if err != nil {
		fail(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.SignatureHeader, middleware.Sign(*secret, body))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fail(err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	fmt.Printf("%s %s\n", resp.Status, out)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "send-event:", err)
	os.Exit(1)
}
