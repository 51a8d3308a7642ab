package notification

import (
	"fmt"
	"strings"

	"github.com/Freeeeeet/tour_booking/internal/model"
)

type template struct {
	Subject string
	Body    string
}

var templates = map[model.NotificationKind]template{
	model.NotificationBookingCreated: {
		Subject: "Booking request received",
		Body: "Hello {{name}}, we received your {{kind}} request for {{date}} {{start_time}}-{{end_time}} ({{timezone}}). " +
			"Reference: {{reference}}. We will confirm it shortly.",
	},
	model.NotificationBookingConfirmed: {
		Subject: "Booking confirmed",
		Body:    "Hello {{name}}, your {{kind}} on {{date}} at {{start_time}} ({{timezone}}) is confirmed. Reference: {{reference}}.",
	},
	model.NotificationBookingCancelled: {
		Subject: "Booking cancelled",
		Body:    "Hello {{name}}, your {{kind}} on {{date}} at {{start_time}} has been cancelled. Reference: {{reference}}.",
	},
	model.NotificationBookingReminder: {
		Subject: "Reminder: upcoming {{kind}}",
		Body:    "Hello {{name}}, this is a reminder of your {{kind}} on {{date}} at {{start_time}} ({{timezone}}). Reference: {{reference}}.",
	},
}

// Render подставляет payload в шаблон вида сообщения
func Render(n *model.Notification) (Message, error) {
	tpl, ok := templates[n.Kind]
	if !ok {
		return Message{}, fmt.Errorf("no template for notification kind %q", n.Kind)
	}

	pairs := make([]string, 0, len(n.Payload)*2)
	for k, v := range n.Payload {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	r := strings.NewReplacer(pairs...)

	return Message{
		Subject: r.Replace(tpl.Subject),
		Body:    r.Replace(tpl.Body),
	}, nil
}
