package plugin

import (
	"context"
	"encoding/json"

	"github.com/keboo/deckstatus/pkg/streamdeck"
	"github.com/sirupsen/logrus"
)

// Dispatcher routes host events to the registry
type Dispatcher struct {
	registry *Registry
}

func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

type inspectorMessage struct {
	Action string `json:"action"`
}

func (d *Dispatcher) HandleEvent(ctx context.Context, event streamdeck.Event) {
	switch event.Event {
	case streamdeck.WillAppear:
		d.registry.Attach(ctx, event.Context, event.Action, event.Settings())
	case streamdeck.WillDisappear:
		d.registry.Detach(event.Context)
	case streamdeck.DidReceiveSettings:
		d.registry.UpdateSettings(event.Context, event.Settings())
	case streamdeck.KeyDown:
		d.registry.Refresh(event.Context)
	case streamdeck.KeyUp:
		d.registry.Activate(event.Context)
	case streamdeck.SendToPlugin:
		var message inspectorMessage
		if err := json.Unmarshal(event.Payload, &message); err != nil {
			logrus.Warnf("could not parse property inspector message: %s", err)
			return
		}
		if message.Action == "refresh" {
			d.registry.Refresh(event.Context)
		}
	default:
		logrus.Tracef("ignoring %s", event.Event)
	}
}
