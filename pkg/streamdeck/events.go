package streamdeck

import "encoding/json"

const (
	WillAppear         = "willAppear"
	WillDisappear      = "willDisappear"
	KeyDown            = "keyDown"
	KeyUp              = "keyUp"
	DidReceiveSettings = "didReceiveSettings"
	SendToPlugin       = "sendToPlugin"

	setTitle = "setTitle"
	setImage = "setImage"
	openURL  = "openUrl"
)

// Event is a message from the host application
type Event struct {
	Event   string          `json:"event"`
	Action  string          `json:"action,omitempty"`
	Context string          `json:"context,omitempty"`
	Device  string          `json:"device,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SettingsPayload is carried by willAppear, willDisappear, key and settings events
type SettingsPayload struct {
	Settings json.RawMessage `json:"settings"`
}

func (e *Event) Settings() json.RawMessage {
	if len(e.Payload) == 0 {
		return nil
	}
	var p SettingsPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return nil
	}
	return p.Settings
}

type outbound struct {
	Event   string      `json:"event"`
	Context string      `json:"context,omitempty"`
	UUID    string      `json:"uuid,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

type titlePayload struct {
	Title  string `json:"title"`
	Target int    `json:"target"`
}

type imagePayload struct {
	Image  string `json:"image"`
	Target int    `json:"target"`
}

type urlPayload struct {
	URL string `json:"url"`
}
