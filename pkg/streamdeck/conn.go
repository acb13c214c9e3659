package streamdeck

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Handler receives host events. It is called from the read loop, one event at a time.
type Handler interface {
	HandleEvent(ctx context.Context, event Event)
}

// Conn is the plugin's websocket connection to the host application
type Conn struct {
	ws   *websocket.Conn
	send chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

// Dial connects to the host on localhost and registers the plugin
func Dial(ctx context.Context, port int, registerEvent string, pluginUUID string) (*Conn, error) {
	return DialURL(ctx, fmt.Sprintf("ws://127.0.0.1:%d", port), registerEvent, pluginUUID)
}

// DialURL retries with exponential backoff until ctx expires
func DialURL(ctx context.Context, url string, registerEvent string, pluginUUID string) (*Conn, error) {
	url = strings.Replace(url, "http://", "ws://", 1)

	var ws *websocket.Conn
	operation := func() error {
		c, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
		if err != nil {
			logrus.Warnf("could not connect to host at %s: %s", url, err)
			return err
		}
		ws = c
		return nil
	}
	err := backoff.Retry(operation, backoff.WithContext(backoff.NewExponentialBackOff(), ctx))
	if err != nil {
		return nil, errors.Wrap(err, "could not connect to host")
	}

	err = ws.WriteJSON(outbound{Event: registerEvent, UUID: pluginUUID})
	if err != nil {
		ws.Close()
		return nil, errors.Wrap(err, "could not register plugin")
	}
	logrus.Infof("registered %s at %s", pluginUUID, url)

	return &Conn{
		ws:   ws,
		send: make(chan []byte, 64),
		done: make(chan struct{}),
	}, nil
}

// Run pumps events to the handler until the connection drops or ctx is done
func (c *Conn) Run(ctx context.Context, handler Handler) error {
	go c.writePump()
	go func() {
		select {
		case <-ctx.Done():
			c.Close()
		case <-c.done:
		}
	}()
	defer c.Close()

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				return nil
			default:
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return errors.Wrap(err, "read")
		}

		var event Event
		if err := json.Unmarshal(message, &event); err != nil {
			logrus.Errorf("could not decode host message: %s", err)
			continue
		}
		logrus.Tracef("recv: %s", message)

		handler.HandleEvent(ctx, event)
	}
}

// writePump is the only writer of the websocket
func (c *Conn) writePump() {
	for {
		select {
		case message := <-c.send:
			err := c.ws.WriteMessage(websocket.TextMessage, message)
			if err != nil {
				logrus.Errorf("write: %s", err)
				c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		c.ws.Close()
	})
}

func (c *Conn) SetTitle(context string, title string) error {
	return c.enqueue(outbound{
		Event:   setTitle,
		Context: context,
		Payload: titlePayload{Title: title},
	})
}

// SetImage takes a data URL
func (c *Conn) SetImage(context string, image string) error {
	return c.enqueue(outbound{
		Event:   setImage,
		Context: context,
		Payload: imagePayload{Image: image},
	})
}

func (c *Conn) OpenURL(url string) error {
	return c.enqueue(outbound{
		Event:   openURL,
		Payload: urlPayload{URL: url},
	})
}

func (c *Conn) enqueue(msg outbound) error {
	serialized, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return errors.New("connection closed")
	default:
	}

	select {
	case c.send <- serialized:
		return nil
	case <-c.done:
		return errors.New("connection closed")
	}
}
