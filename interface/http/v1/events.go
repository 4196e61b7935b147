package v1

import (
	"context"
	"encoding/json"
	"github.com/gorilla/websocket"
	"github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/panel/state"
	"net/http"
	"time"
)

type Event struct {
	Type string
	Data any
}

func mapEvent(e any) (Event, bool) {
	switch ev := e.(type) {
	case state.TransportConnected:
		return Event{Type: "TransportConnected", Data: ev}, true
	case state.TransportDisconnected:
		return Event{Type: "TransportDisconnected", Data: ev}, true
	case state.TransportErrored:
		return Event{Type: "TransportErrored", Data: ev}, true
	case state.GatewayStatusUpdate:
		return Event{Type: "GatewayStatusUpdate", Data: ev}, true
	case state.EquipmentUpdate:
		return Event{Type: "EquipmentUpdate", Data: ev.Equipment}, true
	case state.CommandPublished:
		return Event{Type: "CommandPublished", Data: ev}, true
	case state.CommandRejected:
		return Event{Type: "CommandRejected", Data: ev}, true
	default:
		return Event{}, false
	}
}

const ConnectionEventBufferSize = 16
const InitialSnapshotTimeout = 5 * time.Second

var wsUpgrader = websocket.Upgrader{}

type eventsController struct {
	controller Controller
	eventbus   state.EventSubscriber
	logger     logwrap.Logger
}

func (z *eventsController) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	c, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer c.Close()

	if err := z.serveWebsocketConnection(c); err != nil {
		z.logger.LogError(r.Context(), "Websocket connection failed.", logwrap.Err(err))
	}
}

func (z *eventsController) serveWebsocketConnection(c *websocket.Conn) error {
	eventsCh := make(chan any, ConnectionEventBufferSize)
	shutdownCh := make(chan struct{})

	z.eventbus.Subscribe(eventsCh)

	defer func() {
		z.eventbus.Unsubscribe(eventsCh)
		close(shutdownCh)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), InitialSnapshotTimeout)
	snap, err := z.controller.Snapshot(ctx)
	cancel()

	if err != nil {
		return err
	}

	go z.serviceOutgoing(c, Event{Type: "Snapshot", Data: snap}, eventsCh, shutdownCh)
	return z.serviceIncoming(c)
}

func (z *eventsController) serviceOutgoing(c *websocket.Conn, initial Event, ch chan any, shutCh chan struct{}) {
	if err := z.write(c, initial); err != nil {
		z.logger.LogError(context.Background(), "Failed to send initial snapshot to websocket.", logwrap.Err(err))
		return
	}

	for {
		select {
		case e := <-ch:
			event, ok := mapEvent(e)
			if !ok {
				continue
			}

			if err := z.write(c, event); err != nil {
				z.logger.LogError(context.Background(), "Failed to send event to websocket.", logwrap.Err(err))
				return
			}
		case <-shutCh:
			return
		}
	}
}

func (z *eventsController) write(c *websocket.Conn, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	return c.WriteMessage(websocket.TextMessage, data)
}

func (z *eventsController) serviceIncoming(c *websocket.Conn) error {
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if _, ok := err.(*websocket.CloseError); ok {
				z.logger.LogDebug(context.Background(), "Websocket closed.", logwrap.Err(err))
				return nil
			}

			return err
		}
	}
}
