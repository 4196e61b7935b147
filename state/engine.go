package state

import (
	"context"
	"errors"
	"github.com/google/uuid"
	"github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/panel/equipment"
	"sync"
	"time"
)

// Transport is the outbound half of the pub/sub connection. Both calls must return without waiting on
// the broker.
type Transport interface {
	Subscribe(topic string)
	Publish(topic string, payload []byte)
}

const DefaultEventQueueSize = 256

type envelope struct {
	event any
	reply chan Transition
}

type snapshotRequest struct {
	reply chan Snapshot
}

// Engine owns the reconciled state. All events are applied one at a time on a single goroutine.
type Engine struct {
	reconciler Reconciler
	transport  Transport
	publisher  EventPublisher
	logger     logwrap.Logger
	clock      func() time.Time

	events chan envelope
	stop   chan struct{}
	done   chan struct{}

	lifecycle sync.Mutex
	started   bool
	stopped   bool

	state State
}

func NewEngine(r Reconciler, t Transport, p EventPublisher, l logwrap.Logger) *Engine {
	if p == nil {
		p = NullEventPublisher
	}

	return &Engine{
		reconciler: r,
		transport:  t,
		publisher:  p,
		logger:     l,
		clock:      time.Now,
		events:     make(chan envelope, DefaultEventQueueSize),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		state:      r.Initial(),
	}
}

func (e *Engine) Start() {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	if e.started || e.stopped {
		return
	}

	e.started = true
	go e.run()
}

// Stop halts the event loop, events queued after this point are discarded. An engine that was never
// started can not be started afterwards.
func (e *Engine) Stop() {
	e.lifecycle.Lock()

	if !e.stopped {
		e.stopped = true
		close(e.stop)

		if !e.started {
			close(e.done)
		}
	}

	e.lifecycle.Unlock()

	<-e.done
}

func (e *Engine) run() {
	defer close(e.done)

	var tickCh <-chan time.Time

	if e.reconciler.StaleAfter > 0 {
		ticker := time.NewTicker(e.reconciler.StaleAfter / 2)
		defer ticker.Stop()
		tickCh = ticker.C
	}

	for {
		select {
		case env := <-e.events:
			e.process(env)
		case now := <-tickCh:
			e.apply(Tick{Now: now})
		case <-e.stop:
			return
		}
	}
}

func (e *Engine) process(env envelope) {
	switch ev := env.event.(type) {
	case snapshotRequest:
		ev.reply <- e.reconciler.Snapshot(e.state)
	default:
		t := e.apply(ev)
		if env.reply != nil {
			env.reply <- t
		}
	}
}

func (e *Engine) apply(event any) Transition {
	t := e.reconciler.Reduce(e.state, event)
	e.state = t.State

	e.logTransition(event, t)

	for _, effect := range t.Effects {
		switch ef := effect.(type) {
		case Subscribe:
			e.transport.Subscribe(ef.Topic)
		case Publish:
			e.transport.Publish(ef.Topic, ef.Payload)
		}
	}

	for _, n := range t.Notifications {
		e.publisher.Publish(n)
	}

	return t
}

func (e *Engine) logTransition(event any, t Transition) {
	ctx := context.Background()

	switch ev := event.(type) {
	case Connected:
		e.logger.LogInfo(ctx, "Transport connected, subscribing to status topics.", logwrap.Datum("topics", len(t.Effects)))
	case Disconnected:
		e.logger.LogWarn(ctx, "Transport disconnected, gateway marked offline.", logwrap.Err(ev.Err))
	case TransportError:
		e.logger.LogError(ctx, "Transport reported an error.", logwrap.Err(ev.Err))
	case Message:
		switch {
		case errors.Is(t.Err, UnknownTopic):
			e.logger.LogDebug(ctx, "Ignoring message on unrecognised topic.", logwrap.Datum("topic", ev.Topic))
		case errors.Is(t.Err, MalformedPayload):
			e.logger.LogWarn(ctx, "Ignoring malformed status payload.", logwrap.Datum("topic", ev.Topic), logwrap.Datum("payload", string(ev.Payload)))
		}
	case CommandRequested:
		if t.Err != nil {
			e.logger.LogWarn(ctx, "Command rejected.", logwrap.Datum("equipment", ev.Identifier), logwrap.Datum("desired", ev.Desired.String()), logwrap.Datum("command", ev.Correlation), logwrap.Err(t.Err))
		} else {
			e.logger.LogInfo(ctx, "Command published.", logwrap.Datum("equipment", ev.Identifier), logwrap.Datum("desired", ev.Desired.String()), logwrap.Datum("command", ev.Correlation))
		}
	}

	e.logger.LogTrace(ctx, "Applied event.", logwrap.Datum("event", event), logwrap.Datum("gatewayOnline", t.State.GatewayOnline), logwrap.Datum("transportConnected", t.State.TransportConnected))
}

func (e *Engine) enqueue(env envelope) {
	select {
	case e.events <- env:
	case <-e.done:
	}
}

func (e *Engine) Connected() {
	e.enqueue(envelope{event: Connected{}})
}

func (e *Engine) Disconnected(err error) {
	e.enqueue(envelope{event: Disconnected{Err: err}})
}

func (e *Engine) Message(topic string, payload []byte) {
	e.enqueue(envelope{event: Message{Topic: topic, Payload: payload, At: e.clock()}})
}

func (e *Engine) Error(err error) {
	e.enqueue(envelope{event: TransportError{Err: err}})
}

// RequestPower asks for a power change. A rejected command returns GatewayOffline or
// EquipmentUnreachable without touching the transport; an accepted one returns the optimistic state.
// The context bounds queueing only, a queued command is always applied and its outcome returned.
func (e *Engine) RequestPower(ctx context.Context, id string, desired equipment.PowerState) (EquipmentState, error) {
	reply := make(chan Transition, 1)

	cmd := CommandRequested{Identifier: id, Desired: desired, Correlation: uuid.New().String()}

	select {
	case e.events <- envelope{event: cmd, reply: reply}:
	case <-e.done:
		return EquipmentState{}, EngineStopped
	case <-ctx.Done():
		return EquipmentState{}, ctx.Err()
	}

	select {
	case t := <-reply:
		return t.State.Equipment[id], t.Err
	case <-e.done:
		return EquipmentState{}, EngineStopped
	}
}

// Snapshot is ordered after every event queued before it.
func (e *Engine) Snapshot(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)

	select {
	case e.events <- envelope{event: snapshotRequest{reply: reply}}:
	case <-e.done:
		return Snapshot{}, EngineStopped
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}

	select {
	case s := <-reply:
		return s, nil
	case <-e.done:
		return Snapshot{}, EngineStopped
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}
