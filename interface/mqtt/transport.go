package mqtt

import (
	"context"
	"crypto/tls"
	"fmt"
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/shimmeringbee/logwrap"
	url2 "net/url"
	"sync"
	"sync/atomic"
	"time"
)

type mqttError string

func (m mqttError) Error() string {
	return string(m)
}

const TransportStopped = mqttError("transport stopped")
const ConnectionLost = mqttError("connection to mqtt server lost")
const OutboundQueueFull = mqttError("outbound queue full")

// Handler receives connection lifecycle and inbound messages. Calls are made from the MQTT client's
// goroutines and must not block for long.
type Handler interface {
	Connected()
	Disconnected(error)
	Message(topic string, payload []byte)
	Error(error)
}

type client interface {
	Connect() pahomqtt.Token
	Disconnect(quiesce uint)
	IsConnectionOpen() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
	Subscribe(topic string, qos byte, callback pahomqtt.MessageHandler) pahomqtt.Token
}

const DefaultReconnectInterval = 5 * time.Second
const DefaultOperationTimeout = 10 * time.Second
const DefaultOutboundQueueSize = 256
const DisconnectQuiesce = 1500

type Config struct {
	Server   string
	ClientID string

	Username string
	Password string
	TLS      *tls.Config

	QOS byte

	ReconnectInterval time.Duration
	OperationTimeout  time.Duration
}

type operation string

const (
	opSubscribe operation = "subscribe"
	opPublish   operation = "publish"
)

type outbound struct {
	op      operation
	topic   string
	payload []byte
}

type Transport struct {
	cfg     Config
	handler Handler
	logger  logwrap.Logger
	client  client

	// lifecycle serialises connect and reconnect callbacks, up is true between a reported
	// Connected and the matching Disconnected.
	lifecycle sync.Mutex
	up        bool

	outbound chan outbound
	drained  chan struct{}

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
	stopped  atomic.Bool
}

func New(cfg Config, l logwrap.Logger) (*Transport, error) {
	if cfg.ReconnectInterval <= 0 {
		cfg.ReconnectInterval = DefaultReconnectInterval
	}

	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = DefaultOperationTimeout
	}

	url, err := url2.Parse(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mqtt server url: %w", err)
	}

	clientOptions := pahomqtt.NewClientOptions()
	clientOptions.Servers = []*url2.URL{url}
	clientOptions.SetClientID(cfg.ClientID)
	clientOptions.SetCleanSession(true)
	clientOptions.SetOrderMatters(true)
	clientOptions.SetAutoReconnect(true)
	clientOptions.SetMaxReconnectInterval(cfg.ReconnectInterval)
	clientOptions.SetConnectTimeout(cfg.OperationTimeout)
	clientOptions.SetWriteTimeout(cfg.OperationTimeout)

	if len(cfg.Username) > 0 {
		clientOptions.SetUsername(cfg.Username)
		clientOptions.SetPassword(cfg.Password)
	}

	if cfg.TLS != nil {
		clientOptions.SetTLSConfig(cfg.TLS)
	}

	var t *Transport

	// OnConnect and ConnectionLost are invoked on their own goroutines, the reconnecting handler runs
	// synchronously before every reconnect attempt. Drops are reported from the latter so they always
	// precede the next Connected.
	clientOptions.SetOnConnectHandler(func(pahomqtt.Client) {
		t.connected()
	})

	clientOptions.SetReconnectingHandler(func(pahomqtt.Client, *pahomqtt.ClientOptions) {
		t.reconnecting()
	})

	clientOptions.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		t.connectionLost(err)
	})

	clientOptions.SetDefaultPublishHandler(func(c pahomqtt.Client, m pahomqtt.Message) {
		t.incoming(c, m)
	})

	t = newTransport(cfg, l, pahomqtt.NewClient(clientOptions))

	return t, nil
}

func newTransport(cfg Config, l logwrap.Logger, c client) *Transport {
	ctx, cancel := context.WithCancel(context.Background())

	t := &Transport{
		cfg:      cfg,
		logger:   l,
		client:   c,
		outbound: make(chan outbound, DefaultOutboundQueueSize),
		drained:  make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}

	go t.drain()

	return t
}

// Start attempts the first connection every ReconnectInterval until it succeeds, later connection
// drops are recovered by the client's own reconnect with backoff. Must be called once.
func (t *Transport) Start(h Handler) {
	t.handler = h

	t.wg.Add(1)
	go t.connectLoop()
}

func (t *Transport) connectLoop() {
	defer t.wg.Done()

	retry := time.NewTicker(t.cfg.ReconnectInterval)
	defer retry.Stop()

	for {
		if err := awaitToken(t.ctx, t.client.Connect()); err != nil {
			if t.ctx.Err() != nil {
				return
			}

			t.logger.LogError(t.ctx, "Failed initial connection to MQTT server.", logwrap.Datum("clientId", t.cfg.ClientID), logwrap.Datum("server", t.cfg.Server), logwrap.Err(err))
			t.handler.Error(fmt.Errorf("failed to connect to mqtt server: %w", err))
		} else {
			t.logger.LogInfo(t.ctx, "Initial MQTT connection call completed.", logwrap.Datum("clientId", t.cfg.ClientID), logwrap.Datum("server", t.cfg.Server))
			return
		}

		select {
		case <-retry.C:
		case <-t.ctx.Done():
			return
		}
	}
}

func (t *Transport) connected() {
	t.lifecycle.Lock()
	defer t.lifecycle.Unlock()

	if !t.client.IsConnectionOpen() {
		t.logger.LogDebug(context.Background(), "Ignoring connect callback for a session that has already dropped.", logwrap.Datum("clientId", t.cfg.ClientID))
		return
	}

	t.logger.LogInfo(context.Background(), "MQTT client successfully connected.", logwrap.Datum("clientId", t.cfg.ClientID), logwrap.Datum("server", t.cfg.Server))

	t.up = true
	t.handler.Connected()
}

func (t *Transport) reconnecting() {
	t.lifecycle.Lock()
	defer t.lifecycle.Unlock()

	if !t.up {
		return
	}

	t.logger.LogInfo(context.Background(), "MQTT client reconnecting.", logwrap.Datum("clientId", t.cfg.ClientID), logwrap.Datum("server", t.cfg.Server))

	t.up = false
	t.handler.Disconnected(ConnectionLost)
}

func (t *Transport) connectionLost(err error) {
	t.logger.LogInfo(context.Background(), "MQTT client disconnected.", logwrap.Datum("clientId", t.cfg.ClientID), logwrap.Datum("server", t.cfg.Server), logwrap.Err(err))
}

func (t *Transport) incoming(_ pahomqtt.Client, message pahomqtt.Message) {
	t.handler.Message(message.Topic(), message.Payload())
}

// Subscribe queues a subscription and returns immediately.
func (t *Transport) Subscribe(topic string) {
	t.enqueue(outbound{op: opSubscribe, topic: topic})
}

// Publish queues the payload and returns immediately, operations reach the client in call order.
// Failures are reported to the handler as errors.
func (t *Transport) Publish(topic string, payload []byte) {
	t.enqueue(outbound{op: opPublish, topic: topic, payload: payload})
}

func (t *Transport) enqueue(o outbound) {
	if t.stopped.Load() {
		t.logger.LogDebug(context.Background(), "Dropping operation after transport stop.", logwrap.Datum("operation", string(o.op)), logwrap.Datum("topic", o.topic))
		return
	}

	select {
	case t.outbound <- o:
	default:
		t.logger.LogError(context.Background(), "Outbound queue full, dropping operation.", logwrap.Datum("operation", string(o.op)), logwrap.Datum("topic", o.topic))
		go t.handler.Error(fmt.Errorf("%w: failed to %s on topic '%s'", OutboundQueueFull, o.op, o.topic))
	}
}

func (t *Transport) drain() {
	defer close(t.drained)

	for {
		select {
		case o := <-t.outbound:
			t.send(o)
		case <-t.ctx.Done():
			return
		}
	}
}

func (t *Transport) send(o outbound) {
	var token pahomqtt.Token

	switch o.op {
	case opSubscribe:
		token = t.client.Subscribe(o.topic, t.cfg.QOS, t.incoming)
	case opPublish:
		token = t.client.Publish(o.topic, t.cfg.QOS, false, o.payload)
	}

	t.await(o.op, o.topic, token)
}

func (t *Transport) await(op operation, topic string, token pahomqtt.Token) {
	go func() {
		ctx, cancel := context.WithTimeout(t.ctx, t.cfg.OperationTimeout)
		defer cancel()

		if err := awaitToken(ctx, token); err != nil {
			if t.stopped.Load() {
				return
			}

			t.logger.LogError(ctx, "Failed to complete MQTT operation.", logwrap.Datum("operation", string(op)), logwrap.Datum("topic", topic), logwrap.Err(err))
			t.handler.Error(fmt.Errorf("failed to %s on topic '%s': %w", op, topic, err))
		}
	}()
}

// Stop cancels any pending connection attempt, discards queued operations and releases the
// connection. Safe to call more than once.
func (t *Transport) Stop() {
	t.stopOnce.Do(func() {
		t.stopped.Store(true)
		t.cancel()
		t.wg.Wait()
		<-t.drained
		t.client.Disconnect(DisconnectQuiesce)
	})
}

func awaitToken(ctx context.Context, token pahomqtt.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
