package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	natspkg "github.com/nats-io/nats.go"

	"github.com/strogmv/claimcomms/internal/port"
)

// Header names carried on outbound comms requests.
const (
	HeaderEventType = "eventType"
	HeaderMessageID = "messageId"
)

// Client is a JetStream-backed comms channel and inbound event source.
type Client struct {
	nc      *natspkg.Conn
	js      natspkg.JetStreamContext
	subject string
}

// NewClient connects and binds JetStream. Outbound requests go to publishSubject.
func NewClient(url, name, publishSubject string) (*Client, error) {
	nc, err := natspkg.Connect(url,
		natspkg.Name(name),
		natspkg.MaxReconnects(-1),
		natspkg.DisconnectErrHandler(func(_ *natspkg.Conn, err error) {
			if err != nil {
				slog.Warn("nats disconnected", "error", err)
			}
		}),
		natspkg.ReconnectHandler(func(c *natspkg.Conn) {
			slog.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream context: %w", err)
	}
	return &Client{nc: nc, js: js, subject: publishSubject}, nil
}

func (c *Client) Close() {
	c.nc.Close()
}

func (c *Client) IsConnected() bool {
	return c.nc != nil && c.nc.Status() == natspkg.CONNECTED
}

// EnsureStream creates the stream when it does not exist yet.
func (c *Client) EnsureStream(name string, subjects ...string) error {
	_, err := c.js.StreamInfo(name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, natspkg.ErrStreamNotFound) {
		return fmt.Errorf("stream info %s: %w", name, err)
	}
	if _, err := c.js.AddStream(&natspkg.StreamConfig{
		Name:     name,
		Subjects: subjects,
		Storage:  natspkg.FileStorage,
	}); err != nil {
		return fmt.Errorf("add stream %s: %w", name, err)
	}
	return nil
}

// Publish sends one outbound comms request. The message id doubles as the
// JetStream de-duplication id.
func (c *Client) Publish(ctx context.Context, msg port.OutboundMessage, attrs port.MessageAttributes) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal comms request: %w", err)
	}
	m := natspkg.NewMsg(c.subject)
	m.Data = body
	m.Header.Set(HeaderEventType, attrs.EventType)
	m.Header.Set(HeaderMessageID, attrs.MessageID)

	opts := []natspkg.PubOpt{natspkg.Context(ctx)}
	if attrs.MessageID != "" {
		opts = append(opts, natspkg.MsgId(attrs.MessageID))
	}
	if _, err := c.js.PublishMsg(m, opts...); err != nil {
		return fmt.Errorf("publish %s: %w", c.subject, err)
	}
	return nil
}

// ConsumeOptions configure an inbound queue subscription.
type ConsumeOptions struct {
	Subject    string
	Queue      string
	AckWait    time.Duration
	MaxDeliver int
}

// Consume delivers messages to handler one at a time per queue member and
// acknowledges according to the returned disposition. Each delivery gets a
// context bounded by the ack wait.
func (c *Client) Consume(ctx context.Context, opts ConsumeOptions, handler port.InboundHandler) (*natspkg.Subscription, error) {
	if opts.AckWait <= 0 {
		opts.AckWait = 30 * time.Second
	}
	subOpts := []natspkg.SubOpt{
		natspkg.ManualAck(),
		natspkg.AckWait(opts.AckWait),
		natspkg.DeliverAll(),
	}
	if opts.MaxDeliver > 0 {
		subOpts = append(subOpts, natspkg.MaxDeliver(opts.MaxDeliver))
	}

	return c.js.QueueSubscribe(opts.Subject, opts.Queue, func(msg *natspkg.Msg) {
		msgCtx, cancel := context.WithTimeout(ctx, opts.AckWait)
		defer cancel()

		in := port.InboundMessage{Attributes: headerAttributes(msg.Header), Payload: msg.Data}
		if meta, err := msg.Metadata(); err == nil {
			in.Attributes["deliveryCount"] = fmt.Sprint(meta.NumDelivered)
		}

		var ackErr error
		switch handler(msgCtx, in) {
		case port.Ack:
			ackErr = msg.Ack()
		case port.Reject:
			ackErr = msg.Term()
		default:
			ackErr = msg.Nak()
		}
		if ackErr != nil {
			slog.Warn("nats acknowledgement failed", "subject", msg.Subject, "error", ackErr)
		}
	}, subOpts...)
}

func headerAttributes(h natspkg.Header) map[string]string {
	out := make(map[string]string, len(h)+1)
	for k, v := range h {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
