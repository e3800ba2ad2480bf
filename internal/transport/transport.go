// Package transport connects to the Twitch EventSub websocket, registers
// the reward-redemption subscription, and delivers redemption events to the
// reconciliation pipeline.
//
// Delivery is assumed exactly-once but not guaranteed; a small message-id
// dedup window plus the pipeline's idempotent-add behavior defend against
// redelivery after reconnects.
package transport

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dyluth/warden/internal/pipeline"
	"github.com/dyluth/warden/internal/twitch"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// DefaultURL is the public EventSub websocket endpoint.
const DefaultURL = "wss://eventsub.wss.twitch.tv/ws"

const (
	// dedupLimit bounds the redelivery window.
	dedupLimit = 128

	// keepaliveSlack is added to the server-announced keepalive timeout
	// when arming the read deadline.
	keepaliveSlack = 5 * time.Second

	// defaultKeepalive is used until the welcome message announces one.
	defaultKeepalive = 30 * time.Second
)

// Handler consumes one redemption event. Called on its own goroutine per
// event; the pipeline's internal locking orders concurrent redemptions.
type Handler func(ctx context.Context, ev pipeline.Event)

// Client is one EventSub websocket session feeding a Handler.
type Client struct {
	helix         *twitch.Client
	broadcasterID string
	rewardID      string
	url           string
	dialer        *websocket.Dialer
	seen          *dedupWindow
}

// Option customizes a Client.
type Option func(*Client)

// WithURL overrides the websocket endpoint (tests).
func WithURL(u string) Option {
	return func(c *Client) { c.url = u }
}

// New creates a transport client for one reward on one channel.
func New(helix *twitch.Client, broadcasterID, rewardID string, opts ...Option) *Client {
	c := &Client{
		helix:         helix,
		broadcasterID: broadcasterID,
		rewardID:      rewardID,
		url:           DefaultURL,
		dialer:        websocket.DefaultDialer,
		seen:          newDedupWindow(dedupLimit),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run connects, subscribes, and dispatches events until ctx is cancelled or
// the session fails. Soft reconnects (session_reconnect) are followed
// transparently; any other failure is returned so the caller can decide
// whether to restart the session.
func (c *Client) Run(ctx context.Context, handle Handler) error {
	connID := uuid.New().String()[:8]
	wsURL := c.url
	subscribed := false

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		log.Printf("[INFO] Connecting to EventSub: conn=%s url=%s", connID, wsURL)
		conn, _, err := c.dialer.DialContext(ctx, wsURL, nil)
		if err != nil {
			return fmt.Errorf("eventsub dial failed: %w", err)
		}

		reconnectURL, err := c.serve(ctx, conn, handle, &subscribed, connID)
		conn.Close()

		if err != nil {
			return err
		}
		if reconnectURL == "" {
			return ctx.Err()
		}

		// Soft reconnect: the session (and its subscription) carries over
		// to the new URL, so skip re-subscribing.
		log.Printf("[INFO] Following EventSub reconnect: conn=%s", connID)
		wsURL = reconnectURL
	}
}

// serve reads one websocket session. Returns a non-empty reconnect URL for
// a soft reconnect, or an error for anything fatal to the session.
func (c *Client) serve(ctx context.Context, conn *websocket.Conn, handle Handler, subscribed *bool, connID string) (string, error) {
	keepalive := defaultKeepalive

	// Unblock ReadMessage when the parent context is cancelled.
	stop := context.AfterFunc(ctx, func() {
		conn.SetReadDeadline(time.Now())
	})
	defer stop()

	for {
		conn.SetReadDeadline(time.Now().Add(keepalive + keepaliveSlack))

		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", fmt.Errorf("eventsub read failed: %w", err)
		}

		f, err := parseFrame(data)
		if err != nil {
			log.Printf("[WARN] Skipping unparseable EventSub frame: conn=%s error=%v", connID, err)
			continue
		}

		switch f.Metadata.MessageType {
		case typeWelcome:
			session, err := f.session()
			if err != nil {
				return "", err
			}
			if session.Session.KeepaliveTimeoutSeconds > 0 {
				keepalive = time.Duration(session.Session.KeepaliveTimeoutSeconds) * time.Second
			}
			log.Printf("[INFO] EventSub session established: conn=%s session=%s", connID, session.Session.ID)

			if !*subscribed {
				if err := c.helix.SubscribeRedemptions(ctx, c.broadcasterID, session.Session.ID); err != nil {
					return "", fmt.Errorf("failed to register redemption subscription: %w", err)
				}
				*subscribed = true
				log.Printf("[INFO] Redemption subscription registered: conn=%s", connID)
			}

		case typeKeepalive:
			// Nothing to do; the read deadline was already re-armed.

		case typeNotification:
			if ev, ok := c.eventFrom(f); ok {
				go handle(ctx, ev)
			}

		case typeReconnect:
			session, err := f.session()
			if err != nil {
				return "", err
			}
			if session.Session.ReconnectURL == "" {
				return "", fmt.Errorf("eventsub reconnect frame without url")
			}
			return session.Session.ReconnectURL, nil

		case typeRevocation:
			return "", fmt.Errorf("eventsub subscription revoked")

		default:
			log.Printf("[DEBUG] Ignoring EventSub message type %q: conn=%s", f.Metadata.MessageType, connID)
		}
	}
}

// eventFrom converts a notification frame into a pipeline event, applying
// the reward filter and the redelivery dedup window.
func (c *Client) eventFrom(f *frame) (pipeline.Event, bool) {
	p, err := f.notification()
	if err != nil {
		log.Printf("[WARN] Skipping malformed notification: %v", err)
		return pipeline.Event{}, false
	}

	if p.Subscription.Type != twitch.RedemptionAddType {
		return pipeline.Event{}, false
	}
	if p.Event.Reward.ID != c.rewardID {
		log.Printf("[DEBUG] Ignoring redemption for foreign reward %s", p.Event.Reward.ID)
		return pipeline.Event{}, false
	}
	if c.seen.Seen(f.Metadata.MessageID) {
		log.Printf("[WARN] Dropping redelivered notification: message_id=%s", f.Metadata.MessageID)
		return pipeline.Event{}, false
	}

	return pipeline.Event{
		RequesterID:   p.Event.UserLogin,
		CandidateName: p.Event.UserInput,
		RedemptionID:  p.Event.ID,
	}, true
}
