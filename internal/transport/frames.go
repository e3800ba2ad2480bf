package transport

import (
	"encoding/json"
	"fmt"
)

// EventSub websocket message types.
const (
	typeWelcome      = "session_welcome"
	typeKeepalive    = "session_keepalive"
	typeNotification = "notification"
	typeReconnect    = "session_reconnect"
	typeRevocation   = "revocation"
)

// frame is the envelope of every EventSub websocket message.
type frame struct {
	Metadata struct {
		MessageID        string `json:"message_id"`
		MessageType      string `json:"message_type"`
		MessageTimestamp string `json:"message_timestamp"`
		SubscriptionType string `json:"subscription_type"`
	} `json:"metadata"`
	Payload json.RawMessage `json:"payload"`
}

// sessionPayload is the payload of welcome and reconnect messages.
type sessionPayload struct {
	Session struct {
		ID                      string `json:"id"`
		KeepaliveTimeoutSeconds int    `json:"keepalive_timeout_seconds"`
		ReconnectURL            string `json:"reconnect_url"`
	} `json:"session"`
}

// notificationPayload is the payload of notification messages for the
// redemption-add subscription.
type notificationPayload struct {
	Subscription struct {
		Type string `json:"type"`
	} `json:"subscription"`
	Event struct {
		ID        string `json:"id"`
		UserID    string `json:"user_id"`
		UserLogin string `json:"user_login"`
		UserInput string `json:"user_input"`
		Reward    struct {
			ID string `json:"id"`
		} `json:"reward"`
	} `json:"event"`
}

func parseFrame(data []byte) (*frame, error) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse eventsub frame: %w", err)
	}
	if f.Metadata.MessageType == "" {
		return nil, fmt.Errorf("eventsub frame missing message_type")
	}
	return &f, nil
}

func (f *frame) session() (*sessionPayload, error) {
	var p sessionPayload
	if err := json.Unmarshal(f.Payload, &p); err != nil {
		return nil, fmt.Errorf("failed to parse session payload: %w", err)
	}
	return &p, nil
}

func (f *frame) notification() (*notificationPayload, error) {
	var p notificationPayload
	if err := json.Unmarshal(f.Payload, &p); err != nil {
		return nil, fmt.Errorf("failed to parse notification payload: %w", err)
	}
	return &p, nil
}
