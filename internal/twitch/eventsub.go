package twitch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// RedemptionAddType is the EventSub subscription type for channel point
// reward redemptions.
const RedemptionAddType = "channel.channel_points_custom_reward_redemption.add"

// SubscribeRedemptions registers a websocket-transport EventSub
// subscription for reward redemptions on the broadcaster's channel,
// bound to the given websocket session.
func (c *Client) SubscribeRedemptions(ctx context.Context, broadcasterID, sessionID string) error {
	body := map[string]interface{}{
		"type":    RedemptionAddType,
		"version": "1",
		"condition": map[string]string{
			"broadcaster_user_id": broadcasterID,
		},
		"transport": map[string]string{
			"method":     "websocket",
			"session_id": sessionID,
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal subscription request: %w", err)
	}

	req, err := c.newHelixRequest(ctx, http.MethodPost, "/eventsub/subscriptions", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("subscription request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("subscription request returned status %d: %s", resp.StatusCode, detail)
	}
	return nil
}
