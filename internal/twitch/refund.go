package twitch

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
)

// Refunder cancels reward redemptions so the viewer's points are returned.
// Implements the pipeline's Refunder contract.
type Refunder struct {
	client        *Client
	broadcasterID string
	rewardID      string
}

// NewRefunder creates a Refunder for one reward on one channel.
func NewRefunder(client *Client, broadcasterID, rewardID string) *Refunder {
	return &Refunder{
		client:        client,
		broadcasterID: broadcasterID,
		rewardID:      rewardID,
	}
}

// Refund marks the redemption CANCELED, returning the points to the viewer.
//
// Best-effort with the standard retry schedule: only a definitive 200 is
// success. A 401 invalidates the cached app token before the next attempt.
// Exhausting the schedule returns false; the caller logs for manual
// remediation and nothing else in the system changes.
func (r *Refunder) Refund(ctx context.Context, redemptionID string) bool {
	params := url.Values{
		"broadcaster_id": {r.broadcasterID},
		"reward_id":      {r.rewardID},
		"id":             {redemptionID},
		"status":         {"CANCELED"},
	}

	err := r.client.policy.Do(ctx, func(ctx context.Context) error {
		req, err := r.client.newHelixRequest(ctx, http.MethodPatch,
			"/channel_points/custom_rewards/redemptions?"+params.Encode(), nil)
		if err != nil {
			return err
		}

		resp, err := r.client.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("refund request failed: %w", err)
		}
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK:
			return nil
		case http.StatusUnauthorized:
			r.client.invalidateToken()
			return fmt.Errorf("refund request unauthorized, refreshing token")
		default:
			return fmt.Errorf("refund request returned status %d", resp.StatusCode)
		}
	})

	if err != nil {
		log.Printf("[ERROR] Failed to refund redemption %s: %v", redemptionID, err)
		return false
	}

	log.Printf("[INFO] Refunded redemption %s", redemptionID)
	return true
}
