// Package gameworld is the HTTP client for the game server's actor API.
// It backs every collaborator interface the engine needs from the world:
// cash on hand, inventory items, the online roster, actor positions, and
// display names.
package gameworld

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/citywide-rp/bankcore/internal/config"
)

// Client talks to the game server. All methods are safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a game-server client from config.
func NewClient(cfg config.GameConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type cashRequest struct {
	ActorID     string `json:"actor_id"`
	AmountCents int64  `json:"amount_cents"`
}

// TakeCash removes physical cash from the actor. The game server rejects the
// call when the actor holds less than the amount.
func (c *Client) TakeCash(ctx context.Context, ownerID string, amountCents int64) error {
	return c.post(ctx, "/cash/take", cashRequest{ActorID: ownerID, AmountCents: amountCents}, nil)
}

// GiveCash hands physical cash to the actor.
func (c *Client) GiveCash(ctx context.Context, ownerID string, amountCents int64) error {
	return c.post(ctx, "/cash/give", cashRequest{ActorID: ownerID, AmountCents: amountCents}, nil)
}

// HasItem reports whether the actor carries the named item.
func (c *Client) HasItem(ctx context.Context, actorID, item string) (bool, error) {
	var out struct {
		Present bool `json:"present"`
	}
	path := fmt.Sprintf("/inventory/%s/items/%s", url.PathEscape(actorID), url.PathEscape(item))
	if err := c.get(ctx, path, &out); err != nil {
		return false, err
	}
	return out.Present, nil
}

// GrantLoot puts a loot bag worth amountCents into the actor's inventory.
func (c *Client) GrantLoot(ctx context.Context, actorID string, amountCents int64) error {
	body := struct {
		ActorID     string `json:"actor_id"`
		Item        string `json:"item"`
		AmountCents int64  `json:"amount_cents"`
	}{ActorID: actorID, Item: "loot_bag", AmountCents: amountCents}
	return c.post(ctx, "/inventory/grant", body, nil)
}

// OnlineWithRole counts online actors holding the given role.
func (c *Client) OnlineWithRole(ctx context.Context, role string) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.get(ctx, "/roster/online?role="+url.QueryEscape(role), &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// WithinRange reports whether the actor is within radius meters of the target.
func (c *Client) WithinRange(ctx context.Context, actorID, targetID string, radius float64) (bool, error) {
	var out struct {
		Within bool `json:"within"`
	}
	path := fmt.Sprintf("/world/%s/near/%s?radius=%g", url.PathEscape(actorID), url.PathEscape(targetID), radius)
	if err := c.get(ctx, path, &out); err != nil {
		return false, err
	}
	return out.Within, nil
}

// DisplayName resolves an actor id to its character name. Unknown actors
// resolve to the raw id rather than an error so audit logging never blocks
// on the lookup.
func (c *Client) DisplayName(ctx context.Context, actorID string) (string, error) {
	var out struct {
		Name string `json:"name"`
	}
	if err := c.get(ctx, "/actors/"+url.PathEscape(actorID), &out); err != nil {
		return actorID, nil
	}
	if out.Name == "" {
		return actorID, nil
	}
	return out.Name, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("game server request: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for connection reuse
		_ = resp.Body.Close()                 //nolint:errcheck
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("game server: %s (status %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("game server: unexpected status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
