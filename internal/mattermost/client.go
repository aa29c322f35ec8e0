// Package mattermost provides webhook client for sending notifications to Mattermost.
package mattermost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/symposium-labs/engage/internal/config"
	"github.com/symposium-labs/engage/internal/leveling"
	"github.com/symposium-labs/engage/pkg/logger"
)

const botUsername = "Symposium"

// Client handles Mattermost webhook notifications.
type Client struct {
	webhookURL string
	channel    string
	enabled    bool
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a new Mattermost client.
func NewClient(cfg *config.MattermostConfig, log *logger.Logger) *Client {
	return &Client{
		webhookURL: cfg.WebhookURL,
		channel:    cfg.Channel,
		enabled:    cfg.Enabled,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

// Message represents a Mattermost message payload.
type Message struct {
	Channel     string       `json:"channel,omitempty"`
	Username    string       `json:"username,omitempty"`
	Text        string       `json:"text,omitempty"`
	IconURL     string       `json:"icon_url,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment represents a message attachment.
type Attachment struct {
	Fallback string  `json:"fallback,omitempty"`
	Color    string  `json:"color,omitempty"`
	Pretext  string  `json:"pretext,omitempty"`
	Title    string  `json:"title,omitempty"`
	Text     string  `json:"text,omitempty"`
	Fields   []Field `json:"fields,omitempty"`
	Footer   string  `json:"footer,omitempty"`
}

// Field represents a message field.
type Field struct {
	Short bool   `json:"short"`
	Title string `json:"title"`
	Value string `json:"value"`
}

// Enabled reports whether messages are actually sent.
func (c *Client) Enabled() bool {
	return c.enabled
}

// SendMessage sends a message to Mattermost.
func (c *Client) SendMessage(ctx context.Context, msg *Message) error {
	if !c.enabled {
		c.log.Debug().Msg("Mattermost is disabled, skipping message")
		return nil
	}

	if msg.Channel == "" {
		msg.Channel = c.channel
	}
	if msg.Username == "" {
		msg.Username = botUsername
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message to Mattermost: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mattermost returned status %d", resp.StatusCode)
	}

	c.log.Debug().
		Str("channel", msg.Channel).
		Msg("Sent message to Mattermost")

	return nil
}

// AnnounceLevelUp posts a level-up message with the member's new rank.
func (c *Client) AnnounceLevelUp(ctx context.Context, username string, level int, rank leveling.Rank) error {
	if !c.enabled {
		return nil
	}

	text := fmt.Sprintf("%s **@%s** reached **level %d**!", rank.Icon, username, level)

	return c.SendMessage(ctx, &Message{
		Text: text,
		Attachments: []Attachment{{
			Fallback: text,
			Color:    rank.Color,
			Fields: []Field{
				{Short: true, Title: "Level", Value: fmt.Sprintf("%d", level)},
				{Short: true, Title: "Rank", Value: rank.Name},
			},
		}},
	})
}

// AnnounceAchievement posts an achievement unlock.
func (c *Client) AnnounceAchievement(ctx context.Context, username string, a leveling.Achievement) error {
	if !c.enabled {
		return nil
	}

	text := fmt.Sprintf("%s **@%s** unlocked **%s**", a.Icon, username, a.Name)

	return c.SendMessage(ctx, &Message{
		Text: text,
		Attachments: []Attachment{{
			Fallback: text,
			Title:    a.Name,
			Text:     a.Description,
			Footer:   fmt.Sprintf("+%d XP", a.XP),
		}},
	})
}
