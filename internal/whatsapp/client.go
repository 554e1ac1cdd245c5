// Package whatsapp provides the outbound client for the Evolution API
// gateway.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"intake_backend/platform/config"
	"intake_backend/platform/logger"
	"intake_backend/platform/phone"
)

// Client talks to an Evolution API instance. A nil client is a no-op, so
// the application can run with WhatsApp disabled.
type Client struct {
	baseURL  string
	apiKey   string
	instance string
	http     *http.Client
	log      *logger.Logger
}

type sendTextRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

type connectionStateResponse struct {
	Instance struct {
		State string `json:"state"`
	} `json:"instance"`
	State string `json:"state"`
}

func NewClient(cfg config.WhatsAppConfig, log *logger.Logger) *Client {
	if !cfg.IsWhatsAppEnabled() {
		return nil
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.GetEvolutionURL(), "/"),
		apiKey:   cfg.GetEvolutionAPIKey(),
		instance: cfg.GetEvolutionInstance(),
		http:     &http.Client{Timeout: 15 * time.Second},
		log:      log,
	}
}

// SendText delivers a text message. The destination may be a bare phone
// number or a full JID; it is normalized to the Evolution address format.
func (c *Client) SendText(ctx context.Context, phoneNumber, message string) error {
	if c == nil {
		return nil
	}

	jid := phone.WhatsAppJID(phoneNumber)

	body, err := json.Marshal(sendTextRequest{Number: jid, Text: message})
	if err != nil {
		return fmt.Errorf("marshal sendText payload: %w", err)
	}

	url := fmt.Sprintf("%s/message/sendText/%s", c.baseURL, c.instance)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("evolution request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("evolution returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	c.log.Info("whatsapp message sent", "jid", jid)
	return nil
}

// InstanceStatus returns the connection state of the Evolution instance.
func (c *Client) InstanceStatus(ctx context.Context) (string, error) {
	if c == nil {
		return "disabled", nil
	}

	url := fmt.Sprintf("%s/instance/connectionState/%s", c.baseURL, c.instance)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("evolution request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("evolution returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var state connectionStateResponse
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return "", fmt.Errorf("decode connection state: %w", err)
	}
	if state.Instance.State != "" {
		return state.Instance.State, nil
	}
	return state.State, nil
}
