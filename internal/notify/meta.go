package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mvribeiro/zapgastos/internal/phone"
)

const metaBaseURL = "https://graph.facebook.com"

// MetaSender sends WhatsApp messages through the Meta Cloud API
// (graph.facebook.com). Recipients are transmitted as bare digits; when
// fixBrazilMobile is on, the missing Brazilian mobile "9" is inserted
// before sending.
type MetaSender struct {
	token           string
	phoneID         string
	fixBrazilMobile bool
	baseURL         string
	httpClient      *http.Client
}

// NewMetaSender creates a sender for the given access token and business
// phone-number ID.
func NewMetaSender(token, phoneID string, fixBrazilMobile bool) *MetaSender {
	return &MetaSender{
		token:           token,
		phoneID:         phoneID,
		fixBrazilMobile: fixBrazilMobile,
		baseURL:         metaBaseURL,
		httpClient:      &http.Client{Timeout: 15 * time.Second},
	}
}

// metaRequest is the JSON body for POST /v17.0/{phone-id}/messages.
type metaRequest struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             metaText `json:"text"`
}

type metaText struct {
	Body string `json:"body"`
}

// Send posts one text message to the recipient.
func (s *MetaSender) Send(ctx context.Context, to, body string) error {
	recipient := phone.ForMeta(to)
	if s.fixBrazilMobile {
		recipient = phone.FixBrazilMobile(recipient)
	}

	payload, err := json.Marshal(metaRequest{
		MessagingProduct: "whatsapp",
		To:               recipient,
		Type:             "text",
		Text:             metaText{Body: body},
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v17.0/%s/messages", s.baseURL, s.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("meta returned %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
