// Package notify delivers the confirmation reply back to the sender over
// WhatsApp, through Twilio when fully configured and the Meta Cloud API
// otherwise.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mvribeiro/zapgastos/internal/phone"
)

const twilioBaseURL = "https://api.twilio.com"

// Sender is the minimal contract a delivery backend implements.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// TwilioSender sends WhatsApp messages through the Twilio REST API using
// stdlib net/http only, no SDK dependency.
type TwilioSender struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	httpClient *http.Client
}

// NewTwilioSender creates a sender. from is the Twilio WhatsApp number,
// with or without the "whatsapp:" prefix.
func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	return &TwilioSender{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		baseURL:    twilioBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// twilioResponse captures just the fields worth surfacing in errors.
type twilioResponse struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	ErrorCode    *int   `json:"error_code"`
	ErrorMessage string `json:"message"`
}

// Send posts one message. It returns a non-nil error if the HTTP request
// fails or Twilio answers with a non-2xx status; the Notifier then falls
// back to Meta.
func (s *TwilioSender) Send(ctx context.Context, to, body string) error {
	form := url.Values{}
	form.Set("From", phone.ForTwilio(s.from))
	form.Set("To", phone.ForTwilio(to))
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, s.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.accountSID, s.authToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("twilio returned %d: %s", resp.StatusCode, string(respBody))
	}

	var twResp twilioResponse
	if err := json.Unmarshal(respBody, &twResp); err == nil && twResp.ErrorCode != nil {
		return fmt.Errorf("twilio error %d: %s", *twResp.ErrorCode, twResp.ErrorMessage)
	}

	return nil
}
