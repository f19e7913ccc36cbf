// Package webhook receives inbound WhatsApp events. One POST per message,
// routed by payload shape: Twilio delivers form-encoded bodies, Meta
// delivers the business-account JSON schema. Everything else is
// acknowledged and ignored; the provider must never see a 5xx that would
// trigger redelivery.
package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mvribeiro/zapgastos/internal/api/middleware"
	"github.com/mvribeiro/zapgastos/internal/pipeline"
)

// Processor runs one inbound message through the pipeline.
type Processor interface {
	Process(ctx context.Context, msg pipeline.IncomingMessage) pipeline.Result
}

// Handler serves GET /webhook (subscription handshake) and POST /webhook
// (message delivery).
type Handler struct {
	pipe        Processor
	verifyToken string
	log         zerolog.Logger
}

// NewHandler creates a Handler.
func NewHandler(pipe Processor, verifyToken string, log zerolog.Logger) *Handler {
	return &Handler{pipe: pipe, verifyToken: verifyToken, log: log}
}

// Verify services Meta's one-time subscription handshake: echo the
// challenge when the mode and token match, 403 otherwise. An empty
// configured token never matches, so an unconfigured deployment cannot be
// subscribed to.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode == "subscribe" && h.verifyToken != "" && token == h.verifyToken {
		h.log.Info().Msg("webhook verified")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, challenge)
		return
	}

	h.log.Warn().Str("mode", mode).Msg("webhook verification rejected")
	middleware.WriteError(w, http.StatusForbidden, "verification failed")
}

// Receive handles one inbound message event. A panic anywhere in the
// pipeline is still acknowledged with a 200 so the provider does not see a
// 5xx and redeliver.
func (h *Handler) Receive(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			h.log.Error().
				Interface("error", rec).
				Msg("panic while processing message")
			middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "error"})
		}
	}()

	msg, ok := h.parseMessage(r)
	if !ok {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	res := h.pipe.Process(r.Context(), msg)

	body := map[string]string{
		"status":     "received",
		"message_id": res.MessageID,
	}
	if res.LedgerErr != nil || res.Notification.Err != nil {
		// Still a 200: an internal error must not cause provider
		// redelivery.
		body["status"] = "error"
	}
	middleware.WriteJSON(w, http.StatusOK, body)
}

// parseMessage identifies the provider by payload shape and extracts the
// sender and text.
func (h *Handler) parseMessage(r *http.Request) (pipeline.IncomingMessage, bool) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			h.log.Warn().Err(err).Msg("unparsable form body")
			return pipeline.IncomingMessage{}, false
		}
		from := r.PostFormValue("From")
		text := r.PostFormValue("Body")
		if from == "" || text == "" {
			return pipeline.IncomingMessage{}, false
		}
		return pipeline.IncomingMessage{
			Sender:   strings.TrimPrefix(from, "whatsapp:"),
			Text:     text,
			Provider: pipeline.ProviderTwilio,
		}, true
	}

	var payload metaPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.log.Warn().Err(err).Msg("unparsable json body")
		return pipeline.IncomingMessage{}, false
	}
	if payload.Object != "whatsapp_business_account" {
		return pipeline.IncomingMessage{}, false
	}

	msg, ok := payload.firstTextMessage()
	if !ok {
		// Status updates and non-text messages arrive on the same hook.
		return pipeline.IncomingMessage{}, false
	}

	return pipeline.IncomingMessage{
		Sender:   msg.From,
		Text:     msg.Text.Body,
		Provider: pipeline.ProviderMeta,
	}, true
}
