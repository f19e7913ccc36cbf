package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mvribeiro/zapgastos/internal/logger"
)

type nopWriter struct{}

func (*nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestTwilioSenderSend(t *testing.T) {
	var gotPath, gotFrom, gotTo, gotBody string
	var gotUser, gotPass string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		r.ParseForm()
		gotFrom = r.FormValue("From")
		gotTo = r.FormValue("To")
		gotBody = r.FormValue("Body")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM123","status":"queued"}`))
	}))
	defer srv.Close()

	s := NewTwilioSender("AC42", "secret", "+14155238886")
	s.baseURL = srv.URL

	if err := s.Send(context.Background(), "551199998888", "anotado!"); err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	if gotPath != "/2010-04-01/Accounts/AC42/Messages.json" {
		t.Errorf("path = %q", gotPath)
	}
	if gotUser != "AC42" || gotPass != "secret" {
		t.Errorf("basic auth = %q/%q", gotUser, gotPass)
	}
	if gotFrom != "whatsapp:+14155238886" {
		t.Errorf("From = %q", gotFrom)
	}
	if gotTo != "whatsapp:+551199998888" {
		t.Errorf("To = %q", gotTo)
	}
	if gotBody != "anotado!" {
		t.Errorf("Body = %q", gotBody)
	}
}

func TestTwilioSenderSendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Authentication Error","code":20003}`))
	}))
	defer srv.Close()

	s := NewTwilioSender("AC42", "wrong", "+14155238886")
	s.baseURL = srv.URL

	if err := s.Send(context.Background(), "551199998888", "oi"); err == nil {
		t.Error("expected error on 401 response")
	}
}

func TestMetaSenderSend(t *testing.T) {
	tests := []struct {
		name      string
		fixMobile bool
		to        string
		wantTo    string
	}{
		{"strips prefix and plus", true, "whatsapp:+5511999998888", "5511999998888"},
		{"inserts missing nine", true, "+557591234567", "5575991234567"},
		{"fix disabled passes through", false, "+557591234567", "557591234567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath, gotAuth string
			var gotReq metaRequest

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotAuth = r.Header.Get("Authorization")
				json.NewDecoder(r.Body).Decode(&gotReq)
				w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
			}))
			defer srv.Close()

			s := NewMetaSender("token123", "phone456", tt.fixMobile)
			s.baseURL = srv.URL

			if err := s.Send(context.Background(), tt.to, "anotado!"); err != nil {
				t.Fatalf("Send() error: %v", err)
			}

			if gotPath != "/v17.0/phone456/messages" {
				t.Errorf("path = %q", gotPath)
			}
			if gotAuth != "Bearer token123" {
				t.Errorf("auth = %q", gotAuth)
			}
			if gotReq.To != tt.wantTo {
				t.Errorf("to = %q, want %q", gotReq.To, tt.wantTo)
			}
			if gotReq.MessagingProduct != "whatsapp" || gotReq.Type != "text" {
				t.Errorf("unexpected envelope: %+v", gotReq)
			}
			if gotReq.Text.Body != "anotado!" {
				t.Errorf("body = %q", gotReq.Text.Body)
			}
		})
	}
}

// mockSender records calls and optionally fails.
type mockSender struct {
	calls int
	err   error
}

func (m *mockSender) Send(ctx context.Context, to, body string) error {
	m.calls++
	return m.err
}

func TestNotifierFallback(t *testing.T) {
	log := logger.NewWithWriter(&nopWriter{})

	t.Run("primary succeeds, fallback untouched", func(t *testing.T) {
		primary := &mockSender{}
		secondary := &mockSender{}

		out := New(primary, secondary, log).Notify(context.Background(), "+5511", "oi")
		if out.Provider != "twilio" || out.Err != nil {
			t.Errorf("outcome = %+v", out)
		}
		if primary.calls != 1 || secondary.calls != 0 {
			t.Errorf("calls: primary %d, secondary %d", primary.calls, secondary.calls)
		}
	})

	t.Run("primary fails, fallback used", func(t *testing.T) {
		primary := &mockSender{err: errors.New("boom")}
		secondary := &mockSender{}

		out := New(primary, secondary, log).Notify(context.Background(), "+5511", "oi")
		if out.Provider != "meta" || out.Err != nil {
			t.Errorf("outcome = %+v", out)
		}
		if primary.calls != 1 || secondary.calls != 1 {
			t.Errorf("calls: primary %d, secondary %d", primary.calls, secondary.calls)
		}
	})

	t.Run("no primary configured", func(t *testing.T) {
		secondary := &mockSender{}

		out := New(nil, secondary, log).Notify(context.Background(), "+5511", "oi")
		if out.Provider != "meta" || out.Err != nil {
			t.Errorf("outcome = %+v", out)
		}
		if secondary.calls != 1 {
			t.Errorf("secondary calls = %d", secondary.calls)
		}
	})

	t.Run("both fail, one attempt each", func(t *testing.T) {
		primary := &mockSender{err: errors.New("boom")}
		secondary := &mockSender{err: errors.New("also boom")}

		out := New(primary, secondary, log).Notify(context.Background(), "+5511", "oi")
		if out.Err == nil {
			t.Error("expected error outcome")
		}
		if primary.calls != 1 || secondary.calls != 1 {
			t.Errorf("calls: primary %d, secondary %d", primary.calls, secondary.calls)
		}
	})

	t.Run("nothing configured", func(t *testing.T) {
		out := New(nil, nil, log).Notify(context.Background(), "+5511", "oi")
		if !errors.Is(out.Err, ErrNoSender) {
			t.Errorf("err = %v, want ErrNoSender", out.Err)
		}
	})
}
