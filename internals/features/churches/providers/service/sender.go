package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gerejaku_backend/internals/configs"
	"gerejaku_backend/internals/features/churches/providers/model"

	"github.com/gofiber/fiber/v2"
	"github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"
)

const (
	sendTimeout         = 10 * time.Second
	defaultEmailSubject = "Thank you for visiting"
	maxProviderMessage  = 240
)

var (
	ErrUnknownProvider = fiber.NewError(fiber.StatusBadRequest, "Unknown provider for this channel")
	ErrProviderMissing = fiber.NewError(fiber.StatusBadRequest, "No active provider is configured for this channel")
)

// SendResult is what a provider reports back. A failed send is a result, not an error.
type SendResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Sender interface {
	Send(ctx context.Context, recipient, message string) SendResult
}

// SenderFactory builds a Sender for a stored provider row.
type SenderFactory func(p *model.ProviderModel) (Sender, error)

// requiredCredentials per provider name.
var requiredCredentials = map[string][]string{
	model.ProviderResend:      {"api_key"},
	model.ProviderHTTPGateway: {"url"},
}

var channelProviders = map[string][]string{
	model.ChannelEmail: {model.ProviderResend},
	model.ChannelSMS:   {model.ProviderHTTPGateway},
}

// ValidateConfig checks that name fits the channel and every required credential is present.
func ValidateConfig(channel, name string, sender *string, creds map[string]any) error {
	allowed := false
	for _, n := range channelProviders[channel] {
		if n == name {
			allowed = true
		}
	}
	if !allowed {
		return ErrUnknownProvider
	}
	for _, k := range requiredCredentials[name] {
		if s, _ := creds[k].(string); strings.TrimSpace(s) == "" {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("credential %q is required", k))
		}
	}
	if channel == model.ChannelEmail && (sender == nil || !strings.Contains(*sender, "@")) {
		return fiber.NewError(fiber.StatusBadRequest, "Email providers need a sender address")
	}
	return nil
}

// CredentialKeys lists which credentials are stored, never their values.
func CredentialKeys(creds map[string]any) []string {
	out := make([]string, 0, len(creds))
	for k := range creds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// NewSender is the default SenderFactory.
func NewSender(p *model.ProviderModel) (Sender, error) {
	if p == nil || !p.ProviderIsActive {
		return nil, ErrProviderMissing
	}
	sender := ""
	if p.ProviderSender != nil {
		sender = *p.ProviderSender
	}
	switch p.ProviderName {
	case model.ProviderResend:
		subject := p.Credential("subject")
		if subject == "" {
			subject = defaultEmailSubject
		}
		return &ResendSender{
			client:  resend.NewClient(p.Credential("api_key")),
			from:    sender,
			subject: subject,
		}, nil
	case model.ProviderHTTPGateway:
		return &HTTPGatewaySender{
			URL:    p.Credential("url"),
			APIKey: p.Credential("api_key"),
			From:   sender,
		}, nil
	}
	return nil, ErrUnknownProvider
}

/* =========================== Email =========================== */

type ResendSender struct {
	client  *resend.Client
	from    string
	subject string
}

func (s *ResendSender) Send(ctx context.Context, recipient, message string) SendResult {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{recipient},
		Subject: s.subject,
		Text:    message,
	})
	if err != nil {
		configs.Log.WithFields(logrus.Fields{"provider": model.ProviderResend}).WithError(err).Warn("email send failed")
		return SendResult{Success: false, Message: clip(err.Error())}
	}
	return SendResult{Success: true, Message: "sent " + sent.Id}
}

/* ============================ SMS ============================ */

// HTTPGatewaySender posts {to, from, message} as JSON to an SMS gateway.
type HTTPGatewaySender struct {
	URL    string
	APIKey string
	From   string
}

type smsPayload struct {
	To      string `json:"to"`
	From    string `json:"from,omitempty"`
	Message string `json:"message"`
}

func (s *HTTPGatewaySender) Send(ctx context.Context, recipient, message string) SendResult {
	a := fiber.Post(s.URL)
	a.Timeout(sendTimeout)
	if s.APIKey != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+s.APIKey)
	}
	a.JSON(smsPayload{To: recipient, From: s.From, Message: message})

	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		configs.Log.WithFields(logrus.Fields{"provider": model.ProviderHTTPGateway}).WithError(errs[0]).Warn("sms send failed")
		return SendResult{Success: false, Message: clip(errs[0].Error())}
	}
	if code < 200 || code >= 300 {
		return SendResult{Success: false, Message: clip(fmt.Sprintf("gateway returned %d: %s", code, strings.TrimSpace(string(body))))}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = "sent"
	}
	return SendResult{Success: true, Message: clip(msg)}
}

func clip(s string) string {
	if len(s) > maxProviderMessage {
		return s[:maxProviderMessage]
	}
	return s
}
