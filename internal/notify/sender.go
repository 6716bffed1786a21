package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Sender delivers a composed message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// TwilioConfig holds WhatsApp API credentials.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
}

// MessageCreator is the slice of the Twilio API used for delivery.
type MessageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioSender sends WhatsApp messages through the Twilio REST API.
type TwilioSender struct {
	api    MessageCreator
	from   string
	logger *slog.Logger
}

// NewTwilioSender builds a sender backed by the Twilio REST client.
func NewTwilioSender(cfg TwilioConfig, logger *slog.Logger) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return newTwilioSender(client.Api, cfg.From, logger)
}

func newTwilioSender(api MessageCreator, from string, logger *slog.Logger) *TwilioSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &TwilioSender{api: api, from: from, logger: logger}
}

func (s *TwilioSender) Send(ctx context.Context, msg Message) error {
	if msg.Phone == "" {
		return ErrMissingPhone
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo("whatsapp:+" + msg.Phone)
	params.SetFrom("whatsapp:" + s.from)
	params.SetBody(msg.Text)

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		return err
	}
	if resp == nil || resp.Sid == nil {
		return errors.New("notify: twilio returned no message sid")
	}
	s.logger.Info("whatsapp sent", slog.String("kind", string(msg.Kind)), slog.String("phone", msg.Phone), slog.String("sid", *resp.Sid))
	return nil
}

// LogSender records messages without delivering them. Used when no Twilio
// credentials are configured.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(_ context.Context, msg Message) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("whatsapp delivery skipped, no credentials", slog.String("kind", string(msg.Kind)), slog.String("phone", msg.Phone), slog.String("link", msg.Link))
	return nil
}
