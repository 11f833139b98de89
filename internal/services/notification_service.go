package services

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/google/uuid"
	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"

	"github.com/cardrail/cardrail-api/internal/logger"
)

// EmailSender is the subset of the Resend client used by notifications.
type EmailSender interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// NotificationService emails users about execution outcomes that need their
// attention. A half-completed execution, where funds moved but the swap leg
// failed, is the one outcome that must never go unnoticed.
type NotificationService struct {
	emails     EmailSender
	fromEmail  string
	fromName   string
	supportURL string
	logger     *zap.Logger
}

// NewNotificationService creates a new notification service. A nil sender
// disables email delivery; callers still get log records.
func NewNotificationService(apiKey, fromEmail, fromName, supportURL string) *NotificationService {
	var emails EmailSender
	if apiKey != "" {
		emails = resend.NewClient(apiKey).Emails
	}
	return &NotificationService{
		emails:     emails,
		fromEmail:  fromEmail,
		fromName:   fromName,
		supportURL: supportURL,
		logger:     logger.Log,
	}
}

// PartialExecutionNotice describes a transfer that landed without its swap.
type PartialExecutionNotice struct {
	UserEmail      string
	CardID         string
	ChainID        int64
	TransferTxHash string
	SourceToken    string
	TargetToken    string
	Amount         string
	FailureReason  string
}

var partialExecutionTemplate = template.Must(template.New("partial").Parse(`
<p>Your CardRail execution completed the transfer leg but could not complete the swap.</p>
<ul>
  <li>Card: {{.CardID}}</li>
  <li>Chain: {{.ChainID}}</li>
  <li>Transfer: {{.TransferTxHash}}</li>
  <li>Amount: {{.Amount}} of {{.SourceToken}}</li>
  <li>Intended target: {{.TargetToken}}</li>
  <li>Reason: {{.FailureReason}}</li>
</ul>
<p>The transferred funds are held by your agent account and were not swapped.
Our team has been notified; contact support if you want the funds returned to
your wallet.</p>
`))

// NotifyPartialExecution sends the half-completed-execution email. Errors are
// returned so the caller can decide whether to retry, but delivery failure
// never changes the execution result.
func (s *NotificationService) NotifyPartialExecution(ctx context.Context, notice PartialExecutionNotice) error {
	s.logger.Warn("Execution completed transfer but failed swap",
		zap.String("card_id", notice.CardID),
		zap.Int64("chain_id", notice.ChainID),
		zap.String("transfer_tx", notice.TransferTxHash),
		zap.String("reason", notice.FailureReason),
	)

	if s.emails == nil || notice.UserEmail == "" {
		return nil
	}

	var body strings.Builder
	if err := partialExecutionTemplate.Execute(&body, notice); err != nil {
		return fmt.Errorf("failed to render notification template: %w", err)
	}

	sent, err := s.emails.Send(&resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail),
		To:      []string{notice.UserEmail},
		Subject: "Action needed: your CardRail swap did not complete",
		Html:    body.String(),
		Headers: map[string]string{
			"X-Entity-Ref-ID": uuid.New().String(),
		},
		Tags: []resend.Tag{
			{Name: "category", Value: "execution"},
			{Name: "event", Value: "partial_execution"},
		},
	})
	if err != nil {
		s.logger.Error("Failed to send partial execution email",
			zap.String("to", notice.UserEmail),
			zap.Error(err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("Partial execution email sent",
		zap.String("email_id", sent.Id),
		zap.String("to", notice.UserEmail))
	return nil
}
