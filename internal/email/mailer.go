// Package email sends admin broadcast mail through Amazon SES. Each
// recipient is sent in isolation so one bounced address never aborts
// the rest of the batch.
package email

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"
)

// Sender is the slice of the SES API the mailer uses.
type Sender interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type Mailer struct {
	client Sender
	sender string
	log    *zap.Logger
}

// SendFailure records one recipient the batch could not reach.
type SendFailure struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

// BatchResult aggregates the outcome of a broadcast.
type BatchResult struct {
	Sent   int           `json:"sent"`
	Failed []SendFailure `json:"failed"`
}

// NewMailer builds an SES-backed mailer for the given region and
// verified sender address.
func NewMailer(ctx context.Context, region, sender string, log *zap.Logger) (*Mailer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Mailer{client: ses.NewFromConfig(cfg), sender: sender, log: log}, nil
}

// NewMailerWithClient wires a prebuilt client, used by tests.
func NewMailerWithClient(client Sender, sender string, log *zap.Logger) *Mailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mailer{client: client, sender: sender, log: log}
}

// SendBatch delivers the subject and body to every recipient, applying
// the vars as {{name}} substitutions. Failures are collected per
// recipient instead of aborting the batch.
func (m *Mailer) SendBatch(ctx context.Context, recipients []string, subject, body string, vars map[string]string) BatchResult {
	subject = substitute(subject, vars)
	body = substitute(body, vars)

	var out BatchResult
	for _, to := range recipients {
		to = strings.TrimSpace(to)
		if to == "" {
			continue
		}
		if err := m.sendOne(ctx, to, subject, body); err != nil {
			m.log.Warn("email send failed", zap.String("to", to), zap.Error(err))
			out.Failed = append(out.Failed, SendFailure{Email: to, Error: err.Error()})
			continue
		}
		out.Sent++
	}
	return out
}

func (m *Mailer) sendOne(ctx context.Context, to, subject, body string) error {
	_, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(m.sender),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body), Charset: aws.String("UTF-8")},
			},
		},
	})
	return err
}

// substitute replaces {{name}} placeholders. Unknown placeholders are
// left intact so typos surface in the delivered mail rather than
// vanishing silently.
func substitute(s string, vars map[string]string) string {
	for k, v := range vars {
		s = strings.ReplaceAll(s, "{{"+k+"}}", v)
	}
	return s
}
