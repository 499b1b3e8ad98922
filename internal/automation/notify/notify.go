// Package notify tells applicants when their automation job finishes.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"service-automation/internal/models"
)

// Notifier is called once per job that reaches a terminal status.
type Notifier interface {
	JobFinished(ctx context.Context, app *models.Application, job *models.Job) error
}

// Nop sends nothing.
type Nop struct{}

func (Nop) JobFinished(context.Context, *models.Application, *models.Job) error { return nil }

// SESAPI is the slice of the SES client the notifier needs.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESNotifier emails the applicant address stored on the application.
// Applications without one are skipped silently.
type SESNotifier struct {
	client    SESAPI
	fromEmail string
}

func NewSESNotifier(client SESAPI, fromEmail string) *SESNotifier {
	return &SESNotifier{client: client, fromEmail: fromEmail}
}

func (n *SESNotifier) JobFinished(ctx context.Context, app *models.Application, job *models.Job) error {
	if app == nil || job == nil || !job.IsTerminal() {
		return nil
	}
	to := strings.TrimSpace(app.Details.ApplicantEmail)
	if to == "" {
		return nil
	}

	subject, body := compose(app, job)
	_, err := n.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.fromEmail),
	})
	if err != nil {
		return fmt.Errorf("ses send failed: %w", err)
	}
	return nil
}

func compose(app *models.Application, job *models.Job) (string, string) {
	ref := app.Ref()
	if job.Status == models.JobCompleted {
		subject := fmt.Sprintf("Your %s application %s is ready for filing", job.Type, ref)
		body := fmt.Sprintf(
			"Hello,\n\nAll documents for application %s have been verified and drafted. "+
				"Our team will now file them with the authorities.\n\nStatus: %s\n",
			ref, app.Status)
		return subject, body
	}

	reason := "an unexpected error"
	if job.LastError != nil && *job.LastError != "" {
		reason = *job.LastError
	}
	subject := fmt.Sprintf("Action needed on your %s application %s", job.Type, ref)
	body := fmt.Sprintf(
		"Hello,\n\nWe could not complete automation for application %s at stage %s.\n\n"+
			"Reason: %s\n\nPlease review your uploaded documents and try again.\n",
		ref, job.CurrentStage, reason)
	return subject, body
}
