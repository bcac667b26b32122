package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/jikulumessu/api/pkg/logger"
)

// EmailService defines the interface for sending emails
type EmailService interface {
	SendPasswordResetEmail(ctx context.Context, email, token string) error
}

// AWSSESEmailService sends emails using AWS SES
type AWSSESEmailService struct {
	sesClient    *ses.Client
	fromAddress  string
	resetURLBase string
	logger       *slog.Logger
}

// NewAWSSESEmailService creates a new AWS SES email service
func NewAWSSESEmailService(region, fromAddress, resetURLBase string, log *slog.Logger) (*AWSSESEmailService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESEmailService{
		sesClient:    ses.NewFromConfig(cfg),
		fromAddress:  fromAddress,
		resetURLBase: resetURLBase,
		logger:       log,
	}, nil
}

// SendPasswordResetEmail sends the password recovery link. The token is
// single use and expires after one hour.
func (s *AWSSESEmailService) SendPasswordResetEmail(ctx context.Context, email, token string) error {
	resetLink := fmt.Sprintf("%s?token=%s", s.resetURLBase, token)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #f8f9fa; padding: 20px; text-align: center; border-radius: 4px; }
        .button { display: inline-block; background-color: #e85d04; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; margin: 20px 0; }
        .footer { color: #666; font-size: 12px; margin-top: 20px; padding-top: 20px; border-top: 1px solid #eee; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Recuperação de senha</h1>
        </div>
        <p>Recebemos um pedido para redefinir a senha da sua conta Jikulumessu.</p>
        <p><a href="%s" class="button">Definir nova senha</a></p>
        <p>Ou copie e cole este link no seu navegador:<br>
        <code>%s</code></p>
        <p>O link expira em 1 hora e só pode ser usado uma vez.</p>
        <p><strong>Não pediu esta alteração?</strong><br>
        Ignore este email. A sua senha continuará a mesma.</p>
        <div class="footer">
            <p>Esta é uma mensagem automática. Por favor não responda a este email.</p>
        </div>
    </div>
</body>
</html>
`, resetLink, resetLink)

	textBody := fmt.Sprintf(`Recuperação de senha

Recebemos um pedido para redefinir a senha da sua conta Jikulumessu.

Abra o link para definir uma nova senha:
%s

O link expira em 1 hora e só pode ser usado uma vez.

Não pediu esta alteração? Ignore este email. A sua senha continuará a mesma.

Esta é uma mensagem automática. Por favor não responda a este email.
`, resetLink)

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String("Recuperação de senha - Jikulumessu"),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data: aws.String(htmlBody),
				},
				Text: &types.Content{
					Data: aws.String(textBody),
				},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send password reset email via SES",
			slog.String("email", logger.SanitizedEmail(email)),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("password reset email sent",
		slog.String("email", logger.SanitizedEmail(email)),
		slog.String("message_id", *result.MessageId))

	return nil
}
