package mail

import (
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/verbumapp/verbum/app/models"
	"github.com/verbumapp/verbum/internal/pkg/env"
)

// SendMail sends an HTML email via SMTP.
func SendMail(to string, subject string, body string) error {
	host := env.GetEnv("SMTP_HOST", "")
	port := env.GetEnv("SMTP_PORT", "")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "")

	if sender == "" {
		sender = fmt.Sprintf("no-reply@%s", "localhost")
		log.Warn().Str("sender", sender).Msg("SMTP_SENDER not set, using default sender")
	}

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)

	err := smtp.SendMail(addr, auth, sender, []string{to}, msg)
	if err != nil {
		log.Error().Err(err).Str("to", to).Msg("smtp send failed")
	} else {
		log.Info().Str("to", to).Str("addr", addr).Msg("email sent")
	}
	return err
}

// SendWelcome greets a newly registered user.
func SendWelcome(to string, name string) error {
	subject := "Bem-vindo ao Verbum"
	body := fmt.Sprintf(
		"<p>Olá %s,</p>"+
			"<p>Sua conta foi criada com sucesso. Boa leitura!</p>",
		name,
	)
	return SendMail(to, subject, body)
}

// UserMailer resolves user addresses and sends subscription notifications.
// It backs the activation_mail job type.
type UserMailer struct {
	db *gorm.DB
}

func NewUserMailer(db *gorm.DB) *UserMailer {
	return &UserMailer{db: db}
}

// SendActivationFailure tells the user a confirmed payment could not be
// activated yet and that no action is lost.
func (m *UserMailer) SendActivationFailure(userID uint, plan, reason string) error {
	var user models.User
	if err := m.db.First(&user, userID).Error; err != nil {
		return fmt.Errorf("failed to load user %d for activation mail: %w", userID, err)
	}

	subject := "Pagamento confirmado, ativação pendente"
	body := fmt.Sprintf(
		"<p>Olá %s,</p>"+
			"<p>Recebemos a confirmação do seu pagamento do plano <strong>%s</strong>, "+
			"mas não conseguimos ativar sua assinatura automaticamente.</p>"+
			"<p>Nossa equipe já foi notificada e a ativação será concluída em breve. "+
			"Você também pode tentar novamente na página de planos.</p>",
		user.Name, plan,
	)
	if err := SendMail(user.Email, subject, body); err != nil {
		return err
	}
	log.Warn().Uint("user_id", userID).Str("plan", plan).Str("reason", reason).Msg("activation failure notified")
	return nil
}
