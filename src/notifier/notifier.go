package notifier

import (
	"fmt"
	"net/smtp"

	"pluto-lander/src/interfaces"
	"pluto-lander/src/logger"
	"pluto-lander/src/models"
	"pluto-lander/src/settings"
)

// -----------------------------------------------------------------------------
// Notifier delivers trade signal notifications over email/SMS. Best-effort:
// every failure is logged and swallowed; the telemetry path never sees it.
// -----------------------------------------------------------------------------

var _ interfaces.INotifier = (*Notifier)(nil)

type Notifier struct {
	Secrets settings.AppSecrets
	Logger  *logger.Logger

	// sendMail is swappable for tests
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// -----------------------------------------------------------------------------

func NewNotifier(secrets settings.AppSecrets) *Notifier {
	return &Notifier{
		Secrets:  secrets,
		Logger:   logger.NewLogger("Notifier"),
		sendMail: smtp.SendMail,
	}
}

// -----------------------------------------------------------------------------

// NotifyTradeSignal sends the notifications enabled in the user settings.
func (n *Notifier) NotifyTradeSignal(userSettings models.MSettings, msg models.MTelemetryMessage) {
	if userSettings.NotifyEmail != "" && n.Secrets.SMTPHost != "" {
		n.sendEmail(userSettings.NotifyEmail, msg)
	}
	if userSettings.NotifySMSNumber != "" && n.Secrets.SMSProvider != "" {
		// SMS provider integration pending; log the payload for now
		n.Logger.Info("SMS to %s: %s %s", userSettings.NotifySMSNumber, msg.Symbol, msg.Side)
	}
}

// -----------------------------------------------------------------------------

func (n *Notifier) sendEmail(to string, msg models.MTelemetryMessage) {
	from := n.Secrets.SMTPFrom
	if from == "" {
		from = n.Secrets.SMTPUser
	}

	confidence := 0.0
	if msg.Confidence != nil {
		confidence = *msg.Confidence
	}
	price := 0.0
	if msg.Price != nil {
		price = *msg.Price
	}

	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Pluto Lander trade signal: %s %s\r\n\r\n"+
		"New trade signal:\r\n\r\nSymbol: %s\r\nSide: %s\r\nConfidence: %g\r\nReason: %s\r\nPrice: %g\r\n",
		from, to, msg.Symbol, msg.Side, msg.Symbol, msg.Side, confidence, msg.Reason, price)

	var auth smtp.Auth
	if n.Secrets.SMTPUser != "" && n.Secrets.SMTPPassword != "" {
		auth = smtp.PlainAuth("", n.Secrets.SMTPUser, n.Secrets.SMTPPassword, n.Secrets.SMTPHost)
	}

	addr := fmt.Sprintf("%s:%d", n.Secrets.SMTPHost, n.Secrets.SMTPPort)
	if err := n.sendMail(addr, auth, from, []string{to}, []byte(body)); err != nil {
		n.Logger.Error("Email send failed: %v", err)
		return
	}
	n.Logger.Info("Email notification sent to %s", to)
}
