package notify

import (
	"fmt"
	"strings"

	"github.com/Sahiqur/eshop/models"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Sender dispatches the post-payment confirmation. Best-effort at the call
// site: a failed send must never fail the payment response.
type Sender interface {
	SendOrderConfirmation(order *models.Order) error
}

type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

type Mailer struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

func NewMailer(cfg SMTPConfig, logger *zap.Logger) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass),
		from:   cfg.From,
		logger: logger,
	}
}

func (m *Mailer) SendOrderConfirmation(order *models.Order) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", order.Email)
	msg.SetHeader("Subject", fmt.Sprintf("Order #%d confirmed", order.ID))
	msg.SetBody("text/plain", confirmationBody(order))

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Error("order confirmation email failed",
			zap.Uint("order_id", order.ID),
			zap.String("to", order.Email),
			zap.Error(err))
		return err
	}
	return nil
}

func confirmationBody(order *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nThank you for your purchase. Order #%d is confirmed and being processed.\n\n", order.FirstName, order.ID)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "  %s x%d @ %.2f\n", item.ProductName, item.Quantity, item.Price)
	}
	fmt.Fprintf(&b, "\nTotal: %.2f\nTransaction: %s\n", order.TotalCost(), order.TransactionID)
	return b.String()
}

// Noop discards confirmations; used when SMTP is not configured.
type Noop struct{}

func (Noop) SendOrderConfirmation(*models.Order) error { return nil }
