package email

import (
	"fmt"
	"net/smtp"

	"go.uber.org/zap"
)

// Sender delivers one HTML message.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

// SMTPSender sends mail through a plain SMTP relay.
type SMTPSender struct {
	host string
	port string
	from string
	auth smtp.Auth
}

// NewSMTPSender returns a sender for host:port. Credentials are optional; with an
// empty username the relay is used unauthenticated.
func NewSMTPSender(host, port, from, username, password string) *SMTPSender {
	s := &SMTPSender{host: host, port: port, from: from}
	if username != "" {
		s.auth = smtp.PlainAuth("", username, password, host)
	}
	return s
}

func (s *SMTPSender) Send(to, subject, htmlBody string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, htmlBody)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, s.auth, s.from, []string{to}, []byte(msg))
}

// Service renders storefront emails and hands them to a Sender.
type Service struct {
	sender    Sender
	storeName string
	logger    *zap.Logger
}

func NewService(sender Sender, storeName string, logger *zap.Logger) *Service {
	return &Service{sender: sender, storeName: storeName, logger: logger.Named("email")}
}

func (s *Service) SendOrderConfirmation(to string, o OrderSummary) error {
	subject := fmt.Sprintf("%s: order %s confirmed", s.storeName, o.OrderNumber)
	return s.send(to, subject, BuildOrderConfirmationBody(s.storeName, o))
}

func (s *Service) SendPaymentReceived(to, orderNumber, amount string) error {
	subject := fmt.Sprintf("%s: payment received for %s", s.storeName, orderNumber)
	return s.send(to, subject, BuildStatusBody(s.storeName, orderNumber, "Payment received",
		fmt.Sprintf("We have received your payment of %s. Your order is being prepared.", amount)))
}

func (s *Service) SendShippedNotice(to, orderNumber string) error {
	subject := fmt.Sprintf("%s: order %s has shipped", s.storeName, orderNumber)
	return s.send(to, subject, BuildStatusBody(s.storeName, orderNumber, "Your order is on its way",
		"Your package has been handed to our delivery partner."))
}

func (s *Service) SendCancellationNotice(to, orderNumber string) error {
	subject := fmt.Sprintf("%s: order %s cancelled", s.storeName, orderNumber)
	return s.send(to, subject, BuildStatusBody(s.storeName, orderNumber, "Order cancelled",
		"Your order has been cancelled. If you paid online, the amount will be refunded to the original payment method."))
}

func (s *Service) send(to, subject, body string) error {
	if err := s.sender.Send(to, subject, body); err != nil {
		return fmt.Errorf("send %q to %s: %w", subject, to, err)
	}
	s.logger.Info("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
