package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/textproto"
	"os"
	"path/filepath"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// smtpSender is the concrete Sender backed by an implicit-TLS SMTP relay
// (TLS on connect, not STARTTLS — the submission port the relay expects).
type smtpSender struct {
	host     string
	port     int
	sender   string // From address and auth username
	password string // app password
	timeout  time.Duration
	logger   *slog.Logger
}

// NewSMTPSender returns a Sender that submits mail to host:port,
// authenticating as sender. timeout bounds connection establishment.
func NewSMTPSender(host string, port int, sender, password string, timeout time.Duration, logger *slog.Logger) Sender {
	return &smtpSender{
		host:     host,
		port:     port,
		sender:   sender,
		password: password,
		timeout:  timeout,
		logger:   logger,
	}
}

// SendReport builds and submits one message with the report attached.
func (s *smtpSender) SendReport(ctx context.Context, p ReportParams) error {
	if s.sender == "" || p.To == "" {
		return &SendError{Reason: ReasonMissingAddress}
	}

	// The attachment must be readable before we touch the network.
	f, err := os.Open(p.AttachmentPath)
	if err != nil {
		return &SendError{Reason: ReasonAttachment, Err: err}
	}
	f.Close()

	msg := gomail.NewMsg()
	if err := msg.From(s.sender); err != nil {
		return &SendError{Reason: ReasonMissingAddress, Err: err}
	}
	if err := msg.To(p.To); err != nil {
		return &SendError{Reason: ReasonBadRecipient, Err: err}
	}
	msg.Subject(fmt.Sprintf("Patient Report - %s", p.PatientName))
	msg.SetBodyString(gomail.TypeTextPlain, fmt.Sprintf(
		"Attached is the health report for %s.\n\nThis is an automated message from the Patient Report System.",
		p.PatientName,
	))
	msg.AttachFile(p.AttachmentPath,
		gomail.WithFileName(filepath.Base(p.AttachmentPath)),
		gomail.WithFileContentType("application/pdf"),
	)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSSL(),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.sender),
		gomail.WithPassword(s.password),
		gomail.WithTimeout(s.timeout),
	)
	if err != nil {
		return &SendError{Reason: ReasonTransport, Err: err}
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		s.logger.Error("smtp send failed", "host", s.host, "recipient", p.To, "error", err)
		return &SendError{Reason: classify(err), Err: err}
	}

	s.logger.Info("email sent", "recipient", p.To)
	return nil
}

// classify maps a transport error to its user-facing reason.
func classify(err error) string {
	// Auth rejections arrive as SMTP reply codes on the AUTH exchange.
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		switch protoErr.Code {
		case 530, 534, 535:
			return ReasonAuth
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}

	// Anything that failed at the socket level never reached the relay.
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ReasonConnect
	}

	return ReasonTransport
}
