package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/tripmind/quota-service/internal/report"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// EmailSender шлёт админам отчёт перед сбросом, с xlsx во вложении.
type EmailSender struct {
	cfg SMTPConfig
}

func NewEmailSender(cfg SMTPConfig) *EmailSender {
	return &EmailSender{cfg: cfg}
}

func (s *EmailSender) SendReport(ctx context.Context, r *report.Report) error {
	buf, err := report.WriteWorkbook(r)
	if err != nil {
		return fmt.Errorf("notify: build workbook: %w", err)
	}

	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return fmt.Errorf("notify: from: %w", err)
	}
	if err := m.To(s.cfg.To...); err != nil {
		return fmt.Errorf("notify: to: %w", err)
	}
	m.Subject(fmt.Sprintf("Monthly quota report %s", r.Cycle))
	m.SetBodyString(mail.TypeTextPlain, emailBody(r))
	if err := m.AttachReader(fmt.Sprintf("quota-report-%s.xlsx", r.Cycle), buf); err != nil {
		return fmt.Errorf("notify: attach report: %w", err)
	}

	client, err := mail.NewClient(s.cfg.Host,
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Username),
		mail.WithPassword(s.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("notify: smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, m)
}

func emailBody(r *report.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Quota usage snapshot before the %s reset.\n\n", r.Cycle)
	fmt.Fprintf(&b, "Users: %d (active: %d)\n", r.Summary.TotalUsers, r.Summary.ActiveUsers)
	fmt.Fprintf(&b, "Itineraries used: %d (avg %.2f per user)\n",
		r.Summary.TotalItinerariesUsed, r.Summary.AvgPerUser)
	fmt.Fprintf(&b, "Users with active boosts: %d\n", r.Summary.UsersWithActiveBoost)
	fmt.Fprintf(&b, "Users at their limit: %d\n", len(r.AtLimit))
	if len(r.ExpiringBoosts) > 0 {
		b.WriteString("\nBoosts expiring this cycle:\n")
		for _, eb := range r.ExpiringBoosts {
			fmt.Fprintf(&b, "  %s: %d grant(s), %d itineraries, paid %.2f\n",
				eb.Email, eb.Grants, eb.Itineraries, eb.TotalPrice)
		}
	}
	b.WriteString("\nFull breakdown is attached.\n")
	return b.String()
}
