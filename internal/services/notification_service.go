// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/runhunter/shoedeal-backend/internal/config"
	"github.com/runhunter/shoedeal-backend/internal/models"
)

// NotificationGateway delivers prepared alert batches. Delivery retry, if any,
// is the gateway's concern; the orchestrator only logs failures.
type NotificationGateway interface {
	DeliverSaleAlerts(batch []AlertPayload) error
	DeliverManualReviewBatch(products []models.Product) error
}

// NotificationService delivers alerts to the console or via SMTP email,
// depending on configuration.
type NotificationService struct {
	cfg config.NotificationConfig
	log *logrus.Entry
}

func NewNotificationService(cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		cfg: cfg,
		log: logrus.WithField("component", "notifier"),
	}
}

func (s *NotificationService) DeliverSaleAlerts(batch []AlertPayload) error {
	if len(batch) == 0 {
		return nil
	}

	s.log.Infof("delivering %d sale alerts via %s", len(batch), s.cfg.Method)

	if s.cfg.Method == string(models.NotificationMethodEmail) {
		subject := fmt.Sprintf("%d New Shoe Sales Found!", len(batch))
		body, err := s.renderSaleEmail(batch)
		if err != nil {
			return fmt.Errorf("failed to render alert email: %w", err)
		}
		return s.sendEmail(subject, body)
	}

	s.printSaleAlerts(batch)
	return nil
}

func (s *NotificationService) DeliverManualReviewBatch(products []models.Product) error {
	if len(products) == 0 {
		return nil
	}

	s.log.Infof("delivering %d manual review items via %s", len(products), s.cfg.Method)

	if s.cfg.Method == string(models.NotificationMethodEmail) {
		subject := fmt.Sprintf("%d items need manual price review", len(products))
		body, err := s.renderReviewEmail(products)
		if err != nil {
			return fmt.Errorf("failed to render review email: %w", err)
		}
		return s.sendEmail(subject, body)
	}

	s.printReviewBatch(products)
	return nil
}

func (s *NotificationService) printSaleAlerts(batch []AlertPayload) {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", strings.Repeat("=", 80))
	fmt.Fprintf(&b, "NEW SALES FOUND! (%d items)\n", len(batch))
	fmt.Fprintf(&b, "%s\n\n", strings.Repeat("=", 80))

	for i, p := range batch {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p.Product.Name)
		if p.Product.Brand != "" {
			fmt.Fprintf(&b, "   Brand: %s\n", p.Product.Brand)
		}
		fmt.Fprintf(&b, "   Source: %s\n", p.Product.Source)
		fmt.Fprintf(&b, "   Original Price: $%.2f\n", p.Alert.OriginalPrice)
		fmt.Fprintf(&b, "   Sale Price: $%.2f\n", p.Alert.SalePrice)
		fmt.Fprintf(&b, "   Discount: %d%% OFF\n", p.Alert.DiscountPercentage)
		fmt.Fprintf(&b, "   URL: %s\n\n", p.Product.URL)
	}

	fmt.Fprintf(&b, "%s\n", strings.Repeat("=", 80))
	fmt.Print(b.String())
}

func (s *NotificationService) printReviewBatch(products []models.Product) {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", strings.Repeat("-", 80))
	fmt.Fprintf(&b, "ITEMS NEEDING MANUAL REVIEW (%d)\n", len(products))
	fmt.Fprintf(&b, "%s\n", strings.Repeat("-", 80))

	for i, p := range products {
		fmt.Fprintf(&b, "%d. %s (%s)\n   %s\n", i+1, p.Name, p.Source, p.URL)
	}

	fmt.Fprintf(&b, "%s\n", strings.Repeat("-", 80))
	fmt.Print(b.String())
}

type saleEmailData struct {
	Items []AlertPayload
	Now   string
}

var saleEmailTemplate = template.Must(template.New("sales").Parse(`
<html>
<body>
	<h1>New Shoe Sales Found!</h1>
	<p>{{len .Items}} deals as of {{.Now}}</p>
	{{range .Items}}
	<div style="border-left: 4px solid #4CAF50; margin: 20px 0; padding: 15px;">
		<h3>{{.Product.Name}}</h3>
		{{if .Product.Brand}}<p><strong>Brand:</strong> {{.Product.Brand}}</p>{{end}}
		<p><strong>Source:</strong> {{.Product.Source}}</p>
		<p>
			<span style="text-decoration: line-through;">${{printf "%.2f" .Alert.OriginalPrice}}</span>
			<strong>${{printf "%.2f" .Alert.SalePrice}}</strong>
			({{.Alert.DiscountPercentage}}% OFF)
		</p>
		<a href="{{.Product.URL}}">View Deal</a>
	</div>
	{{end}}
</body>
</html>
`))

var reviewEmailTemplate = template.Must(template.New("review").Parse(`
<html>
<body>
	<h1>Items Needing Manual Price Review</h1>
	<p>These listings hid their price; check them by hand.</p>
	<ul>
	{{range .}}
		<li><a href="{{.URL}}">{{.Name}}</a> ({{.Source}})</li>
	{{end}}
	</ul>
</body>
</html>
`))

func (s *NotificationService) renderSaleEmail(batch []AlertPayload) (string, error) {
	data := saleEmailData{
		Items: batch,
		Now:   time.Now().Format("2006-01-02 15:04:05"),
	}

	var buf bytes.Buffer
	if err := saleEmailTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *NotificationService) renderReviewEmail(products []models.Product) (string, error) {
	var buf bytes.Buffer
	if err := reviewEmailTemplate.Execute(&buf, products); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *NotificationService) sendEmail(subject, htmlBody string) error {
	if s.cfg.EmailTo == "" || s.cfg.EmailFrom == "" {
		return fmt.Errorf("email notification requires EMAIL_TO and EMAIL_FROM")
	}

	msg := strings.Join([]string{
		"From: " + s.cfg.EmailFrom,
		"To: " + s.cfg.EmailTo,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		htmlBody,
	}, "\r\n")

	addr := s.cfg.SMTPHost + ":" + s.cfg.SMTPPort

	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" && s.cfg.SMTPPassword != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, s.cfg.EmailFrom, []string{s.cfg.EmailTo}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.log.Infof("email sent to %s", s.cfg.EmailTo)
	return nil
}
