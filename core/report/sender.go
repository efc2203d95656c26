// ABOUTME: Email delivery stage sends the daily report over SMTP with the PDF attached
// ABOUTME: Images can optionally ride along as a zip archive; delivery failures never abort the run

package report

import (
	"archive/zip"
	"bytes"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
	"time"

	"blockchain-daily/core/domain"
	"blockchain-daily/core/interfaces"
)

// SMTPConfig holds the outbound mail settings.
type SMTPConfig struct {
	Server       string
	Port         int
	Username     string
	Password     string
	From         string
	To           []string
	AttachImages bool
}

// Sender delivers the daily report by email.
type Sender struct {
	cfg    SMTPConfig
	logger interfaces.Logger
}

// NewSender creates an email sender.
func NewSender(cfg SMTPConfig, logger interfaces.Logger) *Sender {
	return &Sender{cfg: cfg, logger: logger}
}

// Send mails the report. The PDF is the primary attachment; when it is
// missing the send is skipped entirely. Returns whether delivery succeeded.
func (s *Sender) Send(article domain.Article, dateStr, pdfPath string, images []domain.GeneratedImage, newsCount int) bool {
	if pdfPath == "" {
		s.logger.Warn("No PDF available, skipping email delivery", nil)
		return false
	}
	if s.cfg.Server == "" || len(s.cfg.To) == 0 {
		s.logger.Warn("Email not configured, skipping delivery", nil)
		return false
	}

	msg, err := s.buildMessage(article, dateStr, pdfPath, images, newsCount)
	if err != nil {
		s.logger.Error("Failed to build email message", map[string]interface{}{"error": err.Error()})
		return false
	}

	if err := s.deliver(msg); err != nil {
		s.logger.Error("Failed to send email", map[string]interface{}{"error": err.Error()})
		return false
	}

	s.logger.Info("Email sent", map[string]interface{}{
		"recipients": len(s.cfg.To),
		"date":       dateStr,
	})
	return true
}

// buildMessage assembles the multipart MIME payload.
func (s *Sender) buildMessage(article domain.Article, dateStr, pdfPath string, images []domain.GeneratedImage, newsCount int) ([]byte, error) {
	var buf bytes.Buffer
	boundary := fmt.Sprintf("=_chaindaily_%d", time.Now().UnixNano())

	subject := fmt.Sprintf("区块链每日观察 - %s", dateStr)
	if article.AttractiveTitle != "" {
		subject = fmt.Sprintf("%s - %s", article.AttractiveTitle, dateStr)
	}

	fmt.Fprintf(&buf, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(s.cfg.To, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=\"%s\"\r\n\r\n", boundary)

	// HTML body part.
	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	buf.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	buf.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")
	writeBase64(&buf, []byte(s.htmlBody(article, dateStr, newsCount, len(images))))

	// PDF attachment.
	pdfData, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF attachment: %w", err)
	}
	if err := writeAttachment(&buf, boundary, "application/pdf", filepath.Base(pdfPath), pdfData); err != nil {
		return nil, err
	}

	if s.cfg.AttachImages && len(images) > 0 {
		zipData, err := zipImages(images)
		if err != nil {
			s.logger.Warn("Failed to zip images, sending without them", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			name := fmt.Sprintf("images-%s.zip", dateStr)
			if err := writeAttachment(&buf, boundary, "application/zip", name, zipData); err != nil {
				return nil, err
			}
		}
	}

	fmt.Fprintf(&buf, "--%s--\r\n", boundary)
	return buf.Bytes(), nil
}

// htmlBody renders the short summary body.
func (s *Sender) htmlBody(article domain.Article, dateStr string, newsCount, imageCount int) string {
	var sb strings.Builder
	sb.WriteString("<html><body style=\"font-family: sans-serif;\">")
	fmt.Fprintf(&sb, "<h2>%s</h2>", article.Title)
	fmt.Fprintf(&sb, "<p>%s</p>", article.Description)
	sb.WriteString("<ul>")
	fmt.Fprintf(&sb, "<li>日期: %s</li>", dateStr)
	fmt.Fprintf(&sb, "<li>收录新闻: %d 条</li>", newsCount)
	fmt.Fprintf(&sb, "<li>配图: %d 张</li>", imageCount)
	sb.WriteString("</ul>")
	sb.WriteString("<p>完整报告见附件 PDF。</p>")
	sb.WriteString("</body></html>")
	return sb.String()
}

// deliver speaks SMTP with STARTTLS upgrade.
func (s *Sender) deliver(msg []byte) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server, s.cfg.Port)

	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Server}); err != nil {
			return fmt.Errorf("STARTTLS failed: %w", err)
		}
	}

	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Server)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP auth failed: %w", err)
		}
	}

	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("MAIL FROM rejected: %w", err)
	}
	for _, rcpt := range s.cfg.To {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("RCPT TO %s rejected: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA rejected: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}

	return client.Quit()
}

// writeAttachment appends one base64-encoded attachment part.
func writeAttachment(buf *bytes.Buffer, boundary, contentType, filename string, data []byte) error {
	fmt.Fprintf(buf, "--%s\r\n", boundary)
	fmt.Fprintf(buf, "Content-Type: %s; name=\"%s\"\r\n", contentType, filename)
	buf.WriteString("Content-Transfer-Encoding: base64\r\n")
	fmt.Fprintf(buf, "Content-Disposition: attachment; filename=\"%s\"\r\n\r\n", filename)
	writeBase64(buf, data)
	return nil
}

// writeBase64 emits base64 wrapped at 76 columns per RFC 2045.
func writeBase64(buf *bytes.Buffer, data []byte) {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 76 {
		buf.WriteString(encoded[:76])
		buf.WriteString("\r\n")
		encoded = encoded[76:]
	}
	buf.WriteString(encoded)
	buf.WriteString("\r\n")
}

// zipImages bundles image files in memory.
func zipImages(images []domain.GeneratedImage) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, img := range images {
		f, err := os.Open(img.Path)
		if err != nil {
			continue
		}
		w, err := zw.Create(filepath.Base(img.Path))
		if err != nil {
			f.Close()
			zw.Close()
			return nil, err
		}
		if _, err := io.Copy(w, f); err != nil {
			f.Close()
			zw.Close()
			return nil, err
		}
		f.Close()
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
