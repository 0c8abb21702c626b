// SMTP 메일 알림 클라이언트
//
// 포트 465는 암시적 TLS(SMTPS), 그 외 포트는 평문 연결 후 서버가 지원하면 STARTTLS로 전환
// 본문은 HTML (로그 발췌, 요약, severity 색상, 진단 경로, 조치 방안, 보고서 경로)

package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/logsentry/agent/internal/config"
	"github.com/logsentry/agent/internal/model"
)

const (
	smtpsPort   = 465
	mailTimeout = 30 * time.Second
	mailSubject = "[ALERT] error detected in monitored logs"
)

var mailBodyTmpl = template.Must(template.New("mail").Parse(`<html>
<body>
<h2>System error alert</h2>
<p><strong>Time:</strong> {{.Timestamp}}</p>

<h3>Log excerpt</h3>
<pre style="background:#f4f4f4; padding:10px; border:1px solid #ccc; border-radius:5px;">{{.Context}}</pre>

<h3>Analysis</h3>
<ul>
  <li><strong>Summary:</strong> {{.Summary}}</li>
  <li><strong>Severity:</strong> <span style="color:{{.Color}};">{{.Severity}}</span></li>
</ul>

<h4>Diagnosis path</h4>
<ol>{{range .Diagnosis}}<li>{{.}}</li>{{end}}</ol>

<h4>Solution</h4>
<p><strong>Immediate:</strong> {{.Immediate}}</p>
<p><strong>Long term:</strong> {{.LongTerm}}</p>

<p><strong>Report:</strong> {{.Report}}</p>

<hr>
<small>Generated automatically by logsentry.</small>
</body>
</html>
`))

type mailBody struct {
	Timestamp string
	Context   string
	Summary   string
	Severity  string
	Color     template.CSS
	Diagnosis []string
	Immediate string
	LongTerm  string
	Report    string
}

// MailClient - SMTP 메일 전송 클라이언트
type MailClient struct {
	host       string
	port       int
	username   string
	password   string
	recipients []string
	senderName string
	timeout    time.Duration
	now        func() time.Time
}

func NewMailClient(cfg config.EmailConfig) *MailClient {
	return &MailClient{
		host:       cfg.SMTPServer,
		port:       cfg.Port,
		username:   cfg.Username,
		password:   cfg.Password,
		recipients: append([]string(nil), cfg.Recipients...),
		senderName: cfg.SenderName,
		timeout:    mailTimeout,
		now:        time.Now,
	}
}

// Notify - 분석 결과를 HTML 메일로 전송
//
// 처리 흐름:
//  1. 메시지(헤더 + quoted-printable HTML 본문) 생성
//  2. SMTP 연결 (465: TLS, 그 외: STARTTLS 가능 시 전환)
//  3. 인증 후 수신자 전체에게 1통 전송
func (c *MailClient) Notify(ctx context.Context, analysis *model.Analysis, contextText, location string) error {
	if c.host == "" || len(c.recipients) == 0 {
		return fmt.Errorf("smtp server or recipients not configured")
	}

	msg, err := c.buildMessage(analysis, contextText, location)
	if err != nil {
		return err
	}

	client, err := c.dial(ctx)
	if err != nil {
		return fmt.Errorf("smtp connect %s:%d: %w", c.host, c.port, err)
	}
	defer client.Close()

	if c.port != smtpsPort {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: c.host}); err != nil {
				return fmt.Errorf("smtp starttls: %w", err)
			}
		}
	}

	if c.username != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(smtp.PlainAuth("", c.username, c.password, c.host)); err != nil {
				return fmt.Errorf("smtp auth: %w", err)
			}
		}
	}

	if err := client.Mail(c.username); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	for _, rcpt := range c.recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp rcpt %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data close: %w", err)
	}
	return client.Quit()
}

func (c *MailClient) dial(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(c.host, strconv.Itoa(c.port))
	dialer := &net.Dialer{Timeout: c.timeout}

	var (
		conn net.Conn
		err  error
	)
	if c.port == smtpsPort {
		tlsDialer := &tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: c.host}}
		conn, err = tlsDialer.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, err
	}

	// 전체 대화에 타임아웃 적용 (서버가 응답 없이 붙잡고 있는 경우 방지)
	_ = conn.SetDeadline(time.Now().Add(c.timeout))

	client, err := smtp.NewClient(conn, c.host)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return client, nil
}

// buildMessage - RFC 5322 메시지 바이트 생성
func (c *MailClient) buildMessage(analysis *model.Analysis, contextText, location string) ([]byte, error) {
	if analysis == nil {
		analysis = model.FallbackAnalysis("")
	}

	var html bytes.Buffer
	if err := mailBodyTmpl.Execute(&html, mailBody{
		Timestamp: orDefault(analysis.Timestamp, "unknown"),
		Context:   contextText,
		Summary:   orDefault(analysis.Summary, "not provided"),
		Severity:  orDefault(analysis.Severity, "unknown"),
		Color:     template.CSS(mailSeverityColor(analysis.Severity)),
		Diagnosis: analysis.DiagnosisPath,
		Immediate: orDefault(analysis.Solution.Immediate, "none"),
		LongTerm:  orDefault(analysis.Solution.LongTerm, "none"),
		Report:    orDefault(location, "not saved"),
	}); err != nil {
		return nil, fmt.Errorf("render mail body: %w", err)
	}

	from := mail.Address{Name: c.senderName, Address: c.username}
	to := make([]string, 0, len(c.recipients))
	for _, r := range c.recipients {
		to = append(to, (&mail.Address{Address: r}).String())
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from.String())
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", mailSubject))
	fmt.Fprintf(&msg, "Date: %s\r\n", c.now().Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")

	qp := quotedprintable.NewWriter(&msg)
	if _, err := qp.Write(html.Bytes()); err != nil {
		return nil, fmt.Errorf("encode mail body: %w", err)
	}
	if err := qp.Close(); err != nil {
		return nil, fmt.Errorf("encode mail body: %w", err)
	}
	return msg.Bytes(), nil
}

func mailSeverityColor(severity string) string {
	switch strings.ToLower(severity) {
	case "critical", "high":
		return "red"
	case "medium":
		return "orange"
	case "low":
		return "green"
	default:
		return "gray"
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
