package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/smtp"
	"os"
	"strconv"
	"time"

	"github.com/jordan-wright/email"
	"gopkg.in/gomail.v2"
)

// SaleConfirmationData feeds the confirmation email template.
type SaleConfirmationData struct {
	SaleCode    string
	EventName   string
	EventDate   string
	Items       string
	TotalAmount float64
	DetailLink  string
}

// SendSaleConfirmationEmail sends the HTML confirmation with the sale QR
// embedded. Fire-and-forget: failures are logged, never surfaced.
func SendSaleConfirmationEmail(to string, data SaleConfirmationData, qrPNG []byte) {
	go func() {
		tmplPath := "templates/sale_confirmation.html"
		tmpl, err := template.ParseFiles(tmplPath)
		if err != nil {
			log.Printf("failed to load email template: %v", err)
			return
		}

		var body bytes.Buffer
		if err := tmpl.Execute(&body, data); err != nil {
			log.Printf("failed to render email template: %v", err)
			return
		}

		host := os.Getenv("SMTP_HOST")
		port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
		username := os.Getenv("SMTP_USERNAME")
		password := os.Getenv("SMTP_PASSWORD")
		from := os.Getenv("SMTP_FROM")

		m := gomail.NewMessage()
		m.SetHeader("From", from)
		m.SetHeader("To", to)
		m.SetHeader("Subject", "Order confirmation #"+data.SaleCode)
		m.SetBody("text/html", body.String())

		if len(qrPNG) > 0 {
			m.Embed("qr_ticket.png", gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(qrPNG)
				return err
			}), gomail.SetHeader(map[string][]string{
				"Content-Type":        {"image/png"},
				"Content-ID":          {"<qr_ticket>"},
				"Content-Disposition": {"inline"},
			}))
		}

		d := gomail.NewDialer(host, port, username, password)
		if err := d.DialAndSend(m); err != nil {
			log.Printf("failed to send confirmation email to %s: %v", to, err)
		}
	}()
}

// SendInviteEmail notifies a table guest of their seat invite. Plain text.
func SendInviteEmail(to, guestName, hostName, eventName, inviteLink string, expiresAt time.Time) {
	go func() {
		host := os.Getenv("SMTP_HOST")
		port := os.Getenv("SMTP_PORT")
		username := os.Getenv("SMTP_USERNAME")
		password := os.Getenv("SMTP_PASSWORD")
		from := os.Getenv("SMTP_FROM")

		e := email.NewEmail()
		e.From = from
		e.To = []string{to}
		e.Subject = fmt.Sprintf("%s invited you to %s", hostName, eventName)
		e.Text = []byte(fmt.Sprintf(
			"Hi %s,\n\n%s reserved a table seat for you at %s.\n"+
				"Confirm your seat and pay here before %s:\n\n%s\n\n"+
				"The link is single-use and expires automatically.\n",
			guestName, hostName, eventName,
			expiresAt.Format("02/01/2006 15:04"), inviteLink))

		auth := smtp.PlainAuth("", username, password, host)
		if err := e.Send(host+":"+port, auth); err != nil {
			log.Printf("failed to send invite email to %s: %v", to, err)
		}
	}()
}

// SendPasswordResetEmail delivers a reset link. Plain text.
func SendPasswordResetEmail(to, resetLink string) {
	go func() {
		host := os.Getenv("SMTP_HOST")
		port := os.Getenv("SMTP_PORT")
		username := os.Getenv("SMTP_USERNAME")
		password := os.Getenv("SMTP_PASSWORD")
		from := os.Getenv("SMTP_FROM")

		e := email.NewEmail()
		e.From = from
		e.To = []string{to}
		e.Subject = "Password reset"
		e.Text = []byte("Reset your password using this link (valid for 30 minutes):\n\n" + resetLink + "\n")

		auth := smtp.PlainAuth("", username, password, host)
		if err := e.Send(host+":"+port, auth); err != nil {
			log.Printf("failed to send reset email to %s: %v", to, err)
		}
	}()
}
