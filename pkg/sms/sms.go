// Package sms delivers one-time codes to phone numbers.
package sms

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
)

// DefaultMSG91URL is the MSG91 HTTP send endpoint.
const DefaultMSG91URL = "https://api.msg91.com/api/sendhttp.php"

// Sender dispatches a one-time code to a 10-digit phone number.
type Sender interface {
	Send(ctx context.Context, phone, code string) error
}

// Message renders the text delivered to the user.
func Message(code string) string {
	return fmt.Sprintf("Your OTP for FlavorFix is %s. Valid for 5 minutes.", code)
}

// LogSender writes codes to the process log instead of sending them.
type LogSender struct{}

func (LogSender) Send(_ context.Context, phone, code string) error {
	log.Printf("OTP for %s: %s", phone, code)
	return nil
}

// MSG91Sender sends codes through the MSG91 HTTP API.
type MSG91Sender struct {
	AuthKey  string
	SenderID string
	BaseURL  string
	Timeout  time.Duration
}

// NewMSG91Sender creates a sender against the public MSG91 endpoint.
func NewMSG91Sender(authKey, senderID string) *MSG91Sender {
	return &MSG91Sender{
		AuthKey:  authKey,
		SenderID: senderID,
		BaseURL:  DefaultMSG91URL,
		Timeout:  10 * time.Second,
	}
}

// Send issues a GET request to MSG91. Numbers are sent with the 91 country prefix.
func (s *MSG91Sender) Send(ctx context.Context, phone, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := url.Values{}
	params.Set("authkey", s.AuthKey)
	params.Set("mobiles", "91"+phone)
	params.Set("message", Message(code))
	params.Set("sender", s.SenderID)
	params.Set("route", "4")

	agent := fiber.Get(s.BaseURL)
	agent.QueryString(params.Encode())
	if s.Timeout > 0 {
		agent.Timeout(s.Timeout)
	}

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("msg91 request failed: %w", errs[0])
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("msg91 returned status %d: %s", status, body)
	}
	return nil
}
