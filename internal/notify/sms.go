package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// SMSNotifier sends alerts through an smsc-style HTTP gateway. Only attack
// and crash notifications are forwarded.
type SMSNotifier struct {
	endpoint string
	login    string
	password string
	phone    string
	client   *http.Client
}

// NewSMSNotifier creates an SMS backend
func NewSMSNotifier(endpoint, login, password, phone string) *SMSNotifier {
	return &SMSNotifier{
		endpoint: endpoint,
		login:    login,
		password: password,
		phone:    phone,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Notify sends the message as an SMS
func (s *SMSNotifier) Notify(notification Notification) error {
	if notification.Type != NotificationTypeAttack && notification.Type != NotificationTypeCrash {
		return nil
	}

	params := url.Values{}
	params.Set("login", s.login)
	params.Set("psw", s.password)
	params.Set("phones", s.phone)
	params.Set("mes", notification.Title+": "+notification.Message)
	params.Set("translit", "1")
	params.Set("cost", "0")
	params.Set("charset", "utf-8")

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build sms request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("failed to read sms response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sms gateway returned %s", resp.Status)
	}
	if !bytes.HasPrefix(body, []byte("OK")) {
		return fmt.Errorf("sms gateway rejected message: %s", bytes.TrimSpace(body))
	}
	return nil
}

// Close cleans up resources (no-op for sms notifier)
func (s *SMSNotifier) Close() error {
	return nil
}
