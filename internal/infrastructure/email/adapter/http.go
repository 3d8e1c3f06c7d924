package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/imogoapp/whatsapp-webhook/internal/infrastructure/email/port"
)

// HTTPSender posts reset notifications to the external SMTP relay endpoint.
type HTTPSender struct {
	url    string
	client *http.Client
}

// NewHTTPSenderFromEnv constructs a sender using the EMAIL_API_URL env var.
func NewHTTPSenderFromEnv() (*HTTPSender, error) {
	url := os.Getenv("EMAIL_API_URL")
	if url == "" {
		return nil, errors.New("email: EMAIL_API_URL environment variable is not set")
	}
	return &HTTPSender{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

var _ port.Sender = (*HTTPSender)(nil)

type resetPayload struct {
	Name     string `json:"nome"`
	Email    string `json:"email"`
	Password string `json:"senha"`
}

func (s *HTTPSender) SendPasswordReset(ctx context.Context, name, email, password string) error {
	body, err := json.Marshal(resetPayload{Name: name, Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("email: encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("email: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("email: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("email: relay returned status %d", resp.StatusCode)
	}
	return nil
}
