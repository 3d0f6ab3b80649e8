// Package whatsapp manages broker WhatsApp instances through an
// Evolution-style gateway API.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"imobdesk/server/internal/models"
)

type Service struct {
	baseURL string
	apiKey  string
	logger  *logrus.Logger
	client  *http.Client
}

// connectionState is what the gateway reports for an instance
type connectionState struct {
	Instance struct {
		State string `json:"state"`
	} `json:"instance"`
}

// qrCodeResponse carries the pairing QR for a fresh instance
type qrCodeResponse struct {
	Code   string `json:"code"`
	Base64 string `json:"base64"`
}

func NewService(baseURL, apiKey string, logger *logrus.Logger) *Service {
	return &Service{
		baseURL: baseURL,
		apiKey:  apiKey,
		logger:  logger,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Enabled reports whether a gateway is configured
func (s *Service) Enabled() bool {
	return s.baseURL != ""
}

// CreateInstance registers a new instance on the gateway
func (s *Service) CreateInstance(ctx context.Context, instanceKey string) error {
	payload := map[string]interface{}{
		"instanceName": instanceKey,
		"qrcode":       true,
	}
	return s.post(ctx, "/instance/create", payload, nil)
}

// GetQRCode fetches the pairing code for an instance
func (s *Service) GetQRCode(ctx context.Context, instanceKey string) (string, error) {
	var qr qrCodeResponse
	if err := s.get(ctx, "/instance/connect/"+instanceKey, &qr); err != nil {
		return "", err
	}
	if qr.Base64 == "" {
		return "", errors.New("gateway returned no QR code - instance may already be connected")
	}
	return qr.Base64, nil
}

// ConnectionStatus maps the gateway state onto our instance statuses
func (s *Service) ConnectionStatus(ctx context.Context, instanceKey string) (string, error) {
	var state connectionState
	if err := s.get(ctx, "/instance/connectionState/"+instanceKey, &state); err != nil {
		return "", err
	}

	switch state.Instance.State {
	case "open":
		return models.InstanceConnected, nil
	case "connecting":
		return models.InstancePairing, nil
	default:
		return models.InstanceDisconnected, nil
	}
}

// Disconnect logs the instance out of WhatsApp
func (s *Service) Disconnect(ctx context.Context, instanceKey string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		s.baseURL+"/instance/logout/"+instanceKey, nil)
	if err != nil {
		return err
	}
	return s.do(req, nil)
}

// SendText sends a plain text message through an instance
func (s *Service) SendText(ctx context.Context, instanceKey, phone, text string) error {
	if phone == "" || text == "" {
		return errors.New("phone and text are required")
	}
	payload := map[string]interface{}{
		"number": phone,
		"text":   text,
	}
	return s.post(ctx, "/message/sendText/"+instanceKey, payload, nil)
}

func (s *Service) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal gateway payload: %v", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return s.do(req, out)
}

func (s *Service) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return err
	}
	return s.do(req, out)
}

func (s *Service) do(req *http.Request, out interface{}) error {
	if !s.Enabled() {
		return errors.New("whatsapp gateway is not configured")
	}
	req.Header.Set("apikey", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call whatsapp gateway: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return errors.New("invalid gateway API key")
		case http.StatusNotFound:
			return errors.New("instance not found on the gateway")
		case http.StatusBadRequest:
			return fmt.Errorf("gateway rejected the request: %s", string(data))
		default:
			return fmt.Errorf("whatsapp gateway error (status %d): %s", resp.StatusCode, string(data))
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode gateway response: %v", err)
		}
	}
	return nil
}
