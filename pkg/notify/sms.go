package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// MSG91 sends OTP codes through the MSG91 v5 OTP API.
type MSG91 struct {
	BaseURL    string
	AuthKey    string
	TemplateID string
	client     *http.Client
}

func NewMSG91(baseURL, authKey, templateID string) *MSG91 {
	return &MSG91{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		AuthKey:    authKey,
		TemplateID: templateID,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// normalizeMobile keeps the digits and prefixes the 91 country code to
// ten-digit numbers.
func normalizeMobile(mobile string) string {
	var b strings.Builder
	for _, r := range mobile {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 10 {
		return "91" + digits
	}
	return digits
}

func (m *MSG91) SendOTP(ctx context.Context, mobile, otp string) error {
	q := url.Values{}
	q.Set("template_id", m.TemplateID)
	q.Set("mobile", normalizeMobile(mobile))
	q.Set("otp", otp)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.BaseURL+"/api/v5/otp?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("authkey", m.AuthKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("msg91: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("msg91: status %d: %s", resp.StatusCode, raw)
	}
	var out struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("msg91: decode: %w", err)
	}
	if out.Type != "success" {
		return fmt.Errorf("msg91: %s", out.Message)
	}
	return nil
}
