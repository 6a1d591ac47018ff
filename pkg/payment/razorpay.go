package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

const razorpayBaseURL = "https://api.razorpay.com"

// RazorpayProvider talks to the Razorpay Orders API and checks checkout
// signatures: HMAC-SHA256(order_id|payment_id, key_secret).
type RazorpayProvider struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	client    *http.Client
}

func NewRazorpayProvider(keyID, keySecret string) *RazorpayProvider {
	return &RazorpayProvider{
		BaseURL:   razorpayBaseURL,
		KeyID:     keyID,
		KeySecret: keySecret,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *RazorpayProvider) Name() string { return "razorpay" }

func (p *RazorpayProvider) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	paise := req.Amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if paise <= 0 {
		return nil, fmt.Errorf("razorpay: amount must be positive")
	}
	body, _ := json.Marshal(map[string]interface{}{
		"amount":   paise,
		"currency": "INR",
		"receipt":  req.Receipt,
		"notes":    req.Notes,
	})
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(p.KeyID, p.KeySecret)
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("razorpay create order: %d %s", resp.StatusCode, string(respBody))
	}
	var o Order
	if err := json.Unmarshal(respBody, &o); err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", err)
	}
	o.KeyID = p.KeyID
	return &o, nil
}

func (p *RazorpayProvider) VerifySignature(orderID, paymentID, signature string) bool {
	if p.KeySecret == "" || orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	return hmac.Equal([]byte(signature), []byte(Sign(p.KeySecret, orderID, paymentID)))
}

// Sign computes the checkout signature for orderID and paymentID.
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
