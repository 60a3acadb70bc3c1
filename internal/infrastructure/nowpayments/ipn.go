package nowpayments

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/LavaJover/wolf-checkout-service/internal/domain"
)

// SignatureHeader carries the hex HMAC-SHA512 of the callback body.
const SignatureHeader = "x-nowpayments-sig"

// ParseIPN verifies the callback signature and decodes the payment update.
func (c *Client) ParseIPN(body []byte, signature string) (*domain.PaymentUpdate, error) {
	if c.ipnSecret == "" {
		return nil, fmt.Errorf("%w: ipn secret is not configured", domain.ErrInvalidSignature)
	}
	if err := VerifySignature(body, signature, c.ipnSecret); err != nil {
		return nil, err
	}

	var payload ipnPayload
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, domain.NewValidationError("body", "malformed payment notification")
	}
	if payload.OrderID == "" || payload.PaymentStatus == "" {
		return nil, domain.NewValidationError("body", "order_id and payment_status are required")
	}

	return &domain.PaymentUpdate{
		OrderID:       payload.OrderID,
		PaymentID:     string(payload.PaymentID),
		PaymentStatus: payload.PaymentStatus,
		ActuallyPaid:  payload.ActuallyPaid.String(),
		PayCurrency:   payload.PayCurrency,
	}, nil
}

// VerifySignature checks signature against the HMAC-SHA512 of body with its
// object keys sorted, which is how NOWPayments signs callbacks.
func VerifySignature(body []byte, signature, secret string) error {
	expected, err := Sign(body, secret)
	if err != nil {
		return err
	}
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature)))) {
		return domain.ErrInvalidSignature
	}
	return nil
}

func Sign(body []byte, secret string) (string, error) {
	canonical, err := canonicalJSON(body)
	if err != nil {
		return "", domain.NewValidationError("body", "payment notification is not valid JSON")
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(canonical)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// canonicalJSON re-encodes body with sorted keys, numbers kept verbatim and
// no HTML escaping.
func canonicalJSON(body []byte) ([]byte, error) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
