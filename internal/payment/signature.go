package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign returns the lowercase hex HMAC-SHA256 of payload.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPaymentSignature checks the checkout signature the gateway hands the
// client: HMAC_SHA256(secret, order_id + "|" + payment_id).
func VerifyPaymentSignature(secret, orderID, paymentID, signature string) bool {
	return verify(secret, []byte(orderID+"|"+paymentID), signature)
}

// VerifyWebhookSignature checks X-Razorpay-Signature against the raw body.
func VerifyWebhookSignature(secret string, body []byte, signature string) bool {
	return verify(secret, body, signature)
}

func verify(secret string, payload []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := Sign(secret, payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}
