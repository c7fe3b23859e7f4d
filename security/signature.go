package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// PaymentSignature returns hex(HMAC-SHA256(secret, orderID + "|" + paymentID)).
func PaymentSignature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPaymentSignature compares the provider signature against the expected
// digest in constant time. The comparison is exact on the hex encoding.
func VerifyPaymentSignature(secret, orderID, paymentID, signature string) bool {
	expected := PaymentSignature(secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
