package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// signHMAC returns the lowercase hex HMAC-SHA256 of message under secret.
func signHMAC(secret, message []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}

// verifyHMAC checks a hex HMAC-SHA256 signature in constant time.
func verifyHMAC(secret, message []byte, signature string) bool {
	expected := signHMAC(secret, message)
	return hmac.Equal([]byte(expected), []byte(signature))
}
