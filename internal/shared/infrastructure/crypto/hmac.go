package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignPayload computes the hex-encoded HMAC-SHA256 digest of payload under
// the shared secret. This is the signature scheme billing webhooks carry in
// their signature header.
func SignPayload(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyHMACSignature reports whether candidate is the valid hex-encoded
// HMAC-SHA256 signature of payload under secret. The comparison does not
// short-circuit on the recomputed digest.
func VerifyHMACSignature(payload []byte, secret, candidate string) bool {
	expected := SignPayload(payload, secret)
	return hmac.Equal([]byte(expected), []byte(candidate))
}
