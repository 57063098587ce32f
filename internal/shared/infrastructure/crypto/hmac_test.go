package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignPayload_Deterministic(t *testing.T) {
	payload := []byte(`{"meta":{"event_name":"order_created"}}`)
	first := SignPayload(payload, "secret")
	second := SignPayload(payload, "secret")
	require.Equal(t, first, second)
	require.Len(t, first, 64) // hex-encoded SHA-256
}

func TestVerifyHMACSignature_RoundTrip(t *testing.T) {
	payload := []byte("payload bytes")
	signature := SignPayload(payload, "secret")
	require.True(t, VerifyHMACSignature(payload, "secret", signature))
}

func TestVerifyHMACSignature_WrongSecret(t *testing.T) {
	payload := []byte("payload bytes")
	signature := SignPayload(payload, "secret")
	require.False(t, VerifyHMACSignature(payload, "other-secret", signature))
}

func TestVerifyHMACSignature_TamperedPayload(t *testing.T) {
	signature := SignPayload([]byte("original"), "secret")
	require.False(t, VerifyHMACSignature([]byte("tampered"), "secret", signature))
}

func TestVerifyHMACSignature_EmptyCandidate(t *testing.T) {
	require.False(t, VerifyHMACSignature([]byte("payload"), "secret", ""))
}
