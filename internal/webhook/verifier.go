// Package webhook contains the pure inbound-delivery primitives: signature
// verification over the raw request body and classification of deliveries
// into ping, unparseable, irrelevant, or event.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
)

// VerifySignature checks the upstream HMAC-SHA256 signature. The digest is
// computed over the exact raw bytes as received and base64-encoded before a
// constant-time comparison; re-serializing the JSON first would invalidate
// the signature.
func VerifySignature(body []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}

// Sign computes the signature value the upstream platform would send for a
// payload. Used by tests and by operators replaying deliveries.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
