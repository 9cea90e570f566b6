package shopifywebhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/angelmondragon/limited-access-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/limited-access-backend/pkg/errors"
)

// SignatureHeader carries the base64 HMAC-SHA256 of the raw body.
const SignatureHeader = "X-Shopify-Hmac-Sha256"

var (
	ErrSecretNotConfigured = errors.New("shopify webhook secret not configured")
	ErrMissingSignature    = errors.New("shopify webhook signature missing")
	ErrInvalidSignature    = errors.New("shopify webhook signature mismatch")
)

// Verifier authenticates webhook bodies with the shared secret.
type Verifier struct {
	secret []byte
}

// NewVerifier builds a verifier keyed with secret exactly as configured.
// An empty secret is accepted here and reported as a configuration error
// on every Verify call.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Configured reports whether a secret is present.
func (v *Verifier) Configured() bool {
	return v != nil && len(v.secret) > 0
}

// Verify checks signature against raw. The bytes must be exactly those received.
func (v *Verifier) Verify(raw []byte, signature string) error {
	if !v.Configured() {
		return pkgerrors.Wrap(pkgerrors.CodeConfiguration, ErrSecretNotConfigured, "webhook verification unavailable")
	}
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, ErrMissingSignature, "missing webhook signature")
	}

	expected := sign(v.secret, raw)
	// valid signatures are always 44 bytes, so the length check inside hmac.Equal leaks nothing
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, ErrInvalidSignature, "invalid webhook signature")
	}
	return nil
}

// VerifyAndDecode verifies raw and then decodes it as kind. Nothing is decoded
// unless the signature matches.
func (v *Verifier) VerifyAndDecode(kind enums.WebhookKind, raw []byte, signature string) (*Event, error) {
	if err := v.Verify(raw, signature); err != nil {
		return nil, err
	}
	return Decode(kind, raw)
}

// Sign returns the header value Shopify would send for raw under secret.
func Sign(secret string, raw []byte) string {
	return sign([]byte(secret), raw)
}

func sign(secret, raw []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(raw)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
