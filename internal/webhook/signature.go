package webhook

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // dictated by the platform's signature scheme
	"encoding/hex"
	"fmt"
	"strings"

	apperrors "github.com/garyellow/coast-messenger-go/internal/errors"
)

// SignatureHeader carries the sender's HMAC-SHA1 digest of the raw
// request body.
const SignatureHeader = "X-Hub-Signature"

// VerifySignature checks the X-Hub-Signature header value against the
// HMAC-SHA1 digest of body keyed with appSecret. The header format is
// "sha1=<hex digest>".
func VerifySignature(appSecret string, body []byte, header string) error {
	if appSecret == "" {
		return apperrors.ErrMissingSecret
	}

	scheme, digest, found := strings.Cut(header, "=")
	if !found || scheme != "sha1" {
		return fmt.Errorf("%w: malformed signature header", apperrors.ErrInvalidSignature)
	}

	mac := hmac.New(sha1.New, []byte(appSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(digest), []byte(expected)) {
		return apperrors.ErrInvalidSignature
	}
	return nil
}
