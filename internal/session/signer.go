// Package session signs and verifies cookie values.
//
// The format is the one produced by Express' cookie-parser so cookies issued
// by the previous deployment keep validating: "s:" + value + "." + the
// unpadded standard base64 HMAC-SHA256 of value.
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

const prefix = "s:"

var (
	// ErrMalformed is returned for values that are not in signed form.
	ErrMalformed = errors.New("session: malformed signed value")
	// ErrBadSignature is returned when the signature does not match.
	ErrBadSignature = errors.New("session: signature mismatch")
)

// Signer signs cookie values with a server secret.
type Signer struct {
	secret []byte
}

// NewSigner returns a signer for secret.
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign returns the signed form of value.
func (s *Signer) Sign(value string) string {
	return prefix + value + "." + s.mac(value)
}

// Unsign verifies signed and returns the original value.
func (s *Signer) Unsign(signed string) (string, error) {
	if !strings.HasPrefix(signed, prefix) {
		return "", ErrMalformed
	}
	body := strings.TrimPrefix(signed, prefix)
	dot := strings.LastIndexByte(body, '.')
	if dot < 0 {
		return "", ErrMalformed
	}
	value, sig := body[:dot], body[dot+1:]
	if !hmac.Equal([]byte(sig), []byte(s.mac(value))) {
		return "", ErrBadSignature
	}
	return value, nil
}

func (s *Signer) mac(value string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(value))
	return base64.RawStdEncoding.EncodeToString(h.Sum(nil))
}
