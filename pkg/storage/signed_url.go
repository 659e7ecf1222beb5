package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignedURLSigner creates and validates download tokens bound to the user
// that requested the export.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
// now defaults to time.Now.
func NewSignedURLSigner(secret string, ttl time.Duration, now func() time.Time) *SignedURLSigner {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: now}
}

// TTL reports how long generated tokens stay valid.
func (s *SignedURLSigner) TTL() time.Duration { return s.ttl }

// Generate returns a signed token referencing the owner and file path.
func (s *SignedURLSigner) Generate(ownerID int64, relPath string) (string, time.Time, error) {
	if ownerID <= 0 || relPath == "" {
		return "", time.Time{}, fmt.Errorf("owner and path required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	owner := strconv.FormatInt(ownerID, 10)
	ts := strconv.FormatInt(expiresAt.Unix(), 10)
	encodedPath := base64.RawURLEncoding.EncodeToString([]byte(relPath))
	token := strings.Join([]string{owner, ts, encodedPath, s.sign(owner, ts, encodedPath)}, ".")
	return token, expiresAt, nil
}

// Parse validates a token and returns the owner and path it references.
func (s *SignedURLSigner) Parse(token string) (ownerID int64, relPath string, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return 0, "", fmt.Errorf("invalid token format")
	}
	owner, ts, encodedPath, signature := parts[0], parts[1], parts[2], parts[3]

	if !hmac.Equal([]byte(s.sign(owner, ts, encodedPath)), []byte(signature)) {
		return 0, "", fmt.Errorf("invalid token signature")
	}
	expUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid timestamp")
	}
	if s.now().After(time.Unix(expUnix, 0)) {
		return 0, "", fmt.Errorf("token expired")
	}
	ownerID, err = strconv.ParseInt(owner, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid owner")
	}
	rawPath, err := base64.RawURLEncoding.DecodeString(encodedPath)
	if err != nil {
		return 0, "", fmt.Errorf("decode path: %w", err)
	}
	return ownerID, string(rawPath), nil
}

func (s *SignedURLSigner) sign(owner, ts, encodedPath string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(owner + "|" + ts + "|" + encodedPath))
	return hex.EncodeToString(mac.Sum(nil))
}
