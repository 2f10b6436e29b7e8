package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether plain matches the stored bcrypt hash.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

const resetTokenTTL = 2 * time.Hour

var ErrResetTokenInvalid = errors.New("invalid or expired reset token")

// MakeResetToken builds a password-reset token bound to the user's current
// password hash, so the token stops working once the password changes.
// Format: base64url(expiryUnix) + "." + base64url(hmac).
func MakeResetToken(secret []byte, userID, passwordHash string, now time.Time) string {
	expiry := strconv.FormatInt(now.Add(resetTokenTTL).Unix(), 10)
	sig := resetSignature(secret, userID, passwordHash, expiry)
	return base64.RawURLEncoding.EncodeToString([]byte(expiry)) + "." + sig
}

// CheckResetToken validates a token produced by MakeResetToken.
func CheckResetToken(secret []byte, userID, passwordHash, token string, now time.Time) error {
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return ErrResetTokenInvalid
	}

	rawExpiry, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return ErrResetTokenInvalid
	}
	expiryUnix, err := strconv.ParseInt(string(rawExpiry), 10, 64)
	if err != nil || now.Unix() > expiryUnix {
		return ErrResetTokenInvalid
	}

	want := resetSignature(secret, userID, passwordHash, string(rawExpiry))
	if !hmac.Equal([]byte(want), []byte(parts[1])) {
		return ErrResetTokenInvalid
	}
	return nil
}

func resetSignature(secret []byte, userID, passwordHash, expiry string) string {
	mac := hmac.New(sha256.New, secret)
	fmt.Fprintf(mac, "%s:%s:%s", userID, passwordHash, expiry)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
