package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// maxAuthAge is the replay window accepted for Telegram login payloads.
const maxAuthAge = 24 * time.Hour

// TelegramVerifier validates Telegram Login Widget payloads against the bot token.
type TelegramVerifier struct {
	secretKey []byte
	nowFunc   func() time.Time
}

// NewTelegramVerifier derives the signing key from the bot token once up front.
func NewTelegramVerifier(botToken string) *TelegramVerifier {
	secret := sha256.Sum256([]byte(botToken))
	return &TelegramVerifier{secretKey: secret[:]}
}

// Verify reports whether the supplied login fields carry a valid signature and
// were issued within the replay window. The result is a plain boolean so
// callers cannot distinguish a forged hash from a stale payload.
func (v *TelegramVerifier) Verify(fields map[string]string) bool {
	suppliedHash, ok := fields["hash"]
	if !ok || suppliedHash == "" {
		return false
	}

	// The data-check string sorts the formatted "key=value" lines, not the
	// keys. Telegram's widget contract depends on this exact ordering.
	lines := make([]string, 0, len(fields))
	for key, value := range fields {
		if key == "hash" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s=%s", key, value))
	}
	sort.Strings(lines)
	checkString := strings.Join(lines, "\n")

	mac := hmac.New(sha256.New, v.secretKey)
	mac.Write([]byte(checkString))
	computed := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(computed), []byte(suppliedHash)) {
		return false
	}

	// Missing or malformed auth_date parses as zero and always fails the
	// freshness check.
	authDate, _ := strconv.ParseInt(fields["auth_date"], 10, 64)
	if v.now().Unix()-authDate > int64(maxAuthAge/time.Second) {
		return false
	}

	return true
}

func (v *TelegramVerifier) now() time.Time {
	if v.nowFunc != nil {
		return v.nowFunc()
	}
	return time.Now().UTC()
}
