package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"
)

const testBotToken = "123456:test-bot-token"

// signFields computes the widget hash the way Telegram's servers do.
func signFields(t *testing.T, botToken string, fields map[string]string) string {
	t.Helper()

	var lines []string
	for key, value := range fields {
		if key == "hash" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s=%s", key, value))
	}
	sort.Strings(lines)

	secret := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestTelegramVerifierAcceptsSignedPayload(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	verifier := NewTelegramVerifier(testBotToken)
	verifier.nowFunc = func() time.Time { return now }

	fields := map[string]string{
		"id":         "1001",
		"first_name": "Ann",
		"username":   "ann_dev",
		"auth_date":  fmt.Sprintf("%d", now.Unix()),
	}
	fields["hash"] = signFields(t, testBotToken, fields)

	if !verifier.Verify(fields) {
		t.Fatal("expected valid payload to verify")
	}
}

func TestTelegramVerifierRejectsTamperedHash(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	verifier := NewTelegramVerifier(testBotToken)
	verifier.nowFunc = func() time.Time { return now }

	fields := map[string]string{
		"id":        "1001",
		"auth_date": fmt.Sprintf("%d", now.Unix()),
	}
	valid := signFields(t, testBotToken, fields)

	// Flip one character of the hex digest.
	mutated := []byte(valid)
	if mutated[0] == 'a' {
		mutated[0] = 'b'
	} else {
		mutated[0] = 'a'
	}
	fields["hash"] = string(mutated)

	if verifier.Verify(fields) {
		t.Fatal("expected mutated hash to be rejected")
	}
}

func TestTelegramVerifierRejectsMissingHash(t *testing.T) {
	verifier := NewTelegramVerifier(testBotToken)
	if verifier.Verify(map[string]string{"id": "1001", "auth_date": "123"}) {
		t.Fatal("expected payload without hash to be rejected")
	}
}

func TestTelegramVerifierFreshnessWindow(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	verifier := NewTelegramVerifier(testBotToken)
	verifier.nowFunc = func() time.Time { return now }

	cases := []struct {
		name     string
		authDate int64
		want     bool
	}{
		{name: "just inside window", authDate: now.Unix() - 86399, want: true},
		{name: "just outside window", authDate: now.Unix() - 86401, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fields := map[string]string{
				"id":        "1001",
				"auth_date": fmt.Sprintf("%d", tc.authDate),
			}
			fields["hash"] = signFields(t, testBotToken, fields)

			if got := verifier.Verify(fields); got != tc.want {
				t.Fatalf("Verify with auth_date %d = %v, want %v", tc.authDate, got, tc.want)
			}
		})
	}
}

func TestTelegramVerifierMissingAuthDateAlwaysStale(t *testing.T) {
	verifier := NewTelegramVerifier(testBotToken)

	fields := map[string]string{"id": "1001", "first_name": "Ann"}
	fields["hash"] = signFields(t, testBotToken, fields)

	if verifier.Verify(fields) {
		t.Fatal("expected payload without auth_date to fail freshness")
	}
}

// The canonical string sorts whole "key=value" lines, not keys. With an empty
// value, "b0=x" sorts before "b=" ('0' is 0x30, '=' is 0x3d) even though the
// keys alone would order as b, b0.
func TestTelegramVerifierSortsFormattedLines(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	verifier := NewTelegramVerifier(testBotToken)
	verifier.nowFunc = func() time.Time { return now }

	fields := map[string]string{
		"b":         "",
		"b0":        "x",
		"auth_date": fmt.Sprintf("%d", now.Unix()),
	}
	fields["hash"] = signFields(t, testBotToken, fields)

	if !verifier.Verify(fields) {
		t.Fatal("expected line-sorted canonical string to match")
	}
}
