package rest

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
)

// Authentication headers
const (
	HeaderAPIKey    = "X-API-KEY"
	HeaderTimestamp = "X-API-TIMESTAMP"
	HeaderSignature = "X-API-SIGNATURE"
)

// Sign returns the lowercase hex HMAC-SHA512 of timestamp, the upper-cased
// verb, the request path and the raw body, keyed by secret.
func Sign(secret, timestamp, verb, path string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte(strings.ToUpper(verb)))
	mac.Write([]byte(path))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// AuthConfig holds the credentials accepted by HMACAuth
type AuthConfig struct {
	// Keys maps API key to secret
	Keys map[string]string
	// MaxSkew rejects timestamps (unix milliseconds) further than this from
	// now. Zero disables the check.
	MaxSkew time.Duration
	// Now defaults to time.Now
	Now func() time.Time
}

func isMutating(method string) bool {
	switch method {
	case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch:
		return true
	}
	return false
}

// HMACAuth rejects requests without a valid signature with 403. Mutating
// requests must also declare a JSON body.
func HMACAuth(cfg AuthConfig) fiber.Handler {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return func(c fiber.Ctx) error {
		if isMutating(c.Method()) {
			if !strings.Contains(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEApplicationJSON) {
				return respondError(c, fiber.StatusForbidden, "content-type must be application/json", "")
			}
		}

		apiKey := c.Get(HeaderAPIKey)
		timestamp := c.Get(HeaderTimestamp)
		signature := c.Get(HeaderSignature)
		if apiKey == "" || timestamp == "" || signature == "" {
			return respondError(c, fiber.StatusForbidden, "missing API authentication headers", "")
		}

		secret, ok := cfg.Keys[apiKey]
		if !ok {
			return respondError(c, fiber.StatusForbidden, "invalid API key", "")
		}

		if cfg.MaxSkew > 0 {
			ms, err := strconv.ParseInt(timestamp, 10, 64)
			if err != nil {
				return respondError(c, fiber.StatusForbidden, "invalid timestamp", err.Error())
			}
			skew := now().Sub(time.UnixMilli(ms))
			if skew < 0 {
				skew = -skew
			}
			if skew > cfg.MaxSkew {
				return respondError(c, fiber.StatusForbidden, "request timestamp outside allowed window", "")
			}
		}

		expected := Sign(secret, timestamp, c.Method(), c.Path(), c.Body())
		if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
			return respondError(c, fiber.StatusForbidden, "invalid signature", "")
		}

		return c.Next()
	}
}
