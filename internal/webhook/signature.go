package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// verifyStripeSignature checks a Stripe-style signature header of the form
// "t=<timestamp>,v1=<hex hmac>", where the MAC covers "<timestamp>.<body>".
func verifyStripeSignature(secret string, body []byte, header string) error {
	if header == "" {
		return fmt.Errorf("missing signature header")
	}

	var timestamp, signature string

	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}

		switch key {
		case "t":
			timestamp = value
		case "v1":
			signature = value
		}
	}

	if timestamp == "" || signature == "" {
		return fmt.Errorf("malformed signature header")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)

	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return fmt.Errorf("signature mismatch")
	}

	return nil
}

func verifyHMACHex(secret string, body []byte, header string) error {
	if header == "" {
		return fmt.Errorf("missing signature header")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)

	if !hmac.Equal([]byte(hex.EncodeToString(mac.Sum(nil))), []byte(header)) {
		return fmt.Errorf("signature mismatch")
	}

	return nil
}

func verifyHMACBase64(secret string, body []byte, header string) error {
	if header == "" {
		return fmt.Errorf("missing signature header")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)

	if !hmac.Equal([]byte(base64.StdEncoding.EncodeToString(mac.Sum(nil))), []byte(header)) {
		return fmt.Errorf("signature mismatch")
	}

	return nil
}
