package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyStripeSignature(t *testing.T) {
	const secret = "whsec_abc"

	body := []byte(`{"id":"evt_1"}`)

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "1714650000.%s", body)
	valid := fmt.Sprintf("t=1714650000,v1=%s", hex.EncodeToString(mac.Sum(nil)))

	require.NoError(t, verifyStripeSignature(secret, body, valid))

	// Extra scheme entries before v1 are fine, Stripe sends several.
	require.NoError(t, verifyStripeSignature(secret, body, "v0=ignored,"+valid))

	assert.Error(t, verifyStripeSignature(secret, body, ""))
	assert.Error(t, verifyStripeSignature(secret, body, "t=1714650000"))
	assert.Error(t, verifyStripeSignature(secret, body, "t=1714650000,v1=deadbeef"))
	assert.Error(t, verifyStripeSignature("other-secret", body, valid))

	// The timestamp is part of the MAC input, so replaying the signature
	// against a different timestamp fails.
	tampered := fmt.Sprintf("t=1714659999,v1=%s", hex.EncodeToString(mac.Sum(nil)))
	assert.Error(t, verifyStripeSignature(secret, body, tampered))
}

func TestVerifyHMACHex(t *testing.T) {
	const secret = "pp-secret"

	body := []byte(`{"id":"WH-1"}`)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	valid := hex.EncodeToString(mac.Sum(nil))

	require.NoError(t, verifyHMACHex(secret, body, valid))
	assert.Error(t, verifyHMACHex(secret, body, ""))
	assert.Error(t, verifyHMACHex(secret, []byte(`{"id":"WH-2"}`), valid))
}

func TestVerifyHMACBase64(t *testing.T) {
	const secret = "wise-secret"

	body := []byte(`{"data":{}}`)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	valid := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	require.NoError(t, verifyHMACBase64(secret, body, valid))
	assert.Error(t, verifyHMACBase64(secret, body, ""))
	assert.Error(t, verifyHMACBase64("wrong", body, valid))
}
