package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"
)

func signPayload(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifySignatureWithSecret(t *testing.T) {
	secret := "test-webhook-secret"
	timestamp := "1756623811"
	body := []byte(`{"type":"PAYMENT_SUCCESS_WEBHOOK","data":{"order":{"order_id":"booking_1"}}}`)
	signature := signPayload(secret, timestamp, body)

	if !verifySignatureWithSecret(body, signature, timestamp, secret) {
		t.Fatal("a correctly signed payload must verify")
	}

	if verifySignatureWithSecret(body, signature, "1756623812", secret) {
		t.Fatal("a different timestamp must break verification")
	}
	if verifySignatureWithSecret([]byte(`{"tampered":true}`), signature, timestamp, secret) {
		t.Fatal("a tampered body must break verification")
	}
	if verifySignatureWithSecret(body, signPayload("wrong-secret", timestamp, body), timestamp, secret) {
		t.Fatal("a signature from the wrong secret must not verify")
	}
}

func TestVerifySignatureRejectsMissingInputs(t *testing.T) {
	secret := "test-webhook-secret"
	timestamp := "1756623811"
	body := []byte(`{}`)
	signature := signPayload(secret, timestamp, body)

	if verifySignatureWithSecret(body, "", timestamp, secret) {
		t.Fatal("an empty signature must not verify")
	}
	if verifySignatureWithSecret(body, signature, "", secret) {
		t.Fatal("an empty timestamp must not verify")
	}
	if verifySignatureWithSecret(body, signature, timestamp, "") {
		t.Fatal("an empty secret must fail closed")
	}
}
