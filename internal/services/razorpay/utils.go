package razorpay

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hmac256 is a function to generate HMAC256 hash.
func Hmac256(body, key []byte) string {
	hash := hmac.New(sha256.New, key)
	hash.Write(body)
	return hex.EncodeToString(hash.Sum(nil))
}

// verifyHmac256 compares a received hex signature against the expected one
// in constant time.
func verifyHmac256(body, key []byte, receivedSignature string) bool {
	expected := Hmac256(body, key)
	return hmac.Equal([]byte(receivedSignature), []byte(expected))
}

// randomReceipt returns an uppercase hex receipt token of n random bytes.
func randomReceipt(n int) (string, error) {
	byt := make([]byte, n)
	if _, err := rand.Read(byt); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(byt)), nil
}
