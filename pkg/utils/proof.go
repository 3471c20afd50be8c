package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

var ErrProofUnavailable = errors.New("appsecret_proof unavailable: access token or app secret is empty")

// AppSecretProof returns the hex encoded HMAC-SHA256 of accessToken keyed by
// appSecret, as expected by the Graph API appsecret_proof parameter.
func AppSecretProof(accessToken, appSecret string) (string, error) {
	if accessToken == "" || appSecret == "" {
		return "", ErrProofUnavailable
	}

	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write([]byte(accessToken))
	return hex.EncodeToString(mac.Sum(nil)), nil
}
