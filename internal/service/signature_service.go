package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// signaturePrefix is accepted on inbound signatures, as several webhook senders emit it.
const signaturePrefix = "sha256="

// HMACSignatureService implements ports.SignatureService using HMAC-SHA256.
type HMACSignatureService struct{}

func NewHMACSignatureService() *HMACSignatureService {
	return &HMACSignatureService{}
}

func (s *HMACSignatureService) mac(secretKey, payload string) []byte {
	m := hmac.New(sha256.New, []byte(secretKey))
	m.Write([]byte(payload))
	return m.Sum(nil)
}

// Sign returns the lowercase hex HMAC-SHA256 of payload.
func (s *HMACSignatureService) Sign(secretKey string, payload string) string {
	return hex.EncodeToString(s.mac(secretKey, payload))
}

// Verify compares MAC bytes in constant time. The hex is case-insensitive
// and may carry a "sha256=" prefix.
func (s *HMACSignatureService) Verify(secretKey string, payload string, signature string) bool {
	sig := strings.TrimSpace(signature)
	if len(sig) >= len(signaturePrefix) && strings.EqualFold(sig[:len(signaturePrefix)], signaturePrefix) {
		sig = sig[len(signaturePrefix):]
	}
	got, err := hex.DecodeString(sig)
	if err != nil || len(got) != sha256.Size {
		return false
	}
	return hmac.Equal(s.mac(secretKey, payload), got)
}

// BuildEventCanonical is the signed form of an inbound audit event:
// EVENT_TYPE|LOG_ID|UNIX_TIMESTAMP|CANONICAL_DATA.
func (s *HMACSignatureService) BuildEventCanonical(eventType, logID string, timestamp int64, canonicalData []byte) string {
	var b strings.Builder
	b.Grow(len(eventType) + len(logID) + len(canonicalData) + 24)
	b.WriteString(eventType)
	b.WriteByte('|')
	b.WriteString(logID)
	b.WriteByte('|')
	b.WriteString(strconv.FormatInt(timestamp, 10))
	b.WriteByte('|')
	b.Write(canonicalData)
	return b.String()
}
