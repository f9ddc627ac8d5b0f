package crypto

import (
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// base64LineLen is the line width of the base64 formatting convention the
// login payload uses: lines of 76 characters joined by CRLF. The device
// expects this exact formatting, so it is part of the wire contract even
// though most credentials fit on a single line.
const base64LineLen = 76

// HashUsername encodes a username for login_device:
// base64(lowercase-hex(SHA1(username))).
func HashUsername(username string) string {
	digest := sha1.Sum([]byte(username))
	return encodeBase64LineBreaks([]byte(hex.EncodeToString(digest[:])))
}

// EncodePassword encodes a password for login_device: base64(password).
func EncodePassword(password string) string {
	return encodeBase64LineBreaks([]byte(password))
}

// encodeBase64LineBreaks base64-encodes data and inserts CRLF line breaks
// every base64LineLen characters, with no trailing break.
func encodeBase64LineBreaks(data []byte) string {
	encoded := base64.StdEncoding.EncodeToString(data)
	if len(encoded) <= base64LineLen {
		return encoded
	}
	var b strings.Builder
	for i := 0; i < len(encoded); i += base64LineLen {
		if i > 0 {
			b.WriteString("\r\n")
		}
		end := i + base64LineLen
		if end > len(encoded) {
			end = len(encoded)
		}
		b.WriteString(encoded[i:end])
	}
	return b.String()
}
