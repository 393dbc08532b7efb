// Package codec obscures stored payloads with a reversible text transform.
// It is not encryption: anyone with access to the backing store can decode it.
package codec

import "encoding/base64"

// Encode returns the standard base64 form of the UTF-8 bytes of plain.
func Encode(plain string) string {
	return base64.StdEncoding.EncodeToString([]byte(plain))
}

// Decode reverses Encode. Input that is not valid base64 is returned
// unchanged so that legacy plain-text or corrupted payloads still read back.
func Decode(encoded string) string {
	b, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return encoded
	}
	return string(b)
}
