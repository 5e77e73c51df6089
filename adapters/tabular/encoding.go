package tabular

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// Fallback ladder for delimited text. Latin-1 accepts every byte sequence, so
// in practice the ladder terminates there; the permissive decode exists for
// the contract's sake and as a final guard.
var textEncodings = []encoding.Encoding{
	simplifiedchinese.GBK,
	simplifiedchinese.GB18030,
	charmap.ISO8859_1,
}

// decodeText converts raw file bytes to a UTF-8 string. Valid UTF-8 passes
// through untouched; otherwise each ladder encoding is tried in order, and a
// decode that produced replacement runes is treated as a miss. When every
// encoding misses, undecodable bytes are dropped rather than failing the
// upload.
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}

	for _, enc := range textEncodings {
		decoded, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			continue
		}
		if !strings.ContainsRune(string(decoded), utf8.RuneError) {
			return string(decoded)
		}
	}

	return strings.ToValidUTF8(string(data), "")
}
