package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// checksumSeparator sits between length-prefixed fields.
const checksumSeparator = '\x1f'

// Checksum hashes the fields that feed embeddings, in fixed order:
// title, description, summary. Each field is written as "<len>:<value>" so
// field boundaries cannot shift ("ab"+"c" and "a"+"bc" differ).
func Checksum(title, description, summary string) string {
	h := sha256.New()
	for i, field := range []string{title, description, summary} {
		if i > 0 {
			h.Write([]byte{checksumSeparator})
		}
		h.Write([]byte(strconv.Itoa(len(field))))
		h.Write([]byte{':'})
		h.Write([]byte(field))
	}
	return hex.EncodeToString(h.Sum(nil))
}
