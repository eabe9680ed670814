package engaja

import (
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const protocolLength = 9

// NewProtocol returns a short uppercase base36 issue number.
func NewProtocol() string {
	id := uuid.New()
	n := new(big.Int).SetBytes(id[:8])
	s := strings.ToUpper(n.Text(36))
	if len(s) < protocolLength {
		s = strings.Repeat("0", protocolLength-len(s)) + s
	}
	return s[:protocolLength]
}

// NewID returns a prefixed random identifier, e.g. "c-3f2a...".
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

func IsProtocol(s string) bool {
	if len(s) != protocolLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9') && !(c >= 'A' && c <= 'Z') {
			return false
		}
	}
	return true
}
