package licensing

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

// serialPattern is the structural format of a license serial.
// Serials are validated against it before any lookup is attempted.
var serialPattern = regexp.MustCompile(`^TND-[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`)

// serialAlphabet excludes ambiguous characters (I, L, O, 0, 1) so serials
// survive being read over the phone. Generated serials still match
// serialPattern.
const serialAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const serialGroups = 3

// ValidateSerial checks the structural format of a serial.
// It never touches storage; malformed input is rejected up front.
func ValidateSerial(serial string) error {
	if !serialPattern.MatchString(serial) {
		return ErrInvalidSerialFormat
	}
	return nil
}

// NewSerial mints a new random serial in the TND-XXXX-XXXX-XXXX format
func NewSerial() (string, error) {
	var sb strings.Builder
	sb.WriteString("TND")
	max := big.NewInt(int64(len(serialAlphabet)))
	for g := 0; g < serialGroups; g++ {
		sb.WriteByte('-')
		for i := 0; i < 4; i++ {
			n, err := rand.Int(rand.Reader, max)
			if err != nil {
				return "", fmt.Errorf("failed to generate serial: %w", err)
			}
			sb.WriteByte(serialAlphabet[n.Int64()])
		}
	}
	return sb.String(), nil
}
