// internal/domain/table/entity.go
package table

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Defaults for the table rules
const (
	DefaultMaxTable   = 50
	DefaultSessionTTL = 4 * time.Hour
)

// ErrInvalidTableNumber is returned for table numbers outside [1, max]
var ErrInvalidTableNumber = errors.New("invalid table number")

// Session binds a visitor to a physical table
type Session struct {
	Number     int       `json:"numero"`
	AcquiredAt time.Time `json:"acquiredAt"`
}

// ExpiredAt reports whether the session is no longer valid at now
func (s Session) ExpiredAt(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.AcquiredAt) >= ttl
}

// ParseNumber normalizes a table id taken from a route segment,
// e.g. " 05 " becomes 5.
func ParseNumber(raw string, max int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, ErrInvalidTableNumber
	}
	if !ValidNumber(n, max) {
		return 0, ErrInvalidTableNumber
	}
	return n, nil
}

// ValidNumber reports whether n is a table number in [1, max]
func ValidNumber(n, max int) bool {
	return n >= 1 && n <= max
}
