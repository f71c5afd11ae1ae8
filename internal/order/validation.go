package order

import (
	"regexp"
	"strings"
)

const (
	MinPhoneDigits = 10
	MinUTRLength   = 12
	maxUTRLength   = 22
)

var utrPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Validate checks the required checkout fields and returns a
// *ValidationError keyed by JSON field name, or nil.
func (c Customer) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(c.FirstName) == "" {
		fields["firstName"] = "Required"
	}
	if countDigits(c.Phone) < MinPhoneDigits {
		fields["phone"] = "Valid number required"
	}
	if strings.TrimSpace(c.HouseNo) == "" {
		fields["houseNo"] = "Address required"
	}
	if strings.TrimSpace(c.Pincode) == "" {
		fields["pincode"] = "Pincode required"
	}
	if strings.TrimSpace(c.City) == "" {
		fields["city"] = "City required"
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// ValidateUTR is the server-side format check for a bank transaction reference.
func ValidateUTR(utr string) (string, error) {
	utr = strings.TrimSpace(utr)
	if len(utr) < MinUTRLength || len(utr) > maxUTRLength || !utrPattern.MatchString(utr) {
		return "", ErrInvalidUTR
	}
	return strings.ToUpper(utr), nil
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// fitLinks resizes links to exactly quantity slots.
func fitLinks(links []string, quantity int) []string {
	out := make([]string, quantity)
	copy(out, links)
	return out
}
