// Package cutoff decides whether a requested delivery date is still
// admissible given the current wall-clock time. The rule is two-tier:
// same-day and past dates are never accepted, next-day delivery closes at a
// configured time of day, and anything further out is always open.
package cutoff

import (
	"fmt"
	"math"
	"time"

	"github.com/producemart/wholesale-api/internal/domain"
)

const dateLayout = "2006-01-02"

// Policy is immutable once constructed; the cutoff comes from startup
// configuration, never from ambient process state.
type Policy struct {
	hour   int
	minute int
}

func NewPolicy(hour, minute int) Policy {
	return Policy{hour: hour, minute: minute}
}

// Window returns the configured cutoff formatted HH:MM, as shown to buyers.
func (p Policy) Window() string {
	return fmt.Sprintf("%02d:%02d", p.hour, p.minute)
}

// Evaluate checks a requested delivery date against the current instant.
// The day difference is computed on calendar dates with the time of day
// stripped; the cutoff boundary itself counts as passed.
func (p Policy) Evaluate(now time.Time, deliveryDate string) error {
	selected, err := time.ParseInLocation(dateLayout, deliveryDate, now.Location())
	if err != nil {
		return &domain.ValidationError{Field: "deliveryDate", Message: "invalid delivery date, expected YYYY-MM-DD"}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	// Rounding absorbs the odd-length days around DST switches.
	diffDays := int(math.Round(selected.Sub(today).Hours() / 24))

	if diffDays < 1 {
		return &domain.CutoffError{Message: "Delivery date must be at least tomorrow. Same-day delivery is not supported."}
	}

	if diffDays == 1 {
		cutoff := time.Date(now.Year(), now.Month(), now.Day(), p.hour, p.minute, 0, 0, now.Location())
		if !now.Before(cutoff) {
			return &domain.CutoffError{Message: fmt.Sprintf(
				"Cut-off for next-day delivery has passed (today %s). Please choose a later delivery date.", p.Window())}
		}
	}

	return nil
}
