// Package eta turns a delivery window into a calendar date and a customer label.
package eta

import (
	"fmt"
	"time"

	"github.com/amirasaad/remitquote/pkg/pricing"
)

// DateLayout is the format of Estimate.Date.
const DateLayout = time.DateOnly

// Estimate is a resolved delivery estimate.
type Estimate struct {
	Date  string `json:"eta"`
	Label string `json:"etaLabel"`
}

// Format resolves days against today. The slower bound is always used.
func Format(days pricing.ETADays, today time.Time) Estimate {
	arrival := today.AddDate(0, 0, days.Max)
	return Estimate{
		Date:  arrival.Format(DateLayout),
		Label: label(days.Max, arrival),
	}
}

func label(maxDays int, arrival time.Time) string {
	switch {
	case maxDays <= 0:
		return "Should arrive instantly"
	case maxDays == 1:
		return "Should arrive by tomorrow"
	case maxDays <= 5:
		return fmt.Sprintf("Should arrive by %s", arrival.Weekday())
	default:
		return fmt.Sprintf("Should arrive by %s", arrival.Format("Jan 2"))
	}
}
