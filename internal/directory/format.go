package directory

import "time"

// presentLabel is rendered for any absent month, start or end alike.
const presentLabel = "Present"

// FormatMonth renders an experience month as "January 2, 2006", or
// "Present" when the month is absent. The same rule applies to start
// and end months; it is a formatting contract, not current-job logic.
func FormatMonth(t *time.Time) string {
	if t == nil {
		return presentLabel
	}
	return t.Format("January 2, 2006")
}
