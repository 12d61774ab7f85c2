package core

// CategoryAmount is an amount aggregated by literal category name. Expenses
// reference categories by stored string, so a renamed category shows up as a
// separate group.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// MonthSummary is the aggregation result for one user and one calendar month.
type MonthSummary struct {
	Year       int
	Month      int // 1-12
	Total      Money
	ByCategory []CategoryAmount
	Budget     Money
	Alert      AlertDecision
}

// MonthRange returns the half-open ISO date interval [start, end) covering a
// calendar month. December rolls over into January of the next year.
func MonthRange(year, month int) (start, end string, err error) {
	if month < 1 || month > 12 {
		return "", "", ErrInvalidMonth
	}
	start = NewDate(year, month, 1).ISO()
	if month == 12 {
		end = NewDate(year+1, 1, 1).ISO()
	} else {
		end = NewDate(year, month+1, 1).ISO()
	}
	return start, end, nil
}
