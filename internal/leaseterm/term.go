// Package leaseterm derives a contract's end date from its start date and a
// duration in months, and the duration back from a stored date range.
//
// Lease periods are inclusive of both boundary days: a 6 month lease starting
// 2024-01-01 ends 2024-06-30.
package leaseterm

import (
	"time"

	"lease-reconciliation-service/internal/models"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"

	// DefaultTermMonths is used when a stored range cannot be read back.
	DefaultTermMonths = 6
)

// ComputeEndDate returns start + months calendar months - 1 day. It returns
// "" when start is not a valid date or months < 1; callers treat that as
// "not yet computable".
func ComputeEndDate(start string, months int) string {
	if months < 1 {
		return ""
	}
	s, ok := parse(start)
	if !ok {
		return ""
	}
	return s.AddDate(0, months, -1).Format(DateLayout)
}

// ComputeMonthsBetween is the inverse of ComputeEndDate. It counts whole
// months from start to the day after end, so any end date produced by
// ComputeEndDate maps back to its duration. Ranges shorter than a month count
// as one. Missing, invalid or reversed dates yield DefaultTermMonths.
// The result equals the calendar difference (ey-sy)*12+(em-sm)+1 only for
// ranges that start on the 1st and end on the last day of a month; a
// partial trailing month is not counted, so 2024-01-15..2024-03-10 is 1.
func ComputeMonthsBetween(start, end string) int {
	s, ok := parse(start)
	if !ok {
		return DefaultTermMonths
	}
	e, ok := parse(end)
	if !ok || e.Before(s) {
		return DefaultTermMonths
	}

	next := e.AddDate(0, 0, 1)
	months := (next.Year()-s.Year())*12 + int(next.Month()-s.Month())
	if next.Day() < s.Day() {
		months--
	}
	if months < 1 {
		return 1
	}
	return months
}

// TermForm is the date portion of the contract form. EndDate is always
// derived and is never accepted from the user.
type TermForm struct {
	StartDate string `json:"start_date"`
	Months    int    `json:"months"`
	EndDate   string `json:"end_date"`
}

// Recompute overwrites EndDate from StartDate and Months. Call it on every
// change to either field.
func Recompute(f TermForm) TermForm {
	f.EndDate = ComputeEndDate(f.StartDate, f.Months)
	return f
}

// Load builds form state for an existing contract, re-deriving the duration
// rather than storing it.
func Load(start, end string) TermForm {
	return Recompute(TermForm{
		StartDate: start,
		Months:    ComputeMonthsBetween(start, end),
	})
}

// EffectiveStatus reports an active contract whose end date has passed as
// expired. Other statuses are returned unchanged.
func EffectiveStatus(c *models.Contract, asOf string) string {
	if c.Status == models.ContractActive && c.EndDate != "" && c.EndDate < asOf {
		return models.ContractExpired
	}
	return c.Status
}

// Today formats t as an ISO date in t's location.
func Today(t time.Time) string {
	return t.Format(DateLayout)
}

func ValidDate(v string) bool {
	_, ok := parse(v)
	return ok
}

func parse(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
