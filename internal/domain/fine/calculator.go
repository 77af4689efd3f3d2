package fine

import (
	"time"

	"github.com/shopspring/decimal"

	"library-circulation/pkg/caldate"
)

// Calculator turns overdue days into a fine amount.
type Calculator struct {
	PerDay decimal.Decimal
}

func NewCalculator(perDay decimal.Decimal) Calculator { return Calculator{PerDay: perDay} }

// OverdueDays is the number of whole days asOf lies past due (0 if not overdue).
func OverdueDays(due, asOf time.Time) int {
	if n := caldate.DaysBetween(due, asOf); n > 0 {
		return n
	}
	return 0
}

// Accrued returns the fine for a loan due on due, evaluated on asOf,
// rounded to two decimals.
func (c Calculator) Accrued(due, asOf time.Time) decimal.Decimal {
	days := OverdueDays(due, asOf)
	if days == 0 {
		return decimal.Zero
	}
	return c.PerDay.Mul(decimal.NewFromInt(int64(days))).Round(2)
}
