package repository

import "github.com/shopspring/decimal"

// Money columns always hold the canonical two-place string form, whatever
// shape the caller passed the amount in.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func moneyPtr(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}
