package payroll

import (
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

const (
	reasonNoBudget = "insufficient earnings after higher-priority deductions"
	reasonPartial  = "partially applied: insufficient earnings"
)

// Allocation is the outcome of running the cascade over one month's deductions.
type Allocation struct {
	Tiers          []payroll.TierAllocation
	AdvanceApplied []decimal.Decimal // indexed like Deductions.Advances
	Requested      decimal.Decimal
	Applied        decimal.Decimal
	Carried        decimal.Decimal
	Details        []payroll.CarryforwardDetail
}

// Allocate applies the deduction tiers against gross in priority order:
// mandatory, attendance, advance, other. A tier is applied in full while the
// remaining budget covers it, partially when it does not, and not at all once
// the budget is spent. Whatever is not applied becomes a carry-forward detail.
func Allocate(gross decimal.Decimal, d payroll.Deductions, scale int32) (Allocation, error) {
	if gross.IsNegative() {
		return Allocation{}, &payroll.InvariantError{Detail: "gross salary must not be negative", Expected: decimal.Zero, Actual: gross}
	}

	alloc := Allocation{
		Tiers:          make([]payroll.TierAllocation, 0, len(payroll.TierOrder)),
		AdvanceApplied: make([]decimal.Decimal, len(d.Advances)),
		Requested:      decimal.Zero,
		Applied:        decimal.Zero,
		Carried:        decimal.Zero,
		Details:        []payroll.CarryforwardDetail{},
	}
	budget := gross

	for _, category := range payroll.TierOrder {
		requested := d.Requested(category)
		if requested.IsNegative() {
			return Allocation{}, &payroll.InvariantError{Category: category, Detail: "requested amount must not be negative", Expected: decimal.Zero, Actual: requested}
		}

		applied := decimal.Min(budget, requested)
		budget = budget.Sub(applied)
		tier := payroll.TierAllocation{
			Category:  category,
			Requested: requested,
			Applied:   applied,
			Carried:   requested.Sub(applied),
		}
		alloc.Tiers = append(alloc.Tiers, tier)
		alloc.Requested = alloc.Requested.Add(requested)
		alloc.Applied = alloc.Applied.Add(applied)
		alloc.Carried = alloc.Carried.Add(tier.Carried)

		if category == payroll.CategoryAdvance {
			amounts := make([]decimal.Decimal, len(d.Advances))
			for i, line := range d.Advances {
				amounts[i] = line.Amount
			}
			alloc.AdvanceApplied = DistributeProRata(applied, amounts, scale)

			for i, line := range d.Advances {
				share := alloc.AdvanceApplied[i]
				remaining := line.Amount.Sub(share)
				if !remaining.IsPositive() {
					continue
				}
				alloc.Details = append(alloc.Details, payroll.CarryforwardDetail{
					Category:                category,
					AdvanceID:               line.AdvanceID,
					OriginalAmount:          line.Amount,
					DeductedThisMonth:       share,
					RemainingToCarryforward: remaining,
					Reason:                  carryReason(share),
				})
			}
			continue
		}

		if tier.Carried.IsPositive() {
			alloc.Details = append(alloc.Details, payroll.CarryforwardDetail{
				Category:                category,
				OriginalAmount:          requested,
				DeductedThisMonth:       applied,
				RemainingToCarryforward: tier.Carried,
				Reason:                  carryReason(applied),
			})
		}
	}

	if err := alloc.verify(gross, d); err != nil {
		return Allocation{}, err
	}
	return alloc, nil
}

// DistributeProRata splits applied across amounts in proportion to each
// amount. Shares are truncated to scale and the residue goes to the last line
// that still has room, so the shares always sum to applied exactly.
func DistributeProRata(applied decimal.Decimal, amounts []decimal.Decimal, scale int32) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(amounts))
	total := decimal.Zero
	for i, a := range amounts {
		shares[i] = decimal.Zero
		total = total.Add(a)
	}

	if !applied.IsPositive() || !total.IsPositive() {
		return shares
	}
	if applied.GreaterThanOrEqual(total) {
		copy(shares, amounts)
		return shares
	}

	sum := decimal.Zero
	for i, a := range amounts {
		shares[i] = applied.Mul(a).Div(total).Truncate(scale)
		sum = sum.Add(shares[i])
	}

	residue := applied.Sub(sum)
	for i := len(amounts) - 1; i >= 0 && residue.IsPositive(); i-- {
		headroom := amounts[i].Sub(shares[i])
		if !headroom.IsPositive() {
			continue
		}
		give := decimal.Min(headroom, residue)
		shares[i] = shares[i].Add(give)
		residue = residue.Sub(give)
	}
	return shares
}

func carryReason(applied decimal.Decimal) string {
	if applied.IsZero() {
		return reasonNoBudget
	}
	return reasonPartial
}

// verify re-checks the money invariants of the cascade.
func (a Allocation) verify(gross decimal.Decimal, d payroll.Deductions) error {
	if !a.Applied.Add(a.Carried).Equal(a.Requested) {
		return &payroll.InvariantError{Detail: "applied plus carried must equal requested", Expected: a.Requested, Actual: a.Applied.Add(a.Carried)}
	}
	if a.Applied.GreaterThan(gross) {
		return &payroll.InvariantError{Detail: "applied must not exceed gross", Expected: gross, Actual: a.Applied}
	}

	for _, tier := range a.Tiers {
		if tier.Applied.IsNegative() || tier.Carried.IsNegative() {
			return &payroll.InvariantError{Category: tier.Category, Detail: "tier amounts must not be negative", Expected: decimal.Zero, Actual: decimal.Min(tier.Applied, tier.Carried)}
		}
		if !tier.Applied.Add(tier.Carried).Equal(tier.Requested) {
			return &payroll.InvariantError{Category: tier.Category, Detail: "applied plus carried must equal requested", Expected: tier.Requested, Actual: tier.Applied.Add(tier.Carried)}
		}
	}

	advanceApplied := decimal.Zero
	for i, share := range a.AdvanceApplied {
		if share.IsNegative() || share.GreaterThan(d.Advances[i].Amount) {
			return &payroll.InvariantError{Category: payroll.CategoryAdvance, Detail: "advance share out of range", Expected: d.Advances[i].Amount, Actual: share}
		}
		advanceApplied = advanceApplied.Add(share)
	}
	for _, tier := range a.Tiers {
		if tier.Category == payroll.CategoryAdvance && !tier.Applied.Equal(advanceApplied) {
			return &payroll.InvariantError{Category: payroll.CategoryAdvance, Detail: "advance shares must sum to the tier", Expected: tier.Applied, Actual: advanceApplied}
		}
	}

	if carried := carriedTotal(a.Details); !carried.Equal(a.Carried) {
		return &payroll.InvariantError{Detail: "carry-forward details must sum to carried", Expected: a.Carried, Actual: carried}
	}
	return nil
}

// apply writes the allocation back onto the deduction lines.
func (a Allocation) apply(d *payroll.Deductions) {
	d.Tiers = a.Tiers
	d.TotalRequested = a.Requested
	d.TotalApplied = a.Applied
	for i := range d.Advances {
		d.Advances[i].Applied = a.AdvanceApplied[i]
	}
}
