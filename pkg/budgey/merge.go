package budgey

import (
	"math"
)

// floatTolerance bounds the drift allowed between a month's expense total
// and the sum of its category totals
const floatTolerance = 1e-9

// MergeBreakdown combines a freshly aggregated page with previously
// accumulated state and returns a new, fully consistent ExpenseBreakdown.
// The accumulated value is never mutated; callers holding the old snapshot
// keep a consistent view.
//
// Records already present in a month (by id) are filtered out before
// merging, so re-delivering an overlapping page never double-counts.
// Category and month totals are always recomputed from the merged record
// lists, never by summing precomputed totals.
func MergeBreakdown(acc *ExpenseBreakdown, incoming []*MonthlyBreakdown) *ExpenseBreakdown {
	var months []*MonthlyBreakdown
	if acc != nil {
		months = make([]*MonthlyBreakdown, len(acc.Months))
		for i, m := range acc.Months {
			months[i] = cloneMonth(m)
		}
	}

	for _, in := range incoming {
		existing := findMonth(months, in.MonthKey)
		if existing == nil {
			months = append(months, cloneMonth(in))
			continue
		}
		mergeMonth(existing, in)
	}

	sortMonths(months)

	return &ExpenseBreakdown{
		Months: months,
		Totals: computeOverallTotals(months),
	}
}

// mergeMonth folds an incoming month into the target at the category level
// and recomputes the target's totals
func mergeMonth(target, in *MonthlyBreakdown) {
	seen := make(map[string]bool)
	for _, cat := range target.Categories {
		for _, rec := range cat.Records {
			seen[rec.ID] = true
		}
	}
	for _, rec := range target.IncomeRecords {
		seen[rec.ID] = true
	}

	for _, inCat := range in.Categories {
		fresh := dedupeRecords(inCat.Records, seen)
		if len(fresh) == 0 {
			continue
		}

		targetCat := findCategory(target.Categories, inCat.CategoryID)
		if targetCat == nil {
			target.Categories = append(target.Categories, buildCategoryBreakdown(inCat.CategoryID, fresh))
			continue
		}

		merged := append(append([]*ExpenseRecord{}, targetCat.Records...), fresh...)
		rebuilt := buildCategoryBreakdown(targetCat.CategoryID, merged)
		*targetCat = *rebuilt
	}

	if fresh := dedupeRecords(in.IncomeRecords, seen); len(fresh) > 0 {
		target.IncomeRecords = append(target.IncomeRecords, fresh...)
	}

	finalizeMonth(target)
}

// dedupeRecords filters out records whose id is already in seen, marking the
// survivors as seen
func dedupeRecords(records []*ExpenseRecord, seen map[string]bool) []*ExpenseRecord {
	var fresh []*ExpenseRecord
	for _, rec := range records {
		if seen[rec.ID] {
			continue
		}
		seen[rec.ID] = true
		fresh = append(fresh, rec)
	}
	return fresh
}

// computeOverallTotals recomputes the cross-month summary from scratch
func computeOverallTotals(months []*MonthlyBreakdown) OverallTotals {
	totals := OverallTotals{MonthCount: len(months)}

	// Aggregate category expense totals in first-encountered order so the
	// top-category tiebreak is deterministic
	catTotals := make(map[string]float64)
	var catOrder []string

	for _, month := range months {
		totals.TotalExpenses += month.TotalExpenses
		totals.TotalIncome += month.TotalIncome

		for _, cat := range month.Categories {
			if _, ok := catTotals[cat.CategoryName]; !ok {
				catOrder = append(catOrder, cat.CategoryName)
			}
			catTotals[cat.CategoryName] += cat.TotalAmount
		}
	}

	totals.NetAmount = totals.TotalIncome - totals.TotalExpenses
	if totals.MonthCount > 0 {
		totals.AverageMonthlyExpenses = totals.TotalExpenses / float64(totals.MonthCount)
		totals.AverageMonthlyIncome = totals.TotalIncome / float64(totals.MonthCount)
	}

	best := math.Inf(-1)
	for _, name := range catOrder {
		if catTotals[name] > best {
			best = catTotals[name]
			totals.TopCategory = name
		}
	}

	return totals
}

// validate checks the structural invariants of a breakdown: unique month
// keys, unique categories per month, and category totals summing to the
// month's expense total within tolerance. A violation indicates a bug or a
// malformed upstream record.
func (b *ExpenseBreakdown) validate() error {
	monthKeys := make(map[string]bool)
	for _, month := range b.Months {
		if monthKeys[month.MonthKey] {
			return NewError(KindDataProcessing, "duplicate month key "+month.MonthKey)
		}
		monthKeys[month.MonthKey] = true

		catIDs := make(map[string]bool)
		var catSum float64
		for _, cat := range month.Categories {
			if catIDs[cat.CategoryID] {
				return NewError(KindDataProcessing, "duplicate category "+cat.CategoryID+" in month "+month.MonthKey)
			}
			catIDs[cat.CategoryID] = true
			catSum += cat.TotalAmount
		}

		if math.Abs(catSum-month.TotalExpenses) > floatTolerance {
			return NewError(KindDataProcessing, "category totals do not sum to month total for "+month.MonthKey)
		}
	}
	return nil
}

// cloneMonth deep-copies a month's derived structure. Record pointers are
// shared: records are immutable by contract.
func cloneMonth(m *MonthlyBreakdown) *MonthlyBreakdown {
	out := *m
	out.Categories = make([]*CategoryBreakdown, len(m.Categories))
	for i, cat := range m.Categories {
		c := *cat
		c.Records = append([]*ExpenseRecord{}, cat.Records...)
		out.Categories[i] = &c
	}
	out.IncomeRecords = append([]*ExpenseRecord{}, m.IncomeRecords...)
	return &out
}

func findMonth(months []*MonthlyBreakdown, key string) *MonthlyBreakdown {
	for _, m := range months {
		if m.MonthKey == key {
			return m
		}
	}
	return nil
}

func findCategory(categories []*CategoryBreakdown, id string) *CategoryBreakdown {
	for _, c := range categories {
		if c.CategoryID == id {
			return c
		}
	}
	return nil
}
