package budgey

import (
	"sort"
)

// AggregatePage folds one fetched page of raw records into per-month
// breakdowns. The output covers exactly the month keys present in the input;
// months with zero records are never fabricated. Month keys are grouped
// as-is, including blank or malformed ones — repairing keys is the
// producer's responsibility, not the aggregator's.
//
// Income records contribute only to the month's income totals, never to
// category breakdowns.
func AggregatePage(records []*ExpenseRecord) []*MonthlyBreakdown {
	if len(records) == 0 {
		return nil
	}

	type monthAccum struct {
		expenses map[string][]*ExpenseRecord // category id -> records
		catOrder []string
		incomes  []*ExpenseRecord
	}

	months := make(map[string]*monthAccum)
	var monthOrder []string

	for _, rec := range records {
		acc, ok := months[rec.MonthKey]
		if !ok {
			acc = &monthAccum{expenses: make(map[string][]*ExpenseRecord)}
			months[rec.MonthKey] = acc
			monthOrder = append(monthOrder, rec.MonthKey)
		}

		if rec.Type == RecordTypeIncome {
			acc.incomes = append(acc.incomes, rec)
			continue
		}

		if _, seen := acc.expenses[rec.CategoryID]; !seen {
			acc.catOrder = append(acc.catOrder, rec.CategoryID)
		}
		acc.expenses[rec.CategoryID] = append(acc.expenses[rec.CategoryID], rec)
	}

	result := make([]*MonthlyBreakdown, 0, len(monthOrder))
	for _, key := range monthOrder {
		acc := months[key]

		month := &MonthlyBreakdown{
			MonthKey:      key,
			DisplayLabel:  MonthKeyLabel(key),
			IncomeRecords: acc.incomes,
		}

		for _, catID := range acc.catOrder {
			catRecords := acc.expenses[catID]
			month.Categories = append(month.Categories, buildCategoryBreakdown(catID, catRecords))
		}

		finalizeMonth(month)
		result = append(result, month)
	}

	sortMonths(result)
	return result
}

// buildCategoryBreakdown computes totals for one category partition. The
// percentage is filled in later by finalizeMonth once the month total is
// known.
func buildCategoryBreakdown(categoryID string, records []*ExpenseRecord) *CategoryBreakdown {
	cat := &CategoryBreakdown{
		CategoryID: categoryID,
		Records:    records,
		Count:      len(records),
	}

	for _, rec := range records {
		cat.TotalAmount += rec.Amount
		if cat.CategoryName == "" {
			cat.CategoryName = rec.CategoryName
		}
	}

	if cat.Count > 0 {
		cat.AverageAmount = cat.TotalAmount / float64(cat.Count)
	}

	return cat
}

// finalizeMonth recomputes a month's totals, percentages, and category order
// from its category and income lists. Shared by the aggregator and merger.
func finalizeMonth(month *MonthlyBreakdown) {
	month.TotalExpenses = 0
	month.ExpenseCount = 0
	for _, cat := range month.Categories {
		month.TotalExpenses += cat.TotalAmount
		month.ExpenseCount += cat.Count
	}

	month.TotalIncome = 0
	for _, rec := range month.IncomeRecords {
		month.TotalIncome += rec.Amount
	}
	month.IncomeCount = len(month.IncomeRecords)
	month.NetAmount = month.TotalIncome - month.TotalExpenses

	// The percentage denominator is this month's own expense total, not the
	// global total
	for _, cat := range month.Categories {
		if month.TotalExpenses > 0 {
			cat.Percentage = cat.TotalAmount / month.TotalExpenses * 100
		} else {
			cat.Percentage = 0
		}
	}

	sortCategories(month.Categories)
}

// sortCategories orders categories by total descending, ties broken by name
// ascending for determinism
func sortCategories(categories []*CategoryBreakdown) {
	sort.SliceStable(categories, func(i, j int) bool {
		if categories[i].TotalAmount != categories[j].TotalAmount {
			return categories[i].TotalAmount > categories[j].TotalAmount
		}
		return categories[i].CategoryName < categories[j].CategoryName
	})
}

// sortMonths orders months by key descending, most recent first
func sortMonths(months []*MonthlyBreakdown) {
	sort.SliceStable(months, func(i, j int) bool {
		return compareMonthKeys(months[i].MonthKey, months[j].MonthKey) > 0
	})
}
