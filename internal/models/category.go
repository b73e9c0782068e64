package models

import "strings"

// Category labels a transaction for reporting. The set mirrors the expense
// and income buckets a freelance ledger needs; anything unlabelled falls
// back to CategoryUncategorized.
type Category string

const (
	// Expense categories.
	CategorySoftware     Category = "Software & Subscriptions"
	CategoryUtilities    Category = "Internet & Utilities"
	CategoryHardware     Category = "Hardware & Equipment"
	CategoryMarketing    Category = "Marketing & Advertising"
	CategoryOfficeSupply Category = "Office Supplies"
	CategoryEducation    Category = "Education & Training"
	CategoryLegal        Category = "Legal & Professional Fees"
	CategoryTravel       Category = "Travel"
	CategoryMeals        Category = "Meals & Entertainment"
	CategoryRent         Category = "Rent or Lease"
	CategoryPersonal     Category = "Personal / Non-Deductible"

	// Income categories.
	CategoryFreelanceProject Category = "Freelance Project"
	CategoryHourlyWage       Category = "Hourly Wage"
	CategoryRetainerFee      Category = "Retainer Fee"
	CategoryRefund           Category = "Refund / Reimbursement"
	CategoryPassiveIncome    Category = "Passive Income"
	CategoryOtherIncome      Category = "Other Income"

	CategoryUncategorized Category = "Uncategorized"
)

var categories = map[Category]struct{}{
	CategorySoftware:         {},
	CategoryUtilities:        {},
	CategoryHardware:         {},
	CategoryMarketing:        {},
	CategoryOfficeSupply:     {},
	CategoryEducation:        {},
	CategoryLegal:            {},
	CategoryTravel:           {},
	CategoryMeals:            {},
	CategoryRent:             {},
	CategoryPersonal:         {},
	CategoryFreelanceProject: {},
	CategoryHourlyWage:       {},
	CategoryRetainerFee:      {},
	CategoryRefund:           {},
	CategoryPassiveIncome:    {},
	CategoryOtherIncome:      {},
	CategoryUncategorized:    {},
}

// ParseCategory maps a raw category field to the known set. An empty field
// defaults to CategoryUncategorized; an unknown label is rejected.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CategoryUncategorized, true
	}
	c := Category(s)
	if _, ok := categories[c]; !ok {
		return "", false
	}
	return c, true
}
