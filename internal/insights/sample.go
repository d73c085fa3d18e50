package insights

import "askcents/internal/core"

// SampleAccounts is the demo account set shown before a bank is linked.
func SampleAccounts() []core.Account {
	return []core.Account{
		{ID: "sample-checking", Name: "Sample Chequing", Type: core.Checking, Subtype: "checking", CurrentBalance: 1200},
		{ID: "sample-savings", Name: "Sample Savings", Type: core.Savings, Subtype: "savings", CurrentBalance: 650},
	}
}

// SampleTransactions is one month of demo activity for a student budget.
func SampleTransactions() []core.Transaction {
	d := func(day int) core.Date { return core.NewDate(2025, 1, day) }
	pfc := func(primary string) *core.PersonalFinanceCategory {
		return &core.PersonalFinanceCategory{Primary: primary}
	}
	return []core.Transaction{
		{ID: "sample-1", Date: d(1), Name: "Rent", Amount: 800, PersonalFinanceCategory: pfc("RENT_AND_UTILITIES")},
		{ID: "sample-2", Date: d(3), Name: "Campus Cafe", Amount: 85, PersonalFinanceCategory: pfc("FOOD_AND_DRINK")},
		{ID: "sample-3", Date: d(6), Name: "Grocery Store", Amount: 240, PersonalFinanceCategory: pfc("FOOD_AND_DRINK")},
		{ID: "sample-4", Date: d(12), Name: "Food Delivery", Amount: 125, PersonalFinanceCategory: pfc("FOOD_AND_DRINK")},
		{ID: "sample-5", Date: d(14), Name: "Bookstore", Amount: 120, PersonalFinanceCategory: pfc("GENERAL_MERCHANDISE")},
		{ID: "sample-6", Date: d(15), Name: "Transit Pass", Amount: 80, PersonalFinanceCategory: pfc("TRANSPORTATION")},
		{ID: "sample-7", Date: d(15), Name: "Part-time Payroll", Amount: -1800, PersonalFinanceCategory: pfc("INCOME")},
	}
}
