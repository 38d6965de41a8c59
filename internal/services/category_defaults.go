package services

import "moneta/internal/models"

// defaultCategory is a seed template copied into every new user's account
// at registration.
type defaultCategory struct {
	Name     string
	Type     models.CategoryType
	Icon     string
	Color    string
	Keywords []string
}

// defaultCategories is the starter set: 12 expense and 7 income categories.
var defaultCategories = []defaultCategory{
	// Expense
	{"Food", models.CategoryTypeExpense, "utensils", "#FF6B6B", []string{"restaurant", "lunch", "dinner", "cafe", "coffee", "takeout", "pizza", "burger"}},
	{"Groceries", models.CategoryTypeExpense, "shopping-basket", "#F7B731", []string{"supermarket", "grocery", "market", "food store"}},
	{"Transport", models.CategoryTypeExpense, "bus", "#4ECDC4", []string{"uber", "taxi", "bus", "train", "metro", "fuel", "gas", "parking"}},
	{"Shopping", models.CategoryTypeExpense, "shopping-bag", "#A55EEA", []string{"amazon", "clothes", "shoes", "mall", "store"}},
	{"Entertainment", models.CategoryTypeExpense, "film", "#FD9644", []string{"movie", "cinema", "netflix", "spotify", "game", "concert"}},
	{"Bills & Utilities", models.CategoryTypeExpense, "file-text", "#778CA3", []string{"electricity", "water", "internet", "phone", "bill", "utility"}},
	{"Health", models.CategoryTypeExpense, "heart", "#EB3B5A", []string{"doctor", "pharmacy", "medicine", "hospital", "gym", "fitness"}},
	{"Education", models.CategoryTypeExpense, "book", "#3867D6", []string{"course", "book", "tuition", "school", "class"}},
	{"Travel", models.CategoryTypeExpense, "plane", "#0FB9B1", []string{"flight", "hotel", "airbnb", "vacation", "trip"}},
	{"Rent", models.CategoryTypeExpense, "home", "#8854D0", []string{"rent", "lease", "landlord", "mortgage"}},
	{"Personal Care", models.CategoryTypeExpense, "smile", "#FC5C65", []string{"haircut", "salon", "spa", "cosmetics"}},
	{"Other Expense", models.CategoryTypeExpense, "more-horizontal", "#A5B1C2", nil},
	// Income
	{"Salary", models.CategoryTypeIncome, "briefcase", "#26DE81", []string{"salary", "paycheck", "wage", "payroll"}},
	{"Freelance", models.CategoryTypeIncome, "edit", "#2BCBBA", []string{"freelance", "contract", "gig", "client"}},
	{"Business", models.CategoryTypeIncome, "trending-up", "#45AAF2", []string{"business", "sales", "revenue"}},
	{"Investments", models.CategoryTypeIncome, "bar-chart", "#4B7BEC", []string{"dividend", "interest", "stock", "crypto"}},
	{"Gifts", models.CategoryTypeIncome, "gift", "#D1A3FF", []string{"gift", "present", "bonus"}},
	{"Refunds", models.CategoryTypeIncome, "rotate-ccw", "#20BF6B", []string{"refund", "cashback", "reimbursement"}},
	{"Other Income", models.CategoryTypeIncome, "more-horizontal", "#A5B1C2", nil},
}
