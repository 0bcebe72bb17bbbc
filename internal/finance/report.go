package finance

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"finova/internal/models"

	"github.com/shopspring/decimal"
)

// Trailing window lengths in days.
const (
	ShortWindowDays  = 30
	MediumWindowDays = 180
	LongWindowDays   = 365
	TopCategoryCount = 5
)

// CategoryTotal is a category name with its summed amount.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// MemberTotal is one household member's expense total.
type MemberTotal struct {
	Owner    models.Owner    `json:"owner"`
	Expenses decimal.Decimal `json:"expenses"`
}

// Report is the statistical summary handed to the advice generator. It never
// carries raw records.
type Report struct {
	Today models.Date  `json:"today"`
	Owner models.Owner `json:"owner"`

	Last30Days  Totals `json:"last_30_days"`
	Last180Days Totals `json:"last_180_days"`
	Last365Days Totals `json:"last_365_days"`

	VariableExpenses30d   decimal.Decimal `json:"variable_expenses_30d"`
	FixedExpenses30d      decimal.Decimal `json:"fixed_expenses_30d"`
	TopCategories         []CategoryTotal `json:"top_categories"`
	MonthlyAverageExpense decimal.Decimal `json:"monthly_average_expense"`

	PortfolioTotal decimal.Decimal `json:"portfolio_total"`
	EmergencyFund  decimal.Decimal `json:"emergency_fund"`

	Members []MemberTotal `json:"members"`
}

// BuildReport summarizes txs and investments as of today. Windows are
// "date >= today - N days" with no upper bound. All figures except the
// member totals honour owner; member totals always cover both members.
func BuildReport(txs []models.Transaction, investments []models.Investment, today models.Date, household models.Household, owner models.Owner) Report {
	window30 := since(txs, today.AddDays(-ShortWindowDays))
	scoped30 := byOwner(window30, owner)
	scoped180 := byOwner(since(txs, today.AddDays(-MediumWindowDays)), owner)
	scoped365 := byOwner(since(txs, today.AddDays(-LongWindowDays)), owner)

	r := Report{
		Today:       today,
		Owner:       owner,
		Last30Days:  SumTotals(scoped30),
		Last180Days: SumTotals(scoped180),
		Last365Days: SumTotals(scoped365),
	}
	if r.Owner == "" {
		r.Owner = models.OwnerBoth
	}

	variable := make([]models.Transaction, 0)
	r.VariableExpenses30d, r.FixedExpenses30d = decimal.Zero, decimal.Zero
	for _, tx := range scoped30 {
		if !tx.IsExpense() {
			continue
		}
		if tx.IsRecurring {
			r.FixedExpenses30d = r.FixedExpenses30d.Add(tx.Amount)
		} else {
			r.VariableExpenses30d = r.VariableExpenses30d.Add(tx.Amount)
			variable = append(variable, tx)
		}
	}
	r.TopCategories = topCategories(variable, TopCategoryCount)
	r.MonthlyAverageExpense = r.Last180Days.Expenses.Div(decimal.NewFromInt(MediumWindowDays / 30)).Round(2)

	visible := FilterInvestments(investments, owner)
	r.PortfolioTotal, r.EmergencyFund = decimal.Zero, decimal.Zero
	for _, inv := range visible {
		r.PortfolioTotal = r.PortfolioTotal.Add(inv.CurrentAmount)
		if inv.Type == models.InvestmentTypeEmergency {
			r.EmergencyFund = r.EmergencyFund.Add(inv.CurrentAmount)
		}
	}

	r.Members = make([]MemberTotal, 0, 2)
	for _, member := range household.Members() {
		r.Members = append(r.Members, MemberTotal{Owner: member, Expenses: SumTotals(ownedBy(window30, member)).Expenses})
	}
	return r
}

// topCategories ranks categories by descending total; ties keep the order in
// which the category first appeared.
func topCategories(txs []models.Transaction, n int) []CategoryTotal {
	totals := make([]CategoryTotal, 0)
	index := make(map[string]int)
	for _, tx := range txs {
		i, ok := index[tx.Category]
		if !ok {
			i = len(totals)
			index[tx.Category] = i
			totals = append(totals, CategoryTotal{Category: tx.Category, Total: decimal.Zero})
		}
		totals[i].Total = totals[i].Total.Add(tx.Amount)
	}
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Total.GreaterThan(totals[j].Total)
	})
	if len(totals) > n {
		totals = totals[:n]
	}
	return totals
}

func since(txs []models.Transaction, cutoff models.Date) []models.Transaction {
	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !tx.Date.Before(cutoff) {
			out = append(out, tx)
		}
	}
	return out
}

func byOwner(txs []models.Transaction, owner models.Owner) []models.Transaction {
	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Owner.Matches(owner) {
			out = append(out, tx)
		}
	}
	return out
}

func ownedBy(txs []models.Transaction, member models.Owner) []models.Transaction {
	out := make([]models.Transaction, 0)
	for _, tx := range txs {
		if tx.Owner == member {
			out = append(out, tx)
		}
	}
	return out
}

// Section headings the advice must use, in order.
var ReportSections = []string{
	"## 📅 Short Term (Variable Spending)",
	"## 📈 Medium Term (The Weight of Installments)",
	"## 🔭 Long Term (1 to 5 Years)",
	"## 👥 Individual & Couple Analysis",
	"## 💡 Verdict of the Week",
}

var promptTemplate = template.Must(template.New("advice").Parse(`Act as a senior personal financial advisor for {{.Household}}.
Write a detailed weekly report for the week of {{.Today}}. Use Markdown and emojis. Be direct, analytical and motivating.

### COMPUTED FINANCIAL DATA
- Variable spending (30d): {{.Variable}}
- Largest expenses: {{.TopCategories}}
- Fixed/installments total (30d): {{.Fixed}}
- Income (30d): {{.Income}}
- Balance (30d): {{.Balance}}
- Average monthly expenses (6m): {{.MonthlyAverage}}
- Balance (12m): {{.YearBalance}}
- Net worth: {{.Portfolio}} (Emergency reserve: {{.Emergency}})
{{- range .Members}}
- {{.Name}} (30d): {{.Expenses}}
{{- end}}

### OUTPUT INSTRUCTIONS
Use exactly these Markdown sections:
{{- range .Sections}}
{{.}}
{{- end}}
`))

type promptMember struct {
	Name     string
	Expenses string
}

type promptData struct {
	Household      string
	Today          string
	Variable       string
	TopCategories  string
	Fixed          string
	Income         string
	Balance        string
	MonthlyAverage string
	YearBalance    string
	Portfolio      string
	Emergency      string
	Members        []promptMember
	Sections       []string
}

// RenderPrompt interpolates r into the fixed advice prompt.
func RenderPrompt(r Report, currencySymbol string) (string, error) {
	money := func(d decimal.Decimal) string { return FormatMoney(d, currencySymbol) }

	top := "none"
	if len(r.TopCategories) > 0 {
		parts := make([]string, 0, len(r.TopCategories))
		for _, c := range r.TopCategories {
			parts = append(parts, c.Category+": "+money(c.Total))
		}
		top = strings.Join(parts, ", ")
	}

	data := promptData{
		Household:      "the household",
		Today:          r.Today.String(),
		Variable:       money(r.VariableExpenses30d),
		TopCategories:  top,
		Fixed:          money(r.FixedExpenses30d),
		Income:         money(r.Last30Days.Income),
		Balance:        money(r.Last30Days.Balance),
		MonthlyAverage: money(r.MonthlyAverageExpense),
		YearBalance:    money(r.Last365Days.Balance),
		Portfolio:      money(r.PortfolioTotal),
		Emergency:      money(r.EmergencyFund),
		Sections:       ReportSections,
	}
	for _, m := range r.Members {
		data.Members = append(data.Members, promptMember{Name: string(m.Owner), Expenses: money(m.Expenses)})
	}
	if len(r.Members) == 2 {
		data.Household = string(r.Members[0].Owner) + " and " + string(r.Members[1].Owner)
	}

	var out bytes.Buffer
	if err := promptTemplate.Execute(&out, data); err != nil {
		return "", fmt.Errorf("render advice prompt: %w", err)
	}
	return out.String(), nil
}

// FormatMoney renders d with two decimals after symbol.
func FormatMoney(d decimal.Decimal, symbol string) string {
	if symbol == "" {
		return d.StringFixed(2)
	}
	return symbol + " " + d.StringFixed(2)
}

// WeekOf returns the Monday of the week containing t.
func WeekOf(t time.Time) models.Date {
	d := models.DateOf(t)
	offset := (int(t.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}
