// Package report 根据某个用户的消费记录和财务档案计算仪表盘数据。
//
// 所有函数都是纯函数：结果只取决于输入和显式传入的当前时间，
// 可以在每次请求时重新计算。
package report

import (
	"math"
	"sort"
	"time"

	"financeiro/models"
)

const (
	// MonthlySeriesLength 月度柱状图的月份数
	MonthlySeriesLength = 6
	// ComparisonLength 月度对比的月份数
	ComparisonLength = 12
	// EmergencyFallbackDenominator 应急金覆盖月数的最小分母
	EmergencyFallbackDenominator = 1000.0
)

// Snapshot 单个用户的数据快照
type Snapshot struct {
	Expenses []models.Expense
	Profile  models.FinancialProfile
}

// CategoryTotal 当月某个类别的合计
type CategoryTotal struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Color string  `json:"color"`
	Value float64 `json:"value"`
}

// MonthPoint 月度柱状图的一个点
type MonthPoint struct {
	Month    string  `json:"month"`
	Label    string  `json:"label"`
	Expenses float64 `json:"expenses"`
	Salary   float64 `json:"salary"`
}

// ComparisonPoint 月度/年度对比的一个点
type ComparisonPoint struct {
	Period         string  `json:"period"`
	Label          string  `json:"label"`
	Expenses       float64 `json:"expenses"`
	Savings        float64 `json:"savings"`
	Salary         float64 `json:"salary"`
	Variation      int     `json:"variation"`
	SavingsPercent int     `json:"savingsPercent"`
}

// Headline 仪表盘顶部指标
type Headline struct {
	CurrentMonthTotal   float64 `json:"currentMonthTotal"`
	Balance             float64 `json:"balance"`
	SavingsTarget       float64 `json:"savingsTarget"`
	ActualSavings       float64 `json:"actualSavings"`
	ExpensePercentage   float64 `json:"expensePercentage"`
	EmergencyFund       float64 `json:"emergencyFund"`
	EmergencyMonths     float64 `json:"emergencyMonths"`
	SavingsGoalProgress int     `json:"savingsGoalProgress"`
	Health              Health  `json:"health"`
	HealthLabel         string  `json:"healthLabel"`
}

// Dashboard 完整的仪表盘数据
type Dashboard struct {
	Month      string                  `json:"month"`
	Profile    models.FinancialProfile `json:"profile"`
	Headline   Headline                `json:"headline"`
	Categories []CategoryTotal         `json:"categories"`
	Monthly    []MonthPoint            `json:"monthly"`
	Comparison []ComparisonPoint       `json:"comparison"`
	Yearly     []ComparisonPoint       `json:"yearly"`
	Trend      Trend                   `json:"trend"`
}

// round 四舍五入（.5 向上）
func round(x float64) int {
	return int(math.Floor(x + 0.5))
}

// monthKey YYYY-MM
func monthKey(t time.Time) string {
	return t.Format("2006-01")
}

var monthAbbr = [...]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

// trailingMonths 包含当月在内往前 n 个自然月，按时间升序
func trailingMonths(now time.Time, n int) []time.Time {
	out := make([]time.Time, 0, n)
	for i := n - 1; i >= 0; i-- {
		out = append(out, time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, now.Location()))
	}
	return out
}

func totalsBy(expenses []models.Expense, key func(models.Expense) string) map[string]float64 {
	totals := make(map[string]float64)
	for _, e := range expenses {
		totals[key(e)] += e.Value
	}
	return totals
}

// CurrentMonth 日期前缀与当月 YYYY-MM 匹配的消费
func CurrentMonth(expenses []models.Expense, now time.Time) []models.Expense {
	month := monthKey(now)
	out := make([]models.Expense, 0)
	for _, e := range expenses {
		if e.Month() == month {
			out = append(out, e)
		}
	}
	return out
}

func sum(expenses []models.Expense) float64 {
	var total float64
	for _, e := range expenses {
		total += e.Value
	}
	return total
}

// CategoryTotals 当月各类别合计，合计为 0 的类别不输出。
// 已知类别按固定表顺序输出，未知类别排在最后并归为"Outros"的名称和颜色
func CategoryTotals(expenses []models.Expense, now time.Time) []CategoryTotal {
	totals := totalsBy(CurrentMonth(expenses, now), func(e models.Expense) string { return e.Category })

	out := make([]CategoryTotal, 0, len(totals))
	for _, c := range models.GetCategories() {
		if v := totals[c.ID]; v != 0 {
			out = append(out, CategoryTotal{ID: c.ID, Name: c.Name, Color: c.Color, Value: v})
		}
		delete(totals, c.ID)
	}

	unknown := make([]string, 0, len(totals))
	for id, v := range totals {
		if v != 0 {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)
	other, _ := models.FindCategory(models.CategoryOther)
	for _, id := range unknown {
		out = append(out, CategoryTotal{ID: id, Name: other.Name, Color: other.Color, Value: totals[id]})
	}
	return out
}

// MonthlySeries 最近 6 个月（含当月）的消费与月薪
func MonthlySeries(expenses []models.Expense, salary float64, now time.Time) []MonthPoint {
	totals := totalsBy(expenses, models.Expense.Month)
	months := trailingMonths(now, MonthlySeriesLength)
	out := make([]MonthPoint, 0, len(months))
	for _, m := range months {
		key := monthKey(m)
		out = append(out, MonthPoint{
			Month:    key,
			Label:    monthAbbr[m.Month()-1] + "/" + m.Format("2006"),
			Expenses: totals[key],
			Salary:   salary,
		})
	}
	return out
}

// variation 环比百分比，分母最小为 1
func variation(curr, prev float64) int {
	return round((curr - prev) / math.Max(prev, 1) * 100)
}

func comparisonPoint(period, label string, expenses, salary float64) ComparisonPoint {
	p := ComparisonPoint{
		Period:   period,
		Label:    label,
		Expenses: expenses,
		Savings:  math.Max(0, salary-expenses),
		Salary:   salary,
	}
	if salary > 0 {
		p.SavingsPercent = round(p.Savings / salary * 100)
	}
	return p
}

// MonthlyComparison 最近 12 个月的对比，第一个月的环比固定为 0
func MonthlyComparison(expenses []models.Expense, salary float64, now time.Time) []ComparisonPoint {
	totals := totalsBy(expenses, models.Expense.Month)
	months := trailingMonths(now, ComparisonLength)
	out := make([]ComparisonPoint, 0, len(months))
	for i, m := range months {
		key := monthKey(m)
		p := comparisonPoint(key, monthAbbr[m.Month()-1]+"/"+m.Format("06"), totals[key], salary)
		if i > 0 {
			p.Variation = variation(p.Expenses, out[i-1].Expenses)
		}
		out = append(out, p)
	}
	return out
}

// YearlyComparison 按数据中出现的自然年升序对比，月薪按 12 倍折算为年薪
func YearlyComparison(expenses []models.Expense, salary float64) []ComparisonPoint {
	totals := totalsBy(expenses, models.Expense.Year)
	years := make([]string, 0, len(totals))
	for y := range totals {
		if y != "" {
			years = append(years, y)
		}
	}
	sort.Strings(years)

	annual := salary * 12
	out := make([]ComparisonPoint, 0, len(years))
	for i, y := range years {
		p := comparisonPoint(y, y, totals[y], annual)
		if i > 0 {
			p.Variation = variation(p.Expenses, out[i-1].Expenses)
		}
		out = append(out, p)
	}
	return out
}

// ComputeHeadline 计算顶部指标
func ComputeHeadline(expenses []models.Expense, profile models.FinancialProfile, now time.Time) Headline {
	total := sum(CurrentMonth(expenses, now))
	salary := profile.MonthlySalary

	h := Headline{
		CurrentMonthTotal: total,
		Balance:           salary - total,
		SavingsTarget:     salary * float64(profile.SavingsGoalPercentage) / 100,
		EmergencyFund:     profile.EmergencyFund,
		EmergencyMonths:   profile.EmergencyFund / math.Max(total, EmergencyFallbackDenominator),
	}
	h.ActualSavings = math.Max(0, h.Balance)
	if salary > 0 {
		h.ExpensePercentage = total / salary * 100
	}
	if h.SavingsTarget > 0 {
		h.SavingsGoalProgress = round(h.ActualSavings / h.SavingsTarget * 100)
	}
	h.Health = Classify(h.ExpensePercentage)
	h.HealthLabel = h.Health.Label()
	return h
}

// Build 组装完整仪表盘
func Build(s Snapshot, now time.Time) Dashboard {
	salary := s.Profile.MonthlySalary
	comparison := MonthlyComparison(s.Expenses, salary, now)
	return Dashboard{
		Month:      monthKey(now),
		Profile:    s.Profile,
		Headline:   ComputeHeadline(s.Expenses, s.Profile, now),
		Categories: CategoryTotals(s.Expenses, now),
		Monthly:    MonthlySeries(s.Expenses, salary, now),
		Comparison: comparison,
		Yearly:     YearlyComparison(s.Expenses, salary),
		Trend:      ComputeTrend(comparison),
	}
}
