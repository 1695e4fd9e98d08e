package report

import "math"

// Health 财务健康等级
type Health string

// 健康等级，阈值固定
const (
	HealthExcellent Health = "Excellent"
	HealthGood      Health = "Good"
	HealthAttention Health = "Attention"
	HealthCritical  Health = "Critical"
)

// Classify 按支出占月薪百分比分级：<=50 / <=70 / <=80 / 其余
func Classify(expensePercentage float64) Health {
	switch {
	case expensePercentage <= 50:
		return HealthExcellent
	case expensePercentage <= 70:
		return HealthGood
	case expensePercentage <= 80:
		return HealthAttention
	default:
		return HealthCritical
	}
}

// Label 葡语显示名
func (h Health) Label() string {
	switch h {
	case HealthExcellent:
		return "Excelente"
	case HealthGood:
		return "Boa"
	case HealthAttention:
		return "Atenção"
	default:
		return "Crítica"
	}
}

// 趋势方向
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// trendThreshold 变化超过 ±5% 才视为上升或下降
const trendThreshold = 5.0

// Trend 最近三个月的消费趋势
type Trend struct {
	Direction  string `json:"direction"`
	Percentage int    `json:"percentage"`
}

// ComputeTrend 取对比序列最后三个点，比较首尾的变化百分比。
// 不足两个点或首个点为 0 时视为平稳
func ComputeTrend(points []ComparisonPoint) Trend {
	if len(points) > 3 {
		points = points[len(points)-3:]
	}
	if len(points) < 2 {
		return Trend{Direction: TrendStable}
	}
	first := points[0].Expenses
	last := points[len(points)-1].Expenses
	if first == 0 {
		return Trend{Direction: TrendStable}
	}

	change := (last - first) / first * 100
	magnitude := round(math.Abs(change))
	switch {
	case change > trendThreshold:
		return Trend{Direction: TrendIncreasing, Percentage: magnitude}
	case change < -trendThreshold:
		return Trend{Direction: TrendDecreasing, Percentage: magnitude}
	default:
		return Trend{Direction: TrendStable, Percentage: magnitude}
	}
}
