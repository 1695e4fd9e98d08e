package models

// Category 消费类别（固定集合，属于对外契约）
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// 消费类别 ID
const (
	CategoryFood      = "alimentacao"
	CategoryTransport = "transporte"
	CategoryLeisure   = "lazer"
	CategoryHousing   = "moradia"
	CategoryHealth    = "saude"
	CategoryEducation = "educacao"
	CategoryShopping  = "compras"
	CategoryOther     = "outros"
)

var categories = []Category{
	{ID: CategoryFood, Name: "Alimentação", Color: "#10B981"},
	{ID: CategoryTransport, Name: "Transporte", Color: "#3B82F6"},
	{ID: CategoryLeisure, Name: "Lazer", Color: "#8B5CF6"},
	{ID: CategoryHousing, Name: "Moradia", Color: "#F59E0B"},
	{ID: CategoryHealth, Name: "Saúde", Color: "#EF4444"},
	{ID: CategoryEducation, Name: "Educação", Color: "#6366F1"},
	{ID: CategoryShopping, Name: "Compras", Color: "#EC4899"},
	{ID: CategoryOther, Name: "Outros", Color: "#6B7280"},
}

// GetCategories 获取所有消费类别（固定顺序）
func GetCategories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// FindCategory 按 ID 查找类别
func FindCategory(id string) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// IsValidCategory 检查类别是否属于固定集合
func IsValidCategory(id string) bool {
	_, ok := FindCategory(id)
	return ok
}
