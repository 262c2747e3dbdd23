package domain

// CategoryAll - ключ "все товары"; взаимоисключающий с любыми другими ключами
const CategoryAll = "All"

// Category - категория фильтра каталога
type Category struct {
	Name string `json:"name" yaml:"name"`
	Key  string `json:"key" yaml:"key"`
}

// DefaultCategories возвращает набор категорий витрины по умолчанию
func DefaultCategories() []Category {
	return []Category{
		{Name: "All Items", Key: CategoryAll},
		{Name: "Shoe", Key: "Shoe"},
		{Name: "Backpacks", Key: "Backpacks"},
		{Name: "Tent", Key: "Tent"},
		{Name: "Sleeping Bag", Key: "Sleeping Bag"},
		{Name: "Sleeping Pad", Key: "Sleeping Pad"},
	}
}

// Selection - выбранные покупателем ключи категорий в порядке выбора
type Selection []string

// NewSelection возвращает выбор по умолчанию: {"All"}
func NewSelection() Selection {
	return Selection{CategoryAll}
}

// Has проверяет, выбран ли ключ
func (s Selection) Has(key string) bool {
	for _, k := range s {
		if k == key {
			return true
		}
	}
	return false
}

// IsAll - нужен ли нефильтрованный каталог (ровно {"All"} или пустой выбор)
func (s Selection) IsAll() bool {
	return len(s) == 0 || (len(s) == 1 && s[0] == CategoryAll)
}

// Toggle применяет отметку/снятие чекбокса категории и возвращает новый выбор.
// Отметка "All" даёт ровно {"All"}; отметка любого другого ключа снимает "All".
func (s Selection) Toggle(key string, checked bool) Selection {
	if !checked {
		out := make(Selection, 0, len(s))
		for _, k := range s {
			if k != key {
				out = append(out, k)
			}
		}
		return out
	}

	if key == CategoryAll {
		return NewSelection()
	}

	out := make(Selection, 0, len(s)+1)
	for _, k := range s {
		if k != CategoryAll && k != key {
			out = append(out, k)
		}
	}
	return append(out, key)
}
