package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shestoi/storefront/services/storefront/internal/domain"
)

// categoriesFile - формат файла категорий:
//
//	categories:
//	  - name: All Items
//	    key: All
//	  - name: Shoe
//	    key: Shoe
type categoriesFile struct {
	Categories []domain.Category `yaml:"categories"`
}

// LoadCategories читает список категорий витрины из YAML файла.
// Пустой path означает встроенный список domain.DefaultCategories.
func LoadCategories(path string) ([]domain.Category, error) {
	if path == "" {
		return domain.DefaultCategories(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read categories file: %w", err)
	}
	return ParseCategories(data)
}

// ParseCategories разбирает YAML со списком категорий.
// Ключ "All" обязателен и должен быть первым; ключи уникальны.
func ParseCategories(data []byte) ([]domain.Category, error) {
	var file categoriesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse categories: %w", err)
	}

	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("categories list is empty")
	}
	if file.Categories[0].Key != domain.CategoryAll {
		return nil, fmt.Errorf("first category must have key %q", domain.CategoryAll)
	}

	seen := make(map[string]struct{}, len(file.Categories))
	for i, c := range file.Categories {
		if c.Key == "" {
			return nil, fmt.Errorf("category #%d has empty key", i)
		}
		if _, dup := seen[c.Key]; dup {
			return nil, fmt.Errorf("duplicate category key %q", c.Key)
		}
		seen[c.Key] = struct{}{}
		if c.Name == "" {
			file.Categories[i].Name = c.Key
		}
	}

	return file.Categories, nil
}
