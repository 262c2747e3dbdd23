package domain

// Product - товар каталога в том виде, в каком его отдаёт catalog API.
// Qty - остаток на складе по данным каталога; storefront уменьшает его локально при добавлении в корзину,
// следующая выборка каталога перезаписывает локальные изменения.
type Product struct {
	ID          int64   `json:"Id"`
	BrandName   string  `json:"BrandName"`
	Name        string  `json:"Name"`
	Description string  `json:"Description"`
	Photo       string  `json:"Photo"`
	SKU         string  `json:"SKU"`
	Price       float64 `json:"Price"`
	Qty         int     `json:"Qty"`
	Category    string  `json:"Category"`
}

// FindProduct возвращает индекс товара с указанным id или -1
func FindProduct(products []Product, id int64) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}

// CloneProducts копирует список товаров (товары - значения, копии достаточно)
func CloneProducts(products []Product) []Product {
	if products == nil {
		return nil
	}
	out := make([]Product, len(products))
	copy(out, products)
	return out
}
