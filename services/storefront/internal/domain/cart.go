package domain

import "math"

// CartLine - позиция корзины: снимок товара + количество в корзине (>= 1, пока позиция существует)
type CartLine struct {
	Product
	Quantity int `json:"qty"`
}

// Cart - упорядоченный список позиций (порядок добавления = порядок отображения).
// Позиции уникальны по ID товара.
type Cart []CartLine

// Find возвращает индекс позиции с указанным id товара или -1
func (c Cart) Find(productID int64) int {
	for i := range c {
		if c[i].ID == productID {
			return i
		}
	}
	return -1
}

// Clone копирует корзину
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// Total считает сумму заказа: Σ price × qty, округлённую до центов
func (c Cart) Total() float64 {
	var total float64
	for _, line := range c {
		total += line.Price * float64(line.Quantity)
	}
	return math.Round(total*100) / 100
}

// Units возвращает общее количество единиц товара в корзине
func (c Cart) Units() int {
	n := 0
	for _, line := range c {
		n += line.Quantity
	}
	return n
}

// OrderItems переводит корзину в позиции заказа для платёжного сервиса
func (c Cart) OrderItems() []OrderItem {
	items := make([]OrderItem, 0, len(c))
	for _, line := range c {
		items = append(items, OrderItem{ProductID: line.ID, Quantity: line.Quantity})
	}
	return items
}

// OrderItem - позиция заказа (id товара и количество)
type OrderItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}
