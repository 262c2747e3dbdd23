// Package reconciler содержит чистую логику корзины: по текущему списку товаров и корзине
// вычисляет следующее состояние для add/remove/increase/decrease.
//
// Функции не мутируют входные данные. Если операция неприменима, возвращается то же самое
// состояние и Result{Applied: false, Err: ...}.
package reconciler

import (
	"errors"
	"fmt"

	"github.com/shestoi/storefront/services/storefront/internal/domain"
)

// Kind - тип операции над корзиной
type Kind string

const (
	KindAdd      Kind = "add"
	KindRemove   Kind = "remove"
	KindIncrease Kind = "increase"
	KindDecrease Kind = "decrease"
)

var (
	// ErrProductNotFound - товара нет в текущем списке каталога
	ErrProductNotFound = errors.New("product not found")
	// ErrLineNotFound - позиции нет в корзине
	ErrLineNotFound = errors.New("cart line not found")
	// ErrOutOfStock - остаток товара исчерпан (stock violation)
	ErrOutOfStock = errors.New("out of stock")
	// ErrUnknownOperation - неизвестный Kind
	ErrUnknownOperation = errors.New("unknown cart operation")
)

// ParseKind разбирает имя операции
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindAdd, KindRemove, KindIncrease, KindDecrease:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOperation, s)
	}
}

// Operation - операция над корзиной для одного товара
type Operation struct {
	Kind      Kind
	ProductID int64
}

// State - пара (список товаров, корзина)
type State struct {
	Products []domain.Product
	Cart     domain.Cart
}

// Result - применилась ли операция; Err объясняет отказ
type Result struct {
	Applied bool
	Err     error
}

func rejected(err error) Result {
	return Result{Err: err}
}

var applied = Result{Applied: true}

// Apply - единая точка диспетчеризации операций
func Apply(s State, op Operation) (State, Result) {
	switch op.Kind {
	case KindAdd:
		return AddToCart(s, op.ProductID)
	case KindRemove:
		return RemoveFromCart(s, op.ProductID)
	case KindIncrease:
		return IncreaseCartItem(s, op.ProductID)
	case KindDecrease:
		return DecreaseCartItem(s, op.ProductID)
	default:
		return s, rejected(fmt.Errorf("%w: %q", ErrUnknownOperation, op.Kind))
	}
}

// AddToCart добавляет единицу товара: новая позиция с qty=1 или qty+1 у существующей.
// Остаток товара уменьшается на 1; при нулевом остатке операция отклоняется.
func AddToCart(s State, productID int64) (State, Result) {
	pi := domain.FindProduct(s.Products, productID)
	if pi < 0 {
		return s, rejected(ErrProductNotFound)
	}
	if s.Products[pi].Qty <= 0 {
		return s, rejected(ErrOutOfStock)
	}

	next := State{Products: domain.CloneProducts(s.Products), Cart: s.Cart.Clone()}
	next.Products[pi].Qty--

	if li := next.Cart.Find(productID); li >= 0 {
		next.Cart[li].Quantity++
	} else {
		// снимок берём до списания остатка, как его видел покупатель
		next.Cart = append(next.Cart, domain.CartLine{Product: s.Products[pi], Quantity: 1})
	}

	return next, applied
}

// RemoveFromCart удаляет позицию целиком и возвращает на склад всё её количество
func RemoveFromCart(s State, productID int64) (State, Result) {
	li := s.Cart.Find(productID)
	if li < 0 {
		return s, rejected(ErrLineNotFound)
	}

	next := State{Products: domain.CloneProducts(s.Products), Cart: removeLine(s.Cart, li)}
	restock(next.Products, productID, s.Cart[li].Quantity)

	return next, applied
}

// IncreaseCartItem увеличивает qty существующей позиции, если у товара есть остаток
func IncreaseCartItem(s State, productID int64) (State, Result) {
	li := s.Cart.Find(productID)
	if li < 0 {
		return s, rejected(ErrLineNotFound)
	}
	pi := domain.FindProduct(s.Products, productID)
	if pi < 0 {
		return s, rejected(ErrProductNotFound)
	}
	if s.Products[pi].Qty <= 0 {
		return s, rejected(ErrOutOfStock)
	}

	next := State{Products: domain.CloneProducts(s.Products), Cart: s.Cart.Clone()}
	next.Cart[li].Quantity++
	next.Products[pi].Qty--

	return next, applied
}

// DecreaseCartItem уменьшает qty на 1; позиция с qty=1 удаляется. Остаток +1.
func DecreaseCartItem(s State, productID int64) (State, Result) {
	li := s.Cart.Find(productID)
	if li < 0 {
		return s, rejected(ErrLineNotFound)
	}

	next := State{Products: domain.CloneProducts(s.Products)}
	if s.Cart[li].Quantity > 1 {
		next.Cart = s.Cart.Clone()
		next.Cart[li].Quantity--
	} else {
		next.Cart = removeLine(s.Cart, li)
	}
	restock(next.Products, productID, 1)

	return next, applied
}

func removeLine(c domain.Cart, i int) domain.Cart {
	out := make(domain.Cart, 0, len(c)-1)
	out = append(out, c[:i]...)
	return append(out, c[i+1:]...)
}

// restock возвращает units на склад; товара может не быть в текущей выборке (другая категория)
func restock(products []domain.Product, productID int64, units int) {
	if pi := domain.FindProduct(products, productID); pi >= 0 {
		products[pi].Qty += units
	}
}
