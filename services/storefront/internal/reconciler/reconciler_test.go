package reconciler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shestoi/storefront/services/storefront/internal/domain"
)

func tent(qty int) domain.Product {
	return domain.Product{ID: 1, Name: "Tent", Price: 10.50, Qty: qty, Category: "Tent"}
}

func backpack(qty int) domain.Product {
	return domain.Product{ID: 2, Name: "Backpack", Price: 4.50, Qty: qty, Category: "Backpacks"}
}

func TestApply_StockRoundTrip(t *testing.T) {
	s := State{Products: []domain.Product{tent(5)}}

	s, res := Apply(s, Operation{Kind: KindAdd, ProductID: 1})
	require.True(t, res.Applied)
	require.Equal(t, 4, s.Products[0].Qty)
	require.Equal(t, 1, s.Cart[0].Quantity)

	s, res = Apply(s, Operation{Kind: KindIncrease, ProductID: 1})
	require.True(t, res.Applied)
	require.Equal(t, 3, s.Products[0].Qty)
	require.Equal(t, 2, s.Cart[0].Quantity)

	s, res = Apply(s, Operation{Kind: KindDecrease, ProductID: 1})
	require.True(t, res.Applied)
	require.Equal(t, 4, s.Products[0].Qty)
	require.Equal(t, 1, s.Cart[0].Quantity)

	s, res = Apply(s, Operation{Kind: KindRemove, ProductID: 1})
	require.True(t, res.Applied)
	require.Equal(t, 5, s.Products[0].Qty)
	require.Empty(t, s.Cart)
}

func TestAddToCart(t *testing.T) {
	tests := []struct {
		name      string
		state     State
		productID int64
		wantErr   error
		wantCart  domain.Cart
		wantStock int
	}{
		{
			name:      "new line",
			state:     State{Products: []domain.Product{tent(5)}},
			productID: 1,
			wantCart:  domain.Cart{{Product: tent(5), Quantity: 1}},
			wantStock: 4,
		},
		{
			name: "existing line",
			state: State{
				Products: []domain.Product{tent(3)},
				Cart:     domain.Cart{{Product: tent(5), Quantity: 2}},
			},
			productID: 1,
			wantCart:  domain.Cart{{Product: tent(5), Quantity: 3}},
			wantStock: 2,
		},
		{
			name:      "out of stock",
			state:     State{Products: []domain.Product{tent(0)}},
			productID: 1,
			wantErr:   ErrOutOfStock,
			wantStock: 0,
		},
		{
			name:      "unknown product",
			state:     State{Products: []domain.Product{tent(5)}},
			productID: 42,
			wantErr:   ErrProductNotFound,
			wantStock: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, res := AddToCart(tt.state, tt.productID)

			if tt.wantErr != nil {
				require.False(t, res.Applied)
				require.ErrorIs(t, res.Err, tt.wantErr)
				require.Equal(t, tt.state, next)
			} else {
				require.True(t, res.Applied)
				require.NoError(t, res.Err)
				require.Equal(t, tt.wantCart, next.Cart)
			}
			require.Equal(t, tt.wantStock, next.Products[0].Qty)
		})
	}
}

func TestAddToCart_KeepsInsertionOrder(t *testing.T) {
	s := State{Products: []domain.Product{tent(5), backpack(5)}}

	s, _ = AddToCart(s, 2)
	s, _ = AddToCart(s, 1)
	s, _ = AddToCart(s, 2)

	require.Len(t, s.Cart, 2)
	require.Equal(t, int64(2), s.Cart[0].ID)
	require.Equal(t, 2, s.Cart[0].Quantity)
	require.Equal(t, int64(1), s.Cart[1].ID)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	products := []domain.Product{tent(5)}
	cart := domain.Cart{{Product: tent(5), Quantity: 2}}
	in := State{Products: products, Cart: cart}

	_, res := Apply(in, Operation{Kind: KindIncrease, ProductID: 1})
	require.True(t, res.Applied)
	_, res = Apply(in, Operation{Kind: KindRemove, ProductID: 1})
	require.True(t, res.Applied)

	require.Equal(t, 5, products[0].Qty)
	require.Equal(t, 2, cart[0].Quantity)
	require.Len(t, cart, 1)
}

func TestRemoveFromCart(t *testing.T) {
	s := State{
		Products: []domain.Product{tent(2), backpack(1)},
		Cart: domain.Cart{
			{Product: tent(5), Quantity: 3},
			{Product: backpack(2), Quantity: 1},
		},
	}

	next, res := RemoveFromCart(s, 1)
	require.True(t, res.Applied)
	require.Equal(t, 5, next.Products[0].Qty)
	require.Equal(t, 1, next.Products[1].Qty)
	require.Len(t, next.Cart, 1)
	require.Equal(t, int64(2), next.Cart[0].ID)

	again, res := RemoveFromCart(next, 1)
	require.False(t, res.Applied)
	require.ErrorIs(t, res.Err, ErrLineNotFound)
	require.Equal(t, next, again)
}

func TestRemoveFromCart_ProductOutsideSelection(t *testing.T) {
	s := State{
		Products: []domain.Product{backpack(1)},
		Cart:     domain.Cart{{Product: tent(5), Quantity: 2}},
	}

	next, res := RemoveFromCart(s, 1)

	require.True(t, res.Applied)
	require.Empty(t, next.Cart)
	require.Equal(t, []domain.Product{backpack(1)}, next.Products)
}

func TestIncreaseCartItem(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		wantErr error
	}{
		{
			name:    "line missing",
			state:   State{Products: []domain.Product{tent(5)}},
			wantErr: ErrLineNotFound,
		},
		{
			name: "no stock left",
			state: State{
				Products: []domain.Product{tent(0)},
				Cart:     domain.Cart{{Product: tent(5), Quantity: 5}},
			},
			wantErr: ErrOutOfStock,
		},
		{
			name: "product outside selection",
			state: State{
				Products: []domain.Product{backpack(3)},
				Cart:     domain.Cart{{Product: tent(5), Quantity: 1}},
			},
			wantErr: ErrProductNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, res := IncreaseCartItem(tt.state, 1)

			require.False(t, res.Applied)
			require.ErrorIs(t, res.Err, tt.wantErr)
			require.Equal(t, tt.state, next)
		})
	}
}

func TestDecreaseCartItem_LastUnitRemovesLine(t *testing.T) {
	s := State{
		Products: []domain.Product{tent(4)},
		Cart:     domain.Cart{{Product: tent(5), Quantity: 1}},
	}

	decreased, res := DecreaseCartItem(s, 1)
	require.True(t, res.Applied)

	removed, res := RemoveFromCart(s, 1)
	require.True(t, res.Applied)

	require.Equal(t, removed, decreased)
	require.Equal(t, 5, decreased.Products[0].Qty)
}

func TestDecreaseCartItem_LineMissing(t *testing.T) {
	s := State{Products: []domain.Product{tent(4)}}

	next, res := DecreaseCartItem(s, 1)

	require.False(t, res.Applied)
	require.ErrorIs(t, res.Err, ErrLineNotFound)
	require.Equal(t, s, next)
}

func TestApply_UnknownKind(t *testing.T) {
	s := State{Products: []domain.Product{tent(5)}}

	next, res := Apply(s, Operation{Kind: "drop", ProductID: 1})

	require.False(t, res.Applied)
	require.ErrorIs(t, res.Err, ErrUnknownOperation)
	require.Equal(t, s, next)
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{KindAdd, KindRemove, KindIncrease, KindDecrease} {
		got, err := ParseKind(string(k))
		require.NoError(t, err)
		require.Equal(t, k, got)
	}

	_, err := ParseKind("ADD")
	require.ErrorIs(t, err, ErrUnknownOperation)
}

func TestApply_AddTwiceThenDecreaseTwice(t *testing.T) {
	s := State{Products: []domain.Product{tent(5)}}

	steps := []struct {
		kind      Kind
		wantQty   int
		wantStock int
	}{
		{KindAdd, 1, 4},
		{KindAdd, 2, 3},
		{KindDecrease, 1, 4},
		{KindDecrease, 0, 5},
	}

	for _, step := range steps {
		var res Result
		s, res = Apply(s, Operation{Kind: step.kind, ProductID: 1})
		require.True(t, res.Applied, step.kind)
		require.Equal(t, step.wantStock, s.Products[0].Qty)
		if step.wantQty == 0 {
			require.Empty(t, s.Cart)
			continue
		}
		require.Equal(t, step.wantQty, s.Cart[0].Quantity)
	}
}
