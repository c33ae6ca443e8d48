package pdf

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/mesa-pedidos/internal/config"
	"github.com/your-org/mesa-pedidos/internal/domain/cart"
	"github.com/your-org/mesa-pedidos/internal/domain/order"
)

func TestReceiptHTML(t *testing.T) {
	s := NewService(&config.Config{
		Restaurant: config.RestaurantConfig{Name: "Espetinho do Zé", Timezone: "America/Sao_Paulo"},
	})

	note := "<b>sem sal</b>"
	o := &order.Order{
		ID:        "PED-1718049600000-ABC123",
		Table:     8,
		CreatedAt: time.Date(2024, 6, 10, 23, 5, 0, 0, time.UTC),
		Items: []cart.LineItem{
			{Kind: cart.KindSimple, ID: "20", Name: "Porção de fritas", Price: decimal.RequireFromString("18.9"), Quantity: 2},
			{
				Kind:        cart.KindCompound,
				ID:          "10_variado_1",
				Name:        "Espetinho",
				Description: "3 espetos: 2x Carne, 1x Frango",
				Price:       decimal.NewFromInt(24),
				Quantity:    1,
				Note:        &note,
				Flavors:     []cart.Flavor{{ID: "carne", Name: "Carne", Quantity: 2}, {ID: "frango", Name: "Frango", Quantity: 1}},
			},
		},
		Total:  decimal.RequireFromString("61.8"),
		Status: order.OrderStatusPending,
	}

	html, err := s.ReceiptHTML(o)
	require.NoError(t, err)

	assert.Contains(t, html, "Espetinho do Zé")
	assert.Contains(t, html, "Mesa 8 &middot; 10/06/2024 20:05")
	assert.Contains(t, html, "R$ 37,80")
	assert.Contains(t, html, "3 espetos: 2x Carne, 1x Frango")
	assert.Contains(t, html, "Total (3 itens)")
	assert.Contains(t, html, "R$ 61,80")
	assert.Contains(t, html, "&lt;b&gt;sem sal&lt;/b&gt;")
}
