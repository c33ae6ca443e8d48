// internal/domain/order/entity.go
package order

import (
	"errors"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/mesa-pedidos/internal/domain/cart"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pendente"
)

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrNoTableAssigned      = errors.New("no table assigned")
	ErrMessagingSinkBlocked = errors.New("messaging sink blocked")
	ErrOrderNotFound        = errors.New("order not found")
)

// Order is the immutable snapshot taken at checkout
type Order struct {
	ID        string          `json:"id"`
	Table     int             `json:"mesa"`
	CreatedAt time.Time       `json:"data"`
	Items     []cart.LineItem `json:"itens"`
	Total     decimal.Decimal `json:"total"`
	Status    OrderStatus     `json:"status"`
}

// ItemCount returns the number of units in the order
func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// Clone returns a deep copy
func (o Order) Clone() Order {
	o.Items = cart.CloneItems(o.Items)
	return o
}

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateID builds an order id like "PED-1718049600000-K3F9ZQ"
func GenerateID(now time.Time) string {
	var b strings.Builder
	b.WriteString("PED-")
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 10))
	b.WriteByte('-')

	for i := 0; i < 6; i++ {
		b.WriteByte(idAlphabet[rand.Intn(len(idAlphabet))])
	}
	return b.String()
}
