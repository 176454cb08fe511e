package domain

import "github.com/shopspring/decimal"

// OrderStatus is the fulfillment state of an order
type OrderStatus string

const (
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
	OrderDelivered  OrderStatus = "Delivered"
	OrderCancelled  OrderStatus = "Cancelled"
)

// OrderStatuses lists every fulfillment status in display order.
var OrderStatuses = []OrderStatus{OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled}

func (s OrderStatus) Valid() bool {
	for _, status := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Order represents a customer order
type Order struct {
	ID            string          `json:"_id"`
	CustomerName  string          `json:"customerName"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone,omitempty"`
	Address       string          `json:"address,omitempty"`
	Items         []OrderItem     `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	PaymentMethod string          `json:"paymentMethod"`
	PaymentStatus string          `json:"paymentStatus"`
	Status        OrderStatus     `json:"status"`
	CreatedAt     Timestamp       `json:"createdAt"`
}

// OrderItem is one line of an order
type OrderItem struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// LineTotal is price multiplied by quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemsSubtotal sums the line totals. Used when the backend omits subtotal.
func (o Order) ItemsSubtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}
