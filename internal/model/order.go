package model

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered},
	OrderDelivered:  {},
	OrderCancelled:  {},
}

// CanTransition reports whether the status state machine allows from → to.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Order totals are canonical decimal strings, computed once at creation.
type Order struct {
	BaseModel
	UserID   string      `db:"user_id" json:"user_id"`
	Status   OrderStatus `db:"status" json:"status"`
	Subtotal string      `db:"subtotal" json:"subtotal"`
	Shipping string      `db:"shipping" json:"shipping"`
	Tax      string      `db:"tax" json:"tax"`
	Discount string      `db:"discount" json:"discount"`
	Total    string      `db:"total" json:"total"`

	Items []OrderItem `db:"-" json:"items"`
}

// OrderItem snapshots product title/sku/image at purchase time so later
// product edits never alter historical orders.
type OrderItem struct {
	BaseModel
	OrderID   string  `db:"order_id" json:"order_id"`
	ProductID string  `db:"product_id" json:"product_id"`
	VariantID *string `db:"variant_id" json:"variant_id"`
	Title     string  `db:"title" json:"title"`
	SKU       string  `db:"sku" json:"sku"`
	ImageURL  *string `db:"image_url" json:"image_url"`
	Price     string  `db:"price" json:"price"`
	Quantity  int     `db:"quantity" json:"quantity"`
}
