package model

import "time"

// Order is a row in `customer_order`.  An order and its lines are written in
// one transaction; no header exists without its lines.
//
// Fields:
//  ID         – primary key identifier.
//  OrderDate  – server time at creation (UTC).
//  CustomerID – owning user.
type Order struct {
    ID         uint64    // customer_order.id
    OrderDate  time.Time // customer_order.order_date
    CustomerID uint64    // customer_order.customer_id
}

// OrderLine is a row in `order_line`.
type OrderLine struct {
    OrderID   uint64 // order_line.order_id
    ProductID uint64 // order_line.product_id
    Quantity  int    // order_line.quantity
}

// LineItem is one requested product in an order placement.
type LineItem struct {
    ProductID uint64 `json:"id"`
    Quantity  int    `json:"quantity"`
}

// OrderedProduct is a product as it appears inside an order listing, joined
// with the quantity bought.
type OrderedProduct struct {
    ID       uint64  `json:"id"`
    Name     string  `json:"productName"`
    Price    float64 `json:"price"`
    ImageURL string  `json:"imageUrl"`
    Category string  `json:"category"`
    Quantity int     `json:"quantity"`
}

// OrderSummary groups an order header with its products.
type OrderSummary struct {
    OrderID   uint64           `json:"orderId"`
    OrderDate time.Time        `json:"orderDate"`
    Products  []OrderedProduct `json:"products"`
}
