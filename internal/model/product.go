package model

// Product mirrors the `product` table.  The json tags follow the column
// aliases the storefront has always consumed.
type Product struct {
    ID          uint64  `json:"id"`
    Name        string  `json:"productName"`
    Price       float64 `json:"price"`
    UnitsStored int     `json:"unitsStored"`
    Description string  `json:"productDescription"`
    ImageURL    string  `json:"imageUrl"`
    Category    string  `json:"category"`
}

// NewProduct carries the fields accepted when the catalog is extended.
// Stock and description are filled in later by inventory tooling.
type NewProduct struct {
    Name     string  `json:"productName"`
    Price    float64 `json:"price"`
    ImageURL string  `json:"imageUrl"`
    Category string  `json:"category"`
}

// Category mirrors the `product_category` table.
type Category struct {
    Name        string `json:"categoryName"`
    Description string `json:"categoryDescription"`
}
