package domain

// Category is a product category as exposed to search and browsing.
// Read-only in this service; the catalog owns the rows.
type Category struct {
	ID   int    `json:"category_id"`
	Name string `json:"category_name"`
}

// Product is a catalog row with its category name joined in.
type Product struct {
	ID            int     `json:"product_id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stock_quantity"`
	ImagePath     string  `json:"image_path"`
	CategoryID    int     `json:"category_id"`
	CategoryName  string  `json:"category_name"`
	IsActive      bool    `json:"is_active"`
}
