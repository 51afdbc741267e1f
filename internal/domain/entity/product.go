package entity

type Product struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	IsAvailable bool    `json:"isAvailable"`
	ImageURL    string  `json:"imageUrl,omitempty"`
}

// Purchasable reports whether a buyer may place an order for the product.
func (p *Product) Purchasable() bool {
	return p.IsAvailable && p.Stock > 0
}
