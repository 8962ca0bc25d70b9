package domain

// Product is a catalog item that can be picked into a sale
type Product struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price Price  `json:"price"`
}
