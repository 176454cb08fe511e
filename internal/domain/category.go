package domain

// Category represents a product category
type Category struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
	Image       string `json:"image,omitempty"`
}
