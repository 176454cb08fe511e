package domain

// Customer is a storefront user. The dashboard can only list and delete them.
type Customer struct {
	ID          string    `json:"_id"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	PhotoURL    string    `json:"photoURL,omitempty"`
	LoginCount  int       `json:"loginCount"`
	LastLogin   Timestamp `json:"lastLogin"`
	CreatedAt   Timestamp `json:"createdAt"`
}
