package domain

// Admin is the signed-in dashboard operator
type Admin struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Role    string `json:"role,omitempty"`
}
