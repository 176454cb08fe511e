package domain

// Report is the backend's pre-aggregated dashboard summary
type Report struct {
	Month             string `json:"month,omitempty"`
	TotalProducts     int    `json:"totalProducts"`
	TotalCustomers    int    `json:"totalCustomers"`
	InquiriesReceived int    `json:"inquiriesReceived"`
	TotalOrders       int    `json:"totalOrders"`
}

// MonthlyReport summarises orders placed in one calendar month. Month is
// zero based to match the backend.
type MonthlyReport struct {
	Month          int     `json:"month"`
	Year           int     `json:"year"`
	TotalOrders    int     `json:"totalOrders"`
	TotalItemsSold int     `json:"totalItemsSold"`
	TotalRevenue   float64 `json:"totalRevenue"`
}

// MonthLabel returns the human (one based) month number.
func (m MonthlyReport) MonthLabel() int {
	return m.Month + 1
}
