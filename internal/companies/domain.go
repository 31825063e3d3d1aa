package companies

// Company is the tenant boundary: every user, vehicle and booking in
// the system belongs to exactly one company.
type Company struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Address *string `json:"address,omitempty"`
}
