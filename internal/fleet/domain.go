package fleet

// Vehicle is a company-owned vehicle, optionally assigned to a driver.
type Vehicle struct {
	ID                 int64  `json:"id"`
	Make               string `json:"make"`
	Model              string `json:"model"`
	RegistrationNumber string `json:"registration_number"`
	DriverID           int64  `json:"driver_id"`
	CompanyID          int64  `json:"company_id"`
}
