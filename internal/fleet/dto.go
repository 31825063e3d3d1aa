package fleet

// CreateVehicleRequest is the Admin payload for registering a vehicle.
// The company is always taken from the acting principal, never from
// the client.
type CreateVehicleRequest struct {
	Make               string `json:"make" validate:"required,max=64"`
	Model              string `json:"model" validate:"required,max=64"`
	RegistrationNumber string `json:"registration_number" validate:"required,max=32"`
	DriverID           int64  `json:"driver_id" validate:"required,gt=0"`
}
