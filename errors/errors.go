package errors

const (
	NoTokenError         = "no token provided"
	InvalidTokenError    = "invalid token"
	UserNotFoundError    = "user not found"
	UserAlreadyExists    = "user already exists"
	VehicleNotFoundError = "vehicle not found"
	BookingNotFoundError = "booking not found"
	InvalidIDError       = "invalid id format"
	VehicleAlreadyBooked = "vehicle is already booked"
	BookingOwnerMismatch = "booking owner does not match authenticated user"
	InvalidRequestFormat = "invalid request format"
	DatabaseError        = "something went wrong"
)
