package domain

import (
	"encoding/json"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a document in the "users" collection. Identity is the email
// field, not the generated storage key.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string             `bson:"email" json:"email" validate:"required,email"`
	Name      string             `bson:"name,omitempty" json:"name,omitempty"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Photo     string             `bson:"photo,omitempty" json:"photo,omitempty"`
	CreatedAt time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
}

// Vehicle is a listing in the "vehicles" collection. CreatedAt is stamped
// server-side on insert and drives the newest-first orderings.
type Vehicle struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name" validate:"required"`
	Model       string             `bson:"model,omitempty" json:"model,omitempty"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	PricePerDay float64            `bson:"pricePerDay,omitempty" json:"pricePerDay,omitempty" validate:"gte=0"`
	OwnerEmail  string             `bson:"ownerEmail,omitempty" json:"ownerEmail,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// Booking cross-references a vehicle and a user by value; there is no
// cascading delete in either direction.
type Booking struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleID        string             `bson:"vehicleId" json:"vehicleId" validate:"required"`
	UserEmail        string             `bson:"userEmail" json:"userEmail" validate:"required,email"`
	PickupDate       string             `bson:"pickupDate,omitempty" json:"pickupDate,omitempty"`
	ReturnDate       string             `bson:"returnDate,omitempty" json:"returnDate,omitempty"`
	ConfirmationCode string             `bson:"confirmationCode,omitempty" json:"confirmationCode,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}

// Credentials is the login request body.
type Credentials struct {
	Email string `json:"email"`
}

// Claims is the decoded payload of a verified credential.
type Claims struct {
	Email     string    `json:"email"`
	ID        string    `json:"id"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (user *User) Validate() error {
	validate := validator.New()
	return validate.Struct(user)
}

func (vehicle *Vehicle) Validate() error {
	validate := validator.New()
	return validate.Struct(vehicle)
}

func (booking *Booking) Validate() error {
	validate := validator.New()
	return validate.Struct(booking)
}

func (user *User) FromJSON(reader io.Reader) error {
	d := json.NewDecoder(reader)
	return d.Decode(user)
}

func (vehicle *Vehicle) FromJSON(reader io.Reader) error {
	d := json.NewDecoder(reader)
	return d.Decode(vehicle)
}

func (vehicle *Vehicle) ToJSON(writer io.Writer) error {
	e := json.NewEncoder(writer)
	return e.Encode(vehicle)
}

func (booking *Booking) FromJSON(reader io.Reader) error {
	d := json.NewDecoder(reader)
	return d.Decode(booking)
}
