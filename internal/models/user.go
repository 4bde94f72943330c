package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Address types.
const (
	AddressHome  = "home"
	AddressWork  = "work"
	AddressOther = "other"
)

// OTPChallenge is the pending one-time code of a user. An empty CodeHash
// means no challenge is outstanding.
type OTPChallenge struct {
	CodeHash  string     `json:"-"`
	ExpiresAt *time.Time `json:"-"`
	Attempts  int        `json:"-" gorm:"not null;default:0"`
}

// Pending reports whether a code has been issued and not yet consumed.
func (o OTPChallenge) Pending() bool {
	return o.CodeHash != ""
}

// Address is one entry of a user's address book.
type Address struct {
	ID        string   `json:"id"`
	Type      string   `json:"type" validate:"omitempty,oneof=home work other"`
	Address   string   `json:"address" validate:"required"`
	Landmark  string   `json:"landmark,omitempty"`
	City      string   `json:"city,omitempty"`
	Pincode   string   `json:"pincode,omitempty"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
	IsDefault bool     `json:"isDefault"`
}

// User represents an account identified by its phone number.
type User struct {
	ID         string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name       string       `json:"name" gorm:"not null" validate:"required"`
	Phone      string       `json:"phone" gorm:"uniqueIndex;type:varchar(10);not null" validate:"required,phone10"`
	Email      string       `json:"email,omitempty" validate:"omitempty,email"`
	IsVerified bool         `json:"isVerified"`
	OTP        OTPChallenge `json:"-" gorm:"embedded;embeddedPrefix:otp_"`
	Addresses  []Address    `json:"addresses" gorm:"serializer:json;type:text"`
	Role       string       `json:"role" gorm:"not null;type:varchar(10)"`
	LastLogin  *time.Time   `json:"lastLogin,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// AddressIndex returns the position of the address with the given id, or -1.
func (u *User) AddressIndex(id string) int {
	for i := range u.Addresses {
		if u.Addresses[i].ID == id {
			return i
		}
	}
	return -1
}

// ClearDefaultAddress unmarks every address except the one at keep (-1 for none).
func (u *User) ClearDefaultAddress(keep int) {
	for i := range u.Addresses {
		if i != keep {
			u.Addresses[i].IsDefault = false
		}
	}
}
