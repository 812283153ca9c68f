package models

import "time"

// User is a registered MamaCare account.
type User struct {
	ID        string     `bson:"_id" json:"id"`
	Name      string     `bson:"name" json:"name"`
	Email     string     `bson:"email" json:"email"`
	Password  string     `bson:"password" json:"-"` // bcrypt hash, never serialised
	DOB       *time.Time `bson:"dob,omitempty" json:"dob,omitempty"`
	LMP       *time.Time `bson:"lmp,omitempty" json:"lmp,omitempty"`
	DueDate   *time.Time `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	Phone     string     `bson:"phone,omitempty" json:"phone,omitempty"`
	Language  string     `bson:"language,omitempty" json:"language,omitempty"`
	IsAdmin   bool       `bson:"isAdmin" json:"isAdmin"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// Identity is the authenticated caller attached to a request. It never
// carries the password hash.
type Identity struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Email   string     `json:"email"`
	DueDate *time.Time `json:"dueDate,omitempty"`
	IsAdmin bool       `json:"isAdmin"`
}

// Identity projects the safe fields of u.
func (u *User) Identity() *Identity {
	return &Identity{ID: u.ID, Name: u.Name, Email: u.Email, DueDate: u.DueDate, IsAdmin: u.IsAdmin}
}
