package model

import "time"

// User is a portal account. Password holds either the plaintext secret or a
// bcrypt hash depending on the configured password scheme.
type User struct {
	ID               int
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	Password         string
	RegistrationDate time.Time
}

func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
