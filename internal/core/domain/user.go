package domain

import "time"

// User models a crew member. PasswordHash never leaves the service layer.
type User struct {
	ID           int64
	Name         string
	Surname      *string
	Age          *int
	Position     *string
	Speciality   *string
	Address      *string
	CityFrom     *string
	Email        string
	PasswordHash string
	ModifiedDate time.Time
}
