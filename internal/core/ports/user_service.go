package ports

import (
	"context"
	"time"

	"github.com/marsone/crew-api/internal/core/domain"
)

// CreateUserInput carries a validated user creation request. Password is plain
// text here and is hashed by the service.
type CreateUserInput struct {
	Name           string
	Surname        *string
	Age            *int
	Position       *string
	Speciality     *string
	Address        *string
	CityFrom       *string
	Email          string
	Password       string
	IdempotencyKey string
}

// UserPatch carries a validated partial update.
type UserPatch struct {
	Name       domain.Optional[string]
	Surname    domain.Optional[string]
	Age        domain.Optional[int]
	Position   domain.Optional[string]
	Speciality domain.Optional[string]
	Address    domain.Optional[string]
	CityFrom   domain.Optional[string]
	Email      domain.Optional[string]
	Password   domain.Optional[string]
}

// Fields lists the JSON names of the fields present in the patch.
func (p UserPatch) Fields() []string {
	var out []string
	add := func(present bool, name string) {
		if present {
			out = append(out, name)
		}
	}
	add(p.Name.Present(), "name")
	add(p.Surname.Present(), "surname")
	add(p.Age.Present(), "age")
	add(p.Position.Present(), "position")
	add(p.Speciality.Present(), "speciality")
	add(p.Address.Present(), "address")
	add(p.CityFrom.Present(), "city_from")
	add(p.Email.Present(), "email")
	add(p.Password.Present(), "password")
	return out
}

// UserView is the public user representation. It never carries the credential.
type UserView struct {
	ID           int64
	Name         string
	Surname      *string
	Age          *int
	Position     *string
	Speciality   *string
	Address      *string
	CityFrom     *string
	Email        string
	ModifiedDate time.Time
}

// CreateUserResult is returned by Create.
type CreateUserResult struct {
	User           UserView
	AlreadyExisted bool
}

// UserService defines the user resource operations.
type UserService interface {
	List(ctx context.Context) ([]UserView, error)
	Get(ctx context.Context, id int64) (*UserView, error)
	Create(ctx context.Context, in CreateUserInput) (*CreateUserResult, error)
	Replace(ctx context.Context, id int64, patch UserPatch) (*UserView, error)
	Delete(ctx context.Context, id int64) error
}
