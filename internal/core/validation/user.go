package validation

import (
	"github.com/marsone/crew-api/internal/core/ports"
)

type userRules struct {
	Name     *string `json:"name"     validate:"omitnil,min=1"`
	Email    *string `json:"email"    validate:"omitnil,email"`
	Password *string `json:"password" validate:"omitnil,min=1,maxbytes=72"`
	Age      *int64  `json:"age"      validate:"omitnil,gte=0"`
}

// UserCreate validates a user registration request.
func (val *Validator) UserCreate(raw map[string]any) (ports.CreateUserInput, error) {
	r := newReader(raw)
	r.required("name")
	r.required("email")
	r.required("password")

	name := trimmed(r.str("name"))
	email := trimmed(r.str("email"))
	password := r.str("password")
	age := r.integer("age")

	in := ports.CreateUserInput{
		Surname:    valuePtr(r.str("surname")),
		Position:   valuePtr(r.str("position")),
		Speciality: valuePtr(r.str("speciality")),
		Address:    valuePtr(r.str("address")),
		CityFrom:   valuePtr(r.str("city_from")),
		Age:        valuePtr(narrow(age)),
	}

	val.check(r, userRules{
		Name:     valuePtr(name),
		Email:    valuePtr(email),
		Password: valuePtr(password),
		Age:      valuePtr(age),
	})
	if err := r.result(); err != nil {
		return ports.CreateUserInput{}, err
	}

	in.Name, _ = name.Value()
	in.Email, _ = email.Value()
	in.Password, _ = password.Value()
	return in, nil
}

// UserPatch validates a partial user update.
func (val *Validator) UserPatch(raw map[string]any) (ports.UserPatch, error) {
	r := newReader(raw)
	for _, field := range []string{"name", "email", "password"} {
		r.notNull(field)
	}

	age := r.integer("age")
	patch := ports.UserPatch{
		Name:       trimmed(r.str("name")),
		Surname:    r.str("surname"),
		Age:        narrow(age),
		Position:   r.str("position"),
		Speciality: r.str("speciality"),
		Address:    r.str("address"),
		CityFrom:   r.str("city_from"),
		Email:      trimmed(r.str("email")),
		Password:   r.str("password"),
	}

	val.check(r, userRules{
		Name:     valuePtr(patch.Name),
		Email:    valuePtr(patch.Email),
		Password: valuePtr(patch.Password),
		Age:      valuePtr(age),
	})
	if err := r.result(); err != nil {
		return ports.UserPatch{}, err
	}
	return patch, nil
}
