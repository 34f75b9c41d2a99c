package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/marsone/crew-api/internal/core/domain"
	"github.com/marsone/crew-api/internal/core/ports"
)

const userResource = "users"

// UserService implements ports.UserService.
type UserService struct {
	tx   ports.Transactor
	opts Options
	cost int
}

func NewUserService(tx ports.Transactor, opts Options) *UserService {
	return &UserService{tx: tx, opts: opts, cost: bcrypt.DefaultCost}
}

func (s *UserService) List(ctx context.Context) ([]ports.UserView, error) {
	var views []ports.UserView
	err := s.tx.WithinTx(ctx, func(uow ports.UnitOfWork) error {
		users, err := uow.Users().List(ctx)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		views = make([]ports.UserView, 0, len(users))
		for i := range users {
			views = append(views, toUserView(&users[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*ports.UserView, error) {
	var view ports.UserView
	err := s.tx.WithinTx(ctx, func(uow ports.UnitOfWork) error {
		u, err := uow.Users().FindByID(ctx, id)
		if err != nil {
			return notFoundAs(err, "user", id)
		}
		view = toUserView(u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Create registers a user with a hashed password. The email must not belong
// to any other user.
func (s *UserService) Create(ctx context.Context, in ports.CreateUserInput) (*ports.CreateUserResult, error) {
	var earlier *ports.UserView
	replayed, settle, err := s.opts.claimKey(ctx, userResource, in.IdempotencyKey, func(id int64) error {
		view, err := s.Get(ctx, id)
		earlier = view
		return err
	})
	if err != nil {
		return nil, err
	}
	if replayed {
		s.opts.Logger.Info().Str("idempotency_key", in.IdempotencyKey).Int64("user_id", earlier.ID).Msg("idempotent replay")
		return &ports.CreateUserResult{User: *earlier, AlreadyExisted: true}, nil
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		settle(0)
		return nil, err
	}

	var view ports.UserView
	err = s.tx.WithinTx(ctx, func(uow ports.UnitOfWork) error {
		if err := ensureEmailFree(ctx, uow, in.Email, 0); err != nil {
			return err
		}
		u := &domain.User{
			Name:         in.Name,
			Surname:      in.Surname,
			Age:          in.Age,
			Position:     in.Position,
			Speciality:   in.Speciality,
			Address:      in.Address,
			CityFrom:     in.CityFrom,
			Email:        in.Email,
			PasswordHash: string(hash),
			ModifiedDate: s.opts.now(),
		}
		if err := uow.Users().Create(ctx, u); err != nil {
			return emailConflictAs(err, in.Email, "create user")
		}
		view = toUserView(u)
		return nil
	})
	if err != nil {
		settle(0)
		return nil, err
	}

	settle(view.ID)
	s.opts.audit(ctx, userResource, view.ID, domain.AuditCreate, nil)
	s.opts.Logger.Info().Int64("user_id", view.ID).Msg("user created")

	return &ports.CreateUserResult{User: view}, nil
}

// Replace applies the fields present in patch and refreshes modified_date,
// even when patch is empty.
func (s *UserService) Replace(ctx context.Context, id int64, patch ports.UserPatch) (*ports.UserView, error) {
	var hash []byte
	if pw, ok := patch.Password.Value(); ok {
		var err error
		if hash, err = s.hash(pw); err != nil {
			return nil, err
		}
	}

	var view ports.UserView
	err := s.tx.WithinTx(ctx, func(uow ports.UnitOfWork) error {
		u, err := uow.Users().FindByID(ctx, id)
		if err != nil {
			return notFoundAs(err, "user", id)
		}

		if email, ok := patch.Email.Value(); ok && email != u.Email {
			if err := ensureEmailFree(ctx, uow, email, id); err != nil {
				return err
			}
		}

		applyUserPatch(u, patch)
		if hash != nil {
			u.PasswordHash = string(hash)
		}
		u.ModifiedDate = s.opts.now()

		if err := uow.Users().Update(ctx, u); err != nil {
			return emailConflictAs(err, u.Email, "update user")
		}
		view = toUserView(u)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.opts.audit(ctx, userResource, id, domain.AuditUpdate, patch.Fields())
	return &view, nil
}

// Delete removes a user that leads no jobs.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	err := s.tx.WithinTx(ctx, func(uow ports.UnitOfWork) error {
		if _, err := uow.Users().FindByID(ctx, id); err != nil {
			return notFoundAs(err, "user", id)
		}
		led, err := uow.Jobs().CountByLeader(ctx, id)
		if err != nil {
			return fmt.Errorf("count led jobs: %w", err)
		}
		if led > 0 {
			return leadsJobs(id)
		}
		if err := uow.Users().Delete(ctx, id); err != nil {
			if errors.Is(err, domain.ErrIntegrityViolation) {
				return leadsJobs(id)
			}
			return notFoundAs(err, "user", id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.opts.audit(ctx, userResource, id, domain.AuditDelete, nil)
	s.opts.Logger.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}

// ensureEmailFree fails with Conflict when email belongs to a user other than self.
// hash bcrypts a password. An over-long password is a field violation rather
// than an internal failure.
func (s *UserService) hash(password string) ([]byte, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, domain.Validation([]domain.FieldViolation{{Field: "password", Message: "must be at most 72 bytes"}})
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return h, nil
}

func ensureEmailFree(ctx context.Context, uow ports.UnitOfWork, email string, self int64) error {
	existing, err := uow.Users().FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("find user by email: %w", err)
	case existing.ID != self:
		return emailTaken(email)
	}
	return nil
}

func emailConflictAs(err error, email, op string) error {
	if errors.Is(err, domain.ErrConflict) {
		return emailTaken(email)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func emailTaken(email string) error {
	return domain.Conflict("email_taken", fmt.Sprintf("email %q is already registered", email))
}

func leadsJobs(id int64) error {
	return domain.IntegrityViolation("user_leads_jobs", fmt.Sprintf("user %d is the team leader of existing jobs", id))
}

func applyUserPatch(u *domain.User, patch ports.UserPatch) {
	if v, ok := patch.Name.Value(); ok {
		u.Name = v
	}
	if v, ok := patch.Email.Value(); ok {
		u.Email = v
	}
	if patch.Surname.Present() {
		u.Surname = patch.Surname.Ptr()
	}
	if patch.Age.Present() {
		u.Age = patch.Age.Ptr()
	}
	if patch.Position.Present() {
		u.Position = patch.Position.Ptr()
	}
	if patch.Speciality.Present() {
		u.Speciality = patch.Speciality.Ptr()
	}
	if patch.Address.Present() {
		u.Address = patch.Address.Ptr()
	}
	if patch.CityFrom.Present() {
		u.CityFrom = patch.CityFrom.Ptr()
	}
}

func toUserView(u *domain.User) ports.UserView {
	return ports.UserView{
		ID:           u.ID,
		Name:         u.Name,
		Surname:      u.Surname,
		Age:          u.Age,
		Position:     u.Position,
		Speciality:   u.Speciality,
		Address:      u.Address,
		CityFrom:     u.CityFrom,
		Email:        u.Email,
		ModifiedDate: u.ModifiedDate,
	}
}
