package users

import (
	"context"
)

// Store is the slice of the repository the service needs. *Repo satisfies
// it; tests plug in an in-memory fake.
type Store interface {
	EmailTaken(ctx context.Context, email, excludeID string) (bool, error)
	UsernameTaken(ctx context.Context, username, excludeID string) (bool, error)
	Insert(ctx context.Context, u *User) (*User, error)
	Update(ctx context.Context, u *User) (*User, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create normalizes, fully validates and persists a new user. Uniqueness is
// pre-checked against the store for friendly errors; the database constraint
// still decides concurrent races.
func (s *Service) Create(ctx context.Context, u *User) (*User, error) {
	return s.validateAndSave(ctx, u, false)
}

// Update revalidates the whole record before writing, the same set of checks
// as Create. Partial updates cannot bypass any rule.
func (s *Service) Update(ctx context.Context, u *User) (*User, error) {
	return s.validateAndSave(ctx, u, true)
}

func (s *Service) validateAndSave(ctx context.Context, u *User, existing bool) (*User, error) {
	u.Normalize()
	errs := u.Validate()

	excludeID := ""
	if existing {
		excludeID = u.ID
	}
	if _, ok := errs["email"]; !ok {
		taken, err := s.store.EmailTaken(ctx, u.Email, excludeID)
		if err != nil {
			return nil, err
		}
		if taken {
			errs.Add("email", "a user with this email already exists")
		}
	}
	if _, ok := errs["username"]; !ok {
		taken, err := s.store.UsernameTaken(ctx, u.Username, excludeID)
		if err != nil {
			return nil, err
		}
		if taken {
			errs.Add("username", "a user with this username already exists")
		}
	}

	if !errs.Empty() {
		return nil, errs
	}
	if existing {
		return s.store.Update(ctx, u)
	}
	return s.store.Insert(ctx, u)
}

var _ Store = (*Repo)(nil)
