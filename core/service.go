package core

import (
	"context"
	"time"
)

// storeTimeout bounds the store round-trip each handler performs.
const storeTimeout = 3 * time.Second

// RepositoryAuthService implements AuthService over a UserRepository.
type RepositoryAuthService struct {
	users UserRepository
}

func NewRepositoryAuthService(users UserRepository) *RepositoryAuthService {
	return &RepositoryAuthService{users: users}
}

// Register validates a credential pair and persists a new user, returning the
// new row id. Validation short-circuits on the first failure; no row is
// written unless every check passes.
func (s *RepositoryAuthService) Register(ctx context.Context, username, password string) (int64, error) {
	if username == "" {
		return 0, ErrUsernameRequired
	}
	if password == "" {
		return 0, ErrPasswordRequired
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	existing, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, ErrUserExists
	}

	hash, err := HashPassword(password)
	if err != nil {
		return 0, err
	}

	// Two racing registrations can both pass the lookup above; the store's
	// unique constraint decides, and Create reports the loser as ErrUserExists.
	return s.users.Create(ctx, username, hash)
}

// Authenticate verifies a credential pair against the store. Username matching
// is exact and case-sensitive. An unknown username and a wrong password yield
// distinct errors on purpose; the asymmetry is documented behaviour.
func (s *RepositoryAuthService) Authenticate(ctx context.Context, username, password string) (User, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return User{}, err
	}
	if u == nil {
		return User{}, ErrIncorrectUsername
	}
	if !CheckPassword(password, u.PasswordHash) {
		return User{}, ErrIncorrectPassword
	}
	return User{ID: u.ID, Username: u.Username}, nil
}
