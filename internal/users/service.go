package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"notrello/internal/auth"
)

const (
	minPasswordLen = 8
	maxPseudoLen   = 32
)

// RegistrationObserver is told about every new account.
type RegistrationObserver interface {
	UserRegistered()
}

type Service struct {
	store    Store
	observer RegistrationObserver
}

func NewService(store Store, observer RegistrationObserver) *Service {
	return &Service{store: store, observer: observer}
}

// Register validates input and creates the account.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	pseudo := strings.TrimSpace(input.Pseudo)
	email := normalizeEmail(input.Email)

	if pseudo == "" {
		return nil, fmt.Errorf("%w: pseudo is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(pseudo) > maxPseudoLen {
		return nil, fmt.Errorf("%w: pseudo is longer than %d characters", ErrInvalidInput, maxPseudoLen)
	}
	// login tells pseudos and emails apart by the @
	if strings.Contains(pseudo, "@") {
		return nil, fmt.Errorf("%w: pseudo must not contain @", ErrInvalidInput)
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, fmt.Errorf("%w: email is not valid", ErrInvalidInput)
	}
	if utf8.RuneCountInString(input.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLen)
	}

	if _, err := s.store.FindByPseudo(ctx, pseudo); err == nil {
		return nil, ErrPseudoTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	u := &User{Pseudo: pseudo, Email: email, PasswordHash: hash}
	if err := s.store.Insert(ctx, u); err != nil {
		return nil, err
	}
	if s.observer != nil {
		s.observer.UserRegistered()
	}
	return u, nil
}

// Login resolves the identifier and checks the password. Unknown accounts
// and wrong passwords both return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, input LoginInput) (*User, error) {
	id := strings.TrimSpace(input.Identifier)
	if id == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: identifier and password are required", ErrInvalidInput)
	}

	var (
		u   *User
		err error
	)
	if strings.Contains(id, "@") {
		u, err = s.store.FindByEmail(ctx, normalizeEmail(id))
	} else {
		u, err = s.store.FindByPseudo(ctx, id)
	}
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !auth.CheckPassword(u.PasswordHash, input.Password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Get returns the user with the given id.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*User, error) {
	return s.store.FindByID(ctx, id)
}

// EmailExists reports whether an account uses email.
func (s *Service) EmailExists(ctx context.Context, email string) (bool, error) {
	return exists(s.store.FindByEmail(ctx, normalizeEmail(email)))
}

// PseudoExists reports whether an account uses pseudo.
func (s *Service) PseudoExists(ctx context.Context, pseudo string) (bool, error) {
	return exists(s.store.FindByPseudo(ctx, strings.TrimSpace(pseudo)))
}

// Count returns the number of accounts.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.store.Count(ctx)
}

// Identity is the session view of u.
func Identity(u *User) auth.Identity {
	return auth.Identity{UserID: u.ID, Email: u.Email, Pseudo: u.Pseudo}
}

func exists(_ *User, err error) (bool, error) {
	if errors.Is(err, ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
