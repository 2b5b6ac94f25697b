package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/isdelr/talakhisi-be/internal/kv"
	"github.com/isdelr/talakhisi-be/internal/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	defaultOwnerName  = "Admin"
)

// AccountServiceProvider defines the interface for the account registry.
type AccountServiceProvider interface {
	Signup(ctx context.Context, name, email, password string) (models.Session, error)
	Login(ctx context.Context, email, password string) (models.Session, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)
	GetAccount(ctx context.Context, email string) (models.Account, error)
	DeleteAccount(ctx context.Context, email string) error
	SetRole(ctx context.Context, email string, role models.Role) error
	ToggleRole(ctx context.Context, email string) (models.Role, error)
	IsOwner(email string) bool
}

// LibraryPurger drops an account's library when the account is deleted.
type LibraryPurger interface {
	Purge(ctx context.Context, email string) error
}

// AccountService manages the registry of accounts kept under AccountsKey.
type AccountService struct {
	store         kv.Store
	library       LibraryPurger
	ownerEmail    string
	ownerPassword string
	hashCost      int
	now           func() time.Time
	mu            sync.Mutex
}

// NewAccountService creates a new AccountService. ownerEmail/ownerPassword are
// the fixed credentials of the protected owner account.
func NewAccountService(store kv.Store, library LibraryPurger, ownerEmail, ownerPassword string) *AccountService {
	return &AccountService{
		store:         store,
		library:       library,
		ownerEmail:    models.NormalizeEmail(ownerEmail),
		ownerPassword: ownerPassword,
		hashCost:      bcrypt.DefaultCost,
		now:           utcNow,
	}
}

// IsOwner reports whether email is the protected owner's.
func (s *AccountService) IsOwner(email string) bool {
	return models.NormalizeEmail(email) == s.ownerEmail
}

func (s *AccountService) isOwnerCredentials(email, password string) bool {
	return email == s.ownerEmail && password == s.ownerPassword
}

// ValidateEmail applies the basic shape check used by signup and login.
func ValidateEmail(email string) error {
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return fmt.Errorf("%w: please enter a valid email address", ErrValidation)
	}
	return nil
}

// Signup registers a new account and returns its session. The owner email is
// reserved: only the owner credentials may register it.
func (s *AccountService) Signup(ctx context.Context, name, email, password string) (models.Session, error) {
	email = models.NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return models.Session{}, err
	}
	if len(password) < minPasswordLength {
		return models.Session{}, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}
	if s.IsOwner(email) && !s.isOwnerCredentials(email, password) {
		return models.Session{}, fmt.Errorf("%w: %s is reserved", ErrProtectedAccount, email)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := loadList[models.Account](ctx, s.store, AccountsKey)
	if err != nil {
		return models.Session{}, err
	}
	if _, found := findAccount(accounts, email); found {
		return models.Session{}, fmt.Errorf("%w: %s", ErrDuplicateAccount, email)
	}

	role := models.RoleUser
	if s.isOwnerCredentials(email, password) {
		role = models.RoleAdmin
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return models.Session{}, err
	}
	account := models.Account{
		Name:      strings.TrimSpace(name),
		Email:     email,
		Password:  hash,
		Role:      role,
		CreatedAt: s.now(),
	}
	accounts = append(accounts, account)
	if err := saveList(ctx, s.store, AccountsKey, accounts); err != nil {
		return models.Session{}, err
	}

	log.Info().Str("email", email).Str("role", string(role)).Msg("Account registered")
	return account.Session(), nil
}

// Login authenticates an account. The owner credentials always authenticate as
// admin, whatever record the registry holds for that email, and provision the
// owner account on first use.
func (s *AccountService) Login(ctx context.Context, email, password string) (models.Session, error) {
	email = models.NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return models.Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := loadList[models.Account](ctx, s.store, AccountsKey)
	if err != nil {
		return models.Session{}, err
	}

	if s.isOwnerCredentials(email, password) {
		name := defaultOwnerName
		if i, found := findAccount(accounts, email); found {
			if accounts[i].Name != "" {
				name = accounts[i].Name
			}
			if accounts[i].Role != models.RoleAdmin {
				accounts[i].Role = models.RoleAdmin
				if err := saveList(ctx, s.store, AccountsKey, accounts); err != nil {
					return models.Session{}, err
				}
				log.Warn().Str("email", email).Msg("Restored admin role on owner account")
			}
		} else {
			hash, err := s.hashPassword(password)
			if err != nil {
				return models.Session{}, err
			}
			accounts = append(accounts, models.Account{
				Name:      defaultOwnerName,
				Email:     email,
				Password:  hash,
				Role:      models.RoleAdmin,
				CreatedAt: s.now(),
			})
			if err := saveList(ctx, s.store, AccountsKey, accounts); err != nil {
				return models.Session{}, err
			}
			log.Info().Str("email", email).Msg("Provisioned owner account")
		}
		return models.Session{Name: name, Email: email, Role: models.RoleAdmin}, nil
	}

	i, found := findAccount(accounts, email)
	if !found || !passwordMatches(accounts[i].Password, password) {
		return models.Session{}, ErrInvalidCredentials
	}
	return accounts[i].Session(), nil
}

// ListAccounts returns every account, read fresh from the store. Credentials are
// stripped.
func (s *AccountService) ListAccounts(ctx context.Context) ([]models.Account, error) {
	accounts, err := loadList[models.Account](ctx, s.store, AccountsKey)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		accounts[i] = s.view(accounts[i])
	}
	return accounts, nil
}

// view strips the credential and reports the owner as admin whatever its
// stored role.
func (s *AccountService) view(a models.Account) models.Account {
	a = a.Sanitized()
	if s.IsOwner(a.Email) {
		a.Role = models.RoleAdmin
	}
	return a
}

// GetAccount returns a single account without its credential.
func (s *AccountService) GetAccount(ctx context.Context, email string) (models.Account, error) {
	accounts, err := loadList[models.Account](ctx, s.store, AccountsKey)
	if err != nil {
		return models.Account{}, err
	}
	i, found := findAccount(accounts, models.NormalizeEmail(email))
	if !found {
		return models.Account{}, fmt.Errorf("account %s: %w", email, ErrNotFound)
	}
	return s.view(accounts[i]), nil
}

// DeleteAccount removes the account and its library. Deleting an absent
// account still purges any library left under its key.
func (s *AccountService) DeleteAccount(ctx context.Context, email string) error {
	target := models.NormalizeEmail(email)
	if target == s.ownerEmail {
		return fmt.Errorf("cannot delete owner: %w", ErrProtectedAccount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := loadList[models.Account](ctx, s.store, AccountsKey)
	if err != nil {
		return err
	}
	kept := accounts[:0]
	for _, a := range accounts {
		if models.NormalizeEmail(a.Email) != target {
			kept = append(kept, a)
		}
	}
	if err := saveList(ctx, s.store, AccountsKey, kept); err != nil {
		return err
	}
	if s.library != nil {
		if err := s.library.Purge(ctx, target); err != nil {
			return fmt.Errorf("failed to purge library of %s: %w", target, err)
		}
	}

	log.Info().Str("email", target).Msg("Account deleted")
	return nil
}

// SetRole sets the role of an account. The owner is left untouched.
func (s *AccountService) SetRole(ctx context.Context, email string, role models.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	_, err := s.updateRole(ctx, email, func(models.Role) models.Role { return role })
	return err
}

// ToggleRole flips an account between admin and user and returns the new role.
// The owner is left untouched and reported as admin.
func (s *AccountService) ToggleRole(ctx context.Context, email string) (models.Role, error) {
	return s.updateRole(ctx, email, func(current models.Role) models.Role {
		if current == models.RoleAdmin {
			return models.RoleUser
		}
		return models.RoleAdmin
	})
}

func (s *AccountService) updateRole(ctx context.Context, email string, next func(models.Role) models.Role) (models.Role, error) {
	target := models.NormalizeEmail(email)
	if target == s.ownerEmail {
		return models.RoleAdmin, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := loadList[models.Account](ctx, s.store, AccountsKey)
	if err != nil {
		return "", err
	}
	i, found := findAccount(accounts, target)
	if !found {
		return "", fmt.Errorf("account %s: %w", target, ErrNotFound)
	}
	accounts[i].Role = next(accounts[i].Role)
	if err := saveList(ctx, s.store, AccountsKey, accounts); err != nil {
		return "", err
	}
	return accounts[i].Role, nil
}

func (s *AccountService) hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// passwordMatches checks a login password against the stored credential.
// Records imported from the browser build hold plaintext passwords.
func passwordMatches(stored, password string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

func findAccount(accounts []models.Account, normalizedEmail string) (int, bool) {
	for i, a := range accounts {
		if models.NormalizeEmail(a.Email) == normalizedEmail {
			return i, true
		}
	}
	return -1, false
}
