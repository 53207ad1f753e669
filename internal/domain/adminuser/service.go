package adminuser

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/bloodlink/bloodlink/internal/domain/donor"
	"github.com/bloodlink/bloodlink/internal/platform/auth"
)

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

type Service struct {
	admins AdminRepository
	tokens *auth.TokenIssuer
}

func NewService(admins AdminRepository, tokens *auth.TokenIssuer) *Service {
	return &Service{admins: admins, tokens: tokens}
}

// Login verifies an admin by username or email. The phone number on file
// must also match before the password is even checked.
func (s *Service) Login(ctx context.Context, identifier, phone, password string) (string, *Admin, error) {
	a, err := s.admins.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if a.PhoneNumber != phone {
		return "", nil, ErrInvalidCredentials
	}
	if !auth.CheckPassword(a.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(a.ID, auth.RoleAdmin, a.FullName)
	if err != nil {
		return "", nil, err
	}
	return token, a, nil
}

// ResetPassword sets a new password when the username, email, and phone
// number all match an existing account. The caller must respond identically
// whether or not an account matched, so only validation failures on the new
// password surface as errors.
func (s *Service) ResetPassword(ctx context.Context, username, email, phone, newPassword string) error {
	if err := donor.ValidatePassword(newPassword); err != nil {
		return err
	}

	a, err := s.admins.GetByIdentifier(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if a.Username != username || !strings.EqualFold(a.Email, email) || a.PhoneNumber != phone {
		return nil
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.admins.UpdatePassword(ctx, a.ID, hash)
}

type CreateInput struct {
	FullName    string `json:"full_name"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

// Create adds a new admin account.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Admin, error) {
	if in.FullName == "" || in.Username == "" || in.Email == "" ||
		in.PhoneNumber == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: all fields are required", ErrInvalid)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, fmt.Errorf("%w: invalid email address", ErrInvalid)
	}
	if !phonePattern.MatchString(in.PhoneNumber) {
		return nil, fmt.Errorf("%w: phone number must be exactly 10 digits", ErrInvalid)
	}
	if err := donor.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	a := &Admin{
		FullName:     in.FullName,
		Username:     in.Username,
		Email:        in.Email,
		PhoneNumber:  in.PhoneNumber,
		PasswordHash: hash,
	}
	if err := s.admins.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Admin, error) {
	return s.admins.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Admin, int, error) {
	return s.admins.List(ctx, limit, offset)
}

type UpdateInput struct {
	FullName    string `json:"full_name"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

// Update edits an admin's profile fields.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Admin, error) {
	if in.FullName == "" || in.Username == "" || in.Email == "" || in.PhoneNumber == "" {
		return nil, fmt.Errorf("%w: all fields are required", ErrInvalid)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, fmt.Errorf("%w: invalid email address", ErrInvalid)
	}
	if !phonePattern.MatchString(in.PhoneNumber) {
		return nil, fmt.Errorf("%w: phone number must be exactly 10 digits", ErrInvalid)
	}

	a, err := s.admins.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.FullName = in.FullName
	a.Username = in.Username
	a.Email = in.Email
	a.PhoneNumber = in.PhoneNumber

	if err := s.admins.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Delete removes an admin account. Admins cannot delete themselves.
func (s *Service) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return ErrSelfDelete
	}
	return s.admins.Delete(ctx, id)
}

// ChangePassword verifies the current password before storing a new one.
func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, current, newPassword string) error {
	a, err := s.admins.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(a.PasswordHash, current) {
		return ErrInvalidCredentials
	}
	if err := donor.ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.admins.UpdatePassword(ctx, id, hash)
}
