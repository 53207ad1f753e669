package donor

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/bloodlink/bloodlink/internal/platform/auth"
)

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

type Service struct {
	donors DonorRepository
	tokens *auth.TokenIssuer
	now    func() time.Time
}

func NewService(donors DonorRepository, tokens *auth.TokenIssuer) *Service {
	return &Service{donors: donors, tokens: tokens, now: time.Now}
}

type RegisterInput struct {
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	Password    string    `json:"password"`
	DateOfBirth time.Time `json:"date_of_birth"`
	PhoneNumber string    `json:"phone_number"`
	BloodGroup  string    `json:"blood_group"`
	Address     string    `json:"address"`
}

// Register creates a new active donor account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Donor, error) {
	if in.FullName == "" || in.Email == "" || in.Password == "" ||
		in.PhoneNumber == "" || in.BloodGroup == "" || in.Address == "" ||
		in.DateOfBirth.IsZero() {
		return nil, fmt.Errorf("%w: all fields are required", ErrInvalid)
	}
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := validatePhone(in.PhoneNumber); err != nil {
		return nil, err
	}
	if !ValidBloodGroups[in.BloodGroup] {
		return nil, fmt.Errorf("%w: unknown blood group %q", ErrInvalid, in.BloodGroup)
	}
	if err := validateDateOfBirth(in.DateOfBirth, s.now()); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	d := &Donor{
		FullName:     in.FullName,
		Email:        in.Email,
		DateOfBirth:  in.DateOfBirth,
		PasswordHash: hash,
		PhoneNumber:  in.PhoneNumber,
		BloodGroup:   in.BloodGroup,
		Address:      in.Address,
		Status:       StatusActive,
	}
	if err := s.donors.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Login verifies credentials and returns a signed token plus the account.
func (s *Service) Login(ctx context.Context, email, password string) (string, *Donor, error) {
	d, err := s.donors.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !auth.CheckPassword(d.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(d.ID, auth.RoleDonor, d.FullName)
	if err != nil {
		return "", nil, err
	}
	return token, d, nil
}

// ResetPassword sets a new password when the email and phone number both
// match an existing account. The caller must respond identically whether or
// not an account matched, so only validation failures on the new password
// surface as errors.
func (s *Service) ResetPassword(ctx context.Context, email, phone, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	d, err := s.donors.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if d.PhoneNumber != phone {
		return nil
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.donors.UpdatePassword(ctx, d.ID, hash)
}

func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (*Donor, error) {
	return s.donors.GetByID(ctx, id)
}

type UpdateProfileInput struct {
	FullName    string    `json:"full_name"`
	DateOfBirth time.Time `json:"date_of_birth"`
	PhoneNumber string    `json:"phone_number"`
	BloodGroup  string    `json:"blood_group"`
	Address     string    `json:"address"`
	Status      string    `json:"status"`
}

// UpdateProfile applies the donor's own edits to their record.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, in UpdateProfileInput) (*Donor, error) {
	if in.FullName == "" || in.PhoneNumber == "" || in.BloodGroup == "" ||
		in.Address == "" || in.DateOfBirth.IsZero() {
		return nil, fmt.Errorf("%w: all fields are required", ErrInvalid)
	}
	if err := validatePhone(in.PhoneNumber); err != nil {
		return nil, err
	}
	if !ValidBloodGroups[in.BloodGroup] {
		return nil, fmt.Errorf("%w: unknown blood group %q", ErrInvalid, in.BloodGroup)
	}
	if in.Status != StatusActive && in.Status != StatusInactive {
		return nil, fmt.Errorf("%w: status must be active or inactive", ErrInvalid)
	}
	if err := validateDateOfBirth(in.DateOfBirth, s.now()); err != nil {
		return nil, err
	}

	d, err := s.donors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d.FullName = in.FullName
	d.DateOfBirth = in.DateOfBirth
	d.PhoneNumber = in.PhoneNumber
	d.BloodGroup = in.BloodGroup
	d.Address = in.Address
	d.Status = in.Status

	if err := s.donors.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// ChangePassword verifies the current password before storing a new one.
func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, current, newPassword string) error {
	d, err := s.donors.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(d.PasswordHash, current) {
		return ErrInvalidCredentials
	}
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.donors.UpdatePassword(ctx, id, hash)
}

// Search finds active donors by blood group and address. When the caller is
// authenticated their own record is excluded from the results.
func (s *Service) Search(ctx context.Context, bloodGroup, address string, exclude *uuid.UUID, limit, offset int) ([]*SearchResult, int, error) {
	if bloodGroup != "" && !ValidBloodGroups[bloodGroup] {
		return nil, 0, fmt.Errorf("%w: unknown blood group %q", ErrInvalid, bloodGroup)
	}

	donors, total, err := s.donors.Search(ctx, bloodGroup, address, exclude, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	today := s.now()
	results := make([]*SearchResult, len(donors))
	for i, d := range donors {
		results[i] = &SearchResult{
			ID:          d.ID,
			FullName:    d.FullName,
			PhoneNumber: d.PhoneNumber,
			BloodGroup:  d.BloodGroup,
			Address:     d.Address,
			Age:         d.Age(today),
		}
	}
	return results, total, nil
}

// -- admin operations --

func (s *Service) AdminList(ctx context.Context, f AdminFilter, limit, offset int) ([]*Donor, int, error) {
	return s.donors.AdminList(ctx, f, limit, offset)
}

func (s *Service) AdminGet(ctx context.Context, id uuid.UUID) (*Donor, error) {
	return s.donors.GetByID(ctx, id)
}

type AdminUpdateInput struct {
	UpdateProfileInput
	// NewPassword, when set, resets the donor's password.
	NewPassword string `json:"new_password"`
}

func (s *Service) AdminUpdate(ctx context.Context, id uuid.UUID, in AdminUpdateInput) (*Donor, error) {
	d, err := s.UpdateProfile(ctx, id, in.UpdateProfileInput)
	if err != nil {
		return nil, err
	}
	if in.NewPassword != "" {
		if err := ValidatePassword(in.NewPassword); err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword(in.NewPassword)
		if err != nil {
			return nil, err
		}
		if err := s.donors.UpdatePassword(ctx, id, hash); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (s *Service) AdminDelete(ctx context.Context, id uuid.UUID) error {
	return s.donors.Delete(ctx, id)
}

func (s *Service) AdminBulkDelete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: no ids given", ErrInvalid)
	}
	return s.donors.DeleteMany(ctx, ids)
}

var exportHeader = []string{"Full Name", "Email", "Phone", "Blood Group", "Address", "Age", "Status", "Registered"}

// ExportRows returns the donor listing as header and rows for file export.
func (s *Service) ExportRows(ctx context.Context, f AdminFilter) ([]string, [][]string, error) {
	donors, err := s.donors.ListForExport(ctx, f)
	if err != nil {
		return nil, nil, err
	}

	today := s.now()
	rows := make([][]string, len(donors))
	for i, d := range donors {
		rows[i] = []string{
			d.FullName, d.Email, d.PhoneNumber, d.BloodGroup, d.Address,
			strconv.Itoa(d.Age(today)), d.Status,
			d.RegisteredAt.Format("2006-01-02"),
		}
	}
	return exportHeader, rows, nil
}

// -- validation helpers --

// ValidatePassword enforces the account password policy: longer than six
// characters with at least one digit and one symbol.
func ValidatePassword(password string) error {
	if len(password) <= 6 {
		return fmt.Errorf("%w: password must be longer than 6 characters", ErrInvalid)
	}
	var hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case !unicode.IsLetter(r) && !unicode.IsSpace(r):
			hasSymbol = true
		}
	}
	if !hasDigit {
		return fmt.Errorf("%w: password must contain at least one digit", ErrInvalid)
	}
	if !hasSymbol {
		return fmt.Errorf("%w: password must contain at least one symbol", ErrInvalid)
	}
	return nil
}

func validateEmail(email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: invalid email address", ErrInvalid)
	}
	return nil
}

func validatePhone(phone string) error {
	if !phonePattern.MatchString(phone) {
		return fmt.Errorf("%w: phone number must be exactly 10 digits", ErrInvalid)
	}
	return nil
}

func validateDateOfBirth(dob, now time.Time) error {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if dob.After(today) {
		return fmt.Errorf("%w: date of birth cannot be in the future", ErrInvalid)
	}
	return nil
}
