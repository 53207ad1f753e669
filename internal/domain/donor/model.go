package donor

import (
	"time"

	"github.com/google/uuid"
)

// Donor availability statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// ValidBloodGroups lists the recognized ABO/Rh blood groups.
var ValidBloodGroups = map[string]bool{
	"A+": true, "A-": true,
	"B+": true, "B-": true,
	"O+": true, "O-": true,
	"AB+": true, "AB-": true,
}

// Donor maps to the donors table.
type Donor struct {
	ID           uuid.UUID `db:"id" json:"id"`
	FullName     string    `db:"full_name" json:"full_name"`
	Email        string    `db:"email" json:"email"`
	DateOfBirth  time.Time `db:"date_of_birth" json:"date_of_birth"`
	PasswordHash string    `db:"password_hash" json:"-"`
	PhoneNumber  string    `db:"phone_number" json:"phone_number"`
	BloodGroup   string    `db:"blood_group" json:"blood_group"`
	Address      string    `db:"address" json:"address"`
	Status       string    `db:"status" json:"status"`
	RegisteredAt time.Time `db:"registered_at" json:"registered_at"`
}

// Age returns the donor's age in whole years as of the given date.
func (d *Donor) Age(today time.Time) int {
	years := today.Year() - d.DateOfBirth.Year()
	anniversary := d.DateOfBirth.AddDate(years, 0, 0)
	if anniversary.After(today) {
		years--
	}
	return years
}

// SearchResult is a donor as shown to other users: contact details plus the
// derived age, without account fields.
type SearchResult struct {
	ID          uuid.UUID `json:"id"`
	FullName    string    `json:"full_name"`
	PhoneNumber string    `json:"phone_number"`
	BloodGroup  string    `json:"blood_group"`
	Address     string    `json:"address"`
	Age         int       `json:"age"`
}
