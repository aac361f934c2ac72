package models

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Role enum
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// Weekday names used by the availability schedule, Sunday first.
var WeekDays = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// AvailabilitySlot is one weekday entry of a doctor's weekly schedule.
type AvailabilitySlot struct {
	Day         string `json:"day"`
	IsAvailable bool   `json:"isAvailable"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
}

// Availability is the whole weekly schedule, stored as a JSON column.
type Availability []AvailabilitySlot

// DefaultAvailability returns the schedule new doctors start with:
// Monday through Friday, 09:00-17:00.
func DefaultAvailability() Availability {
	schedule := make(Availability, 0, len(WeekDays))
	for _, day := range WeekDays {
		schedule = append(schedule, AvailabilitySlot{
			Day:         day,
			IsAvailable: day != "Sunday" && day != "Saturday",
			StartTime:   "09:00",
			EndTime:     "17:00",
		})
	}
	return schedule
}

// User represents a user in the system
type User struct {
	BaseModel
	Email             string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password          string     `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	FirstName         string     `gorm:"size:100;not null" json:"firstName"`
	LastName          string     `gorm:"size:100;not null" json:"lastName"`
	Role              Role       `gorm:"size:20;default:'patient'" json:"role"`
	Phone             string     `gorm:"size:30" json:"phone,omitempty"`
	DateOfBirth       *time.Time `json:"dateOfBirth,omitempty"`
	BloodType         string     `gorm:"size:10" json:"bloodType,omitempty"`
	ProfilePictureURL string     `gorm:"size:255" json:"profilePictureUrl,omitempty"`

	// Doctor-specific fields
	Specialization  string       `gorm:"size:100" json:"specialization,omitempty"`
	Location        string       `gorm:"size:255" json:"location,omitempty"`
	Bio             string       `gorm:"size:500" json:"bio,omitempty"`
	Qualifications  string       `gorm:"size:255" json:"qualifications,omitempty"`
	ConsultationFee float64      `gorm:"default:500" json:"consultationFee,omitempty"`
	Availability    Availability `gorm:"serializer:json" json:"availability,omitempty"`
	// IsRegistered gates visibility on the public doctors listing.
	IsRegistered bool `gorm:"default:false" json:"isRegistered"`

	// Relations (not always preloaded)
	DoctorAppointments  []Appointment `gorm:"foreignKey:DoctorID" json:"-"`
	PatientAppointments []Appointment `gorm:"foreignKey:PatientID" json:"-"`
}

// BeforeSave normalizes the email so uniqueness is case-insensitive.
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return nil
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// EnsureDoctorDefaults seeds the default weekly availability on a doctor
// account that has none yet. No-op for other roles and for doctors with a
// schedule already set.
func (u *User) EnsureDoctorDefaults() {
	if u.Role == RoleDoctor && len(u.Availability) == 0 {
		u.Availability = DefaultAvailability()
	}
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID                string       `json:"id"`
	Email             string       `json:"email"`
	FirstName         string       `json:"firstName"`
	LastName          string       `json:"lastName"`
	Role              Role         `json:"role"`
	Phone             string       `json:"phone,omitempty"`
	DateOfBirth       *time.Time   `json:"dateOfBirth,omitempty"`
	BloodType         string       `json:"bloodType,omitempty"`
	ProfilePictureURL string       `json:"profilePictureUrl,omitempty"`
	Specialization    string       `json:"specialization,omitempty"`
	Location          string       `json:"location,omitempty"`
	Bio               string       `json:"bio,omitempty"`
	Qualifications    string       `json:"qualifications,omitempty"`
	ConsultationFee   float64      `json:"consultationFee,omitempty"`
	Availability      Availability `json:"availability,omitempty"`
	IsRegistered      bool         `json:"isRegistered"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:                u.ID,
		Email:             u.Email,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Role:              u.Role,
		Phone:             u.Phone,
		DateOfBirth:       u.DateOfBirth,
		BloodType:         u.BloodType,
		ProfilePictureURL: u.ProfilePictureURL,
		Specialization:    u.Specialization,
		Location:          u.Location,
		Bio:               u.Bio,
		Qualifications:    u.Qualifications,
		ConsultationFee:   u.ConsultationFee,
		Availability:      u.Availability,
		IsRegistered:      u.IsRegistered,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}
