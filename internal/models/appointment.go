package models

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "Scheduled"
	StatusAccepted  AppointmentStatus = "Accepted"
	StatusRejected  AppointmentStatus = "Rejected"
	StatusCancelled AppointmentStatus = "Cancelled"
	StatusCompleted AppointmentStatus = "Completed"
)

// Valid reports whether s is a member of the allowed status set.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusAccepted, StatusRejected, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// AppointmentMode represents how the consultation takes place.
type AppointmentMode string

const (
	ModeOnline   AppointmentMode = "Online Consultation"
	ModeInPerson AppointmentMode = "In-Person"
)

// Valid reports whether m is one of the two allowed modes.
func (m AppointmentMode) Valid() bool {
	return m == ModeOnline || m == ModeInPerson
}

// Appointment represents a booked consultation slot.
//
// DoctorName and Specialization are denormalized snapshots of the doctor's
// profile taken at booking time; they are re-synced in a batch when the
// profile changes, not kept in sync automatically.
type Appointment struct {
	BaseModel
	PatientID      string            `gorm:"size:36;not null" json:"patientId"`
	DoctorID       string            `gorm:"size:36;not null" json:"doctorId"`
	DoctorName     string            `gorm:"size:200;not null" json:"doctorName"`
	Specialization string            `gorm:"size:100;not null" json:"specialization"`
	Mode           AppointmentMode   `gorm:"size:30;not null" json:"mode"`
	StartAt        time.Time         `gorm:"not null" json:"startAt"`
	Status         AppointmentStatus `gorm:"size:20;default:'Scheduled'" json:"status"`

	// Relations
	Patient User `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  User `gorm:"foreignKey:DoctorID" json:"-"`
}
