package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// BaseModel contains common columns for all tables
type BaseModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate will set a UUID rather than numeric ID
func (base *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if base.ID == "" {
		base.ID = uuid.New().String()
	}
	return nil
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	DSN string
}

// InitDB initializes the database connection and runs migrations.
func InitDB(config DatabaseConfig) (*gorm.DB, error) {
	// TranslateError lets us catch unique-index violations as
	// gorm.ErrDuplicatedKey instead of a raw driver error.
	db, err := gorm.Open(postgres.Open(config.DSN), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	// Auto migrate the database models
	err = db.AutoMigrate(
		&User{},
		&Appointment{},
		&LabTest{},
		&MedicalRecord{},
		&PrivilegeApplication{},
		&Feedback{},
		&Audit{},
	)
	if err != nil {
		return nil, err
	}

	// Partial unique index on (doctor_id, start_at) scoped to non-cancelled
	// rows. This is what actually prevents double booking of a slot under
	// concurrent requests; the handler-level pre-check is an early exit only.
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_doctor_slot
		 ON appointments (doctor_id, start_at)
		 WHERE status <> 'Cancelled'`,
	).Error; err != nil {
		return nil, err
	}

	// Lookup index for a patient's appointment history, newest first.
	if err := db.Exec(
		`CREATE INDEX IF NOT EXISTS idx_appointments_patient_history
		 ON appointments (patient_id, start_at DESC)`,
	).Error; err != nil {
		return nil, err
	}

	return db, nil
}
