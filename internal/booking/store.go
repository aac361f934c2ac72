package booking

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"medverse-server/internal/models"
)

// Store is the persistence contract the booking service runs against. The
// production implementation is backed by gorm/Postgres; tests substitute an
// in-memory fake.
//
// Create and Update must reject a write that would leave two non-cancelled
// appointments on the same (doctorID, startAt) slot, returning ErrSlotTaken.
type Store interface {
	Create(ctx context.Context, appt *models.Appointment) error
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
	// FindOwned looks up an appointment scoped to its owning patient.
	// A foreign appointment is reported as ErrNotFound.
	FindOwned(ctx context.Context, id, patientID string) (*models.Appointment, error)
	// FindActiveBySlot returns the non-cancelled appointment occupying the
	// slot, or ErrNotFound when the slot is free.
	FindActiveBySlot(ctx context.Context, doctorID string, startAt time.Time) (*models.Appointment, error)
	Update(ctx context.Context, appt *models.Appointment) error
	ListByPatient(ctx context.Context, patientID string, page, limit int) ([]models.Appointment, int64, error)
	// ListActiveByDoctorBetween returns the doctor's non-cancelled
	// appointments with from <= startAt < to, ordered by startAt.
	ListActiveByDoctorBetween(ctx context.Context, doctorID string, from, to time.Time) ([]models.Appointment, error)
	// UpdateDoctorSnapshot batch-rewrites the denormalized doctor name and
	// specialization on every appointment referencing the doctor.
	UpdateDoctorSnapshot(ctx context.Context, doctorID, name, specialization string) (int64, error)
}

type gormStore struct {
	db *gorm.DB
}

// NewStore returns the gorm-backed appointment store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Create(ctx context.Context, appt *models.Appointment) error {
	if err := s.db.WithContext(ctx).Create(appt).Error; err != nil {
		// The partial unique index on (doctor_id, start_at) fires here when
		// a concurrent booking won the slot first.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrSlotTaken
		}
		return err
	}
	return nil
}

func (s *gormStore) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	if err := s.db.WithContext(ctx).First(&appt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &appt, nil
}

func (s *gormStore) FindOwned(ctx context.Context, id, patientID string) (*models.Appointment, error) {
	var appt models.Appointment
	err := s.db.WithContext(ctx).
		Where("id = ? AND patient_id = ?", id, patientID).
		First(&appt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &appt, nil
}

func (s *gormStore) FindActiveBySlot(ctx context.Context, doctorID string, startAt time.Time) (*models.Appointment, error) {
	var appt models.Appointment
	err := s.db.WithContext(ctx).
		Where("doctor_id = ? AND start_at = ? AND status <> ?", doctorID, startAt, models.StatusCancelled).
		First(&appt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &appt, nil
}

func (s *gormStore) Update(ctx context.Context, appt *models.Appointment) error {
	if err := s.db.WithContext(ctx).Save(appt).Error; err != nil {
		// An update can also collide with the slot index, e.g. a reschedule
		// into an occupied slot.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrSlotTaken
		}
		return err
	}
	return nil
}

func (s *gormStore) ListByPatient(ctx context.Context, patientID string, page, limit int) ([]models.Appointment, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("patient_id = ?", patientID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var appts []models.Appointment
	err := s.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("start_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&appts).Error
	if err != nil {
		return nil, 0, err
	}
	return appts, total, nil
}

func (s *gormStore) ListActiveByDoctorBetween(ctx context.Context, doctorID string, from, to time.Time) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := s.db.WithContext(ctx).
		Preload("Patient").
		Where("doctor_id = ? AND start_at >= ? AND start_at < ? AND status <> ?",
			doctorID, from, to, models.StatusCancelled).
		Order("start_at asc").
		Find(&appts).Error
	if err != nil {
		return nil, err
	}
	return appts, nil
}

func (s *gormStore) UpdateDoctorSnapshot(ctx context.Context, doctorID, name, specialization string) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("doctor_id = ?", doctorID).
		Updates(map[string]interface{}{
			"doctor_name":    name,
			"specialization": specialization,
		})
	return res.RowsAffected, res.Error
}
