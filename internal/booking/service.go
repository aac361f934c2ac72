package booking

import (
	"context"
	"errors"
	"time"

	"medverse-server/internal/models"
)

// Service enforces the slot-uniqueness invariant and drives the appointment
// status state machine. All coordination is pushed to the store: the service
// holds no mutable state and is safe for concurrent use.
type Service struct {
	store Store
}

// NewService creates a booking service on top of the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// BookInput carries everything needed to create an appointment. DoctorName
// and Specialization are the denormalized snapshot taken from the doctor's
// profile at booking time.
type BookInput struct {
	PatientID      string
	DoctorID       string
	DoctorName     string
	Specialization string
	Mode           models.AppointmentMode
	StartAt        time.Time
}

// Book creates a new Scheduled appointment for the slot (DoctorID, StartAt).
// Returns ErrSlotTaken when a non-cancelled appointment already occupies the
// slot. The pre-check below is an early exit only; the store's conditional
// insert is what guarantees uniqueness under concurrent bookings.
func (s *Service) Book(ctx context.Context, in BookInput) (*models.Appointment, error) {
	if !in.Mode.Valid() {
		return nil, ErrInvalidMode
	}

	if _, err := s.store.FindActiveBySlot(ctx, in.DoctorID, in.StartAt); err == nil {
		return nil, ErrSlotTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	appt := &models.Appointment{
		PatientID:      in.PatientID,
		DoctorID:       in.DoctorID,
		DoctorName:     in.DoctorName,
		Specialization: in.Specialization,
		Mode:           in.Mode,
		StartAt:        in.StartAt.UTC(),
		Status:         models.StatusScheduled,
	}
	if err := s.store.Create(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// Cancel sets the appointment to Cancelled, freeing its slot for re-booking.
// Patients may cancel only their own appointments (a foreign one surfaces as
// ErrNotFound), doctors only appointments assigned to them, admins any.
func (s *Service) Cancel(ctx context.Context, id, actorID string, role models.Role) (*models.Appointment, error) {
	var appt *models.Appointment
	var err error

	switch role {
	case models.RoleAdmin:
		appt, err = s.store.FindByID(ctx, id)
	case models.RoleDoctor:
		appt, err = s.store.FindByID(ctx, id)
		if err == nil && appt.DoctorID != actorID {
			return nil, ErrNotYours
		}
	default:
		appt, err = s.store.FindOwned(ctx, id, actorID)
	}
	if err != nil {
		return nil, err
	}

	appt.Status = models.StatusCancelled
	if err := s.store.Update(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// TransitionStatus sets an appointment's status on behalf of its assigned
// doctor. Only membership in the allowed set is validated; any listed status
// may be set from any other.
func (s *Service) TransitionStatus(ctx context.Context, id, doctorID string, status models.AppointmentStatus) (*models.Appointment, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	appt, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.DoctorID != doctorID {
		return nil, ErrNotYours
	}

	appt.Status = status
	if err := s.store.Update(ctx, appt); err != nil {
		// Re-activating a cancelled appointment can collide with a booking
		// that took the freed slot in the meantime.
		return nil, err
	}
	return appt, nil
}

// Reschedule moves an appointment to a new start time and resets it to
// Scheduled. A conflicting target slot fails with ErrSlotTaken and leaves the
// original startAt untouched. Admin-only; authorization happens at the route.
func (s *Service) Reschedule(ctx context.Context, id string, newStartAt time.Time) (*models.Appointment, error) {
	appt, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	newStartAt = newStartAt.UTC()
	if existing, err := s.store.FindActiveBySlot(ctx, appt.DoctorID, newStartAt); err == nil {
		if existing.ID != appt.ID {
			return nil, ErrSlotTaken
		}
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	appt.StartAt = newStartAt
	appt.Status = models.StatusScheduled
	if err := s.store.Update(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// BookedSlots returns the "HH:MM" labels (UTC) of every non-cancelled
// appointment the doctor has on the given calendar day. Day boundaries are
// computed in UTC end-to-end.
func (s *Service) BookedSlots(ctx context.Context, doctorID string, date time.Time) ([]string, error) {
	from, to := DayWindowUTC(date)
	appts, err := s.store.ListActiveByDoctorBetween(ctx, doctorID, from, to)
	if err != nil {
		return nil, err
	}

	slots := make([]string, 0, len(appts))
	for _, a := range appts {
		slots = append(slots, a.StartAt.UTC().Format("15:04"))
	}
	return slots, nil
}

// DaySchedule returns the doctor's non-cancelled appointments for the given
// calendar day (UTC window), ordered by start time.
func (s *Service) DaySchedule(ctx context.Context, doctorID string, date time.Time) ([]models.Appointment, error) {
	from, to := DayWindowUTC(date)
	return s.store.ListActiveByDoctorBetween(ctx, doctorID, from, to)
}

// History returns a page of the patient's appointments, newest first, along
// with the total count.
func (s *Service) History(ctx context.Context, patientID string, page, limit int) ([]models.Appointment, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return s.store.ListByPatient(ctx, patientID, page, limit)
}

// SyncDoctorProfile re-syncs the denormalized doctor name and specialization
// on all of the doctor's appointments. Called when a doctor's profile
// changes; returns the number of rows rewritten.
func (s *Service) SyncDoctorProfile(ctx context.Context, doctorID, name, specialization string) (int64, error) {
	return s.store.UpdateDoctorSnapshot(ctx, doctorID, name, specialization)
}

// DayWindowUTC returns the [00:00, 24:00) UTC window containing t.
func DayWindowUTC(t time.Time) (from, to time.Time) {
	t = t.UTC()
	from = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return from, from.Add(24 * time.Hour)
}
