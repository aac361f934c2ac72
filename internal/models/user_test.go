package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndCheckPassword(t *testing.T) {
	user := User{}
	require.NoError(t, user.SetPassword("correct horse battery"))

	assert.NotEqual(t, "correct horse battery", user.Password)
	assert.True(t, user.CheckPassword("correct horse battery"))
	assert.False(t, user.CheckPassword("wrong password"))
}

func TestFullName(t *testing.T) {
	user := User{FirstName: "Jane", LastName: "Smith"}
	assert.Equal(t, "Jane Smith", user.FullName())

	noLast := User{FirstName: "Jane"}
	assert.Equal(t, "Jane", noLast.FullName())
}

func TestSanitizeOmitsPassword(t *testing.T) {
	user := User{
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Smith",
		Role:      RoleDoctor,
	}
	require.NoError(t, user.SetPassword("secret pass"))

	sanitized := user.Sanitize()
	assert.Equal(t, "jane@example.com", sanitized.Email)
	assert.Equal(t, RoleDoctor, sanitized.Role)
	// The sanitized struct has no password field at all; make sure the
	// source user still does.
	assert.NotEmpty(t, user.Password)
}

func TestBeforeSaveNormalizesEmail(t *testing.T) {
	user := User{Email: "  Jane@Example.COM "}
	require.NoError(t, user.BeforeSave(nil))
	assert.Equal(t, "jane@example.com", user.Email)
}

func TestDefaultAvailability(t *testing.T) {
	schedule := DefaultAvailability()
	require.Len(t, schedule, 7)

	byDay := make(map[string]AvailabilitySlot, len(schedule))
	for _, slot := range schedule {
		byDay[slot.Day] = slot
	}

	assert.False(t, byDay["Sunday"].IsAvailable)
	assert.False(t, byDay["Saturday"].IsAvailable)
	for _, day := range []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"} {
		slot := byDay[day]
		assert.True(t, slot.IsAvailable, day)
		assert.Equal(t, "09:00", slot.StartTime)
		assert.Equal(t, "17:00", slot.EndTime)
	}
}

func TestEnsureDoctorDefaults(t *testing.T) {
	// A freshly promoted doctor gets the default schedule.
	promoted := User{Role: RoleDoctor}
	promoted.EnsureDoctorDefaults()
	assert.Len(t, promoted.Availability, 7)

	// An existing schedule is left alone.
	custom := Availability{{Day: "Monday", IsAvailable: true, StartTime: "08:00", EndTime: "12:00"}}
	doctor := User{Role: RoleDoctor, Availability: custom}
	doctor.EnsureDoctorDefaults()
	assert.Equal(t, custom, doctor.Availability)

	// Non-doctors are untouched.
	patient := User{Role: RolePatient}
	patient.EnsureDoctorDefaults()
	assert.Empty(t, patient.Availability)
}

func TestAppointmentStatusValid(t *testing.T) {
	for _, status := range []AppointmentStatus{StatusScheduled, StatusAccepted, StatusRejected, StatusCancelled, StatusCompleted} {
		assert.True(t, status.Valid(), string(status))
	}
	assert.False(t, AppointmentStatus("Vanished").Valid())
	assert.False(t, AppointmentStatus("").Valid())
}

func TestAppointmentModeValid(t *testing.T) {
	assert.True(t, ModeOnline.Valid())
	assert.True(t, ModeInPerson.Valid())
	assert.False(t, AppointmentMode("Telepathy").Valid())
}
