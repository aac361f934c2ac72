package models

import (
	"time"
)

// MedicalRecordType categorizes a medical record entry.
type MedicalRecordType string

const (
	RecordPrescription MedicalRecordType = "Prescription"
	RecordReport       MedicalRecordType = "Report"
	RecordDiagnosis    MedicalRecordType = "Diagnosis"
	RecordHistory      MedicalRecordType = "Medical History"
)

// Valid reports whether t is one of the known record types.
func (t MedicalRecordType) Valid() bool {
	switch t {
	case RecordPrescription, RecordReport, RecordDiagnosis, RecordHistory:
		return true
	}
	return false
}

// MedicalRecord is a patient-owned medical document, optionally with an
// uploaded file behind FileURL.
type MedicalRecord struct {
	BaseModel
	UserID      string            `gorm:"size:36;not null;index:idx_medical_records_user,priority:1" json:"userId"`
	RecordType  MedicalRecordType `gorm:"size:30;not null" json:"recordType"`
	Title       string            `gorm:"size:200;not null" json:"title"`
	DoctorName  string            `gorm:"size:200;not null" json:"doctorName"`
	Date        time.Time         `gorm:"not null;index:idx_medical_records_user,priority:2,sort:desc" json:"date"`
	Description string            `gorm:"type:text" json:"description"`
	FileURL     string            `gorm:"size:255" json:"fileUrl"`
	Notes       string            `gorm:"type:text" json:"notes"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
