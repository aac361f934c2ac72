package models

import (
	"time"
)

// LabTestStatus represents the state of an ordered lab test.
type LabTestStatus string

const (
	LabTestPending   LabTestStatus = "Pending"
	LabTestCompleted LabTestStatus = "Completed"
	LabTestNormal    LabTestStatus = "Normal"
	LabTestAbnormal  LabTestStatus = "Abnormal"
)

// LabTest is a patient-owned lab test record.
type LabTest struct {
	BaseModel
	UserID      string        `gorm:"size:36;not null;index:idx_lab_tests_user,priority:1" json:"userId"`
	TestName    string        `gorm:"size:200;not null" json:"testName"`
	TestDate    time.Time     `gorm:"not null;index:idx_lab_tests_user,priority:2,sort:desc" json:"testDate"`
	Status      LabTestStatus `gorm:"size:20;default:'Pending'" json:"status"`
	Result      string        `gorm:"size:500" json:"result"`
	NormalRange string        `gorm:"size:200" json:"normalRange"`
	ReportURL   string        `gorm:"size:255" json:"reportUrl"`
	Notes       string        `gorm:"type:text" json:"notes"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
