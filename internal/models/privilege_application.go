package models

// PrivilegeStatus is the review state of a privilege card application.
type PrivilegeStatus string

const (
	PrivilegePending  PrivilegeStatus = "Pending"
	PrivilegeApproved PrivilegeStatus = "Approved"
	PrivilegeRejected PrivilegeStatus = "Rejected"
)

// PrivilegeApplication is a patient's application for the clinic's privilege
// card. Each user may hold at most one application.
type PrivilegeApplication struct {
	BaseModel
	UserID        string          `gorm:"size:36;not null;uniqueIndex" json:"userId"`
	Name          string          `gorm:"size:200;not null" json:"name"`
	Email         string          `gorm:"size:255;not null" json:"email"`
	FamilyMembers int             `gorm:"not null" json:"familyMembers"`
	IDProofURL    string          `gorm:"size:255" json:"idProof"`
	Status        PrivilegeStatus `gorm:"size:20;default:'Pending'" json:"status"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
