package models

// Feedback is a contact-form submission. UserID is set when the sender was
// authenticated, otherwise left empty.
type Feedback struct {
	BaseModel
	Name    string `gorm:"size:200;not null" json:"name"`
	Email   string `gorm:"size:255;not null" json:"email"`
	Phone   string `gorm:"size:30" json:"phone"`
	Subject string `gorm:"size:200" json:"subject"`
	Message string `gorm:"type:text;not null" json:"message"`
	UserID  string `gorm:"size:36" json:"userId,omitempty"`
}
