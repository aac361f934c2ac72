package models

// Audit records an administrative mutation for later review.
type Audit struct {
	BaseModel
	Action     string `gorm:"size:100;not null" json:"action"`
	ActorID    string `gorm:"size:36" json:"actorId"`
	ActorEmail string `gorm:"size:255" json:"actorEmail"`
	TargetType string `gorm:"size:50" json:"targetType"`
	TargetID   string `gorm:"size:36" json:"targetId"`
	Details    string `gorm:"type:text" json:"details"`
}
