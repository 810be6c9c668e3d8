package model

// KarmaHistory 业力变更流水（只追加）
type KarmaHistory struct {
	BaseModel
	EmployeeID uint   `gorm:"index;type:bigint unsigned" json:"employeeId"`
	OldValue   int    `json:"oldValue"`
	NewValue   int    `json:"newValue"`
	Source     string `gorm:"size:100" json:"source"`
}

func (KarmaHistory) TableName() string {
	return "karma_history"
}
