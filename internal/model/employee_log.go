package model

const (
	ChangeKindExperience = "experience"
	ChangeKindLevel      = "level"
	ChangeKindAcoin      = "acoin"
)

// EmployeeLog 员工进度变更流水（只追加，不修改）
type EmployeeLog struct {
	BaseModel
	EmployeeID  uint   `gorm:"index;type:bigint unsigned" json:"employeeId"`
	ChangeKind  string `gorm:"size:50;index" json:"changeKind"`
	OldValue    int    `json:"oldValue"`
	NewValue    int    `json:"newValue"`
	Description string `gorm:"size:255" json:"description"`
	Source      string `gorm:"size:100" json:"source"`
}

func (EmployeeLog) TableName() string {
	return "employee_logs"
}
