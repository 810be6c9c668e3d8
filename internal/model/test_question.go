package model

const (
	QuestionTypeText     = "text"
	QuestionTypeSingle   = "single"
	QuestionTypeMultiple = "multiple"
)

// swagger:model TestQuestion
type TestQuestion struct {
	BaseModel

	TestID       uint    `gorm:"index;type:bigint unsigned" json:"testId"`
	QuestionType string  `gorm:"size:20;not null" json:"questionType"` // text, single, multiple
	Text         string  `gorm:"type:text" json:"text"`
	Points       float64 `gorm:"default:0" json:"points"`
	Position     int     `gorm:"default:0;index" json:"position"` // 1-based，提交答案以此为键

	Options []AnswerOption `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
}

func (TestQuestion) TableName() string {
	return "test_questions"
}
