package model

// swagger:model AnswerOption
type AnswerOption struct {
	BaseModel

	QuestionID uint   `gorm:"index;type:bigint unsigned" json:"questionId"`
	Text       string `gorm:"type:text" json:"text"`
	IsCorrect  bool   `gorm:"default:false" json:"isCorrect"`
	Position   int    `gorm:"default:0" json:"position"` // 1-based，提交的选项序号
}

func (AnswerOption) TableName() string {
	return "answer_options"
}
