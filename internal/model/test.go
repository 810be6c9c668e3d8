package model

// swagger:model Test
type Test struct {
	BaseModel

	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	IsPublished bool   `gorm:"default:false" json:"isPublished"`

	PassingScore   float64 `gorm:"default:0" json:"passingScore"`
	MaxScore       float64 `gorm:"default:0" json:"maxScore"`
	AcoinReward    int     `gorm:"default:0" json:"acoinReward"`
	RetryDelayDays int     `gorm:"default:0" json:"retryDelayDays"` // 0 = 不限制
	Repeatable     bool    `gorm:"default:false" json:"repeatable"`

	RequiredKarma int `gorm:"default:0" json:"requiredKarma"`
	MinExperience int `gorm:"default:0" json:"minExperience"`

	RequiredTestID *uint `gorm:"index" json:"requiredTestId,omitempty"` // 前置测试，形成链
	AchievementID  *uint `gorm:"index" json:"achievementId,omitempty"`  // 满分才可解锁
}

func (Test) TableName() string {
	return "tests"
}
