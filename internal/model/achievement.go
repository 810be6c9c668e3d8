package model

import "time"

// Achievement 成就定义（与员工无关的目录项）
type Achievement struct {
	BaseModel
	Name              string `gorm:"size:100;not null" json:"name"`
	Description       string `gorm:"type:text" json:"description"`
	Icon              string `gorm:"size:255" json:"icon"`
	ProgressThreshold int    `gorm:"default:1" json:"progressThreshold"`
	ExperienceReward  int    `gorm:"default:0" json:"experienceReward"`
	AcoinReward       int    `gorm:"default:0" json:"acoinReward"`
}

func (Achievement) TableName() string {
	return "achievements"
}

// EmployeeAchievement 员工的成就进度
type EmployeeAchievement struct {
	BaseModel
	EmployeeID    uint       `gorm:"index;type:bigint unsigned" json:"employeeId"`
	AchievementID uint       `gorm:"index;type:bigint unsigned" json:"achievementId"`
	Progress      int        `gorm:"default:0" json:"progress"`
	AwardedAt     *time.Time `json:"awardedAt,omitempty"`

	Achievement Achievement `gorm:"foreignKey:AchievementID" json:"achievement"`
}

func (EmployeeAchievement) TableName() string {
	return "employee_achievements"
}
