package model

import "time"

type AttemptStatus string

const (
	AttemptNotStarted AttemptStatus = "not_started"
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptPassed     AttemptStatus = "passed"
	AttemptFailed     AttemptStatus = "failed"
	AttemptModeration AttemptStatus = "moderation"
)

// Terminal reports whether the status admits no further transition.
func (s AttemptStatus) Terminal() bool {
	return s == AttemptPassed || s == AttemptFailed
}

// swagger:model TestAttempt
type TestAttempt struct {
	BaseModel

	EmployeeID uint          `gorm:"index;type:bigint unsigned" json:"employeeId"`
	TestID     uint          `gorm:"index;type:bigint unsigned" json:"testId"`
	Status     AttemptStatus `gorm:"size:20;default:'not_started';index" json:"status"`
	StartedAt  time.Time     `json:"startedAt"`
	EndedAt    *time.Time    `json:"endedAt,omitempty"`
	Score      *float64      `json:"score,omitempty"`
	Result     string        `gorm:"type:json" json:"-"` // 序列化的逐题结果，边界处再反序列化

	RewardedAt *time.Time `json:"rewardedAt,omitempty"` // 结算幂等保护
}

func (TestAttempt) TableName() string {
	return "test_attempts"
}
