package service

import (
	"fmt"
	"time"

	"gamify_backend/internal/model"
	"gamify_backend/internal/repository"
	"gamify_backend/internal/util"
	"gamify_backend/pkg/logger"
	"gamify_backend/pkg/mailer"
	"gamify_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SettlementService 发放通过测试的奖励。通过状态本身是权威的：
// 结算失败不回滚通过状态，由补偿任务按rewarded_at守卫重试。
type SettlementService struct {
	AttemptRepo     *repository.AttemptRepository
	AchievementRepo *repository.AchievementRepository
	EmployeeRepo    *repository.EmployeeRepository
	Progression     *ProgressionService
	Mailer          mailer.Mailer
	DB              *gorm.DB
}

func NewSettlementService(
	attemptRepo *repository.AttemptRepository,
	achievementRepo *repository.AchievementRepository,
	employeeRepo *repository.EmployeeRepository,
	progression *ProgressionService,
	m mailer.Mailer,
	db *gorm.DB,
) *SettlementService {
	return &SettlementService{
		AttemptRepo:     attemptRepo,
		AchievementRepo: achievementRepo,
		EmployeeRepo:    employeeRepo,
		Progression:     progression,
		Mailer:          m,
		DB:              db,
	}
}

// Settle 对单次尝试结算，幂等：重复调用只记一次账
func (s *SettlementService) Settle(attemptID uint) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		attempt, err := s.AttemptRepo.FindByIDForUpdate(tx, attemptID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return util.ErrAttemptNotFound
			}
			return err
		}
		if attempt.Status != model.AttemptPassed {
			return util.ErrAttemptNotPassed
		}
		if attempt.RewardedAt != nil {
			return nil // 已结算
		}

		var test model.Test
		if err := tx.First(&test, attempt.TestID).Error; err != nil {
			return err
		}

		if test.AcoinReward > 0 {
			source := fmt.Sprintf("test:%d", test.ID)
			if err := s.Progression.AddCurrencyTx(tx, attempt.EmployeeID, test.AcoinReward, source); err != nil {
				return err
			}
		}

		perfect := attempt.Score != nil && *attempt.Score == test.MaxScore
		if perfect && test.AchievementID != nil {
			if err := s.progressAchievement(tx, attempt.EmployeeID, *test.AchievementID); err != nil {
				return err
			}
		}

		now := time.Now()
		return tx.Model(attempt).Update("rewarded_at", now).Error
	})

	if err != nil {
		monitoring.SettlementCounter.WithLabelValues("error").Inc()
		return err
	}
	monitoring.SettlementCounter.WithLabelValues("credited").Inc()
	return nil
}

// RetryUnsettled 补偿任务：把落在通过态但未记账的尝试补结算
func (s *SettlementService) RetryUnsettled() {
	attempts, err := s.AttemptRepo.ListUnsettled(100)
	if err != nil {
		logger.Log.Error("list unsettled attempts", zap.Error(err))
		return
	}
	for _, attempt := range attempts {
		if err := s.Settle(attempt.ID); err != nil {
			logger.Log.Error("retry settlement",
				zap.Uint("attemptId", attempt.ID), zap.Error(err))
		}
	}
}

func (s *SettlementService) progressAchievement(tx *gorm.DB, employeeID, achievementID uint) error {
	var achievement model.Achievement
	if err := tx.First(&achievement, achievementID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrAchievementNotFound
		}
		return err
	}

	progress, err := s.AchievementRepo.FindOrCreateProgress(tx, employeeID, achievementID)
	if err != nil {
		return err
	}
	if progress.AwardedAt != nil {
		return nil
	}

	progress.Progress++
	if progress.Progress >= achievement.ProgressThreshold {
		if achievement.ExperienceReward > 0 {
			source := fmt.Sprintf("achievement:%d", achievement.ID)
			if err := s.Progression.AddExperienceTx(tx, employeeID, achievement.ExperienceReward, source); err != nil {
				return err
			}
		}
		if achievement.AcoinReward > 0 {
			source := fmt.Sprintf("achievement:%d", achievement.ID)
			if err := s.Progression.AddCurrencyTx(tx, employeeID, achievement.AcoinReward, source); err != nil {
				return err
			}
		}
		now := time.Now()
		progress.AwardedAt = &now
		s.notifyAwarded(tx, employeeID, achievement.Name)
	}

	return tx.Save(progress).Error
}

func (s *SettlementService) notifyAwarded(tx *gorm.DB, employeeID uint, achievementName string) {
	var employee model.Employee
	if err := tx.First(&employee, employeeID).Error; err != nil {
		return
	}
	// 邮件投递不阻塞结算事务
	go func() {
		subject := "Achievement unlocked"
		body := fmt.Sprintf("Congratulations, you earned the achievement %q!", achievementName)
		if err := s.Mailer.Send(subject, body, employee.Email); err != nil {
			logger.Log.Error("send achievement mail", zap.Error(err))
		}
	}()
}
