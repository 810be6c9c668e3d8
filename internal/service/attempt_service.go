package service

import (
	"encoding/json"
	"fmt"
	"time"

	"gamify_backend/internal/model"
	"gamify_backend/internal/repository"
	"gamify_backend/internal/scoring"
	"gamify_backend/internal/util"
	"gamify_backend/pkg/logger"
	"gamify_backend/pkg/mailer"
	"gamify_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AttemptService 尝试状态机：
// not_started -> in_progress -> {passed, failed, moderation}，
// moderation -> {passed, failed}。每次迁移在单个事务内完成。
type AttemptService struct {
	AttemptRepo  *repository.AttemptRepository
	EmployeeRepo *repository.EmployeeRepository
	Catalog      *CatalogService
	Progression  *ProgressionService
	Settlement   *SettlementService
	Mailer       mailer.Mailer
	ModeratorXP  int
	DB           *gorm.DB
}

func NewAttemptService(
	attemptRepo *repository.AttemptRepository,
	employeeRepo *repository.EmployeeRepository,
	catalog *CatalogService,
	progression *ProgressionService,
	settlement *SettlementService,
	m mailer.Mailer,
	moderatorXP int,
	db *gorm.DB,
) *AttemptService {
	return &AttemptService{
		AttemptRepo:  attemptRepo,
		EmployeeRepo: employeeRepo,
		Catalog:      catalog,
		Progression:  progression,
		Settlement:   settlement,
		Mailer:       m,
		ModeratorXP:  moderatorXP,
		DB:           db,
	}
}

// Start 开始一次尝试。会清掉同一(员工,测试)下未完成的旧尝试，
// 任何时刻至多存活一条。
func (s *AttemptService) Start(employeeID, testID uint) (*model.TestAttempt, error) {
	employee, err := s.EmployeeRepo.FindByID(employeeID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrEmployeeNotFound
		}
		return nil, err
	}

	test, err := s.Catalog.GetTest(testID)
	if err != nil {
		return nil, err
	}
	if !test.IsPublished {
		return nil, util.ErrTestNotFound
	}

	if test.RequiredTestID != nil {
		passed, err := s.AttemptRepo.HasPassed(employeeID, *test.RequiredTestID)
		if err != nil {
			return nil, err
		}
		if !passed {
			return nil, util.ErrPrerequisiteNotMet
		}
	}

	if err := s.Catalog.CheckAvailability(employee, test); err != nil {
		return nil, err
	}

	attempt := &model.TestAttempt{
		EmployeeID: employeeID,
		TestID:     testID,
		Status:     model.AttemptInProgress,
		StartedAt:  time.Now(),
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.AttemptRepo.DeleteLive(tx, employeeID, testID); err != nil {
			return err
		}
		return tx.Create(attempt).Error
	})
	if err != nil {
		return nil, err
	}

	monitoring.AttemptCounter.WithLabelValues(string(model.AttemptInProgress)).Inc()
	return attempt, nil
}

// Submit 评分并迁移到passed/failed/moderation
func (s *AttemptService) Submit(employeeID, attemptID uint, answers map[int]scoring.Answer) (*model.TestAttempt, error) {
	var attempt *model.TestAttempt
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		attempt, err = s.AttemptRepo.FindByIDForUpdate(tx, attemptID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return util.ErrAttemptNotFound
			}
			return err
		}
		if attempt.EmployeeID != employeeID {
			return util.ErrAttemptNotFound
		}
		if attempt.Status != model.AttemptInProgress {
			return util.ErrAttemptNotInProgress
		}

		questions, err := s.Catalog.GetQuestions(attempt.TestID)
		if err != nil {
			return err
		}
		var test model.Test
		if err := tx.First(&test, attempt.TestID).Error; err != nil {
			return err
		}

		result := scoring.Grade(questions, answers)

		switch {
		case result.Score >= test.PassingScore:
			attempt.Status = model.AttemptPassed
		case result.HasTextQuestions():
			attempt.Status = model.AttemptModeration
		default:
			attempt.Status = model.AttemptFailed
		}

		payload, err := json.Marshal(result)
		if err != nil {
			return err
		}
		now := time.Now()
		attempt.EndedAt = &now
		attempt.Score = &result.Score
		attempt.Result = string(payload)
		return tx.Save(attempt).Error
	})
	if err != nil {
		return nil, err
	}

	monitoring.AttemptCounter.WithLabelValues(string(attempt.Status)).Inc()
	s.afterTransition(attempt)
	return attempt, nil
}

// ModerationOverride 审核员对单个text题的给分
type ModerationOverride struct {
	QuestionNumber int     `json:"questionNumber" binding:"required"`
	Score          float64 `json:"score"`
	Comment        string  `json:"comment"`
}

// Moderate 合并人工给分，重算总分并定终态。任一覆盖项非法则全部回滚。
// 审核员无论员工结果如何都会拿到固定经验。
func (s *AttemptService) Moderate(moderatorID, attemptID uint, overrides []ModerationOverride) (*model.TestAttempt, error) {
	var attempt *model.TestAttempt
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		attempt, err = s.AttemptRepo.FindByIDForUpdate(tx, attemptID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return util.ErrAttemptNotFound
			}
			return err
		}
		if attempt.Status != model.AttemptModeration {
			return util.ErrNotInModeration
		}

		var result scoring.Result
		if err := json.Unmarshal([]byte(attempt.Result), &result); err != nil {
			return err
		}
		for _, o := range overrides {
			if err := result.ApplyOverride(o.QuestionNumber, o.Score, o.Comment); err != nil {
				return err
			}
		}
		result.Recompute()

		now := time.Now()
		result.ModeratorID = &moderatorID
		result.ModeratedAt = &now

		var test model.Test
		if err := tx.First(&test, attempt.TestID).Error; err != nil {
			return err
		}
		if result.Score >= test.PassingScore {
			attempt.Status = model.AttemptPassed
		} else {
			attempt.Status = model.AttemptFailed
		}

		payload, err := json.Marshal(result)
		if err != nil {
			return err
		}
		attempt.Score = &result.Score
		attempt.Result = string(payload)
		if err := tx.Save(attempt).Error; err != nil {
			return err
		}

		return s.Progression.AddExperienceTx(tx, moderatorID, s.ModeratorXP, fmt.Sprintf("moderation:%d", attempt.ID))
	})
	if err != nil {
		return nil, err
	}

	monitoring.AttemptCounter.WithLabelValues(string(attempt.Status)).Inc()
	s.afterTransition(attempt)
	return attempt, nil
}

// afterTransition 事务提交后的副作用。结算失败只记日志：
// 通过状态已落库，补偿任务会按rewarded_at重试。
func (s *AttemptService) afterTransition(attempt *model.TestAttempt) {
	switch attempt.Status {
	case model.AttemptPassed:
		if err := s.Settlement.Settle(attempt.ID); err != nil {
			logger.Log.Error("reward settlement",
				zap.Uint("attemptId", attempt.ID), zap.Error(err))
		}
	case model.AttemptModeration:
		go s.notifyModerators(attempt)
	}
}

func (s *AttemptService) notifyModerators(attempt *model.TestAttempt) {
	moderators, err := s.EmployeeRepo.ListModerators()
	if err != nil {
		logger.Log.Error("list moderators", zap.Error(err))
		return
	}
	subject := "Test attempt awaiting moderation"
	body := fmt.Sprintf("Attempt %d has free-text answers awaiting review.", attempt.ID)
	for _, m := range moderators {
		if err := s.Mailer.Send(subject, body, m.Email); err != nil {
			logger.Log.Error("send moderation mail", zap.Error(err))
		}
	}
}

// AttemptResult 对外的结果视图
type AttemptResult struct {
	AttemptID uint                     `json:"attemptId"`
	Status    model.AttemptStatus      `json:"status"`
	Score     *float64                 `json:"score,omitempty"`
	MaxScore  float64                  `json:"maxScore"`
	Questions []scoring.QuestionResult `json:"questions"`
}

// GetResult 返回结果明细。privileged 为 false 时只允许本人查看，
// 他人的尝试按不存在处理。
func (s *AttemptService) GetResult(viewerID, attemptID uint, privileged bool) (*AttemptResult, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	if !privileged && attempt.EmployeeID != viewerID {
		return nil, util.ErrAttemptNotFound
	}

	view := &AttemptResult{
		AttemptID: attempt.ID,
		Status:    attempt.Status,
		Score:     attempt.Score,
	}
	if attempt.Result != "" {
		var result scoring.Result
		if err := json.Unmarshal([]byte(attempt.Result), &result); err != nil {
			return nil, err
		}
		view.MaxScore = result.MaxScore
		view.Questions = result.Questions
	}
	return view, nil
}

func (s *AttemptService) ListModerationQueue() ([]model.TestAttempt, error) {
	return s.AttemptRepo.ListByStatus(model.AttemptModeration)
}

func (s *AttemptService) ListByEmployee(employeeID uint, page, limit int) ([]model.TestAttempt, int64, error) {
	return s.AttemptRepo.ListByEmployee(employeeID, page, limit)
}

// DeleteAttempt 管理端删除
func (s *AttemptService) DeleteAttempt(attemptID uint) error {
	if _, err := s.AttemptRepo.FindByID(attemptID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrAttemptNotFound
		}
		return err
	}
	return s.AttemptRepo.Delete(attemptID)
}
