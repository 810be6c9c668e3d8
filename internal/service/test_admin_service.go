package service

import (
	"gamify_backend/internal/model"
	"gamify_backend/internal/repository"
	"gamify_backend/internal/util"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TestAdminService 测试编写：定义、题目、选项在一个事务里整体写入
type TestAdminService struct {
	TestRepo *repository.TestRepository
	Catalog  *CatalogService
	DB       *gorm.DB
}

func NewTestAdminService(testRepo *repository.TestRepository, catalog *CatalogService, db *gorm.DB) *TestAdminService {
	return &TestAdminService{TestRepo: testRepo, Catalog: catalog, DB: db}
}

type AnswerOptionRequest struct {
	Text      string `json:"text" binding:"required"`
	IsCorrect bool   `json:"isCorrect"`
}

type QuestionRequest struct {
	QuestionType string                `json:"questionType" binding:"required,oneof=text single multiple"`
	Text         string                `json:"text" binding:"required"`
	Points       float64               `json:"points"`
	Options      []AnswerOptionRequest `json:"options,omitempty"`
}

type TestCreateRequest struct {
	Title          string            `json:"title" binding:"required"`
	Description    string            `json:"description"`
	PassingScore   float64           `json:"passingScore"`
	AcoinReward    int               `json:"acoinReward"`
	RetryDelayDays int               `json:"retryDelayDays"`
	Repeatable     bool              `json:"repeatable"`
	RequiredKarma  int               `json:"requiredKarma"`
	MinExperience  int               `json:"minExperience"`
	RequiredTestID *uint             `json:"requiredTestId"`
	AchievementID  *uint             `json:"achievementId"`
	IsPublished    bool              `json:"isPublished"`
	Questions      []QuestionRequest `json:"questions" binding:"required,min=1"`
}

func validateQuestion(q QuestionRequest) error {
	switch q.QuestionType {
	case model.QuestionTypeText:
		if len(q.Options) > 0 {
			return util.NewAppError(util.KindValidation, "text questions take no options")
		}
	case model.QuestionTypeSingle:
		correct := 0
		for _, o := range q.Options {
			if o.IsCorrect {
				correct++
			}
		}
		if len(q.Options) < 2 || correct != 1 {
			return util.NewAppError(util.KindValidation, "single questions need at least two options with exactly one correct")
		}
	case model.QuestionTypeMultiple:
		correct := 0
		for _, o := range q.Options {
			if o.IsCorrect {
				correct++
			}
		}
		if correct == 0 {
			return util.NewAppError(util.KindValidation, "multiple questions need at least one correct option")
		}
	}
	if q.Points < 0 {
		return util.NewAppError(util.KindValidation, "question points must not be negative")
	}
	return nil
}

func maxScoreOf(questions []QuestionRequest) float64 {
	total := decimal.Zero
	for _, q := range questions {
		total = total.Add(decimal.NewFromFloat(q.Points))
	}
	return total.Round(1).InexactFloat64()
}

func (s *TestAdminService) CreateTest(req TestCreateRequest) (*model.Test, error) {
	for _, q := range req.Questions {
		if err := validateQuestion(q); err != nil {
			return nil, err
		}
	}
	if req.RequiredTestID != nil {
		if _, err := s.TestRepo.FindByID(*req.RequiredTestID); err != nil {
			return nil, util.ErrTestNotFound
		}
	}

	test := &model.Test{
		Title:          req.Title,
		Description:    req.Description,
		PassingScore:   req.PassingScore,
		MaxScore:       maxScoreOf(req.Questions),
		AcoinReward:    req.AcoinReward,
		RetryDelayDays: req.RetryDelayDays,
		Repeatable:     req.Repeatable,
		RequiredKarma:  req.RequiredKarma,
		MinExperience:  req.MinExperience,
		RequiredTestID: req.RequiredTestID,
		AchievementID:  req.AchievementID,
		IsPublished:    req.IsPublished,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(test).Error; err != nil {
			return err
		}
		return s.createQuestions(tx, test.ID, req.Questions)
	})
	if err != nil {
		return nil, err
	}
	return test, nil
}

func (s *TestAdminService) UpdateTest(testID uint, req TestCreateRequest) (*model.Test, error) {
	for _, q := range req.Questions {
		if err := validateQuestion(q); err != nil {
			return nil, err
		}
	}
	if req.RequiredTestID != nil && *req.RequiredTestID == testID {
		return nil, util.NewAppError(util.KindValidation, "test cannot require itself")
	}

	test, err := s.TestRepo.FindByID(testID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}

	test.Title = req.Title
	test.Description = req.Description
	test.PassingScore = req.PassingScore
	test.MaxScore = maxScoreOf(req.Questions)
	test.AcoinReward = req.AcoinReward
	test.RetryDelayDays = req.RetryDelayDays
	test.Repeatable = req.Repeatable
	test.RequiredKarma = req.RequiredKarma
	test.MinExperience = req.MinExperience
	test.RequiredTestID = req.RequiredTestID
	test.AchievementID = req.AchievementID
	test.IsPublished = req.IsPublished

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(test).Error; err != nil {
			return err
		}
		// 整组替换题目，位置重新编号保持连续
		if err := s.TestRepo.DeleteQuestions(tx, test.ID); err != nil {
			return err
		}
		return s.createQuestions(tx, test.ID, req.Questions)
	})
	if err != nil {
		return nil, err
	}

	s.Catalog.InvalidateTest(test.ID)
	return test, nil
}

func (s *TestAdminService) PublishTest(testID uint, publish bool) error {
	test, err := s.TestRepo.FindByID(testID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrTestNotFound
		}
		return err
	}
	test.IsPublished = publish
	if err := s.TestRepo.Update(test); err != nil {
		return err
	}
	s.Catalog.InvalidateTest(testID)
	return nil
}

func (s *TestAdminService) ListTests(page, limit int) ([]model.Test, int64, error) {
	return s.TestRepo.List(page, limit)
}

func (s *TestAdminService) createQuestions(tx *gorm.DB, testID uint, questions []QuestionRequest) error {
	for idx, q := range questions {
		question := &model.TestQuestion{
			TestID:       testID,
			QuestionType: q.QuestionType,
			Text:         q.Text,
			Points:       q.Points,
			Position:     idx + 1,
		}
		if err := tx.Create(question).Error; err != nil {
			return err
		}
		for optIdx, o := range q.Options {
			option := &model.AnswerOption{
				QuestionID: question.ID,
				Text:       o.Text,
				IsCorrect:  o.IsCorrect,
				Position:   optIdx + 1,
			}
			if err := tx.Create(option).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
