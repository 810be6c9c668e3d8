package repository

import (
	"gamify_backend/internal/model"

	"gorm.io/gorm"
)

type TestRepository struct {
	DB *gorm.DB
}

func NewTestRepository(db *gorm.DB) *TestRepository {
	return &TestRepository{DB: db}
}

func (r *TestRepository) Create(test *model.Test) error {
	return r.DB.Create(test).Error
}

func (r *TestRepository) Update(test *model.Test) error {
	return r.DB.Save(test).Error
}

func (r *TestRepository) FindByID(id uint) (*model.Test, error) {
	var test model.Test
	if err := r.DB.First(&test, id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (r *TestRepository) List(page, limit int) ([]model.Test, int64, error) {
	var tests []model.Test
	var total int64
	if err := r.DB.Model(&model.Test{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.DB.Order("id").Offset((page - 1) * limit).Limit(limit).Find(&tests).Error
	return tests, total, err
}

func (r *TestRepository) GetQuestions(testID uint) ([]model.TestQuestion, error) {
	var questions []model.TestQuestion
	err := r.DB.Preload("Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("answer_options.position")
	}).Where("test_id = ?", testID).Order("position").Find(&questions).Error
	return questions, err
}

func (r *TestRepository) DeleteQuestions(tx *gorm.DB, testID uint) error {
	var questionIDs []uint
	if err := tx.Model(&model.TestQuestion{}).Where("test_id = ?", testID).Pluck("id", &questionIDs).Error; err != nil {
		return err
	}
	if len(questionIDs) > 0 {
		if err := tx.Where("question_id IN ?", questionIDs).Delete(&model.AnswerOption{}).Error; err != nil {
			return err
		}
	}
	return tx.Where("test_id = ?", testID).Delete(&model.TestQuestion{}).Error
}
