package repository

import (
	"gamify_backend/internal/model"

	"gorm.io/gorm"
)

type AchievementRepository struct {
	DB *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{DB: db}
}

func (r *AchievementRepository) Create(achievement *model.Achievement) error {
	return r.DB.Create(achievement).Error
}

func (r *AchievementRepository) FindByID(id uint) (*model.Achievement, error) {
	var achievement model.Achievement
	if err := r.DB.First(&achievement, id).Error; err != nil {
		return nil, err
	}
	return &achievement, nil
}

func (r *AchievementRepository) List() ([]model.Achievement, error) {
	var achievements []model.Achievement
	err := r.DB.Order("id").Find(&achievements).Error
	return achievements, err
}

func (r *AchievementRepository) FindByEmployee(employeeID uint) ([]model.EmployeeAchievement, error) {
	var list []model.EmployeeAchievement
	err := r.DB.Preload("Achievement").Where("employee_id = ?", employeeID).Find(&list).Error
	return list, err
}

// FindOrCreateProgress 读取或初始化某员工在某成就上的进度记录
func (r *AchievementRepository) FindOrCreateProgress(tx *gorm.DB, employeeID, achievementID uint) (*model.EmployeeAchievement, error) {
	var progress model.EmployeeAchievement
	err := tx.Where("employee_id = ? AND achievement_id = ?", employeeID, achievementID).First(&progress).Error
	if err == gorm.ErrRecordNotFound {
		progress = model.EmployeeAchievement{EmployeeID: employeeID, AchievementID: achievementID}
		if err := tx.Create(&progress).Error; err != nil {
			return nil, err
		}
		return &progress, nil
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}
