package repository

import (
	"gamify_backend/internal/model"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(attempt *model.TestAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *AttemptRepository) Update(attempt *model.TestAttempt) error {
	return r.DB.Save(attempt).Error
}

func (r *AttemptRepository) FindByID(id uint) (*model.TestAttempt, error) {
	var attempt model.TestAttempt
	if err := r.DB.First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

// FindByIDForUpdate 行级锁读取，状态迁移按尝试串行化
func (r *AttemptRepository) FindByIDForUpdate(tx *gorm.DB, id uint) (*model.TestAttempt, error) {
	var attempt model.TestAttempt
	if err := lockForUpdate(tx).First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

// DeleteLive 清理同一(员工,测试)下尚未完成的尝试
func (r *AttemptRepository) DeleteLive(tx *gorm.DB, employeeID, testID uint) error {
	return tx.Where("employee_id = ? AND test_id = ? AND status IN ?",
		employeeID, testID,
		[]model.AttemptStatus{model.AttemptNotStarted, model.AttemptInProgress},
	).Delete(&model.TestAttempt{}).Error
}

func (r *AttemptRepository) HasPassed(employeeID, testID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.TestAttempt{}).
		Where("employee_id = ? AND test_id = ? AND status = ?", employeeID, testID, model.AttemptPassed).
		Count(&count).Error
	return count > 0, err
}

// FindLatestFinished 最近一次已出结果的尝试，用于重考间隔判断
func (r *AttemptRepository) FindLatestFinished(employeeID, testID uint) (*model.TestAttempt, error) {
	var attempt model.TestAttempt
	err := r.DB.Where("employee_id = ? AND test_id = ? AND ended_at IS NOT NULL", employeeID, testID).
		Order("ended_at DESC").First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *AttemptRepository) ListByEmployee(employeeID uint, page, limit int) ([]model.TestAttempt, int64, error) {
	var attempts []model.TestAttempt
	var total int64
	query := r.DB.Model(&model.TestAttempt{}).Where("employee_id = ?", employeeID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("id DESC").Offset((page - 1) * limit).Limit(limit).Find(&attempts).Error
	return attempts, total, err
}

func (r *AttemptRepository) ListByStatus(status model.AttemptStatus) ([]model.TestAttempt, error) {
	var attempts []model.TestAttempt
	err := r.DB.Where("status = ?", status).Order("ended_at").Find(&attempts).Error
	return attempts, err
}

// ListUnsettled 已通过但尚未结算的尝试，后台补偿任务使用
func (r *AttemptRepository) ListUnsettled(limit int) ([]model.TestAttempt, error) {
	var attempts []model.TestAttempt
	err := r.DB.Where("status = ? AND rewarded_at IS NULL", model.AttemptPassed).
		Order("id").Limit(limit).Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) Delete(id uint) error {
	return r.DB.Delete(&model.TestAttempt{}, id).Error
}
