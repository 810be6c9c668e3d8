package repository

import (
	"gamify_backend/internal/model"

	"gorm.io/gorm"
)

type EmployeeRepository struct {
	DB *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{DB: db}
}

func (r *EmployeeRepository) Create(employee *model.Employee) error {
	return r.DB.Create(employee).Error
}

func (r *EmployeeRepository) FindByID(id uint) (*model.Employee, error) {
	var employee model.Employee
	if err := r.DB.First(&employee, id).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

// FindByIDForUpdate 行级锁读取，台账的读-改-写在锁内完成
func (r *EmployeeRepository) FindByIDForUpdate(tx *gorm.DB, id uint) (*model.Employee, error) {
	var employee model.Employee
	if err := lockForUpdate(tx).First(&employee, id).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *EmployeeRepository) FindByEmail(email string) (*model.Employee, error) {
	var employee model.Employee
	err := r.DB.Where("email = ?", email).First(&employee).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *EmployeeRepository) Update(employee *model.Employee) error {
	return r.DB.Save(employee).Error
}

func (r *EmployeeRepository) SetActive(id uint, active bool) error {
	return r.DB.Model(&model.Employee{}).Where("id = ?", id).Update("is_active", active).Error
}

func (r *EmployeeRepository) ListModerators() ([]model.Employee, error) {
	var moderators []model.Employee
	err := r.DB.Where("role IN ? AND is_active = ?",
		[]model.EmployeeRole{model.RoleModerator, model.RoleAdmin}, true).Find(&moderators).Error
	return moderators, err
}

func (r *EmployeeRepository) FindTopByExperience(limit int) ([]model.Employee, error) {
	var employees []model.Employee
	err := r.DB.Where("is_active = ?", true).Order("experience DESC").Limit(limit).Find(&employees).Error
	return employees, err
}

func (r *EmployeeRepository) GetLogs(employeeID uint, page, limit int) ([]model.EmployeeLog, int64, error) {
	var logs []model.EmployeeLog
	var total int64
	query := r.DB.Model(&model.EmployeeLog{}).Where("employee_id = ?", employeeID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("id DESC").Offset((page - 1) * limit).Limit(limit).Find(&logs).Error
	return logs, total, err
}

func (r *EmployeeRepository) GetKarmaHistory(employeeID uint, page, limit int) ([]model.KarmaHistory, int64, error) {
	var history []model.KarmaHistory
	var total int64
	query := r.DB.Model(&model.KarmaHistory{}).Where("employee_id = ?", employeeID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("id DESC").Offset((page - 1) * limit).Limit(limit).Find(&history).Error
	return history, total, err
}
