package service

import (
	"gamify_backend/internal/model"
	"gamify_backend/internal/repository"
	"gamify_backend/internal/util"

	"gorm.io/gorm"
)

type EmployeeService struct {
	EmployeeRepo *repository.EmployeeRepository
	DB           *gorm.DB
}

func NewEmployeeService(employeeRepo *repository.EmployeeRepository, db *gorm.DB) *EmployeeService {
	return &EmployeeService{EmployeeRepo: employeeRepo, DB: db}
}

func (s *EmployeeService) GetEmployee(id uint) (*model.Employee, error) {
	employee, err := s.EmployeeRepo.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrEmployeeNotFound
		}
		return nil, err
	}
	return employee, nil
}

// SetActive 激活标志是停用账号上唯一还允许改的字段
func (s *EmployeeService) SetActive(id uint, active bool) error {
	if _, err := s.GetEmployee(id); err != nil {
		return err
	}
	return s.EmployeeRepo.SetActive(id, active)
}

func (s *EmployeeService) GetLogs(employeeID uint, page, limit int) ([]model.EmployeeLog, int64, error) {
	if _, err := s.GetEmployee(employeeID); err != nil {
		return nil, 0, err
	}
	return s.EmployeeRepo.GetLogs(employeeID, page, limit)
}

func (s *EmployeeService) GetKarmaHistory(employeeID uint, page, limit int) ([]model.KarmaHistory, int64, error) {
	if _, err := s.GetEmployee(employeeID); err != nil {
		return nil, 0, err
	}
	return s.EmployeeRepo.GetKarmaHistory(employeeID, page, limit)
}

func (s *EmployeeService) UpdateAvatar(employeeID uint, url string) error {
	employee, err := s.GetEmployee(employeeID)
	if err != nil {
		return err
	}
	employee.AvatarURL = url
	return s.EmployeeRepo.Update(employee)
}
