package service

import (
	"errors"

	"gamify_backend/internal/config"
	"gamify_backend/internal/model"
	"gamify_backend/internal/repository"
	"gamify_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	EmployeeRepo *repository.EmployeeRepository
	Cfg          *config.Config
}

func NewAuthService(employeeRepo *repository.EmployeeRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		EmployeeRepo: employeeRepo,
		Cfg:          cfg,
	}
}

// Register 新账号从1级、50业力、0经验、0 Acoin起步
func (s *AuthService) Register(employee *model.Employee) error {
	_, err := s.EmployeeRepo.FindByEmail(employee.Email)
	if err == nil {
		return util.ErrEmailRegistered
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(employee.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	employee.Password = string(hashedPassword)
	employee.Level = 1
	employee.Karma = model.DefaultKarma
	employee.NextLevelXP = CumulativeXP(2)
	employee.RemainingXP = CumulativeXP(2)
	employee.IsActive = true
	return s.EmployeeRepo.Create(employee)
}

func (s *AuthService) Login(email, password string) (string, error) {
	employee, err := s.EmployeeRepo.FindByEmail(email)
	if err != nil {
		return "", errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(employee.Password), []byte(password)); err != nil {
		return "", errors.New("invalid credentials")
	}

	return util.GenerateJWT(employee, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
}
