package service

import (
	"fmt"

	"gamify_backend/internal/model"
	"gamify_backend/internal/repository"
	"gamify_backend/internal/util"

	"gorm.io/gorm"
)

// 升级步进：清掉第n级需要 base + floor(base*(n-1)*0.2) 经验
const levelBaseXP = 100

func xpToClear(n int) int {
	return levelBaseXP + levelBaseXP*(n-1)/5
}

// CumulativeXP 达到level所需的累计经验，cum(1)=0
func CumulativeXP(level int) int {
	total := 0
	for n := 1; n < level; n++ {
		total += xpToClear(n)
	}
	return total
}

// CalculateLevel 等级恒等于满足 cum(n) <= xp < cum(n+1) 的唯一n，上限50
func CalculateLevel(xp int) int {
	level := 1
	for level < model.MaxLevel && xp >= CumulativeXP(level+1) {
		level++
	}
	return level
}

// ProgressionService 员工进度台账：经验/等级/业力/Acoin的唯一修改入口
type ProgressionService struct {
	EmployeeRepo *repository.EmployeeRepository
	DB           *gorm.DB
}

func NewProgressionService(employeeRepo *repository.EmployeeRepository, db *gorm.DB) *ProgressionService {
	return &ProgressionService{EmployeeRepo: employeeRepo, DB: db}
}

func (s *ProgressionService) AddExperience(employeeID uint, amount int, source string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.AddExperienceTx(tx, employeeID, amount, source)
	})
}

func (s *ProgressionService) SetExperience(employeeID uint, amount int, source string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.applyExperience(tx, employeeID, amount, true, source)
	})
}

func (s *ProgressionService) AddExperienceTx(tx *gorm.DB, employeeID uint, amount int, source string) error {
	return s.applyExperience(tx, employeeID, amount, false, source)
}

func (s *ProgressionService) AddKarma(employeeID uint, amount int, source string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.applyKarma(tx, employeeID, amount, false, source)
	})
}

func (s *ProgressionService) SetKarma(employeeID uint, amount int, source string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.applyKarma(tx, employeeID, amount, true, source)
	})
}

func (s *ProgressionService) AddCurrency(employeeID uint, amount int, source string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.AddCurrencyTx(tx, employeeID, amount, source)
	})
}

func (s *ProgressionService) AddCurrencyTx(tx *gorm.DB, employeeID uint, amount int, source string) error {
	employee, err := s.lockActive(tx, employeeID)
	if err != nil {
		return err
	}

	oldBalance := employee.AcoinBalance
	newBalance := oldBalance + amount

	entry := model.EmployeeLog{
		EmployeeID:  employeeID,
		ChangeKind:  model.ChangeKindAcoin,
		OldValue:    oldBalance,
		NewValue:    newBalance,
		Description: fmt.Sprintf("acoin %d -> %d", oldBalance, newBalance),
		Source:      source,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return err
	}

	return tx.Model(employee).Update("acoin_balance", newBalance).Error
}

func (s *ProgressionService) applyExperience(tx *gorm.DB, employeeID uint, value int, set bool, source string) error {
	employee, err := s.lockActive(tx, employeeID)
	if err != nil {
		return err
	}

	oldXP := employee.Experience
	newXP := oldXP + value
	if set {
		newXP = value
	}
	if newXP < 0 {
		return util.ErrInvalidAmount
	}

	logs := []model.EmployeeLog{{
		EmployeeID:  employeeID,
		ChangeKind:  model.ChangeKindExperience,
		OldValue:    oldXP,
		NewValue:    newXP,
		Description: fmt.Sprintf("experience %d -> %d", oldXP, newXP),
		Source:      source,
	}}

	// 连跳多级时每一级都落一条流水
	oldLevel := employee.Level
	newLevel := CalculateLevel(newXP)
	step := 1
	if newLevel < oldLevel {
		step = -1
	}
	for lvl := oldLevel; lvl != newLevel; lvl += step {
		logs = append(logs, model.EmployeeLog{
			EmployeeID:  employeeID,
			ChangeKind:  model.ChangeKindLevel,
			OldValue:    lvl,
			NewValue:    lvl + step,
			Description: fmt.Sprintf("level %d -> %d", lvl, lvl+step),
			Source:      source,
		})
	}
	if err := tx.Create(&logs).Error; err != nil {
		return err
	}

	next := CumulativeXP(newLevel + 1)
	remaining := next - newXP
	progress := float64(newXP-CumulativeXP(newLevel)) / float64(xpToClear(newLevel)) * 100
	if newLevel >= model.MaxLevel {
		remaining = 0
		progress = 100
	}

	// 派生字段一次性落库
	return tx.Model(employee).Updates(map[string]interface{}{
		"experience":       newXP,
		"level":            newLevel,
		"next_level_xp":    next,
		"remaining_xp":     remaining,
		"progress_percent": progress,
	}).Error
}

func (s *ProgressionService) applyKarma(tx *gorm.DB, employeeID uint, value int, set bool, source string) error {
	employee, err := s.lockActive(tx, employeeID)
	if err != nil {
		return err
	}

	oldKarma := employee.Karma
	newKarma := oldKarma + value
	if set {
		newKarma = value
	}
	if newKarma > 100 {
		newKarma = 100
	}
	if newKarma < 0 {
		// 历史行为是下溢时重置为100；按疑似笔误处理，收敛到0
		newKarma = 0
	}

	entry := model.KarmaHistory{
		EmployeeID: employeeID,
		OldValue:   oldKarma,
		NewValue:   newKarma,
		Source:     source,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return err
	}

	return tx.Model(employee).Update("karma", newKarma).Error
}

// lockActive 行锁读取并校验账号有效
func (s *ProgressionService) lockActive(tx *gorm.DB, employeeID uint) (*model.Employee, error) {
	employee, err := s.EmployeeRepo.FindByIDForUpdate(tx, employeeID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrEmployeeNotFound
		}
		return nil, err
	}
	if !employee.IsActive {
		return nil, util.ErrAccountDeactivated
	}
	return employee, nil
}
