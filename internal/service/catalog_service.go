package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gamify_backend/internal/model"
	"gamify_backend/internal/repository"
	"gamify_backend/internal/util"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const testCacheTTL = 5 * time.Minute

// CatalogService 测试目录只读路径：定义、前置链、可参加性
type CatalogService struct {
	TestRepo    *repository.TestRepository
	AttemptRepo *repository.AttemptRepository
	Redis       *redis.Client // 可为nil，缓存退化为直读
}

func NewCatalogService(testRepo *repository.TestRepository, attemptRepo *repository.AttemptRepository, rdb *redis.Client) *CatalogService {
	return &CatalogService{TestRepo: testRepo, AttemptRepo: attemptRepo, Redis: rdb}
}

func (s *CatalogService) GetTest(id uint) (*model.Test, error) {
	key := fmt.Sprintf("test:%d", id)
	if s.Redis != nil {
		if raw, err := s.Redis.Get(context.Background(), key).Result(); err == nil {
			var cached model.Test
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}

	test, err := s.TestRepo.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}

	if s.Redis != nil {
		if raw, err := json.Marshal(test); err == nil {
			s.Redis.Set(context.Background(), key, raw, testCacheTTL)
		}
	}
	return test, nil
}

// InvalidateTest 管理端写入后驱逐缓存
func (s *CatalogService) InvalidateTest(id uint) {
	if s.Redis != nil {
		s.Redis.Del(context.Background(), fmt.Sprintf("test:%d", id))
	}
}

func (s *CatalogService) GetQuestions(testID uint) ([]model.TestQuestion, error) {
	return s.TestRepo.GetQuestions(testID)
}

// GetPrerequisiteChain 沿required_test回溯到根，按根在前返回
func (s *CatalogService) GetPrerequisiteChain(testID uint) ([]model.Test, error) {
	var chain []model.Test
	visited := map[uint]bool{testID: true}

	test, err := s.GetTest(testID)
	if err != nil {
		return nil, err
	}
	for test.RequiredTestID != nil {
		prev, err := s.GetTest(*test.RequiredTestID)
		if err != nil {
			return nil, err
		}
		if visited[prev.ID] {
			break // 数据异常成环时止步
		}
		visited[prev.ID] = true
		chain = append(chain, *prev)
		test = prev
	}

	// 反转为根在前
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// CheckAvailability 返回首个不满足的报名前提；全部满足返回nil
func (s *CatalogService) CheckAvailability(employee *model.Employee, test *model.Test) error {
	if employee.Karma < test.RequiredKarma {
		return util.ErrKarmaTooLow
	}
	if employee.Experience < test.MinExperience {
		return util.ErrExperienceTooLow
	}

	if !test.Repeatable {
		passed, err := s.AttemptRepo.HasPassed(employee.ID, test.ID)
		if err != nil {
			return err
		}
		if passed {
			return util.ErrTestAlreadyPassed
		}
	}

	available, _, err := s.ReattemptDelay(employee.ID, test)
	if err != nil {
		return err
	}
	if !available {
		return util.ErrRetryDelayActive
	}
	return nil
}

func (s *CatalogService) IsAvailable(employee *model.Employee, test *model.Test) (bool, error) {
	err := s.CheckAvailability(employee, test)
	if err == nil {
		return true, nil
	}
	if util.KindOf(err) != "" {
		return false, nil
	}
	return false, err
}

// ReattemptDelay 距离允许重考还剩多久；availableNow为true时时长为0
func (s *CatalogService) ReattemptDelay(employeeID uint, test *model.Test) (bool, time.Duration, error) {
	if test.RetryDelayDays <= 0 {
		return true, 0, nil
	}

	last, err := s.AttemptRepo.FindLatestFinished(employeeID, test.ID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return true, 0, nil
		}
		return false, 0, err
	}

	window := time.Duration(test.RetryDelayDays) * 24 * time.Hour
	readyAt := last.EndedAt.Add(window)
	now := time.Now()
	if !now.Before(readyAt) {
		return true, 0, nil
	}
	return false, readyAt.Sub(now), nil
}
