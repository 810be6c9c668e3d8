package service

import (
	"context"
	"encoding/json"
	"time"

	"gamify_backend/internal/model"
	"gamify_backend/internal/repository"
	"gamify_backend/internal/util"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const leaderboardCacheTTL = time.Minute

type AchievementService struct {
	AchievementRepo *repository.AchievementRepository
	EmployeeRepo    *repository.EmployeeRepository
	Redis           *redis.Client
}

func NewAchievementService(
	achievementRepo *repository.AchievementRepository,
	employeeRepo *repository.EmployeeRepository,
	rdb *redis.Client,
) *AchievementService {
	return &AchievementService{
		AchievementRepo: achievementRepo,
		EmployeeRepo:    employeeRepo,
		Redis:           rdb,
	}
}

type AchievementRequest struct {
	Name              string `json:"name" binding:"required"`
	Description       string `json:"description"`
	Icon              string `json:"icon"`
	ProgressThreshold int    `json:"progressThreshold"`
	ExperienceReward  int    `json:"experienceReward"`
	AcoinReward       int    `json:"acoinReward"`
}

func (s *AchievementService) CreateAchievement(req AchievementRequest) (*model.Achievement, error) {
	if req.ProgressThreshold <= 0 {
		req.ProgressThreshold = 1
	}
	achievement := &model.Achievement{
		Name:              req.Name,
		Description:       req.Description,
		Icon:              req.Icon,
		ProgressThreshold: req.ProgressThreshold,
		ExperienceReward:  req.ExperienceReward,
		AcoinReward:       req.AcoinReward,
	}
	if err := s.AchievementRepo.Create(achievement); err != nil {
		return nil, err
	}
	return achievement, nil
}

func (s *AchievementService) ListAchievements() ([]model.Achievement, error) {
	return s.AchievementRepo.List()
}

func (s *AchievementService) GetAchievement(id uint) (*model.Achievement, error) {
	achievement, err := s.AchievementRepo.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrAchievementNotFound
		}
		return nil, err
	}
	return achievement, nil
}

func (s *AchievementService) GetEmployeeAchievements(employeeID uint) ([]model.EmployeeAchievement, error) {
	return s.AchievementRepo.FindByEmployee(employeeID)
}

type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	EmployeeID uint   `json:"employeeId"`
	Name       string `json:"name"`
	Level      int    `json:"level"`
	Experience int    `json:"experience"`
	Avatar     string `json:"avatar,omitempty"`
}

func (s *AchievementService) GetLeaderboard(limit int) ([]LeaderboardEntry, error) {
	const cacheKey = "leaderboard"
	if s.Redis != nil {
		if raw, err := s.Redis.Get(context.Background(), cacheKey).Result(); err == nil {
			var cached []LeaderboardEntry
			if json.Unmarshal([]byte(raw), &cached) == nil && len(cached) >= limit {
				return cached[:limit], nil
			}
		}
	}

	employees, err := s.EmployeeRepo.FindTopByExperience(limit)
	if err != nil {
		return nil, err
	}

	leaderboard := make([]LeaderboardEntry, len(employees))
	for i, e := range employees {
		leaderboard[i] = LeaderboardEntry{
			Rank:       i + 1,
			EmployeeID: e.ID,
			Name:       e.Name,
			Level:      e.Level,
			Experience: e.Experience,
			Avatar:     e.AvatarURL,
		}
	}

	if s.Redis != nil {
		if raw, err := json.Marshal(leaderboard); err == nil {
			s.Redis.Set(context.Background(), cacheKey, raw, leaderboardCacheTTL)
		}
	}
	return leaderboard, nil
}
