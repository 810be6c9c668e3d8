package controller

import (
	"strconv"

	"gamify_backend/internal/config"
	"gamify_backend/internal/service"
	"gamify_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AchievementController struct {
	AchievementService *service.AchievementService
	Config             *config.Config
}

func NewAchievementController(achievements *service.AchievementService, cfg *config.Config) *AchievementController {
	return &AchievementController{AchievementService: achievements, Config: cfg}
}

// List godoc
// @Summary 成就列表
// @Tags 成就
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]model.Achievement}
// @Router /api/achievements [get]
func (c *AchievementController) List(ctx *gin.Context) {
	achievements, err := c.AchievementService.ListAchievements()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, achievements)
}

// Mine godoc
// @Summary 我的成就进度
// @Tags 成就
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]model.EmployeeAchievement}
// @Router /api/achievements/mine [get]
func (c *AchievementController) Mine(ctx *gin.Context) {
	claims := util.GetEmployeeFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	progress, err := c.AchievementService.GetEmployeeAchievements(claims.EmployeeID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// Leaderboard godoc
// @Summary 经验排行榜
// @Tags 成就
// @Security BearerAuth
// @Produce json
// @Param limit query int false "条数"
// @Success 200 {object} util.Response{data=[]service.LeaderboardEntry}
// @Router /api/leaderboard [get]
func (c *AchievementController) Leaderboard(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "0"))
	if limit <= 0 {
		limit = c.Config.Rewards.LeaderboardSize
	}

	entries, err := c.AchievementService.GetLeaderboard(limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

// Create godoc
// @Summary 创建成就
// @Tags 成就管理
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.AchievementRequest true "成就定义"
// @Success 201 {object} util.Response{data=model.Achievement}
// @Failure 400 {object} util.Response
// @Router /api/admin/achievements [post]
func (c *AchievementController) Create(ctx *gin.Context) {
	var req service.AchievementRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	achievement, err := c.AchievementService.CreateAchievement(req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, achievement)
}
