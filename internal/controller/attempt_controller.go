package controller

import (
	"strconv"

	"gamify_backend/internal/model"
	"gamify_backend/internal/scoring"
	"gamify_backend/internal/service"
	"gamify_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	AttemptService *service.AttemptService
}

func NewAttemptController(attemptService *service.AttemptService) *AttemptController {
	return &AttemptController{AttemptService: attemptService}
}

// Start godoc
// @Summary 开始测试
// @Description 清除同一测试上未完结的旧尝试，新建 in_progress 尝试
// @Tags 答题
// @Security BearerAuth
// @Produce json
// @Param id path int true "测试ID"
// @Success 201 {object} util.Response{data=model.TestAttempt}
// @Failure 403 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/tests/{id}/attempts [post]
func (c *AttemptController) Start(ctx *gin.Context) {
	testID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid test id")
		return
	}

	claims := util.GetEmployeeFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	attempt, err := c.AttemptService.Start(claims.EmployeeID, uint(testID))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, attempt)
}

type SubmitRequest struct {
	Answers map[int]scoring.Answer `json:"answers" binding:"required"`
}

// Submit godoc
// @Summary 提交答案
// @Description 评分并根据结果进入 passed、failed 或 moderation
// @Tags 答题
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "尝试ID"
// @Param body body SubmitRequest true "按题号索引的答案"
// @Success 200 {object} util.Response{data=model.TestAttempt}
// @Failure 409 {object} util.Response
// @Router /api/attempts/{id}/submit [post]
func (c *AttemptController) Submit(ctx *gin.Context) {
	attemptID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}

	claims := util.GetEmployeeFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.AttemptService.Submit(claims.EmployeeID, uint(attemptID), req.Answers)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// Result godoc
// @Summary 尝试结果明细
// @Tags 答题
// @Security BearerAuth
// @Produce json
// @Param id path int true "尝试ID"
// @Success 200 {object} util.Response{data=service.AttemptResult}
// @Failure 404 {object} util.Response
// @Router /api/attempts/{id}/result [get]
func (c *AttemptController) Result(ctx *gin.Context) {
	attemptID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}

	claims := util.GetEmployeeFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	privileged := claims.Role == model.RoleAdmin || claims.Role == model.RoleModerator

	result, err := c.AttemptService.GetResult(claims.EmployeeID, uint(attemptID), privileged)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// ListMine godoc
// @Summary 我的答题记录
// @Tags 答题
// @Security BearerAuth
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/attempts [get]
func (c *AttemptController) ListMine(ctx *gin.Context) {
	claims := util.GetEmployeeFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	attempts, total, err := c.AttemptService.ListByEmployee(claims.EmployeeID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: attempts, Total: total, Page: page, Limit: limit})
}

// ModerationQueue godoc
// @Summary 待人工评分队列
// @Tags 评审
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/moderation/queue [get]
func (c *AttemptController) ModerationQueue(ctx *gin.Context) {
	attempts, err := c.AttemptService.ListModerationQueue()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

type ModerateRequest struct {
	Overrides []service.ModerationOverride `json:"overrides" binding:"required,min=1,dive"`
}

// Moderate godoc
// @Summary 人工评分
// @Description 对文本题打分后重算总分并落定 passed/failed
// @Tags 评审
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "尝试ID"
// @Param body body ModerateRequest true "各题评分"
// @Success 200 {object} util.Response{data=model.TestAttempt}
// @Failure 409 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/moderation/attempts/{id} [post]
func (c *AttemptController) Moderate(ctx *gin.Context) {
	attemptID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}

	claims := util.GetEmployeeFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ModerateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.AttemptService.Moderate(claims.EmployeeID, uint(attemptID), req.Overrides)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// Delete godoc
// @Summary 删除尝试
// @Tags 测试管理
// @Security BearerAuth
// @Produce json
// @Param id path int true "尝试ID"
// @Success 200 {object} util.Response
// @Router /api/admin/attempts/{id} [delete]
func (c *AttemptController) Delete(ctx *gin.Context) {
	attemptID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}

	if err := c.AttemptService.DeleteAttempt(uint(attemptID)); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
