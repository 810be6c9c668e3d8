package controller

import (
	"path/filepath"
	"strconv"

	"gamify_backend/internal/model"
	"gamify_backend/internal/service"
	"gamify_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EmployeeController struct {
	EmployeeService    *service.EmployeeService
	ProgressionService *service.ProgressionService
	StorageService     *service.StorageService
}

func NewEmployeeController(
	employees *service.EmployeeService,
	progression *service.ProgressionService,
	storage *service.StorageService,
) *EmployeeController {
	return &EmployeeController{
		EmployeeService:    employees,
		ProgressionService: progression,
		StorageService:     storage,
	}
}

// Get godoc
// @Summary 员工档案
// @Tags 员工
// @Security BearerAuth
// @Produce json
// @Param id path int true "员工ID"
// @Success 200 {object} util.Response{data=model.Employee}
// @Failure 404 {object} util.Response
// @Router /api/employees/{id} [get]
func (c *EmployeeController) Get(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid employee id")
		return
	}

	employee, err := c.EmployeeService.GetEmployee(uint(id))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, employee)
}

// Logs godoc
// @Summary 变更日志
// @Description 经验、等级、货币的带因变更记录
// @Tags 员工
// @Security BearerAuth
// @Produce json
// @Param id path int true "员工ID"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/employees/{id}/logs [get]
func (c *EmployeeController) Logs(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid employee id")
		return
	}
	if !c.canView(ctx, uint(id)) {
		util.Forbidden(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	logs, total, err := c.EmployeeService.GetLogs(uint(id), page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: logs, Total: total, Page: page, Limit: limit})
}

// KarmaHistory godoc
// @Summary Karma 历史
// @Tags 员工
// @Security BearerAuth
// @Produce json
// @Param id path int true "员工ID"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/employees/{id}/karma [get]
func (c *EmployeeController) KarmaHistory(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid employee id")
		return
	}
	if !c.canView(ctx, uint(id)) {
		util.Forbidden(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	history, total, err := c.EmployeeService.GetKarmaHistory(uint(id), page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: history, Total: total, Page: page, Limit: limit})
}

type AdjustRequest struct {
	Amount int    `json:"amount" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

// AdjustKarma godoc
// @Summary 调整 Karma
// @Description 增量调整，结果收敛到 [0,100]
// @Tags 员工管理
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "员工ID"
// @Param body body AdjustRequest true "调整量与原因"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/admin/employees/{id}/karma [post]
func (c *EmployeeController) AdjustKarma(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid employee id")
		return
	}

	var req AdjustRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.ProgressionService.AddKarma(uint(id), req.Amount, req.Reason); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// GrantExperience godoc
// @Summary 发放经验
// @Tags 员工管理
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "员工ID"
// @Param body body AdjustRequest true "经验值与原因"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/admin/employees/{id}/experience [post]
func (c *EmployeeController) GrantExperience(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid employee id")
		return
	}

	var req AdjustRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.ProgressionService.AddExperience(uint(id), req.Amount, req.Reason); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetActive godoc
// @Summary 启用/停用账号
// @Description 停用后账号只读，仅激活标记仍可修改
// @Tags 员工管理
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "员工ID"
// @Param body body SetActiveRequest true "激活状态"
// @Success 200 {object} util.Response
// @Router /api/admin/employees/{id}/active [patch]
func (c *EmployeeController) SetActive(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid employee id")
		return
	}

	var req SetActiveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.EmployeeService.SetActive(uint(id), *req.Active); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// UploadAvatar godoc
// @Summary 上传头像
// @Tags 员工
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param avatar formData file true "头像文件"
// @Success 200 {object} util.Response
// @Router /api/employees/avatar [post]
func (c *EmployeeController) UploadAvatar(ctx *gin.Context) {
	claims := util.GetEmployeeFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	file, err := ctx.FormFile("avatar")
	if err != nil {
		util.BadRequest(ctx, "avatar file is required")
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	filename := model.GenerateUUID() + filepath.Ext(file.Filename)
	url, err := c.StorageService.Upload(ctx.Request.Context(), filename, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	if err := c.EmployeeService.UpdateAvatar(claims.EmployeeID, url); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"url": url})
}

// canView 本人或管理员可看历史
func (c *EmployeeController) canView(ctx *gin.Context, employeeID uint) bool {
	claims := util.GetEmployeeFromContext(ctx)
	if claims == nil {
		return false
	}
	return claims.EmployeeID == employeeID || claims.Role == model.RoleAdmin
}
