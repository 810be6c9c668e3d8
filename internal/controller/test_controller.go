package controller

import (
	"strconv"
	"time"

	"gamify_backend/internal/model"
	"gamify_backend/internal/service"
	"gamify_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TestController struct {
	CatalogService   *service.CatalogService
	TestAdminService *service.TestAdminService
	EmployeeService  *service.EmployeeService
}

func NewTestController(catalog *service.CatalogService, admin *service.TestAdminService, employees *service.EmployeeService) *TestController {
	return &TestController{
		CatalogService:   catalog,
		TestAdminService: admin,
		EmployeeService:  employees,
	}
}

// TestSummary 员工视角的测试条目，带可用性标记
type TestSummary struct {
	ID             uint    `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	PassingScore   float64 `json:"passingScore"`
	MaxScore       float64 `json:"maxScore"`
	AcoinReward    int     `json:"acoinReward"`
	Repeatable     bool    `json:"repeatable"`
	RequiredTestID *uint   `json:"requiredTestId,omitempty"`
	Available      bool    `json:"available"`
	RetryAfter     string  `json:"retryAfter,omitempty"`
}

// List godoc
// @Summary 测试列表
// @Description 员工看到已发布的测试及其可用性；管理员可带 all=1 查看全部
// @Tags 测试
// @Security BearerAuth
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/tests [get]
func (c *TestController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	claims := util.GetEmployeeFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	tests, total, err := c.TestAdminService.ListTests(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	if claims.Role == model.RoleAdmin && ctx.Query("all") == "1" {
		util.Success(ctx, util.PageResponse{List: tests, Total: total, Page: page, Limit: limit})
		return
	}

	employee, err := c.EmployeeService.GetEmployee(claims.EmployeeID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}

	summaries := make([]TestSummary, 0, len(tests))
	for i := range tests {
		t := &tests[i]
		if !t.IsPublished {
			continue
		}
		available, err := c.CatalogService.IsAvailable(employee, t)
		if err != nil {
			util.LogInternalError(ctx, err)
			return
		}
		summary := TestSummary{
			ID:             t.ID,
			Title:          t.Title,
			Description:    t.Description,
			PassingScore:   t.PassingScore,
			MaxScore:       t.MaxScore,
			AcoinReward:    t.AcoinReward,
			Repeatable:     t.Repeatable,
			RequiredTestID: t.RequiredTestID,
			Available:      available,
		}
		if t.RetryDelayDays > 0 {
			now, remaining, err := c.CatalogService.ReattemptDelay(employee.ID, t)
			if err != nil {
				util.LogInternalError(ctx, err)
				return
			}
			if !now {
				summary.Available = false
				summary.RetryAfter = time.Now().Add(remaining).Format(time.RFC3339)
			}
		}
		summaries = append(summaries, summary)
	}

	util.Success(ctx, util.PageResponse{List: summaries, Total: total, Page: page, Limit: limit})
}

// QuestionView 答题视角的题目，不暴露正确答案
type QuestionView struct {
	Position     int          `json:"position"`
	QuestionType string       `json:"questionType"`
	Text         string       `json:"text"`
	Points       float64      `json:"points"`
	Options      []OptionView `json:"options,omitempty"`
}

type OptionView struct {
	Position int    `json:"position"`
	Text     string `json:"text"`
}

// Get godoc
// @Summary 测试详情
// @Tags 测试
// @Security BearerAuth
// @Produce json
// @Param id path int true "测试ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/tests/{id} [get]
func (c *TestController) Get(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid test id")
		return
	}

	test, err := c.CatalogService.GetTest(uint(id))
	if err != nil {
		util.FromError(ctx, err)
		return
	}

	claims := util.GetEmployeeFromContext(ctx)
	isAdmin := claims != nil && claims.Role == model.RoleAdmin
	if !test.IsPublished && !isAdmin {
		util.NotFound(ctx)
		return
	}

	questions, err := c.CatalogService.GetQuestions(test.ID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	if isAdmin {
		util.Success(ctx, gin.H{"test": test, "questions": questions})
		return
	}

	views := make([]QuestionView, 0, len(questions))
	for _, q := range questions {
		view := QuestionView{
			Position:     q.Position,
			QuestionType: q.QuestionType,
			Text:         q.Text,
			Points:       q.Points,
		}
		for _, opt := range q.Options {
			view.Options = append(view.Options, OptionView{Position: opt.Position, Text: opt.Text})
		}
		views = append(views, view)
	}

	util.Success(ctx, gin.H{"test": test, "questions": views})
}

// Prerequisites godoc
// @Summary 前置测试链
// @Description 按从根到当前的顺序返回前置链
// @Tags 测试
// @Security BearerAuth
// @Produce json
// @Param id path int true "测试ID"
// @Success 200 {object} util.Response
// @Router /api/tests/{id}/prerequisites [get]
func (c *TestController) Prerequisites(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid test id")
		return
	}

	chain, err := c.CatalogService.GetPrerequisiteChain(uint(id))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, chain)
}

// Create godoc
// @Summary 创建测试
// @Tags 测试管理
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.TestCreateRequest true "测试定义"
// @Success 201 {object} util.Response{data=model.Test}
// @Failure 400 {object} util.Response
// @Router /api/admin/tests [post]
func (c *TestController) Create(ctx *gin.Context) {
	var req service.TestCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	test, err := c.TestAdminService.CreateTest(req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, test)
}

// Update godoc
// @Summary 更新测试（整体替换题目）
// @Tags 测试管理
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "测试ID"
// @Param body body service.TestCreateRequest true "测试定义"
// @Success 200 {object} util.Response{data=model.Test}
// @Router /api/admin/tests/{id} [put]
func (c *TestController) Update(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid test id")
		return
	}

	var req service.TestCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	test, err := c.TestAdminService.UpdateTest(uint(id), req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, test)
}

type PublishRequest struct {
	Published *bool `json:"published" binding:"required"`
}

// Publish godoc
// @Summary 发布/下线测试
// @Tags 测试管理
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "测试ID"
// @Param body body PublishRequest true "发布状态"
// @Success 200 {object} util.Response
// @Router /api/admin/tests/{id}/publish [patch]
func (c *TestController) Publish(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid test id")
		return
	}

	var req PublishRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.TestAdminService.PublishTest(uint(id), *req.Published); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
