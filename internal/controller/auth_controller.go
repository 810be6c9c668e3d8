package controller

import (
	"errors"

	"gamify_backend/internal/model"
	"gamify_backend/internal/service"
	"gamify_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService     *service.AuthService
	EmployeeService *service.EmployeeService
}

func NewAuthController(authService *service.AuthService, employeeService *service.EmployeeService) *AuthController {
	return &AuthController{
		AuthService:     authService,
		EmployeeService: employeeService,
	}
}

// RegisterRequest defines model for registration
// swagger:model RegisterRequest
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// Register godoc
// @Summary 注册新员工
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body RegisterRequest true "员工注册信息"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	employee := &model.Employee{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     model.RoleEmployee,
	}

	if err := c.AuthService.Register(employee); err != nil {
		if errors.Is(err, util.ErrEmailRegistered) {
			util.Error(ctx, 409, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, gin.H{"id": employee.ID})
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary 登录
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "登录信息"
// @Success 200 {object} util.Response
// @Failure 401 {object} util.Response
// @Router /api/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, err := c.AuthService.Login(req.Email, req.Password)
	if err != nil {
		util.Error(ctx, 401, "invalid credentials")
		return
	}

	util.Success(ctx, gin.H{"token": token})
}

// Me godoc
// @Summary 当前员工信息
// @Tags 认证
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=model.Employee}
// @Router /api/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	claims := util.GetEmployeeFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	employee, err := c.EmployeeService.GetEmployee(claims.EmployeeID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, employee)
}
