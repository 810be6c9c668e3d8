package middleware

import (
	"gamify_backend/internal/model"
	"gamify_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// Capability 静态的(资源,动作)对，路由注册时绑定一次
type Capability struct {
	Resource string
	Action   string
}

// 角色能力表在启动时固定；admin放行一切
var roleCapabilities = map[model.EmployeeRole]map[Capability]bool{
	model.RoleEmployee:  employeeCapabilities(),
	model.RoleModerator: moderatorCapabilities(),
}

func employeeCapabilities() map[Capability]bool {
	return map[Capability]bool{
		{Resource: "tests", Action: "read"}:        true,
		{Resource: "attempts", Action: "read"}:     true,
		{Resource: "attempts", Action: "write"}:    true,
		{Resource: "employees", Action: "read"}:    true,
		{Resource: "employees", Action: "write"}:   true,
		{Resource: "achievements", Action: "read"}: true,
	}
}

// 审核员在普通员工能力之上追加评审能力
func moderatorCapabilities() map[Capability]bool {
	caps := employeeCapabilities()
	caps[Capability{Resource: "attempts", Action: "moderate"}] = true
	return caps
}

// RequireCapability 能力检查中间件
func RequireCapability(resource, action string) gin.HandlerFunc {
	capability := Capability{Resource: resource, Action: action}
	return func(c *gin.Context) {
		claims := util.GetEmployeeFromContext(c)
		if claims == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		if claims.Role == model.RoleAdmin {
			c.Next()
			return
		}
		if !roleCapabilities[claims.Role][capability] {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
