package middleware

import (
	"strings"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"

	"github.com/lac-hong-legacy/learnhub/shared"
)

// RoleHeader carries the role the authentication collaborator resolved for the caller.
const RoleHeader = "X-User-Role"

// RoleMiddleware exposes the caller's role to handlers. Authentication itself happens upstream.
type RoleMiddleware struct {
	context.DefaultService
}

const ROLE_MIDDLEWARE_SVC = "role"

func NewRoleMiddleware() *RoleMiddleware {
	return &RoleMiddleware{}
}

func (svc RoleMiddleware) Id() string {
	return ROLE_MIDDLEWARE_SVC
}

func (svc *RoleMiddleware) Start() error {
	return nil
}

// ResolveRole stores the caller's role in the request locals. Unknown values fall back to learner.
func (svc *RoleMiddleware) ResolveRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := shared.RoleLearner
		if strings.EqualFold(strings.TrimSpace(c.Get(RoleHeader)), shared.RoleAdmin) {
			role = shared.RoleAdmin
		}
		c.Locals(shared.UserRole, role)
		return c.Next()
	}
}

func (svc *RoleMiddleware) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !IsAdmin(c) {
			return shared.ResponseForbidden(c)
		}
		return c.Next()
	}
}

func IsAdmin(c *fiber.Ctx) bool {
	role, _ := c.Locals(shared.UserRole).(string)
	return role == shared.RoleAdmin
}
