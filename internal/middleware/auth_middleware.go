package middleware

import (
	"strings"

	"go-inventory-bom/internal/appctx"
	"go-inventory-bom/internal/repository"
	"go-inventory-bom/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth is middleware that validates the JWT token and puts the user and company into
// both Fiber locals and the request context.
func RequireAuth(userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		claims, err := jwt.ValidateToken(parts[1])
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		// Check strict session against DB
		user, err := userRepo.FindByID(claims.UserID)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "User not found"})
		}
		if user.TokenVersion != claims.TokenVersion {
			return c.Status(401).JSON(fiber.Map{"error": "Session expired (logged in on another device)"})
		}
		if user.CompanyID != claims.CompanyID {
			return c.Status(401).JSON(fiber.Map{"error": "Company mismatch"})
		}

		c.Locals("user_id", claims.UserID.String())
		c.Locals("company_id", claims.CompanyID.String())
		c.Locals("user_email", claims.Email)
		c.Locals("user_name", claims.Name)
		c.Locals("user_privileges", claims.Privileges)

		ctx := appctx.WithTenant(c.UserContext(), claims.CompanyID, claims.UserID.String())
		ctx = appctx.Set(ctx, appctx.ContextKeyUserName, claims.Name)
		ctx = appctx.Set(ctx, appctx.ContextKeyUserEmail, claims.Email)
		ctx = appctx.Set(ctx, appctx.ContextKeyRoles, []string{claims.RoleCode})
		ctx = appctx.Set(ctx, appctx.ContextKeyPrivileges, claims.Privileges)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// HasPrivilege reports whether the authenticated user holds code.
func HasPrivilege(c *fiber.Ctx, code string) bool {
	privileges, ok := c.Locals("user_privileges").([]string)
	if !ok {
		return false
	}
	for _, p := range privileges {
		if p == code {
			return true
		}
	}
	return false
}

// RequirePrivilege checks if the authenticated user has the required privilege
func RequirePrivilege(requiredPrivilege string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := c.Locals("user_privileges").([]string); !ok {
			return c.Status(403).JSON(fiber.Map{"error": "No privileges found"})
		}
		if HasPrivilege(c, requiredPrivilege) {
			return c.Next()
		}
		return c.Status(403).JSON(fiber.Map{
			"error": "Forbidden: requires '" + requiredPrivilege + "' privilege",
		})
	}
}
