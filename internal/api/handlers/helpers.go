package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

func GetTenantID(c *fiber.Ctx) int64 {
	tenantID, _ := strconv.Atoi(c.Locals("tenant_id").(string))
	return int64(tenantID)
}

func GetUserID(c *fiber.Ctx) int64 {
	userID, _ := strconv.Atoi(c.Locals("user_id").(string))
	return int64(userID)
}
