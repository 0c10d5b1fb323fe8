package handlers

import (
	"fmt"
	"log"
	"log/slog"
	"net/url"

	"github.com/gofiber/fiber/v2"
	config "github.com/talentwire/socialcast/configs"
	"github.com/talentwire/socialcast/internal/models"
	"github.com/talentwire/socialcast/internal/service"
)

type ConnectHandler struct {
	cs  service.ConnectService
	cfg config.Config
}

func NewConnectHandler(cs service.ConnectService, cfg config.Config) *ConnectHandler {
	return &ConnectHandler{cs: cs, cfg: cfg}
}

func (h *ConnectHandler) AddSocialAccount(c *fiber.Ctx) error {
	provider := c.Params("provider")
	if !models.IsValidProvider(provider) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Unknown provider",
		})
	}

	authURL, err := h.cs.BeginAuthorization(c.Context(), GetTenantID(c), GetUserID(c), provider)
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": service.ErrorCode(err),
		})
	}

	return c.Redirect(authURL)
}

// CallbackHandler always concludes in a redirect back to the dashboard.
// Failure detail stays in the server log; the browser only sees a code.
func (h *ConnectHandler) CallbackHandler(c *fiber.Ctx) error {
	provider := c.Params("provider")
	code := c.Query("code")
	state := c.Query("state")
	providerError := c.Query("error")

	if providerError != "" {
		log.Printf("Provider %s returned oauth error: %s", provider, providerError)
		return h.redirectWithError(c, "access_denied")
	}

	account, err := h.cs.CompleteAuthorization(c.Context(), provider, code, state)
	if err != nil {
		log.Printf("OAuth completion for %s failed: %v", provider, err)
		return h.redirectWithError(c, service.ErrorCode(err))
	}

	redirectURL := fmt.Sprintf("%s/dashboard/accounts?connected=%d", h.cfg.FrontendURL, account.ID)
	return c.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}

func (h *ConnectHandler) redirectWithError(c *fiber.Ctx, code string) error {
	redirectURL := fmt.Sprintf("%s/dashboard/accounts?error=%s", h.cfg.FrontendURL, url.QueryEscape(code))
	return c.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}

func (h *ConnectHandler) ListSocialAccounts(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)

	accountList, err := h.cs.List(c.Context(), tenantID)
	if err != nil {
		log.Println(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch social accounts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(accountList)
}

func (h *ConnectHandler) DisconnectSocialAccount(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	accountID, err := c.ParamsInt("id", 0)
	if err != nil || accountID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid account id",
		})
	}

	if err := h.cs.Disconnect(c.Context(), tenantID, int64(accountID)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to disconnect social account",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
