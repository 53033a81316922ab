package handlers

import (
	"errors"

	"ruleflow/internal/repository"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AccountHandler serves read-only views over the ledger. Writes happen
// only through the commit path.
type AccountHandler struct {
	accountRepo *repository.AccountRepository
	logger      *zap.Logger
}

func NewAccountHandler(accountRepo *repository.AccountRepository, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		accountRepo: accountRepo,
		logger:      logger,
	}
}

func (h *AccountHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	accounts, err := h.accountRepo.List(c.Context(), limit, offset)
	if err != nil {
		h.logger.Error("Failed to list accounts", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list accounts",
		})
	}

	return c.JSON(fiber.Map{
		"count":    len(accounts),
		"accounts": accounts,
	})
}

func (h *AccountHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	account, err := h.accountRepo.GetByID(c.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Account not found",
		})
	}
	if err != nil {
		h.logger.Error("Failed to get account", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get account",
		})
	}

	return c.JSON(account)
}

func (h *AccountHandler) ListTransactions(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	transactions, err := h.accountRepo.ListTransactionsByAccount(c.Context(), id, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list transactions", zap.Int64("account_id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list transactions",
		})
	}

	return c.JSON(fiber.Map{
		"account_id":   id,
		"count":        len(transactions),
		"transactions": transactions,
	})
}
