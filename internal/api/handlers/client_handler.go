package handlers

import (
	"errors"
	"strconv"

	"ruleflow/internal/dto"
	"ruleflow/internal/models"
	"ruleflow/internal/repository"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ClientHandler struct {
	clientRepo *repository.ClientRepository
	logger     *zap.Logger
}

func NewClientHandler(clientRepo *repository.ClientRepository, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{
		clientRepo: clientRepo,
		logger:     logger,
	}
}

func (h *ClientHandler) Create(c *fiber.Ctx) error {
	var req dto.ClientRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name is required",
		})
	}

	client := &models.Client{Name: req.Name}
	if err := h.clientRepo.Create(c.Context(), client); err != nil {
		h.logger.Error("Failed to create client", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create client",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.ClientResponse{ID: client.ID, Name: client.Name})
}

func (h *ClientHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	client, err := h.clientRepo.GetByID(c.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Client not found",
		})
	}
	if err != nil {
		h.logger.Error("Failed to get client", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get client",
		})
	}

	return c.JSON(dto.ClientResponse{ID: client.ID, Name: client.Name})
}

func (h *ClientHandler) List(c *fiber.Ctx) error {
	clients, err := h.clientRepo.List(c.Context())
	if err != nil {
		h.logger.Error("Failed to list clients", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list clients",
		})
	}

	responses := make([]dto.ClientResponse, len(clients))
	for i, client := range clients {
		responses[i] = dto.ClientResponse{ID: client.ID, Name: client.Name}
	}

	return c.JSON(responses)
}

// Find resolves a client by fuzzy name match, returning the lowest-id
// match plus all candidates.
func (h *ClientHandler) Find(c *fiber.Ctx) error {
	name := c.Query("name")
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Query parameter 'name' is required",
		})
	}

	candidates, err := h.clientRepo.FindByName(c.Context(), name)
	if err != nil {
		h.logger.Error("Failed to find client", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to find client",
		})
	}

	if len(candidates) == 0 {
		return c.JSON(dto.FindClientResponse{
			Found:   false,
			Message: "No client matching '" + name + "'",
		})
	}

	resp := dto.FindClientResponse{
		Found:      true,
		ClientID:   candidates[0].ID,
		ClientName: candidates[0].Name,
	}
	for _, candidate := range candidates {
		resp.Candidates = append(resp.Candidates, dto.ClientResponse{ID: candidate.ID, Name: candidate.Name})
	}

	return c.JSON(resp)
}

func (h *ClientHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req dto.ClientRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name is required",
		})
	}

	client := &models.Client{ID: id, Name: req.Name}
	if err := h.clientRepo.Update(c.Context(), client); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Client not found",
			})
		}
		h.logger.Error("Failed to update client", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update client",
		})
	}

	return c.JSON(dto.ClientResponse{ID: client.ID, Name: client.Name})
}

func (h *ClientHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.clientRepo.Delete(c.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Client not found",
			})
		}
		h.logger.Error("Failed to delete client", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete client",
		})
	}

	return c.JSON(fiber.Map{"detail": "Client deleted"})
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid id",
		})
	}
	return id, nil
}
