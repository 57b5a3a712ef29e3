package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repair-desk/internal/api/dto"
	"github.com/spec-kit/repair-desk/internal/domain"
	"github.com/spec-kit/repair-desk/internal/service"
	"github.com/spec-kit/repair-desk/internal/sorting"
	apperrors "github.com/spec-kit/repair-desk/pkg/util/errorutil"
)

// TicketsHandler manages desk ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	equipment, ok := domain.ParseEquipmentType(req.EquipmentType)
	if !ok {
		return apperrors.NewValidationError("unknown equipment type", map[string]any{
			"equipment_type": req.EquipmentType,
			"allowed":        domain.EquipmentTypes,
		})
	}
	received, err := parseDate(req.ReceivedDate)
	if err != nil {
		return apperrors.NewValidationError("received_date must be YYYY-MM-DD", map[string]any{"received_date": req.ReceivedDate})
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), service.TicketCreateInput{
		Client:        req.Client,
		Description:   req.Description,
		Priority:      domain.Priority(req.Priority),
		ReceivedDate:  received,
		EquipmentType: equipment,
		Price:         req.Price,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket, 0)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets := h.service.ListTickets(c.UserContext())
	return c.JSON(fiber.Map{"data": dto.NewTicketList(tickets)})
}

// SortTickets POST /tickets/sort.
func (h *TicketsHandler) SortTickets(c *fiber.Ctx) error {
	var req dto.SortTicketsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	criterion, err := sorting.ParseCriterion(req.Criterion)
	if err != nil {
		return err
	}
	tickets, err := h.service.SortTickets(c.UserContext(), criterion, req.Descending)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": dto.NewTicketList(tickets),
		"meta": fiber.Map{"criterion": criterion, "descending": req.Descending},
	})
}

// FindTicket GET /tickets/search?number=.
func (h *TicketsHandler) FindTicket(c *fiber.Ctx) error {
	found, err := h.service.FindTicket(c.UserContext(), c.Query("number"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FoundTicketResponse{
		Index:  found.Index,
		Ticket: dto.NewTicketResponse(found.Ticket, found.Index+1),
	}})
}

// CompleteTicket POST /tickets/:code/complete.
func (h *TicketsHandler) CompleteTicket(c *fiber.Ctx) error {
	ticket, err := h.service.CompleteTicket(c.UserContext(), normalizeCode(c.Params("code")))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket, 0)})
}

// DeleteTicket DELETE /tickets/:code.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	ticket, err := h.service.DeleteTicket(c.UserContext(), normalizeCode(c.Params("code")))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket, 0)})
}

// CompleteAt POST /tickets/positions/:index/complete.
func (h *TicketsHandler) CompleteAt(c *fiber.Ctx) error {
	index, err := indexParam(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.CompleteAt(c.UserContext(), index)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket, index+1)})
}

// DeleteAt DELETE /tickets/positions/:index.
func (h *TicketsHandler) DeleteAt(c *fiber.Ctx) error {
	index, err := indexParam(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.DeleteAt(c.UserContext(), index)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket, 0)})
}

func indexParam(c *fiber.Ctx) (int, error) {
	index, err := c.ParamsInt("index")
	if err != nil {
		return 0, apperrors.NewInvalidInput("index must be an integer", map[string]any{"index": c.Params("index")})
	}
	return index, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func parseDate(val string) (*time.Time, error) {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil, nil
	}
	t, err := time.Parse(domain.DateLayout, val)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
