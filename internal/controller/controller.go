package controller

import (
	"errors"

	"conversion-analytics/internal/model"
	"conversion-analytics/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

type EventController interface {
	CreateEvent(c *fiber.Ctx) error
	GetMetrics(c *fiber.Ctx) error
	StartSession(c *fiber.Ctx) error
	CurrentSession(c *fiber.Ctx) error
	EndSession(c *fiber.Ctx) error
	Scroll(c *fiber.Ctx) error
}

// eventController exposes the analytics engine over HTTP.
type eventController struct {
	analytics service.AnalyticsService
}

// NewEventController builds an EventController.
func NewEventController(svc service.AnalyticsService) EventController {
	return &eventController{analytics: svc}
}

// CreateEvent accepts a single event. Any parseable body is accepted; the
// engine decides whether to record it.
func (h *eventController) CreateEvent(c *fiber.Ctx) error {
	var req model.EventRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json payload")
	}

	h.analytics.TrackEvent(model.EventType(utils.Trim(req.Type, ' ')), req.Data)

	return c.SendStatus(fiber.StatusAccepted)
}

// GetMetrics returns the full snapshot, or a single window when ?window= is set.
func (h *eventController) GetMetrics(c *fiber.Ctx) error {
	raw := utils.Trim(c.Query("window"), ' ')
	if raw == "" {
		return c.JSON(h.analytics.ConversionMetrics(c.UserContext()))
	}

	window, err := service.ParseWindow(raw)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	resp, svcErr := h.analytics.WindowMetrics(c.UserContext(), window)
	if svcErr != nil {
		var validationErr *service.ValidationError
		if errors.As(svcErr, &validationErr) {
			return fiber.NewError(fiber.StatusBadRequest, svcErr.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to compute metrics")
	}

	return c.JSON(resp)
}

// StartSession opens a new session described by the request.
func (h *eventController) StartSession(c *fiber.Ctx) error {
	var req model.SessionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid json payload")
		}
	}

	// The session keeps the user agent after the request buffer is reused.
	session := h.analytics.StartSessionFrom(model.Environment{
		UserAgent:    utils.CopyString(c.Get(fiber.HeaderUserAgent)),
		ScreenWidth:  req.ScreenWidth,
		ScreenHeight: req.ScreenHeight,
		Path:         req.Path,
	})

	return c.Status(fiber.StatusCreated).JSON(session)
}

func (h *eventController) CurrentSession(c *fiber.Ctx) error {
	session, ok := h.analytics.CurrentSession()
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "no active session")
	}
	return c.JSON(session)
}

// EndSession closes the current session. Closing nothing is not an error.
func (h *eventController) EndSession(c *fiber.Ctx) error {
	h.analytics.EndSession()
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *eventController) Scroll(c *fiber.Ctx) error {
	var req model.ScrollRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json payload")
	}

	h.analytics.Scroll(req.Percent)

	return c.SendStatus(fiber.StatusAccepted)
}
