package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/unihome/internal/services"
	"github.com/example/unihome/internal/utils"
)

// AppointmentHandler handles viewing requests.
type AppointmentHandler struct {
	appointments *services.AppointmentService
}

// NewAppointmentHandler constructs AppointmentHandler.
func NewAppointmentHandler(appointments *services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments}
}

// appointmentRequest accepts property_id as a number or a numeric string.
type appointmentRequest struct {
	services.AppointmentInput
	PropertyID utils.FlexUint `json:"property_id"`
}

type appointmentStatusRequest struct {
	Status *string `json:"status"`
}

// Create records a pending appointment for a listing.
func (h *AppointmentHandler) Create(c *fiber.Ctx) error {
	var req appointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	input := req.AppointmentInput
	input.PropertyID = uint(req.PropertyID)

	appointment, err := h.appointments.Create(input)
	if err != nil {
		var missing *services.MissingFieldError
		switch {
		case errors.As(err, &missing):
			return fiber.NewError(fiber.StatusBadRequest, missing.Error())
		case errors.Is(err, services.ErrPropertyNotFound):
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "预约提交成功，我们会尽快联系您",
		"data":    appointment.ToMap(),
	})
}

// List returns appointments for the admin console.
func (h *AppointmentHandler) List(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c, 20, 0)

	appointments, total, err := h.appointments.List(c.Query("status"), pg)
	if err != nil {
		return err
	}

	data := make([]map[string]interface{}, 0, len(appointments))
	for i := range appointments {
		data = append(data, appointments[i].ToMap())
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       data,
		"pagination": pg.Meta(total),
	})
}

// UpdateStatus changes an appointment's status.
func (h *AppointmentHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req appointmentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Status == nil {
		return fiber.NewError(fiber.StatusBadRequest, "缺少状态字段")
	}

	appointment, err := h.appointments.UpdateStatus(id, *req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAppointmentStatus):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case errors.Is(err, gorm.ErrRecordNotFound):
			return fiber.NewError(fiber.StatusNotFound, "预约不存在")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "预约状态更新成功",
		"data":    appointment.ToMap(),
	})
}
