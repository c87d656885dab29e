package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/example/unihome/internal/models"
	"github.com/example/unihome/internal/utils"
)

// ErrInvalidAppointmentStatus rejects unknown status values.
var ErrInvalidAppointmentStatus = errors.New("无效的状态值")

// MissingFieldError names the first required appointment field left empty.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("缺少必填字段: %s", e.Field)
}

// AppointmentInput is a viewing request from the detail page.
type AppointmentInput struct {
	PropertyID    uint   `json:"property_id"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	PreferredDate string `json:"preferred_date"`
	PreferredTime string `json:"preferred_time"`
	Message       string `json:"message"`
}

// Validate checks required fields in form order.
func (in AppointmentInput) Validate() error {
	checks := []struct {
		field   string
		present bool
	}{
		{"property_id", in.PropertyID != 0},
		{"name", in.Name != ""},
		{"phone", in.Phone != ""},
		{"preferred_date", in.PreferredDate != ""},
		{"preferred_time", in.PreferredTime != ""},
	}
	for _, c := range checks {
		if !c.present {
			return &MissingFieldError{Field: c.field}
		}
	}
	return nil
}

// AppointmentService records viewing requests.
type AppointmentService struct {
	db       *gorm.DB
	notifier Notifier
}

// NewAppointmentService constructs AppointmentService. notifier may be nil.
func NewAppointmentService(db *gorm.DB, notifier Notifier) *AppointmentService {
	return &AppointmentService{db: db, notifier: notifier}
}

// Create validates and stores a pending appointment, then notifies in the background.
func (s *AppointmentService) Create(in AppointmentInput) (*models.Appointment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var property models.Property
	if err := s.db.First(&property, in.PropertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}

	appointment := models.Appointment{
		PropertyID:    in.PropertyID,
		Name:          in.Name,
		Phone:         in.Phone,
		Email:         in.Email,
		PreferredDate: in.PreferredDate,
		PreferredTime: in.PreferredTime,
		Message:       in.Message,
		Status:        models.AppointmentPending,
	}
	if err := s.db.Create(&appointment).Error; err != nil {
		return nil, err
	}
	appointment.Property = &property

	Dispatch(s.notifier, AppointmentEvent{
		AppointmentID: appointment.ID,
		PropertyID:    property.ID,
		PropertyName:  property.Name,
		Location:      property.Location,
		Price:         property.Price,
		Currency:      property.Currency,
		Name:          appointment.Name,
		Phone:         appointment.Phone,
		Email:         appointment.Email,
		PreferredDate: appointment.PreferredDate,
		PreferredTime: appointment.PreferredTime,
		Message:       appointment.Message,
	})

	return &appointment, nil
}

// List returns appointments newest first, optionally filtered by status.
func (s *AppointmentService) List(status string, pg utils.Pagination) ([]models.Appointment, int64, error) {
	scoped := func() *gorm.DB {
		query := s.db.Model(&models.Appointment{})
		if status != "" && status != "all" {
			query = query.Where("status = ?", status)
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var appointments []models.Appointment
	err := scoped().Preload("Property").
		Order("created_at desc, id desc").
		Limit(pg.PerPage).
		Offset(pg.Offset).
		Find(&appointments).Error
	return appointments, total, err
}

// UpdateStatus sets a known status on the appointment.
func (s *AppointmentService) UpdateStatus(id uint, status string) (*models.Appointment, error) {
	if !models.ValidAppointmentStatus(status) {
		return nil, ErrInvalidAppointmentStatus
	}

	var appointment models.Appointment
	if err := s.db.Preload("Property").First(&appointment, id).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&appointment).Update("status", status).Error; err != nil {
		return nil, err
	}
	appointment.Status = status
	return &appointment, nil
}
