package models

// Appointment statuses.
const (
	AppointmentPending   = "pending"
	AppointmentConfirmed = "confirmed"
	AppointmentCancelled = "cancelled"
	AppointmentCompleted = "completed"
)

var appointmentStatusLabels = map[string]string{
	AppointmentPending:   "待确认",
	AppointmentConfirmed: "已确认",
	AppointmentCancelled: "已取消",
	AppointmentCompleted: "已完成",
}

// Appointment is a viewing request for a property.
type Appointment struct {
	BaseModel
	PropertyID    uint      `gorm:"not null;index" json:"property_id"`
	Property      *Property `json:"-"`
	Name          string    `gorm:"size:100;not null" json:"name"`
	Phone         string    `gorm:"size:20;not null" json:"phone"`
	Email         string    `gorm:"size:120" json:"email"`
	PreferredDate string    `gorm:"size:50;not null" json:"preferred_date"`
	PreferredTime string    `gorm:"size:50;not null" json:"preferred_time"`
	Message       string    `gorm:"type:text" json:"message"`
	Status        string    `gorm:"size:20;default:pending;index" json:"status"`
}

// ValidAppointmentStatus reports whether s is one of the known statuses.
func ValidAppointmentStatus(s string) bool {
	_, ok := appointmentStatusLabels[s]
	return ok
}

// StatusDisplay returns the human label for the status.
func (a *Appointment) StatusDisplay() string {
	if label, ok := appointmentStatusLabels[a.Status]; ok {
		return label
	}
	return a.Status
}

// ToMap renders the appointment with its property summary.
func (a *Appointment) ToMap() map[string]interface{} {
	var propertyName, propertyLocation interface{}
	if a.Property != nil {
		propertyName = a.Property.Name
		propertyLocation = a.Property.Location
	}
	return map[string]interface{}{
		"id":                a.ID,
		"property_id":       a.PropertyID,
		"property_name":     propertyName,
		"property_location": propertyLocation,
		"name":              a.Name,
		"phone":             a.Phone,
		"email":             a.Email,
		"preferred_date":    a.PreferredDate,
		"preferred_time":    a.PreferredTime,
		"message":           a.Message,
		"status":            a.Status,
		"status_display":    a.StatusDisplay(),
		"created_at":        a.CreatedAt,
		"updated_at":        a.UpdatedAt,
	}
}
