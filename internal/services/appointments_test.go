package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/unihome/internal/models"
	"github.com/example/unihome/internal/utils"
)

type channelNotifier chan AppointmentEvent

func (n channelNotifier) AppointmentCreated(_ context.Context, event AppointmentEvent) error {
	n <- event
	return nil
}

func validAppointment(propertyID uint) AppointmentInput {
	return AppointmentInput{
		PropertyID:    propertyID,
		Name:          "Li Wei",
		Phone:         "+1 555 0100",
		PreferredDate: "2024-09-01",
		PreferredTime: "14:00",
	}
}

func TestAppointmentValidateNamesFirstMissingField(t *testing.T) {
	in := validAppointment(1)
	in.Phone = ""
	in.PreferredTime = ""

	err := in.Validate()
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "phone", missing.Field)
	assert.Equal(t, "缺少必填字段: phone", err.Error())
}

func TestCreateAppointmentNotifies(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "owner")
	property := createProperty(t, db, owner, models.Property{Name: "A", Location: "多伦多", Price: 700})

	events := make(channelNotifier, 1)
	svc := NewAppointmentService(db, events)

	appointment, err := svc.Create(validAppointment(property.ID))
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentPending, appointment.Status)
	assert.Equal(t, "A", appointment.ToMap()["property_name"])

	select {
	case event := <-events:
		assert.Equal(t, appointment.ID, event.AppointmentID)
		assert.Equal(t, "A", event.PropertyName)
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not dispatched")
	}
}

func TestCreateAppointmentMissingProperty(t *testing.T) {
	svc := NewAppointmentService(newTestDB(t), nil)

	_, err := svc.Create(validAppointment(42))
	assert.ErrorIs(t, err, ErrPropertyNotFound)
}

func TestAppointmentListAndStatus(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "owner")
	property := createProperty(t, db, owner, models.Property{Name: "A", Location: "多伦多", Price: 700})
	svc := NewAppointmentService(db, nil)

	first, err := svc.Create(validAppointment(property.ID))
	require.NoError(t, err)
	_, err = svc.Create(validAppointment(property.ID))
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(first.ID, models.AppointmentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, "已确认", updated.StatusDisplay())

	_, err = svc.UpdateStatus(first.ID, "archived")
	assert.ErrorIs(t, err, ErrInvalidAppointmentStatus)

	_, err = svc.UpdateStatus(999, models.AppointmentCancelled)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	pg := utils.NewPagination("", "", 20, 0)
	pending, total, err := svc.List(models.AppointmentPending, pg)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, pending, 1)

	all, total, err := svc.List("all", pg)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)
}
