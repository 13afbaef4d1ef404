package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/hmnpros/gateway/core"
	mock_appointment "github.com/hmnpros/gateway/x/appointment/mock"
	"github.com/hmnpros/gateway/x/webhook"
)

func TestHandleUpsert(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	start := time.Date(2024, 6, 1, 14, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	repo := mock_appointment.NewMockRepository(ctrl)
	repo.EXPECT().Upsert(gomock.Any(), core.Appointment{
		ID:         "apt1",
		LocationID: "loc1",
		ContactID:  "c1",
		CalendarID: "cal1",
		Title:      "Loan signing",
		Status:     "confirmed",
		StartTime:  start,
		EndTime:    end,
		Address:    "123 Main St",
	}).Return(nil)

	service := NewService(repo)

	result := service.HandleUpsert(context.Background(), core.NormalizedEvent{
		Kind:      core.EventAppointmentCreate,
		SubjectID: "apt1",
		Appointment: &core.AppointmentPayload{
			ID:         "apt1",
			LocationID: "loc1",
			ContactID:  "c1",
			CalendarID: "cal1",
			Title:      "Loan signing",
			Status:     "confirmed",
			StartTime:  start,
			EndTime:    end,
			Address:    "123 Main St",
		},
	})

	assert.True(t, result.Success)
	assert.Equal(t, "apt1", result.SubjectID)
	assert.Equal(t, "upserted", result.Action)
}

func TestStatusUpdateDispatchesToUpsert(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_appointment.NewMockRepository(ctrl)
	repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, appointment core.Appointment) error {
			assert.Equal(t, "apt1", appointment.ID)
			assert.Equal(t, "cancelled", appointment.Status)
			return nil
		})

	dispatcher := webhook.NewDispatcher()
	RegisterHandlers(dispatcher, NewService(repo))

	result := dispatcher.Dispatch(context.Background(), core.NormalizedEvent{
		Kind:      core.EventAppointmentStatusUpdate,
		SubjectID: "apt1",
		Appointment: &core.AppointmentPayload{
			ID:     "apt1",
			Status: "cancelled",
		},
	})

	assert.True(t, result.Success)
	assert.Equal(t, "upserted", result.Action)
}

func TestHandleUpsertMissingPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := NewService(mock_appointment.NewMockRepository(ctrl))

	result := service.HandleUpsert(context.Background(), core.NormalizedEvent{
		Kind: core.EventAppointmentCreate,
	})

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestHandleDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_appointment.NewMockRepository(ctrl)
	repo.EXPECT().Delete(gomock.Any(), "apt1").Return(nil)

	service := NewService(repo)

	result := service.HandleDelete(context.Background(), core.NormalizedEvent{
		Kind:      core.EventAppointmentDelete,
		SubjectID: "apt1",
	})

	assert.True(t, result.Success)
	assert.Equal(t, "deleted", result.Action)
}

func TestHandleDeleteRepositoryFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_appointment.NewMockRepository(ctrl)
	repo.EXPECT().Delete(gomock.Any(), "apt1").Return(errors.New("db down"))

	service := NewService(repo)

	result := service.HandleDelete(context.Background(), core.NormalizedEvent{
		Kind:      core.EventAppointmentDelete,
		SubjectID: "apt1",
	})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "db down")
}

func TestGetUpcoming(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_appointment.NewMockRepository(ctrl)
	repo.EXPECT().GetUpcoming(gomock.Any(), "loc1", 10).Return([]core.Appointment{
		{ID: "apt1"},
		{ID: "apt2"},
	}, nil)

	service := NewService(repo)

	appointments, err := service.GetUpcoming(context.Background(), "loc1", 10)
	assert.NoError(t, err)
	assert.Len(t, appointments, 2)
}
