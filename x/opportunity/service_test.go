package opportunity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/hmnpros/gateway/core"
	mock_opportunity "github.com/hmnpros/gateway/x/opportunity/mock"
)

func TestHandleUpsert(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_opportunity.NewMockRepository(ctrl)
	repo.EXPECT().Upsert(gomock.Any(), core.Opportunity{
		ID:            "opp1",
		LocationID:    "loc1",
		ContactID:     "c1",
		Name:          "Mobile signing",
		PipelineID:    "pipe1",
		StageID:       "stage1",
		Status:        "open",
		MonetaryValue: 15000,
	}).Return(nil)

	service := NewService(repo)

	result := service.HandleUpsert(context.Background(), core.NormalizedEvent{
		Kind:      core.EventOpportunityCreate,
		SubjectID: "opp1",
		Opportunity: &core.OpportunityPayload{
			ID:            "opp1",
			LocationID:    "loc1",
			ContactID:     "c1",
			Name:          "Mobile signing",
			PipelineID:    "pipe1",
			StageID:       "stage1",
			Status:        "open",
			MonetaryValue: 15000,
		},
	})

	assert.True(t, result.Success)
	assert.Equal(t, "opp1", result.SubjectID)
	assert.Equal(t, "upserted", result.Action)
}

func TestHandleUpsertMissingPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := NewService(mock_opportunity.NewMockRepository(ctrl))

	result := service.HandleUpsert(context.Background(), core.NormalizedEvent{
		Kind: core.EventOpportunityCreate,
	})

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestHandleDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_opportunity.NewMockRepository(ctrl)
	repo.EXPECT().Delete(gomock.Any(), "opp1").Return(nil)

	service := NewService(repo)

	result := service.HandleDelete(context.Background(), core.NormalizedEvent{
		Kind:      core.EventOpportunityDelete,
		SubjectID: "opp1",
	})

	assert.True(t, result.Success)
	assert.Equal(t, "deleted", result.Action)
}

func TestHandleStageUpdate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_opportunity.NewMockRepository(ctrl)
	repo.EXPECT().UpdateStage(gomock.Any(), "opp1", "stage2").Return(nil)

	service := NewService(repo)

	result := service.HandleStageUpdate(context.Background(), core.NormalizedEvent{
		Kind:      core.EventOpportunityStageUpdate,
		SubjectID: "opp1",
		Opportunity: &core.OpportunityPayload{
			ID:      "opp1",
			StageID: "stage2",
		},
	})

	assert.True(t, result.Success)
	assert.Equal(t, "stage_updated", result.Action)
}

func TestHandleStatusUpdateRepositoryFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_opportunity.NewMockRepository(ctrl)
	repo.EXPECT().UpdateStatus(gomock.Any(), "opp1", "won").Return(errors.New("db down"))

	service := NewService(repo)

	result := service.HandleStatusUpdate(context.Background(), core.NormalizedEvent{
		Kind:      core.EventOpportunityStatusUpdate,
		SubjectID: "opp1",
		Opportunity: &core.OpportunityPayload{
			ID:     "opp1",
			Status: "won",
		},
	})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "db down")
}

func TestHandleMonetaryValueUpdate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_opportunity.NewMockRepository(ctrl)
	repo.EXPECT().UpdateMonetaryValue(gomock.Any(), "opp1", int64(25000)).Return(nil)

	service := NewService(repo)

	result := service.HandleMonetaryValueUpdate(context.Background(), core.NormalizedEvent{
		Kind:      core.EventOpportunityMonetaryValUpdate,
		SubjectID: "opp1",
		Opportunity: &core.OpportunityPayload{
			ID:            "opp1",
			MonetaryValue: 25000,
		},
	})

	assert.True(t, result.Success)
	assert.Equal(t, "value_updated", result.Action)
}
