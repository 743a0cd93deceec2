package models_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
)

func validRequest() *models.SaveRequest {
	return &models.SaveRequest{
		ParentType: models.ParentTypeTask,
		Title:      "Call mom",
	}
}

func assertBadRequest(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, httperror.IsHTTPError(err))
	assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
}

func TestSaveRequest_Validate_AcceptsMinimalRequest(t *testing.T) {
	require.NoError(t, validRequest().Validate())
}

func TestSaveRequest_Validate_RejectsUnknownParentType(t *testing.T) {
	req := validRequest()
	req.ParentType = "reminder"
	assertBadRequest(t, req.Validate())
}

func TestSaveRequest_Validate_RejectsBlankTitle(t *testing.T) {
	req := validRequest()
	req.Title = "   "
	assertBadRequest(t, req.Validate())
}

func TestSaveRequest_Validate_RequiresGoalIDWithGoalFlag(t *testing.T) {
	req := validRequest()
	req.IsTwelveWeekGoal = true
	assertBadRequest(t, req.Validate())

	goalID := uuid.New()
	req.GoalID = &goalID
	require.NoError(t, req.Validate())
}

func TestSaveRequest_Validate_RejectsEventEndingBeforeItStarts(t *testing.T) {
	starts := time.Now()
	ends := starts.Add(-time.Hour)

	req := validRequest()
	req.ParentType = models.ParentTypeEvent
	req.StartsAt = &starts
	req.EndsAt = &ends
	assertBadRequest(t, req.Validate())
}

func TestSaveRequest_Item_MintsIDOnCreateAndKeepsItOnEdit(t *testing.T) {
	userID := uuid.New()

	created := validRequest().Item(userID)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, userID, created.UserID)

	existing := uuid.New()
	req := validRequest()
	req.ID = &existing
	assert.Equal(t, existing, req.Item(userID).ID)
}

func TestSaveRequest_Item_MapsSchedulingPerType(t *testing.T) {
	due := time.Now().Add(24 * time.Hour)
	starts := time.Now()
	ends := starts.Add(time.Hour)

	task := validRequest()
	task.DueAt = &due
	task.StartsAt = &starts
	item := task.Item(uuid.New())
	assert.Equal(t, &due, item.DueAt)
	assert.Nil(t, item.StartsAt, "task must not carry event scheduling")

	event := validRequest()
	event.ParentType = models.ParentTypeEvent
	event.StartsAt = &starts
	event.EndsAt = &ends
	event.AllDay = true
	item = event.Item(uuid.New())
	assert.Equal(t, &starts, item.StartsAt)
	assert.Equal(t, &ends, item.EndsAt)
	assert.True(t, item.AllDay)
	assert.Nil(t, item.DueAt)
}

func TestSaveRequest_Item_DropsRecurrenceForDepositIdeas(t *testing.T) {
	rule := map[string]any{"freq": "weekly"}

	task := validRequest()
	task.Recurrence = rule
	assert.Equal(t, rule, task.Item(uuid.New()).Recurrence.GetValue())

	req := validRequest()
	req.ParentType = models.ParentTypeDepositIdea
	req.Recurrence = rule
	assert.Nil(t, req.Item(uuid.New()).Recurrence.GetValue())
}
