package service

import (
	"context"
	"testing"
	"time"

	"github.com/ds124wfegd/showcaller/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var curtain = time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)

func createShow(t *testing.T, f *fixture, name string) *entity.Show {
	t.Helper()
	show, err := f.services.Shows.CreateShow(context.Background(), &CreateShowRequest{Name: name, StartTime: curtain})
	require.NoError(t, err)
	return show
}

func TestShowService(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	show := createShow(t, f, "  Hamlet ")
	assert.Equal(t, "Hamlet", show.Name)
	assert.Equal(t, 1, f.refresher.calls)

	_, err := f.services.Shows.CreateShow(ctx, &CreateShowRequest{Name: " ", StartTime: curtain})
	assert.ErrorIs(t, err, entity.ErrInvalidInput)

	later := curtain.Add(time.Hour)
	updated, err := f.services.Shows.UpdateShow(ctx, show.ID, &UpdateShowRequest{StartTime: &later})
	require.NoError(t, err)
	assert.Equal(t, later, updated.StartTime)
	assert.Equal(t, "Hamlet", updated.Name)

	_, err = f.services.Shows.UpdateShow(ctx, 999, &UpdateShowRequest{})
	assert.ErrorIs(t, err, entity.ErrShowNotFound)

	require.NoError(t, f.services.Shows.DeleteShow(ctx, show.ID))
	_, err = f.services.Shows.GetShow(ctx, show.ID)
	assert.ErrorIs(t, err, entity.ErrShowNotFound)
}

func TestCallServiceValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	show := createShow(t, f, "Hamlet")
	other := createShow(t, f, "Macbeth")

	band, err := f.services.Groups.CreateGroup(ctx, &CreateGroupRequest{Name: "Band", ShowID: &other.ID})
	require.NoError(t, err)

	tests := []struct {
		name    string
		req     CreateCallRequest
		wantErr error
	}{
		{
			name: "valid",
			req:  CreateCallRequest{ShowID: show.ID, MinutesBefore: 30, GroupIDs: entity.NewGroupIDs(1, 2)},
		},
		{
			name: "upper bound",
			req:  CreateCallRequest{ShowID: show.ID, MinutesBefore: 180},
		},
		{
			name:    "zero minutes",
			req:     CreateCallRequest{ShowID: show.ID, MinutesBefore: 0},
			wantErr: entity.ErrInvalidMinutes,
		},
		{
			name:    "too many minutes",
			req:     CreateCallRequest{ShowID: show.ID, MinutesBefore: 181},
			wantErr: entity.ErrInvalidMinutes,
		},
		{
			name:    "unknown show",
			req:     CreateCallRequest{ShowID: 999, MinutesBefore: 30},
			wantErr: entity.ErrShowNotFound,
		},
		{
			name:    "group of another show",
			req:     CreateCallRequest{ShowID: show.ID, MinutesBefore: 30, GroupIDs: entity.NewGroupIDs(band.ID)},
			wantErr: entity.ErrUnknownGroup,
		},
		{
			name:    "malformed group ids",
			req:     CreateCallRequest{ShowID: show.ID, MinutesBefore: 30, GroupIDs: entity.ParseGroupIDs("cast")},
			wantErr: entity.ErrMalformedGroupIDs,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			call, err := f.services.Calls.CreateCall(ctx, &req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, call)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, call.ID)
		})
	}
}

func TestCallServiceUpdate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	show := createShow(t, f, "Hamlet")

	call, err := f.services.Calls.CreateCall(ctx, &CreateCallRequest{ShowID: show.ID, MinutesBefore: 30})
	require.NoError(t, err)
	assert.False(t, call.SendNotification.Enabled())

	auto := entity.NotifyAuto
	title := "Places"
	updated, err := f.services.Calls.UpdateCall(ctx, call.ID, &UpdateCallRequest{Title: &title, SendNotification: &auto})
	require.NoError(t, err)
	assert.Equal(t, "Places", updated.Title)
	assert.True(t, updated.SendNotification.Enabled())
	assert.Equal(t, 30, updated.MinutesBefore)

	bad := 0
	_, err = f.services.Calls.UpdateCall(ctx, call.ID, &UpdateCallRequest{MinutesBefore: &bad})
	assert.ErrorIs(t, err, entity.ErrInvalidMinutes)

	stored, err := f.services.Calls.GetCall(ctx, call.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, stored.MinutesBefore, "a rejected update leaves the call untouched")

	calls, err := f.services.Calls.GetShowCalls(ctx, show.ID)
	require.NoError(t, err)
	assert.Len(t, calls, 1)

	require.NoError(t, f.services.Calls.DeleteCall(ctx, call.ID))
	assert.ErrorIs(t, f.services.Calls.DeleteCall(ctx, call.ID), entity.ErrCallNotFound)
}

func TestGroupService(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	show := createShow(t, f, "Hamlet")

	dancers, err := f.services.Groups.CreateGroup(ctx, &CreateGroupRequest{Name: "Dancers", ShowID: &show.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, dancers.IsCustom)

	missing := int64(999)
	_, err = f.services.Groups.CreateGroup(ctx, &CreateGroupRequest{Name: "Ghosts", ShowID: &missing})
	assert.ErrorIs(t, err, entity.ErrShowNotFound)

	groups, err := f.services.Groups.GetShowGroups(ctx, show.ID)
	require.NoError(t, err)
	assert.Len(t, groups, len(entity.DefaultGroupNames)+1)

	assert.ErrorIs(t, f.services.Groups.DeleteGroup(ctx, 1), entity.ErrDefaultGroupLocked)
	require.NoError(t, f.services.Groups.DeleteGroup(ctx, dancers.ID))
	assert.ErrorIs(t, f.services.Groups.DeleteGroup(ctx, dancers.ID), entity.ErrGroupNotFound)
}

func TestRefreshFailureDoesNotFailWrite(t *testing.T) {
	f := newFixture()
	f.refresher.err = errBoom

	show := createShow(t, f, "Hamlet")
	assert.NotZero(t, show.ID)
}
