package service_test

import (
	"context"
	"testing"
	"time"
	"timeRegistration/internal/models"
	repo "timeRegistration/internal/repository"
	"timeRegistration/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type optOutFixture struct {
	optOuts *MockOptOutRepository
	users   *MockUserRepository
	service *service.OptOutService
}

func newOptOutFixture() *optOutFixture {
	f := &optOutFixture{
		optOuts: new(MockOptOutRepository),
		users:   new(MockUserRepository),
	}
	f.service = service.NewOptOutService(f.optOuts, service.NewUserService(f.users),
		service.WithClock(func() time.Time { return fixedNow }))
	return f
}

func ptr(t time.Time) *time.Time { return &t }

func TestOptOutService_UserHasActiveOptOut(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		period  models.Period
		nothing bool
		want    bool
	}{
		{name: "no opt-outs", nothing: true, want: false},
		{name: "open-ended started yesterday", period: models.Period{StartDate: fixedNow.AddDate(0, 0, -1)}, want: true},
		{name: "bounded around now", period: models.Period{StartDate: fixedNow.Add(-time.Hour), EndDate: ptr(fixedNow.Add(time.Hour))}, want: true},
		{name: "open-ended starting tomorrow", period: models.Period{StartDate: fixedNow.AddDate(0, 0, 1)}, want: false},
		{name: "ended yesterday", period: models.Period{StartDate: fixedNow.AddDate(0, 0, -3), EndDate: ptr(fixedNow.AddDate(0, 0, -1))}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOptOutFixture()
			user := newUser(models.RoleEmployee)
			f.users.On("GetUserByID", ctx, user.ID).Return(user, nil)

			optOuts := []*models.OptOut{}
			if !tt.nothing {
				optOuts = append(optOuts, &models.OptOut{ID: uuid.New(), UserID: user.ID, Period: tt.period})
			}
			f.optOuts.On("ListOptOuts", ctx, user.ID).Return(optOuts, nil)

			active, err := f.service.UserHasActiveOptOut(ctx, user.ID)

			require.NoError(t, err)
			assert.Equal(t, tt.want, active)
		})
	}
}

func TestOptOutService_UserHasActiveOptOut_UnknownUser(t *testing.T) {
	ctx := context.Background()
	f := newOptOutFixture()
	id := uuid.New()
	f.users.On("GetUserByID", ctx, id).Return(nil, repo.ErrNotFound)

	_, err := f.service.UserHasActiveOptOut(ctx, id)

	assert.Equal(t, service.CodeNotFound, service.CodeOf(err))
}

func TestOptOutService_OptOutStartsBefore(t *testing.T) {
	ctx := context.Background()
	f := newOptOutFixture()
	optOut := &models.OptOut{ID: uuid.New(), UserID: uuid.New(), Period: models.Period{StartDate: fixedNow}}
	f.optOuts.On("GetOptOut", ctx, optOut.ID).Return(optOut, nil)

	before, err := f.service.OptOutStartsBefore(ctx, optOut.ID, fixedNow.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, before)

	// равные моменты - не "раньше"
	before, err = f.service.OptOutStartsBefore(ctx, optOut.ID, fixedNow)
	require.NoError(t, err)
	assert.False(t, before)
}

func TestOptOutService_CreateOptOut(t *testing.T) {
	ctx := context.Background()
	employee := newUser(models.RoleEmployee)

	t.Run("start defaults to now", func(t *testing.T) {
		f := newOptOutFixture()
		f.users.On("GetUserByID", ctx, employee.ID).Return(employee, nil)
		f.optOuts.On("ListOptOuts", ctx, employee.ID).Return([]*models.OptOut{}, nil)
		f.optOuts.On("CreateOptOut", ctx, mock.Anything).Return(nil)

		optOut, err := f.service.CreateOptOut(ctx, employee, employee.ID, nil, nil)

		require.NoError(t, err)
		assert.True(t, optOut.Period.StartDate.Equal(fixedNow))
		assert.Nil(t, optOut.Period.EndDate)
		assert.Equal(t, employee.ID, optOut.UserID)
	})

	t.Run("end before start", func(t *testing.T) {
		f := newOptOutFixture()
		f.users.On("GetUserByID", ctx, employee.ID).Return(employee, nil)
		f.optOuts.On("ListOptOuts", ctx, employee.ID).Return([]*models.OptOut{}, nil)

		_, err := f.service.CreateOptOut(ctx, employee, employee.ID, ptr(fixedNow.AddDate(0, 0, 2)), ptr(fixedNow.AddDate(0, 0, 1)))

		assert.Equal(t, service.CodeValidation, service.CodeOf(err))
		f.optOuts.AssertNotCalled(t, "CreateOptOut", mock.Anything, mock.Anything)
	})

	t.Run("already active", func(t *testing.T) {
		f := newOptOutFixture()
		f.users.On("GetUserByID", ctx, employee.ID).Return(employee, nil)
		f.optOuts.On("ListOptOuts", ctx, employee.ID).Return([]*models.OptOut{
			{ID: uuid.New(), UserID: employee.ID, Period: models.Period{StartDate: fixedNow.AddDate(0, 0, -1)}},
		}, nil)

		_, err := f.service.CreateOptOut(ctx, employee, employee.ID, nil, nil)

		assert.Equal(t, service.CodeConflict, service.CodeOf(err))
	})

	t.Run("for another user needs manager", func(t *testing.T) {
		f := newOptOutFixture()

		_, err := f.service.CreateOptOut(ctx, employee, uuid.New(), nil, nil)

		assert.Equal(t, service.CodeForbidden, service.CodeOf(err))
	})
}

func TestOptOutService_UpdateOptOut(t *testing.T) {
	ctx := context.Background()
	employee := newUser(models.RoleEmployee)
	start := fixedNow.AddDate(0, 0, 1)

	newOptOut := func(owner uuid.UUID) *models.OptOut {
		return &models.OptOut{ID: uuid.New(), UserID: owner, Period: models.Period{StartDate: start}}
	}

	t.Run("only end after start", func(t *testing.T) {
		f := newOptOutFixture()
		optOut := newOptOut(employee.ID)
		f.optOuts.On("GetOptOut", ctx, optOut.ID).Return(optOut, nil)
		f.optOuts.On("UpdateOptOut", ctx, mock.Anything).Return(nil)

		end := start.AddDate(0, 0, 5)
		updated, err := f.service.UpdateOptOut(ctx, employee, employee.ID, optOut.ID, nil, &end)

		require.NoError(t, err)
		assert.True(t, updated.Period.StartDate.Equal(start))
		assert.True(t, updated.Period.EndDate.Equal(end))
	})

	t.Run("only end before start", func(t *testing.T) {
		f := newOptOutFixture()
		optOut := newOptOut(employee.ID)
		f.optOuts.On("GetOptOut", ctx, optOut.ID).Return(optOut, nil)

		end := start.Add(-time.Hour)
		_, err := f.service.UpdateOptOut(ctx, employee, employee.ID, optOut.ID, nil, &end)

		assert.Equal(t, service.CodeValidation, service.CodeOf(err))
		f.optOuts.AssertNotCalled(t, "UpdateOptOut", mock.Anything, mock.Anything)
	})

	t.Run("full period replaces", func(t *testing.T) {
		f := newOptOutFixture()
		optOut := newOptOut(employee.ID)
		f.optOuts.On("GetOptOut", ctx, optOut.ID).Return(optOut, nil)
		f.optOuts.On("UpdateOptOut", ctx, mock.Anything).Return(nil)

		newStart := start.AddDate(0, 0, 3)
		updated, err := f.service.UpdateOptOut(ctx, employee, employee.ID, optOut.ID, &newStart, nil)

		require.NoError(t, err)
		assert.True(t, updated.Period.StartDate.Equal(newStart))
		assert.Nil(t, updated.Period.EndDate)
	})

	t.Run("nothing to update", func(t *testing.T) {
		f := newOptOutFixture()
		optOut := newOptOut(employee.ID)
		f.optOuts.On("GetOptOut", ctx, optOut.ID).Return(optOut, nil)

		_, err := f.service.UpdateOptOut(ctx, employee, employee.ID, optOut.ID, nil, nil)

		assert.Equal(t, service.CodeValidation, service.CodeOf(err))
	})

	t.Run("opt-out of another user", func(t *testing.T) {
		f := newOptOutFixture()
		manager := newUser(models.RoleManager)
		optOut := newOptOut(uuid.New())
		f.optOuts.On("GetOptOut", ctx, optOut.ID).Return(optOut, nil)

		end := start.AddDate(0, 0, 1)
		_, err := f.service.UpdateOptOut(ctx, manager, employee.ID, optOut.ID, nil, &end)

		assert.Equal(t, service.CodeForbidden, service.CodeOf(err))
	})
}
