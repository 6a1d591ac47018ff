package service

import (
	"context"
	"testing"

	"fwf/internal/database"
	"fwf/internal/domain"
	"fwf/internal/models"
	"fwf/internal/repository"
	"fwf/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func TestCompleteTaskOncePerLifetime(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, database.SeedSocialTasks(h.db, zaptest.NewLogger(t)))
	u := testutil.CreateMember(t, h.db, "FWF-000001", "")

	tasks, err := h.task.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 10)
	assert.Equal(t, "T01", tasks[0].TaskID)

	lat, lng := 19.07, 72.87
	res, err := h.task.Complete(ctx, u.ID, TaskSubmission{TaskID: "T01", PhotoURL: "https://img/1.jpg", Latitude: &lat, Longitude: &lng})
	require.NoError(t, err)
	assert.True(t, res.Completion.PointsEarned.Equal(decimal.NewFromInt(10)))
	require.NotNil(t, res.Post.TaskCompletionID)
	assert.Equal(t, res.Completion.ID, *res.Post.TaskCompletionID)
	assert.Equal(t, domain.PostTypeTaskCompletion, res.Post.PostType)

	_, err = h.task.Complete(ctx, u.ID, TaskSubmission{TaskID: "T01", PhotoURL: "https://img/2.jpg"})
	assert.ErrorIs(t, err, ErrTaskAlreadyCompleted)

	_, err = h.task.Complete(ctx, u.ID, TaskSubmission{TaskID: "T02", PhotoURL: "https://img/3.jpg"})
	require.NoError(t, err)

	w, err := h.wallet.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, w.PointsFromSocialTasks.Equal(decimal.NewFromInt(20)))
	assert.Len(t, testutil.LedgerRows(t, h.db, u.ID), 2)

	done, err := h.task.Completions(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, done, 2)

	feed, err := h.task.Feed(ctx, repository.Page{})
	require.NoError(t, err)
	assert.Len(t, feed, 2)
}

func TestCompleteTaskValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, database.SeedSocialTasks(h.db, zaptest.NewLogger(t)))
	u := testutil.CreateMember(t, h.db, "FWF-000001", "")

	_, err := h.task.Complete(ctx, u.ID, TaskSubmission{TaskID: "T01"})
	assert.ErrorIs(t, err, ErrPhotoRequired)
	_, err = h.task.Complete(ctx, u.ID, TaskSubmission{TaskID: "T99", PhotoURL: "https://img/1.jpg"})
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.Empty(t, testutil.LedgerRows(t, h.db, u.ID))
}

func TestCompleteTaskLosesInsertRace(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, database.SeedSocialTasks(h.db, zaptest.NewLogger(t)))
	u := testutil.CreateMember(t, h.db, "FWF-000001", "")

	// A concurrent submission lands between the existence check and our
	// insert: insert it from inside the transaction just before the post.
	fired := false
	err := h.db.Callback().Create().Before("gorm:create").Register("test:concurrent_completion", func(db *gorm.DB) {
		if _, ok := db.Statement.Dest.(*models.SocialPost); !ok || fired {
			return
		}
		fired = true
		rival := &models.TaskCompletion{
			UserID: u.ID, MemberID: u.MemberID, TaskID: "T01", PhotoURL: "https://img/rival.jpg",
			PointsEarned: decimal.NewFromInt(10), Status: domain.TaskCompleted,
		}
		if err := db.Session(&gorm.Session{NewDB: true}).Create(rival).Error; err != nil {
			db.AddError(err)
		}
	})
	require.NoError(t, err)

	_, err = h.task.Complete(ctx, u.ID, TaskSubmission{TaskID: "T01", PhotoURL: "https://img/1.jpg"})
	require.True(t, fired)
	assert.ErrorIs(t, err, ErrTaskAlreadyCompleted)

	w, err := h.wallet.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, w.PointsBalance.IsZero())
	assert.True(t, w.PointsFromSocialTasks.IsZero())
	assert.Empty(t, testutil.LedgerRows(t, h.db, u.ID))

	var completions int64
	require.NoError(t, h.db.Model(&models.TaskCompletion{}).Where("user_id = ?", u.ID).Count(&completions).Error)
	assert.Zero(t, completions)
}
