package directory_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bitcoinperu/comunidad/internal/directory"
	"github.com/bitcoinperu/comunidad/pkg/models"
)

func setupService(t *testing.T) *directory.Service {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Business{}))
	return directory.NewService(zap.NewNop(), db)
}

func TestSubmissionStartsPending(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	business, err := svc.Submit(ctx, uuid.New(), &models.BusinessRequest{
		Name: "Café Satoshi", Category: "cafetería", District: "Miraflores",
	})
	require.NoError(t, err)
	assert.False(t, business.Approved)

	approved, err := svc.ListApproved(ctx, "", "")
	require.NoError(t, err)
	assert.Empty(t, approved)

	pending, err := svc.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, business.ID, pending[0].ID)
}

func TestApproveMakesBusinessPublic(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	business, err := svc.Submit(ctx, uuid.New(), &models.BusinessRequest{
		Name: "Librería Nakamoto", Category: "librería", District: "Barranco",
	})
	require.NoError(t, err)

	approved, err := svc.Approve(ctx, business.ID)
	require.NoError(t, err)
	assert.True(t, approved.Approved)

	listed, err := svc.ListApproved(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, listed, 1)

	pending, err := svc.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestListApprovedFilters(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	submit := func(name, category, district string) {
		b, err := svc.Submit(ctx, uuid.New(), &models.BusinessRequest{
			Name: name, Category: category, District: district,
		})
		require.NoError(t, err)
		_, err = svc.Approve(ctx, b.ID)
		require.NoError(t, err)
	}
	submit("Café Satoshi", "cafetería", "Miraflores")
	submit("Café Hal", "cafetería", "Barranco")
	submit("Hostal 21M", "hospedaje", "Miraflores")

	cafes, err := svc.ListApproved(ctx, "cafetería", "")
	require.NoError(t, err)
	assert.Len(t, cafes, 2)

	miraflores, err := svc.ListApproved(ctx, "", "Miraflores")
	require.NoError(t, err)
	assert.Len(t, miraflores, 2)

	both, err := svc.ListApproved(ctx, "cafetería", "Miraflores")
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "Café Satoshi", both[0].Name)
}

func TestApproveAndDeleteUnknown(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Approve(ctx, uuid.New())
	assert.ErrorIs(t, err, directory.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, uuid.New()), directory.ErrNotFound)
}

func TestDeleteRemovesEntry(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	business, err := svc.Submit(ctx, uuid.New(), &models.BusinessRequest{
		Name: "Spam Corp", Category: "spam", District: "Nowhere",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, business.ID))
	pending, err := svc.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
