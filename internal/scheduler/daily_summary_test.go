package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-dashboard-api/infrastructure/repository/mocks"
	"github.com/vfg2006/sales-dashboard-api/internal/config"
	"github.com/vfg2006/sales-dashboard-api/internal/domain"
	authmocks "github.com/vfg2006/sales-dashboard-api/internal/usecases/authenticating/mocks"
	"go.uber.org/mock/gomock"
)

func newTestService(t *testing.T) (*DailySummaryService, *mocks.MockSaleRepository, *mocks.MockDailySummaryRepository, *authmocks.MockAuthenticator) {
	ctrl := gomock.NewController(t)
	sales := mocks.NewMockSaleRepository(ctrl)
	summaries := mocks.NewMockDailySummaryRepository(ctrl)
	auth := authmocks.NewMockAuthenticator(ctrl)

	service, err := NewDailySummaryService(sales, summaries, auth, &config.Config{
		App:          config.App{Timezone: "UTC"},
		DailySummary: config.DailySummary{CronSchedule: "5 0 * * *", LookbackDays: 3},
	})
	require.NoError(t, err)
	service.now = func() time.Time { return time.Date(2024, 3, 10, 0, 5, 0, 0, time.UTC) }

	return service, sales, summaries, auth
}

func at(day, hour int) int64 {
	return time.Date(2024, 3, day, hour, 0, 0, 0, time.UTC).UnixMilli()
}

func TestRunWritesOneSummaryPerDay(t *testing.T) {
	service, sales, summaries, auth := newTestService(t)

	windowStart := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC).UnixMilli()
	sales.EXPECT().ListSince(gomock.Any(), windowStart).Return([]domain.Sale{
		{ID: "a", Timestamp: at(9, 10), Entries: []domain.Entry{{ProductName: "Tea", Price: "10"}}},
		{ID: "b", Timestamp: at(9, 11), Entries: []domain.Entry{{ProductName: "Coffee", Price: "20"}, {ProductName: "Tea", Price: "10"}}},
		{ID: "c", Timestamp: at(8, 9), Entries: []domain.Entry{{ProductName: "Tea", Price: "bad"}}},
	}, nil)

	var written []*domain.DailySummary
	summaries.EXPECT().SaveOrUpdate(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, s []*domain.DailySummary) error {
		written = s
		return nil
	})
	auth.EXPECT().CleanupExpiredSessions(gomock.Any()).Return(int64(1), nil)

	require.NoError(t, service.Run(context.Background()))

	require.Len(t, written, 3)
	assert.Equal(t, "2024-03-10", written[0].Date)
	assert.Equal(t, 0, written[0].SalesCount)
	assert.True(t, written[0].Total.IsZero())

	assert.Equal(t, "2024-03-09", written[1].Date)
	assert.Equal(t, 2, written[1].SalesCount)
	assert.Equal(t, "40", written[1].Total.String())

	assert.Equal(t, "2024-03-08", written[2].Date)
	assert.Equal(t, 1, written[2].SalesCount)
	assert.True(t, written[2].Total.IsZero())

	status := service.GetStatus()
	assert.Equal(t, false, status["running"])
	assert.Equal(t, "", status["last_sync_error"])
}

func TestRunReportsRepositoryFailure(t *testing.T) {
	service, sales, _, _ := newTestService(t)
	sales.EXPECT().ListSince(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

	err := service.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.Contains(t, service.GetStatus()["last_sync_error"], "db down")
}

func TestRunSkipsWhenAlreadyRunning(t *testing.T) {
	service, _, _, _ := newTestService(t)
	service.syncRunning = true

	assert.NoError(t, service.Run(context.Background()))
	assert.False(t, service.TriggerManualSync(context.Background()))
}

func TestStartDisabledDoesNothing(t *testing.T) {
	service, _, _, _ := newTestService(t)
	assert.NoError(t, service.Start(context.Background()))
}
