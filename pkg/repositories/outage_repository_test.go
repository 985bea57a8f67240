package repositories

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"outage-pulse/pkg/types"
)

// setupTestDB opens an in-memory SQLite database scoped to the test. A single
// connection keeps every query on the same in-memory instance.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&types.Outage{}, &types.SlackThread{}))
	return db
}

func newOngoingOutage(service types.ServiceType, area string, downTime time.Time) *types.Outage {
	return &types.Outage{
		Service:         service,
		Area:            area,
		DownTime:        downTime,
		Status:          types.StatusOngoing,
		ConfirmCount:    1,
		ConfidenceLevel: types.ConfidenceUnverified,
	}
}

func TestGormOutageRepository_CreateAndGetByID(t *testing.T) {
	repo := NewGORMOutageRepository(setupTestDB(t))

	downTime := time.Date(2026, 3, 14, 9, 0, 0, 123456789, time.UTC)
	outage := newOngoingOutage(types.ServiceElectricity, "riverside", downTime)
	require.NoError(t, repo.CreateOutage(outage))
	require.NotZero(t, outage.ID)

	got, err := repo.GetOutageByID(outage.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ServiceElectricity, got.Service)
	assert.Equal(t, "riverside", got.Area)
	assert.Equal(t, types.StatusOngoing, got.Status)
	// Timestamps are persisted at millisecond resolution.
	assert.WithinDuration(t, downTime.Round(time.Millisecond), got.DownTime, time.Millisecond)
}

func TestGormOutageRepository_GetOutageByID_NotFound(t *testing.T) {
	repo := NewGORMOutageRepository(setupTestDB(t))

	_, err := repo.GetOutageByID(42)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestGormOutageRepository_GetOngoingOutageForUpdate(t *testing.T) {
	repo := NewGORMOutageRepository(setupTestDB(t))
	downTime := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	ongoing := newOngoingOutage(types.ServiceWater, "harbor", downTime)
	require.NoError(t, repo.CreateOutage(ongoing))

	resolved := newOngoingOutage(types.ServiceWater, "old town", downTime)
	resolved.Status = types.StatusResolved
	require.NoError(t, repo.CreateOutage(resolved))

	got, err := repo.GetOngoingOutageForUpdate(types.ServiceWater, "harbor")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ongoing.ID, got.ID)

	got, err = repo.GetOngoingOutageForUpdate(types.ServiceWater, "old town")
	require.NoError(t, err)
	assert.Nil(t, got, "resolved outages are not dedup candidates")

	got, err = repo.GetOngoingOutageForUpdate(types.ServiceInternet, "harbor")
	require.NoError(t, err)
	assert.Nil(t, got, "other services never match")
}

func TestGormOutageRepository_ListOutages_NewestFirst(t *testing.T) {
	repo := NewGORMOutageRepository(setupTestDB(t))
	downTime := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	older := newOngoingOutage(types.ServiceElectricity, "riverside", downTime)
	older.CreatedAt = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.CreateOutage(older))

	newer := newOngoingOutage(types.ServiceWater, "harbor", downTime)
	newer.CreatedAt = time.Date(2026, 3, 12, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.CreateOutage(newer))

	outages, err := repo.ListOutages()
	require.NoError(t, err)
	require.Len(t, outages, 2)
	assert.Equal(t, "harbor", outages[0].Area)
	assert.Equal(t, "riverside", outages[1].Area)
}

func TestGormOutageRepository_ListResolvedOutages(t *testing.T) {
	repo := NewGORMOutageRepository(setupTestDB(t))
	downTime := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.CreateOutage(newOngoingOutage(types.ServiceElectricity, "riverside", downTime)))

	resolved := newOngoingOutage(types.ServiceWater, "harbor", downTime)
	resolved.Status = types.StatusResolved
	require.NoError(t, repo.CreateOutage(resolved))

	outages, err := repo.ListResolvedOutages()
	require.NoError(t, err)
	require.Len(t, outages, 1)
	assert.Equal(t, "harbor", outages[0].Area)
}

func TestGormOutageRepository_DeleteOutageByID_Idempotent(t *testing.T) {
	repo := NewGORMOutageRepository(setupTestDB(t))
	downTime := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	outage := newOngoingOutage(types.ServiceTransport, "midtown", downTime)
	require.NoError(t, repo.CreateOutage(outage))

	require.NoError(t, repo.DeleteOutageByID(outage.ID))
	require.NoError(t, repo.DeleteOutageByID(outage.ID), "deleting a missing record is not an error")

	outages, err := repo.ListOutages()
	require.NoError(t, err)
	assert.Empty(t, outages)
}

func TestGormOutageRepository_Transaction_RollsBackOnError(t *testing.T) {
	repo := NewGORMOutageRepository(setupTestDB(t))
	downTime := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	failure := errors.New("abort")
	err := repo.Transaction(func(txRepo OutageRepository) error {
		if err := txRepo.CreateOutage(newOngoingOutage(types.ServiceInternet, "old town", downTime)); err != nil {
			return err
		}
		return failure
	})
	assert.True(t, errors.Is(err, failure))

	outages, err := repo.ListOutages()
	require.NoError(t, err)
	assert.Empty(t, outages, "the insert must roll back with the transaction")
}

func TestGormSlackThreadRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGORMSlackThreadRepository(db)

	thread := &types.SlackThread{
		OutageID:        7,
		Channel:         "#outages",
		ChannelID:       "C12345",
		ThreadTimestamp: "1234567890.000001",
	}
	require.NoError(t, repo.CreateThread(thread))

	threads, err := repo.GetThreadsForOutage(7)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, "#outages", threads[0].Channel)

	threads, err = repo.GetThreadsForOutage(8)
	require.NoError(t, err)
	assert.Empty(t, threads)
}
