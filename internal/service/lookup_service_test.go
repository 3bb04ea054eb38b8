package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hyukudan/enroltimer/internal/models"
)

func TestLookupRecordsMemoized(t *testing.T) {
	repo := &mockEnrolmentReader{
		records: []models.EnrolmentRecord{{ID: 1, UserID: 7, EnrolMethodID: 3, TimeEnd: 5000}},
	}
	svc := NewLookupService(repo, zap.NewNop())
	cache := NewRequestCache()

	first, err := svc.Records(context.Background(), cache, 7, 12)
	require.NoError(t, err)
	second, err := svc.Records(context.Background(), cache, 7, 12)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.listCalls, "second call must hit the cache")
}

func TestLookupRecordsNoCache(t *testing.T) {
	repo := &mockEnrolmentReader{records: []models.EnrolmentRecord{{ID: 1}}}
	svc := NewLookupService(repo, zap.NewNop())

	_, err := svc.Records(context.Background(), nil, 7, 12)
	require.NoError(t, err)
	_, err = svc.Records(context.Background(), nil, 7, 12)
	require.NoError(t, err)

	assert.Equal(t, 2, repo.listCalls)
}

func TestResolveEndTimeOverrideWins(t *testing.T) {
	repo := &mockEnrolmentReader{
		methods: map[int64]*models.EnrolMethod{3: {ID: 3, EnrolEndDate: 9000}},
	}
	svc := NewLookupService(repo, zap.NewNop())

	end, err := svc.ResolveEndTime(context.Background(), models.EnrolmentRecord{EnrolMethodID: 3, TimeEnd: 5000})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), end)
}

func TestResolveEndTimeMethodFallback(t *testing.T) {
	repo := &mockEnrolmentReader{
		methods: map[int64]*models.EnrolMethod{3: {ID: 3, EnrolEndDate: 9000}},
	}
	svc := NewLookupService(repo, zap.NewNop())

	end, err := svc.ResolveEndTime(context.Background(), models.EnrolmentRecord{EnrolMethodID: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(9000), end)
}

func TestResolveEndTimeNoExpiry(t *testing.T) {
	svc := NewLookupService(&mockEnrolmentReader{}, zap.NewNop())

	end, err := svc.ResolveEndTime(context.Background(), models.EnrolmentRecord{EnrolMethodID: 3})
	require.NoError(t, err)
	assert.Zero(t, end)
}

func TestPickBestRecord(t *testing.T) {
	records := []models.EnrolmentRecord{
		{ID: 1, TimeEnd: 0},
		{ID: 2, TimeEnd: 8000},
		{ID: 3, TimeEnd: 5000},
	}

	best := PickBestRecord(records)
	require.NotNil(t, best)
	assert.Equal(t, int64(3), best.ID, "soonest non-zero end governs")

	allZero := []models.EnrolmentRecord{{ID: 9}, {ID: 10}}
	best = PickBestRecord(allZero)
	require.NotNil(t, best)
	assert.Equal(t, int64(9), best.ID, "first record when every end is zero")

	assert.Nil(t, PickBestRecord(nil))
}
