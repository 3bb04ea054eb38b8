package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyukudan/enroltimer/internal/models"
)

type enrolmentReader interface {
	ListByUserAndCourse(ctx context.Context, userID, courseID int64) ([]models.EnrolmentRecord, error)
	FindByID(ctx context.Context, id int64) (*models.EnrolmentRecord, error)
	FindMethod(ctx context.Context, id int64) (*models.EnrolMethod, error)
}

// RequestCache memoizes enrolment lookups for one logical unit of work: a
// single page render, or a single (course, user) iteration of the background
// job. The owner creates it, passes it down and drops it at the boundary;
// nothing is shared across units of work.
type RequestCache struct {
	records map[string][]models.EnrolmentRecord
}

// NewRequestCache returns an empty cache.
func NewRequestCache() *RequestCache {
	return &RequestCache{records: make(map[string][]models.EnrolmentRecord)}
}

func cacheKey(userID, courseID int64) string {
	return fmt.Sprintf("%d_%d", userID, courseID)
}

// LookupService resolves enrolment records and their effective end times.
type LookupService struct {
	enrolments enrolmentReader
	logger     *zap.Logger
}

// NewLookupService constructs the lookup service.
func NewLookupService(enrolments enrolmentReader, logger *zap.Logger) *LookupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LookupService{enrolments: enrolments, logger: logger}
}

// Records returns every enrolment joining the user to the course, memoized in
// the provided cache when one is given.
func (s *LookupService) Records(ctx context.Context, cache *RequestCache, userID, courseID int64) ([]models.EnrolmentRecord, error) {
	var key string
	if cache != nil {
		key = cacheKey(userID, courseID)
		if cached, ok := cache.records[key]; ok {
			return cached, nil
		}
	}

	records, err := s.enrolments.ListByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		cache.records[key] = records
	}
	return records, nil
}

// ResolveEndTime returns the effective expiry of one enrolment record: its
// own override when set, else the enrolment method's end date, else zero for
// "no expiry".
func (s *LookupService) ResolveEndTime(ctx context.Context, record models.EnrolmentRecord) (int64, error) {
	if record.TimeEnd > 0 {
		return record.TimeEnd, nil
	}

	method, err := s.enrolments.FindMethod(ctx, record.EnrolMethodID)
	if err != nil {
		return 0, err
	}
	if method != nil && method.EnrolEndDate > 0 {
		return method.EnrolEndDate, nil
	}
	return 0, nil
}

// PickBestRecord chooses the enrolment that governs display when a user holds
// several paths into the same course: the soonest non-zero end wins. When
// every record has a zero end, the first record is returned so the caller can
// still try its method-level fallback. Nil for empty input.
func PickBestRecord(records []models.EnrolmentRecord) *models.EnrolmentRecord {
	if len(records) == 0 {
		return nil
	}

	var best *models.EnrolmentRecord
	for i := range records {
		if records[i].TimeEnd <= 0 {
			continue
		}
		if best == nil || records[i].TimeEnd < best.TimeEnd {
			best = &records[i]
		}
	}
	if best == nil {
		best = &records[0]
	}
	return best
}
