package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyukudan/enroltimer/internal/models"
	"github.com/hyukudan/enroltimer/internal/notify"
	appErrors "github.com/hyukudan/enroltimer/pkg/errors"
)

type mockEnrolmentReader struct {
	records   []models.EnrolmentRecord
	byID      map[int64]*models.EnrolmentRecord
	methods   map[int64]*models.EnrolMethod
	listCalls int
	listErr   error
}

func (m *mockEnrolmentReader) ListByUserAndCourse(_ context.Context, _, _ int64) ([]models.EnrolmentRecord, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.records, nil
}

func (m *mockEnrolmentReader) FindByID(_ context.Context, id int64) (*models.EnrolmentRecord, error) {
	return m.byID[id], nil
}

func (m *mockEnrolmentReader) FindMethod(_ context.Context, id int64) (*models.EnrolMethod, error) {
	return m.methods[id], nil
}

type mockAlertStore struct {
	created   []models.AlertRecord
	existing  map[int64]bool
	due       []models.AlertRecord
	sentIDs   []string
	orphans   int64
	createErr error
	markErr   error
}

func (m *mockAlertStore) Create(_ context.Context, alert *models.AlertRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.existing[alert.EnrolID] {
		return appErrors.Wrap(errors.New("duplicate key value violates unique constraint"),
			appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "alert already scheduled")
	}
	if m.existing == nil {
		m.existing = make(map[int64]bool)
	}
	m.existing[alert.EnrolID] = true
	alert.ID = "alert-created"
	m.created = append(m.created, *alert)
	return nil
}

func (m *mockAlertStore) ListDue(_ context.Context, _ int64) ([]models.AlertRecord, error) {
	return m.due, nil
}

func (m *mockAlertStore) MarkSent(_ context.Context, id string) error {
	if m.markErr != nil {
		return m.markErr
	}
	m.sentIDs = append(m.sentIDs, id)
	return nil
}

func (m *mockAlertStore) DeleteOrphans(_ context.Context) (int64, error) {
	return m.orphans, nil
}

type mockUserReader struct {
	users map[int64]*models.User
}

func (m *mockUserReader) FindByID(_ context.Context, id int64) (*models.User, error) {
	return m.users[id], nil
}

type mockCourseReader struct {
	courses map[int64]*models.Course
}

func (m *mockCourseReader) FindByID(_ context.Context, id int64) (*models.Course, error) {
	return m.courses[id], nil
}

type mockAuditWriter struct {
	logs []models.AuditLog
}

func (m *mockAuditWriter) Create(_ context.Context, log *models.AuditLog) error {
	m.logs = append(m.logs, *log)
	return nil
}

type mockPreferenceStore struct {
	prefs   map[string]string
	setErr  error
	deleted int64
}

func prefKey(userID int64, name string) string {
	return fmt.Sprintf("%d|%s", userID, name)
}

func (m *mockPreferenceStore) Get(_ context.Context, userID int64, name string) (*models.UserPreference, error) {
	value, ok := m.prefs[prefKey(userID, name)]
	if !ok {
		return nil, nil
	}
	return &models.UserPreference{UserID: userID, Name: name, Value: value}, nil
}

func (m *mockPreferenceStore) Set(_ context.Context, userID int64, name, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.prefs == nil {
		m.prefs = make(map[string]string)
	}
	m.prefs[prefKey(userID, name)] = value
	return nil
}

func (m *mockPreferenceStore) ListByPrefix(_ context.Context, userID int64, prefix string) ([]models.UserPreference, error) {
	var out []models.UserPreference
	for key, value := range m.prefs {
		out = append(out, models.UserPreference{UserID: userID, Name: key, Value: value})
	}
	return out, nil
}

func (m *mockPreferenceStore) DeleteByPrefix(_ context.Context, _ int64, _ string) (int64, error) {
	count := int64(len(m.prefs))
	m.prefs = nil
	m.deleted = count
	return count, nil
}

type mockCompletionReader struct {
	completion *models.CourseCompletion
	grade      *models.GradeResult
}

func (m *mockCompletionReader) FindCompletion(_ context.Context, _, _ int64) (*models.CourseCompletion, error) {
	return m.completion, nil
}

func (m *mockCompletionReader) FindGrade(_ context.Context, _, _ int64) (*models.GradeResult, error) {
	return m.grade, nil
}

type failingSender struct {
	calls int
}

func (f *failingSender) Send(_ context.Context, _ *notify.Message) (string, error) {
	f.calls++
	return "", errors.New("transport down")
}
