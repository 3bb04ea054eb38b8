package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hyukudan/enroltimer/internal/models"
	"github.com/hyukudan/enroltimer/internal/notify"
	"github.com/hyukudan/enroltimer/pkg/config"
	appErrors "github.com/hyukudan/enroltimer/pkg/errors"
)

func completionConfig(threshold float64) config.CompletionConfig {
	return config.CompletionConfig{
		Enabled:   true,
		Threshold: threshold,
		Subject:   "Congratulations on [[course_name]]",
		Body:      "Well done [[user_firstname]], you scored [[percentage]]%.",
	}
}

func newCompletionFixture(prefs *mockPreferenceStore, completions *mockCompletionReader, sender notify.Sender, threshold float64, audit *mockAuditWriter) *CompletionService {
	var writer auditWriter
	if audit != nil {
		writer = audit
	}
	return NewCompletionService(prefs, completions, writer, sender, completionConfig(threshold), mailConfig(), nil, zap.NewNop())
}

func gradePtr(v float64) *float64 { return &v }

var completionUser = models.User{ID: 7, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.org"}
var completionCourse = models.Course{ID: 12, FullName: "Analytical Engines", ShortName: "AE101", Visible: true}

func TestProcessUserSendsOnCompletion(t *testing.T) {
	prefs := &mockPreferenceStore{}
	completions := &mockCompletionReader{
		completion: &models.CourseCompletion{UserID: 7, CourseID: 12, TimeCompleted: 1_000_000},
		grade:      &models.GradeResult{Grade: gradePtr(87.31), GradeMax: 100},
	}
	sender := notify.NewConsoleSender(nil)
	audit := &mockAuditWriter{}
	svc := newCompletionFixture(prefs, completions, sender, 100, audit)

	sent, err := svc.ProcessUser(context.Background(), completionUser, completionCourse, 1_234_567)
	require.NoError(t, err)
	assert.True(t, sent)

	messages := sender.Sent()
	require.Len(t, messages, 1)
	assert.Equal(t, "Congratulations on Analytical Engines", messages[0].Subject)
	assert.Contains(t, messages[0].PlainBody, "you scored 87.3%")

	marker, err := prefs.Get(context.Background(), 7, "completion_sent_12")
	require.NoError(t, err)
	require.NotNil(t, marker)
	assert.Equal(t, "1234567", marker.Value)

	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionCompletionSent, audit.logs[0].Action)
}

func TestProcessUserMarkerGatesRepeat(t *testing.T) {
	prefs := &mockPreferenceStore{prefs: map[string]string{prefKey(7, "completion_sent_12"): "999"}}
	completions := &mockCompletionReader{
		completion: &models.CourseCompletion{TimeCompleted: 1},
	}
	sender := notify.NewConsoleSender(nil)
	svc := newCompletionFixture(prefs, completions, sender, 100, nil)

	sent, err := svc.ProcessUser(context.Background(), completionUser, completionCourse, 2_000)
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Empty(t, sender.Sent())
}

func TestProcessUserRequiresCompletionAtFullThreshold(t *testing.T) {
	prefs := &mockPreferenceStore{}
	completions := &mockCompletionReader{
		grade: &models.GradeResult{Grade: gradePtr(100), GradeMax: 100},
	}
	sender := notify.NewConsoleSender(nil)
	svc := newCompletionFixture(prefs, completions, sender, 100, nil)

	sent, err := svc.ProcessUser(context.Background(), completionUser, completionCourse, 2_000)
	require.NoError(t, err)
	assert.False(t, sent, "a grade alone does not satisfy the completion branch")
	assert.Empty(t, sender.Sent())
}

func TestProcessUserGradeThresholdBranch(t *testing.T) {
	prefs := &mockPreferenceStore{}
	completions := &mockCompletionReader{
		grade: &models.GradeResult{Grade: gradePtr(42), GradeMax: 50},
	}
	sender := notify.NewConsoleSender(nil)
	svc := newCompletionFixture(prefs, completions, sender, 80, nil)

	sent, err := svc.ProcessUser(context.Background(), completionUser, completionCourse, 2_000)
	require.NoError(t, err)
	assert.True(t, sent, "42 of 50 is 84 percent, above the 80 threshold")
	require.Len(t, sender.Sent(), 1)
	assert.Contains(t, sender.Sent()[0].PlainBody, "84.0%")
}

func TestProcessUserBelowThresholdStaysSilent(t *testing.T) {
	prefs := &mockPreferenceStore{}
	completions := &mockCompletionReader{
		grade: &models.GradeResult{Grade: gradePtr(30), GradeMax: 50},
	}
	sender := notify.NewConsoleSender(nil)
	svc := newCompletionFixture(prefs, completions, sender, 80, nil)

	sent, err := svc.ProcessUser(context.Background(), completionUser, completionCourse, 2_000)
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Empty(t, sender.Sent())
	_, ok := prefs.prefs[prefKey(7, "completion_sent_12")]
	assert.False(t, ok)
}

func TestProcessUserNoMarkerOnSendFailure(t *testing.T) {
	prefs := &mockPreferenceStore{}
	completions := &mockCompletionReader{
		completion: &models.CourseCompletion{TimeCompleted: 1},
	}
	sender := &failingSender{}
	svc := newCompletionFixture(prefs, completions, sender, 100, nil)

	sent, err := svc.ProcessUser(context.Background(), completionUser, completionCourse, 2_000)
	require.Error(t, err)
	assert.False(t, sent)
	assert.Empty(t, prefs.prefs, "failed delivery must not write the marker")
}

func TestProcessUserTemplateMissing(t *testing.T) {
	svc := NewCompletionService(&mockPreferenceStore{}, &mockCompletionReader{}, nil,
		notify.NewConsoleSender(nil), config.CompletionConfig{Enabled: true, Threshold: 100}, mailConfig(), nil, zap.NewNop())

	_, err := svc.ProcessUser(context.Background(), completionUser, completionCourse, 2_000)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrTemplateMissing)
}
