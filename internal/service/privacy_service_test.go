package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hyukudan/enroltimer/internal/models"
)

type mockPrivacyAlertStore struct {
	alerts      []models.AlertRecord
	deleteCalls int
}

func (m *mockPrivacyAlertStore) ListByUser(_ context.Context, _ int64) ([]models.AlertRecord, error) {
	return m.alerts, nil
}

func (m *mockPrivacyAlertStore) DeleteByUser(_ context.Context, _ int64) (int64, error) {
	m.deleteCalls++
	deleted := int64(len(m.alerts))
	m.alerts = nil
	return deleted, nil
}

func TestPrivacyExport(t *testing.T) {
	alerts := &mockPrivacyAlertStore{alerts: []models.AlertRecord{
		{ID: "a1", EnrolID: 1, AlertTime: 100, Sent: true},
		{ID: "a2", EnrolID: 2, AlertTime: 200},
	}}
	prefs := &mockPreferenceStore{prefs: map[string]string{prefKey(7, "completion_sent_12"): "999"}}
	audit := &mockAuditWriter{}
	svc := NewPrivacyService(alerts, prefs, audit, zap.NewNop())

	export, err := svc.Export(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), export.UserID)
	assert.Len(t, export.Alerts, 2)
	assert.Len(t, export.CompletionMarkers, 1)

	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionPrivacyExport, audit.logs[0].Action)
}

func TestPrivacyErase(t *testing.T) {
	alerts := &mockPrivacyAlertStore{alerts: []models.AlertRecord{{ID: "a1", EnrolID: 1}}}
	prefs := &mockPreferenceStore{prefs: map[string]string{prefKey(7, "completion_sent_12"): "999"}}
	audit := &mockAuditWriter{}
	svc := NewPrivacyService(alerts, prefs, audit, zap.NewNop())

	err := svc.Erase(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, 1, alerts.deleteCalls)
	assert.Empty(t, alerts.alerts)
	assert.Empty(t, prefs.prefs)

	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionPrivacyErase, audit.logs[0].Action)
}
