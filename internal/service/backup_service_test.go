package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/storehouse-api/internal/models"
	appErrors "github.com/noah-isme/storehouse-api/pkg/errors"
	"github.com/noah-isme/storehouse-api/pkg/jobs"
	"github.com/noah-isme/storehouse-api/pkg/storage"
)

type stubExporter struct {
	payload *models.ExportPayload
	err     error
}

func (s *stubExporter) Export(ctx context.Context) (*models.ExportPayload, error) {
	return s.payload, s.err
}

type stubDispatcher struct {
	jobs []jobs.Job
}

func (s *stubDispatcher) Enqueue(job jobs.Job) (string, error) {
	job.ID = "job-1"
	s.jobs = append(s.jobs, job)
	return job.ID, nil
}

func newTestBackupService(t *testing.T, exporter *stubExporter) *BackupService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := NewBackupService(exporter, store, storage.NewSignedURLSigner("test-secret", time.Hour), nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestBackupServiceDisabledWithoutQueue(t *testing.T) {
	svc := newTestBackupService(t, &stubExporter{})

	_, err := svc.Enqueue(context.Background())
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestBackupServiceLifecycle(t *testing.T) {
	exporter := &stubExporter{payload: &models.ExportPayload{
		Version:  models.ExportVersion,
		Students: []models.Student{{ID: 1, Name: "Ava", QRID: "tok"}},
	}}
	svc := newTestBackupService(t, exporter)
	dispatcher := &stubDispatcher{}
	svc.SetQueue(dispatcher)

	job, err := svc.Enqueue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, BackupStatusQueued, job.Status)
	require.Len(t, dispatcher.jobs, 1)

	require.NoError(t, svc.Handle(context.Background(), jobs.Job{ID: job.ID, Type: backupJobType}))

	status, err := svc.Status(job.ID)
	require.NoError(t, err)
	assert.Equal(t, BackupStatusCompleted, status.Status)
	require.NotNil(t, status.File)
	assert.Equal(t, "backups/storehouse-20260301-090000.json", status.File.Path)

	files, err := svc.List()
	require.NoError(t, err)
	require.Len(t, files, 1)

	file, name, err := svc.Open(status.File.Token)
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, "storehouse-20260301-090000.json", name)
	body, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"qr_id": "tok"`)
}

func TestBackupServiceRecordsFailure(t *testing.T) {
	svc := newTestBackupService(t, &stubExporter{err: errors.New("db down")})

	err := svc.Handle(context.Background(), jobs.Job{ID: "job-9"})
	require.Error(t, err)

	status, err := svc.Status("job-9")
	require.NoError(t, err)
	assert.Equal(t, BackupStatusFailed, status.Status)
	assert.Contains(t, status.Error, "db down")
}

func TestBackupServiceRejectsBadToken(t *testing.T) {
	svc := newTestBackupService(t, &stubExporter{})

	_, _, err := svc.Open("not-a-token")
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))

	_, err = svc.Status("missing")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
