package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/storehouse-api/internal/dto"
	"github.com/noah-isme/storehouse-api/internal/models"
	appErrors "github.com/noah-isme/storehouse-api/pkg/errors"
	"github.com/noah-isme/storehouse-api/pkg/jobs"
	"github.com/noah-isme/storehouse-api/pkg/storage"
)

// Backup job states.
const (
	BackupStatusQueued    = "queued"
	BackupStatusRunning   = "running"
	BackupStatusCompleted = "completed"
	BackupStatusFailed    = "failed"

	backupJobType = "backup"
	backupDir     = "backups"
)

type snapshotExporter interface {
	Export(ctx context.Context) (*models.ExportPayload, error)
}

type backupStorage interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (*os.File, error)
	List(dir string) ([]storage.StoredFile, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) (string, error)
}

// BackupService writes export snapshots to local storage in the background
// and hands out signed download tokens. Job state lives in memory only.
type BackupService struct {
	exporter snapshotExporter
	storage  backupStorage
	signer   *storage.SignedURLSigner
	queue    jobDispatcher
	logger   *zap.Logger
	now      func() time.Time

	mu   sync.Mutex
	jobs map[string]*dto.BackupJobResponse
}

// NewBackupService constructs a BackupService. The queue may be attached
// later with SetQueue because the queue's handler is the service itself.
func NewBackupService(exporter snapshotExporter, store backupStorage, signer *storage.SignedURLSigner, logger *zap.Logger) *BackupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackupService{
		exporter: exporter,
		storage:  store,
		signer:   signer,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		jobs:     make(map[string]*dto.BackupJobResponse),
	}
}

// SetQueue attaches the dispatcher used by Enqueue.
func (s *BackupService) SetQueue(queue jobDispatcher) {
	s.queue = queue
}

// Enqueue schedules a backup and returns its job record.
func (s *BackupService) Enqueue(ctx context.Context) (*dto.BackupJobResponse, error) {
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "backups are disabled")
	}
	id, err := s.queue.Enqueue(jobs.Job{Type: backupJobType})
	if err != nil {
		return nil, internalError(err, "failed to enqueue backup")
	}
	s.mu.Lock()
	if _, started := s.jobs[id]; !started {
		s.jobs[id] = &dto.BackupJobResponse{ID: id, Status: BackupStatusQueued}
	}
	job := *s.jobs[id]
	s.mu.Unlock()
	s.logger.Info("backup enqueued", zap.String("job_id", id))
	return &job, nil
}

// Handle runs a queued backup job.
func (s *BackupService) Handle(ctx context.Context, job jobs.Job) error {
	s.setStatus(job.ID, BackupStatusRunning, nil, "")
	file, err := s.Run(ctx, job.ID)
	if err != nil {
		s.setStatus(job.ID, BackupStatusFailed, nil, err.Error())
		return err
	}
	s.setStatus(job.ID, BackupStatusCompleted, file, "")
	return nil
}

// Run exports the data set, stores it and signs a download token.
func (s *BackupService) Run(ctx context.Context, jobID string) (*dto.BackupFile, error) {
	payload, err := s.exporter.Export(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	name := path.Join(backupDir, fmt.Sprintf("storehouse-%s.json", s.now().Format("20060102-150405")))
	stored, err := s.storage.Save(name, append(data, '\n'))
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(jobID, stored)
	if err != nil {
		return nil, fmt.Errorf("sign backup token: %w", err)
	}
	s.logger.Info("backup written",
		zap.String("job_id", jobID),
		zap.String("path", stored),
		zap.Int("students", len(payload.Students)),
		zap.Int("transactions", len(payload.Transactions)),
		zap.Time("token_expires_at", expiresAt))
	return &dto.BackupFile{JobID: jobID, Path: stored, Token: token, ExpiresAt: expiresAt.Unix()}, nil
}

// Status returns the job record for id.
func (s *BackupService) Status(id string) (*dto.BackupJobResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "backup job not found")
	}
	clone := *job
	return &clone, nil
}

// List returns stored backup files, newest first.
func (s *BackupService) List() ([]storage.StoredFile, error) {
	files, err := s.storage.List(backupDir)
	if err != nil {
		return nil, internalError(err, "failed to list backups")
	}
	return files, nil
}

// Open verifies a download token and opens the referenced file.
func (s *BackupService) Open(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "backup file not found")
	}
	return file, path.Base(relPath), nil
}

func (s *BackupService) setStatus(id, status string, file *dto.BackupFile, errMsg string) *dto.BackupJobResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := &dto.BackupJobResponse{ID: id, Status: status, File: file, Error: errMsg}
	s.jobs[id] = job
	clone := *job
	return &clone
}
