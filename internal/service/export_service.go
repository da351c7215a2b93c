package service

import (
	"alcyxob/marathon-tracker/internal/domain"
	"alcyxob/marathon-tracker/internal/metrics"
	"alcyxob/marathon-tracker/internal/storage"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrExportDisabled = errors.New("progress export is not configured")

// ProgressExport is the JSON document uploaded by ExportProgress.
type ProgressExport struct {
	GeneratedAt time.Time           `json:"generatedAt"`
	User        ExportedUser        `json:"user"`
	Plan        domain.TrainingPlan `json:"plan"`
	Workouts    []domain.Workout    `json:"workouts"`
	Weeks       []WeekSummary       `json:"weeks"`
}

type ExportedUser struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	MonthlyKmGoal float64              `json:"monthlyKmGoal"`
	WeightHistory []domain.WeightEntry `json:"weightHistory"`
}

// ExportResult points to an uploaded export.
type ExportResult struct {
	ObjectKey   string    `json:"objectKey"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type ExportService interface {
	ExportProgress(ctx context.Context, userID, planID string) (*ExportResult, error)
}

type exportService struct {
	users    UserService
	plans    PlanService
	progress ProgressService
	storage  storage.FileStorage // nil when object storage is disabled
	metrics  *metrics.Manager
	now      func() time.Time
	expiry   time.Duration
}

// NewExportService creates a new instance of exportService. fileStorage may be nil.
func NewExportService(
	users UserService,
	plans PlanService,
	progress ProgressService,
	fileStorage storage.FileStorage,
	metricsManager *metrics.Manager,
	now func() time.Time,
) ExportService {
	if now == nil {
		now = time.Now
	}
	return &exportService{
		users:    users,
		plans:    plans,
		progress: progress,
		storage:  fileStorage,
		metrics:  metricsManager,
		now:      now,
		expiry:   storage.DefaultPresignedURLExpiry,
	}
}

// ExportProgress uploads the user's plan view and weekly summaries and
// returns a temporary download link.
func (s *exportService) ExportProgress(ctx context.Context, userID, planID string) (*ExportResult, error) {
	if s.storage == nil {
		return nil, ErrExportDisabled
	}

	plan, err := s.plans.Get(planID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	workouts, err := s.progress.View(ctx, planID, userID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	doc := ProgressExport{
		GeneratedAt: now,
		User: ExportedUser{
			ID:            user.ID,
			Name:          user.Name,
			MonthlyKmGoal: user.MonthlyKmGoal,
			WeightHistory: user.WeightHistory,
		},
		Plan:     plan,
		Workouts: workouts,
		Weeks:    WeeklySummaries(workouts),
	}
	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}

	key := ExportObjectKey(userID, planID, uuid.NewString())
	if err := s.storage.PutObject(ctx, key, "application/json", body); err != nil {
		return nil, storeErr("upload export", err)
	}
	url, err := s.storage.GeneratePresignedDownloadURL(ctx, key, s.expiry)
	if err != nil {
		return nil, storeErr("presign export", err)
	}

	s.metrics.CounterExports.Inc()
	log.WithFields(log.Fields{"user_id": userID, "plan_id": planID, "key": key}).Info("progress exported")

	return &ExportResult{ObjectKey: key, DownloadURL: url, ExpiresAt: now.Add(s.expiry)}, nil
}

// ExportObjectKey is the storage key of one export.
func ExportObjectKey(userID, planID, exportID string) string {
	return fmt.Sprintf("exports/%s/%s/%s.json", userID, planID, exportID)
}
