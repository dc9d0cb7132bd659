package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"campus-admin/internal/catalog"
	"campus-admin/internal/config"
	"campus-admin/internal/importer"
	"campus-admin/internal/models"
	"campus-admin/internal/repository"
	"campus-admin/internal/utils"
)

type ImportTaskHandler struct {
	db          *sqlx.DB
	redis       *redis.Client
	cfg         *config.Config
	importRepo  *repository.ImportRepository
	studentRepo *repository.StudentRepository
	catalog     catalog.Catalog
}

func NewImportTaskHandler(db *sqlx.DB, redis *redis.Client, cfg *config.Config) *ImportTaskHandler {
	return &ImportTaskHandler{
		db:          db,
		redis:       redis,
		cfg:         cfg,
		importRepo:  repository.NewImportRepository(db),
		studentRepo: repository.NewStudentRepository(db),
		catalog:     catalog.Student(),
	}
}

type ImportTaskPayload struct {
	SessionID          int    `json:"session_id"`
	SessionCode        string `json:"session_code"`
	SkipDuplicateCheck bool   `json:"skip_duplicate_check"`
	ConfirmDuplicates  bool   `json:"confirm_duplicates"`
}

func (h *ImportTaskHandler) Handle(ctx context.Context, task *asynq.Task) error {
	log := utils.GetLogger()

	var payload ImportTaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	log.Infof("Starting import for session %s (ID: %d)", payload.SessionCode, payload.SessionID)

	session, err := h.importRepo.GetSessionByID(payload.SessionID)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	if session.Status == models.SessionCanceled {
		log.Infof("Session %s has been canceled, skipping import", payload.SessionCode)
		return nil
	}
	if session.Status == models.SessionCompleted || session.Status == models.SessionFailed {
		log.Infof("Session %s is already %s, skipping import", payload.SessionCode, session.Status)
		return nil
	}

	header, rows, descs, staged, err := h.loadSessionData(session)
	if err != nil {
		h.importRepo.UpdateSessionStatus(session.ID, models.SessionFailed)
		return fmt.Errorf("failed to load session data: %w", err)
	}

	var mapping importer.Mapping
	if err := json.Unmarshal([]byte(session.MappingJSON), &mapping); err != nil {
		h.importRepo.UpdateSessionStatus(session.ID, models.SessionFailed)
		return fmt.Errorf("failed to decode mapping: %w", err)
	}

	runner := &importer.Runner{
		Creator: h.studentRepo,
		Catalog: h.catalog,
		Log:     log,
	}

	opts := importer.Options{
		SkipDuplicateCheck: payload.SkipDuplicateCheck,
		ConfirmDuplicates:  payload.ConfirmDuplicates,
	}

	progressKey := fmt.Sprintf("import:progress:%d", session.ID)
	progress := func(done, total int, percent float64) {
		h.redis.Set(ctx, progressKey, fmt.Sprintf("%.2f", percent), 0)
	}

	result, runErr := runner.Run(ctx, header, rows, mapping, descs, opts, progress)

	// Record per-row outcomes on the staged rows.
	for _, outcome := range result.Outcomes {
		if outcome.Row-1 < len(staged) {
			if err := h.importRepo.UpdateRowOutcome(staged[outcome.Row-1].ID, outcome.Status, outcome.Reason); err != nil {
				log.Warnf("Failed to update row %d outcome: %v", outcome.Row, err)
			}
		}
	}

	session.CreatedRows = result.Created
	session.SkippedRows = result.Skipped
	session.FailedRows = result.Failed
	session.Status = models.SessionCompleted
	if result.Aborted {
		session.Status = models.SessionFailed
		session.ErrorMessage = runErr.Error()
	}
	if err := h.importRepo.UpdateSession(session); err != nil {
		log.Warnf("Failed to update session status: %v", err)
	}

	log.Infof("Import finished for session %s. Created: %d, Skipped: %d, Failed: %d",
		payload.SessionCode, result.Created, result.Skipped, result.Failed)

	// On abort the partial counts stand; never retry the task.
	return nil
}

func (h *ImportTaskHandler) loadSessionData(session *models.ImportSession) ([]string, [][]string, []importer.SheetDescriptor, []models.ImportRow, error) {
	var header []string
	if err := json.Unmarshal([]byte(session.HeaderJSON), &header); err != nil {
		return nil, nil, nil, nil, err
	}
	var descs []importer.SheetDescriptor
	if err := json.Unmarshal([]byte(session.SheetsJSON), &descs); err != nil {
		return nil, nil, nil, nil, err
	}

	staged, err := h.importRepo.GetAllRowsBySession(session.ID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	rows := make([][]string, len(staged))
	for i, row := range staged {
		if err := json.Unmarshal([]byte(row.CellsJSON), &rows[i]); err != nil {
			return nil, nil, nil, nil, err
		}
	}

	return header, rows, descs, staged, nil
}
