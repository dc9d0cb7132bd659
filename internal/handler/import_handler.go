package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"campus-admin/internal/catalog"
	"campus-admin/internal/config"
	"campus-admin/internal/importer"
	"campus-admin/internal/models"
	"campus-admin/internal/repository"
	"campus-admin/internal/service"
	"campus-admin/internal/utils"
)

// maxErrorsShown caps how many validation errors the message line lists;
// the full list still travels in the data payload.
const maxErrorsShown = 10

type ImportHandler struct {
	importRepo   *repository.ImportRepository
	excelService *service.ExcelService
	asynqClient  *asynq.Client
	redisClient  *redis.Client
	catalog      catalog.Catalog
	cfg          *config.Config
}

func NewImportHandler(
	importRepo *repository.ImportRepository,
	excelService *service.ExcelService,
	asynqClient *asynq.Client,
	redisClient *redis.Client,
	cat catalog.Catalog,
	cfg *config.Config,
) *ImportHandler {
	return &ImportHandler{
		importRepo:   importRepo,
		excelService: excelService,
		asynqClient:  asynqClient,
		redisClient:  redisClient,
		catalog:      cat,
		cfg:          cfg,
	}
}

func (h *ImportHandler) UploadFile(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File is required", err)
	}

	if err := importer.ValidateUpload(file.Filename, file.Header.Get("Content-Type"), file.Size); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File rejected", err)
	}
	if file.Size > int64(h.cfg.UploadMaxSize) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File rejected", importer.ErrFileTooLarge)
	}

	src, err := file.Open()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to read file", err)
	}
	data, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to read file", err)
	}

	wb, err := importer.Read(file.Filename, data)
	if err != nil {
		status := fiber.StatusBadRequest
		if errors.Is(err, importer.ErrNoData) {
			return utils.ErrorResponse(c, status, "No data found in file", err)
		}
		return utils.ErrorResponse(c, status, "Failed to parse file", err)
	}

	header, rows, descs := wb.Combine()
	header, rows = importer.EnrichRows(header, rows, descs)
	mapping := importer.BuildColumnMapping(h.catalog, header, rows)
	validationErrors := importer.ValidateRows(h.catalog, mapping, header, rows)

	session := &models.ImportSession{
		SessionCode: fmt.Sprintf("IMPORT-%s", uuid.New().String()[:8]),
		Filename:    file.Filename,
		TotalRows:   len(rows),
		ErrorCount:  len(validationErrors),
		Status:      models.SessionUploaded,
	}
	session.HeaderJSON = mustJSON(header)
	session.MappingJSON = mustJSON(mapping)
	session.SheetsJSON = mustJSON(descs)
	session.ErrorsJSON = mustJSON(validationErrors)

	if err := h.importRepo.CreateSession(session); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create import session", err)
	}

	staged := make([]models.ImportRow, len(rows))
	for i, row := range rows {
		staged[i] = models.ImportRow{
			SessionID: session.ID,
			RowIndex:  i + 1,
			SheetName: sheetNameFor(descs, i),
			CellsJSON: mustJSON(row),
			Status:    "pending",
		}
	}
	if err := h.importRepo.BulkInsertRows(staged); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to stage rows", err)
	}

	return utils.SuccessResponse(c, "File uploaded successfully", fiber.Map{
		"session":    session,
		"header":     header,
		"mapping":    mapping,
		"sheets":     descs,
		"preview":    previewRows(rows, maxErrorsShown),
		"errors":     validationErrors,
		"duplicates": importer.FindDuplicates(h.catalog, header, rows, mapping, descs),
	})
}

func (h *ImportHandler) GetSessions(c *fiber.Ctx) error {
	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)

	sessions, total, err := h.importRepo.GetSessions(params.Limit, offset)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve sessions", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))
	return utils.PaginatedResponseBuilder(c, "Sessions retrieved successfully", fiber.Map{
		"sessions": sessions,
	}, pagination)
}

func (h *ImportHandler) GetSessionDetail(c *fiber.Ctx) error {
	session, err := h.sessionFromParams(c)
	if err != nil {
		return err
	}

	var validationErrors []importer.ValidationError
	_ = json.Unmarshal([]byte(session.ErrorsJSON), &validationErrors)

	var mapping importer.Mapping
	_ = json.Unmarshal([]byte(session.MappingJSON), &mapping)

	return utils.SuccessResponse(c, "Session retrieved successfully", fiber.Map{
		"session": session,
		"mapping": mapping,
		"errors":  validationErrors,
	})
}

func (h *ImportHandler) GetRows(c *fiber.Ctx) error {
	session, err := h.sessionFromParams(c)
	if err != nil {
		return err
	}

	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)

	rows, total, err := h.importRepo.GetRowsBySession(session.ID, params.Limit, offset)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve rows", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))
	return utils.PaginatedResponseBuilder(c, "Rows retrieved successfully", fiber.Map{
		"rows": rows,
	}, pagination)
}

func (h *ImportHandler) GetGroups(c *fiber.Ctx) error {
	session, err := h.sessionFromParams(c)
	if err != nil {
		return err
	}

	header, rows, _, err := h.loadSessionData(session)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load session data", err)
	}

	groups := importer.GroupRowsByYearAndSection(header, rows)
	summary := make([]fiber.Map, 0, len(groups))
	for _, g := range groups {
		summary = append(summary, fiber.Map{
			"key":       g.Key,
			"row_count": len(g.Rows),
		})
	}

	return utils.SuccessResponse(c, "Groups retrieved successfully", fiber.Map{
		"groups": summary,
	})
}

// UpdateMapping replaces the column mapping and immediately re-validates;
// the previous error list is discarded wholesale.
func (h *ImportHandler) UpdateMapping(c *fiber.Ctx) error {
	session, err := h.sessionFromParams(c)
	if err != nil {
		return err
	}

	var mapping importer.Mapping
	if err := c.BodyParser(&mapping); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid mapping payload", err)
	}

	// Reject two fields pointing at the same column.
	used := map[int]string{}
	for field, idx := range mapping {
		if other, taken := used[idx]; taken {
			return utils.ErrorResponse(c, fiber.StatusBadRequest,
				fmt.Sprintf("Column %d is mapped to both %s and %s", idx, other, field), nil)
		}
		used[idx] = field
	}

	header, rows, descs, err := h.loadSessionData(session)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load session data", err)
	}

	validationErrors := importer.ValidateRows(h.catalog, mapping, header, rows)

	session.MappingJSON = mustJSON(mapping)
	session.ErrorsJSON = mustJSON(validationErrors)
	session.ErrorCount = len(validationErrors)
	session.Status = models.SessionValidated
	if err := h.importRepo.UpdateSession(session); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update session", err)
	}

	return utils.SuccessResponse(c, validationMessage(validationErrors), fiber.Map{
		"mapping":    mapping,
		"errors":     validationErrors,
		"duplicates": importer.FindDuplicates(h.catalog, header, rows, mapping, descs),
	})
}

func (h *ImportHandler) Validate(c *fiber.Ctx) error {
	session, err := h.sessionFromParams(c)
	if err != nil {
		return err
	}

	header, rows, descs, err := h.loadSessionData(session)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load session data", err)
	}

	var mapping importer.Mapping
	if err := json.Unmarshal([]byte(session.MappingJSON), &mapping); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to decode mapping", err)
	}

	validationErrors := importer.ValidateRows(h.catalog, mapping, header, rows)

	session.ErrorsJSON = mustJSON(validationErrors)
	session.ErrorCount = len(validationErrors)
	session.Status = models.SessionValidated
	if err := h.importRepo.UpdateSession(session); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update session", err)
	}

	return utils.SuccessResponse(c, validationMessage(validationErrors), fiber.Map{
		"errors":     validationErrors,
		"duplicates": importer.FindDuplicates(h.catalog, header, rows, mapping, descs),
	})
}

func (h *ImportHandler) ProcessSession(c *fiber.Ctx) error {
	session, err := h.sessionFromParams(c)
	if err != nil {
		return err
	}

	if session.Status == models.SessionProcessing {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Session is already being processed", nil)
	}
	if session.Status == models.SessionCompleted {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Session is already completed", nil)
	}
	if session.ErrorCount > 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest,
			fmt.Sprintf("Import blocked: %d validation errors must be resolved first", session.ErrorCount),
			importer.ErrValidationPending)
	}

	var opts importer.Options
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&opts); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid options payload", err)
		}
	}

	if h.asynqClient == nil {
		return utils.ErrorResponse(c, fiber.StatusServiceUnavailable, "Background job processing is not available (Redis not connected)", nil)
	}

	if err := h.importRepo.UpdateSessionStatus(session.ID, models.SessionProcessing); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update session status", err)
	}

	payload, _ := json.Marshal(fiber.Map{
		"session_id":           session.ID,
		"session_code":         session.SessionCode,
		"skip_duplicate_check": opts.SkipDuplicateCheck,
		"confirm_duplicates":   opts.ConfirmDuplicates,
	})

	task := asynq.NewTask("import:process", payload)
	info, err := h.asynqClient.Enqueue(task)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to queue import task", err)
	}

	return utils.SuccessResponse(c, "Import started", fiber.Map{
		"job_id":  info.ID,
		"session": session,
	})
}

func (h *ImportHandler) GetProgress(c *fiber.Ctx) error {
	session, err := h.sessionFromParams(c)
	if err != nil {
		return err
	}

	// Live percentage from the worker, when Redis is around.
	percent := ""
	if h.redisClient != nil {
		key := fmt.Sprintf("import:progress:%d", session.ID)
		percent, _ = h.redisClient.Get(c.Context(), key).Result()
	}

	return utils.SuccessResponse(c, "Progress retrieved successfully", fiber.Map{
		"status":       session.Status,
		"percent":      percent,
		"total_rows":   session.TotalRows,
		"created_rows": session.CreatedRows,
		"skipped_rows": session.SkippedRows,
		"failed_rows":  session.FailedRows,
	})
}

func (h *ImportHandler) DownloadErrorReport(c *fiber.Ctx) error {
	session, err := h.sessionFromParams(c)
	if err != nil {
		return err
	}

	var validationErrors []importer.ValidationError
	_ = json.Unmarshal([]byte(session.ErrorsJSON), &validationErrors)

	reportName := fmt.Sprintf("errors_%s_%s.xlsx", session.SessionCode, time.Now().Format("20060102_150405"))
	reportPath := filepath.Join("./storage/exports", reportName)

	if err := h.excelService.GenerateErrorReport(session, validationErrors, reportPath); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate error report", err)
	}

	return c.Download(reportPath, reportName)
}

func (h *ImportHandler) DownloadTemplate(c *fiber.Ctx) error {
	templatePath := filepath.Join("./storage/exports", "student_import_template.xlsx")
	if err := h.excelService.GenerateTemplate(templatePath); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate template", err)
	}
	return c.Download(templatePath, "student_import_template.xlsx")
}

func (h *ImportHandler) sessionFromParams(c *fiber.Ctx) (*models.ImportSession, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return nil, utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid session ID", err)
	}
	session, err := h.importRepo.GetSessionByID(id)
	if err != nil {
		return nil, utils.ErrorResponse(c, fiber.StatusNotFound, "Session not found", err)
	}
	return session, nil
}

func (h *ImportHandler) loadSessionData(session *models.ImportSession) ([]string, [][]string, []importer.SheetDescriptor, error) {
	var header []string
	if err := json.Unmarshal([]byte(session.HeaderJSON), &header); err != nil {
		return nil, nil, nil, err
	}
	var descs []importer.SheetDescriptor
	if err := json.Unmarshal([]byte(session.SheetsJSON), &descs); err != nil {
		return nil, nil, nil, err
	}

	staged, err := h.importRepo.GetAllRowsBySession(session.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	rows := make([][]string, len(staged))
	for i, row := range staged {
		if err := json.Unmarshal([]byte(row.CellsJSON), &rows[i]); err != nil {
			return nil, nil, nil, err
		}
	}

	return header, rows, descs, nil
}

func validationMessage(errs []importer.ValidationError) string {
	if len(errs) == 0 {
		return "Validation passed"
	}
	if len(errs) > maxErrorsShown {
		return fmt.Sprintf("Validation found %d errors (showing first %d, %d more)",
			len(errs), maxErrorsShown, len(errs)-maxErrorsShown)
	}
	return fmt.Sprintf("Validation found %d errors", len(errs))
}

func previewRows(rows [][]string, limit int) [][]string {
	if len(rows) > limit {
		return rows[:limit]
	}
	return rows
}

func sheetNameFor(descs []importer.SheetDescriptor, rowIdx int) string {
	for _, d := range descs {
		if rowIdx >= d.StartRow && rowIdx < d.StartRow+d.RowCount {
			return d.Name
		}
	}
	return ""
}

func mustJSON(v interface{}) string {
	b, _ := json.Marshal(v)
	return string(b)
}
