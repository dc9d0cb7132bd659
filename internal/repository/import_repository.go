package repository

import (
	"campus-admin/internal/models"

	"github.com/jmoiron/sqlx"
)

type ImportRepository struct {
	db *sqlx.DB
}

func NewImportRepository(db *sqlx.DB) *ImportRepository {
	return &ImportRepository{db: db}
}

// Import Sessions
func (r *ImportRepository) CreateSession(session *models.ImportSession) error {
	query := `INSERT INTO import_sessions (session_code, filename, total_rows, error_count,
	          status, header_json, mapping_json, sheets_json, errors_json)
	          VALUES (:session_code, :filename, :total_rows, :error_count,
	          :status, :header_json, :mapping_json, :sheets_json, :errors_json)`
	result, err := r.db.NamedExec(query, session)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	session.ID = int(id)
	return nil
}

func (r *ImportRepository) GetSessionByID(id int) (*models.ImportSession, error) {
	var session models.ImportSession
	query := "SELECT * FROM import_sessions WHERE id = ? LIMIT 1"
	err := r.db.Get(&session, query, id)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *ImportRepository) GetSessions(limit, offset int) ([]models.ImportSession, int, error) {
	var sessions []models.ImportSession
	var total int

	countQuery := "SELECT COUNT(*) FROM import_sessions"
	if err := r.db.Get(&total, countQuery); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM import_sessions ORDER BY created_at DESC LIMIT ? OFFSET ?"
	if err := r.db.Select(&sessions, query, limit, offset); err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

func (r *ImportRepository) UpdateSession(session *models.ImportSession) error {
	query := `UPDATE import_sessions SET total_rows = :total_rows,
	          created_rows = :created_rows, skipped_rows = :skipped_rows,
	          failed_rows = :failed_rows, error_count = :error_count,
	          status = :status, error_message = :error_message,
	          mapping_json = :mapping_json, errors_json = :errors_json,
	          updated_at = NOW() WHERE id = :id`
	_, err := r.db.NamedExec(query, session)
	return err
}

func (r *ImportRepository) UpdateSessionStatus(id int, status string) error {
	query := "UPDATE import_sessions SET status = ?, updated_at = NOW() WHERE id = ?"
	_, err := r.db.Exec(query, status, id)
	return err
}

// Staged Rows
func (r *ImportRepository) BulkInsertRows(rows []models.ImportRow) error {
	if len(rows) == 0 {
		return nil
	}
	query := `INSERT INTO import_rows (session_id, row_index, sheet_name, cells_json, status)
	          VALUES (:session_id, :row_index, :sheet_name, :cells_json, :status)`
	_, err := r.db.NamedExec(query, rows)
	return err
}

func (r *ImportRepository) GetRowsBySession(sessionID int, limit, offset int) ([]models.ImportRow, int, error) {
	var rows []models.ImportRow
	var total int

	countQuery := "SELECT COUNT(*) FROM import_rows WHERE session_id = ?"
	if err := r.db.Get(&total, countQuery, sessionID); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM import_rows WHERE session_id = ? ORDER BY row_index LIMIT ? OFFSET ?"
	if err := r.db.Select(&rows, query, sessionID, limit, offset); err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

func (r *ImportRepository) GetAllRowsBySession(sessionID int) ([]models.ImportRow, error) {
	var rows []models.ImportRow
	query := "SELECT * FROM import_rows WHERE session_id = ? ORDER BY row_index"
	if err := r.db.Select(&rows, query, sessionID); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ImportRepository) UpdateRowOutcome(id int64, status, reason string) error {
	query := "UPDATE import_rows SET status = ?, reason = ?, updated_at = NOW() WHERE id = ?"
	_, err := r.db.Exec(query, status, reason, id)
	return err
}
