package models

import "time"

// Import session statuses.
const (
	SessionUploaded   = "uploaded"
	SessionValidated  = "validated"
	SessionProcessing = "processing"
	SessionCompleted  = "completed"
	SessionFailed     = "failed"
	SessionCanceled   = "canceled"
)

type ImportSession struct {
	ID           int       `db:"id" json:"id"`
	SessionCode  string    `db:"session_code" json:"session_code"`
	Filename     string    `db:"filename" json:"filename"`
	TotalRows    int       `db:"total_rows" json:"total_rows"`
	CreatedRows  int       `db:"created_rows" json:"created_rows"`
	SkippedRows  int       `db:"skipped_rows" json:"skipped_rows"`
	FailedRows   int       `db:"failed_rows" json:"failed_rows"`
	ErrorCount   int       `db:"error_count" json:"error_count"`
	Status       string    `db:"status" json:"status"`
	ErrorMessage string    `db:"error_message" json:"error_message"`

	// Parsed workbook state, serialized so validation and the worker can
	// re-run the pipeline without re-reading the file.
	HeaderJSON  string `db:"header_json" json:"-"`
	MappingJSON string `db:"mapping_json" json:"-"`
	SheetsJSON  string `db:"sheets_json" json:"-"`
	ErrorsJSON  string `db:"errors_json" json:"-"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type ImportRow struct {
	ID        int64     `db:"id" json:"id"`
	SessionID int       `db:"session_id" json:"session_id"`
	RowIndex  int       `db:"row_index" json:"row_index"` // 1-based, header-relative
	SheetName string    `db:"sheet_name" json:"sheet_name"`
	CellsJSON string    `db:"cells_json" json:"-"`
	Status    string    `db:"status" json:"status"` // pending | created | skipped | failed
	Reason    string    `db:"reason" json:"reason"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
