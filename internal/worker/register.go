package worker

import (
	"campus-admin/internal/config"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

func RegisterHandlers(mux *asynq.ServeMux, db *sqlx.DB, redis *redis.Client, cfg *config.Config) {
	// Register import task handler
	importHandler := NewImportTaskHandler(db, redis, cfg)
	mux.HandleFunc("import:process", importHandler.Handle)
}
