// Package history implements the per-user audit log over the
// request_history relation. Appends are best-effort: a failed log write is
// never allowed to turn a successful operation into a reported failure.
package history

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/user/contactdesk-go/apperror"
)

// Recorder is the append-only face of the audit log, consumed by the other
// store packages.
type Recorder interface {
	Record(ctx context.Context, userID int64, description string)
}

// Service is the full audit-log contract the HTTP layer depends on.
type Service interface {
	Recorder
	List(ctx context.Context, userID int64) ([]Entry, error)
	Clear(ctx context.Context, userID int64) error
}

// HistoryService is the pgx-backed Service implementation.
type HistoryService struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewHistoryService creates a HistoryService.
func NewHistoryService(db *pgxpool.Pool, logger *zap.Logger) *HistoryService {
	return &HistoryService{db: db, logger: logger}
}

// Record appends an entry for the user with the current UTC time. Failures
// are logged and swallowed; the enclosing operation already succeeded and
// stays successful. A crash between an operation and its append can leave
// the operation unlogged, which is accepted.
func (s *HistoryService) Record(ctx context.Context, userID int64, description string) {
	_, err := s.db.Exec(ctx,
		`INSERT INTO request_history (user_id, request_data, request_date) VALUES ($1, $2, $3)`,
		userID, description, time.Now().UTC(),
	)
	if err != nil {
		s.logger.Warn("audit append failed",
			zap.Int64("user_id", userID),
			zap.String("description", description),
			zap.Error(err),
		)
	}
}

// List returns every entry owned by the user, oldest first.
func (s *HistoryService) List(ctx context.Context, userID int64) ([]Entry, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, request_data, request_date FROM request_history WHERE user_id = $1 ORDER BY id`,
		userID,
	)
	if err != nil {
		s.logger.Error("history list failed", zap.Error(err))
		return nil, apperror.NewDatabaseError("failed to list history", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Description, &e.Timestamp); err != nil {
			return nil, apperror.NewDatabaseError("failed to read history entry", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to list history", err)
	}
	return entries, nil
}

// Clear deletes every entry owned by the user. Clearing an empty log is a
// successful no-op.
func (s *HistoryService) Clear(ctx context.Context, userID int64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM request_history WHERE user_id = $1`, userID)
	if err != nil {
		s.logger.Error("history clear failed", zap.Error(err))
		return apperror.NewDatabaseError("failed to clear history", err)
	}
	return nil
}
