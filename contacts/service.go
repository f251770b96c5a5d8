// Package contacts implements the per-user contact store. Every query in
// this package carries a user_id predicate: a contact owned by someone else
// is indistinguishable from one that does not exist.
package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/user/contactdesk-go/apperror"
	"github.com/user/contactdesk-go/history"
)

// Service is the Contact Store contract the HTTP layer depends on.
type Service interface {
	Add(ctx context.Context, userID int64, req ContactRequest) (int64, error)
	Get(ctx context.Context, userID, contactID int64) (*Contact, error)
	List(ctx context.Context, userID int64) ([]Contact, error)
	Update(ctx context.Context, userID, contactID int64, req ContactRequest) error
	Delete(ctx context.Context, userID, contactID int64) error
	Search(ctx context.Context, userID int64, req SearchRequest) ([]Contact, error)
}

// ContactService is the pgx-backed Service implementation. Each operation
// records an audit entry through the history recorder; mutations record only
// after they succeed, reads record unconditionally.
type ContactService struct {
	db       *pgxpool.Pool
	recorder history.Recorder
	logger   *zap.Logger
}

// NewContactService creates a ContactService.
func NewContactService(db *pgxpool.Pool, recorder history.Recorder, logger *zap.Logger) *ContactService {
	return &ContactService{db: db, recorder: recorder, logger: logger}
}

// Add inserts a new contact for the user and returns its assigned id.
func (s *ContactService) Add(ctx context.Context, userID int64, req ContactRequest) (int64, error) {
	var contactID int64
	err := s.db.QueryRow(ctx,
		`INSERT INTO contacts (user_id, name, phone_number, email, address)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		userID, req.Name, req.PhoneNumber, req.Email, req.Address,
	).Scan(&contactID)
	if err != nil {
		s.logger.Error("contact insert failed", zap.Error(err))
		return 0, apperror.NewDatabaseError("failed to add contact", err)
	}

	s.recorder.Record(ctx, userID, fmt.Sprintf("AddContact: %s, %s", req.Name, req.PhoneNumber))
	return contactID, nil
}

// Get fetches a single contact owned by the user. The audit entry is
// recorded whether or not the contact turns out to exist.
func (s *ContactService) Get(ctx context.Context, userID, contactID int64) (*Contact, error) {
	s.recorder.Record(ctx, userID, fmt.Sprintf("GetContact: ID=%d", contactID))

	row := s.db.QueryRow(ctx,
		`SELECT id, name, phone_number, email, address
		 FROM contacts
		 WHERE id = $1 AND user_id = $2`,
		contactID, userID,
	)
	contact, err := scanContact(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("contact not found", nil)
		}
		s.logger.Error("contact fetch failed", zap.Error(err))
		return nil, apperror.NewDatabaseError("failed to get contact", err)
	}
	return contact, nil
}

// List returns every contact owned by the user.
func (s *ContactService) List(ctx context.Context, userID int64) ([]Contact, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, phone_number, email, address
		 FROM contacts
		 WHERE user_id = $1
		 ORDER BY id`,
		userID,
	)
	if err != nil {
		s.logger.Error("contact list failed", zap.Error(err))
		return nil, apperror.NewDatabaseError("failed to list contacts", err)
	}
	defer rows.Close()

	contacts, err := collectContacts(rows)
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, userID, "GetAllContacts")
	return contacts, nil
}

// Update replaces all four mutable fields of a contact owned by the user.
// A contact that is absent or owned by someone else is NotFound.
func (s *ContactService) Update(ctx context.Context, userID, contactID int64, req ContactRequest) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE contacts
		 SET name = $1, phone_number = $2, email = $3, address = $4
		 WHERE id = $5 AND user_id = $6`,
		req.Name, req.PhoneNumber, req.Email, req.Address, contactID, userID,
	)
	if err != nil {
		s.logger.Error("contact update failed", zap.Error(err))
		return apperror.NewDatabaseError("failed to update contact", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("contact not found", nil)
	}

	s.recorder.Record(ctx, userID,
		fmt.Sprintf("UpdateContact: ID=%d, Name=%s, PhoneNumber=%s", contactID, req.Name, req.PhoneNumber))
	return nil
}

// Delete removes a contact owned by the user. Deleting an absent or
// foreign-owned contact is NotFound, not an error of any other kind.
func (s *ContactService) Delete(ctx context.Context, userID, contactID int64) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM contacts WHERE id = $1 AND user_id = $2`,
		contactID, userID,
	)
	if err != nil {
		s.logger.Error("contact delete failed", zap.Error(err))
		return apperror.NewDatabaseError("failed to delete contact", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("contact not found", nil)
	}

	s.recorder.Record(ctx, userID, fmt.Sprintf("DeleteContact: ID=%d", contactID))
	return nil
}

// Search returns the user's contacts matching every supplied filter as a
// case-sensitive substring, AND-combined.
func (s *ContactService) Search(ctx context.Context, userID int64, req SearchRequest) ([]Contact, error) {
	query, args := buildSearchQuery(userID, req)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		s.logger.Error("contact search failed", zap.Error(err))
		return nil, apperror.NewDatabaseError("failed to search contacts", err)
	}
	defer rows.Close()

	contacts, err := collectContacts(rows)
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, userID,
		fmt.Sprintf("SearchContacts: Name=%s, PhoneNumber=%s, Email=%s, Address=%s",
			deref(req.Name), deref(req.PhoneNumber), deref(req.Email), deref(req.Address)))
	return contacts, nil
}

// buildSearchQuery assembles the filtered SELECT. Filters are appended in a
// fixed order so placeholder numbering stays aligned with args.
func buildSearchQuery(userID int64, req SearchRequest) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, name, phone_number, email, address FROM contacts WHERE user_id = $1`)
	args := []interface{}{userID}

	addFilter := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, "%"+*value+"%")
		fmt.Fprintf(&sb, " AND %s LIKE $%d", column, len(args))
	}
	addFilter("name", req.Name)
	addFilter("phone_number", req.PhoneNumber)
	addFilter("email", req.Email)
	addFilter("address", req.Address)

	sb.WriteString(" ORDER BY id")
	return sb.String(), args
}

// rowScanner covers both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*Contact, error) {
	var c Contact
	var email, address sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &c.PhoneNumber, &email, &address); err != nil {
		return nil, err
	}
	if email.Valid {
		c.Email = &email.String
	}
	if address.Valid {
		c.Address = &address.String
	}
	return &c, nil
}

func collectContacts(rows pgx.Rows) ([]Contact, error) {
	contacts := []Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to read contact", err)
		}
		contacts = append(contacts, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to read contacts", err)
	}
	return contacts, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
