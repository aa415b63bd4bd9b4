package userpool

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Records is the local store of user records. Exactly one non-deleted
// record exists per email; the unique constraint on the email column is the
// arbiter for concurrent duplicate registrations.
type Records interface {
	repository.Repository[*UserRecord]

	FindByEmail(ctx context.Context, email string) (*UserRecord, error)
	FindByEmailTx(ctx context.Context, tx bun.IDB, email string) (*UserRecord, error)

	Insert(ctx context.Context, record *UserRecord) (*UserRecord, error)
	InsertTx(ctx context.Context, tx bun.IDB, record *UserRecord) (*UserRecord, error)

	UpdateByEmail(ctx context.Context, email string, changes RecordChanges) (*UserRecord, error)
	UpdateByEmailTx(ctx context.Context, tx bun.IDB, email string, changes RecordChanges) (*UserRecord, error)

	LinkExternalID(ctx context.Context, email, externalID string) error
	LinkExternalIDTx(ctx context.Context, tx bun.IDB, email, externalID string) error

	ListPage(ctx context.Context, offset, limit int) ([]*UserRecord, error)
	ListPageTx(ctx context.Context, tx bun.IDB, offset, limit int) ([]*UserRecord, error)
}

type records struct {
	repository.Repository[*UserRecord]
	db *bun.DB
}

var (
	_ Records                            = (*records)(nil)
	_ repository.Repository[*UserRecord] = (*records)(nil)
)

func NewRecordsRepository(db *bun.DB) Records {
	repo := repository.NewRepository[*UserRecord](db, repository.ModelHandlers[*UserRecord]{
		NewRecord: func() *UserRecord { return &UserRecord{} },
		GetID: func(r *UserRecord) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *UserRecord, id uuid.UUID) {
			if r != nil {
				r.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &records{
		Repository: repo,
		db:         db,
	}
}

func (r *records) FindByEmail(ctx context.Context, email string) (*UserRecord, error) {
	return r.FindByEmailTx(ctx, r.db, email)
}

func (r *records) FindByEmailTx(ctx context.Context, tx bun.IDB, email string) (*UserRecord, error) {
	record := &UserRecord{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", strings.TrimSpace(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, cloneWithCause(ErrRecordNotFound, err, map[string]any{
				"email": email,
			})
		}
		return nil, WrapPersistenceFailure(err, "failed to look up user record")
	}

	return record, nil
}

func (r *records) Insert(ctx context.Context, record *UserRecord) (*UserRecord, error) {
	return r.InsertTx(ctx, r.db, record)
}

func (r *records) InsertTx(ctx context.Context, tx bun.IDB, record *UserRecord) (*UserRecord, error) {
	prepareRecordDefaults(record)

	created, err := r.Repository.CreateTx(ctx, tx, record)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, cloneWithCause(ErrAccountExists, err, map[string]any{
				"email": record.Email,
			})
		}
		return nil, WrapPersistenceFailure(err, "failed to insert user record")
	}

	return created, nil
}

func (r *records) UpdateByEmail(ctx context.Context, email string, changes RecordChanges) (*UserRecord, error) {
	return r.UpdateByEmailTx(ctx, r.db, email, changes)
}

func (r *records) UpdateByEmailTx(ctx context.Context, tx bun.IDB, email string, changes RecordChanges) (*UserRecord, error) {
	if changes.IsEmpty() {
		return r.FindByEmailTx(ctx, tx, email)
	}

	q := tx.NewUpdate().
		Model((*UserRecord)(nil)).
		Where("?TableAlias.email = ?", email).
		Where("?TableAlias.deleted_at IS NULL")

	if changes.Name != nil {
		q = q.Set("name = ?", *changes.Name)
	}
	if changes.Role != nil {
		q = q.Set("user_role = ?", *changes.Role)
	}
	q = q.Set("updated_at = ?", time.Now())

	res, err := q.Exec(ctx)
	if err != nil {
		return nil, WrapPersistenceFailure(err, "failed to update user record")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, cloneWithCause(ErrRecordNotFound, nil, map[string]any{
			"email": email,
		})
	}

	return r.FindByEmailTx(ctx, tx, email)
}

func (r *records) LinkExternalID(ctx context.Context, email, externalID string) error {
	return r.LinkExternalIDTx(ctx, r.db, email, externalID)
}

func (r *records) LinkExternalIDTx(ctx context.Context, tx bun.IDB, email, externalID string) error {
	_, err := tx.NewUpdate().
		Model((*UserRecord)(nil)).
		Set("external_id = ?", externalID).
		Where("?TableAlias.email = ?", email).
		Where("?TableAlias.deleted_at IS NULL").
		Exec(ctx)

	if err != nil {
		return WrapPersistenceFailure(err, "failed to link external identity")
	}

	return nil
}

func (r *records) ListPage(ctx context.Context, offset, limit int) ([]*UserRecord, error) {
	return r.ListPageTx(ctx, r.db, offset, limit)
}

// ListPageTx returns records ordered by creation time. Callers that need a
// "more pages" flag ask for one row past their page size and trim it.
func (r *records) ListPageTx(ctx context.Context, tx bun.IDB, offset, limit int) ([]*UserRecord, error) {
	recs := []*UserRecord{}
	err := tx.NewSelect().
		Model(&recs).
		OrderExpr("?TableAlias.created_at ASC").
		Offset(offset).
		Limit(limit).
		Scan(ctx)

	if err != nil {
		return nil, WrapPersistenceFailure(err, "failed to list user records")
	}

	return recs, nil
}

func prepareRecordDefaults(record *UserRecord) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = RoleUser
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key value")
}
