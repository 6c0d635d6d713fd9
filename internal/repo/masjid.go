package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/masjid-admin/internal/domain"
)

// MasjidRepo defines the persistence operations this service needs for
// masjids. Masjid CRUD itself lives elsewhere; only lookups and the
// has_times flag are handled here.
type MasjidRepo interface {
	// GetByID retrieves a masjid by primary key.
	// Returns domain.ErrNotFound if no masjid with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Masjid, error)

	// MarkHasTimes records that the masjid now has prayer times.
	// Returns domain.ErrNotFound if no masjid with that ID exists.
	MarkHasTimes(ctx context.Context, id uuid.UUID) error

	// Create inserts a masjid. Used by seeding and tests.
	Create(ctx context.Context, m domain.Masjid) (domain.Masjid, error)
}

type pgMasjidRepo struct {
	db db
}

// NewMasjidRepo constructs a MasjidRepo backed by the provided db connection.
func NewMasjidRepo(db db) MasjidRepo {
	return &pgMasjidRepo{db: db}
}

const masjidColumns = `id, name, type, locale, madhab, website, has_times, active, created_at, updated_at`

func (r *pgMasjidRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Masjid, error) {
	const q = `SELECT ` + masjidColumns + ` FROM masjids WHERE id = @id`

	m, err := scanMasjid(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Masjid{}, fmt.Errorf("repo.MasjidRepo.GetByID: %w", err)
	}
	return m, nil
}

func (r *pgMasjidRepo) MarkHasTimes(ctx context.Context, id uuid.UUID) error {
	const q = `
		UPDATE masjids
		SET has_times = true, updated_at = now()
		WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.MasjidRepo.MarkHasTimes: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.MasjidRepo.MarkHasTimes: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgMasjidRepo) Create(ctx context.Context, m domain.Masjid) (domain.Masjid, error) {
	const q = `
		INSERT INTO masjids (name, type, locale, madhab, website, active)
		VALUES (@name, @type, @locale, @madhab, @website, @active)
		RETURNING ` + masjidColumns

	kind := m.Type
	if kind == "" {
		kind = "masjid"
	}
	args := pgx.NamedArgs{
		"name":    m.Name,
		"type":    kind,
		"locale":  m.Locale,
		"madhab":  m.Madhab,
		"website": m.Website,
		"active":  m.Active,
	}

	out, err := scanMasjid(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Masjid{}, fmt.Errorf("repo.MasjidRepo.Create: %w", err)
	}
	return out, nil
}

func scanMasjid(s scanner) (domain.Masjid, error) {
	var (
		m  domain.Masjid
		id pgtype.UUID
	)
	err := s.Scan(&id, &m.Name, &m.Type, &m.Locale, &m.Madhab, &m.Website,
		&m.HasTimes, &m.Active, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Masjid{}, domain.ErrNotFound
		}
		return domain.Masjid{}, err
	}
	m.ID = uuid.UUID(id.Bytes)
	return m, nil
}
