// Package repo contains all database access logic for the masjid admin API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/masjid-admin/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test. Begin on a
// pgx.Tx opens a savepoint, so batch writes nest inside the test transaction.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PrayerTimeRepo defines the persistence operations for prayer times.
// Every method is scoped to one masjid; a record belonging to another masjid
// is reported as domain.ErrNotFound.
type PrayerTimeRepo interface {
	// List returns the masjid's records ordered by date ascending, filtered by
	// the optional inclusive date bounds and capped at q.Limit.
	List(ctx context.Context, masjidID uuid.UUID, q domain.PrayerTimeQuery) ([]domain.PrayerTime, error)

	// GetByID retrieves a single record.
	GetByID(ctx context.Context, masjidID, id uuid.UUID) (domain.PrayerTime, error)

	// BatchUpsert writes all records in one transaction. A record whose date
	// already exists for the masjid replaces the stored times. Either every
	// record is written or none is.
	BatchUpsert(ctx context.Context, masjidID uuid.UUID, records []domain.PrayerTime) (int, error)

	// Update overwrites the mutable fields of an existing record and returns
	// the updated row.
	Update(ctx context.Context, rec domain.PrayerTime) (domain.PrayerTime, error)
}

type pgPrayerTimeRepo struct {
	db db
}

// NewPrayerTimeRepo constructs a PrayerTimeRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPrayerTimeRepo(db db) PrayerTimeRepo {
	return &pgPrayerTimeRepo{db: db}
}

// prayerTimeColumns selects every column in the order scanPrayerTime expects.
// Dates and times are read as text so the domain keeps its string form.
const prayerTimeColumns = `
	id, masjid_id, date::text, hijri_date, active,
	fajr_start::text, fajr_jammat::text, sunrise::text,
	dhur_start::text, dhur_jammat::text,
	asr_start::text, asr_start_1::text, asr_jammat::text,
	magrib_start::text, magrib_jammat::text,
	isha_start::text, isha_jammat::text,
	created_at, updated_at`

func (r *pgPrayerTimeRepo) List(ctx context.Context, masjidID uuid.UUID, q domain.PrayerTimeQuery) ([]domain.PrayerTime, error) {
	const sql = `
		SELECT ` + prayerTimeColumns + `
		FROM prayer_times
		WHERE masjid_id = @masjid_id
		  AND (@start_date::text IS NULL OR date >= @start_date::text::date)
		  AND (@end_date::text IS NULL OR date <= @end_date::text::date)
		ORDER BY date ASC
		LIMIT @limit`

	limit := q.Limit
	if limit <= 0 {
		limit = domain.MaxQueryLimit
	}
	args := pgx.NamedArgs{
		"masjid_id":  masjidID,
		"start_date": q.StartDate, // nil becomes NULL
		"end_date":   q.EndDate,
		"limit":      limit,
	}

	rows, err := r.db.Query(ctx, sql, args)
	if err != nil {
		return nil, fmt.Errorf("repo.PrayerTimeRepo.List: %w", mapPgError(err))
	}
	defer rows.Close()

	var out []domain.PrayerTime
	for rows.Next() {
		p, err := scanPrayerTime(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.PrayerTimeRepo.List: scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.PrayerTimeRepo.List: rows: %w", mapPgError(err))
	}
	return out, nil
}

func (r *pgPrayerTimeRepo) GetByID(ctx context.Context, masjidID, id uuid.UUID) (domain.PrayerTime, error) {
	const sql = `
		SELECT ` + prayerTimeColumns + `
		FROM prayer_times
		WHERE id = @id AND masjid_id = @masjid_id`

	row := r.db.QueryRow(ctx, sql, pgx.NamedArgs{"id": id, "masjid_id": masjidID})
	p, err := scanPrayerTime(row)
	if err != nil {
		return domain.PrayerTime{}, fmt.Errorf("repo.PrayerTimeRepo.GetByID: %w", err)
	}
	return p, nil
}

const upsertPrayerTimeSQL = `
	INSERT INTO prayer_times (
		masjid_id, date, hijri_date, active,
		fajr_start, fajr_jammat, sunrise, dhur_start, dhur_jammat,
		asr_start, asr_start_1, asr_jammat,
		magrib_start, magrib_jammat, isha_start, isha_jammat)
	VALUES (
		@masjid_id, @date::text::date, @hijri_date, @active,
		@fajr_start::text::time, @fajr_jammat::text::time, @sunrise::text::time,
		@dhur_start::text::time, @dhur_jammat::text::time,
		@asr_start::text::time, @asr_start_1::text::time, @asr_jammat::text::time,
		@magrib_start::text::time, @magrib_jammat::text::time,
		@isha_start::text::time, @isha_jammat::text::time)
	ON CONFLICT (masjid_id, date) DO UPDATE SET
		hijri_date    = EXCLUDED.hijri_date,
		active        = EXCLUDED.active,
		fajr_start    = EXCLUDED.fajr_start,
		fajr_jammat   = EXCLUDED.fajr_jammat,
		sunrise       = EXCLUDED.sunrise,
		dhur_start    = EXCLUDED.dhur_start,
		dhur_jammat   = EXCLUDED.dhur_jammat,
		asr_start     = EXCLUDED.asr_start,
		asr_start_1   = EXCLUDED.asr_start_1,
		asr_jammat    = EXCLUDED.asr_jammat,
		magrib_start  = EXCLUDED.magrib_start,
		magrib_jammat = EXCLUDED.magrib_jammat,
		isha_start    = EXCLUDED.isha_start,
		isha_jammat   = EXCLUDED.isha_jammat,
		updated_at    = now()`

func (r *pgPrayerTimeRepo) BatchUpsert(ctx context.Context, masjidID uuid.UUID, records []domain.PrayerTime) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("repo.PrayerTimeRepo.BatchUpsert: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	b := &pgx.Batch{}
	for _, rec := range records {
		args := prayerTimeArgs(rec)
		args["masjid_id"] = masjidID
		b.Queue(upsertPrayerTimeSQL, args)
	}

	br := tx.SendBatch(ctx, b)
	for i := range records {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return 0, fmt.Errorf("repo.PrayerTimeRepo.BatchUpsert: row %d (%s): %w", i+1, records[i].Date, mapPgError(err))
		}
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("repo.PrayerTimeRepo.BatchUpsert: close batch: %w", mapPgError(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("repo.PrayerTimeRepo.BatchUpsert: commit: %w", err)
	}
	return len(records), nil
}

func (r *pgPrayerTimeRepo) Update(ctx context.Context, rec domain.PrayerTime) (domain.PrayerTime, error) {
	const sql = `
		UPDATE prayer_times
		SET date          = @date::text::date,
		    hijri_date    = @hijri_date,
		    active        = @active,
		    fajr_start    = @fajr_start::text::time,
		    fajr_jammat   = @fajr_jammat::text::time,
		    sunrise       = @sunrise::text::time,
		    dhur_start    = @dhur_start::text::time,
		    dhur_jammat   = @dhur_jammat::text::time,
		    asr_start     = @asr_start::text::time,
		    asr_start_1   = @asr_start_1::text::time,
		    asr_jammat    = @asr_jammat::text::time,
		    magrib_start  = @magrib_start::text::time,
		    magrib_jammat = @magrib_jammat::text::time,
		    isha_start    = @isha_start::text::time,
		    isha_jammat   = @isha_jammat::text::time,
		    updated_at    = now()
		WHERE id = @id AND masjid_id = @masjid_id
		RETURNING ` + prayerTimeColumns

	args := prayerTimeArgs(rec)
	args["id"] = rec.ID
	args["masjid_id"] = rec.MasjidID

	p, err := scanPrayerTime(r.db.QueryRow(ctx, sql, args))
	if err != nil {
		return domain.PrayerTime{}, fmt.Errorf("repo.PrayerTimeRepo.Update: %w", mapPgError(err))
	}
	return p, nil
}

func prayerTimeArgs(p domain.PrayerTime) pgx.NamedArgs {
	var asr1 *string
	if p.AsrStart1 != nil && *p.AsrStart1 != "" {
		asr1 = p.AsrStart1
	}
	return pgx.NamedArgs{
		"date":          p.Date,
		"hijri_date":    p.HijriDate,
		"active":        p.Active,
		"fajr_start":    p.FajrStart,
		"fajr_jammat":   p.FajrJammat,
		"sunrise":       p.Sunrise,
		"dhur_start":    p.DhurStart,
		"dhur_jammat":   p.DhurJammat,
		"asr_start":     p.AsrStart,
		"asr_start_1":   asr1, // nil becomes NULL
		"asr_jammat":    p.AsrJammat,
		"magrib_start":  p.MagribStart,
		"magrib_jammat": p.MagribJammat,
		"isha_start":    p.IshaStart,
		"isha_jammat":   p.IshaJammat,
	}
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

func scanPrayerTime(s scanner) (domain.PrayerTime, error) {
	var (
		p        domain.PrayerTime
		id       pgtype.UUID
		masjidID pgtype.UUID
		asr1     pgtype.Text
	)

	err := s.Scan(&id, &masjidID, &p.Date, &p.HijriDate, &p.Active,
		&p.FajrStart, &p.FajrJammat, &p.Sunrise,
		&p.DhurStart, &p.DhurJammat,
		&p.AsrStart, &asr1, &p.AsrJammat,
		&p.MagribStart, &p.MagribJammat,
		&p.IshaStart, &p.IshaJammat,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PrayerTime{}, domain.ErrNotFound
		}
		return domain.PrayerTime{}, err
	}

	p.ID = uuid.UUID(id.Bytes)
	p.MasjidID = uuid.UUID(masjidID.Bytes)
	if asr1.Valid {
		v := asr1.String
		p.AsrStart1 = &v
	}
	return p, nil
}

// mapPgError translates Postgres errors caused by bad input into
// domain.ErrValidation so handlers answer 422 rather than 500.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "22007", "22008", "22P02": // invalid datetime format, datetime out of range, invalid text
		return fmt.Errorf("%s: %w", pgErr.Message, domain.ErrValidation)
	case "23503": // foreign_key_violation
		return fmt.Errorf("%s: %w", pgErr.Message, domain.ErrNotFound)
	case "23505": // unique_violation
		return fmt.Errorf("%s: %w", pgErr.Message, domain.ErrConflict)
	}
	return err
}
