package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/masjid-admin/internal/csvimport"
	"github.com/pkordes/masjid-admin/internal/domain"
)

// SessionStore persists import sessions between requests.
// *redisstore.SessionStore satisfies it.
type SessionStore interface {
	Save(ctx context.Context, sess *csvimport.Session) error
	Load(ctx context.Context, id uuid.UUID) (*csvimport.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Lock takes an exclusive lock on the session, returning domain.ErrConflict
	// when it is already held. The returned func releases it.
	Lock(ctx context.Context, id uuid.UUID, ttl time.Duration) (func(), error)
}

// BatchCreator writes a batch of prayer times. *PrayerTimeService satisfies it.
type BatchCreator interface {
	BatchCreate(ctx context.Context, masjidID uuid.UUID, inputs []domain.PrayerTimeInput) (domain.BatchResult, error)
}

// submitLockTTL bounds how long a crashed submit can block a retry.
const submitLockTTL = 2 * time.Minute

// ImportService drives import sessions: every call loads the session, applies
// one transition and saves it back.
type ImportService struct {
	store SessionStore
	batch BatchCreator
	now   func() time.Time
}

// NewImportService constructs an ImportService.
func NewImportService(store SessionStore, batch BatchCreator) *ImportService {
	return &ImportService{store: store, batch: batch, now: time.Now}
}

// Open starts a new session for the masjid.
func (s *ImportService) Open(ctx context.Context, masjidID uuid.UUID) (*csvimport.Session, error) {
	sess := csvimport.NewSession(masjidID, s.now())
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("service.ImportService.Open: %w", err)
	}
	return sess, nil
}

// Get returns a session of the masjid.
func (s *ImportService) Get(ctx context.Context, masjidID, id uuid.UUID) (*csvimport.Session, error) {
	sess, err := s.load(ctx, masjidID, id)
	if err != nil {
		return nil, fmt.Errorf("service.ImportService.Get: %w", err)
	}
	return sess, nil
}

// UploadFile parses the file into the session. A file that cannot be parsed
// still saves the session so its error message survives, and the returned
// error wraps domain.ErrParse.
func (s *ImportService) UploadFile(ctx context.Context, masjidID, id uuid.UUID, r io.Reader, filename string) (*csvimport.Session, error) {
	sess, err := s.load(ctx, masjidID, id)
	if err != nil {
		return nil, fmt.Errorf("service.ImportService.UploadFile: %w", err)
	}
	uploadErr := sess.Upload(r, filename)
	if uploadErr != nil && !errors.Is(uploadErr, domain.ErrParse) {
		return nil, fmt.Errorf("service.ImportService.UploadFile: %w", uploadErr)
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("service.ImportService.UploadFile: %w", err)
	}
	if uploadErr != nil {
		return sess, fmt.Errorf("service.ImportService.UploadFile: %w", uploadErr)
	}
	return sess, nil
}

// Assign applies field -> header assignments. An empty header clears the
// field. Either every assignment applies or none does.
func (s *ImportService) Assign(ctx context.Context, masjidID, id uuid.UUID, assignments map[string]string) (*csvimport.Session, error) {
	sess, err := s.load(ctx, masjidID, id)
	if err != nil {
		return nil, fmt.Errorf("service.ImportService.Assign: %w", err)
	}
	fields := make([]string, 0, len(assignments))
	for f := range assignments {
		fields = append(fields, f)
	}
	slices.Sort(fields)
	for _, f := range fields {
		if err := sess.Assign(f, assignments[f]); err != nil {
			return nil, fmt.Errorf("service.ImportService.Assign: %w", err)
		}
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("service.ImportService.Assign: %w", err)
	}
	return sess, nil
}

// Suggest proposes headers for the unmapped fields. Nothing is applied.
func (s *ImportService) Suggest(ctx context.Context, masjidID, id uuid.UUID) (map[string]string, error) {
	sess, err := s.load(ctx, masjidID, id)
	if err != nil {
		return nil, fmt.Errorf("service.ImportService.Suggest: %w", err)
	}
	return sess.Suggest(), nil
}

// Continue moves a fully mapped session to review.
func (s *ImportService) Continue(ctx context.Context, masjidID, id uuid.UUID) (*csvimport.Session, error) {
	return s.transition(ctx, "Continue", masjidID, id, (*csvimport.Session).Continue)
}

// Back steps the session back: review to mapping, mapping to upload.
func (s *ImportService) Back(ctx context.Context, masjidID, id uuid.UUID) (*csvimport.Session, error) {
	return s.transition(ctx, "Back", masjidID, id, (*csvimport.Session).Back)
}

// Review summarises the rows that a submit would write.
func (s *ImportService) Review(ctx context.Context, masjidID, id uuid.UUID) (csvimport.Summary, error) {
	sess, err := s.load(ctx, masjidID, id)
	if err != nil {
		return csvimport.Summary{}, fmt.Errorf("service.ImportService.Review: %w", err)
	}
	sum, err := sess.Review()
	if err != nil {
		return csvimport.Summary{}, fmt.Errorf("service.ImportService.Review: %w", err)
	}
	return sum, nil
}

// Submit writes the session's rows as one batch. On success the session is
// deleted. On failure it stays in review with its error set, and is saved so
// the admin can fix the mapping or retry. A second submit while one is in
// flight fails with domain.ErrConflict.
func (s *ImportService) Submit(ctx context.Context, masjidID, id uuid.UUID) (domain.BatchResult, error) {
	release, err := s.store.Lock(ctx, id, submitLockTTL)
	if err != nil {
		return domain.BatchResult{}, fmt.Errorf("service.ImportService.Submit: %w", err)
	}
	defer release()

	sess, err := s.load(ctx, masjidID, id)
	if err != nil {
		return domain.BatchResult{}, fmt.Errorf("service.ImportService.Submit: %w", err)
	}
	inputs, err := sess.Project()
	if err != nil {
		return domain.BatchResult{}, fmt.Errorf("service.ImportService.Submit: %w", err)
	}

	result, err := s.batch.BatchCreate(ctx, masjidID, inputs)
	if err != nil {
		sess.RecordSubmitError(err)
		if saveErr := s.store.Save(ctx, sess); saveErr != nil {
			err = errors.Join(err, saveErr)
		}
		return domain.BatchResult{}, fmt.Errorf("service.ImportService.Submit: %w", err)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return result, fmt.Errorf("service.ImportService.Submit: %w", err)
	}
	return result, nil
}

// Close abandons a session.
func (s *ImportService) Close(ctx context.Context, masjidID, id uuid.UUID) error {
	if _, err := s.load(ctx, masjidID, id); err != nil {
		return fmt.Errorf("service.ImportService.Close: %w", err)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.ImportService.Close: %w", err)
	}
	return nil
}

func (s *ImportService) transition(ctx context.Context, op string, masjidID, id uuid.UUID, step func(*csvimport.Session) error) (*csvimport.Session, error) {
	sess, err := s.load(ctx, masjidID, id)
	if err != nil {
		return nil, fmt.Errorf("service.ImportService.%s: %w", op, err)
	}
	if err := step(sess); err != nil {
		return nil, fmt.Errorf("service.ImportService.%s: %w", op, err)
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("service.ImportService.%s: %w", op, err)
	}
	return sess, nil
}

// load returns the session, reporting another masjid's session as missing.
func (s *ImportService) load(ctx context.Context, masjidID, id uuid.UUID) (*csvimport.Session, error) {
	sess, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.MasjidID != masjidID {
		return nil, fmt.Errorf("import session %s: %w", id, domain.ErrNotFound)
	}
	return sess, nil
}
