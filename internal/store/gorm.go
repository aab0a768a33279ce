package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/notewall/moderation-backend/internal/models"
)

// wrapErr classifies a GORM error into one of the store error kinds while
// keeping the driver error in the chain.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

// GormReportStore implements ReportStore on Postgres.
type GormReportStore struct {
	db *gorm.DB
}

func NewGormReportStore(db *gorm.DB) *GormReportStore {
	return &GormReportStore{db: db}
}

func (s *GormReportStore) Get(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var report models.Report
	if err := s.db.WithContext(ctx).First(&report, "id = ?", id).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &report, nil
}

func (s *GormReportStore) Create(ctx context.Context, report *models.Report) error {
	return wrapErr(s.db.WithContext(ctx).Create(report).Error)
}

// UpdateStatus applies the resolution fields only while the row still has
// expectedStatus, bumping the version. Zero rows affected means either the
// report vanished (ErrNotFound) or another processor won the race
// (ErrPreconditionFailed).
func (s *GormReportStore) UpdateStatus(ctx context.Context, id uuid.UUID, update StatusUpdate, expectedStatus string) error {
	result := s.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ? AND status = ?", id, expectedStatus).
		Updates(map[string]interface{}{
			"status":         update.Status,
			"admin_note":     update.AdminNote,
			"processed_at":   update.ProcessedAt,
			"processed_by":   update.ProcessedBy,
			"auto_processed": update.AutoProcessed,
			"priority":       update.Priority,
			"version":        gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return wrapErr(result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Report{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return wrapErr(err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrPreconditionFailed
	}
	return nil
}

func (s *GormReportStore) QueryByStatus(ctx context.Context, status string, limit, offset int) ([]models.Report, int64, error) {
	var reports []models.Report
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapErr(err)
	}
	if err := query.Order("priority DESC, created_at DESC").Limit(limit).Offset(offset).Find(&reports).Error; err != nil {
		return nil, 0, wrapErr(err)
	}
	return reports, total, nil
}

func (s *GormReportStore) QueryCreatedSince(ctx context.Context, t time.Time) ([]models.Report, error) {
	var reports []models.Report
	if err := s.db.WithContext(ctx).Where("created_at >= ?", t).Order("created_at ASC").Find(&reports).Error; err != nil {
		return nil, wrapErr(err)
	}
	return reports, nil
}

func (s *GormReportStore) FindPendingByContent(ctx context.Context, contentType, contentID string) (*models.Report, error) {
	var report models.Report
	err := s.db.WithContext(ctx).
		Where("content_type = ? AND content_id = ? AND status = ?", contentType, contentID, models.ReportStatusPending).
		Order("created_at ASC").
		First(&report).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return &report, nil
}

func (s *GormReportStore) IncrementDuplicates(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ?", id).
		Update("duplicate_reports", gorm.Expr("duplicate_reports + 1"))
	if result.Error != nil {
		return wrapErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GormContentStore implements ContentStore over the notes and comments
// tables. Deletes are soft (gorm.DeletedAt) so approved takedowns stay
// auditable.
type GormContentStore struct {
	db *gorm.DB
}

func NewGormContentStore(db *gorm.DB) *GormContentStore {
	return &GormContentStore{db: db}
}

func (s *GormContentStore) Get(ctx context.Context, contentType, contentID string) (*models.Note, *models.Comment, error) {
	id, err := uuid.Parse(contentID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: bad content id %q", ErrInvalidInput, contentID)
	}
	switch contentType {
	case models.ContentTypeNote:
		var note models.Note
		if err := s.db.WithContext(ctx).First(&note, "id = ?", id).Error; err != nil {
			return nil, nil, wrapErr(err)
		}
		return &note, nil, nil
	case models.ContentTypeComment:
		var comment models.Comment
		if err := s.db.WithContext(ctx).First(&comment, "id = ?", id).Error; err != nil {
			return nil, nil, wrapErr(err)
		}
		return nil, &comment, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown content type %q", ErrInvalidInput, contentType)
	}
}

func (s *GormContentStore) Delete(ctx context.Context, contentType, contentID string) error {
	id, err := uuid.Parse(contentID)
	if err != nil {
		return fmt.Errorf("%w: bad content id %q", ErrInvalidInput, contentID)
	}

	var result *gorm.DB
	switch contentType {
	case models.ContentTypeNote:
		result = s.db.WithContext(ctx).Delete(&models.Note{}, "id = ?", id)
	case models.ContentTypeComment:
		result = s.db.WithContext(ctx).Delete(&models.Comment{}, "id = ?", id)
	default:
		return fmt.Errorf("%w: unknown content type %q", ErrInvalidInput, contentType)
	}
	if result.Error != nil {
		return wrapErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GormSecurityLogStore implements SecurityLogStore on Postgres.
type GormSecurityLogStore struct {
	db *gorm.DB
}

func NewGormSecurityLogStore(db *gorm.DB) *GormSecurityLogStore {
	return &GormSecurityLogStore{db: db}
}

func (s *GormSecurityLogStore) Append(ctx context.Context, entry *models.SecurityLogEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	return wrapErr(s.db.WithContext(ctx).Create(entry).Error)
}

func (s *GormSecurityLogStore) QuerySince(ctx context.Context, t time.Time) ([]models.SecurityLogEntry, error) {
	var entries []models.SecurityLogEntry
	if err := s.db.WithContext(ctx).Where("timestamp >= ?", t).Order("timestamp ASC").Find(&entries).Error; err != nil {
		return nil, wrapErr(err)
	}
	return entries, nil
}

// GormKeywordFilterStore implements KeywordFilterStore on Postgres.
type GormKeywordFilterStore struct {
	db *gorm.DB
}

func NewGormKeywordFilterStore(db *gorm.DB) *GormKeywordFilterStore {
	return &GormKeywordFilterStore{db: db}
}

func (s *GormKeywordFilterStore) ListActive(ctx context.Context) ([]models.KeywordFilter, error) {
	var filters []models.KeywordFilter
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("keyword ASC").Find(&filters).Error; err != nil {
		return nil, wrapErr(err)
	}
	return filters, nil
}

func (s *GormKeywordFilterStore) List(ctx context.Context) ([]models.KeywordFilter, error) {
	var filters []models.KeywordFilter
	if err := s.db.WithContext(ctx).Order("keyword ASC").Find(&filters).Error; err != nil {
		return nil, wrapErr(err)
	}
	return filters, nil
}

func (s *GormKeywordFilterStore) Create(ctx context.Context, filter *models.KeywordFilter) error {
	return wrapErr(s.db.WithContext(ctx).Create(filter).Error)
}

func (s *GormKeywordFilterStore) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result := s.db.WithContext(ctx).Model(&models.KeywordFilter{}).
		Where("id = ?", id).
		Update("is_active", active)
	if result.Error != nil {
		return wrapErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GormUserStore implements the read-only UserStore view.
type GormUserStore struct {
	db *gorm.DB
}

func NewGormUserStore(db *gorm.DB) *GormUserStore {
	return &GormUserStore{db: db}
}

func (s *GormUserStore) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &user, nil
}

func (s *GormUserStore) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, wrapErr(err)
}

func (s *GormUserStore) CountSince(ctx context.Context, t time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("created_at >= ?", t).Count(&count).Error
	return count, wrapErr(err)
}

func (s *GormUserStore) ListWithLastActivitySince(ctx context.Context, t time.Time) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Where("last_activity >= ?", t).Find(&users).Error; err != nil {
		return nil, wrapErr(err)
	}
	return users, nil
}

// GormNoteStore implements the read-only NoteStore view.
type GormNoteStore struct {
	db *gorm.DB
}

func NewGormNoteStore(db *gorm.DB) *GormNoteStore {
	return &GormNoteStore{db: db}
}

func (s *GormNoteStore) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Note{}).Count(&count).Error
	return count, wrapErr(err)
}

func (s *GormNoteStore) CountSince(ctx context.Context, t time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Note{}).Where("created_at >= ?", t).Count(&count).Error
	return count, wrapErr(err)
}

func (s *GormNoteStore) CountWithImages(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Note{}).Where("image_url <> ''").Count(&count).Error
	return count, wrapErr(err)
}

// GormCommentStore implements the read-only CommentStore view.
type GormCommentStore struct {
	db *gorm.DB
}

func NewGormCommentStore(db *gorm.DB) *GormCommentStore {
	return &GormCommentStore{db: db}
}

func (s *GormCommentStore) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Comment{}).Count(&count).Error
	return count, wrapErr(err)
}

func (s *GormCommentStore) CountSince(ctx context.Context, t time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Comment{}).Where("created_at >= ?", t).Count(&count).Error
	return count, wrapErr(err)
}
