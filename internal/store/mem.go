package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/notewall/moderation-backend/internal/models"
)

// MemStore is an in-memory implementation of every port, used by engine
// tests and local development. The Fail* fields inject transient failures:
// when set, the corresponding operations return that error.
type MemStore struct {
	mu sync.Mutex

	reports  map[uuid.UUID]*models.Report
	order    []uuid.UUID
	entries  []models.SecurityLogEntry
	filters  []models.KeywordFilter
	users    map[uuid.UUID]*models.User
	notes    map[uuid.UUID]*models.Note
	comments map[uuid.UUID]*models.Comment

	FailListActive error
	FailQuerySince error
	FailReports    error
	FailDelete     error
}

func NewMemStore() *MemStore {
	return &MemStore{
		reports:  make(map[uuid.UUID]*models.Report),
		users:    make(map[uuid.UUID]*models.User),
		notes:    make(map[uuid.UUID]*models.Note),
		comments: make(map[uuid.UUID]*models.Comment),
	}
}

func (m *MemStore) Get(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailReports != nil {
		return nil, m.FailReports
	}
	report, ok := m.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *report
	return &clone, nil
}

func (m *MemStore) Create(ctx context.Context, report *models.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailReports != nil {
		return m.FailReports
	}
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}
	if report.Status == "" {
		report.Status = models.ReportStatusPending
	}
	clone := *report
	m.reports[report.ID] = &clone
	m.order = append(m.order, report.ID)
	return nil
}

// UpdateStatus is a compare-and-swap under the store lock, mirroring the
// conditional UPDATE of the Postgres adapter.
func (m *MemStore) UpdateStatus(ctx context.Context, id uuid.UUID, update StatusUpdate, expectedStatus string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailReports != nil {
		return m.FailReports
	}
	report, ok := m.reports[id]
	if !ok {
		return ErrNotFound
	}
	if report.Status != expectedStatus {
		return ErrPreconditionFailed
	}
	processedAt := update.ProcessedAt
	report.Status = update.Status
	report.AdminNote = update.AdminNote
	report.ProcessedAt = &processedAt
	report.ProcessedBy = update.ProcessedBy
	report.AutoProcessed = update.AutoProcessed
	report.Priority = update.Priority
	report.Version++
	return nil
}

func (m *MemStore) QueryByStatus(ctx context.Context, status string, limit, offset int) ([]models.Report, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailReports != nil {
		return nil, 0, m.FailReports
	}
	var all []models.Report
	for _, id := range m.order {
		r := m.reports[id]
		if status == "" || r.Status == status {
			all = append(all, *r)
		}
	}
	total := int64(len(all))
	sort.SliceStable(all, func(i, j int) bool { return all[i].Priority > all[j].Priority })
	if offset > len(all) {
		offset = len(all)
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (m *MemStore) QueryCreatedSince(ctx context.Context, t time.Time) ([]models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailReports != nil {
		return nil, m.FailReports
	}
	var out []models.Report
	for _, id := range m.order {
		if r := m.reports[id]; !r.CreatedAt.Before(t) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *MemStore) FindPendingByContent(ctx context.Context, contentType, contentID string) (*models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailReports != nil {
		return nil, m.FailReports
	}
	for _, id := range m.order {
		r := m.reports[id]
		if r.ContentType == contentType && r.ContentID == contentID && r.Status == models.ReportStatusPending {
			clone := *r
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemStore) IncrementDuplicates(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	report, ok := m.reports[id]
	if !ok {
		return ErrNotFound
	}
	report.DuplicateReports++
	return nil
}

func (m *MemStore) Append(ctx context.Context, entry *models.SecurityLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *MemStore) QuerySince(ctx context.Context, t time.Time) ([]models.SecurityLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailQuerySince != nil {
		return nil, m.FailQuerySince
	}
	var out []models.SecurityLogEntry
	for _, e := range m.entries {
		if !e.Timestamp.Before(t) {
			out = append(out, e)
		}
	}
	return out, nil
}

// SecurityEvents returns a copy of every appended entry, oldest first.
// Test helper.
func (m *MemStore) SecurityEvents() []models.SecurityLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.SecurityLogEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *MemStore) ListActive(ctx context.Context) ([]models.KeywordFilter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailListActive != nil {
		return nil, m.FailListActive
	}
	var out []models.KeywordFilter
	for _, f := range m.filters {
		if f.IsActive {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *MemStore) List(ctx context.Context) ([]models.KeywordFilter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.KeywordFilter, len(m.filters))
	copy(out, m.filters)
	return out, nil
}

func (m *MemStore) CreateFilter(ctx context.Context, filter *models.KeywordFilter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if filter.ID == uuid.Nil {
		filter.ID = uuid.New()
	}
	filter.Keyword = strings.ToLower(filter.Keyword)
	m.filters = append(m.filters, *filter)
	return nil
}

func (m *MemStore) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.filters {
		if m.filters[i].ID == id {
			m.filters[i].IsActive = active
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemStore) AddUser(user models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	clone := user
	m.users[user.ID] = &clone
}

func (m *MemStore) AddNote(note models.Note) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	clone := note
	m.notes[note.ID] = &clone
}

func (m *MemStore) AddComment(comment models.Comment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	clone := comment
	m.comments[comment.ID] = &clone
}

func (m *MemStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (m *MemStore) GetContent(ctx context.Context, contentType, contentID string) (*models.Note, *models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, err := uuid.Parse(contentID)
	if err != nil {
		return nil, nil, ErrInvalidInput
	}
	switch contentType {
	case models.ContentTypeNote:
		if note, ok := m.notes[id]; ok {
			clone := *note
			return &clone, nil, nil
		}
	case models.ContentTypeComment:
		if comment, ok := m.comments[id]; ok {
			clone := *comment
			return nil, &clone, nil
		}
	default:
		return nil, nil, ErrInvalidInput
	}
	return nil, nil, ErrNotFound
}

func (m *MemStore) DeleteContent(ctx context.Context, contentType, contentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailDelete != nil {
		return m.FailDelete
	}
	id, err := uuid.Parse(contentID)
	if err != nil {
		return ErrInvalidInput
	}
	switch contentType {
	case models.ContentTypeNote:
		if _, ok := m.notes[id]; !ok {
			return ErrNotFound
		}
		delete(m.notes, id)
	case models.ContentTypeComment:
		if _, ok := m.comments[id]; !ok {
			return ErrNotFound
		}
		delete(m.comments, id)
	default:
		return ErrInvalidInput
	}
	return nil
}

// MemContentStore adapts MemStore's content methods to the ContentStore
// interface name set.
type MemContentStore struct {
	*MemStore
}

func (m MemContentStore) Get(ctx context.Context, contentType, contentID string) (*models.Note, *models.Comment, error) {
	return m.GetContent(ctx, contentType, contentID)
}

func (m MemContentStore) Delete(ctx context.Context, contentType, contentID string) error {
	return m.DeleteContent(ctx, contentType, contentID)
}

// MemFilterStore adapts MemStore's filter methods to KeywordFilterStore.
type MemFilterStore struct {
	*MemStore
}

func (m MemFilterStore) Create(ctx context.Context, filter *models.KeywordFilter) error {
	return m.CreateFilter(ctx, filter)
}

// MemUserStore adapts MemStore's user methods to the UserStore interface.
type MemUserStore struct {
	*MemStore
}

func (m MemUserStore) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return m.GetUser(ctx, id)
}

func (m MemUserStore) CountAll(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

func (m MemUserStore) CountSince(ctx context.Context, t time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, u := range m.users {
		if !u.CreatedAt.Before(t) {
			count++
		}
	}
	return count, nil
}

func (m MemUserStore) ListWithLastActivitySince(ctx context.Context, t time.Time) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.users {
		if u.LastActivity != nil && !u.LastActivity.Before(t) {
			out = append(out, *u)
		}
	}
	return out, nil
}

// MemNoteStore adapts MemStore's note methods to the NoteStore interface.
type MemNoteStore struct {
	*MemStore
}

func (m MemNoteStore) CountAll(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.notes)), nil
}

func (m MemNoteStore) CountSince(ctx context.Context, t time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, n := range m.notes {
		if !n.CreatedAt.Before(t) {
			count++
		}
	}
	return count, nil
}

func (m MemNoteStore) CountWithImages(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, n := range m.notes {
		if n.ImageURL != "" {
			count++
		}
	}
	return count, nil
}

// MemCommentStore adapts MemStore's comment methods to CommentStore.
type MemCommentStore struct {
	*MemStore
}

func (m MemCommentStore) CountAll(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.comments)), nil
}

func (m MemCommentStore) CountSince(ctx context.Context, t time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, c := range m.comments {
		if !c.CreatedAt.Before(t) {
			count++
		}
	}
	return count, nil
}
