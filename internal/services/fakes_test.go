package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/test-session-service/internal/grader"
	"github.com/SAP-F-2025/test-session-service/internal/models"
	"github.com/SAP-F-2025/test-session-service/internal/repositories"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ===== IN-MEMORY REPOSITORY =====

type memStore struct {
	banks     map[string]models.QuestionBank
	questions map[string]models.Question
	takers    map[string]models.TestTaker
	sessions  map[string]models.TestSession
}

func (s *memStore) clone() *memStore {
	out := &memStore{
		banks:     make(map[string]models.QuestionBank, len(s.banks)),
		questions: make(map[string]models.Question, len(s.questions)),
		takers:    make(map[string]models.TestTaker, len(s.takers)),
		sessions:  make(map[string]models.TestSession, len(s.sessions)),
	}
	for k, v := range s.banks {
		out.banks[k] = v
	}
	for k, v := range s.questions {
		out.questions[k] = v.Snapshot()
	}
	for k, v := range s.takers {
		out.takers[k] = cloneTaker(v)
	}
	for k, v := range s.sessions {
		out.sessions[k] = cloneSession(v)
	}
	return out
}

func cloneTaker(t models.TestTaker) models.TestTaker {
	if t.TestSessionID != nil {
		id := *t.TestSessionID
		t.TestSessionID = &id
	}
	return t
}

func cloneSession(s models.TestSession) models.TestSession {
	questions := make([]models.Question, len(s.Questions))
	for i, q := range s.Questions {
		questions[i] = q.Snapshot()
	}
	s.Questions = questions
	s.Answers = append([]models.UserAnswer{}, s.Answers...)
	if s.Score != nil {
		score := *s.Score
		s.Score = &score
	}
	feedback := make(map[string]string)
	for k, v := range s.AIFeedback.Data() {
		feedback[k] = v
	}
	s.AIFeedback = datatypes.NewJSONType(feedback)
	return s
}

type fakeRepository struct {
	mu   sync.Mutex
	txMu sync.Mutex
	st   *memStore

	sessionCreates atomic.Int32
	takerWrites    atomic.Int32

	// staleBankLists stands in for a bank-question cache entry that outlived a write
	staleBankLists map[string][]models.Question
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{st: newMemStore()}
}

func newMemStore() *memStore {
	return &memStore{
		banks:     map[string]models.QuestionBank{},
		questions: map[string]models.Question{},
		takers:    map[string]models.TestTaker{},
		sessions:  map[string]models.TestSession{},
	}
}

func (r *fakeRepository) QuestionBank() repositories.QuestionBankRepository { return &fakeBankRepo{r} }
func (r *fakeRepository) Question() repositories.QuestionRepository         { return &fakeQuestionRepo{r} }
func (r *fakeRepository) TestTaker() repositories.TestTakerRepository       { return &fakeTakerRepo{r} }
func (r *fakeRepository) TestSession() repositories.TestSessionRepository   { return &fakeSessionRepo{r} }
func (r *fakeRepository) Ping(ctx context.Context) error                    { return nil }
func (r *fakeRepository) Close() error                                      { return nil }

// WithTransaction serializes transactions and restores the store when fn fails
func (r *fakeRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	r.mu.Lock()
	backup := r.st.clone()
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.st = backup
		r.mu.Unlock()
		return err
	}
	return nil
}

// ===== FIXTURE HELPERS =====

func (r *fakeRepository) addBank(name string) string {
	bank := models.QuestionBank{Name: name}
	_ = bank.BeforeCreate(nil)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.st.banks[bank.ID] = bank
	return bank.ID
}

func (r *fakeRepository) addQuestion(q models.Question) models.Question {
	_ = q.BeforeCreate(nil)
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.st.questions[q.ID] = q.Snapshot()
	return q
}

func (r *fakeRepository) addTaker(name string) string {
	taker := models.TestTaker{Name: name, Contact: strings.ToLower(name) + "@example.com"}
	_ = taker.BeforeCreate(nil)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.st.takers[taker.ID] = taker
	return taker.ID
}

func (r *fakeRepository) taker(id string) models.TestTaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneTaker(r.st.takers[id])
}

func (r *fakeRepository) setStaleBankList(bankID string, questions ...models.Question) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.staleBankLists == nil {
		r.staleBankLists = map[string][]models.Question{}
	}
	r.staleBankLists[bankID] = questions
}

func (r *fakeRepository) sessionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.st.sessions)
}

func strPtr(s string) *string { return &s }

// ===== SUB-REPOSITORIES =====

type fakeBankRepo struct{ r *fakeRepository }

func (f *fakeBankRepo) Create(ctx context.Context, tx *gorm.DB, bank *models.QuestionBank) error {
	_ = bank.BeforeCreate(nil)
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	stored := *bank
	stored.Questions = nil
	f.r.st.banks[bank.ID] = stored
	return nil
}

func (f *fakeBankRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.QuestionBank, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	bank, ok := f.r.st.banks[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	for _, q := range f.r.st.questions {
		if q.QuestionBankID == id {
			bank.QuestionCount++
		}
	}
	return &bank, nil
}

func (f *fakeBankRepo) List(ctx context.Context, tx *gorm.DB) ([]*models.QuestionBank, error) {
	f.r.mu.Lock()
	ids := make([]string, 0, len(f.r.st.banks))
	for id := range f.r.st.banks {
		ids = append(ids, id)
	}
	f.r.mu.Unlock()
	sort.Strings(ids)

	out := make([]*models.QuestionBank, 0, len(ids))
	for _, id := range ids {
		bank, err := f.GetByID(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, bank)
	}
	return out, nil
}

func (f *fakeBankRepo) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, ok := f.r.st.banks[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.r.st.banks, id)
	for qid, q := range f.r.st.questions {
		if q.QuestionBankID == id {
			delete(f.r.st.questions, qid)
		}
	}
	return nil
}

type fakeQuestionRepo struct{ r *fakeRepository }

func (f *fakeQuestionRepo) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	_ = question.BeforeCreate(nil)
	question.CreatedAt = time.Now()
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	f.r.st.questions[question.ID] = question.Snapshot()
	return nil
}

func (f *fakeQuestionRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Question, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	q, ok := f.r.st.questions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := q.Snapshot()
	return &cp, nil
}

func (f *fakeQuestionRepo) GetByBank(ctx context.Context, tx *gorm.DB, bankID string) ([]*models.Question, error) {
	f.r.mu.Lock()
	stale, ok := f.r.staleBankLists[bankID]
	f.r.mu.Unlock()
	if ok {
		out := make([]*models.Question, 0, len(stale))
		for _, q := range stale {
			cp := q.Snapshot()
			out = append(out, &cp)
		}
		return out, nil
	}
	return f.ListForSnapshot(ctx, tx, bankID)
}

func (f *fakeQuestionRepo) ListForSnapshot(ctx context.Context, tx *gorm.DB, bankID string) ([]*models.Question, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var out []*models.Question
	for _, q := range f.r.st.questions {
		if q.QuestionBankID == bankID {
			cp := q.Snapshot()
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeQuestionRepo) NextOrder(ctx context.Context, tx *gorm.DB, bankID string) (int, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	next := 0
	for _, q := range f.r.st.questions {
		if q.QuestionBankID == bankID && q.Order >= next {
			next = q.Order + 1
		}
	}
	return next, nil
}

func (f *fakeQuestionRepo) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, ok := f.r.st.questions[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.r.st.questions, id)
	return nil
}

type fakeTakerRepo struct{ r *fakeRepository }

func (f *fakeTakerRepo) Create(ctx context.Context, tx *gorm.DB, taker *models.TestTaker) error {
	_ = taker.BeforeCreate(nil)
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	f.r.st.takers[taker.ID] = cloneTaker(*taker)
	return nil
}

func (f *fakeTakerRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.TestTaker, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	t, ok := f.r.st.takers[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := cloneTaker(t)
	return &cp, nil
}

func (f *fakeTakerRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.TestTakerFilters) ([]*repositories.TestTakerRow, int64, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()

	var rows []*repositories.TestTakerRow
	for _, t := range f.r.st.takers {
		if filters.Status != nil && t.TestStatus != *filters.Status {
			continue
		}
		row := &repositories.TestTakerRow{TestTaker: cloneTaker(t)}
		if t.TestSessionID != nil {
			if s, ok := f.r.st.sessions[*t.TestSessionID]; ok {
				row.Score = s.Score
				status := s.Status
				row.SessionStatus = &status
			}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })

	total := int64(len(rows))
	if filters.Offset >= len(rows) {
		return []*repositories.TestTakerRow{}, total, nil
	}
	rows = rows[filters.Offset:]
	if filters.Limit > 0 && filters.Limit < len(rows) {
		rows = rows[:filters.Limit]
	}
	return rows, total, nil
}

func (f *fakeTakerRepo) AssignSession(ctx context.Context, tx *gorm.DB, id, sessionID string) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	t, ok := f.r.st.takers[id]
	if !ok {
		return repositories.ErrNotFound
	}
	f.r.takerWrites.Add(1)
	t.TestSessionID = &sessionID
	t.TestStatus = models.TestNotStarted
	f.r.st.takers[id] = t
	return nil
}

func (f *fakeTakerRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id string, status models.TestStatus) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	t, ok := f.r.st.takers[id]
	if !ok {
		return repositories.ErrNotFound
	}
	f.r.takerWrites.Add(1)
	t.TestStatus = status
	f.r.st.takers[id] = t
	return nil
}

type fakeSessionRepo struct{ r *fakeRepository }

func (f *fakeSessionRepo) Create(ctx context.Context, tx *gorm.DB, session *models.TestSession) error {
	_ = session.BeforeCreate(nil)
	session.CreatedAt = time.Now()
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	f.r.sessionCreates.Add(1)
	f.r.st.sessions[session.ID] = cloneSession(*session)
	return nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.TestSession, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	s, ok := f.r.st.sessions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := cloneSession(s)
	return &cp, nil
}

func (f *fakeSessionRepo) MarkInProgress(ctx context.Context, tx *gorm.DB, id string, startedAt time.Time) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	s, ok := f.r.st.sessions[id]
	if !ok {
		return repositories.ErrNotFound
	}
	switch s.Status {
	case models.SessionNotStarted:
		s.Status = models.SessionInProgress
		s.StartedAt = &startedAt
		f.r.st.sessions[id] = s
		return nil
	case models.SessionCompleted:
		return repositories.ErrStatusConflict
	default:
		return nil
	}
}

func (f *fakeSessionRepo) Complete(ctx context.Context, tx *gorm.DB, id string, c repositories.SessionCompletion) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	s, ok := f.r.st.sessions[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if s.Status == models.SessionCompleted {
		return repositories.ErrStatusConflict
	}
	score := c.Score
	completedAt := c.CompletedAt
	s.Status = models.SessionCompleted
	s.Answers = append([]models.UserAnswer{}, c.Answers...)
	s.Score = &score
	s.AIFeedback = datatypes.NewJSONType(c.AIFeedback)
	s.CompletedAt = &completedAt
	f.r.st.sessions[id] = cloneSession(s)
	return nil
}

// ===== FAKE GRADER =====

type gradeFunc func(ctx context.Context, subject, essay string) (*grader.EssayGrade, error)

type fakeGrader struct {
	grade gradeFunc

	calls       atomic.Int32
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	delay       time.Duration
}

func newFakeGrader(fn gradeFunc) *fakeGrader {
	return &fakeGrader{grade: fn}
}

func fixedGrade(score int, feedback string) gradeFunc {
	return func(ctx context.Context, subject, essay string) (*grader.EssayGrade, error) {
		return &grader.EssayGrade{Score: score, Feedback: feedback}, nil
	}
}

func failingGrade(err error) gradeFunc {
	return func(ctx context.Context, subject, essay string) (*grader.EssayGrade, error) {
		return nil, err
	}
}

func (g *fakeGrader) Grade(ctx context.Context, subject, essay string) (*grader.EssayGrade, error) {
	g.calls.Add(1)
	n := g.inFlight.Add(1)
	defer g.inFlight.Add(-1)
	for {
		max := g.maxInFlight.Load()
		if n <= max || g.maxInFlight.CompareAndSwap(max, n) {
			break
		}
	}
	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return g.grade(ctx, subject, essay)
}

type fakeAdvisor struct {
	suggestion *grader.QuestionSuggestion
	err        error
}

func (a *fakeAdvisor) Suggest(ctx context.Context, question string) (*grader.QuestionSuggestion, error) {
	return a.suggestion, a.err
}
