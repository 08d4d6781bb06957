package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/crestline-ir/internal/db/models"
	"github.com/crestline-ir/internal/store"
	"github.com/crestline-ir/pkg/metrics"
	"go.uber.org/zap"
)

// In-memory store fakes. Each fake honors the same ordering and error
// contracts as the gorm implementations, counts its writes, and lets tests
// inject failures per operation.

type memClock struct {
	mu  sync.Mutex
	now time.Time
}

func newMemClock() *memClock {
	return &memClock{now: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *memClock) next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type memDocumentStore struct {
	mu    sync.Mutex
	docs  map[string]models.Document
	clock *memClock

	getErr        error
	setCurrentErr error
}

func (m *memDocumentStore) Create(ctx context.Context, doc *models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.docs[doc.ID]; exists {
		return &store.ConflictError{Entity: "document", ID: doc.ID}
	}
	doc.CreatedAt = m.clock.next()
	m.docs[doc.ID] = *doc
	return nil
}

func (m *memDocumentStore) Get(ctx context.Context, id string) (*models.Document, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, exists := m.docs[id]
	if !exists {
		return nil, &store.NotFoundError{Entity: "document", ID: id}
	}
	return &doc, nil
}

func (m *memDocumentStore) List(ctx context.Context) ([]models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Document, 0, len(m.docs))
	for _, d := range m.docs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memDocumentStore) ListByIDs(ctx context.Context, ids []string) ([]models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []models.Document
	for _, d := range m.docs {
		if want[d.ID] {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memDocumentStore) SetCurrent(ctx context.Context, id string, version int, fileRef string, fileSize int64) error {
	if m.setCurrentErr != nil {
		return m.setCurrentErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, exists := m.docs[id]
	if !exists {
		return &store.NotFoundError{Entity: "document", ID: id}
	}
	doc.CurrentVersion = version
	doc.CurrentFileRef = fileRef
	doc.CurrentFileSize = fileSize
	m.docs[id] = doc
	return nil
}

func (m *memDocumentStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	return nil
}

type memVersionStore struct {
	mu       sync.Mutex
	versions map[string]models.DocumentVersion
	nextID   uint
	clock    *memClock

	createErr error
}

func memVersionKey(documentID string, n int) string {
	return fmt.Sprintf("%s/%d", documentID, n)
}

func (m *memVersionStore) Create(ctx context.Context, v *models.DocumentVersion) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := memVersionKey(v.DocumentID, v.VersionNumber)
	if _, exists := m.versions[key]; exists {
		return &store.ConflictError{Entity: "document version", ID: key}
	}
	m.nextID++
	v.ID = m.nextID
	v.CreatedAt = m.clock.next()
	m.versions[key] = *v
	return nil
}

func (m *memVersionStore) Get(ctx context.Context, documentID string, versionNumber int) (*models.DocumentVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, exists := m.versions[memVersionKey(documentID, versionNumber)]
	if !exists {
		return nil, &store.NotFoundError{Entity: "document version", ID: memVersionKey(documentID, versionNumber)}
	}
	return &v, nil
}

func (m *memVersionStore) ListByDocument(ctx context.Context, documentID string) ([]models.DocumentVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.DocumentVersion
	for _, v := range m.versions {
		if v.DocumentID == documentID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VersionNumber < out[j].VersionNumber })
	return out, nil
}

func (m *memVersionStore) MaxVersionNumber(ctx context.Context, documentID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	max := 0
	for _, v := range m.versions {
		if v.DocumentID == documentID && v.VersionNumber > max {
			max = v.VersionNumber
		}
	}
	return max, nil
}

func (m *memVersionStore) Delete(ctx context.Context, documentID string, versionNumber int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.versions, memVersionKey(documentID, versionNumber))
	return nil
}

func (m *memVersionStore) DeleteByDocument(ctx context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, v := range m.versions {
		if v.DocumentID == documentID {
			delete(m.versions, key)
		}
	}
	return nil
}

type memGrantStore struct {
	mu     sync.Mutex
	grants map[string]models.AccessGrant

	creates int
	deletes int
}

func memGrantKey(documentID string, userID uint) string {
	return fmt.Sprintf("%s/%d", documentID, userID)
}

func (m *memGrantStore) Create(ctx context.Context, g *models.AccessGrant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := memGrantKey(g.DocumentID, g.UserID)
	if _, exists := m.grants[key]; exists {
		return &store.ConflictError{Entity: "access grant", ID: key}
	}
	m.creates++
	m.grants[key] = *g
	return nil
}

func (m *memGrantStore) Get(ctx context.Context, documentID string, userID uint) (*models.AccessGrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, exists := m.grants[memGrantKey(documentID, userID)]
	if !exists {
		return nil, &store.NotFoundError{Entity: "access grant", ID: memGrantKey(documentID, userID)}
	}
	return &g, nil
}

func (m *memGrantStore) ListByDocument(ctx context.Context, documentID string) ([]models.AccessGrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.AccessGrant
	for _, g := range m.grants {
		if g.DocumentID == documentID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memGrantStore) ListByUser(ctx context.Context, userID uint) ([]models.AccessGrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.AccessGrant
	for _, g := range m.grants {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memGrantStore) Delete(ctx context.Context, documentID string, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := memGrantKey(documentID, userID)
	if _, exists := m.grants[key]; exists {
		m.deletes++
		delete(m.grants, key)
	}
	return nil
}

func (m *memGrantStore) DeleteByDocument(ctx context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, g := range m.grants {
		if g.DocumentID == documentID {
			delete(m.grants, key)
		}
	}
	return nil
}

func (m *memGrantStore) DeleteByUser(ctx context.Context, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, g := range m.grants {
		if g.UserID == userID {
			delete(m.grants, key)
		}
	}
	return nil
}

type memNdaStatusStore struct {
	mu       sync.Mutex
	statuses map[uint]models.NdaStatus

	clearErrFor map[uint]error
}

func (m *memNdaStatusStore) Create(ctx context.Context, s *models.NdaStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.statuses[s.UserID]; exists {
		return &store.ConflictError{Entity: "nda status", ID: fmt.Sprint(s.UserID)}
	}
	m.statuses[s.UserID] = *s
	return nil
}

func (m *memNdaStatusStore) GetByUser(ctx context.Context, userID uint) (*models.NdaStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, exists := m.statuses[userID]
	if !exists {
		return nil, &store.NotFoundError{Entity: "nda status", ID: fmt.Sprint(userID)}
	}
	return &s, nil
}

func (m *memNdaStatusStore) SetSigned(ctx context.Context, userID uint, signedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, exists := m.statuses[userID]
	if !exists {
		return &store.NotFoundError{Entity: "nda status", ID: fmt.Sprint(userID)}
	}
	s.Signed = true
	s.SignedAt = &signedAt
	m.statuses[userID] = s
	return nil
}

func (m *memNdaStatusStore) Clear(ctx context.Context, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.clearErrFor[userID]; err != nil {
		return err
	}
	s, exists := m.statuses[userID]
	if !exists {
		return &store.NotFoundError{Entity: "nda status", ID: fmt.Sprint(userID)}
	}
	s.Signed = false
	s.SignedAt = nil
	m.statuses[userID] = s
	return nil
}

func (m *memNdaStatusStore) DeleteByUser(ctx context.Context, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.statuses, userID)
	return nil
}

type memUserStore struct {
	mu     sync.Mutex
	users  map[uint]models.User
	nextID uint
}

func (m *memUserStore) Create(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return &store.ConflictError{Entity: "user", ID: u.Email}
		}
	}
	m.nextID++
	u.ID = m.nextID
	m.users[u.ID] = *u
	return nil
}

func (m *memUserStore) Get(ctx context.Context, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, exists := m.users[id]
	if !exists {
		return nil, &store.NotFoundError{Entity: "user", ID: fmt.Sprint(id)}
	}
	return &u, nil
}

func (m *memUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, &store.NotFoundError{Entity: "user", ID: email}
}

func (m *memUserStore) List(ctx context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUserStore) UpdateRole(ctx context.Context, id uint, role models.UserRole) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, exists := m.users[id]
	if !exists {
		return &store.NotFoundError{Entity: "user", ID: fmt.Sprint(id)}
	}
	u.Role = role
	m.users[id] = u
	return nil
}

func (m *memUserStore) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, exists := m.users[id]
	if !exists {
		return &store.NotFoundError{Entity: "user", ID: fmt.Sprint(id)}
	}
	u.LastLogin = at
	m.users[id] = u
	return nil
}

func (m *memUserStore) Delete(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

type memActivityStore struct {
	mu      sync.Mutex
	entries []models.ActivityLogEntry

	appendErr error
}

func (m *memActivityStore) Append(ctx context.Context, e *models.ActivityLogEntry) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memActivityStore) List(ctx context.Context, offset, limit int) ([]models.ActivityLogEntry, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sorted := make([]models.ActivityLogEntry, len(m.entries))
	copy(sorted, m.entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })
	if offset >= len(sorted) {
		return nil, int64(len(m.entries)), nil
	}
	end := offset + limit
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[offset:end], int64(len(m.entries)), nil
}

func (m *memActivityStore) actions() []models.ActivityAction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ActivityAction, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Action
	}
	return out
}

type fakeBlobStore struct {
	mu      sync.Mutex
	removed []string

	removeErr error
}

func (f *fakeBlobStore) Put(ctx context.Context, ref string, body io.Reader, size int64, contentType string) error {
	return nil
}

func (f *fakeBlobStore) Remove(ctx context.Context, ref string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, ref)
	return nil
}

func (f *fakeBlobStore) PresignGet(ctx context.Context, ref string, ttl time.Duration) (string, error) {
	return "https://blobs.test/" + ref, nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	sends []uint

	sendErr error
}

func (f *fakeNotifier) Send(ctx context.Context, userID uint, template string, data map[string]string) error {
	f.mu.Lock()
	f.sends = append(f.sends, userID)
	f.mu.Unlock()
	return f.sendErr
}

// testEnv wires the services over the fakes.
type testEnv struct {
	docs     *memDocumentStore
	versions *memVersionStore
	grants   *memGrantStore
	nda      *memNdaStatusStore
	users    *memUserStore
	activity *memActivityStore
	blobs    *fakeBlobStore
	notifier *fakeNotifier

	audit   *AuditService
	access  *AccessService
	version *VersionService
	grant   *GrantService
	user    *UserService
	admin   *AdminService
}

func newTestEnv() *testEnv {
	clock := newMemClock()
	env := &testEnv{
		docs:     &memDocumentStore{docs: make(map[string]models.Document), clock: clock},
		versions: &memVersionStore{versions: make(map[string]models.DocumentVersion), clock: clock},
		grants:   &memGrantStore{grants: make(map[string]models.AccessGrant)},
		nda:      &memNdaStatusStore{statuses: make(map[uint]models.NdaStatus), clearErrFor: make(map[uint]error)},
		users:    &memUserStore{users: make(map[uint]models.User)},
		activity: &memActivityStore{},
		blobs:    &fakeBlobStore{},
		notifier: &fakeNotifier{},
	}

	stores := &store.Stores{
		Documents: env.docs,
		Versions:  env.versions,
		Grants:    env.grants,
		NdaStatus: env.nda,
		Users:     env.users,
		Activity:  env.activity,
	}

	logger := zap.NewNop()
	collector := metrics.NewMetricsCollector()

	env.audit = NewAuditService(env.activity, logger)
	env.access = NewAccessService(stores, logger, collector)
	env.version = NewVersionService(stores, env.blobs, env.audit, logger, collector)
	env.grant = NewGrantService(stores, env.audit, logger, collector)
	env.user = NewUserService(stores, env.audit, logger, collector)
	env.admin = NewAdminService(env.user, env.grant, env.notifier, env.audit, logger, collector)

	return env
}

func isNotFoundErr(err error) bool {
	return store.IsNotFound(err)
}

// addUser seeds a user with an NDA record. signed=true also sets signedAt.
func (env *testEnv) addUser(t *testing.T, email string, signed bool) uint {
	t.Helper()
	user, err := env.user.CreateUser(context.Background(), email, "Test User", "correct-horse", models.RoleInvestor)
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", email, err)
	}
	if signed {
		if err := env.user.MarkNdaSigned(context.Background(), user.ID, time.Now().UTC()); err != nil {
			t.Fatalf("MarkNdaSigned(%d): %v", user.ID, err)
		}
	}
	return user.ID
}

// addDocument seeds a document with its first version.
func (env *testEnv) addDocument(t *testing.T, title string) *models.Document {
	t.Helper()
	doc, err := env.version.CreateDocument(context.Background(), title, "", "blobs/"+title, 128, 1, "")
	if err != nil {
		t.Fatalf("CreateDocument(%s): %v", title, err)
	}
	return doc
}
