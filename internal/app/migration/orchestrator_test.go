package migration

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/dalemusser/cityseva/internal/domain/models"
	"github.com/dalemusser/cityseva/internal/domain/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeSource struct {
	pingErr error
	readErr map[Kind]error

	users         []records.User
	categories    []records.Category
	complaints    []records.Complaint
	media         []records.ComplaintMedia
	updates       []records.ComplaintUpdate
	feedback      []records.Feedback
	auditLogs     []records.AuditLog
	notifications []records.Notification
	requests      []records.OfficialRequest
}

func (s *fakeSource) Ping(context.Context) error { return s.pingErr }

func (s *fakeSource) Users(context.Context) ([]records.User, error) {
	return s.users, s.readErr[KindUsers]
}
func (s *fakeSource) Categories(context.Context) ([]records.Category, error) {
	return s.categories, s.readErr[KindCategories]
}
func (s *fakeSource) Complaints(context.Context) ([]records.Complaint, error) {
	return s.complaints, s.readErr[KindComplaints]
}
func (s *fakeSource) Media(context.Context) ([]records.ComplaintMedia, error) {
	return s.media, s.readErr[KindMedia]
}
func (s *fakeSource) Updates(context.Context) ([]records.ComplaintUpdate, error) {
	return s.updates, s.readErr[KindUpdates]
}
func (s *fakeSource) Feedback(context.Context) ([]records.Feedback, error) {
	return s.feedback, s.readErr[KindFeedback]
}
func (s *fakeSource) AuditLogs(context.Context) ([]records.AuditLog, error) {
	return s.auditLogs, s.readErr[KindAuditLogs]
}
func (s *fakeSource) Notifications(context.Context) ([]records.Notification, error) {
	return s.notifications, s.readErr[KindNotifications]
}
func (s *fakeSource) OfficialRequests(context.Context) ([]records.OfficialRequest, error) {
	return s.requests, s.readErr[KindOfficialRequests]
}

type stored struct {
	id  primitive.ObjectID
	doc any
}

// fakeTarget keeps documents per kind keyed by legacy id.
type fakeTarget struct {
	pingErr error
	docs    map[Kind]map[uint]stored
	// natural keys seen per kind
	natural map[Kind]map[string]primitive.ObjectID
	// fail returns an error to inject for an insert, or nil.
	fail    func(kind Kind, legacyID uint, attempt int) error
	inserts int
	tries   map[string]int
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{
		docs:    map[Kind]map[uint]stored{},
		natural: map[Kind]map[string]primitive.ObjectID{},
		tries:   map[string]int{},
	}
}

func (t *fakeTarget) Ping(context.Context) error { return t.pingErr }

func (t *fakeTarget) Existing(_ context.Context, kind Kind, legacyID uint, natural string) (primitive.ObjectID, bool, error) {
	if s, ok := t.docs[kind][legacyID]; ok {
		return s.id, true, nil
	}
	if natural != "" {
		if id, ok := t.natural[kind][natural]; ok {
			return id, true, nil
		}
	}
	return primitive.NilObjectID, false, nil
}

func (t *fakeTarget) Insert(_ context.Context, kind Kind, doc any) (primitive.ObjectID, error) {
	legacyID, natural := legacyOf(doc)
	key := fmt.Sprintf("%s/%d", kind, legacyID)
	t.tries[key]++
	if t.fail != nil {
		if err := t.fail(kind, legacyID, t.tries[key]); err != nil {
			return primitive.NilObjectID, err
		}
	}
	if _, ok := t.docs[kind][legacyID]; ok {
		return primitive.NilObjectID, ErrExists
	}
	id := primitive.NewObjectID()
	if t.docs[kind] == nil {
		t.docs[kind] = map[uint]stored{}
	}
	if t.natural[kind] == nil {
		t.natural[kind] = map[string]primitive.ObjectID{}
	}
	t.docs[kind][legacyID] = stored{id: id, doc: doc}
	if natural != "" {
		t.natural[kind][natural] = id
	}
	t.inserts++
	return id, nil
}

func (t *fakeTarget) count(kind Kind) int { return len(t.docs[kind]) }

func legacyOf(doc any) (uint, string) {
	switch d := doc.(type) {
	case models.User:
		return d.LegacyID, d.Email
	case models.Category:
		return d.LegacyID, d.Name
	case models.Complaint:
		return d.LegacyID, ""
	case models.ComplaintMedia:
		return d.LegacyID, ""
	case models.ComplaintUpdate:
		return d.LegacyID, ""
	case models.Feedback:
		return d.LegacyID, ""
	case models.AuditLog:
		return d.LegacyID, ""
	case models.Notification:
		return d.LegacyID, ""
	case models.OfficialRequest:
		return d.LegacyID, ""
	}
	panic(fmt.Sprintf("unexpected doc %T", doc))
}

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func uintPtr(v uint) *uint { return &v }

// scenarioSource is 3 users, 3 categories and 5 complaints. Complaint 5
// references category 3.
func scenarioSource() *fakeSource {
	src := &fakeSource{}
	for i := uint(1); i <= 3; i++ {
		src.users = append(src.users, records.User{
			ID: i, Email: fmt.Sprintf("user%d@city.test", i), Username: fmt.Sprintf("user%d", i),
			PasswordHash: "x", Role: models.RoleCitizen, IsActive: true, CreatedAt: t0,
		})
		src.categories = append(src.categories, records.Category{
			ID: i, Name: fmt.Sprintf("Category %d", i), CreatedAt: t0,
		})
	}
	for i := uint(1); i <= 5; i++ {
		cat := uint(1 + (i-1)%2)
		if i == 5 {
			cat = 3
		}
		src.complaints = append(src.complaints, records.Complaint{
			ID: i, Title: fmt.Sprintf("Complaint %d", i), Description: "d",
			CategoryID: cat, UserID: 1 + (i-1)%3,
			Status: models.StatusPending, Priority: models.PriorityMedium,
			CreatedAt: t0, UpdatedAt: t0,
		})
	}
	return src
}

func failCategory3(kind Kind, legacyID uint, _ int) error {
	if kind == KindCategories && legacyID == 3 {
		return errors.New("document failed validation")
	}
	return nil
}

func quickConfig() Config {
	return Config{RetryDelay: time.Millisecond}
}

func TestRun_SkipsChildrenOfFailedParent(t *testing.T) {
	src := scenarioSource()
	dst := newFakeTarget()
	dst.fail = failCategory3

	o, err := New(src, dst, zap.NewNop(), quickConfig())
	require.NoError(t, err)
	rep, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, dst.count(KindUsers))
	assert.Equal(t, 2, dst.count(KindCategories))
	assert.Equal(t, 4, dst.count(KindComplaints))

	assert.Equal(t, Counts{Total: 3, Migrated: 2, Failed: 1}, *rep.Counts[KindCategories])
	assert.Equal(t, Counts{Total: 5, Migrated: 4, Skipped: 1}, *rep.Counts[KindComplaints])
	assert.True(t, rep.Balanced())

	var skip *MissingParentError
	var found bool
	for _, p := range rep.Problems {
		if p.Outcome == SkippedMissingParent {
			require.ErrorAs(t, p.Err, &skip)
			found = true
		}
	}
	require.True(t, found)
	assert.Equal(t, KindComplaints, skip.Child)
	assert.Equal(t, uint(5), skip.ChildID)
	assert.Equal(t, KindCategories, skip.Parent)
	assert.Equal(t, uint(3), skip.ParentID)
}

func TestRun_NoDanglingReferences(t *testing.T) {
	src := scenarioSource()
	src.media = []records.ComplaintMedia{
		{ID: 1, ComplaintID: 1, FilePath: "a.jpg", MediaType: models.MediaImage, CreatedAt: t0},
		{ID: 2, ComplaintID: 5, FilePath: "b.jpg", MediaType: models.MediaImage, CreatedAt: t0},
	}
	src.notifications = []records.Notification{
		{ID: 1, UserID: 1, ComplaintID: uintPtr(5), Title: "t", Message: "m", CreatedAt: t0},
	}
	dst := newFakeTarget()
	dst.fail = failCategory3

	o, err := New(src, dst, zap.NewNop(), quickConfig())
	require.NoError(t, err)
	rep, err := o.Run(context.Background())
	require.NoError(t, err)

	complaintIDs := map[primitive.ObjectID]bool{}
	for _, s := range dst.docs[KindComplaints] {
		complaintIDs[s.id] = true
	}
	for _, s := range dst.docs[KindMedia] {
		assert.True(t, complaintIDs[s.doc.(models.ComplaintMedia).ComplaintID], "media points at a migrated complaint")
	}
	assert.Equal(t, Counts{Total: 2, Migrated: 1, Skipped: 1}, *rep.Counts[KindMedia])

	// The optional complaint link is dropped, the notification kept.
	require.Equal(t, 1, dst.count(KindNotifications))
	assert.Nil(t, dst.docs[KindNotifications][1].doc.(models.Notification).ComplaintID)
}

func TestRun_SecondRunIsIdempotent(t *testing.T) {
	src := scenarioSource()
	dst := newFakeTarget()

	o, err := New(src, dst, zap.NewNop(), quickConfig())
	require.NoError(t, err)
	first, err := o.Run(context.Background())
	require.NoError(t, err)
	inserted := dst.inserts

	second, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, inserted, dst.inserts, "no new documents")
	for _, kind := range []Kind{KindUsers, KindCategories, KindComplaints} {
		c := second.Counts[kind]
		assert.Equal(t, c.Total, c.AlreadyMigrated, kind)
		assert.Zero(t, c.Migrated, kind)
	}
	assert.Equal(t, first.Mapping, second.Mapping)
}

func TestRun_NaturalKeyCountsAsMigrated(t *testing.T) {
	src := scenarioSource()
	dst := newFakeTarget()
	existing := primitive.NewObjectID()
	dst.natural[KindUsers] = map[string]primitive.ObjectID{"user1@city.test": existing}

	o, err := New(src, dst, zap.NewNop(), quickConfig())
	require.NoError(t, err)
	rep, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, rep.Counts[KindUsers].AlreadyMigrated)
	assert.Equal(t, existing.Hex(), rep.Mapping["users"]["1"])
}

func TestRun_RetriesTransientErrors(t *testing.T) {
	src := scenarioSource()
	dst := newFakeTarget()
	dst.fail = func(kind Kind, legacyID uint, attempt int) error {
		if kind == KindUsers && legacyID == 2 && attempt < 3 {
			return fmt.Errorf("socket closed: %w", ErrTransient)
		}
		return nil
	}

	o, err := New(src, dst, zap.NewNop(), quickConfig())
	require.NoError(t, err)
	rep, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, rep.Counts[KindUsers].Migrated)
	assert.Equal(t, 3, dst.tries["users/2"])
}

func TestRun_GivesUpAfterRetryBudget(t *testing.T) {
	src := scenarioSource()
	dst := newFakeTarget()
	dst.fail = func(kind Kind, legacyID uint, _ int) error {
		if kind == KindUsers && legacyID == 1 {
			return ErrTransient
		}
		return nil
	}

	o, err := New(src, dst, zap.NewNop(), Config{RetryAttempts: 2, RetryDelay: time.Millisecond})
	require.NoError(t, err)
	rep, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, dst.tries["users/1"])
	assert.Equal(t, 1, rep.Counts[KindUsers].Failed)
	// user 1 authored complaints 1 and 4
	assert.Equal(t, 2, rep.Counts[KindComplaints].Skipped)

	var werr *WriteError
	require.ErrorAs(t, rep.Problems[0].Err, &werr)
	assert.ErrorIs(t, werr, ErrTransient)
}

func TestRun_PingFailureWritesNothing(t *testing.T) {
	for _, tc := range []struct {
		name  string
		store string
		setup func(*fakeSource, *fakeTarget)
	}{
		{"source", "source", func(s *fakeSource, _ *fakeTarget) { s.pingErr = errors.New("connection refused") }},
		{"target", "target", func(_ *fakeSource, d *fakeTarget) { d.pingErr = errors.New("no reachable servers") }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			src := scenarioSource()
			dst := newFakeTarget()
			tc.setup(src, dst)

			o, err := New(src, dst, zap.NewNop(), quickConfig())
			require.NoError(t, err)
			_, err = o.Run(context.Background())

			var cerr *ConnectionError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tc.store, cerr.Store)
			assert.Zero(t, dst.inserts)
		})
	}
}

func TestRun_SourceReadErrorAborts(t *testing.T) {
	src := scenarioSource()
	src.readErr = map[Kind]error{KindComplaints: errors.New("conn reset")}
	dst := newFakeTarget()

	o, err := New(src, dst, zap.NewNop(), quickConfig())
	require.NoError(t, err)
	rep, err := o.Run(context.Background())

	var cerr *ConnectionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "source", cerr.Store)
	assert.Equal(t, 3, rep.Counts[KindUsers].Migrated, "earlier kinds stay migrated")
	assert.Zero(t, dst.count(KindComplaints))
}

func TestRun_WritesMappingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.json")
	src := scenarioSource()
	dst := newFakeTarget()
	cfg := quickConfig()
	cfg.MappingFile = path

	o, err := New(src, dst, zap.NewNop(), cfg)
	require.NoError(t, err)
	rep, err := o.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, rep.MappingFileErr)

	snap, err := ReadMappingFile(path)
	require.NoError(t, err)
	assert.Len(t, snap, 3)
	assert.Len(t, snap["users"], 3)
	assert.Len(t, snap["categories"], 3)
	assert.Len(t, snap["complaints"], 5)
	assert.Equal(t, dst.docs[KindComplaints][2].id.Hex(), snap["complaints"]["2"])
}

func TestRun_MappingFileErrorDoesNotFailRun(t *testing.T) {
	src := scenarioSource()
	dst := newFakeTarget()
	cfg := quickConfig()
	cfg.MappingFile = filepath.Join(t.TempDir(), "missing", "dir", "mapping.json")

	o, err := New(src, dst, zap.NewNop(), cfg)
	require.NoError(t, err)
	rep, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Error(t, rep.MappingFileErr)
	assert.Equal(t, 5, dst.count(KindComplaints))
}

func TestConvertComplaint_Denormalizes(t *testing.T) {
	src := scenarioSource()
	src.complaints[0].AssignedTo = uintPtr(2)
	src.complaints[0].Status = models.StatusResolved
	dst := newFakeTarget()

	o, err := New(src, dst, zap.NewNop(), quickConfig())
	require.NoError(t, err)
	_, err = o.Run(context.Background())
	require.NoError(t, err)

	c := dst.docs[KindComplaints][1].doc.(models.Complaint)
	assert.Equal(t, "Category 1", c.CategoryName)
	assert.Equal(t, "user1", c.AuthorName)
	assert.Equal(t, "user2", c.AssigneeName)
	require.NotNil(t, c.ResolvedAt)
	assert.Equal(t, "2024-03-01T09:00:00.000000Z", c.CreatedAt)
}

func TestNew_RejectsCycle(t *testing.T) {
	_, err := New(&fakeSource{}, newFakeTarget(), nil, Config{Nodes: []Node{
		{Kind: KindUsers, Deps: []Kind{KindComplaints}},
		{Kind: KindComplaints, Deps: []Kind{KindUsers}},
	}})
	assert.ErrorIs(t, err, ErrCycle)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(fmt.Errorf("x: %w", ErrTransient)))
	assert.False(t, IsTransient(ErrExists))
	assert.False(t, IsTransient(errors.New("validation")))
	assert.False(t, IsTransient(nil))
}
