// internal/app/migration/orchestrator.go
package migration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/dalemusser/cityseva/internal/app/migration/idmap"
	"github.com/dalemusser/cityseva/internal/app/system/timeouts"
	"github.com/dalemusser/cityseva/internal/domain/records"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Config tunes a run. Zero values take defaults.
type Config struct {
	// RetryAttempts is the total number of tries for a transient error.
	RetryAttempts uint
	RetryDelay    time.Duration
	// ProgressEvery logs progress after this many rows of one kind.
	ProgressEvery int
	// MappingFile, when set, receives the legacy-to-document ID mapping.
	MappingFile string
	RowTimeout  time.Duration
	// IsTransient decides which target errors are retried.
	IsTransient func(error) bool
	// Nodes overrides the dependency graph.
	Nodes []Node
}

func (c Config) withDefaults() Config {
	if c.RetryAttempts == 0 {
		c.RetryAttempts = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 200 * time.Millisecond
	}
	if c.ProgressEvery <= 0 {
		c.ProgressEvery = 100
	}
	if c.RowTimeout <= 0 {
		c.RowTimeout = timeouts.Batch()
	}
	if c.IsTransient == nil {
		c.IsTransient = IsTransient
	}
	if c.Nodes == nil {
		c.Nodes = Graph
	}
	return c
}

// IsTransient is the default retry predicate.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, ErrExists) {
		return false
	}
	if errors.Is(err, ErrTransient) {
		return true
	}
	return mongo.IsNetworkError(err) || mongo.IsTimeout(err)
}

// Orchestrator copies every relational table into the document store,
// parents before children.
type Orchestrator struct {
	src   Source
	dst   Target
	log   *zap.Logger
	cfg   Config
	order []Kind
}

// New validates the dependency graph and returns an orchestrator.
func New(src Source, dst Target, log *zap.Logger, cfg Config) (*Orchestrator, error) {
	cfg = cfg.withDefaults()
	order, err := Order(cfg.Nodes)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{src: src, dst: dst, log: log, cfg: cfg, order: order}, nil
}

// Order returns the kinds in the order Run visits them.
func (o *Orchestrator) Order() []Kind {
	return append([]Kind(nil), o.order...)
}

// row is one relational row awaiting conversion.
type row struct {
	legacyID uint
	natural  string
	build    func(*resolver) (any, error)
}

// run holds the state of a single Run call.
type run struct {
	*Orchestrator
	log           *zap.Logger
	mapper        *idmap.Mapper
	report        *Report
	userNames     map[uint]string
	categoryNames map[uint]string
}

// Run migrates every kind. A row that fails does not stop the run; an
// unreachable store does, and is returned as a *ConnectionError.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	runID := uuid.NewString()
	r := &run{
		Orchestrator:  o,
		log:           o.log.With(zap.String("run_id", runID)),
		mapper:        idmap.New(),
		report:        newReport(runID, o.Order()),
		userNames:     map[uint]string{},
		categoryNames: map[uint]string{},
	}

	if err := o.ping(ctx); err != nil {
		r.log.Error("migration aborted", zap.Error(err))
		return r.report, err
	}
	r.log.Info("migration started", zap.Strings("order", kindStrings(o.order)))
	start := time.Now()

	for _, kind := range o.order {
		if err := ctx.Err(); err != nil {
			return r.report, err
		}
		rows, err := r.load(ctx, kind)
		if err != nil {
			cerr := &ConnectionError{Store: "source", Err: fmt.Errorf("read %s: %w", kind, err)}
			r.log.Error("migration aborted", zap.Error(cerr))
			return r.report, cerr
		}
		r.migrateKind(ctx, kind, rows)
	}

	r.report.Mapping = r.mapper.Snapshot()
	if o.cfg.MappingFile != "" {
		if err := WriteMappingFile(o.cfg.MappingFile, r.report.Mapping); err != nil {
			r.report.MappingFileErr = err
			r.log.Error("mapping file not written", zap.String("path", o.cfg.MappingFile), zap.Error(err))
		} else {
			r.log.Info("mapping file written", zap.String("path", o.cfg.MappingFile))
		}
	}

	r.log.Info("migration finished",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("problems", len(r.report.Problems)))
	return r.report, nil
}

func (o *Orchestrator) ping(ctx context.Context) error {
	pctx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := o.src.Ping(pctx); err != nil {
		return &ConnectionError{Store: "source", Err: err}
	}
	if err := o.dst.Ping(pctx); err != nil {
		return &ConnectionError{Store: "target", Err: err}
	}
	return nil
}

func (r *run) migrateKind(ctx context.Context, kind Kind, rows []row) {
	counts := r.report.Counts[kind]
	counts.Total = len(rows)
	for i, rw := range rows {
		res := r.migrateRow(ctx, kind, rw)
		r.report.record(res)
		if (i+1)%r.cfg.ProgressEvery == 0 {
			r.log.Info("migration progress",
				zap.String("kind", string(kind)),
				zap.Int("done", i+1),
				zap.Int("total", len(rows)))
		}
	}
	r.log.Info("kind migrated",
		zap.String("kind", string(kind)),
		zap.Int("total", counts.Total),
		zap.Int("migrated", counts.Migrated),
		zap.Int("already_migrated", counts.AlreadyMigrated),
		zap.Int("skipped", counts.Skipped),
		zap.Int("failed", counts.Failed))
}

func (r *run) migrateRow(ctx context.Context, kind Kind, rw row) RowResult {
	res := RowResult{Kind: kind, LegacyID: rw.legacyID}

	doc, err := rw.build(&resolver{
		m: r.mapper, log: r.log, child: kind, childID: rw.legacyID,
		userNames: r.userNames, categoryNames: r.categoryNames,
	})
	if err != nil {
		var missing *MissingParentError
		if errors.As(err, &missing) {
			r.log.Warn("row skipped", zap.Error(err))
			res.Outcome, res.Err = SkippedMissingParent, err
			return res
		}
		return r.fail(res, err)
	}

	rctx, cancel := context.WithTimeout(ctx, r.cfg.RowTimeout)
	defer cancel()

	id, found, err := r.existing(rctx, kind, rw)
	if err != nil {
		return r.fail(res, err)
	}
	if found {
		r.mapper.Put(idmap.Kind(kind), rw.legacyID, id)
		res.DocID, res.Outcome = id, AlreadyMigrated
		return res
	}

	err = r.retry(rctx, kind, rw.legacyID, func() error {
		var ierr error
		id, ierr = r.dst.Insert(rctx, kind, doc)
		return ierr
	})
	if errors.Is(err, ErrExists) {
		// An earlier attempt landed before its acknowledgement was lost.
		if id, found, eerr := r.existing(rctx, kind, rw); eerr == nil && found {
			r.mapper.Put(idmap.Kind(kind), rw.legacyID, id)
			res.DocID, res.Outcome = id, AlreadyMigrated
			return res
		}
	}
	if err != nil {
		return r.fail(res, err)
	}
	r.mapper.Put(idmap.Kind(kind), rw.legacyID, id)
	res.DocID, res.Outcome = id, Migrated
	return res
}

func (r *run) existing(ctx context.Context, kind Kind, rw row) (primitive.ObjectID, bool, error) {
	var (
		id    primitive.ObjectID
		found bool
	)
	err := r.retry(ctx, kind, rw.legacyID, func() error {
		var err error
		id, found, err = r.dst.Existing(ctx, kind, rw.legacyID, rw.natural)
		return err
	})
	return id, found, err
}

func (r *run) fail(res RowResult, err error) RowResult {
	werr := &WriteError{Kind: res.Kind, LegacyID: res.LegacyID, Err: err}
	r.log.Error("row failed", zap.Error(werr))
	res.Outcome, res.Err = Failed, werr
	return res
}

func (r *run) retry(ctx context.Context, kind Kind, legacyID uint, fn func() error) error {
	return retry.Do(fn,
		retry.Context(ctx),
		retry.Attempts(r.cfg.RetryAttempts),
		retry.Delay(r.cfg.RetryDelay),
		retry.MaxDelay(10*r.cfg.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(r.cfg.IsTransient),
		retry.OnRetry(func(n uint, err error) {
			r.log.Warn("retrying write",
				zap.String("kind", string(kind)),
				zap.Uint("legacy_id", legacyID),
				zap.Uint("attempt", n+1),
				zap.Error(err))
		}),
	)
}

// load reads one table and wraps each record with its converter.
func (r *run) load(ctx context.Context, kind Kind) ([]row, error) {
	switch kind {
	case KindUsers:
		users, err := r.src.Users(ctx)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			r.userNames[u.ID] = u.Username
		}
		return rowsOf(users, func(u records.User) (uint, string) { return u.ID, u.Email }, convertUser), nil
	case KindCategories:
		cats, err := r.src.Categories(ctx)
		if err != nil {
			return nil, err
		}
		for _, c := range cats {
			r.categoryNames[c.ID] = c.Name
		}
		return rowsOf(cats, func(c records.Category) (uint, string) { return c.ID, c.Name }, convertCategory), nil
	case KindComplaints:
		list, err := r.src.Complaints(ctx)
		return rowsOf(list, func(c records.Complaint) (uint, string) { return c.ID, "" }, convertComplaint), err
	case KindMedia:
		list, err := r.src.Media(ctx)
		return rowsOf(list, func(m records.ComplaintMedia) (uint, string) { return m.ID, "" }, convertMedia), err
	case KindUpdates:
		list, err := r.src.Updates(ctx)
		return rowsOf(list, func(u records.ComplaintUpdate) (uint, string) { return u.ID, "" }, convertUpdate), err
	case KindFeedback:
		list, err := r.src.Feedback(ctx)
		return rowsOf(list, func(f records.Feedback) (uint, string) { return f.ID, "" }, convertFeedback), err
	case KindAuditLogs:
		list, err := r.src.AuditLogs(ctx)
		return rowsOf(list, func(a records.AuditLog) (uint, string) { return a.ID, "" }, convertAuditLog), err
	case KindNotifications:
		list, err := r.src.Notifications(ctx)
		return rowsOf(list, func(n records.Notification) (uint, string) { return n.ID, "" }, convertNotification), err
	case KindOfficialRequests:
		list, err := r.src.OfficialRequests(ctx)
		return rowsOf(list, func(o records.OfficialRequest) (uint, string) { return o.ID, "" }, convertOfficialRequest), err
	}
	return nil, fmt.Errorf("no loader for %q", kind)
}

func rowsOf[T any](list []T, key func(T) (uint, string), conv func(T, *resolver) (any, error)) []row {
	out := make([]row, 0, len(list))
	for _, rec := range list {
		rec := rec
		id, natural := key(rec)
		out = append(out, row{
			legacyID: id,
			natural:  natural,
			build:    func(r *resolver) (any, error) { return conv(rec, r) },
		})
	}
	return out
}

func kindStrings(kinds []Kind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}
