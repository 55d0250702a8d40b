package sqldb

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"infostore/internal/repository"
	"infostore/internal/repository/naming"
	"infostore/internal/repository/sqlbuild"
)

// DefaultDeletePageSize caps the number of ids in one DELETE ... IN statement
const DefaultDeletePageSize = 1000

// Provider implements repository.Repository over a single database/sql
// connection. It is not safe for concurrent use.
type Provider struct {
	backend  Backend
	builder  *sqlbuild.Builder
	pageSize int
	log      *log.Entry

	mode repository.Mode
	db   *sql.DB
	conn *sql.Conn
}

var _ repository.Repository = (*Provider)(nil)

// Option configures a Provider
type Option func(*Provider)

// WithNames renames the physical schema
func WithNames(names naming.Provider) Option {
	return func(p *Provider) {
		p.builder = sqlbuild.New(p.backend.Dialect(), names)
	}
}

// WithDeletePageSize sets the maximum ids per cascading-delete statement
func WithDeletePageSize(n int) Option {
	return func(p *Provider) {
		if n > 0 {
			p.pageSize = n
		}
	}
}

// WithLogger sets the log entry used by the provider
func WithLogger(entry *log.Entry) Option {
	return func(p *Provider) {
		p.log = entry
	}
}

// New creates a closed Provider for backend
func New(backend Backend, opts ...Option) *Provider {
	p := &Provider{
		backend:  backend,
		builder:  sqlbuild.New(backend.Dialect(), naming.Default()),
		pageSize: DefaultDeletePageSize,
		mode:     repository.ModeClosed,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = log.WithField("backend", backend.Name())
	}
	return p
}

// Mode returns the connection state
func (p *Provider) Mode() repository.Mode {
	return p.mode
}

// Names returns the naming provider in use
func (p *Provider) Names() naming.Provider {
	return p.builder.Names()
}

// Open ensures the store exists, opens its physical connection and, if the
// store was just created, creates the schema
func (p *Provider) Open(ctx context.Context, info repository.ConnectionInfo) error {
	if p.mode == repository.ModeOpened {
		return repository.ErrConnectionAlreadyOpen
	}

	created, err := info.EnsureExists(ctx)
	if err != nil {
		return err
	}

	db, err := sql.Open(info.DriverName(), info.ConnectionString())
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return errors.Wrap(err, "failed to acquire connection")
	}
	if err := p.backend.Configure(ctx, conn); err != nil {
		conn.Close()
		db.Close()
		return errors.Wrap(err, "failed to configure connection")
	}

	p.db, p.conn, p.mode = db, conn, repository.ModeOpened

	if created {
		if err := p.CreateStructure(ctx); err != nil {
			p.release()
			return err
		}
	}

	p.log.WithFields(log.Fields{
		"driver":  info.DriverName(),
		"created": created,
	}).Info("opened store")
	return nil
}

// CreateStructure creates the table and its supporting indexes if they do
// not exist yet
func (p *Provider) CreateStructure(ctx context.Context) error {
	if err := p.checkOpen(); err != nil {
		return err
	}

	statements := append([]sqlbuild.Statement{p.builder.CreateTable()}, p.builder.CreateIndexes()...)
	for _, st := range statements {
		if _, err := p.exec(ctx, st); err != nil {
			return err
		}
	}

	p.log.WithField("table", p.builder.Names().Table()).Info("ensured schema")
	return nil
}

// Close releases the physical connection
func (p *Provider) Close() error {
	if p.mode == repository.ModeClosed {
		return repository.ErrConnectionAlreadyClosed
	}
	return p.release()
}

// Release is Close for deferred cleanup; it does nothing once closed
func (p *Provider) Release() error {
	if p.mode == repository.ModeClosed {
		return nil
	}
	return p.release()
}

func (p *Provider) release() error {
	var connErr, dbErr error
	if p.conn != nil {
		connErr = p.conn.Close()
	}
	if p.db != nil {
		dbErr = p.db.Close()
	}
	p.conn, p.db, p.mode = nil, nil, repository.ModeClosed
	p.log.Info("closed store")

	if connErr != nil && !errors.Is(connErr, sql.ErrConnDone) {
		return errors.Wrap(connErr, "failed to close connection")
	}
	if dbErr != nil {
		return errors.Wrap(dbErr, "failed to close database")
	}
	return nil
}

func (p *Provider) checkOpen() error {
	if p.mode != repository.ModeOpened {
		return repository.ErrConnectionClosed
	}
	return nil
}

// ============================================================================
// Statement execution
// ============================================================================

func (p *Provider) exec(ctx context.Context, st sqlbuild.Statement) (sql.Result, error) {
	start := time.Now()
	res, err := p.conn.ExecContext(ctx, st.Text, st.Args...)
	p.observe(st, start, err)
	if err != nil {
		return nil, p.classify(st.Op, err)
	}
	return res, nil
}

func (p *Provider) query(ctx context.Context, st sqlbuild.Statement) (*sql.Rows, error) {
	start := time.Now()
	rows, err := p.conn.QueryContext(ctx, st.Text, st.Args...)
	p.observe(st, start, err)
	if err != nil {
		return nil, p.classify(st.Op, err)
	}
	return rows, nil
}

// scanOne reads the single row selected by st into dest. It reports false
// without error when no row matched.
func (p *Provider) scanOne(ctx context.Context, st sqlbuild.Statement, dest ...any) (bool, error) {
	start := time.Now()
	err := p.conn.QueryRowContext(ctx, st.Text, st.Args...).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		p.observe(st, start, nil)
		return false, nil
	}
	p.observe(st, start, err)
	if err != nil {
		return false, p.classify(st.Op, err)
	}
	return true, nil
}

func (p *Provider) observe(st sqlbuild.Statement, start time.Time, err error) {
	name := p.backend.Name()
	statementSeconds.WithLabelValues(name, st.Op).Observe(time.Since(start).Seconds())

	status := "ok"
	if err != nil {
		status = "error"
	}
	statementsTotal.WithLabelValues(name, st.Op, status).Inc()

	if p.log.Logger.IsLevelEnabled(log.DebugLevel) {
		p.log.WithFields(log.Fields{
			"op":     st.Op,
			"args":   len(st.Args),
			"status": status,
		}).Debug("executed statement")
	}
}

// classify wraps a driver error, tagging it with its kind when the backend
// recognizes it
func (p *Provider) classify(op string, err error) error {
	if kind := p.backend.Classify(err); kind != nil {
		return &repository.StoreError{Op: op, Kind: kind, Err: err}
	}
	return errors.Wrapf(err, "failed to %s", op)
}
