// Package sqldb implements repository.Repository on top of database/sql.
//
// A Provider owns one physical connection and moves between two modes:
// closed (initial) and opened. Statement text comes from sqlbuild, so the
// same engine serves every backend; a Backend only contributes its dialect,
// per-connection setup and the classification of driver errors.
//
// # Graph algorithms
//
// ContentFrom follows ContentFromId pointers to the record that owns the
// content, returning uuid.Nil for broken chains and cycles.
//
// DeleteAll collects a subtree breadth first, groups ids by depth and
// deletes deepest level first in pages, so restricting parent references
// never block it. Pages commit independently.
package sqldb

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors of sqldb metrics.
var (
	statementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "infostore_statements_total",
		Help: "Cumulative number of statements executed, by backend, operation and status.",
	}, []string{"backend", "op", "status"})
	statementSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "infostore_statement_seconds",
		Help:    "Statement execution latency, by backend and operation.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"backend", "op"})
	cascadeDeletedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "infostore_cascade_deleted_rows_total",
		Help: "Cumulative number of rows removed by cascading deletes, by backend.",
	}, []string{"backend"})
)
