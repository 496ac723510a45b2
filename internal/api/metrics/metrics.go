// Package metrics defines and registers all custom Prometheus metrics
// for the identity service. It is the single source of truth for
// metric names, labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "identity"

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_password", "user_not_found"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RefreshTotal counts refresh rotations.
// Label:
//   - result: "success", "not_outstanding", "pair_mismatch", "unsafe_entry"
var RefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refresh_total",
		Help:      "Total number of refresh rotations, by result.",
	},
	[]string{"result"},
)

// SignupsTotal counts account creations.
// Label:
//   - result: "success", "duplicate"
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of sign-up attempts, by result.",
	},
	[]string{"result"},
)

// LogoutsTotal counts logout calls. Logout is idempotent, so repeats
// count too.
var LogoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logouts_total",
		Help:      "Total number of logout calls.",
	},
)

// UnsafeEntriesTotal counts fingerprint mismatches, the anomaly
// signal that denylists an access token.
var UnsafeEntriesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unsafe_entries_total",
		Help:      "Total number of fingerprint mismatches detected.",
	},
)
