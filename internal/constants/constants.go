package constants

import "time"

const (
	Version = "1.0.0"
)

const (
	TransactionTimeout = 5 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
	ClientTimeout      = 10 * time.Second
)

const (
	// sqlite allows a single writer; extra connections only serve readers
	DBMaxOpenConns    = 16
	DBMaxIdleConns    = 4
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBusyTimeoutMS   = 5000
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	MaxBodySize = 1 << 20

	DefaultPageSize       = 50
	MaxPageSize           = 200
	SearchSuggestionLimit = 50
	PopularMapsLimit      = 20
)

// MaxCounterDelta caps every counter in a single report. Larger values are
// rejected as malformed so cumulative counters and ratings stay inside int64.
const MaxCounterDelta = 1<<31 - 1

const (
	DefaultRankName   = "Recruit"
	DefaultRankIcon   = "rank_0.png"
	UnknownServerName = "Unknown Server"
	UnknownServerIP   = "0.0.0.0"
)
