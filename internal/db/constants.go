package db

// timeLayout is the UTC text format of every stored timestamp.
const timeLayout = "2006-01-02 15:04:05"

// SQL query fragments used across multiple functions
const (
	// sqlPointWindowClause keeps points newer than a cutoff, plus points whose
	// timestamp could not be parsed.
	sqlPointWindowClause = "AND (sort_time IS NULL OR sort_time >= ?)"
)
