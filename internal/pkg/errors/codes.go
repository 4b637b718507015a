package errors

import "net/http"

var (
	ErrStatisticNotFound = New(
		"STATISTIC_NOT_FOUND",
		"Statistic not found",
		http.StatusNotFound,
	)

	ErrInvalidStatisticID = New(
		"INVALID_STATISTIC_ID",
		"Invalid statistic ID",
		http.StatusBadRequest,
	)

	ErrInvalidTableGroup = New(
		"INVALID_TABLE_GROUP",
		"Invalid census table group",
		http.StatusBadRequest,
	)

	ErrCensusAPIError = New(
		"CENSUS_API_ERROR",
		"Census API request failed",
		http.StatusBadGateway,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
