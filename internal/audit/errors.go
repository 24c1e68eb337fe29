package audit

import "errors"

var (
	// ErrUnknownAction is returned for a tag outside the action taxonomy.
	ErrUnknownAction = errors.New("unknown audit action")

	// ErrUnknownSeverity is returned for a severity name that does not exist.
	ErrUnknownSeverity = errors.New("unknown audit severity")

	// ErrBadExportHeader is returned when parsing CSV without the export header.
	ErrBadExportHeader = errors.New("unexpected audit export header")

	// ErrMalformedExport is returned for a row that is not valid CSV.
	ErrMalformedExport = errors.New("malformed audit export row")

	// ErrStoreNil is returned when a trail is built without a store.
	ErrStoreNil = errors.New("audit store is nil")
)
