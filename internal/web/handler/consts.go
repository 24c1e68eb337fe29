package handler

const (
	// RootPath is the root path the route group.
	RootPath = "/"

	// ErrNilDepsFatalLogMsg is used if router or deps are nil or incomplete.
	ErrNilDepsFatalLogMsg = "router or handler dependencies are nil"

	// CodeBadRequest marks malformed input.
	CodeBadRequest = "BAD_REQUEST"
	// CodeNotFound marks a missing resource.
	CodeNotFound = "NOT_FOUND"
	// CodeInternal marks a server side failure.
	CodeInternal = "INTERNAL_ERROR"
)
