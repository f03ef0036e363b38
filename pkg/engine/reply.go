package engine

// Transport-level reply statuses, aligned with HTTP so the server can pass
// them through unchanged.
const (
	StatusOK            = 200
	StatusBadRequest    = 400
	StatusInternalError = 500
)

// Body-level result codes carried inside the JSON content.
const (
	ResultOK      = 0
	ResultNoRoute = 207
)

// Reply is what a query produces: a transport status plus an opaque body.
// Plugins fill it; the dispatch layer only ever replaces it wholesale with a
// stock reply.
type Reply struct {
	Status  int
	Content []byte
}

// stockBodies are built once so the error path allocates nothing.
var stockBodies = map[int][]byte{
	StatusBadRequest:    []byte(`{"status":400,"status_message":"Bad Request"}`),
	StatusInternalError: []byte(`{"status":500,"status_message":"Internal Server Error"}`),
}

// StockReply returns the canned reply for status. Unknown statuses fall back
// to the internal error body.
func StockReply(status int) Reply {
	body, ok := stockBodies[status]
	if !ok {
		status = StatusInternalError
		body = stockBodies[StatusInternalError]
	}
	return Reply{Status: status, Content: body}
}
