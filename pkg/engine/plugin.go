package engine

import (
	"encoding/json"
	"fmt"

	"github.com/sanonone/stradadb/internal/facade"
)

// RouteParameters is the parsed form of one query, independent of how it
// arrived. Service selects the plugin; the rest is up to the plugin.
type RouteParameters struct {
	Service      string
	Coordinates  []facade.Coordinate
	Alternatives bool
}

// Plugin serves one named service. HandleRequest must fill reply on every
// path, including its own error paths; the dispatcher never inspects the
// content.
type Plugin interface {
	GetDescriptor() string
	HandleRequest(params RouteParameters, reply *Reply)
}

// writeJSON renders v into reply with the given transport status.
func writeJSON(reply *Reply, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		*reply = StockReply(StatusInternalError)
		return
	}
	reply.Status = status
	reply.Content = body
}

// writeMessage renders the common {status, status_message} body.
func writeMessage(reply *Reply, status, code int, message string) {
	reply.Status = status
	reply.Content = []byte(fmt.Sprintf(`{"status":%d,"status_message":%q}`, code, message))
}
