package server

import (
	"net/http"
	"net/http/pprof"
	"strconv"
	"strings"

	"github.com/sanonone/stradadb/internal/facade"
	"github.com/sanonone/stradadb/pkg/engine"
)

// registerHTTPHandlers sets the routes for the query API
func (s *Server) registerHTTPHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/", s.router)
}

// router is the main manual router. It maps the URL path onto a service name
// and hands everything else to the engine dispatcher; unknown services come
// back from there as the stock bad-request reply.
func (s *Server) router(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	// --- Debug endpoints (pprof) ---
	if strings.HasPrefix(path, "/debug/pprof") {
		switch {
		case path == "/debug/pprof/":
			pprof.Index(w, r)
		case path == "/debug/pprof/cmdline":
			pprof.Cmdline(w, r)
		case path == "/debug/pprof/profile":
			pprof.Profile(w, r)
		case path == "/debug/pprof/symbol":
			pprof.Symbol(w, r)
		case path == "/debug/pprof/trace":
			pprof.Trace(w, r)
		default:
			http.NotFound(w, r)
		}
		return
	}

	if r.Method != http.MethodGet {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		w.Write([]byte(`{"status":405,"status_message":"Method Not Allowed"}`))
		return
	}

	params, err := parseRouteParameters(r)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":400,"status_message":"` + err.Error() + `"}`))
		return
	}

	var reply engine.Reply
	s.engine.RunQuery(params, &reply)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(reply.Status)
	w.Write(reply.Content)
}

// parseRouteParameters turns /service?loc=lat,lon&loc=...&alt=true into the
// engine's request form. The service is whatever follows the leading slash;
// validating it is the dispatcher's job, not ours.
func parseRouteParameters(r *http.Request) (engine.RouteParameters, error) {
	params := engine.RouteParameters{
		Service: strings.Trim(r.URL.Path, "/"),
	}

	query := r.URL.Query()
	for _, loc := range query["loc"] {
		c, err := parseLoc(loc)
		if err != nil {
			return engine.RouteParameters{}, err
		}
		params.Coordinates = append(params.Coordinates, c)
	}
	params.Alternatives = query.Get("alt") == "true"
	return params, nil
}

func parseLoc(raw string) (facade.Coordinate, error) {
	parts := strings.SplitN(raw, ",", 2)
	if len(parts) != 2 {
		return facade.Coordinate{}, errMalformedLoc
	}
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, errLon := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errLat != nil || errLon != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return facade.Coordinate{}, errMalformedLoc
	}
	return facade.Coordinate{Lat: lat, Lon: lon}, nil
}
