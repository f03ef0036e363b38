// Package engine is the query-time core of StradaDB: it owns the network
// data facade, the registry of request plugins, and dispatches each incoming
// query to the plugin serving its named service.
//
// Basic usage:
//
//	eng, err := engine.New(engine.Options{Paths: paths})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close()
//
//	var reply engine.Reply
//	eng.RunQuery(engine.RouteParameters{Service: "viaroute", Coordinates: coords}, &reply)
package engine

import (
	"fmt"
	"log"

	"github.com/sanonone/stradadb/internal/facade"
	"github.com/sanonone/stradadb/pkg/metrics"
)

// Options selects the dataset files and how they are accessed.
type Options struct {
	// Paths names the dataset files by role, see the facade.Path* keys.
	Paths map[string]string

	// UseSharedMemory maps the externally produced snapshot file instead of
	// loading the dataset into process memory. The snapshot is managed by
	// whoever produced it; the engine only ever reads it.
	UseSharedMemory bool
}

// Engine routes queries to plugins over one shared read-only DataFacade.
// The registry is populated during New and never mutated afterwards, which
// is why concurrent RunQuery calls need no synchronization here.
type Engine struct {
	queryDataFacade facade.DataFacade
	plugins         map[string]Plugin
}

// New loads the network data and registers the built-in plugin set. A facade
// failure (missing or corrupt dataset files) fails construction outright;
// there is no partially working engine.
func New(opts Options) (*Engine, error) {
	var (
		df  facade.DataFacade
		err error
	)
	if opts.UseSharedMemory {
		df, err = facade.OpenSharedDataFacade(opts.Paths[facade.PathSnapshot])
	} else {
		df, err = facade.LoadInternalDataFacade(opts.Paths)
	}
	if err != nil {
		return nil, fmt.Errorf("loading network data: %w", err)
	}

	e := &Engine{
		queryDataFacade: df,
		plugins:         make(map[string]Plugin),
	}

	// The following plugins handle all requests.
	e.RegisterPlugin(NewHelloWorldPlugin())
	e.RegisterPlugin(NewLocatePlugin(df))
	e.RegisterPlugin(NewNearestPlugin(df))
	e.RegisterPlugin(NewTimestampPlugin(df))
	e.RegisterPlugin(NewViaRoutePlugin(df))

	metrics.NetworkNodes.Set(float64(df.GetNumberOfNodes()))
	metrics.NetworkEdges.Set(float64(df.GetNumberOfEdges()))
	return e, nil
}

// RegisterPlugin adds a plugin under its descriptor. Registering a second
// plugin with the same descriptor replaces the first; the log line is the
// only notice anyone gets.
func (e *Engine) RegisterPlugin(p Plugin) {
	descriptor := p.GetDescriptor()
	if _, exists := e.plugins[descriptor]; exists {
		log.Printf("replacing already registered plugin: %s", descriptor)
	}
	log.Printf("loaded plugin: %s", descriptor)
	e.plugins[descriptor] = p
}

// RunQuery dispatches params to the plugin registered for params.Service,
// which alone decides what ends up in reply. An unknown service overwrites
// reply with the stock bad-request response without invoking anything. That
// path is normal control flow, not an error.
func (e *Engine) RunQuery(params RouteParameters, reply *Reply) {
	plugin, found := e.plugins[params.Service]
	if !found {
		*reply = StockReply(StatusBadRequest)
		return
	}
	reply.Status = StatusOK
	plugin.HandleRequest(params, reply)
}

// Close releases the network data. Call it once, after the last query.
func (e *Engine) Close() error {
	return e.queryDataFacade.Close()
}
