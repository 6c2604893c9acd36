package app

import (
	"fmt"
	"regexp"

	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/errors"
)

// isPath is the RegExp to ensure the routes make sense.
var isPath = regexp.MustCompile(`^[a-zA-Z0-9_/]+$`).MatchString

// Router allows us to register many handlers with different message paths
// and then direct each message to the proper handler.
//
// Minimal interface modeled after net/http.ServeMux.
type Router struct {
	routes map[string]arabica.Handler
}

var _ arabica.Registry = (*Router)(nil)
var _ arabica.Handler = (*Router)(nil)

// NewRouter returns a new empty router instance.
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]arabica.Handler, 32),
	}
}

// Handle adds a new Handler for the path of the given message. It panics
// if another Handler was already registered.
func (r *Router) Handle(msg arabica.Msg, h arabica.Handler) {
	path := msg.Path()
	if !isPath(path) {
		panic(fmt.Sprintf("invalid path: %q", path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("re-registering route: %q", path))
	}
	r.routes[path] = h
}

// handler returns the registered Handler for this path. If no path is
// found, returns a noSuchPath Handler.
func (r *Router) handler(path string) arabica.Handler {
	if h, ok := r.routes[path]; ok {
		return h
	}
	return noSuchPathHandler{path: path}
}

// Check dispatches to the proper handler based on path.
func (r *Router) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.CheckResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	return r.handler(msg.Path()).Check(ctx, db, tx)
}

// Deliver dispatches to the proper handler based on path.
func (r *Router) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	return r.handler(msg.Path()).Deliver(ctx, db, tx)
}

type noSuchPathHandler struct {
	path string
}

var _ arabica.Handler = noSuchPathHandler{}

func (h noSuchPathHandler) Check(arabica.Context, arabica.KVStore, arabica.Tx) (*arabica.CheckResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", h.path)
}

func (h noSuchPathHandler) Deliver(arabica.Context, arabica.KVStore, arabica.Tx) (*arabica.DeliverResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", h.path)
}
