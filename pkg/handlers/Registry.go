package handlers

import "fmt"
import "sync"

import "github.com/lapis-ps/paramserver/pkg/ferrors"


//=========================================== Handler Registry


/*
	Registry maps string identifiers to handler constructors -- translated
	from TSHandlerFactory/REGISTER_TSHandler, dropping the C++ macro and
	singleton-pointer machinery for a plain map guarded by a mutex (spec.md
	§9: "no inheritance hierarchy is required").
*/

type Registry struct {
	mu   sync.Mutex
	ctor map[string]func() Handler
}

func NewRegistry() *Registry {
	r := &Registry{ctor: make(map[string]func() Handler)}

	r.Register(SGDName, NewSGDHandler)
	r.Register(AdaGradName, NewAdaGradHandler)

	return r
}

/*
	Register associates id with a constructor closure -- the Go equivalent
	of REGISTER_TSHandler(type, handler).
*/

func (r *Registry) Register(id string, ctor func() Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ctor[id] = ctor
}

/*
	Create builds a new Handler for id. An unknown id is a ConfigError --
	the same fatal condition TSHandlerFactory::Create signals by returning
	a null pointer the caller is expected to check (spec.md §7/Q8).
*/

func (r *Registry) Create(id string) (Handler, error) {
	r.mu.Lock()
	ctor, ok := r.ctor[id]
	r.mu.Unlock()

	if !ok { return nil, ferrors.NewConfigError(fmt.Sprintf("no handler registered for identifier %q", id)) }

	return ctor(), nil
}
