package devspec

import (
	"github.com/shinji-kodama/dev-compose/internal/schema"
)

// DevSpec is the validated configuration model. It is built once per run
// and only read afterwards.
type DevSpec struct {
	// model is the imported document. Handler lists hold Action values.
	model *schema.Map

	defaults     ExecContext
	handlers     map[string][]Action
	handlerNames []string
}

// New validates doc and builds a DevSpec from it.
func New(doc any) (*DevSpec, error) {
	s := &DevSpec{model: schema.NewMap()}
	if err := s.Import(doc, schema.Options{}); err != nil {
		return nil, err
	}
	return s, nil
}

// Import validates doc and applies it on top of the current model. With
// opts.Merge, keys the document omits keep their current values. A failed
// import leaves the model untouched.
func (s *DevSpec) Import(doc any, opts schema.Options) error {
	target := s.model.Clone()
	if _, err := schema.Import(doc, target, Schema, "", opts); err != nil {
		return err
	}
	s.model = target
	s.refresh()
	return nil
}

// refresh rebuilds the typed views from the imported model.
func (s *DevSpec) refresh() {
	if v, _ := s.model.Get("command_defaults"); v != nil {
		s.defaults = execContextOf(v.(*schema.Map))
	} else {
		s.defaults = ExecContext{Environment: map[string]string{}}
	}

	s.handlers = make(map[string][]Action)
	s.handlerNames = nil
	v, _ := s.model.Get("handlers")
	hm, _ := v.(*schema.Map)
	for _, name := range hm.Keys() {
		raw, _ := hm.Get(name)
		list, _ := raw.([]any)
		actions := make([]Action, 0, len(list))
		for _, a := range list {
			actions = append(actions, a.(Action))
		}
		s.handlers[name] = actions
		s.handlerNames = append(s.handlerNames, name)
	}
}

// Buildkit reports whether BuildKit should be enabled for compose builds.
func (s *DevSpec) Buildkit() bool {
	v, _ := s.model.Get("buildkit")
	b, ok := v.(bool)
	return !ok || b
}

// CommandDefaults returns the context every command action inherits.
func (s *DevSpec) CommandDefaults() ExecContext {
	return Layer(s.defaults)
}

// ServiceNames returns the declared service names in document order.
func (s *DevSpec) ServiceNames() []string {
	v, _ := s.model.Get("services")
	services, ok := v.(*schema.Map)
	if !ok {
		return []string{}
	}
	return services.Keys()
}

// DefaultServiceName returns command_defaults.service when set, else the
// first declared service. ok is false when neither exists.
func (s *DevSpec) DefaultServiceName() (name string, ok bool) {
	if s.defaults.Service != nil {
		return *s.defaults.Service, true
	}
	if names := s.ServiceNames(); len(names) > 0 {
		return names[0], true
	}
	return "", false
}

// HandlerNames returns the handler names in document order.
func (s *DevSpec) HandlerNames() []string {
	out := make([]string, len(s.handlerNames))
	copy(out, s.handlerNames)
	return out
}

// ActionsFor returns the actions of the named handler. An unknown name
// yields an empty, non-nil slice.
func (s *DevSpec) ActionsFor(name string) []Action {
	actions := s.handlers[name]
	out := make([]Action, len(actions))
	copy(out, actions)
	return out
}

// HasActionsFor reports whether the handler exists and has at least one
// action.
func (s *DevSpec) HasActionsFor(name string) bool {
	return len(s.handlers[name]) > 0
}

// ComposeModel returns the compose pass-through sections that are set,
// deep-copied so the caller may modify the result freely.
func (s *DevSpec) ComposeModel() *schema.Map {
	out := schema.NewMap()
	for _, key := range composeKeys {
		if v, _ := s.model.Get(key); v != nil {
			out.Set(key, schema.Clone(v))
		}
	}
	return out
}
