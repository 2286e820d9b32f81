package devspec

import (
	"fmt"
	"strings"

	"github.com/shinji-kodama/dev-compose/internal/schema"
)

// ExecContext is where and how a command runs inside a container. A nil
// field is unset and falls through to a lower layer.
type ExecContext struct {
	Service     *string
	User        *string
	WorkingDir  *string
	Environment map[string]string
}

// Layer merges contexts from lowest to highest precedence. Set fields of a
// later layer replace earlier ones; environments merge key by key with the
// later layer winning. The inputs are not modified.
func Layer(base ExecContext, overrides ...ExecContext) ExecContext {
	out := ExecContext{
		Service:     base.Service,
		User:        base.User,
		WorkingDir:  base.WorkingDir,
		Environment: make(map[string]string, len(base.Environment)),
	}
	for k, v := range base.Environment {
		out.Environment[k] = v
	}
	for _, o := range overrides {
		if o.Service != nil {
			out.Service = o.Service
		}
		if o.User != nil {
			out.User = o.User
		}
		if o.WorkingDir != nil {
			out.WorkingDir = o.WorkingDir
		}
		for k, v := range o.Environment {
			out.Environment[k] = v
		}
	}
	return out
}

// ServiceName returns the resolved service, or "" when unset.
func (c ExecContext) ServiceName() string {
	return deref(c.Service)
}

// Action is one step of a handler.
type Action interface {
	// Label is the short text shown in progress output.
	Label() string
	isAction()
}

// CommandAction runs Command in a service container.
type CommandAction struct {
	Context ExecContext
	Command string

	// Args, when non-nil, are passed verbatim after Command. When nil the
	// command text is split on whitespace instead. An explicit empty list
	// is non-nil.
	Args []string
}

// SpecialAction performs a built-in operation named Name.
type SpecialAction struct {
	Context ExecContext
	Name    string
}

// DelegateAction runs the handler named Handler.
type DelegateAction struct {
	Handler string

	// Args replaces the caller's extra arguments when non-nil.
	Args []string
}

func (a CommandAction) Label() string  { return a.Command }
func (a SpecialAction) Label() string  { return a.Name }
func (a DelegateAction) Label() string { return a.Handler }

func (CommandAction) isAction()  {}
func (SpecialAction) isAction()  {}
func (DelegateAction) isAction() {}

// actionKinds lists the mutually exclusive keys of an action record in
// resolution order.
var actionKinds = []string{"command", "action", "handler"}

// validateAction checks that exactly one of command, action and handler
// is set.
func validateAction(value any, _ string) error {
	m := value.(*schema.Map)
	var set []string
	for _, key := range actionKinds {
		if v, _ := m.Get(key); v != nil {
			set = append(set, fmt.Sprintf("%q", key))
		}
	}
	switch len(set) {
	case 0:
		return fmt.Errorf(`either "command", "handler" or "action" must be specified`)
	case 1:
		return nil
	default:
		return fmt.Errorf("cannot specify both %s for a single action", joinWords(set))
	}
}

// decodeAction turns a validated action record into its typed variant.
// Resolution order is command, then action, then handler.
func decodeAction(value any, _ string) (any, error) {
	m := value.(*schema.Map)
	ctx := execContextOf(m)
	args := stringsOf(m, "args")

	if command := stringOf(m, "command"); command != nil {
		return CommandAction{Context: ctx, Command: *command, Args: args}, nil
	}
	if name := stringOf(m, "action"); name != nil {
		return SpecialAction{Context: ctx, Name: *name}, nil
	}
	if handler := stringOf(m, "handler"); handler != nil {
		return DelegateAction{Handler: *handler, Args: args}, nil
	}
	return nil, fmt.Errorf("action has no command, handler or action")
}

// execContextOf reads the service/user/working_dir/environment keys.
func execContextOf(m *schema.Map) ExecContext {
	ctx := ExecContext{
		Service:     stringOf(m, "service"),
		User:        stringOf(m, "user"),
		WorkingDir:  stringOf(m, "working_dir"),
		Environment: map[string]string{},
	}
	if env, _ := m.Get("environment"); env != nil {
		em := env.(*schema.Map)
		for _, k := range em.Keys() {
			v, _ := em.Get(k)
			ctx.Environment[k] = v.(string)
		}
	}
	return ctx
}

func stringOf(m *schema.Map, key string) *string {
	v, _ := m.Get(key)
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

// stringsOf returns nil when key is absent or null, and a non-nil slice
// (possibly empty) otherwise.
func stringsOf(m *schema.Map, key string) []string {
	v, _ := m.Get(key)
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, e.(string))
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// joinWords joins items as `a and b` or `a, b and c`.
func joinWords(items []string) string {
	if len(items) <= 1 {
		return strings.Join(items, "")
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}
