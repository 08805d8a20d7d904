package blueprint

import (
	"fmt"
	"reflect"
	"sync"
)

// Module is an entry in [Registry]'s module namespace: a callable
// resolved by the function(arity?) type form. The standard and subclass
// meta-factories do not look up modules.
type Module any

// Registry is the process-wide map from (namespace, name) to [Schema]
// and from module short name to [Module] described in spec §5. Writes
// happen only during schema module initialization; reads happen during
// construction. Re-registration with an identical value is idempotent;
// re-registration with a different value is an error.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
	modules map[string]Module
}

// NewRegistry creates an empty Registry. Most callers should use
// [DefaultRegistry] instead of creating their own, unless isolating
// registrations for a test.
func NewRegistry() *Registry {
	return &Registry{
		schemas: make(map[string]*Schema),
		modules: make(map[string]Module),
	}
}

// DefaultRegistry is the process-wide Registry used by [Register] and
// [MustRegister].
var DefaultRegistry = NewRegistry()

func registryKey(namespace, name string) string {
	if namespace == "" {
		return name
	}

	return namespace + ":" + name
}

// RegisterSchema registers schema under namespace and name. A second
// registration of the same key with the identical *Schema pointer is a
// no-op; a second registration with a different schema returns
// [ErrConflictingRegistration].
func (r *Registry) RegisterSchema(namespace, name string, schema *Schema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := registryKey(namespace, name)

	existing, ok := r.schemas[key]
	if ok && existing != schema {
		return fmt.Errorf("%w: schema %s", ErrConflictingRegistration, key)
	}

	r.schemas[key] = schema

	return nil
}

// Schema looks up a previously registered schema.
func (r *Registry) Schema(namespace, name string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.schemas[registryKey(namespace, name)]

	return s, ok
}

// RegisterModule registers mod under shortName. A second registration
// with a value that is not reflect.DeepEqual to the first returns
// [ErrConflictingRegistration].
func (r *Registry) RegisterModule(shortName string, mod Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.modules[shortName]
	if ok && !reflect.DeepEqual(existing, mod) {
		return fmt.Errorf("%w: module %s", ErrConflictingRegistration, shortName)
	}

	r.modules[shortName] = mod

	return nil
}

// Module looks up a previously registered module.
func (r *Registry) Module(shortName string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.modules[shortName]

	return m, ok
}

// ModuleNames returns every registered module's short name, in no
// particular order.
func (r *Registry) ModuleNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.modules))
	for n := range r.modules {
		names = append(names, n)
	}

	return names
}

// Register registers schema under namespace and name in
// [DefaultRegistry], panicking on conflict. Use
// [Registry.RegisterSchema] directly to handle the error instead.
func Register(namespace, name string, schema *Schema) {
	MustRegister(namespace, name, schema)
}

// MustRegister is [Registry.RegisterSchema] against [DefaultRegistry],
// panicking on a conflicting registration.
func MustRegister(namespace, name string, schema *Schema) {
	if err := DefaultRegistry.RegisterSchema(namespace, name, schema); err != nil {
		panic(err)
	}
}
