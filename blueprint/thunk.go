package blueprint

// ParamRef is a resolved handle to another path in a [ThunkGraph].
type ParamRef struct {
	Path Path
}

// Thunk is a deferred compute node: a function of named, already-resolved
// keyword arguments, each bound to another path via a [ParamRef].
type Thunk struct {
	Compute func(kwargs map[string]any) (any, error)
	Kwargs  map[string]ParamRef
}

// ThunkGraph is the output of [Walk]: every constructed node's path
// mapped to its Thunk, plus the root path to evaluate.
type ThunkGraph struct {
	Thunks map[Path]*Thunk
	Root   Path
}

// identityThunk returns a Thunk that simply forwards the single kwarg
// "v", used for References and trivial Castable/Concrete/default leaves.
func identityThunk(ref ParamRef) *Thunk {
	return &Thunk{
		Compute: func(kwargs map[string]any) (any, error) { return kwargs["v"], nil },
		Kwargs:  map[string]ParamRef{"v": ref},
	}
}

// valueThunk returns a Thunk with no kwargs that always produces value.
func valueThunk(value any) *Thunk {
	return &Thunk{
		Compute: func(map[string]any) (any, error) { return value, nil },
		Kwargs:  map[string]ParamRef{},
	}
}
