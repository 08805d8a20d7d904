package blueprint

import "log/slog"

// evalState is a (E1)-(E3) compliant depth-first resolver: every thunk
// is invoked at most once per Evaluate call, results are never mutated
// after caching, and a failing thunk aborts evaluation before any
// partial tree escapes.
type evalState struct {
	graph      *ThunkGraph
	cache      map[Path]any
	inProgress map[Path]bool
	stack      []Path
	logger     *slog.Logger
}

// Evaluate resolves graph's thunks to a concrete value, starting from
// graph.Root. Cycles are detected via an in-progress set and reported as
// a [CycleError] before any partial value escapes; errors raised by a
// thunk's compute function are wrapped with the offending path as
// context via [ConstructionError].
func Evaluate(graph *ThunkGraph) (any, error) {
	return EvaluateWithLogger(graph, slog.Default())
}

// EvaluateWithLogger is [Evaluate] with an explicit logger for
// construction tracing (cache hits, cycle detection), used by
// [Blueprint.Make] so callers can route trace output anywhere
// [log.Config] points it.
func EvaluateWithLogger(graph *ThunkGraph, logger *slog.Logger) (any, error) {
	if logger == nil {
		logger = slog.Default()
	}

	st := &evalState{
		graph:      graph,
		cache:      make(map[Path]any),
		inProgress: make(map[Path]bool),
		logger:     logger,
	}

	return st.resolve(graph.Root)
}

func (st *evalState) resolve(path Path) (any, error) {
	if v, ok := st.cache[path]; ok {
		st.logger.Debug("blueprint: cache hit", "path", string(path))

		return v, nil
	}

	if st.inProgress[path] {
		cycle := append(append([]Path{}, st.stack...), path)
		st.logger.Debug("blueprint: cycle detected", "path", string(path))

		return nil, &CycleError{Stack: cycle}
	}

	thunk, ok := st.graph.Thunks[path]
	if !ok {
		return nil, &ReferenceError{Path: path, Target: path}
	}

	st.inProgress[path] = true
	st.stack = append(st.stack, path)

	kwargs := make(map[string]any, len(thunk.Kwargs))

	for name, ref := range thunk.Kwargs {
		v, err := st.resolve(ref.Path)
		if err != nil {
			st.inProgress[path] = false
			st.stack = st.stack[:len(st.stack)-1]

			return nil, err
		}

		kwargs[name] = v
	}

	result, err := thunk.Compute(kwargs)

	st.inProgress[path] = false
	st.stack = st.stack[:len(st.stack)-1]

	if err != nil {
		return nil, wrapConstruction(path, err)
	}

	st.cache[path] = result

	return result, nil
}
