// Generator next()/suspend/resume protocol (spec.md §4.5). Grounded on
// original_source/njs/basic_types/JSGenerator.h for the three-state
// lifecycle (suspended-start, suspended-yield, completed) and on
// resumable.go for the captured frame this wraps.
package heap

// GeneratorRunState names where a generator object currently sits in
// its lifecycle (spec.md §4.5).
type GeneratorRunState uint8

const (
	GenSuspendedStart GeneratorRunState = iota
	GenSuspendedYield
	GenExecuting
	GenCompleted
)

// GeneratorExt is the Ext payload for ClassGenerator objects.
type GeneratorExt struct {
	// Closure is the generator function's own FunctionExt (its Meta and
	// captured cells); Args is the argument list the generator was
	// called with, both held until the first next() call builds the
	// initial frame (spec.md §4.5's "suspended at the start" state).
	Closure *FunctionExt
	This    Value
	Args    []Value
	State   *ResumableState
	Run     GeneratorRunState

	// IsAsync marks an async-function instance reusing the same
	// suspend/resume machinery (spec.md §4.5's note that await
	// desugars onto the generator protocol); such instances are never
	// externally visible as a Generator object's class, but share this
	// extension shape when internal/interp drives them.
	IsAsync bool
}

// NewGeneratorExt builds a fresh, not-yet-started generator instance
// over closure's compiled body, called with this/args.
func NewGeneratorExt(closure *FunctionExt, this Value, args []Value) *GeneratorExt {
	return &GeneratorExt{Closure: closure, This: this, Args: args, Run: GenSuspendedStart}
}

// CanResume reports whether Next may be driven again.
func (g *GeneratorExt) CanResume() bool {
	return g.Run == GenSuspendedStart || g.Run == GenSuspendedYield
}
