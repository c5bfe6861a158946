package core

import (
	"fmt"
	"math"
	"reflect"
)

// Behavior describes what a substituted target does while its substitution is active.
// Build one with Return, Sequence, Derive or Raise.
type Behavior struct {
	kind    BehaviorKind
	values  []any
	entries []any
	derive  any
	err     error
}

// Derive calls fn with the exact arguments each intercepted call receives. fn must have the
// target's function type; whatever it returns or panics with is what the caller observes.
func Derive(fn any) Behavior {
	return Behavior{kind: KindDerive, derive: fn}
}

// Raise makes every call fail with err. A function whose last result is an error returns
// zero values and err; any other function panics with err.
func Raise(err error) Behavior {
	return Behavior{kind: KindRaise, err: err}
}

// Return makes every call return the given values. For a value (non-function) target,
// pass exactly one value: it replaces the variable for the scope's lifetime.
func Return(values ...any) Behavior {
	return Behavior{kind: KindReturn, values: values}
}

// Sequence returns one entry per call, in order. Entries for single-result functions are the
// bare value; entries for functions with zero or several results are Results. The call after
// the last entry panics with an ExhaustedError.
func Sequence(entries ...any) Behavior {
	return Behavior{kind: KindSequence, entries: entries}
}

// Kind reports which kind of behavior b is.
func (b Behavior) Kind() BehaviorKind {
	return b.kind
}

// BehaviorKind enumerates the substitute behaviors.
type BehaviorKind int

// BehaviorKind values.
const (
	KindReturn BehaviorKind = iota
	KindSequence
	KindDerive
	KindRaise
)

func (k BehaviorKind) String() string {
	switch k {
	case KindReturn:
		return "return"
	case KindSequence:
		return "sequence"
	case KindDerive:
		return "derive"
	case KindRaise:
		return "raise"
	default:
		return fmt.Sprintf("BehaviorKind(%d)", int(k))
	}
}

// Results groups the values of a single Sequence entry for a function with zero or several results.
type Results []any

// unexported variables.
var (
	//nolint:gochecknoglobals // reflect type constant
	errorType = reflect.TypeFor[error]()
)

// plan is a Behavior checked and converted against one target type.
type plan struct {
	kind   BehaviorKind
	fixed  []reflect.Value
	steps  [][]reflect.Value
	derive reflect.Value
	err    error
	errOut bool
	outs   []reflect.Type
}

// compile validates behavior against typ and pre-converts its values so that dispatch never
// has to fail on a type mismatch.
func compile(name string, typ reflect.Type, behavior Behavior) (*plan, error) {
	if typ.Kind() != reflect.Func {
		return compileValue(name, typ, behavior)
	}

	outs := make([]reflect.Type, typ.NumOut())
	for i := range outs {
		outs[i] = typ.Out(i)
	}

	compiled := &plan{kind: behavior.kind, outs: outs}

	switch behavior.kind {
	case KindReturn:
		vals, err := convertResults(name, outs, behavior.values)
		if err != nil {
			return nil, err
		}

		compiled.fixed = vals
	case KindSequence:
		compiled.steps = make([][]reflect.Value, 0, len(behavior.entries))

		for i, entry := range behavior.entries {
			vals, err := convertResults(fmt.Sprintf("%s sequence entry %d", name, i), outs, entryResults(entry, len(outs)))
			if err != nil {
				return nil, err
			}

			compiled.steps = append(compiled.steps, vals)
		}
	case KindDerive:
		derive, err := convertDerive(name, typ, behavior.derive)
		if err != nil {
			return nil, err
		}

		compiled.derive = derive
	case KindRaise:
		if behavior.err == nil {
			return nil, incompatible(name, "raise needs a non-nil error")
		}

		compiled.err = behavior.err
		compiled.errOut = len(outs) > 0 && outs[len(outs)-1] == errorType
	default:
		return nil, incompatible(name, "unknown behavior %v", behavior.kind)
	}

	return compiled, nil
}

// compileValue handles targets that are plain variables rather than functions.
func compileValue(name string, typ reflect.Type, behavior Behavior) (*plan, error) {
	if behavior.kind != KindReturn {
		return nil, incompatible(name, "%v behavior needs a function target, got %v", behavior.kind, typ)
	}

	if len(behavior.values) != 1 {
		return nil, incompatible(name, "value target takes exactly 1 value, got %d", len(behavior.values))
	}

	val, err := convertValue(behavior.values[0], typ)
	if err != nil {
		return nil, incompatible(name, "%v", err)
	}

	return &plan{kind: KindReturn, fixed: []reflect.Value{val}}, nil
}

func convertDerive(name string, typ reflect.Type, fn any) (reflect.Value, error) {
	derive := reflect.ValueOf(fn)
	if !derive.IsValid() || derive.Kind() != reflect.Func || derive.IsNil() {
		return reflect.Value{}, incompatible(name, "derive needs a non-nil function, got %T", fn)
	}

	if derive.Type() == typ {
		return derive, nil
	}

	if !derive.Type().ConvertibleTo(typ) {
		return reflect.Value{}, incompatible(name, "derive function is %v, target is %v", derive.Type(), typ)
	}

	return derive.Convert(typ), nil
}

func convertResults(name string, outs []reflect.Type, values []any) ([]reflect.Value, error) {
	if len(values) != len(outs) {
		return nil, incompatible(name, "want %d result values, got %d", len(outs), len(values))
	}

	converted := make([]reflect.Value, len(values))

	for i, value := range values {
		val, err := convertValue(value, outs[i])
		if err != nil {
			return nil, incompatible(name, "result %d: %v", i, err)
		}

		converted[i] = val
	}

	return converted, nil
}

// convertValue returns a Value of exactly typ holding value. Interface-typed results must be
// wrapped this way: reflect.MakeFunc rejects results whose dynamic type differs from the declared one.
func convertValue(value any, typ reflect.Type) (reflect.Value, error) {
	if value == nil {
		if nilable(typ.Kind()) {
			return reflect.Zero(typ), nil
		}

		return reflect.Value{}, fmt.Errorf("nil is not a valid %v", typ)
	}

	val := reflect.ValueOf(value)

	if val.Type().AssignableTo(typ) {
		out := reflect.New(typ).Elem()
		out.Set(val)

		return out, nil
	}

	if numeric(val.Kind()) && numeric(typ.Kind()) {
		if !representable(val, typ) {
			return reflect.Value{}, fmt.Errorf("%v does not fit in %v", value, typ)
		}

		return val.Convert(typ), nil
	}

	return reflect.Value{}, fmt.Errorf("%T is not assignable to %v", value, typ)
}

// representable reports whether the numeric val converts to typ without overflow, sign loss
// or truncation.
func representable(val reflect.Value, typ reflect.Type) bool {
	zero := reflect.Zero(typ)

	switch {
	case signed(val.Kind()):
		n := val.Int()

		switch {
		case signed(typ.Kind()):
			return !zero.OverflowInt(n)
		case unsigned(typ.Kind()):
			return n >= 0 && !zero.OverflowUint(uint64(n))
		default:
			f := val.Convert(typ).Float()

			return f >= math.MinInt64 && f < math.MaxInt64 && int64(f) == n
		}
	case unsigned(val.Kind()):
		n := val.Uint()

		switch {
		case signed(typ.Kind()):
			return n <= math.MaxInt64 && !zero.OverflowInt(int64(n))
		case unsigned(typ.Kind()):
			return !zero.OverflowUint(n)
		default:
			f := val.Convert(typ).Float()

			return f < math.MaxUint64 && uint64(f) == n
		}
	default:
		f := val.Float()

		switch {
		case signed(typ.Kind()):
			return f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 && !zero.OverflowInt(int64(f))
		case unsigned(typ.Kind()):
			return f == math.Trunc(f) && f >= 0 && f < math.MaxUint64 && !zero.OverflowUint(uint64(f))
		default:
			return !zero.OverflowFloat(f)
		}
	}
}

func signed(kind reflect.Kind) bool {
	return kind >= reflect.Int && kind <= reflect.Int64
}

func unsigned(kind reflect.Kind) bool {
	return kind >= reflect.Uint && kind <= reflect.Uintptr
}

// entryResults spreads one Sequence entry over the target's result count.
func entryResults(entry any, numOut int) []any {
	if results, ok := entry.(Results); ok {
		return results
	}

	if entry == nil && numOut == 0 {
		return nil
	}

	return []any{entry}
}

func nilable(kind reflect.Kind) bool {
	switch kind { //nolint:exhaustive // everything else is not nilable
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return true
	default:
		return false
	}
}

func numeric(kind reflect.Kind) bool {
	return (kind >= reflect.Int && kind <= reflect.Uintptr) ||
		kind == reflect.Float32 || kind == reflect.Float64
}
