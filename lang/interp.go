// The tree-walking evaluator: walks the AST arena and turns it into engine
// mutations. Identifiers that are not call targets evaluate to their lexeme
// as a string; that is how `Cpu`/`Io` tags travel inside event tuples.

package lang

import (
	"fmt"
	"strconv"

	"github.com/sim-os/sim-os/sim"
)

// Machine is the engine surface the evaluator mutates. *sim.Engine
// implements it.
type Machine interface {
	EmplaceProcess(name string, pid, arrival uint64, events []sim.Event) *sim.Process
	Bounds() *sim.Bounds
}

// Evaluator walks one AST against one machine. A fresh Evaluator per script
// run keeps spawn_random_process pid draws unique within that run only.
type Evaluator struct {
	machine Machine
	ast     *Ast
	entropy *sim.Entropy

	spawnedPIDs map[uint64]bool
}

// Eval lexes, parses, and evaluates a whole scenario against the machine.
// Any lex, parse, or evaluation error aborts and leaves the machine with
// whatever mutations already applied; the driver treats that as fatal.
func Eval(source string, machine Machine, entropy *sim.Entropy) error {
	tokens, err := Lex(source)
	if err != nil {
		return err
	}
	ast, err := Parse(tokens)
	if err != nil {
		return err
	}
	return NewEvaluator(machine, entropy).Run(ast)
}

// NewEvaluator creates an evaluator bound to a machine and entropy source.
func NewEvaluator(machine Machine, entropy *sim.Entropy) *Evaluator {
	return &Evaluator{
		machine:     machine,
		entropy:     entropy,
		spawnedPIDs: make(map[uint64]bool),
	}
}

// Run evaluates every statement in order, for side effects.
func (ev *Evaluator) Run(ast *Ast) error {
	ev.ast = ast
	for _, statement := range ast.Statements {
		if _, err := ev.evaluate(ast.Expression(statement.Expr)); err != nil {
			return err
		}
	}
	return nil
}

func (ev *Evaluator) evaluate(expr Expression) (Value, error) {
	switch kind := expr.Kind.(type) {
	case StringExpr:
		return String(kind.Literal.Lexeme), nil

	case NumberExpr:
		n, err := strconv.ParseUint(kind.Literal.Lexeme, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot parse number %q at %s", kind.Literal.Lexeme, expr.Span)
		}
		return Number(n), nil

	case VariableExpr:
		return String(kind.Name.Lexeme), nil

	case ListExpr:
		return ev.evaluateElements(kind.Elements)

	case TupleExpr:
		return ev.evaluateElements(kind.Elements)

	case RangeExpr:
		start, err := strconv.ParseUint(kind.Start.Lexeme, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot parse number %q at %s", kind.Start.Lexeme, expr.Span)
		}
		end, err := strconv.ParseUint(kind.End.Lexeme, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot parse number %q at %s", kind.End.Lexeme, expr.Span)
		}
		return List{Number(start), Number(end)}, nil

	case ForExpr:
		return ev.evaluateFor(kind)

	case ConstantExpr:
		return ev.evaluateConstant(kind)

	case CallExpr:
		return ev.evaluateCall(kind)

	default:
		return nil, fmt.Errorf("unhandled expression at %s", expr.Span)
	}
}

func (ev *Evaluator) evaluateElements(ids []ExpressionID) (Value, error) {
	result := make(List, 0, len(ids))
	for _, id := range ids {
		value, err := ev.evaluate(ev.ast.Expression(id))
		if err != nil {
			return nil, err
		}
		result = append(result, value)
	}
	return result, nil
}

// evaluateFor executes the body end-start times in order. The loop variable
// is not exposed to the body.
func (ev *Evaluator) evaluateFor(loop ForExpr) (Value, error) {
	rangeValue, err := ev.evaluate(ev.ast.Expression(loop.Range))
	if err != nil {
		return nil, err
	}
	bounds, ok := rangeValue.(List)
	if !ok || len(bounds) != 2 {
		return nil, fmt.Errorf("for loop range must be `start..end`")
	}
	start, startOK := bounds[0].(Number)
	end, endOK := bounds[1].(Number)
	if !startOK || !endOK {
		return nil, fmt.Errorf("for loop range must be numeric")
	}

	for i := uint64(start); i < uint64(end); i++ {
		for _, id := range loop.Body {
			if _, err := ev.evaluate(ev.ast.Expression(id)); err != nil {
				return nil, err
			}
		}
	}
	return Unit{}, nil
}

// evaluateConstant binds one of the named engine bounds.
func (ev *Evaluator) evaluateConstant(constant ConstantExpr) (Value, error) {
	value, err := ev.evaluate(ev.ast.Expression(constant.Value))
	if err != nil {
		return nil, err
	}
	n, ok := value.(Number)
	if !ok {
		return nil, fmt.Errorf("constant `%s` must be bound to a number, got %s",
			constant.Name.Lexeme, valueTypeName(value))
	}

	bounds := ev.machine.Bounds()
	switch constant.Name.Lexeme {
	case "max_processes":
		bounds.MaxProcesses = uint64(n)
	case "max_events_per_process":
		bounds.MaxEventsPerProcess = uint64(n)
	case "max_single_event_duration":
		bounds.MaxSingleEventDuration = uint64(n)
	case "max_arrival_time":
		bounds.MaxArrivalTime = uint64(n)
	default:
		return nil, fmt.Errorf("invalid constant for current simulation: %s\n"+
			"available constants are: max_processes, max_events_per_process, max_single_event_duration, max_arrival_time",
			constant.Name.Lexeme)
	}
	return Unit{}, nil
}

func (ev *Evaluator) evaluateCall(call CallExpr) (Value, error) {
	switch call.Identifier.Lexeme {
	case "spawn_process":
		return ev.spawnProcess(call.Arguments)
	case "spawn_random_process":
		return ev.spawnRandomProcess(call.Arguments)
	default:
		return nil, fmt.Errorf("unknown builtin `%s`", call.Identifier.Lexeme)
	}
}

// spawnProcess implements
// spawn_process(name: string, pid: int, arrival: int, events: List<Tuple>).
func (ev *Evaluator) spawnProcess(arguments []ExpressionID) (Value, error) {
	const name = "spawn_process"
	const argc = 4
	if len(arguments) != argc {
		return nil, fmt.Errorf("failed to interpret call to builtin `%s`: expected %d arguments, %d were provided",
			name, argc, len(arguments))
	}

	processName, err := ev.stringArgument(arguments[0], 0, name)
	if err != nil {
		return nil, err
	}
	pid, err := ev.numberArgument(arguments[1], 1, name)
	if err != nil {
		return nil, err
	}
	arrival, err := ev.numberArgument(arguments[2], 2, name)
	if err != nil {
		return nil, err
	}

	listValue, err := ev.evaluate(ev.ast.Expression(arguments[3]))
	if err != nil {
		return nil, err
	}
	list, ok := listValue.(List)
	if !ok {
		return nil, eventListTypeError(3, name)
	}
	events, err := ev.listAsEvents(list, name)
	if err != nil {
		return nil, err
	}

	ev.machine.EmplaceProcess(processName, pid, arrival, events)
	return Unit{}, nil
}

// listAsEvents decodes [(kind, duration), ...] into engine events, sampling
// a fresh resource usage per burst.
func (ev *Evaluator) listAsEvents(list List, builtin string) ([]sim.Event, error) {
	events := make([]sim.Event, 0, len(list))
	for _, element := range list {
		tuple, ok := element.(List)
		if !ok || len(tuple) != 2 {
			return nil, eventListTypeError(3, builtin)
		}
		tag, ok := tuple[0].(String)
		if !ok {
			return nil, eventListTypeError(3, builtin)
		}
		duration, ok := tuple[1].(Number)
		if !ok {
			return nil, eventListTypeError(3, builtin)
		}
		kind, err := sim.ParseEventKind(string(tag))
		if err != nil {
			return nil, eventListTypeError(3, builtin)
		}
		if duration == 0 {
			return nil, fmt.Errorf("event duration must be at least 1 in call to builtin `%s`", builtin)
		}
		events = append(events, sim.Event{
			Kind:          kind,
			Duration:      uint64(duration),
			ResourceUsage: ev.entropy.ResourceUsage(),
		})
	}
	return events, nil
}

// spawnRandomProcess draws a fresh process within the machine's bounds. The
// pid is unique among this evaluator's own prior draws.
func (ev *Evaluator) spawnRandomProcess(arguments []ExpressionID) (Value, error) {
	const name = "spawn_random_process"
	if len(arguments) != 0 {
		return nil, fmt.Errorf("failed to interpret call to builtin `%s`: expected 0 arguments, %d were provided",
			name, len(arguments))
	}

	bounds := ev.machine.Bounds()
	if uint64(len(ev.spawnedPIDs)) > bounds.MaxProcesses {
		return nil, fmt.Errorf("no free pids left below max_processes = %d", bounds.MaxProcesses)
	}

	pid := ev.entropy.Natural(0, bounds.MaxProcesses)
	for ev.spawnedPIDs[pid] {
		pid = ev.entropy.Natural(0, bounds.MaxProcesses)
	}
	ev.spawnedPIDs[pid] = true

	arrival := ev.entropy.Natural(0, bounds.MaxArrivalTime)

	count := ev.entropy.Natural(1, bounds.MaxEventsPerProcess)
	events := make([]sim.Event, 0, count)
	for i := uint64(0); i < count; i++ {
		kind := sim.EventCPU
		if ev.entropy.Natural(0, 1) == 1 {
			kind = sim.EventIO
		}
		events = append(events, sim.Event{
			Kind:          kind,
			Duration:      ev.entropy.Natural(1, bounds.MaxSingleEventDuration),
			ResourceUsage: ev.entropy.ResourceUsage(),
		})
	}

	ev.machine.EmplaceProcess("Process", pid, arrival, events)
	return Unit{}, nil
}

func (ev *Evaluator) stringArgument(id ExpressionID, index int, builtin string) (string, error) {
	value, err := ev.evaluate(ev.ast.Expression(id))
	if err != nil {
		return "", err
	}
	s, ok := value.(String)
	if !ok {
		return "", fmt.Errorf("mismatched type for argument #%d of builtin `%s`: expected type `string`, got `%s`",
			index, builtin, valueTypeName(value))
	}
	return string(s), nil
}

func (ev *Evaluator) numberArgument(id ExpressionID, index int, builtin string) (uint64, error) {
	value, err := ev.evaluate(ev.ast.Expression(id))
	if err != nil {
		return 0, err
	}
	n, ok := value.(Number)
	if !ok {
		return 0, fmt.Errorf("mismatched type for argument #%d of builtin `%s`: expected type `int`, got `%s`",
			index, builtin, valueTypeName(value))
	}
	return uint64(n), nil
}

func eventListTypeError(index int, builtin string) error {
	return fmt.Errorf("mismatched type for argument #%d of builtin `%s`: expected type `List<Tuple: Event>` "+
		"(e.g. [(event_type: `Io` or `Cpu`, duration: int)])", index, builtin)
}
