package policy

import (
	"fmt"
	"reflect"
	"slices"
)

type Operator func(ctx RequestContext, args []any) (EvalResult, error)

var operators = make(map[string]Operator)

func init() {
	operators["And"] = opAnd
	operators["Or"] = opOr
	operators["Not"] = opNot
	operators["Eq"] = opEq
	operators["Contains"] = opContains
	operators["Load"] = opLoad
}

func fail(op string, format string, a ...any) (EvalResult, error) {
	err := fmt.Errorf(format, a...)
	return EvalResult{Operator: op, Error: err.Error()}, err
}

func bools(op string, args []any) ([]bool, error) {
	result := make([]bool, len(args))
	for i, arg := range args {
		b, ok := arg.(bool)
		if !ok {
			_, err := fail(op, "bad argument type for %s at index %d. Expected bool but got %s", op, i, reflect.TypeOf(arg))
			return nil, err
		}
		result[i] = b
	}
	return result, nil
}

func opAnd(ctx RequestContext, args []any) (EvalResult, error) {
	values, err := bools("And", args)
	if err != nil {
		return EvalResult{Operator: "And", Error: err.Error()}, err
	}
	return EvalResult{Operator: "And", Result: !slices.Contains(values, false)}, nil
}

func opOr(ctx RequestContext, args []any) (EvalResult, error) {
	values, err := bools("Or", args)
	if err != nil {
		return EvalResult{Operator: "Or", Error: err.Error()}, err
	}
	return EvalResult{Operator: "Or", Result: slices.Contains(values, true)}, nil
}

func opNot(ctx RequestContext, args []any) (EvalResult, error) {
	if len(args) != 1 {
		return fail("Not", "bad argument length for Not. Expected 1 but got %d", len(args))
	}
	values, err := bools("Not", args)
	if err != nil {
		return EvalResult{Operator: "Not", Error: err.Error()}, err
	}
	return EvalResult{Operator: "Not", Result: !values[0]}, nil
}

func opEq(ctx RequestContext, args []any) (EvalResult, error) {
	if len(args) != 2 {
		return fail("Eq", "bad argument length for Eq. Expected 2 but got %d", len(args))
	}
	a, b := reflect.ValueOf(args[0]), reflect.ValueOf(args[1])
	if a.IsValid() && !a.Comparable() || b.IsValid() && !b.Comparable() {
		return fail("Eq", "uncomparable arguments for Eq: %s, %s", reflect.TypeOf(args[0]), reflect.TypeOf(args[1]))
	}
	return EvalResult{Operator: "Eq", Result: args[0] == args[1]}, nil
}

func opContains(ctx RequestContext, args []any) (EvalResult, error) {
	if len(args) != 2 {
		return fail("Contains", "bad argument length for Contains. Expected 2 but got %d", len(args))
	}

	var list []any
	switch v := args[0].(type) {
	case []any:
		list = v
	case []string:
		for _, s := range v {
			list = append(list, s)
		}
	default:
		return fail("Contains", "bad argument type for Contains. Expected []any but got %s", reflect.TypeOf(args[0]))
	}

	return EvalResult{Operator: "Contains", Result: slices.Contains(list, args[1])}, nil
}

func opLoad(ctx RequestContext, args []any) (EvalResult, error) {
	if len(args) != 1 {
		return fail("Load", "bad argument length for Load. Expected 1 but got %d", len(args))
	}

	key, ok := args[0].(string)
	if !ok {
		return fail("Load", "bad argument type for Load. Expected string but got %s", reflect.TypeOf(args[0]))
	}

	value, ok := resolveDotNotation(structToMap(ctx), key)
	if !ok {
		return fail("Load", "key not found: %s", key)
	}

	return EvalResult{Operator: "Load", Result: value}, nil
}
