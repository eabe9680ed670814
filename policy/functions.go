package policy

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

const Version = "2024-01-01"

//go:embed engaja.json
var defaultDocument []byte

// Default returns the built-in engaja policy document.
func Default() PolicyDocument {
	doc, err := Parse(defaultDocument)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in policy: %v", err))
	}
	return doc
}

func Parse(data []byte) (PolicyDocument, error) {
	var doc PolicyDocument
	err := json.Unmarshal(data, &doc)
	if err != nil {
		return PolicyDocument{}, err
	}
	if _, ok := doc.Versions[Version]; !ok {
		return PolicyDocument{}, fmt.Errorf("unsupported policy version")
	}
	return doc, nil
}

func SummerizeConclusion(conclusions []Conclusion, defaultAllow bool) bool {
	result := UNSET
	for _, c := range conclusions {
		switch c {
		case ALLOW:
			return true
		case DENY:
			return false
		default:
			result = result.Or(c)
		}
	}
	if result == UNSET {
		return defaultAllow
	}
	return result == ALLOW || result == OK
}

// Decide evaluates action and falls back to the document default when no
// statement concludes.
func Decide(policydoc PolicyDocument, ctx RequestContext, action string) (bool, error) {
	conclusion, err := EvaluatePolicy(policydoc, ctx, action)
	if err != nil {
		return false, err
	}
	defaultAllow := policydoc.Versions[Version].Defaults[action]
	return SummerizeConclusion([]Conclusion{conclusion}, defaultAllow), nil
}

func EvaluatePolicy(policydoc PolicyDocument, ctx RequestContext, action string) (Conclusion, error) {

	policy, ok := policydoc.Versions[Version]
	if !ok {
		return UNSET, fmt.Errorf("unsupported policy version")
	}

	statements, ok := policy.Statements[action]
	if !ok {
		return UNSET, nil
	}

	conclusion := UNSET
	for _, stmt := range statements {
		evalResult, err := Eval(ctx, stmt.Condition)
		if err != nil {
			continue
		}

		if evalResult.Result == true {
			emit := ParseConclusion(stmt.Emit)
			conclusion = conclusion.Or(emit)
		}
	}
	return conclusion, nil
}

func Eval(ctx RequestContext, expr Expr) (EvalResult, error) {

	if expr.Const != nil {
		return EvalResult{
			Operator: "Const",
			Result:   expr.Const,
		}, nil
	}

	args := make([]any, 0, len(expr.Args))
	results := make([]EvalResult, 0, len(expr.Args))
	for _, arg := range expr.Args {
		result, err := Eval(ctx, arg)
		if err != nil {
			return EvalResult{
				Operator: expr.Operator,
				Args:     append(results, result),
				Error:    err.Error(),
			}, err
		}
		args = append(args, result.Result)
		results = append(results, result)
	}

	operatorFunc, exists := operators[expr.Operator]
	if !exists {
		err := fmt.Errorf("unknown operator: %s", expr.Operator)
		return EvalResult{
			Operator: expr.Operator,
			Args:     results,
			Error:    err.Error(),
		}, err
	}

	result, err := operatorFunc(ctx, args)
	result.Args = results
	return result, err
}
