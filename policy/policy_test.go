package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requester(id, role string) RequestContext {
	return RequestContext{
		Requester: map[string]any{"id": id, "role": role},
	}
}

func TestEvalLoadEq(t *testing.T) {
	ctx := RequestContext{
		Params: map[string]any{
			"user": "alice",
			"role": "ADMIN",
		},
	}

	expr := Expr{
		Operator: "Eq",
		Args: []Expr{
			{Operator: "Load", Args: []Expr{{Const: "params.role"}}},
			{Const: "ADMIN"},
		},
	}

	result, err := Eval(ctx, expr)
	require.NoError(t, err)
	assert.Equal(t, true, result.Result)
	assert.Len(t, result.Args, 2)
}

func TestEvalErrors(t *testing.T) {
	_, err := Eval(RequestContext{}, Expr{Operator: "Load", Args: []Expr{{Const: "this.authorId"}}})
	assert.Error(t, err)

	_, err = Eval(RequestContext{}, Expr{Operator: "Nope"})
	assert.Error(t, err)

	_, err = Eval(RequestContext{}, Expr{Operator: "And", Args: []Expr{{Const: "x"}}})
	assert.Error(t, err)

	_, err = Eval(RequestContext{}, Expr{Operator: "Eq", Args: []Expr{{Const: []any{"a"}}, {Const: "a"}}})
	assert.Error(t, err)
}

func TestContains(t *testing.T) {
	expr := Expr{
		Operator: "Contains",
		Args: []Expr{
			{Const: []any{"EXECUTIVE", "ADMIN"}},
			{Operator: "Load", Args: []Expr{{Const: "requester.role"}}},
		},
	}
	r, err := Eval(requester("u", "ADMIN"), expr)
	require.NoError(t, err)
	assert.Equal(t, true, r.Result)

	r, err = Eval(requester("u", "CITIZEN"), expr)
	require.NoError(t, err)
	assert.Equal(t, false, r.Result)
}

func TestConclusionOr(t *testing.T) {
	assert.Equal(t, ALLOW, UNSET.Or(ALLOW))
	assert.Equal(t, UNSET, ALLOW.Or(DENY))
	assert.Equal(t, DENY, DENY.Or(OK))
	assert.Equal(t, OK, OK.Or(UNSET))
}

func TestSummerizeConclusion(t *testing.T) {
	assert.True(t, SummerizeConclusion([]Conclusion{UNSET}, true))
	assert.False(t, SummerizeConclusion([]Conclusion{UNSET}, false))
	assert.True(t, SummerizeConclusion([]Conclusion{ALLOW, DENY}, false))
	assert.False(t, SummerizeConclusion([]Conclusion{NG}, true))
}

func TestDefaultDocument(t *testing.T) {
	doc := Default()

	cases := []struct {
		action string
		ctx    RequestContext
		want   bool
	}{
		{"issue.respond", requester("u1", "EXECUTIVE"), true},
		{"issue.respond", requester("u1", "ADMIN"), true},
		{"issue.respond", requester("u1", "CITIZEN"), false},
		{"issue.respond", requester("u1", "LEGISLATIVE"), false},
		{"issue.edit", requester("u1", "CITIZEN"), false},
		{"issue.create", requester("u1", "CITIZEN"), true},
		{"issue.create", requester("", "CITIZEN"), false},
		{"bill.manage", requester("u1", "LEGISLATIVE"), true},
		{"bill.manage", requester("u1", "EXECUTIVE"), false},
		{"dashboard.view", requester("u1", "CITIZEN"), false},
		{"dashboard.view", requester("u1", "LEGISLATIVE"), true},
		{"unknown.action", requester("u1", "ADMIN"), false},
	}
	for _, c := range cases {
		got, err := Decide(doc, c.ctx, c.action)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "%s as %v", c.action, c.ctx.Requester)
	}
}

func TestRestrictedViewForAuthor(t *testing.T) {
	doc := Default()

	ctx := requester("u1", "CITIZEN")
	ctx.This = map[string]any{"authorId": "u1"}
	ok, err := Decide(doc, ctx, "issue.view.restricted")
	require.NoError(t, err)
	assert.True(t, ok)

	ctx.This = map[string]any{"authorId": "someone-else"}
	ok, err = Decide(doc, ctx, "issue.view.restricted")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = Decide(doc, requester("u2", "EXECUTIVE"), "issue.view.restricted")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestParseRejectsUnknownVersion(t *testing.T) {
	_, err := Parse([]byte(`{"name":"x","versions":{"1999-01-01":{}}}`))
	assert.Error(t, err)
}
