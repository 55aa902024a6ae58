// Package policy evaluates authorization rules with an embedded OPA engine.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// ScopeQuery is the rule queried by the scope engine.
const ScopeQuery = "data.chat_authz.allow"

// ScopeInput is the document the scope policy is evaluated against.
type ScopeInput struct {
	Subject       string   `json:"subject"`
	Scopes        []string `json:"scopes"`
	RequiredScope string   `json:"required_scope"`
}

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine prepares query against the given policy module.
func NewEngine(ctx context.Context, query, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query(query),
		rego.Module("chat_authz.rego", policyContent),
	)

	prepared, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: prepared}, nil
}

// NewScopeEngine prepares the default scope policy.
func NewScopeEngine(ctx context.Context) (*Engine, error) {
	return NewEngine(ctx, ScopeQuery, DefaultScopePolicy)
}

// Allowed evaluates the prepared query and reports whether it yielded true.
// An undefined result is a deny.
func (e *Engine) Allowed(ctx context.Context, input interface{}) (bool, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return false, fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return false, nil
	}

	allowed, ok := results[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("policy returned %T, want bool", results[0].Expressions[0].Value)
	}
	return allowed, nil
}

// HasScope evaluates the scope policy for a token's granted scopes.
func (e *Engine) HasScope(ctx context.Context, in ScopeInput) (bool, error) {
	if in.Scopes == nil {
		in.Scopes = []string{}
	}
	return e.Allowed(ctx, in)
}

// DefaultScopePolicy grants access when the required scope was granted.
const DefaultScopePolicy = `
package chat_authz

import rego.v1

default allow := false

allow if {
	input.required_scope != ""
	input.required_scope in input.scopes
}
`
