// Package guardrail evaluates advisory checks over a money-movement diagram.
//
// Guardrails never block a mutation. [Evaluate] is a pure function of the
// node and edge lists and is re-run wholesale after every graph change.
// Every issue is scoped to an edge; none attach to nodes.
//
// Two rules apply to each edge whose rail is set (a "defined" movement):
//
//   - ledger-of-record (warning): the ledger of record is blank.
//   - realtime-push-ledger (error): the edge pushes at T+0 into a ledger
//     kind node.
//
// Issues come out in edge order, then rule order, with deterministic IDs of
// the form "edgeID:rule", so repeated evaluation of the same input yields
// identical output.
package guardrail

import (
	"slices"

	"github.com/matzehuels/flowlane/pkg/diagram"
	"github.com/matzehuels/flowlane/pkg/schema"
)

// Severity grades an issue.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Rule names, also used as the suffix of issue IDs.
const (
	RuleLedgerOfRecord     = "ledger-of-record"
	RuleRealtimePushLedger = "realtime-push-ledger"
)

// Messages shown for each rule.
const (
	MessageLedgerOfRecord     = "Define the Ledger of Record for this movement."
	MessageRealtimePushLedger = "Real-time push (T+0) into an internal ledger is incompatible; " +
		"route through an intermediary buffer account or use a slower settlement speed."
)

// Issue is one guardrail finding on an edge.
type Issue struct {
	ID       string   `json:"id"`
	EdgeID   string   `json:"edgeId"`
	Severity Severity `json:"severity"`
	Rule     string   `json:"rule"`
	Message  string   `json:"message"`
}

// Policy holds the tunable parts of the rules.
type Policy struct {
	// LedgerKinds are the target kinds the real-time push rule applies to.
	LedgerKinds []schema.NodeKind
}

// DefaultPolicy applies the real-time push rule to internal ledgers only.
func DefaultPolicy() Policy {
	return Policy{LedgerKinds: []schema.NodeKind{schema.LedgerKind}}
}

// Evaluate runs every rule under DefaultPolicy.
func Evaluate(nodes []diagram.Node, edges []diagram.Edge) []Issue {
	return EvaluateWith(DefaultPolicy(), nodes, edges)
}

// EvaluateWith runs every rule under p. The result is never nil.
// An edge whose target is missing from nodes is skipped by the target-kind
// rule.
func EvaluateWith(p Policy, nodes []diagram.Node, edges []diagram.Edge) []Issue {
	kinds := make(map[string]schema.NodeKind, len(nodes))
	for _, n := range nodes {
		kinds[n.ID] = n.Kind
	}

	issues := []Issue{}
	for _, e := range edges {
		if !e.Attributes.Defined() {
			continue
		}
		if schema.IsBlank(e.Attributes.LedgerOfRecord) {
			issues = append(issues, newIssue(e.ID, RuleLedgerOfRecord, SeverityWarning, MessageLedgerOfRecord))
		}
		if kind, ok := kinds[e.Target]; ok && p.isLedger(kind) && isRealtimePush(e.Attributes) {
			issues = append(issues, newIssue(e.ID, RuleRealtimePushLedger, SeverityError, MessageRealtimePushLedger))
		}
	}
	return issues
}

func (p Policy) isLedger(k schema.NodeKind) bool {
	return slices.Contains(p.LedgerKinds, k)
}

func isRealtimePush(a diagram.EdgeAttributes) bool {
	return a.Direction == schema.DirectionPush && a.SettlementSpeed == schema.SpeedRealtime
}

func newIssue(edgeID, rule string, sev Severity, msg string) Issue {
	return Issue{
		ID:       edgeID + ":" + rule,
		EdgeID:   edgeID,
		Severity: sev,
		Rule:     rule,
		Message:  msg,
	}
}

// Counts returns the number of warnings and errors in issues.
func Counts(issues []Issue) (warnings, errors int) {
	for _, is := range issues {
		switch is.Severity {
		case SeverityWarning:
			warnings++
		case SeverityError:
			errors++
		}
	}
	return warnings, errors
}

// ForEdge returns the issues attached to edgeID, in order.
func ForEdge(issues []Issue, edgeID string) []Issue {
	var out []Issue
	for _, is := range issues {
		if is.EdgeID == edgeID {
			out = append(out, is)
		}
	}
	return out
}

// Worst returns the highest severity in issues and false if there are none.
func Worst(issues []Issue) (Severity, bool) {
	w, e := Counts(issues)
	switch {
	case e > 0:
		return SeverityError, true
	case w > 0:
		return SeverityWarning, true
	}
	return "", false
}
