// Package schema declares the closed vocabularies of a money-movement diagram.
//
// It lists the node kinds available in the palette, the enumerations an edge
// attribute may take (rail, settlement speed, direction), and the field
// metadata the inspector uses to render forms. The package is descriptive:
// it holds no state and performs no validation beyond membership checks.
//
// The values double as the display text, so a diagram document stores
// "Internal Ledger" and "T+0" verbatim:
//
//	kind, ok := schema.ParseKind("Internal Ledger")
//	if ok && kind == schema.LedgerKind {
//	    // ...
//	}
package schema

import (
	"slices"
	"strings"
)

// Unset marks an optional attribute that was never touched. An empty string
// means the user cleared the field; both read as blank to the guardrails.
const Unset = "(unset)"

// IsBlank reports whether an attribute value is Unset or empty.
func IsBlank(v string) bool {
	return v == Unset || strings.TrimSpace(v) == ""
}

// NodeKind is the institution, system or account type of a node.
// A node's kind is fixed at creation.
type NodeKind string

// Node kinds, in palette order.
const (
	KindSponsor        NodeKind = "Sponsor"
	KindFintech        NodeKind = "Fintech"
	KindProcessor      NodeKind = "Processor"
	KindCardNetwork    NodeKind = "Card Network"
	KindCentralBank    NodeKind = "Central Bank"
	KindCorrespondent  NodeKind = "Correspondent"
	KindWallet         NodeKind = "Wallet"
	KindInternalLedger NodeKind = "Internal Ledger"
	KindEndUser        NodeKind = "End User"
)

// LedgerKind is the kind the real-time push guardrail targets by default.
const LedgerKind = KindInternalLedger

var kinds = []NodeKind{
	KindSponsor,
	KindFintech,
	KindProcessor,
	KindCardNetwork,
	KindCentralBank,
	KindCorrespondent,
	KindWallet,
	KindInternalLedger,
	KindEndUser,
}

// Kinds returns every node kind in palette order.
func Kinds() []NodeKind { return slices.Clone(kinds) }

// ParseKind returns the kind named s and whether it is a known kind.
func ParseKind(s string) (NodeKind, bool) {
	k := NodeKind(s)
	return k, slices.Contains(kinds, k)
}

// String returns the display name of the kind.
func (k NodeKind) String() string { return string(k) }

// Edge attribute enumerations.
const (
	RailACH          = "ACH"
	RailRTP          = "RTP"
	RailFedNow       = "FedNow"
	RailWire         = "Wire"
	RailCard         = "Card"
	RailSWIFT        = "SWIFT"
	RailBookTransfer = "Book Transfer"

	SpeedRealtime = "T+0"
	SpeedNextDay  = "T+1"
	SpeedTwoDay   = "T+2"

	DirectionPush = "Push"
	DirectionPull = "Pull"
)

var (
	rails      = []string{RailACH, RailRTP, RailFedNow, RailWire, RailCard, RailSWIFT, RailBookTransfer}
	speeds     = []string{SpeedRealtime, SpeedNextDay, SpeedTwoDay}
	directions = []string{DirectionPush, DirectionPull}
)

// Rails returns the settlement rails an edge may use.
func Rails() []string { return slices.Clone(rails) }

// Speeds returns the settlement speeds an edge may declare.
func Speeds() []string { return slices.Clone(speeds) }

// Directions returns the movement directions an edge may declare.
func Directions() []string { return slices.Clone(directions) }

// IsRail reports whether s is a known rail.
func IsRail(s string) bool { return slices.Contains(rails, s) }

// IsSpeed reports whether s is a known settlement speed.
func IsSpeed(s string) bool { return slices.Contains(speeds, s) }

// IsDirection reports whether s is a known direction.
func IsDirection(s string) bool { return slices.Contains(directions, s) }
