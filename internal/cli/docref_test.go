package cli

import (
	"testing"
	"time"

	"github.com/matzehuels/flowlane/pkg/diagram"
	"github.com/matzehuels/flowlane/pkg/errors"
	"github.com/matzehuels/flowlane/pkg/schema"
	"github.com/matzehuels/flowlane/pkg/store"
)

func TestParseDocRef(t *testing.T) {
	tests := []struct {
		arg  string
		want docRef
	}{
		{"flow", docRef{name: "flow"}},
		{"my-flow.v2", docRef{name: "my-flow.v2"}},
		{"flow.json", docRef{path: "flow.json"}},
		{"FLOW.JSON", docRef{path: "FLOW.JSON"}},
		{"out/flow", docRef{path: "out/flow"}},
		{"./flow", docRef{path: "./flow"}},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got := parseDocRef(tt.arg)
			if got != tt.want {
				t.Errorf("parseDocRef(%q) = %+v, want %+v", tt.arg, got, tt.want)
			}
			if got.String() != tt.arg {
				t.Errorf("String() = %q", got.String())
			}
		})
	}
}

func TestFindNode(t *testing.T) {
	st := store.New()
	st.Hydrate(diagram.EmptyDocument(time.Now()))
	a := st.AddNode(schema.KindSponsor, diagram.Position{})
	b := st.AddNode(schema.KindSponsor, diagram.Position{})
	w := st.AddNode(schema.KindWallet, diagram.Position{})
	snap := st.Snapshot()

	tests := []struct {
		name string
		ref  string
		want string
		code errors.Code
	}{
		{"exact id", a, a, ""},
		{"unique prefix", b[:len("node-")+8], b, ""},
		{"name ignores case", "wallet", w, ""},
		{"ambiguous name", "Sponsor", "", errors.ErrCodeInvalidInput},
		{"ambiguous prefix", "node-", "", errors.ErrCodeInvalidInput},
		{"empty", "", "", errors.ErrCodeInvalidInput},
		{"missing", "Central Bank", "", errors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := findNode(snap, tt.ref)
			if tt.code != "" {
				if !errors.Is(err, tt.code) {
					t.Fatalf("err = %v, want %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("findNode(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}

func TestFindLaneByLabel(t *testing.T) {
	st := store.New()
	st.Hydrate(diagram.EmptyDocument(time.Now()))
	snap := st.Snapshot()

	for ref, want := range map[string]string{
		"lane-bank":    "lane-bank",
		"lane-c":       "lane-customer",
		"bank & rails": "lane-bank",
		"Program":      "lane-program",
	} {
		got, err := findLane(snap, ref)
		if err != nil || got != want {
			t.Errorf("findLane(%q) = %q, %v; want %q", ref, got, err, want)
		}
	}
	if _, err := findLane(snap, "lane-"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ambiguous prefix: err = %v", err)
	}
}

func TestShortID(t *testing.T) {
	tests := []struct {
		id, want string
	}{
		{"node-0b5e1c3a-8f2d-4c41-9a7e-1d2f3a4b5c6d", "node-0b5e1c3a"},
		{"lane-bank", "lane-bank"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := shortID(tt.id); got != tt.want {
			t.Errorf("shortID(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestCheckOption(t *testing.T) {
	fields := schema.EdgeFields()
	if err := checkOption(fields, schema.FieldRail, schema.RailACH); err != nil {
		t.Errorf("valid rail: %v", err)
	}
	if err := checkOption(fields, schema.FieldRail, ""); err != nil {
		t.Errorf("blank rail: %v", err)
	}
	if err := checkOption(fields, schema.FieldRail, "Telex"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown rail: err = %v", err)
	}
	if err := checkOption(fields, schema.FieldNotes, "anything"); err != nil {
		t.Errorf("free text field: %v", err)
	}
}
