package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/flowlane/pkg/errors"
	"github.com/matzehuels/flowlane/pkg/guardrail"
	"github.com/matzehuels/flowlane/pkg/schema"
	"github.com/matzehuels/flowlane/pkg/store"
)

// edgeCommand creates the "edge" command group.
func (c *CLI) edgeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edge",
		Short: "Connect nodes and describe money movements",
	}

	cmd.AddCommand(c.edgeAddCommand())
	cmd.AddCommand(c.edgeSetCommand())
	cmd.AddCommand(c.edgeResetCommand())
	cmd.AddCommand(c.edgeRemoveCommand())

	return cmd
}

// edgeFlags binds one string flag per editable edge attribute.
type edgeFlags struct {
	rail, speed, direction, ledger, notes string
}

func (f *edgeFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.rail, "rail", "", "settlement rail")
	fs.StringVar(&f.speed, "speed", "", "settlement speed")
	fs.StringVar(&f.direction, "direction", "", "movement direction: Push or Pull")
	fs.StringVar(&f.ledger, "ledger", "", "ledger of record")
	fs.StringVar(&f.notes, "notes", "", "free-form notes")
}

// patch returns the attributes whose flags were given. Enumerated fields
// are checked against the schema.
func (f *edgeFlags) patch(fs *pflag.FlagSet) (store.EdgePatch, error) {
	var p store.EdgePatch
	pick := func(name string, v *string) *string {
		if fs.Changed(name) {
			return v
		}
		return nil
	}
	p.Rail = pick("rail", &f.rail)
	p.SettlementSpeed = pick("speed", &f.speed)
	p.Direction = pick("direction", &f.direction)
	p.LedgerOfRecord = pick("ledger", &f.ledger)
	p.Notes = pick("notes", &f.notes)

	checks := []struct {
		key string
		v   *string
	}{
		{schema.FieldRail, p.Rail},
		{schema.FieldSettlementSpeed, p.SettlementSpeed},
		{schema.FieldDirection, p.Direction},
	}
	for _, ch := range checks {
		if ch.v == nil {
			continue
		}
		if err := checkOption(schema.EdgeFields(), ch.key, *ch.v); err != nil {
			return p, err
		}
	}
	return p, nil
}

// edgeAddCommand creates the "edge add" subcommand.
func (c *CLI) edgeAddCommand() *cobra.Command {
	var flags edgeFlags
	cmd := &cobra.Command{
		Use:   "add <doc> <source> <target>",
		Short: "Connect two nodes with a money movement",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := flags.patch(cmd.Flags())
			if err != nil {
				return err
			}
			var (
				id     string
				issues []guardrail.Issue
			)
			err = c.edit(cmd.Context(), args[0], func(st *store.Store) error {
				snap := st.Snapshot()
				src, err := findNode(snap, args[1])
				if err != nil {
					return err
				}
				dst, err := findNode(snap, args[2])
				if err != nil {
					return err
				}
				var ok bool
				if id, ok = st.AddConnection(src, dst, "", ""); !ok {
					return errors.New(errors.ErrCodeRejected, "a node cannot connect to itself")
				}
				if patch != (store.EdgePatch{}) {
					st.UpdateEdgeAttributes(id, patch)
				}
				issues = guardrail.ForEdge(st.Guardrails(), id)
				return nil
			})
			if err != nil {
				return err
			}
			printSuccess("Connected %s", StyleHighlight.Render(id))
			printIssues(issues)
			return nil
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

// edgeSetCommand creates the "edge set" subcommand.
func (c *CLI) edgeSetCommand() *cobra.Command {
	var flags edgeFlags
	cmd := &cobra.Command{
		Use:   "set <doc> <edge>",
		Short: "Update edge attributes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := flags.patch(cmd.Flags())
			if err != nil {
				return err
			}
			if patch == (store.EdgePatch{}) {
				return errors.New(errors.ErrCodeInvalidInput, "nothing to set; pass at least one attribute flag")
			}
			return c.editEdge(cmd, args, func(st *store.Store, id string) {
				st.UpdateEdgeAttributes(id, patch)
			}, "Updated")
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

// edgeResetCommand creates the "edge reset" subcommand.
func (c *CLI) edgeResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <doc> <edge>",
		Short: "Restore the default attributes of an edge",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editEdge(cmd, args, (*store.Store).ResetEdgeAttributes, "Reset")
		},
	}
}

// edgeRemoveCommand creates the "edge rm" subcommand.
func (c *CLI) edgeRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <doc> <edge>...",
		Short: "Delete edges",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := c.edit(cmd.Context(), args[0], func(st *store.Store) error {
				ids, err := resolveAll(st.Snapshot(), args[1:], findEdge)
				if err != nil {
					return err
				}
				st.ClearSelection()
				st.SetElementsSelected(nil, ids)
				st.DeleteSelection()
				return nil
			})
			if err != nil {
				return err
			}
			printSuccess("Removed %s", plural(len(args)-1, "edge"))
			return nil
		},
	}
}

// editEdge resolves args[1] to an edge of document args[0], applies fn and
// reports the edge's guardrails afterwards.
func (c *CLI) editEdge(cmd *cobra.Command, args []string, fn func(*store.Store, string), verb string) error {
	var (
		id     string
		issues []guardrail.Issue
	)
	err := c.edit(cmd.Context(), args[0], func(st *store.Store) error {
		var err error
		if id, err = findEdge(st.Snapshot(), args[1]); err != nil {
			return err
		}
		fn(st, id)
		issues = guardrail.ForEdge(st.Guardrails(), id)
		return nil
	})
	if err != nil {
		return err
	}
	printSuccess("%s edge %s", verb, StyleHighlight.Render(id))
	printIssues(issues)
	return nil
}
