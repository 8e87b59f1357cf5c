package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/flowlane/pkg/diagram"
	"github.com/matzehuels/flowlane/pkg/errors"
	"github.com/matzehuels/flowlane/pkg/schema"
	"github.com/matzehuels/flowlane/pkg/store"
)

// nodeCommand creates the "node" command group.
func (c *CLI) nodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Add, edit, move and remove nodes",
	}

	cmd.AddCommand(c.nodeAddCommand())
	cmd.AddCommand(c.nodeSetCommand())
	cmd.AddCommand(c.nodeResetCommand())
	cmd.AddCommand(c.nodeMoveCommand())
	cmd.AddCommand(c.nodeRemoveCommand())
	cmd.AddCommand(c.nodeDuplicateCommand())

	return cmd
}

// nodeAddCommand creates the "node add" subcommand.
func (c *CLI) nodeAddCommand() *cobra.Command {
	var x, y float64
	var name string
	cmd := &cobra.Command{
		Use:   "add <doc> <kind>",
		Short: "Add a node of the given kind",
		Long: `Add a node of the given kind. Kinds are matched case-insensitively:
` + strings.Join(kindNames(), ", ") + ".",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[1])
			if err != nil {
				return err
			}
			var id string
			err = c.edit(cmd.Context(), args[0], func(st *store.Store) error {
				id = st.AddNode(kind, diagram.Position{X: x, Y: y})
				if name != "" {
					st.UpdateNodeAttributes(id, store.NodePatch{DisplayName: &name})
				}
				return nil
			})
			if err != nil {
				return err
			}
			printSuccess("Added %s %s", kind, StyleHighlight.Render(id))
			return nil
		},
	}
	cmd.Flags().Float64Var(&x, "x", 0, "canvas x position")
	cmd.Flags().Float64Var(&y, "y", 0, "canvas y position")
	cmd.Flags().StringVar(&name, "name", "", "display name (default: the kind)")
	return cmd
}

// nodeFlags binds one string flag per editable node attribute.
type nodeFlags struct {
	displayName, description, jurisdiction, regulator, access string
}

func (f *nodeFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.displayName, "name", "", "display name")
	fs.StringVar(&f.description, "description", "", "description")
	fs.StringVar(&f.jurisdiction, "jurisdiction", "", "jurisdiction")
	fs.StringVar(&f.regulator, "regulator", "", "regulator")
	fs.StringVar(&f.access, "settlement-access", "", "settlement access")
}

// patch returns the attributes whose flags were given.
func (f *nodeFlags) patch(fs *pflag.FlagSet) (store.NodePatch, error) {
	var p store.NodePatch
	pick := func(name string, v *string) *string {
		if fs.Changed(name) {
			return v
		}
		return nil
	}
	p.DisplayName = pick("name", &f.displayName)
	p.Description = pick("description", &f.description)
	p.Jurisdiction = pick("jurisdiction", &f.jurisdiction)
	p.Regulator = pick("regulator", &f.regulator)
	p.SettlementAccess = pick("settlement-access", &f.access)

	if p == (store.NodePatch{}) {
		return p, errors.New(errors.ErrCodeInvalidInput, "nothing to set; pass at least one attribute flag")
	}
	if p.SettlementAccess != nil {
		if err := checkOption(schema.NodeFields(), schema.FieldSettlementAccess, *p.SettlementAccess); err != nil {
			return p, err
		}
	}
	return p, nil
}

// nodeSetCommand creates the "node set" subcommand.
func (c *CLI) nodeSetCommand() *cobra.Command {
	var flags nodeFlags
	cmd := &cobra.Command{
		Use:   "set <doc> <node>",
		Short: "Update node attributes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := flags.patch(cmd.Flags())
			if err != nil {
				return err
			}
			return c.editNode(cmd, args, func(st *store.Store, id string) {
				st.UpdateNodeAttributes(id, patch)
			}, "Updated")
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

// nodeResetCommand creates the "node reset" subcommand.
func (c *CLI) nodeResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <doc> <node>",
		Short: "Restore the default attributes of a node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editNode(cmd, args, (*store.Store).ResetNodeAttributes, "Reset")
		},
	}
}

// nodeMoveCommand creates the "node move" subcommand.
func (c *CLI) nodeMoveCommand() *cobra.Command {
	var x, y float64
	cmd := &cobra.Command{
		Use:   "move <doc> <node> --x X --y Y",
		Short: "Move a node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editNode(cmd, args, func(st *store.Store, id string) {
				n, _ := st.Snapshot().Node(id)
				pos := n.Position
				if cmd.Flags().Changed("x") {
					pos.X = x
				}
				if cmd.Flags().Changed("y") {
					pos.Y = y
				}
				st.MoveNode(id, pos)
			}, "Moved")
		},
	}
	cmd.Flags().Float64Var(&x, "x", 0, "canvas x position")
	cmd.Flags().Float64Var(&y, "y", 0, "canvas y position")
	cmd.MarkFlagsOneRequired("x", "y")
	return cmd
}

// nodeRemoveCommand creates the "node rm" subcommand. Connected edges go
// with the node.
func (c *CLI) nodeRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <doc> <node>...",
		Short: "Delete nodes and their edges",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var removed int
			err := c.edit(cmd.Context(), args[0], func(st *store.Store) error {
				snap := st.Snapshot()
				ids, err := resolveAll(snap, args[1:], findNode)
				if err != nil {
					return err
				}
				before := len(snap.Edges)
				st.ClearSelection()
				st.SetElementsSelected(ids, nil)
				st.DeleteSelection()
				removed = before - len(st.Snapshot().Edges)
				return nil
			})
			if err != nil {
				return err
			}
			printSuccess("Removed %s", plural(len(args)-1, "node"))
			if removed > 0 {
				printDetail("%s removed with them", plural(removed, "edge"))
			}
			return nil
		},
	}
}

// nodeDuplicateCommand creates the "node dup" subcommand.
func (c *CLI) nodeDuplicateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dup <doc> <node>...",
		Short: "Duplicate nodes (edges are not copied)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var copies []string
			err := c.edit(cmd.Context(), args[0], func(st *store.Store) error {
				snap := st.Snapshot()
				ids, err := resolveAll(snap, args[1:], findNode)
				if err != nil {
					return err
				}
				st.ClearSelection()
				st.SetElementsSelected(ids, nil)
				st.DuplicateSelection()
				for _, n := range st.Snapshot().Nodes {
					if n.Selected {
						copies = append(copies, n.ID)
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			printSuccess("Duplicated %s", plural(len(copies), "node"))
			for _, id := range copies {
				printDetail("%s", id)
			}
			return nil
		},
	}
}

// editNode resolves args[1] to a node of document args[0] and applies fn.
func (c *CLI) editNode(cmd *cobra.Command, args []string, fn func(*store.Store, string), verb string) error {
	var id string
	err := c.edit(cmd.Context(), args[0], func(st *store.Store) error {
		var err error
		if id, err = findNode(st.Snapshot(), args[1]); err != nil {
			return err
		}
		fn(st, id)
		return nil
	})
	if err != nil {
		return err
	}
	printSuccess("%s node %s", verb, StyleHighlight.Render(id))
	return nil
}

// resolveAll resolves every ref with find.
func resolveAll(snap store.Snapshot, refs []string, find func(store.Snapshot, string) (string, error)) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		id, err := find(snap, ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseKind matches s against the node kinds, ignoring case.
func parseKind(s string) (schema.NodeKind, error) {
	if k, ok := schema.ParseKind(s); ok {
		return k, nil
	}
	for _, k := range schema.Kinds() {
		if strings.EqualFold(k.String(), s) || strings.EqualFold(strings.ReplaceAll(k.String(), " ", "-"), s) {
			return k, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidKind, "unknown node kind %q (one of: %s)", s, strings.Join(kindNames(), ", "))
}

func kindNames() []string {
	names := make([]string, 0, len(schema.Kinds()))
	for _, k := range schema.Kinds() {
		names = append(names, k.String())
	}
	return names
}

// checkOption rejects v when the field named key is a select and v is not
// one of its options. Blank values clear the field and are always allowed.
func checkOption(fields []schema.Field, key, v string) error {
	f, ok := schema.FieldByKey(fields, key)
	if !ok || f.Type != schema.FieldSelect || v == "" {
		return nil
	}
	for _, opt := range f.Options {
		if opt == v {
			return nil
		}
	}
	return errors.New(errors.ErrCodeInvalidInput, "%s must be one of %s, got %q", strings.ToLower(f.Label), strings.Join(f.Options, ", "), v)
}
