package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlane/pkg/diagram"
	"github.com/matzehuels/flowlane/pkg/errors"
	"github.com/matzehuels/flowlane/pkg/guardrail"
	"github.com/matzehuels/flowlane/pkg/io"
	"github.com/matzehuels/flowlane/pkg/lanes"
	"github.com/matzehuels/flowlane/pkg/schema"
)

// errGuardrails is returned by check when a guardrail error is present, so
// the process exits non-zero.
var errGuardrails = errors.New(errors.ErrCodeRejected, "guardrail errors found")

// newCommand creates the "new" command.
func (c *CLI) newCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "new <doc>",
		Short: "Create an empty diagram with the default lanes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := parseDocRef(args[0])
			if !force && c.exists(ref) {
				return errors.New(errors.ErrCodeInvalidInput, "%s already exists (use --force to overwrite)", ref)
			}
			doc := c.cfg.Apply(diagram.EmptyDocument(time.Now()))
			if err := c.writeDoc(cmd.Context(), ref, doc); err != nil {
				return err
			}
			printSuccess("Created %s", StyleHighlight.Render(ref.String()))
			printNextStep("Add a node", fmt.Sprintf("%s node add %s Sponsor", appName, ref))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing document")
	return cmd
}

// showCommand creates the "show" command.
func (c *CLI) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <doc>",
		Short: "Print the nodes, edges, lanes and guardrails of a diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := parseDocRef(args[0])
			st, err := c.load(cmd.Context(), ref)
			if err != nil {
				return err
			}
			snap := st.Snapshot()

			fmt.Fprintln(out, StyleTitle.Render(ref.String()))
			printStats(len(snap.Nodes), len(snap.Edges), len(snap.Lanes))
			printNewline()

			if len(snap.Nodes) > 0 {
				bands := lanes.Compute(snap.Lanes, snap.UI.LaneOrientation)
				rows := make([][]string, 0, len(snap.Nodes))
				for _, n := range snap.Nodes {
					lane := "-"
					center := diagram.Position{X: n.Position.X + n.Size.Width/2, Y: n.Position.Y + n.Size.Height/2}
					if b, ok := lanes.BandAt(bands, center); ok {
						lane = b.Label
					}
					rows = append(rows, []string{
						shortID(n.ID), n.Attributes.DisplayName, n.Kind.String(), lane,
						fmt.Sprintf("%.0f,%.0f", n.Position.X, n.Position.Y),
					})
				}
				printTable([]string{"ID", "Name", "Kind", "Lane", "Position"}, rows)
			}

			if len(snap.Edges) > 0 {
				names := make(map[string]string, len(snap.Nodes))
				for _, n := range snap.Nodes {
					names[n.ID] = n.Attributes.DisplayName
				}
				rows := make([][]string, 0, len(snap.Edges))
				for _, e := range snap.Edges {
					a := e.Attributes
					rows = append(rows, []string{
						shortID(e.ID), names[e.Source] + " → " + names[e.Target],
						e.Label, a.SettlementSpeed, a.Direction, a.LedgerOfRecord,
					})
				}
				printTable([]string{"ID", "Flow", "Rail", "Speed", "Direction", "Ledger"}, rows)
			}

			rows := make([][]string, 0, len(snap.Lanes))
			for _, l := range snap.Lanes {
				visible := "yes"
				if !l.Visible {
					visible = "no"
				}
				rows = append(rows, []string{fmt.Sprint(l.Order), l.ID, l.Label, fmt.Sprintf("%.0f", l.Size), visible})
			}
			printTable([]string{"#", "Lane", "Label", "Size", "Visible"}, rows)

			if len(snap.Guardrails) == 0 {
				printSuccess("No guardrail issues")
				return nil
			}
			printIssues(snap.Guardrails)
			return nil
		},
	}
}

// checkCommand creates the "check" command.
func (c *CLI) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <doc>",
		Short: "Evaluate guardrails; exits non-zero on any error",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.load(cmd.Context(), parseDocRef(args[0]))
			if err != nil {
				return err
			}
			issues := st.Guardrails()
			warnings, errs := guardrail.Counts(issues)
			if len(issues) == 0 {
				printSuccess("No guardrail issues")
				return nil
			}
			printIssues(issues)
			printDetail("%s, %s", plural(warnings, "warning"), plural(errs, "error"))
			if errs > 0 {
				return errGuardrails
			}
			return nil
		},
	}
}

// exportCommand creates the "export" command.
func (c *CLI) exportCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <doc>",
		Short: "Write a diagram as JSON to a file or stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.load(cmd.Context(), parseDocRef(args[0]))
			if err != nil {
				return err
			}
			doc := st.ExportSnapshot()
			if output == "" {
				return io.WriteDocument(doc, out)
			}
			if err := errors.ValidatePath(output); err != nil {
				return err
			}
			if err := io.ExportJSON(cmd.Context(), doc, output); err != nil {
				return err
			}
			printSuccess("Exported %s", args[0])
			printFile(output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

// importCommand creates the "import" command.
func (c *CLI) importCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "import <file> <doc>",
		Short: "Validate a JSON diagram and store it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var (
				doc *diagram.Document
				err error
			)
			if args[0] == "-" {
				doc, err = io.ReadDocument(os.Stdin)
			} else {
				doc, err = io.ImportJSON(ctx, args[0])
			}
			if err != nil {
				return err
			}

			ref := parseDocRef(args[1])
			if !force && c.exists(ref) {
				return errors.New(errors.ErrCodeInvalidInput, "%s already exists (use --force to overwrite)", ref)
			}
			// Round-trip through the store so dangling edges are dropped and
			// guardrails are computed before the file lands.
			st := c.newStore()
			st.Hydrate(*doc)
			if err := c.writeDoc(ctx, ref, st.ExportSnapshot()); err != nil {
				return err
			}

			snap := st.Snapshot()
			printSuccess("Imported %s", StyleHighlight.Render(ref.String()))
			printStats(len(snap.Nodes), len(snap.Edges), len(snap.Lanes))
			if dropped := len(doc.Edges) - len(snap.Edges); dropped > 0 {
				printWarning("Dropped %s with missing endpoints", plural(dropped, "edge"))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing document")
	return cmd
}

// listCommand creates the "list" command.
func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List documents in the workspace",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.workspace()
			if err != nil {
				return err
			}
			entries, err := ws.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				printInfo("No documents in %s", ws.Dir())
				printNextStep("Create one", appName+" new my-flow")
				return nil
			}
			rows := make([][]string, len(entries))
			for i, e := range entries {
				rows[i] = []string{e.Name, formatSize(e.Size), e.Modified.Format("2006-01-02 15:04")}
			}
			printTable([]string{"Name", "Size", "Modified"}, rows)
			printDetail("Directory: %s", ws.Dir())
			return nil
		},
	}
}

// rmCommand creates the "rm" command.
func (c *CLI) rmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <doc>",
		Short: "Delete a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := parseDocRef(args[0])
			if ref.path != "" {
				if err := os.Remove(ref.path); err != nil {
					if os.IsNotExist(err) {
						return errors.New(errors.ErrCodeFileNotFound, "%s not found", ref.path)
					}
					return fmt.Errorf("remove %s: %w", ref.path, err)
				}
			} else {
				ws, err := c.workspace()
				if err != nil {
					return err
				}
				if err := ws.Delete(cmd.Context(), ref.name); err != nil {
					return err
				}
			}
			printSuccess("Removed %s", ref)
			return nil
		},
	}
}

// schemaCommand creates the "schema" command.
func (c *CLI) schemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print node kinds, edge enumerations and inspector fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printKeyValue("Kinds", strings.Join(kindNames(), ", "))
			printKeyValue("Rails", strings.Join(schema.Rails(), ", "))
			printKeyValue("Speeds", strings.Join(schema.Speeds(), ", "))
			printKeyValue("Directions", strings.Join(schema.Directions(), ", "))
			printNewline()

			fmt.Fprintln(out, StyleTitle.Render("Node fields"))
			printFields(schema.NodeFields())
			fmt.Fprintln(out, StyleTitle.Render("Edge fields"))
			printFields(schema.EdgeFields())
			return nil
		},
	}
}

func printFields(fields []schema.Field) {
	rows := make([][]string, len(fields))
	for i, f := range fields {
		rows[i] = []string{f.Key, f.Label, string(f.Type), strings.Join(f.Options, ", ")}
	}
	printTable([]string{"Key", "Label", "Type", "Options"}, rows)
}

// shortID trims the uuid of an element id for display. Lookups accept any
// unique prefix, so the short form can be typed back.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i >= 0 && len(id) > i+9 {
		return id[:i+9]
	}
	return id
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
