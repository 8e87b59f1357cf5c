package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlane/pkg/diagram"
	"github.com/matzehuels/flowlane/pkg/errors"
	"github.com/matzehuels/flowlane/pkg/lanes"
	"github.com/matzehuels/flowlane/pkg/store"
)

// laneCommand creates the "lane" command group.
func (c *CLI) laneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lane",
		Short: "Manage swimlanes",
	}

	cmd.AddCommand(c.laneAddCommand())
	cmd.AddCommand(c.laneRenameCommand())
	cmd.AddCommand(c.laneResizeCommand())
	cmd.AddCommand(c.laneVisibilityCommand("hide", "Hide a lane", false))
	cmd.AddCommand(c.laneVisibilityCommand("show", "Show a hidden lane", true))
	cmd.AddCommand(c.laneRemoveCommand())
	cmd.AddCommand(c.laneOrderCommand())
	cmd.AddCommand(c.laneOrientationCommand())
	cmd.AddCommand(c.laneBandsCommand())
	cmd.AddCommand(c.laneEditCommand())

	return cmd
}

// laneAddCommand creates the "lane add" subcommand.
func (c *CLI) laneAddCommand() *cobra.Command {
	var label string
	cmd := &cobra.Command{
		Use:   "add <doc>",
		Short: "Append a lane",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var l diagram.Swimlane
			err := c.edit(cmd.Context(), args[0], func(st *store.Store) error {
				id := st.AddLane()
				if label != "" {
					st.RenameLane(id, label)
				}
				l, _ = st.Snapshot().Lane(id)
				return nil
			})
			if err != nil {
				return err
			}
			printSuccess("Added lane %s %s", StyleHighlight.Render(l.Label), StyleDim.Render(l.ID))
			return nil
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "lane label (default \"Lane N\")")
	return cmd
}

// laneRenameCommand creates the "lane rename" subcommand. The label is
// committed the way the inline editor commits it.
func (c *CLI) laneRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <doc> <lane> <label>",
		Short: "Rename a lane",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var label string
			err := c.editLane(cmd, args, func(st *store.Store, l diagram.Swimlane) {
				ed := lanes.NewRenameEditor(st)
				ed.Begin(l.ID, l.Label)
				ed.SetDraft(args[2])
				label, _ = ed.Commit()
			})
			if err != nil {
				return err
			}
			printSuccess("Renamed lane to %s", StyleHighlight.Render(label))
			return nil
		},
	}
}

// laneResizeCommand creates the "lane resize" subcommand. A leading sign
// makes the size relative.
func (c *CLI) laneResizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resize <doc> <lane> <size|+delta|-delta>",
		Short: "Set a lane's thickness (minimum 120)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			arg := args[2]
			v, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return errors.New(errors.ErrCodeInvalidInput, "size must be a number, got %q", arg)
			}
			relative := arg[0] == '+' || arg[0] == '-'

			var size float64
			err = c.editLane(cmd, args, func(st *store.Store, l diagram.Swimlane) {
				next := v
				if relative {
					next = l.Size + v
				}
				st.ResizeLane(l.ID, next)
				updated, _ := st.Snapshot().Lane(l.ID)
				size = updated.Size
			})
			if err != nil {
				return err
			}
			printSuccess("Lane size %s", StyleHighlight.Render(fmt.Sprintf("%.0f", size)))
			return nil
		},
	}
}

// laneVisibilityCommand creates "lane hide" or "lane show".
func (c *CLI) laneVisibilityCommand(use, short string, visible bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <doc> <lane>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var label string
			err := c.editLane(cmd, args, func(st *store.Store, l diagram.Swimlane) {
				st.SetLaneVisible(l.ID, visible)
				label = l.Label
			})
			if err != nil {
				return err
			}
			if visible {
				printSuccess("Showing lane %s", StyleHighlight.Render(label))
			} else {
				printSuccess("Hid lane %s", StyleHighlight.Render(label))
			}
			return nil
		},
	}
}

// laneRemoveCommand creates the "lane rm" subcommand. Nodes in the lane stay
// where they are.
func (c *CLI) laneRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <doc> <lane>",
		Short: "Delete a lane",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var label string
			err := c.editLane(cmd, args, func(st *store.Store, l diagram.Swimlane) {
				st.RemoveLane(l.ID)
				label = l.Label
			})
			if err != nil {
				return err
			}
			printSuccess("Removed lane %s", StyleHighlight.Render(label))
			return nil
		},
	}
}

// laneOrderCommand creates the "lane order" subcommand.
func (c *CLI) laneOrderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "order <doc> <lane>...",
		Short: "Reorder lanes; unlisted lanes keep their relative order after the listed ones",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var order []string
			err := c.edit(cmd.Context(), args[0], func(st *store.Store) error {
				ids, err := resolveAll(st.Snapshot(), args[1:], findLane)
				if err != nil {
					return err
				}
				st.ReorderLanes(ids)
				for _, b := range sortedLanes(st.Snapshot().Lanes) {
					order = append(order, b.Label)
				}
				return nil
			})
			if err != nil {
				return err
			}
			printSuccess("Reordered lanes")
			for i, label := range order {
				printDetail("%d. %s", i+1, label)
			}
			return nil
		},
	}
}

// laneOrientationCommand creates the "lane orientation" subcommand.
func (c *CLI) laneOrientationCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "orientation <doc> <horizontal|vertical>",
		Short:     "Switch lanes between horizontal and vertical",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(diagram.Horizontal), string(diagram.Vertical)},
		RunE: func(cmd *cobra.Command, args []string) error {
			o := diagram.Orientation(args[1])
			if !o.Valid() {
				return errors.New(errors.ErrCodeInvalidInput, "orientation must be horizontal or vertical, got %q", args[1])
			}
			err := c.edit(cmd.Context(), args[0], func(st *store.Store) error {
				st.SetLaneOrientation(o)
				return nil
			})
			if err != nil {
				return err
			}
			printSuccess("Lanes are %s", StyleHighlight.Render(string(o)))
			return nil
		},
	}
}

// laneBandsCommand creates the "lane bands" subcommand.
func (c *CLI) laneBandsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bands <doc>",
		Short: "Print the computed band geometry of the visible lanes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.load(cmd.Context(), parseDocRef(args[0]))
			if err != nil {
				return err
			}
			ui := st.UI()
			bands := lanes.Compute(st.Snapshot().Lanes, ui.LaneOrientation)
			if len(bands) == 0 {
				printInfo("No visible lanes")
				return nil
			}
			rows := make([][]string, len(bands))
			for i, b := range bands {
				rows[i] = []string{
					b.Label,
					fmt.Sprintf("%.0f", b.Start), fmt.Sprintf("%.0f", b.End()),
					fmt.Sprintf("%.0f,%.0f", b.Rect.X, b.Rect.Y),
					fmt.Sprintf("%.0fx%.0f", b.Rect.Width, b.Rect.Height),
				}
			}
			printKeyValue("Orientation", string(ui.LaneOrientation))
			printTable([]string{"Lane", "Start", "End", "Origin", "Extent"}, rows)
			for _, h := range lanes.Handles(bands) {
				printDetail("handle after %s at %.0f", h.LaneID, h.Position)
			}
			return nil
		},
	}
}

// laneEditCommand creates the "lane edit" subcommand.
func (c *CLI) laneEditCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <doc>",
		Short: "Edit lanes interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLaneEditor(cmd.Context(), parseDocRef(args[0]))
		},
	}
}

// editLane resolves args[1] to a lane of document args[0] and applies fn.
func (c *CLI) editLane(cmd *cobra.Command, args []string, fn func(*store.Store, diagram.Swimlane)) error {
	return c.edit(cmd.Context(), args[0], func(st *store.Store) error {
		snap := st.Snapshot()
		id, err := findLane(snap, args[1])
		if err != nil {
			return err
		}
		l, _ := snap.Lane(id)
		fn(st, l)
		return nil
	})
}
