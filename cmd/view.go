package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/wheelsched/core/model"
	"github.com/kilianp07/wheelsched/core/pipeline"
)

const displayLayout = "2006-01-02 15:04"

// viewFlags narrows what gets printed, never what gets edited.
type viewFlags struct {
	maxOrders int
	machine   string
	wheelType string
}

func (v *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&v.maxOrders, "max-orders", 0, "show only the first N orders by earliest start (0 = all)")
	cmd.Flags().StringVar(&v.machine, "machine", "", "show only operations on this machine")
	cmd.Flags().StringVar(&v.wheelType, "wheel-type", "", "show only operations of this wheel type")
}

func (v viewFlags) apply(tl model.Timeline) model.Timeline {
	if v.machine != "" || v.wheelType != "" {
		tl = tl.Filter(func(op model.Operation) bool {
			return (v.machine == "" || op.Machine == v.machine) &&
				(v.wheelType == "" || op.WheelType == v.wheelType)
		})
	}
	return tl.OrdersByEarliestStart(v.maxOrders)
}

func printTimeline(w io.Writer, tl model.Timeline, loc *time.Location) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tMACHINE\tSEQ\tOPERATION\tSTART\tEND\tWHEEL")
	for _, id := range tl.OrderIDs() {
		for _, op := range tl.ForOrder(id) {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
				op.OrderID, op.Machine, op.Sequence, op.Name,
				op.Start.In(loc).Format(displayLayout), op.End.In(loc).Format(displayLayout), op.WheelType)
		}
	}
	return tw.Flush()
}

// printOutcome writes the result line of one command and the operations
// the repacker moved out of the way.
func printOutcome(w io.Writer, out pipeline.Outcome) {
	if !out.Applied {
		fmt.Fprintf(w, "Cannot apply: %s\n", out.Message)
		return
	}
	fmt.Fprintln(w, out.Message)
	for _, c := range out.Collateral() {
		fmt.Fprintf(w, "  shifted %s seq %d on %s by %s\n", c.OrderID, c.Sequence, c.Machine, c.Offset)
	}
}
