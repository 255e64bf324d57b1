package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vietdv277/sshdash/internal/filter"
	"github.com/vietdv277/sshdash/pkg/types"
)

// filterFlags holds the selection flags shared by summary, records and
// export
type filterFlags struct {
	from     string
	to       string
	event    string
	ips      []string
	allDates bool
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "start date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "end date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&f.event, "event", "e", types.AllEvents, "event identifier, or All")
	cmd.Flags().StringSliceVar(&f.ips, "ip", nil, "source IP to keep (repeatable or comma separated)")
	cmd.Flags().BoolVar(&f.allDates, "all-dates", false, "skip the date filter, keeping rows without a timestamp")
}

// apply filters t by the flag values. A missing --from or --to defaults to
// the earliest or latest date in t, as the dashboard does, which drops rows
// without a timestamp. --all-dates turns the date filter off.
func (f *filterFlags) apply(t *types.LogTable) (*types.LogTable, error) {
	if f.allDates && (f.from != "" || f.to != "") {
		return nil, fmt.Errorf("--all-dates cannot be combined with --from or --to")
	}
	sel, err := filter.NewSelection(f.from, f.to, f.event, f.ips)
	if err != nil {
		return nil, err
	}
	if !f.allDates {
		sel = filter.FillDates(sel, t)
	}
	if sel.Dates.Complete() && sel.Dates.End.Before(sel.Dates.Start) {
		return nil, fmt.Errorf("date range %s..%s is empty: start is after end",
			filter.FormatDate(sel.Dates.Start), filter.FormatDate(sel.Dates.End))
	}

	filtered := filter.Apply(t, sel)
	logger.Debug("filters applied",
		zap.Bool("all_dates", f.allDates),
		zap.String("event", sel.EventID),
		zap.Strings("ips", sel.SelectedIPs()),
		zap.Int("rows", filtered.Len()),
		zap.Int("total", t.Len()),
	)
	return filtered, nil
}
