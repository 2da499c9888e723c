package reporting

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ducminhle1904/timed-spot-trader/pkg/types"
)

// RenderBalances prints the non-zero balances of account
func RenderBalances(w io.Writer, title string, account *types.AccountInfo) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"Asset", "Free", "Locked"})
	balances := account.NonZero()
	for _, b := range balances {
		t.AppendRow(table.Row{b.Asset, b.Free.String(), b.Locked.String()})
	}
	if len(balances) == 0 {
		t.AppendRow(table.Row{"-", "no free balances", ""})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 8, Align: text.AlignLeft},
		{Number: 2, WidthMin: 18, Align: text.AlignRight},
		{Number: 3, WidthMin: 18, Align: text.AlignRight},
	})

	t.Render()
}

// RenderOrderSummary prints the order about to be sent for confirmation
func RenderOrderSummary(w io.Writer, exchange, environment string, req types.OrderRequest, scheduledFor time.Time) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("ORDER SUMMARY")
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"Exchange", fmt.Sprintf("%s (%s)", exchange, environment)},
		{"Symbol", req.Symbol},
		{"Side", string(req.Side)},
		{"Type", fmt.Sprintf("%s / %s", req.Type(), req.TimeInForce())},
		{"Quantity", req.Quantity.String()},
		{"Price", req.Price.String()},
		{"Notional", req.Notional().String()},
	})

	t.AppendSeparator()
	when := "now"
	if !scheduledFor.IsZero() {
		when = scheduledFor.Format(timestampLayout)
	}
	t.AppendRow(table.Row{"Execute", when})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 12, WidthMax: 12, Align: text.AlignLeft},
		{Number: 2, WidthMin: 25, WidthMax: 40, Align: text.AlignLeft},
	})

	t.Render()
}

// RenderReceipt prints the outcome of an order attempt
func RenderReceipt(w io.Writer, r Receipt) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("ORDER " + r.Outcome)
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"Request", r.Request.String()},
		{"Outcome", r.Outcome},
	})
	if id := r.OrderID(); id != "" {
		t.AppendRow(table.Row{"Order ID", id})
	}
	if r.Result != nil && r.Result.ClientOrderID != "" {
		t.AppendRow(table.Row{"Client ID", r.Result.ClientOrderID})
	}
	if r.Result != nil && r.Result.Status != "" {
		t.AppendRow(table.Row{"Status", r.Result.Status})
	}
	if msg := r.Message(); msg != "" {
		t.AppendRow(table.Row{"Message", msg})
	}
	if r.Elapsed > 0 {
		t.AppendRow(table.Row{"Latency", r.Elapsed.Round(time.Millisecond).String()})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 12, WidthMax: 12, Align: text.AlignLeft},
		{Number: 2, WidthMin: 25, WidthMax: 60, Align: text.AlignLeft},
	})

	t.Render()
}
