package journal

import (
	"fmt"
	"strings"
)

// FormatRecordOrg renders a record as an Org-mode entry. Structured
// fields go in the PROPERTIES drawer, the free text in subheadings.
func FormatRecordOrg(r Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** Trade: %s %s (%s)\n", r.Pair, r.Direction, ShortID(r.ID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":ID: %s\n", r.ID)
	if !r.Date.IsZero() {
		fmt.Fprintf(&b, ":DATE: %s\n", r.Date.Format(DateLayout))
	}
	fmt.Fprintf(&b, ":PAIR: %s\n", r.Pair)
	fmt.Fprintf(&b, ":DIRECTION: %s\n", r.Direction)
	fmt.Fprintf(&b, ":LOT_SIZE: %.2f\n", r.LotSize)
	fmt.Fprintf(&b, ":ENTRY_PRICE: %.5f\n", r.Entry)
	fmt.Fprintf(&b, ":STOP_LOSS: %.5f\n", r.StopLoss)
	fmt.Fprintf(&b, ":TAKE_PROFIT: %.5f\n", r.TakeProfit)
	fmt.Fprintf(&b, ":EXIT_PRICE: %.5f\n", r.Exit)
	fmt.Fprintf(&b, ":OUTCOME: %s\n", r.Outcome)
	fmt.Fprintf(&b, ":PL_PIPS: %.1f\n", r.PLPips)
	fmt.Fprintf(&b, ":PL_USD: %.2f\n", r.PLUSD)
	b.WriteString(":END:\n\n")
	fmt.Fprintf(&b, "*** Thesis\n- %s\n\n", r.Reason)
	fmt.Fprintf(&b, "*** Review\n- %s\n", r.Review)
	return b.String()
}

// FormatRecordsOrg renders records separated by blank lines.
func FormatRecordsOrg(records []Record) string {
	var b strings.Builder
	for i, r := range records {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatRecordOrg(r))
	}
	return b.String()
}

// ShortID is the random tail of a ULID. The leading characters encode
// time and repeat between trades opened on the same day.
func ShortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[len(full)-8:]
}
