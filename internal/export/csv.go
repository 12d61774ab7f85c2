// Package export renders a user's expense list as a flat tabular snapshot.
// The column layout [id, date, category, amount, description] with amounts at
// two decimal places is a contract external tools round-trip; it must not
// change.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"tracker/internal/core"
)

// Header is the first row of every snapshot.
var Header = []string{"id", "date", "category", "amount", "description"}

// Row renders one expense in snapshot column order.
func Row(e core.Expense) []string {
	return []string{
		strconv.FormatInt(e.ID, 10),
		e.Date.ISO(),
		e.Category,
		e.Amount.Format(),
		e.Description,
	}
}

// WriteSnapshot writes the expenses as CSV in the given order, header first.
func WriteSnapshot(w io.Writer, expenses []core.Expense) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range expenses {
		if err := cw.Write(Row(e)); err != nil {
			return fmt.Errorf("write expense %d: %w", e.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush snapshot: %w", err)
	}
	return nil
}
