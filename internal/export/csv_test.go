package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracker/internal/core"
)

func TestWriteSnapshotFormat(t *testing.T) {
	expenses := []core.Expense{
		{
			ID:          3,
			UserID:      1,
			Amount:      core.Money{Cents: 10001},
			Category:    "Food",
			Description: "dinner, with friends",
			Date:        core.NewDate(2024, 3, 20),
		},
		{
			ID:       1,
			UserID:   1,
			Amount:   core.Money{Cents: 500},
			Category: "Transport",
			Date:     core.NewDate(2024, 3, 15),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, expenses))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,date,category,amount,description", lines[0])
	assert.Equal(t, `3,2024-03-20,Food,100.01,"dinner, with friends"`, lines[1])
	assert.Equal(t, "1,2024-03-15,Transport,5.00,", lines[2])
}

func TestSnapshotRoundTrips(t *testing.T) {
	expenses := []core.Expense{
		{ID: 7, Amount: core.Money{Cents: 1234}, Category: "Bills", Description: "multi\nline", Date: core.NewDate(2024, 12, 31)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, expenses))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, Header, records[0])
	assert.Equal(t, []string{"7", "2024-12-31", "Bills", "12.34", "multi\nline"}, records[1])
}

func TestWriteSnapshotEmptyLedger(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, nil))
	assert.Equal(t, "id,date,category,amount,description\n", buf.String())
}
