package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ordersCSV = `order_id,due_date
O014,2025-08-30 17:00:00
O021,2025-08-29 12:00:00
`

const scheduleCSV = `order_id,machine,operation,sequence,start,end,due_date,wheel_type
O021,M1,cutting,1,2025-08-25 08:00:00,2025-08-25 10:00:00,2025-08-29 12:00:00,alloy
O021,M2,polishing,2,2025-08-25 10:00:00,2025-08-25 12:00:00,2025-08-29 12:00:00,alloy
O014,M1,cutting,1,2025-08-25 10:00:00,2025-08-25 11:30:00,2025-08-30 17:00:00,steel
`

func makassar(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Makassar")
	require.NoError(t, err)
	return loc
}

func TestReadOrders(t *testing.T) {
	loc := makassar(t)
	orders, err := NewLoader(loc).ReadOrders(strings.NewReader(ordersCSV))
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "O014", orders[0].ID)
	assert.True(t, orders[0].DueDate.Equal(time.Date(2025, 8, 30, 17, 0, 0, 0, loc)))
}

func TestReadScheduleColumnsByName(t *testing.T) {
	loc := makassar(t)
	in := "machine,order_id,sequence,end,start\nM3,O030,1,2025-08-25 09:00:00,2025-08-25 08:00:00\n"
	ops, err := NewLoader(loc).ReadSchedule(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "M3", ops[0].Machine)
	assert.Equal(t, "O030", ops[0].OrderID)
	assert.Equal(t, time.Hour, ops[0].Duration())
	assert.True(t, ops[0].DueDate.IsZero())
}

func TestReadScheduleErrors(t *testing.T) {
	loc := makassar(t)
	cases := map[string]struct {
		in   string
		want string
	}{
		"empty":          {"", "missing header"},
		"missing column": {"order_id,machine,sequence,start\n", `missing column "end"`},
		"bad sequence":   {"order_id,machine,sequence,start,end\nO001,M1,x,2025-08-25 08:00,2025-08-25 09:00\n", "line 2: sequence"},
		"bad time":       {"order_id,machine,sequence,start,end\nO001,M1,1,soon,2025-08-25 09:00\n", "line 2: start"},
		"reversed":       {"order_id,machine,sequence,start,end\nO001,M1,1,2025-08-25 09:00,2025-08-25 08:00\n", "line 2: end"},
		"empty machine":  {"order_id,machine,sequence,start,end\nO001,,1,2025-08-25 08:00,2025-08-25 09:00\n", "machine is empty"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewLoader(loc).ReadSchedule(strings.NewReader(tc.in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	ordersPath := filepath.Join(dir, "scooter_orders.csv")
	schedulePath := filepath.Join(dir, "scooter_schedule.csv")
	require.NoError(t, os.WriteFile(ordersPath, []byte(ordersCSV), 0o644))
	require.NoError(t, os.WriteFile(schedulePath, []byte(scheduleCSV), 0o644))

	orders, tl, err := NewLoader(makassar(t)).Load(ordersPath, schedulePath)
	require.NoError(t, err)
	assert.Equal(t, 2, orders.Len())
	assert.Equal(t, 3, tl.Len())
	assert.True(t, tl.HasOrder("O014"))

	_, _, err = NewLoader(nil).Load(filepath.Join(dir, "missing.csv"), schedulePath)
	assert.Error(t, err)
}
