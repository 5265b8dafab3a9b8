package tabular

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/openkvlab/boltdb"
)

// Stats are cumulative counters of a store since it was opened or since the last ResetStats.
type Stats struct {
	OpenedAt time.Time

	ReadTxTotal  int64
	WriteTxTotal int64
	TxOpenCount  int64

	TablesStored     int64
	TablesLoaded     int64 // includes streamed tables
	TablesDeleted    int64
	DirectivesStored int64

	RowsWritten int64
	RowsRead    int64

	PutDuration  time.Duration
	LoadDuration time.Duration

	// BoltDB passes through the statistics of the underlying file.
	BoltDB boltdb.Stats
}

func (s Stats) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Table store (opened %s)\n", s.OpenedAt.Format(time.RFC3339))
	b.WriteString(strings.Repeat("-", 50) + "\n")

	b.WriteString("Transactions:\n")
	fmt.Fprintf(&b, "  Read:     %s    Write:    %s    Open: %s\n",
		formatCount(s.ReadTxTotal), formatCount(s.WriteTxTotal), formatCount(s.TxOpenCount))

	b.WriteString("\nTables:\n")
	fmt.Fprintf(&b, "  Stored:   %s    (total: %s)\n", formatCount(s.TablesStored), formatDuration(s.PutDuration))
	fmt.Fprintf(&b, "  Loaded:   %s    (total: %s)\n", formatCount(s.TablesLoaded), formatDuration(s.LoadDuration))
	fmt.Fprintf(&b, "  Deleted:  %s    Directives: %s\n", formatCount(s.TablesDeleted), formatCount(s.DirectivesStored))

	b.WriteString("\nRows:\n")
	fmt.Fprintf(&b, "  Written:  %s    Read:     %s\n", formatCount(s.RowsWritten), formatCount(s.RowsRead))

	b.WriteString("\nBoltDB:\n")
	fmt.Fprintf(&b, "  Free Pages:    %d    Pending Pages: %d\n", s.BoltDB.FreePageN, s.BoltDB.PendingPageN)
	fmt.Fprintf(&b, "  Free Alloc:    %s    Freelist Size: %s\n",
		formatBytes(s.BoltDB.FreeAlloc), formatBytes(s.BoltDB.FreelistInuse))
	fmt.Fprintf(&b, "  Open Read Tx:  %d    Total Tx:      %d\n", s.BoltDB.OpenTxN, s.BoltDB.TxN)

	return b.String()
}

// storeStats is shared by a DB and its transactions.
type storeStats struct {
	readTx  atomic.Int64
	writeTx atomic.Int64
	openTx  atomic.Int64

	stored     atomic.Int64
	loaded     atomic.Int64
	deleted    atomic.Int64
	directives atomic.Int64

	rowsWritten atomic.Int64
	rowsRead    atomic.Int64

	putNanos  atomic.Int64
	loadNanos atomic.Int64
}

func (s *storeStats) beginTx(writable bool) {
	if writable {
		s.writeTx.Add(1)
	} else {
		s.readTx.Add(1)
	}
	s.openTx.Add(1)
}

func (s *storeStats) endTx() {
	s.openTx.Add(-1)
}

func (s *storeStats) snapshot(openedAt time.Time, boltStats boltdb.Stats) Stats {
	return Stats{
		OpenedAt: openedAt,

		ReadTxTotal:  s.readTx.Load(),
		WriteTxTotal: s.writeTx.Load(),
		TxOpenCount:  s.openTx.Load(),

		TablesStored:     s.stored.Load(),
		TablesLoaded:     s.loaded.Load(),
		TablesDeleted:    s.deleted.Load(),
		DirectivesStored: s.directives.Load(),

		RowsWritten: s.rowsWritten.Load(),
		RowsRead:    s.rowsRead.Load(),

		PutDuration:  time.Duration(s.putNanos.Load()),
		LoadDuration: time.Duration(s.loadNanos.Load()),

		BoltDB: boltStats,
	}
}

// reset zeroes the counters, except for the number of open transactions.
func (s *storeStats) reset() {
	for _, c := range []*atomic.Int64{
		&s.readTx, &s.writeTx,
		&s.stored, &s.loaded, &s.deleted, &s.directives,
		&s.rowsWritten, &s.rowsRead,
		&s.putNanos, &s.loadNanos,
	} {
		c.Store(0)
	}
}

// formatCount formats an integer with comma separators.
func formatCount(n int64) string {
	if n < 0 {
		return "-" + formatCount(-n)
	}
	s := fmt.Sprintf("%d", n)
	if n < 1000 {
		return s
	}
	var result strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(c)
	}
	return result.String()
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%.2fus", float64(d.Nanoseconds())/1000)
	case d < time.Second:
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1e6)
	case d < time.Minute:
		return fmt.Sprintf("%.3fs", d.Seconds())
	}
	return d.Round(time.Second).String()
}

func formatBytes(b int) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)
	switch {
	case b >= GB:
		return fmt.Sprintf("%.2f GB", float64(b)/GB)
	case b >= MB:
		return fmt.Sprintf("%.2f MB", float64(b)/MB)
	case b >= KB:
		return fmt.Sprintf("%.2f KB", float64(b)/KB)
	default:
		return fmt.Sprintf("%d B", b)
	}
}
