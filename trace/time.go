package trace

import "fmt"

// String formats the timestamp for display, choosing the largest unit that keeps two significant decimals.
func (ts Timestamp) String() string {
	ns := int64(ts)
	if ns < 0 {
		return "-" + Timestamp(-ns).String()
	}
	switch {
	case ns < 1_000:
		return fmt.Sprintf("%d ns", ns)
	case ns < 1_000_000:
		return fmt.Sprintf("%.2f µs", float64(ns)/1e3)
	case ns < 1_000_000_000:
		return fmt.Sprintf("%.2f ms", float64(ns)/1e6)
	case ns < 60_000_000_000:
		return fmt.Sprintf("%.2f s", float64(ns)/1e9)
	default:
		m := ns / 60_000_000_000
		s := float64(ns-m*60_000_000_000) / 1e9
		return fmt.Sprintf("%d:%05.2f", m, s)
	}
}
