package model

import "time"

// WatchTarget represents one configured repository to monitor
type WatchTarget struct {
	Name     string        // Operator label used in notifications
	Ref      string        // Configured reference: image (namespace/image) or owner/repo
	Repo     string        // Current canonical owner/repo identity
	Keywords []string      // Lowercased breaking-change keywords
	Interval time.Duration // Effective polling interval
}

// NewWatchTarget builds a target whose current identity starts as the
// configured reference. The identity is corrected in place when the
// resolver finds the actual upstream repository mid-cycle.
func NewWatchTarget(name, ref string, keywords []string, interval time.Duration) *WatchTarget {
	return &WatchTarget{
		Name:     name,
		Ref:      ref,
		Repo:     ref,
		Keywords: keywords,
		Interval: interval,
	}
}
