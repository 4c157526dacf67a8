package comm

import (
	"time"

	humanize "github.com/dustin/go-humanize"
)

type progressState struct {
	start      time.Time
	totalBytes int64
	lastPrint  time.Time
}

var current *progressState

var maxJsonPrintDuration = 500 * time.Millisecond

// StartProgress begins a period in which progress is reported
func StartProgress() {
	StartProgressWithTotalBytes(0)
}

// StartProgressWithTotalBytes begins a period in which progress is reported,
// and bps (bytes per second) is estimated from the total size given
func StartProgressWithTotalBytes(totalBytes int64) {
	if current != nil {
		// Already in-progress
		return
	}

	current = &progressState{
		start:      time.Now(),
		totalBytes: totalBytes,
	}
	if totalBytes > 0 {
		Debugf("Streaming %s", humanize.IBytes(uint64(totalBytes)))
	}
}

// Progress sets the completion of a task, in the [0,1] interval.
// It only has an effect if StartProgress was already called.
func Progress(alpha float64) {
	if current == nil || settings.noProgress {
		return
	}

	if time.Since(current.lastPrint) < maxJsonPrintDuration && alpha < 1.0 {
		return
	}
	current.lastPrint = time.Now()

	msg := JsonMessage{
		"progress":   alpha,
		"percentage": alpha * 100.0,
	}
	if current.totalBytes > 0 {
		elapsed := time.Since(current.start).Seconds()
		if elapsed > 0 {
			msg["bps"] = alpha * float64(current.totalBytes) / elapsed
		}
	}
	send("progress", msg)
}

// EndProgress stops reporting progress
func EndProgress() {
	current = nil
}
