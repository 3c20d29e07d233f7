package bench

import (
	"context"
	"fmt"
)

// calibrate chooses the smallest loops in {1, 2, 4, 8, ...} such that one
// measurement of fn takes at least minTime seconds. It stops doubling early,
// and returns a count that came in under minTime, once a measurement
// reaches maxTime/2, since the next doubling would pass maxTime.
func calibrate(ctx context.Context, fn MeasureFunc, minTime, maxTime float64) (uint64, error) {
	if minTime <= 0 {
		return 0, fmt.Errorf("bench: min_time must be > 0 for calibration")
	}

	var loops uint64 = 1

	for {
		dt, err := fn(ctx, loops)
		if err != nil {
			return 0, fmt.Errorf("bench: calibration measurement failed at loops=%d: %w", loops, err)
		}

		if dt >= minTime {
			return loops, nil
		}

		if dt >= maxTime/2 {
			// Avoid overshoot: doubling again risks blowing well past
			// max_time, so accept this loop count even though it came in
			// under min_time.
			return loops, nil
		}

		loops *= 2
	}
}
