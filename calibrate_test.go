package bench

import (
	"context"
	"errors"
	"testing"
)

func TestCalibrateDoubling(t *testing.T) {
	// Each loop takes 0.01s; min_time is 0.1s, so calibration should settle
	// on loops=16 (0.16s >= 0.1s).
	fn := func(ctx context.Context, loops uint64) (float64, error) {
		return float64(loops) * 0.01, nil
	}

	loops, err := calibrate(context.Background(), fn, 0.1, 1.0)
	if err != nil {
		t.Fatalf("calibrate() error = %v", err)
	}

	if loops != 16 {
		t.Errorf("calibrate() = %d, want 16", loops)
	}
}

func TestCalibrateStopsBeforeOvershoot(t *testing.T) {
	// One loop already takes 0.6s, which is >= maxTime/2 (0.5), so
	// calibration must accept loops=1 rather than double to 2 (1.2s).
	fn := func(ctx context.Context, loops uint64) (float64, error) {
		return float64(loops) * 0.6, nil
	}

	loops, err := calibrate(context.Background(), fn, 1.0, 1.0)
	if err != nil {
		t.Fatalf("calibrate() error = %v", err)
	}

	if loops != 1 {
		t.Errorf("calibrate() = %d, want 1", loops)
	}
}

func TestCalibrateRejectsNonPositiveMinTime(t *testing.T) {
	fn := func(ctx context.Context, loops uint64) (float64, error) { return 1, nil }

	if _, err := calibrate(context.Background(), fn, 0, 1.0); err == nil {
		t.Errorf("calibrate() expected error for min_time <= 0")
	}
}

func TestCalibratePropagatesMeasurementError(t *testing.T) {
	wantErr := errors.New("boom")

	fn := func(ctx context.Context, loops uint64) (float64, error) {
		return 0, wantErr
	}

	if _, err := calibrate(context.Background(), fn, 0.1, 1.0); !errors.Is(err, wantErr) {
		t.Errorf("calibrate() error = %v, want wrapping %v", err, wantErr)
	}
}
