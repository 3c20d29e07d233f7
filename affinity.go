package bench

import (
	"github.com/acronis/perfkit/logger"
)

// bindCPUAffinity is invoked by the Master before it spawns workers and by
// every worker at startup before any measurement, and mutates policy in
// place when it auto-detects isolated CPUs so the Master feeds the chosen
// set back into subsequent worker command lines.
func bindCPUAffinity(policy *Policy, log logger.Logger) error {
	if len(policy.AffinityCPUs) > 0 && policy.AffinityExplicit {
		if err := setCPUAffinity(policy.AffinityCPUs); err != nil {
			return &PinningUnavailable{Err: err}
		}

		return nil
	}

	isolated, err := getIsolatedCPUs()
	if err != nil {
		log.Debug("failed to probe isolated CPUs: %v", err)
		return nil
	}

	if len(isolated) == 0 {
		return nil
	}

	if err := setCPUAffinity(isolated); err != nil {
		if !policy.Quiet {
			log.Warn("unable to pin worker process to isolated CPUs, CPU affinity not available: %v", err)
		}

		return nil
	}

	policy.AffinityCPUs = isolated
	log.Info("pinned process to isolated CPUs: %s", formatCPUList(isolated))

	return nil
}
