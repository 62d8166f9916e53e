package security

import (
	"context"
	"sort"
	"time"

	dErrors "sentinela/pkg/domain-errors"
)

// BruteForceReport pairs the raw recent attempts with the aggregated
// suspicious-IP summary.
type BruteForceReport struct {
	Attempts      []Event        `json:"brute_force_attempts"`
	SuspiciousIPs []SuspiciousIP `json:"suspicious_ips"`
}

// BruteForce recomputes the suspicious-IP aggregation over raw events inside
// the trailing window. This is a read-time group-and-count, O(events in
// window); the window and the result limit bound the scan. A maintained
// rolling counter keyed by (ip, bucket) would be the optimization if this
// ever shows up in profiles, but it must keep exactly these grouping
// semantics.
func (s *Service) BruteForce(ctx context.Context) (*BruteForceReport, error) {
	since := time.Now().Add(-s.cfg.BruteForceWindow)
	attempts, err := s.store.ListByTypesSince(ctx, []string{EventTypeBruteForce}, since, s.cfg.BruteForceLimit)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load brute force attempts", err)
	}
	if attempts == nil {
		attempts = []Event{}
	}

	return &BruteForceReport{
		Attempts:      attempts,
		SuspiciousIPs: aggregateSuspicious(attempts, s.cfg.BruteForceThreshold),
	}, nil
}

// aggregateSuspicious groups attempts by source IP and keeps groups meeting
// the threshold, ordered by descending count with ties broken by the most
// recent attempt from that IP.
func aggregateSuspicious(attempts []Event, threshold int) []SuspiciousIP {
	counts := make(map[string]int)
	latest := make(map[string]time.Time)
	for _, e := range attempts {
		counts[e.SourceIP]++
		if e.CreatedAt.After(latest[e.SourceIP]) {
			latest[e.SourceIP] = e.CreatedAt
		}
	}

	suspicious := make([]SuspiciousIP, 0)
	for ip, count := range counts {
		if count >= threshold {
			suspicious = append(suspicious, SuspiciousIP{IP: ip, Attempts: count})
		}
	}
	sort.SliceStable(suspicious, func(i, j int) bool {
		if suspicious[i].Attempts != suspicious[j].Attempts {
			return suspicious[i].Attempts > suspicious[j].Attempts
		}
		return latest[suspicious[i].IP].After(latest[suspicious[j].IP])
	})
	return suspicious
}
