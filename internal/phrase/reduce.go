package phrase

import (
	"fmt"
	"math"

	"github.com/heartmarshall/phrasetable/internal/domain"
)

// PruneStats reports what pruning removed.
type PruneStats struct {
	TargetsBefore int
	TargetsAfter  int
	EntriesBefore int
	EntriesAfter  int
	// RatioDropped counts candidates removed by the ratio cutoff alone.
	RatioDropped int
}

// Prune removes low-evidence entries from c in two ordered stages:
//
//  1. a target phrase whose total count is strictly below countThreshold is
//     removed with all its candidates;
//  2. within each remaining target phrase, a candidate whose count is strictly
//     below max/ratioQuotient is removed. Candidates equal to the max survive.
//
// ratioQuotient must be >= 1, so the best candidate always survives;
// countThreshold must not be NaN.
func Prune(c *Counts, countThreshold, ratioQuotient float64) (PruneStats, error) {
	if err := validatePruneParams(countThreshold, ratioQuotient); err != nil {
		return PruneStats{}, err
	}

	stats := PruneStats{TargetsBefore: c.Len(), EntriesBefore: c.Entries()}

	for target := range c.m {
		if c.Total(target) < countThreshold {
			c.DeleteTarget(target)
		}
	}

	for target, sources := range c.m {
		cutoff := c.Max(target) / ratioQuotient
		for source, n := range sources {
			if n < cutoff {
				delete(sources, source)
				stats.RatioDropped++
			}
		}
	}

	stats.TargetsAfter = c.Len()
	stats.EntriesAfter = c.Entries()
	return stats, nil
}

func validatePruneParams(countThreshold, ratioQuotient float64) error {
	var errs []domain.FieldError
	if math.IsNaN(countThreshold) {
		errs = append(errs, domain.FieldError{Field: "count_threshold", Message: "must not be NaN"})
	}
	if math.IsNaN(ratioQuotient) || ratioQuotient < 1 {
		errs = append(errs, domain.FieldError{Field: "ratio_quotient", Message: "must be >= 1"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// Normalize divides every value of c by its target phrase's total, turning
// counts into P(source | target). Totals are checked before anything is
// divided: a zero or non-finite total leaves c untouched and returns an error
// wrapping domain.ErrDegenerateNormalization.
func Normalize(c *Counts) error {
	totals := make(map[string]float64, len(c.m))
	for _, target := range c.Targets() {
		total := c.Total(target)
		if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
			return fmt.Errorf("target %q: total %v: %w", target, total, domain.ErrDegenerateNormalization)
		}
		totals[target] = total
	}

	for target, sources := range c.m {
		total := totals[target]
		for source := range sources {
			sources[source] /= total
		}
	}
	return nil
}

// Reduce prunes c and normalizes the survivors. c is modified in place and
// returned. Any error aborts the reduction.
func Reduce(c *Counts, countThreshold, ratioQuotient float64) (*Counts, PruneStats, error) {
	stats, err := Prune(c, countThreshold, ratioQuotient)
	if err != nil {
		return nil, PruneStats{}, fmt.Errorf("prune: %w", err)
	}
	if err := Normalize(c); err != nil {
		return nil, stats, fmt.Errorf("normalize: %w", err)
	}
	return c, stats, nil
}
