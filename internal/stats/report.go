package stats

import (
	"context"

	"github.com/verte-zerg/typecheck/internal/model"
)

// ResultLister reads stored results.
type ResultLister interface {
	ListResults(ctx context.Context, filter model.ResultFilter) ([]model.TestResultRecord, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Results []model.TestResultRecord
	Summary Summary
	Best    *model.TestResultRecord
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st ResultLister, cfg model.StatsConfig) (Report, error) {
	results, err := st.ListResults(ctx, cfg.Filter)
	if err != nil {
		return Report{}, err
	}
	report := Report{
		Results: results,
		Summary: Summarize(results),
	}
	for i := range results {
		if report.Best == nil || results[i].WPM > report.Best.WPM {
			report.Best = &results[i]
		}
	}
	return report, nil
}
