package feedback

import (
	"context"

	"github.com/careermate/careermate/internal/scoring"
)

// Generator can replace the static feedback strings on a report with richer
// text. The scorer's numbers are never changed; generation failures leave the
// templates in place.
type Generator interface {
	Enrich(ctx context.Context, r scoring.Report, answers []string) (scoring.Report, error)
}
