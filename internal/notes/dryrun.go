package notes

import (
	"context"

	"github.com/kalambet/dayone2notes/internal/plan"
)

// DryRun records every plan it would have submitted and touches nothing.
type DryRun struct {
	Plans []plan.Plan
}

// NewDryRun creates a dry-run backend.
func NewDryRun() *DryRun {
	return &DryRun{}
}

func (d *DryRun) IsReady(ctx context.Context) (bool, string) {
	return true, "dry-run"
}

func (d *DryRun) EnsureFolder(ctx context.Context, name string) error {
	return nil
}

func (d *DryRun) Submit(ctx context.Context, p plan.Plan) Outcome {
	d.Plans = append(d.Plans, p)
	return Outcome{Status: StatusCreated, FinalTitle: p.Title}
}
