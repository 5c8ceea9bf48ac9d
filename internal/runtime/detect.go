package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/tiller/pkg/domain"
)

// detect partitions targets into already-prepared and unknown, preserving
// relative order within each partition. A target counts as prepared when it
// declares the agent feature, the feature was recorded in a previous run,
// its transport provides the feature, or it is flagged remote (remote
// targets are assumed pre-provisioned).
//
// Pure classification: no probe is ever issued here.
func (e *Engine) detect(ctx context.Context, targets []*domain.Target) (prepared, unknown []*domain.Target, err error) {
	for _, t := range targets {
		has := t.HasFeature(domain.FeatureAgent) || t.Remote

		if !has && e.deps.Transport != nil {
			_, has = e.deps.Transport.ProvidedFeatures(t.Transport)[domain.FeatureAgent]
		}

		if !has {
			recorded, err := e.deps.Features.Features(ctx, t)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to read features for %s: %w", t.Name, err)
			}
			_, has = recorded[domain.FeatureAgent]
		}

		if has {
			prepared = append(prepared, t)
		} else {
			unknown = append(unknown, t)
		}
	}
	return prepared, unknown, nil
}
