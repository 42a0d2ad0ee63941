package runtime

import (
	"context"
	"fmt"
	"maps"
)

// CredentialSet is an in-memory CredentialStore keyed by credential type name
// (e.g. "campaignMonitorApi"). Field values may be environment references;
// they are resolved on every Get so rotated secrets are picked up without a
// restart.
type CredentialSet map[string]map[string]any

var _ CredentialStore = CredentialSet{}

func (s CredentialSet) Get(ctx context.Context, name string) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	record, ok := s[name]
	if !ok || record == nil {
		return nil, fmt.Errorf("%w: %s", ErrCredentialsNotFound, name)
	}

	resolved, err := ResolveEnvMap(maps.Clone(record))
	if err != nil {
		return nil, fmt.Errorf("credentials %s: %w", name, err)
	}
	return resolved, nil
}
