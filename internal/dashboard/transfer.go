package dashboard

import (
	"context"

	"go.uber.org/zap"

	"pnl-dashboard/internal/exchange"
)

// ImportResult reports how many strategies an import kept and dropped.
type ImportResult struct {
	Added   int    `json:"added"`
	Dropped int    `json:"dropped"`
	Warning string `json:"warning,omitempty"`
}

// Export serializes every strategy into the export envelope and returns the
// document with its suggested file name.
func (s *Service) Export(_ context.Context) ([]byte, string, error) {
	now := s.now()
	env, err := exchange.Export(s.store.List(), now)
	if err != nil {
		return nil, "", err
	}
	data, err := exchange.Marshal(env)
	if err != nil {
		return nil, "", err
	}
	return data, exchange.FileName(now), nil
}

// Import loads an export document. Replace swaps the whole list and selects the
// first imported strategy; merge appends with fresh ids. Both stop at the capacity.
func (s *Service) Import(ctx context.Context, data []byte, policy exchange.Policy) (ImportResult, error) {
	env, err := exchange.Parse(data)
	if err != nil {
		return ImportResult{}, err
	}

	var res ImportResult
	switch policy {
	case exchange.PolicyMerge:
		res.Added, res.Dropped = s.store.Merge(env.Strategies)
	default:
		res.Dropped = s.store.ReplaceAll(env.Strategies)
		res.Added = len(env.Strategies) - res.Dropped
	}

	s.logger.Info("strategies imported",
		zap.String("policy", string(policy)),
		zap.String("version", env.Version),
		zap.Int("added", res.Added),
		zap.Int("dropped", res.Dropped),
	)
	res.Warning = s.persistStrategies(ctx)
	s.publish(EventStateImported, s.store.CurrentID())
	return res, nil
}
