package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/luxfi/airdrop/pkg/audit"
	"github.com/luxfi/airdrop/pkg/balance"
	"github.com/luxfi/airdrop/pkg/reconcile"
	"github.com/luxfi/airdrop/pkg/store"
)

// Loader reads audited balance datasets. Every list it returns has been
// deduplicated and matched against its expected count and total.
type Loader struct {
	store   *store.Store
	checker *audit.Checker
	logger  *zap.Logger
}

// NewLoader creates a loader reading from s
func NewLoader(s *store.Store, checker *audit.Checker, logger *zap.Logger) *Loader {
	return &Loader{store: s, checker: checker, logger: logger}
}

// Load reads the artifact recorded for dataset id
func (l *Loader) Load(id string) (balance.List, error) {
	want, err := l.checker.Table().Get(id)
	if err != nil {
		return nil, err
	}
	if want.Artifact == "" {
		return nil, fmt.Errorf("dataset %s has no artifact", id)
	}

	raw, err := l.store.LoadBalances(want.Artifact)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", id, err)
	}

	list := reconcile.Deduplicate(raw)
	if dropped := len(raw) - len(list); dropped > 0 {
		l.logger.Warn("dropped repeated accounts",
			zap.String("dataset", id),
			zap.Int("dropped", dropped),
		)
	}

	if err := l.checker.CheckList(id, list); err != nil {
		return nil, err
	}

	l.logger.Debug("loaded dataset",
		zap.String("dataset", id),
		zap.String("artifact", want.Artifact),
		zap.Int("accounts", len(list)),
	)
	return list, nil
}
