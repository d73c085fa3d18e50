package insights

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"

	"askcents/internal/cache"
	"askcents/internal/core"

	"golang.org/x/sync/singleflight"
)

// Service memoizes Orchestrator.Build by input identity: a hash of the two
// input arrays, not the caller's rendering cycle. Identical concurrent builds
// share one computation.
type Service struct {
	orch  *Orchestrator
	memo  cache.Cache[core.InsightsViewModel]
	group singleflight.Group
}

// NewService wraps orch. A nil memo disables memoization.
func NewService(orch *Orchestrator, memo cache.Cache[core.InsightsViewModel]) *Service {
	if orch == nil {
		orch = NewOrchestrator(DefaultPolicy())
	}
	return &Service{orch: orch, memo: memo}
}

func (s *Service) Orchestrator() *Orchestrator {
	return s.orch
}

// MemoStats reports the memo's hit and miss counters. It reports false when
// memoization is off or the memo keeps no counters.
func (s *Service) MemoStats() (cache.Stats, bool) {
	sc, ok := s.memo.(interface{ Stats() cache.Stats })
	if !ok {
		return cache.Stats{}, false
	}
	return sc.Stats(), true
}

// Build returns the view-model for the inputs, computing it at most once per
// distinct input while the memo entry lives.
func (s *Service) Build(accounts []core.Account, txs []core.Transaction) core.InsightsViewModel {
	key, ok := InputKey(accounts, txs)
	if !ok || s.memo == nil {
		return s.orch.Build(accounts, txs)
	}
	if vm, hit := s.memo.Get(key); hit {
		return cloneViewModel(vm)
	}
	v, _, _ := s.group.Do(key, func() (any, error) {
		vm := s.orch.Build(accounts, txs)
		s.memo.Set(key, vm)
		return vm, nil
	})
	return cloneViewModel(v.(core.InsightsViewModel))
}

// InputKey hashes the canonical JSON of both inputs. It reports false when
// the inputs cannot be encoded (for example a NaN amount).
func InputKey(accounts []core.Account, txs []core.Transaction) (string, bool) {
	payload := struct {
		Accounts     []core.Account     `json:"a"`
		Transactions []core.Transaction `json:"t"`
	}{accounts, txs}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", false
	}
	sum := sha256.Sum256(b)
	return "insights:" + hex.EncodeToString(sum[:]), true
}

// cloneViewModel copies the slices so callers cannot mutate a memo entry.
func cloneViewModel(vm core.InsightsViewModel) core.InsightsViewModel {
	vm.Categories = slices.Clone(vm.Categories)
	vm.HealthScore.Factors = slices.Clone(vm.HealthScore.Factors)
	return vm
}
