// Package challenge batches sig and n challenges so one extraction pass
// solves each distinct value once, whatever mix of clients produced it.
package challenge

import (
	"context"
	"fmt"
)

// BatchSolver collects challenges and resolves them in one pass against a
// player build.
type BatchSolver interface {
	AddSig(challenge string)
	AddN(challenge string)
	Solve(ctx context.Context, playerURL string) error
	Sig(challenge string) (string, bool)
	N(challenge string) (string, bool)
}

// Decipherer answers individual challenges for one player build.
type Decipherer interface {
	DecipherSignature(challenge string) (string, error)
	DecipherN(challenge string) (string, error)
}

// Provider yields a Decipherer bound to a player build.
type Provider interface {
	Load(ctx context.Context, playerURL string) (Decipherer, error)
}

// ProviderBatchSolver resolves collected challenges through one Provider.
type ProviderBatchSolver struct {
	provider Provider

	pendingSig []string
	pendingN   []string
	sig        map[string]string
	n          map[string]string
}

// NewProviderBatchSolver returns an empty batch over provider.
func NewProviderBatchSolver(provider Provider) *ProviderBatchSolver {
	return &ProviderBatchSolver{
		provider: provider,
		sig:      make(map[string]string),
		n:        make(map[string]string),
	}
}

// AddSig queues a signature challenge. Duplicates collapse.
func (s *ProviderBatchSolver) AddSig(challenge string) {
	if challenge == "" {
		return
	}
	if _, ok := s.sig[challenge]; ok {
		return
	}
	for _, pending := range s.pendingSig {
		if pending == challenge {
			return
		}
	}
	s.pendingSig = append(s.pendingSig, challenge)
}

// AddN queues an n challenge. Duplicates collapse.
func (s *ProviderBatchSolver) AddN(challenge string) {
	if challenge == "" {
		return
	}
	if _, ok := s.n[challenge]; ok {
		return
	}
	for _, pending := range s.pendingN {
		if pending == challenge {
			return
		}
	}
	s.pendingN = append(s.pendingN, challenge)
}

// Solve resolves every queued challenge against playerURL. Solved values
// stay available through Sig and N; the queues drain only on success.
func (s *ProviderBatchSolver) Solve(ctx context.Context, playerURL string) error {
	if len(s.pendingSig) == 0 && len(s.pendingN) == 0 {
		return nil
	}
	dec, err := s.provider.Load(ctx, playerURL)
	if err != nil {
		return fmt.Errorf("load decipherer: %w", err)
	}
	for _, challenge := range s.pendingSig {
		solved, err := dec.DecipherSignature(challenge)
		if err != nil {
			return fmt.Errorf("sig challenge: %w", err)
		}
		s.sig[challenge] = solved
	}
	for _, challenge := range s.pendingN {
		solved, err := dec.DecipherN(challenge)
		if err != nil {
			return fmt.Errorf("n challenge: %w", err)
		}
		s.n[challenge] = solved
	}
	s.pendingSig = nil
	s.pendingN = nil
	return nil
}

// Sig returns the solved value of a signature challenge.
func (s *ProviderBatchSolver) Sig(challenge string) (string, bool) {
	v, ok := s.sig[challenge]
	return v, ok
}

// N returns the solved value of an n challenge.
func (s *ProviderBatchSolver) N(challenge string) (string, bool) {
	v, ok := s.n[challenge]
	return v, ok
}

// fallbackBatchSolver chains providers, moving to the next when a full
// batch fails.
type fallbackBatchSolver struct {
	solvers []*ProviderBatchSolver
}

// NewFallbackProviderBatchSolver tries each provider in order until one
// solves the whole batch.
func NewFallbackProviderBatchSolver(providers ...Provider) BatchSolver {
	solvers := make([]*ProviderBatchSolver, 0, len(providers))
	for _, p := range providers {
		solvers = append(solvers, NewProviderBatchSolver(p))
	}
	return &fallbackBatchSolver{solvers: solvers}
}

func (f *fallbackBatchSolver) AddSig(challenge string) {
	for _, s := range f.solvers {
		s.AddSig(challenge)
	}
}

func (f *fallbackBatchSolver) AddN(challenge string) {
	for _, s := range f.solvers {
		s.AddN(challenge)
	}
}

func (f *fallbackBatchSolver) Solve(ctx context.Context, playerURL string) error {
	var lastErr error
	for _, s := range f.solvers {
		if err := s.Solve(ctx, playerURL); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	if lastErr == nil {
		return fmt.Errorf("no challenge providers configured")
	}
	return lastErr
}

func (f *fallbackBatchSolver) Sig(challenge string) (string, bool) {
	for _, s := range f.solvers {
		if v, ok := s.Sig(challenge); ok {
			return v, true
		}
	}
	return "", false
}

func (f *fallbackBatchSolver) N(challenge string) (string, bool) {
	for _, s := range f.solvers {
		if v, ok := s.N(challenge); ok {
			return v, true
		}
	}
	return "", false
}
