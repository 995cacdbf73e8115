package challenge

import (
	"context"

	"github.com/famomatic/ytx/internal/playerjs"
)

// EngineProvider adapts the playerjs engine to the Provider contract,
// preloading the player script so later per-challenge calls hit the caches.
type EngineProvider struct {
	Engine *playerjs.Engine
}

func (p EngineProvider) Load(ctx context.Context, playerURL string) (Decipherer, error) {
	if _, err := p.Engine.Source.Load(ctx, playerURL); err != nil {
		return nil, err
	}
	return engineDecipherer{ctx: ctx, engine: p.Engine, playerURL: playerURL}, nil
}

// engineDecipherer is request-scoped; it carries the Load context because
// the Decipherer contract has no per-call context.
type engineDecipherer struct {
	ctx       context.Context
	engine    *playerjs.Engine
	playerURL string
}

func (d engineDecipherer) DecipherSignature(challenge string) (string, error) {
	return d.engine.DecryptSignature(d.ctx, challenge, d.playerURL)
}

func (d engineDecipherer) DecipherN(challenge string) (string, error) {
	return d.engine.DecryptN(d.ctx, challenge, d.playerURL)
}
