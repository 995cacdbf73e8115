package playerjs

import (
	"context"
	"fmt"
	"net/url"

	"github.com/famomatic/ytx/internal/cache"
	"github.com/famomatic/ytx/internal/types"
)

// CodeSource yields the script body for a player URL.
type CodeSource interface {
	Load(ctx context.Context, playerURL string) (string, error)
}

// Engine deciphers stream signatures and n parameters. Solved values are
// memoized in the player cache under per-player scopes so each distinct
// challenge runs the VM once.
type Engine struct {
	Source  CodeSource
	Solver  ChallengeSolver
	Players *cache.ScopedStore
}

// NewEngine wires an Engine over the shared player cache.
func NewEngine(source CodeSource, solver ChallengeSolver, players *cache.ScopedStore) *Engine {
	return &Engine{Source: source, Solver: solver, Players: players}
}

// DecipherQuery resolves a signatureCipher query ("s", "sp", "url") into a
// playable URL. "sp" defaults to "signature" when the query omits it.
func (e *Engine) DecipherQuery(ctx context.Context, cipherQuery, playerURL string) (string, error) {
	values, err := url.ParseQuery(cipherQuery)
	if err != nil {
		return "", fmt.Errorf("%w: signature cipher: %v", types.ErrInvalidInput, err)
	}
	fmtURL := values.Get("url")
	encrypted := values.Get("s")
	if fmtURL == "" || encrypted == "" {
		return "", fmt.Errorf("%w: signature cipher is missing url or s", types.ErrInvalidInput)
	}
	sig, err := e.DecryptSignature(ctx, encrypted, playerURL)
	if err != nil {
		return "", err
	}
	param := values.Get("sp")
	if param == "" {
		param = "signature"
	}
	// The signed URL may still carry a throttled n parameter.
	return e.ResolveStreamURL(ctx, fmtURL+"&"+param+"="+sig, playerURL)
}

// DecryptSignature solves one "s" challenge against the player build.
func (e *Engine) DecryptSignature(ctx context.Context, encrypted, playerURL string) (string, error) {
	return e.solve(ctx, KindSig, encrypted, playerURL)
}

// DecryptN solves one "n" throttling challenge against the player build.
func (e *Engine) DecryptN(ctx context.Context, n, playerURL string) (string, error) {
	return e.solve(ctx, KindN, n, playerURL)
}

// ResolveStreamURL rewrites rawURL's "n" query parameter with its solved
// value. URLs without an "n" parameter pass through untouched.
func (e *Engine) ResolveStreamURL(ctx context.Context, rawURL, playerURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: stream url: %v", types.ErrInvalidInput, err)
	}
	q := u.Query()
	n := q.Get("n")
	if n == "" {
		return rawURL, nil
	}
	solved, err := e.DecryptN(ctx, n, playerURL)
	if err != nil {
		return "", err
	}
	q.Set("n", solved)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (e *Engine) solve(ctx context.Context, kind, challenge, playerURL string) (string, error) {
	scope := kind + "-" + playerURL
	if cached, ok := e.Players.Get(scope, challenge); ok {
		return cached, nil
	}

	code, err := e.Source.Load(ctx, playerURL)
	if err != nil {
		return "", err
	}

	solved, solveErr := e.solveWithVM(ctx, code, kind, challenge)
	if solveErr != nil {
		solved, err = newFallback(code).Solve(kind, challenge)
		if err != nil {
			return "", solveErr
		}
	}
	e.Players.Add(scope, challenge, solved)
	return solved, nil
}

func (e *Engine) solveWithVM(ctx context.Context, code, kind, challenge string) (string, error) {
	responses, err := e.Solver.Solve(ctx, code, []SolverRequest{{Kind: kind, Challenges: []string{challenge}}})
	if err != nil {
		return "", err
	}
	if len(responses) == 0 {
		return "", fmt.Errorf("%w: solver returned no responses", types.ErrDecipher)
	}
	answer, ok := responses[0].Data[challenge]
	if !ok || answer == "" {
		return "", fmt.Errorf("%w: solver returned no answer for %s challenge", types.ErrDecipher, kind)
	}
	return answer, nil
}
