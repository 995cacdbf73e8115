package playerjs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dop251/goja"

	"github.com/famomatic/ytx/internal/cache"
	"github.com/famomatic/ytx/internal/types"
)

// The solver runtime is yt-dlp's ejs package: a lib module assigned onto
// globalThis plus a core module exposing jsc().
const (
	SolverLibURL  = "https://github.com/yt-dlp/ejs/releases/download/0.3.1/yt.solver.lib.min.js"
	SolverCoreURL = "https://github.com/yt-dlp/ejs/releases/download/0.3.1/yt.solver.core.min.js"
)

// Challenge kinds understood by jsc().
const (
	KindSig = "sig"
	KindN   = "n"
)

// SolverRequest is one batch of same-kind challenges.
type SolverRequest struct {
	Kind       string
	Challenges []string
}

// SolverResponse maps each challenge of the matching request to its answer.
type SolverResponse struct {
	Kind string
	Data map[string]string
}

// ChallengeSolver runs sig/n challenges against a player script.
type ChallengeSolver interface {
	Solve(ctx context.Context, playerCode string, reqs []SolverRequest) ([]SolverResponse, error)
}

// Solver executes jsc() inside a goja VM. Module bodies are cached in the
// code cache under their URLs so they download once per process.
type Solver struct {
	Fetch TextFetcher
	Codes *cache.Store
}

// NewSolver wires a Solver over the code cache.
func NewSolver(fetch TextFetcher, codes *cache.Store) *Solver {
	return &Solver{Fetch: fetch, Codes: codes}
}

func (s *Solver) module(ctx context.Context, rawURL string) (string, error) {
	if code, ok := s.Codes.Get(rawURL); ok {
		return code, nil
	}
	code, err := s.Fetch.Text(ctx, rawURL)
	if err != nil {
		return "", err
	}
	s.Codes.Add(rawURL, code)
	return code, nil
}

// Modules returns the lib and core module bodies.
func (s *Solver) Modules(ctx context.Context) (lib, core string, err error) {
	lib, err = s.module(ctx, SolverLibURL)
	if err != nil {
		return "", "", err
	}
	core, err = s.module(ctx, SolverCoreURL)
	if err != nil {
		return "", "", err
	}
	return lib, core, nil
}

type jscInput struct {
	Type               string       `json:"type"`
	Player             string       `json:"player"`
	Requests           []jscRequest `json:"requests"`
	OutputPreprocessed bool         `json:"output_preprocessed"`
}

type jscRequest struct {
	Type       string   `json:"type"`
	Challenges []string `json:"challenges"`
}

type jscOutput struct {
	Responses []struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	} `json:"responses"`
}

// Solve evaluates the player script with jsc(). The whole batch runs in
// one VM so a multi-client extraction pays the script parse cost once.
func (s *Solver) Solve(ctx context.Context, playerCode string, reqs []SolverRequest) ([]SolverResponse, error) {
	if len(reqs) == 0 {
		return nil, nil
	}
	lib, core, err := s.Modules(ctx)
	if err != nil {
		return nil, err
	}

	input := jscInput{
		Type:               "player",
		Player:             playerCode,
		Requests:           make([]jscRequest, 0, len(reqs)),
		OutputPreprocessed: true,
	}
	for _, r := range reqs {
		input.Requests = append(input.Requests, jscRequest{Type: r.Kind, Challenges: r.Challenges})
	}
	inputJSON, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("%w: solver input: %v", types.ErrDecipher, err)
	}

	vm := goja.New()
	if ctx.Done() != nil {
		stop := make(chan struct{})
		defer close(stop)
		go func() {
			select {
			case <-ctx.Done():
				vm.Interrupt(ctx.Err())
			case <-stop:
			}
		}()
	}

	env := lib + "\nObject.assign(globalThis, lib);\n" + core
	if _, err := vm.RunString(env); err != nil {
		return nil, fmt.Errorf("%w: solver environment: %v", types.ErrDecipher, err)
	}
	call := "JSON.stringify(jsc(" + string(inputJSON) + "))"
	result, err := vm.RunString(call)
	if err != nil {
		return nil, fmt.Errorf("%w: jsc: %v", types.ErrDecipher, err)
	}

	var out jscOutput
	if err := json.Unmarshal([]byte(result.String()), &out); err != nil {
		return nil, fmt.Errorf("%w: jsc output: %v", types.ErrDecipher, err)
	}
	if len(out.Responses) != len(reqs) {
		return nil, fmt.Errorf("%w: jsc answered %d of %d requests", types.ErrDecipher, len(out.Responses), len(reqs))
	}
	responses := make([]SolverResponse, 0, len(out.Responses))
	for i, r := range out.Responses {
		kind := r.Type
		if kind == "" {
			kind = reqs[i].Kind
		}
		responses = append(responses, SolverResponse{Kind: kind, Data: r.Data})
	}
	return responses, nil
}
