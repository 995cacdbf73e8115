// Package orchestrator runs the multi-client extraction loop: fetch the
// watch page, mine its config, then walk the selected client profiles
// until one of them yields an accepted player response.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/famomatic/ytx/internal/innertube"
	"github.com/famomatic/ytx/internal/jsontree"
	"github.com/famomatic/ytx/internal/policy"
	"github.com/famomatic/ytx/internal/types"
	"github.com/famomatic/ytx/internal/webpage"
)

// PageSource is the plain-GET surface the loop needs.
type PageSource interface {
	WatchPage(ctx context.Context, videoID types.VideoID, userAgent string) (string, error)
	IframePlayerID(ctx context.Context) (string, error)
}

// TimestampSource resolves a player build's signature timestamp.
type TimestampSource interface {
	SignatureTimestamp(ctx context.Context, playerURL string, ytcfg map[string]any) (int, error)
}

// Engine drives one extraction per Extract call. All fields but Client
// and Pages are optional.
type Engine struct {
	Client     *innertube.Client
	Pages      PageSource
	Registry   innertube.Registry
	Timestamps TimestampSource
	PoTokens   innertube.PoTokenProvider
	Logger     policy.Logger
	Events     EventSink

	// Origin overrides the site origin, for tests.
	Origin string

	// RequestURL and IsMusic feed the music-frontend selection rule.
	RequestURL string
	IsMusic    bool

	// Overrides replaces the tier-default client lists.
	Overrides []innertube.ClientID

	APIKey string
}

// ClientResponse is one accepted player response, labeled with the
// profile that produced it.
type ClientResponse struct {
	Client string
	Player *innertube.PlayerResponse
	Raw    map[string]any
}

// Result is the extraction manifest: every accepted response plus the
// resolved player script URL.
type Result struct {
	VideoID       types.VideoID
	PlayerURL     string
	Responses     []ClientResponse
	Authenticated bool
	Premium       bool
}

type session struct {
	visitor     string
	delegated   string
	user        string
	playerURL   string
	iframeTried bool
}

// absorb fills the sticky identifiers from a response context; whatever
// was resolved first wins.
func (st *session) absorb(rc innertube.ResponseContext) {
	if st.visitor == "" {
		st.visitor = rc.VisitorData
	}
	if st.delegated == "" && st.user == "" {
		if dsid := rc.MainAppWebResponseContext.DatasyncID; dsid != "" {
			st.delegated, st.user = innertube.ParseDataSyncID(dsid)
		}
	}
}

func (e *Engine) registry() innertube.Registry {
	if e.Registry != nil {
		return e.Registry
	}
	return innertube.DefaultRegistry()
}

func (e *Engine) logger() policy.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...any) {}

func (e *Engine) origin() string {
	if e.Origin != "" {
		return e.Origin
	}
	return webpage.DefaultOrigin
}

func (e *Engine) host() string {
	if u, err := url.Parse(e.origin()); err == nil && u.Host != "" {
		return u.Host
	}
	return "www.youtube.com"
}

func (e *Engine) authenticated() bool {
	if e.Client == nil || e.Client.Jar == nil {
		return false
	}
	return innertube.IsAuthenticated(e.Client.Jar.ForHost(e.host()))
}

// Extract walks the client working list for videoID and collects every
// accepted player response. It fails only when the list drains with an
// empty accumulator.
func (e *Engine) Extract(ctx context.Context, videoID types.VideoID) (*Result, error) {
	registry := e.registry()
	webpageID := innertube.ClientWeb
	webProfile, _ := registry.Get(webpageID)

	e.emit(StageSelecting, webpageID.String(), "")
	e.emit(StageFetchingPage, webpageID.String(), "")
	html, err := e.Pages.WatchPage(ctx, videoID, webProfile.UserAgent)
	if err != nil {
		e.emit(StageFailed, webpageID.String(), err.Error())
		return nil, err
	}

	e.emit(StageMiningConfig, "", "")
	webYtcfg := webpage.ExtractYtcfg(html)
	if len(webYtcfg) == 0 {
		webYtcfg = defaultYtcfg(webProfile)
	}

	e.emit(StageInitialData, "", "")
	initialData, err := webpage.ExtractYtInitialData(html)
	if err != nil {
		// Only premium detection reads it; a page without it still extracts.
		e.logger().Warnf("watch page carries no initial data: %v", err)
		initialData = map[string]any{}
	}

	authed := e.authenticated()
	premium := policy.IsPremiumSubscriber(authed, initialData)

	apiKey := e.APIKey
	if apiKey == "" {
		apiKey, _ = jsontree.String(webYtcfg, "INNERTUBE_API_KEY")
	}

	ids := policy.Clients(policy.Input{
		URL:               e.RequestURL,
		IsMusic:           e.IsMusic,
		Authenticated:     authed,
		PremiumSubscriber: premium,
		Overrides:         e.Overrides,
	}, e.logger())

	responses := e.initialResponses(html, videoID, webpageID)

	st := &session{}
	// The webpage's own response may carry the only visitor data or
	// datasyncId; pick them up before the first API call so every
	// attempt goes out with the delegation headers.
	for _, r := range responses {
		st.absorb(r.Player.ResponseContext)
	}
	attempts := make([]*types.AttemptError, 0, len(ids))

	// The working list is the selection reversed; popping from the end
	// keeps the original order, and fallback clients appended by
	// post-checks are tried next.
	working := make([]innertube.ClientID, len(ids))
	for i, id := range ids {
		working[len(ids)-1-i] = id
	}
	queued := make(map[innertube.ClientID]struct{}, len(ids))
	for _, id := range ids {
		queued[id] = struct{}{}
	}
	extend := func(id innertube.ClientID) {
		if _, ok := queued[id]; ok {
			return
		}
		queued[id] = struct{}{}
		working = append(working, id)
	}

	for len(working) > 0 {
		id := working[len(working)-1]
		working = working[:len(working)-1]

		profile, ok := registry.Get(id)
		if !ok {
			continue
		}
		e.emit(StageClientLoop, id.String(), "attempt")

		playerYtcfg := map[string]any{}
		if id == webpageID {
			playerYtcfg = webYtcfg
		}

		if st.playerURL == "" {
			st.playerURL = e.resolvePlayerURL(ctx, st, profile, playerYtcfg, webYtcfg)
		}
		if st.visitor == "" {
			st.visitor = innertube.SearchVisitorData(playerYtcfg, webYtcfg)
		}
		if st.delegated == "" && st.user == "" {
			st.delegated, st.user = innertube.SearchSessionIDs(playerYtcfg, webYtcfg)
		}

		sts := 0
		if st.playerURL != "" && e.Timestamps != nil {
			v, err := e.Timestamps.SignatureTimestamp(ctx, st.playerURL, playerYtcfg)
			if err != nil {
				e.logger().Warnf("client %s: signature timestamp unavailable: %v", id, err)
			} else {
				sts = v
			}
		}

		token := ""
		if e.PoTokens != nil {
			if t, err := e.PoTokens.GetToken(ctx, id.String()); err == nil {
				token = t
			} else {
				e.logger().Warnf("client %s: po token provider: %v", id, err)
			}
		}
		pol := profile.PlayerPoTokenPolicy
		if pol.Required && token == "" && !(premium && pol.NotRequiredForPremium) {
			attempts = append(attempts, &types.AttemptError{Client: id.String(), Err: &PoTokenRequiredError{Client: id.String()}})
			e.emit(StageClientLoop, id.String(), "skip: po token required")
			continue
		}

		pr, raw, err := e.fetchPlayerResponse(ctx, profile, videoID, playerYtcfg, webYtcfg, st, sts, token, apiKey, authed)
		if err != nil {
			attempts = append(attempts, &types.AttemptError{Client: id.String(), Err: err})
			e.emit(StageClientLoop, id.String(), "skip: "+err.Error())
			continue
		}

		if pr.VideoDetails.VideoID != "" && pr.VideoDetails.VideoID != videoID.String() {
			e.logger().Warnf("client %s answered for video %s, wanted %s", id, pr.VideoDetails.VideoID, videoID)
			attempts = append(attempts, &types.AttemptError{
				Client: id.String(),
				Err:    fmt.Errorf("%w: player response names a different video", types.ErrDataMissing),
			})
			continue
		}

		ageGated := pr.PlayabilityStatus.IsAgeGated()
		embeddingDisabled := profile.ID.IsEmbedded() && pr.PlayabilityStatus.IsUnplayable()

		if ageGated && !profile.ID.IsEmbedded() {
			extend(innertube.ClientWebEmbedded)
		}
		if authed && (ageGated || embeddingDisabled) {
			extend(innertube.ClientTVEmbedded)
			extend(innertube.ClientWebCreator)
		}
		if ageGated && !authed {
			attempts = append(attempts, &types.AttemptError{
				Client: id.String(),
				Err: &types.PlayabilityError{
					Client: id.String(),
					Status: pr.PlayabilityStatus.Status,
					Reason: pr.PlayabilityStatus.Reason,
				},
			})
			e.emit(StageClientLoop, id.String(), "skip: age gated")
			continue
		}

		responses = append(responses, ClientResponse{Client: id.String(), Player: pr, Raw: raw})
		st.absorb(pr.ResponseContext)
		e.emit(StageClientLoop, id.String(), "accept")
	}

	if len(responses) == 0 {
		e.emit(StageFailed, "", "")
		return nil, &AllClientsFailedError{Attempts: attempts}
	}
	e.emit(StageDone, "", "")
	return &Result{
		VideoID:       videoID,
		PlayerURL:     st.playerURL,
		Responses:     responses,
		Authenticated: authed,
		Premium:       premium,
	}, nil
}

func (e *Engine) fetchPlayerResponse(
	ctx context.Context,
	profile innertube.ClientProfile,
	videoID types.VideoID,
	playerYtcfg, webYtcfg map[string]any,
	st *session,
	sts int,
	poToken, apiKey string,
	authed bool,
) (*innertube.PlayerResponse, map[string]any, error) {
	query := innertube.NewPlayerQuery(videoID, innertube.PlayerRequestOptions{
		SignatureTimestamp: sts,
		PoToken:            poToken,
	})

	var contextClient map[string]any
	if m, ok := jsontree.Map(playerYtcfg, "INNERTUBE_CONTEXT", "client"); ok {
		contextClient = m
	}

	req := &innertube.Request{
		Profile:       profile,
		Endpoint:      innertube.EndpointPlayer,
		Query:         query,
		ContextClient: contextClient,
		VisitorData:   st.visitor,
		ConfigBlobs:   []map[string]any{playerYtcfg, webYtcfg},
		APIKey:        apiKey,
		Session: innertube.AuthSession{
			DelegatedSessionID: st.delegated,
			UserSessionID:      st.user,
			SessionIndex:       innertube.SessionIndexFrom(playerYtcfg, webYtcfg),
			LoggedIn:           authed || innertube.LoggedInFrom(playerYtcfg, webYtcfg),
		},
		Authenticated: authed,
	}

	resp, err := e.Client.Do(types.WithClientName(ctx, profile.ID.String()), req)
	if err != nil {
		return nil, nil, err
	}
	var pr innertube.PlayerResponse
	if err := resp.Decode(&pr); err != nil {
		return nil, nil, err
	}
	return &pr, resp.Object, nil
}

// initialResponses prepends the watch page's own player response when it
// names the requested video, with its streaming data nulled so formats
// only come from API responses.
func (e *Engine) initialResponses(html string, videoID types.VideoID, webpageID innertube.ClientID) []ClientResponse {
	raw, ok := webpage.ExtractYtInitialPlayerResponse(html)
	if !ok {
		return nil
	}
	if id, _ := jsontree.String(raw, "videoDetails", "videoId"); id != videoID.String() {
		return nil
	}
	delete(raw, "streamingData")

	payload, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	var pr innertube.PlayerResponse
	if err := json.Unmarshal(payload, &pr); err != nil {
		return nil
	}
	return []ClientResponse{{Client: webpageID.String(), Player: &pr, Raw: raw}}
}

func (e *Engine) resolvePlayerURL(ctx context.Context, st *session, profile innertube.ClientProfile, cfgs ...map[string]any) string {
	for _, cfg := range cfgs {
		if u, ok := jsontree.String(cfg, "PLAYER_JS_URL"); ok && u != "" {
			return e.absolutize(u)
		}
		if contexts, ok := jsontree.Map(cfg, "WEB_PLAYER_CONTEXT_CONFIGS"); ok {
			for _, v := range contexts {
				if m, ok := v.(map[string]any); ok {
					if u, ok := jsontree.String(m, "jsUrl"); ok && u != "" {
						return e.absolutize(u)
					}
				}
			}
		}
	}
	if profile.RequireJSPlayer && !st.iframeTried {
		st.iframeTried = true
		id, err := e.Pages.IframePlayerID(ctx)
		if err != nil {
			e.logger().Warnf("iframe player probe failed: %v", err)
			return ""
		}
		return e.origin() + "/s/player/" + id + "/player_ias.vflset/en_US/base.js"
	}
	return ""
}

func (e *Engine) absolutize(u string) string {
	if len(u) > 0 && u[0] == '/' {
		return e.origin() + u
	}
	return u
}

func defaultYtcfg(profile innertube.ClientProfile) map[string]any {
	return map[string]any{
		"INNERTUBE_CONTEXT": map[string]any{
			"client": profile.ClientContext(),
		},
		"INNERTUBE_CONTEXT_CLIENT_NAME": profile.ContextNameID,
	}
}
