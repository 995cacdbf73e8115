package orchestrator

// Stage names one phase of the extraction state machine.
type Stage string

const (
	StageSelecting      Stage = "selecting"
	StageFetchingPage   Stage = "fetching_webpage"
	StageMiningConfig   Stage = "mining_config"
	StageInitialData    Stage = "fetching_initial_data"
	StageClientLoop     Stage = "client_loop"
	StageDone           Stage = "done"
	StageFailed         Stage = "failed"
)

// ExtractionEvent is emitted at every state-machine transition.
type ExtractionEvent struct {
	Stage  Stage
	Client string
	Detail string
}

// EventSink receives extraction events. A nil sink drops them.
type EventSink func(ExtractionEvent)

func (e *Engine) emit(stage Stage, client, detail string) {
	if e.Events == nil {
		return
	}
	e.Events(ExtractionEvent{Stage: stage, Client: client, Detail: detail})
}
