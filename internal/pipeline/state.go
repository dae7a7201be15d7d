package pipeline

// State is a step of a pipeline run.
type State string

const (
	StateFetching   State = "fetching"
	StateSelecting  State = "selecting"
	StateRetrieving State = "retrieving"
	StateComposing  State = "composing"
	StateGenerating State = "generating"
	StateRendering  State = "rendering"
	StatePersisting State = "persisting"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// States lists the successful path of a run in order.
func States() []State {
	return []State{
		StateFetching,
		StateSelecting,
		StateRetrieving,
		StateComposing,
		StateGenerating,
		StateRendering,
		StatePersisting,
		StateDone,
	}
}

// Terminal reports whether no further transition can follow s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
