// Package progress defines the event vocabulary surfaced during a streaming
// analysis and the observer interface that receives it. Events are delivered
// synchronously, in step order, to exactly one observer per analysis call.
package progress

// Kind identifies a progress event.
type Kind string

const (
	// TokenDelta carries a new fragment of model output text.
	TokenDelta Kind = "token_delta"
	// ToolStart and ToolEnd bracket a tool invocation by the agent.
	ToolStart Kind = "tool_start"
	ToolEnd   Kind = "tool_end"
	// AgentAction marks a discrete agent step.
	AgentAction Kind = "agent_action"
	// Completed finalizes the analysis output.
	Completed Kind = "completed"
	// Error reports a failed analysis.
	Error Kind = "error"
)

// Event is one transient progress notification. Only the fields relevant to
// its Kind are set.
type Event struct {
	Kind    Kind   `json:"kind"`
	Token   string `json:"token,omitempty"`
	Tool    string `json:"tool,omitempty"`
	Step    int    `json:"step,omitempty"`
	Message string `json:"message,omitempty"`
}

// Observer receives progress events during one analysis invocation.
type Observer interface {
	Handle(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

func (f ObserverFunc) Handle(e Event) { f(e) }

// Nop discards all events. Used when the caller did not request streaming.
var Nop Observer = ObserverFunc(func(Event) {})
