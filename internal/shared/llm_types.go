package shared

import (
	"time"
)

// TokenUsage tracks the tokens consumed by a request.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// AgentMeta holds operational metadata for an agent execution.
type AgentMeta struct {
	AgentName string
	Usage     TokenUsage
	Latency   time.Duration
}

// NewAgentMeta builds an AgentMeta for a call started at the given time.
func NewAgentMeta(agentName string, usage TokenUsage, started time.Time) AgentMeta {
	return AgentMeta{
		AgentName: agentName,
		Usage:     usage,
		Latency:   time.Since(started),
	}
}
