package protocol

// Lifecycle hook events a host dispatches to the plugin.
const (
	// HookBeforeAgentStart fires before an agent run. Payload: BeforeAgentStartEvent.
	HookBeforeAgentStart = "before_agent_start"
	// HookAgentEnd fires after an agent run. Payload: AgentEndEvent.
	HookAgentEnd = "agent_end"
)

// KnownHook reports whether name is a hook event the plugin understands.
func KnownHook(name string) bool {
	switch name {
	case HookBeforeAgentStart, HookAgentEnd:
		return true
	}
	return false
}
