// Package events provides a small event registry with replay.
//
// Firings are remembered per event kind, so a handler registered after an
// event already fired still sees it: On replays the past firings in order
// before returning. The log is bounded (DefaultLogLimit entries per kind,
// oldest dropped first) to keep long-lived processes from accumulating
// history.
//
// Kinds are case-insensitive. A handler can return Preempt during live
// dispatch to tell the firing code to skip its default behavior, or Stop
// during replay to skip the remaining past firings.
//
// # Usage
//
//	reg := events.NewRegistry(0)
//	reg.On("configs_loaded", func(args ...any) events.Result {
//	    return events.Continue
//	})
//	preempted := reg.Fire("configs_loaded", cfg)
package events
