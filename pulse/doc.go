// Package pulse is tip's event loop.
//
// Every tooltip callback (event listeners, delay timers, animation frames and
// asynchronous mutation notifications) runs on a single Loop, one at a time.
// Nothing in the engine locks; other goroutines hand work over with Post.
//
// Two modes:
//
//	loop := pulse.NewManualLoop(pulse.DefaultLoopConfig()) // virtual time
//	loop.Advance(100 * time.Millisecond)                    // fire due timers
//
//	loop := pulse.NewLoop(pulse.DefaultLoopConfig()) // wall clock
//	go loop.Run(ctx)
//
// Manual mode is deterministic: timers fire in deadline order (ties in arming
// order) and the clock only moves inside Advance.
package pulse
