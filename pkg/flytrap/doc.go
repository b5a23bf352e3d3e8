// Package flytrap reports crashes and errors from a running Go process to a
// remote collection endpoint.
//
// flytrap intercepts panics and failed background tasks, enriches them with
// stack frames, surrounding source lines, runtime/OS details and request
// metadata, and posts one report per event to {apiEndpoint}/api/errors.
//
// # Core Components
//
//   - Report: the wire payload for one captured event
//   - Assembler: builds a Report from a CapturedEvent (frames, code context, environment)
//   - Sink: destination for reports; HTTPSink is the default
//   - Client: manual capture API (LogError, LogRejection) and hook dispatcher
//   - Guard: the default FatalEventSource; turns panics and failed tasks into fatal events
//
// # Quick Start
//
//	client, err := flytrap.New(flytrap.Config{
//	    ProjectID:      "proj1",
//	    APIEndpoint:    "https://api.example.com",
//	    APIKey:         "key1",
//	    IncludeContext: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client.Install(flytrap.DefaultGuard)
//
//	flytrap.Go(func() {
//	    // a panic here is reported instead of crashing the process
//	})
//
// Inside a caught block, report explicitly:
//
//	if err := doWork(); err != nil {
//	    if logErr := client.LogError(ctx, err, true, nil); logErr != nil {
//	        // delivery failed; logErr wraps the cause
//	    }
//	}
//
// # Delivery Semantics
//
//   - One POST per event, no retries, no buffering
//   - Automatic (hook) deliveries run detached and never surface errors
//   - Manual deliveries return an *Error wrapping the failure
//   - Errors produced by flytrap itself are never reported again
//
// A process exit triggered elsewhere may race ahead of an in-flight
// automatic delivery. Call Client.Flush before exiting to wait for them.
package flytrap
