// assemble.go builds reports from captured events.

package flytrap

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Assembler composes a Report from a captured event, its stack frames with
// source context, environment details and optional request metadata.
// Beyond the source reads it triggers, it has no side effects.
type Assembler struct {
	cfg       Config
	reader    SourceReader
	scrubber  *Scrubber
	startTime time.Time
	now       func() time.Time
}

// NewAssembler creates an Assembler. A nil reader disables code context.
func NewAssembler(cfg Config, reader SourceReader, scrubber *Scrubber) *Assembler {
	return &Assembler{
		cfg:       cfg,
		reader:    reader,
		scrubber:  scrubber,
		startTime: time.Now(),
		now:       time.Now,
	}
}

// Assemble builds the report for event. req may be nil.
func (a *Assembler) Assemble(ctx context.Context, event CapturedEvent, handled bool, req Request) Report {
	env := Environment(req)

	report := Report{
		EventID:      uuid.NewString(),
		Kind:         event.Kind,
		CodeContexts: []CodeContext{},
		Handled:      handled,
		Timestamp:    a.now(),
		ProjectID:    a.cfg.ProjectID,
		IP:           env.IP,
		OS:           env.OS,
		Runtime:      env.Runtime,
		System:       CaptureSystemState(a.startTime),
	}
	if req != nil {
		report.Method = req.Method()
		report.Path = req.Path()
	}

	var frames []StackFrame
	switch event.Kind {
	case EventKindRejection:
		report.Value = event.Value
	default:
		report.Kind = EventKindError
		errData := event.Error
		report.Error = &errData
		frames = ParseStackTrace(errData.Stack)
	}

	if a.cfg.IncludeContext && len(frames) > 0 && a.reader != nil {
		report.CodeContexts = a.resolveContexts(ctx, frames)
	}
	report.Fingerprint = Fingerprint(event, frames)

	if a.scrubber != nil {
		a.scrubber.ScrubReport(&report)
	}

	return report
}

// resolveContexts reads every frame's file concurrently. Results land in a
// slice indexed by frame position, so output order follows the trace
// regardless of completion order. Unreadable frames are dropped.
func (a *Assembler) resolveContexts(ctx context.Context, frames []StackFrame) []CodeContext {
	resolved := make([]*CodeContext, len(frames))
	window := a.cfg.contextLines()

	var g errgroup.Group
	for i, frame := range frames {
		g.Go(func() error {
			source, ok := a.reader.Read(ctx, frame.File)
			if !ok {
				return nil
			}
			resolved[i] = &CodeContext{
				File:     frame.File,
				Line:     frame.Line,
				Column:   frame.Column,
				Function: frame.Function,
				Context:  ExtractContext(source, frame.Line, window),
			}
			return nil
		})
	}
	_ = g.Wait() // readers never fail, they report ok=false

	contexts := make([]CodeContext, 0, len(frames))
	for _, c := range resolved {
		if c != nil {
			contexts = append(contexts, *c)
		}
	}
	return contexts
}
