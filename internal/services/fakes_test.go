package services

import (
	"context"
	"sync"
	"sync/atomic"

	"finova/internal/advisor"
	"finova/internal/events"
	"finova/internal/models"
)

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// fakeAdvisor returns canned output and counts generator calls.
type fakeAdvisor struct {
	content    string
	err        error
	suggestion advisor.ProductSuggestion
	calls      atomic.Int32
	lastPrompt atomic.Value
	categories []string
}

func (f *fakeAdvisor) Generate(_ context.Context, prompt string) (string, error) {
	f.calls.Add(1)
	f.lastPrompt.Store(prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.content, nil
}

func (f *fakeAdvisor) Model() string { return "fake-model" }

func (f *fakeAdvisor) ExtractProduct(_ context.Context, _ string, categories []string) (advisor.ProductSuggestion, error) {
	f.categories = categories
	if f.err != nil {
		return advisor.ProductSuggestion{}, f.err
	}
	return f.suggestion, nil
}

// gatedAdvisor blocks Generate until release is closed and then fails with
// the context error, if any.
type gatedAdvisor struct {
	fakeAdvisor
	started chan struct{}
	release chan struct{}
}

func (g *gatedAdvisor) Generate(ctx context.Context, prompt string) (string, error) {
	close(g.started)
	<-g.release
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return g.fakeAdvisor.Generate(ctx, prompt)
}

// recordingNotifier keeps every notified report.
type recordingNotifier struct {
	mu      sync.Mutex
	reports []models.AdviceReport
}

func (n *recordingNotifier) NotifyAdvice(_ context.Context, r models.AdviceReport) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reports = append(n.reports, r)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.reports)
}
