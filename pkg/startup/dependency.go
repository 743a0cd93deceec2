package startup

import "context"

// Func adapts plain start/stop functions into a StartupDependency so callers
// don't need a named type per dependency.
type Func struct {
	Name    string
	Needs   []string
	OnStart func(ctx context.Context) error
	OnStop  func(ctx context.Context) error
}

func (f *Func) GetName() string     { return f.Name }
func (f *Func) DependsOn() []string { return f.Needs }

func (f *Func) Start(ctx context.Context) error {
	if f.OnStart == nil {
		return nil
	}
	return f.OnStart(ctx)
}

func (f *Func) Stop(ctx context.Context) error {
	if f.OnStop == nil {
		return nil
	}
	return f.OnStop(ctx)
}
