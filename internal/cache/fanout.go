package cache

import "context"

// FanoutInvalidator forwards each invalidation to every target in order.
type FanoutInvalidator struct {
	targets []Invalidator
}

func Fanout(targets ...Invalidator) *FanoutInvalidator {
	out := make([]Invalidator, 0, len(targets))
	for _, t := range targets {
		if t != nil {
			out = append(out, t)
		}
	}
	return &FanoutInvalidator{targets: out}
}

func (f *FanoutInvalidator) Invalidate(ctx context.Context, path string) {
	for _, t := range f.targets {
		t.Invalidate(ctx, path)
	}
}
