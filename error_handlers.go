package dynpool

import (
	lg "github.com/Andrej220/go-utils/zlog"
)

// reportTaskError forwards a task failure to the configured handler.
//
// Delivery is best effort: with no handler registered the error is
// silently discarded, and a panic inside the handler is recovered so
// a misbehaving handler can never take down a worker.
func (p *Pool[P]) reportTaskError(err error) {
	h := p.opts.OnTaskError
	if h == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			lg.FromContext(p.opts.Ctx).Error("task error handler panicked", lg.Any("panic", r))
		}
	}()
	h(err)
}
