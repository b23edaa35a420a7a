package engine

// Decorator wraps one iteration's execution, e.g. for setup and teardown.
// The function it receives runs the iteration body; the decorator must call
// it exactly once. Calling it zero times or more than once is a fatal usage
// fault.
//
// The iteration function never panics through the decorator: body failures
// are captured by the engine before control returns, so teardown code after
// the call runs whether the iteration failed or not.
type Decorator func(iteration func())

// Messages for decorator invocation-count faults.
const (
	decoratorNotInvokedMsg   = "Decorator must invoke the iteration function exactly once, but was not invoked"
	decoratorInvokedTwiceMsg = "Decorator must invoke the iteration function exactly once, but was invoked twice"
)

// decorate runs one iteration through the configured decorator, enforcing
// the single-invocation contract. With no decorator configured the iteration
// runs directly.
func decorate(d Decorator, iteration func()) {
	if d == nil {
		iteration()
		return
	}
	calls := 0
	d(func() {
		calls++
		if calls > 1 {
			fatal(ErrDecoratorCalls, decoratorInvokedTwiceMsg)
		}
		iteration()
	})
	if calls == 0 {
		fatal(ErrDecoratorCalls, decoratorNotInvokedMsg)
	}
}
