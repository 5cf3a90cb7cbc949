package run

// Observer receives per-file events so the driver itself never prints.
// Calls arrive from the driver's goroutine in document order.
type Observer interface {
	OnSkipped(fr FileResult)
	OnResolved(fr FileResult)
	OnFailed(fr FileResult)
	OnDone(r Report)
}

type nopObserver struct{}

func (nopObserver) OnSkipped(FileResult)  {}
func (nopObserver) OnResolved(FileResult) {}
func (nopObserver) OnFailed(FileResult)   {}
func (nopObserver) OnDone(Report)         {}
