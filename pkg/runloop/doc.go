// Package runloop provides the designated single-threaded context that
// view-state reads, writes, and lifecycle hooks run on.
//
// A Loop owns one goroutine draining a queue of functions. Store
// subscription callbacks hand their work to the loop via Dispatch, which
// is the correct way to marshal asynchronous deliveries onto the context
// that owns a view model's state:
//
//	loop := runloop.New()
//	defer loop.Close()
//
//	go func() {
//	    result := slowQuery()
//	    loop.Dispatch(func() {
//	        vm.UpdateStore(func(s *AppState) { s.Result = result })
//	    })
//	}()
//
// Inline is a Dispatcher that runs functions immediately on the calling
// goroutine, for single-goroutine embedders and tests.
package runloop
