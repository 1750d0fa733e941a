// Package devtools provides a read-only HTTP inspection surface for
// state stores during development.
//
// A Server exposes every attached store over three routes:
//
//	GET /stores              JSON list of attached store names
//	GET /stores/{name}       JSON snapshot of the current state
//	GET /stores/{name}/live  WebSocket stream of state changes
//
// The live stream sends one JSON frame per committed transition, plus an
// initial frame carrying the current state on connect. Frames are
// relayed off the store's lossy Watch channel, so a slow or stalled
// client may miss intermediate states but can never hold up the store's
// updates. Streams are strictly read-only: devtools never mutates a
// store.
//
//	srv := devtools.NewServer()
//	devtools.Attach(srv, "app", appStore)
//	go srv.ListenAndServe(":6060")
//	defer srv.Shutdown(context.Background())
package devtools
