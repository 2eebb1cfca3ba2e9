package async

import "context"

// Worker is a long-running background loop (queue polling, andon
// publishing, cache re-warming). Run blocks until the context is
// cancelled and calls done on exit.
type Worker interface {
	Run(context.Context, func())
	Shutdown()
}
