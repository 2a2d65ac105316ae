package worker

import "context"

// Worker is a background process owned by the server. Start blocks until ctx is done.
type Worker interface {
	Name() string
	Start(ctx context.Context)
}

// Names lists the workers by name, in order.
func Names(workers []Worker) []string {
	names := make([]string, 0, len(workers))
	for _, w := range workers {
		names = append(names, w.Name())
	}
	return names
}
