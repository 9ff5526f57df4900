package state

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"
)

type LoadFunc func(ctx context.Context) (*Collection, error)

// Loader runs loads against a Store. Concurrent loads of the same source and
// URL share a single execution and its result.
type Loader struct {
	store *Store
	group singleflight.Group
}

func NewLoader(store *Store) *Loader {
	return &Loader{store: store}
}

type outcome struct {
	collection *Collection
	applied    bool
}

// Load runs load for name and publishes its result. applied reports whether
// the result reached the store; it is false when a newer load started while
// this one ran and the result was discarded.
func (l *Loader) Load(ctx context.Context, name, url string, load LoadFunc) (*Collection, bool, error) {
	result, err, shared := l.group.Do(name+"|"+url, func() (any, error) {
		seq := l.store.Begin(name)

		collection, err := load(ctx)
		if err != nil {
			return outcome{applied: l.store.Fail(name, seq, err)}, err
		}

		return outcome{collection: collection, applied: l.store.Publish(name, seq, collection)}, nil
	})
	if shared {
		slog.Debug("Joined in-flight load", "source", name)
	}

	out, _ := result.(outcome)
	return out.collection, out.applied, err
}

func (l *Loader) Store() *Store {
	return l.store
}
