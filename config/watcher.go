package config

import (
	"context"

	"github.com/fsnotify/fsnotify"

	"tandem/internal/pubsub"
)

// Watcher publishes a fresh Config whenever the config file changes on
// disk.
type Watcher struct {
	broker  *pubsub.Broker[Config]
	watcher *fsnotify.Watcher
}

// Watch starts watching the config file. It runs until ctx is done.
func Watch(ctx context.Context) (*Watcher, error) {
	path, err := File()
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(path); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		broker:  pubsub.NewBroker[Config](),
		watcher: fsw,
	}

	go func() {
		defer fsw.Close()
		defer w.broker.Shutdown()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := Load()
				if err != nil {
					continue
				}
				w.broker.Publish(pubsub.UpdatedEvent, cfg)
			case _, ok := <-fsw.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return w, nil
}

// Subscribe delivers reloaded configs until ctx is done.
func (w *Watcher) Subscribe(ctx context.Context) <-chan pubsub.Event[Config] {
	return w.broker.Subscribe(ctx)
}
