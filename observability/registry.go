package observability

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

var (
	observers = map[string]Observer{
		"noop": NoOpObserver{},
		"slog": NewSlogObserver(nil),
	}
	mutex sync.RWMutex
)

// GetObserver resolves a comma-separated list of registered names, such as
// "slog" or "slog,audit", into one observer. Built in are "noop" and "slog",
// which follows slog.Default.
func GetObserver(spec string) (Observer, error) {
	mutex.RLock()
	defer mutex.RUnlock()

	var found []Observer
	for name := range strings.SplitSeq(spec, ",") {
		name = strings.TrimSpace(name)
		obs, ok := observers[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownObserver, name, strings.Join(names(), ", "))
		}
		found = append(found, obs)
	}
	return Fanout(found...), nil
}

// RegisterObserver adds or replaces a named observer.
func RegisterObserver(name string, observer Observer) {
	mutex.Lock()
	defer mutex.Unlock()

	observers[name] = observer
}

func names() []string {
	list := make([]string, 0, len(observers))
	for name := range observers {
		list = append(list, name)
	}
	slices.Sort(list)
	return list
}
