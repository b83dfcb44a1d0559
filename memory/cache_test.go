package memory_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/tailored-agentic-units/deskagent/memory"
)

// countingStore is an in-memory Store that records every Load and Save.
type countingStore struct {
	mu      sync.Mutex
	docs    map[string]string
	loads   [][]string
	saves   [][]string
	saveErr error
}

func newCountingStore(docs map[string]string) *countingStore {
	if docs == nil {
		docs = map[string]string{}
	}
	return &countingStore{docs: docs}
}

func (s *countingStore) List(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for k := range s.docs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

func (s *countingStore) Load(_ context.Context, keys ...string) ([]memory.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads = append(s.loads, keys)
	var entries []memory.Entry
	for _, k := range keys {
		v, ok := s.docs[k]
		if !ok {
			return nil, fmt.Errorf("%w: %s", memory.ErrKeyNotFound, k)
		}
		entries = append(entries, memory.Entry{Key: k, Value: []byte(v)})
	}
	return entries, nil
}

func (s *countingStore) Save(_ context.Context, entries ...memory.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	var keys []string
	for _, e := range entries {
		s.docs[e.Key] = string(e.Value)
		keys = append(keys, e.Key)
	}
	s.saves = append(s.saves, keys)
	return nil
}

func knowledge() *countingStore {
	return newCountingStore(map[string]string{
		"memory/prefs.md":       "Save to drive D",
		"reference/tutorial.md": "Win+E opens File Explorer",
		"reference/disks.md":    "Use check_disk_space",
		"transcripts/old.md":    "# Session old",
	})
}

func TestCache_Bootstrap_IndexesWithoutLoading(t *testing.T) {
	store := knowledge()
	c := memory.NewCache(store)

	if err := c.Bootstrap(context.Background()); err != nil {
		t.Fatal(err)
	}

	if !c.Has("reference/tutorial.md") || !c.Has("transcripts/old.md") {
		t.Error("bootstrap did not index every key")
	}
	if len(store.loads) != 0 {
		t.Errorf("bootstrap loaded %v", store.loads)
	}
	if _, ok := c.Get("reference/tutorial.md"); ok {
		t.Error("Get returned content that was never loaded")
	}
}

func TestCache_Bootstrap_EagerNamespace(t *testing.T) {
	store := knowledge()
	c := memory.NewCache(store)

	if err := c.Bootstrap(context.Background(), memory.NamespaceMemory); err != nil {
		t.Fatal(err)
	}

	if got, ok := c.Get("memory/prefs.md"); !ok || string(got) != "Save to drive D" {
		t.Errorf("memory/prefs.md = %q, %v", got, ok)
	}
	if len(store.loads) != 1 || !slices.Equal(store.loads[0], []string{"memory/prefs.md"}) {
		t.Errorf("loads = %v", store.loads)
	}
}

func TestCache_Read(t *testing.T) {
	store := knowledge()
	c := memory.NewCache(store)
	ctx := context.Background()
	if err := c.Bootstrap(ctx); err != nil {
		t.Fatal(err)
	}

	for range 3 {
		got, err := c.Read(ctx, "reference/tutorial.md")
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "Win+E opens File Explorer" {
			t.Errorf("got %q", got)
		}
	}
	if len(store.loads) != 1 {
		t.Errorf("document loaded %d times, want 1", len(store.loads))
	}

	if _, err := c.Read(ctx, "reference/printers.md"); !errors.Is(err, memory.ErrKeyNotFound) {
		t.Errorf("unknown key: got %v", err)
	}
	if len(store.loads) != 1 {
		t.Error("unknown key reached the store")
	}
}

func TestCache_Read_VanishedDocument(t *testing.T) {
	store := knowledge()
	c := memory.NewCache(store)
	ctx := context.Background()
	if err := c.Bootstrap(ctx); err != nil {
		t.Fatal(err)
	}

	store.mu.Lock()
	delete(store.docs, "reference/disks.md")
	store.mu.Unlock()

	if _, err := c.Read(ctx, "reference/disks.md"); !errors.Is(err, memory.ErrKeyNotFound) {
		t.Errorf("got %v, want ErrKeyNotFound", err)
	}
}

func TestCache_GetSetCopies(t *testing.T) {
	c := memory.NewCache(newCountingStore(nil))

	value := []byte("# Session a")
	c.Set("transcripts/a.md", value)
	value[0] = 'X'

	got, _ := c.Get("transcripts/a.md")
	if string(got) != "# Session a" {
		t.Errorf("Set kept the caller's slice: %q", got)
	}

	got[0] = 'Y'
	again, _ := c.Get("transcripts/a.md")
	if string(again) != "# Session a" {
		t.Errorf("Get exposed internal storage: %q", again)
	}
}

func TestCache_KeysWithPrefix(t *testing.T) {
	c := memory.NewCache(knowledge())
	if err := c.Bootstrap(context.Background()); err != nil {
		t.Fatal(err)
	}
	c.Set("reference/network.md", []byte("ipconfig"))

	got := c.KeysWithPrefix("reference/")
	want := []string{"reference/disks.md", "reference/network.md", "reference/tutorial.md"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCache_Flush(t *testing.T) {
	store := knowledge()
	c := memory.NewCache(store)
	ctx := context.Background()
	if err := c.Bootstrap(ctx, memory.NamespaceMemory); err != nil {
		t.Fatal(err)
	}

	c.Set("transcripts/b.md", []byte("# Session b"))
	c.Set("transcripts/a.md", []byte("# Session a"))

	if err := c.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	if len(store.saves) != 1 || !slices.Equal(store.saves[0], []string{"transcripts/a.md", "transcripts/b.md"}) {
		t.Fatalf("saves = %v", store.saves)
	}
	if store.docs["transcripts/a.md"] != "# Session a" {
		t.Errorf("store holds %q", store.docs["transcripts/a.md"])
	}

	if err := c.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	if len(store.saves) != 1 {
		t.Errorf("clean cache saved again: %v", store.saves)
	}
}

func TestCache_Flush_RetriesAfterFailure(t *testing.T) {
	store := newCountingStore(nil)
	store.saveErr = memory.ErrSaveFailed
	c := memory.NewCache(store)
	ctx := context.Background()

	c.Set("transcripts/a.md", []byte("# Session a"))
	if err := c.Flush(ctx); !errors.Is(err, memory.ErrSaveFailed) {
		t.Fatalf("got %v, want ErrSaveFailed", err)
	}

	store.saveErr = nil
	if err := c.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	if store.docs["transcripts/a.md"] != "# Session a" {
		t.Error("staged document lost after failed flush")
	}
}

func TestCache_Concurrent(t *testing.T) {
	store := knowledge()
	c := memory.NewCache(store)
	ctx := context.Background()
	if err := c.Bootstrap(ctx); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("transcripts/%02d.md", i)
			c.Set(key, []byte(key))
			if _, err := c.Read(ctx, "reference/tutorial.md"); err != nil {
				t.Error(err)
			}
			c.KeysWithPrefix("transcripts/")
			if err := c.Flush(ctx); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if got := len(c.KeysWithPrefix("transcripts/")); got != 21 {
		t.Errorf("got %d transcripts, want 21", got)
	}
	for i := range 20 {
		key := fmt.Sprintf("transcripts/%02d.md", i)
		if store.docs[key] != key {
			t.Errorf("%s not flushed", key)
		}
	}
}
