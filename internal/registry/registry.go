// Package registry keeps the last good snapshot of blocks and today's weather.
package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/LeonardoBeccarini/irrixa/internal/apperrors"
	"github.com/LeonardoBeccarini/irrixa/internal/model/entities"
)

type State int

const (
	Stale State = iota
	Loaded
)

func (s State) String() string {
	if s == Loaded {
		return "loaded"
	}
	return "stale"
}

// Loader is the read side of the persistence gateway.
type Loader interface {
	LoadBlocks(ctx context.Context) ([]entities.Block, error)
	LoadWeather(ctx context.Context, date string) (*entities.DailyWeatherSnapshot, error)
}

// Observer is told about every refresh outcome.
type Observer interface {
	RefreshDone(err error, blocks int)
}

type snapshot struct {
	blocks   []entities.Block
	index    map[string]int
	weather  *entities.DailyWeatherSnapshot
	date     string
	loadedAt time.Time
}

// Registry is safe for concurrent use. Readers never block; refreshes are serialized.
type Registry struct {
	loader Loader
	loc    *time.Location
	now    func() time.Time
	obs    Observer

	mu   sync.Mutex // serializza i refresh
	snap atomic.Pointer[snapshot]
}

func New(loader Loader, loc *time.Location, obs Observer) *Registry {
	if loc == nil {
		loc = time.UTC
	}
	return &Registry{loader: loader, loc: loc, now: time.Now, obs: obs}
}

// Today is the registry's notion of the current date, YYYY-MM-DD.
func (r *Registry) Today() string {
	return r.now().In(r.loc).Format("2006-01-02")
}

// Refresh loads blocks and today's weather and swaps them in together.
// On failure the previous snapshot stays in place and a LoadError is returned.
func (r *Registry) Refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	date := r.Today()
	var (
		blocks  []entities.Block
		weather *entities.DailyWeatherSnapshot
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		blocks, err = r.loader.LoadBlocks(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		weather, err = r.loader.LoadWeather(gctx, date)
		return err
	})
	err := g.Wait()
	var index map[string]int
	if err == nil {
		index, err = indexBlocks(blocks)
	}
	if err != nil {
		var le *apperrors.LoadError
		if !errors.As(err, &le) {
			err = &apperrors.LoadError{Op: "refresh", Err: err}
		}
		r.notify(err, 0)
		return err
	}

	r.snap.Store(&snapshot{
		blocks:   blocks,
		index:    index,
		weather:  weather,
		date:     date,
		loadedAt: r.now(),
	})
	r.notify(nil, len(blocks))
	return nil
}

func (r *Registry) notify(err error, n int) {
	if r.obs != nil {
		r.obs.RefreshDone(err, n)
	}
}

func indexBlocks(blocks []entities.Block) (map[string]int, error) {
	idx := make(map[string]int, len(blocks))
	for i, b := range blocks {
		if strings.TrimSpace(b.Name) == "" {
			return nil, &apperrors.LoadError{Op: "refresh", Err: fmt.Errorf("block %d has no name", i)}
		}
		if _, dup := idx[b.Name]; dup {
			return nil, &apperrors.LoadError{Op: "refresh", Err: fmt.Errorf("duplicate block %q", b.Name)}
		}
		idx[b.Name] = i
	}
	return idx, nil
}

func (r *Registry) State() State {
	if r.snap.Load() == nil {
		return Stale
	}
	return Loaded
}

// CurrentBlocks returns a copy of the blocks of the last good snapshot.
func (r *Registry) CurrentBlocks() []entities.Block {
	s := r.snap.Load()
	if s == nil {
		return []entities.Block{}
	}
	out := make([]entities.Block, len(s.blocks))
	for i, b := range s.blocks {
		out[i] = b.Clone()
	}
	return out
}

func (r *Registry) Block(name string) (entities.Block, bool) {
	s := r.snap.Load()
	if s == nil {
		return entities.Block{}, false
	}
	i, ok := s.index[name]
	if !ok {
		return entities.Block{}, false
	}
	return s.blocks[i].Clone(), true
}

// TodaysWeather returns a copy of today's weather, or nil when absent.
// A snapshot loaded on an earlier day has no weather for today.
func (r *Registry) TodaysWeather() *entities.DailyWeatherSnapshot {
	s := r.snap.Load()
	if s == nil || s.date != r.Today() {
		return nil
	}
	return s.weather.Clone()
}

// SnapshotDate is the date the last good snapshot was loaded for.
func (r *Registry) SnapshotDate() string {
	if s := r.snap.Load(); s != nil {
		return s.date
	}
	return ""
}

func (r *Registry) LoadedAt() time.Time {
	if s := r.snap.Load(); s != nil {
		return s.loadedAt
	}
	return time.Time{}
}
