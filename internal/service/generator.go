package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"ArtForge/config"
	"ArtForge/internal/catalog"
	"ArtForge/internal/model"
	"ArtForge/internal/sampler"
	"ArtForge/internal/shard"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Synthesizer writes the files for one job.
type Synthesizer interface {
	Synthesize(job model.Job) (model.ArtifactRecord, error)
}

// Recorder persists runs and artifacts. It may be nil when no registry is
// configured.
type Recorder interface {
	CreateRun(ctx context.Context, run model.Run) error
	SaveArtifact(ctx context.Context, rec model.ArtifactRecord) error
}

type GeneratorService interface {
	Generate(ctx context.Context, count int) (Summary, error)
}

type Options struct {
	Seed uint64
	// Workers above 1 synthesize artifacts in parallel. IDs and shards are
	// assigned before dispatch so they never depend on completion order.
	Workers int
	// ContinueOnError logs and skips artifacts that fail to synthesize
	// instead of aborting the run.
	ContinueOnError bool
}

type Failure struct {
	ArtifactID int
	Err        error
}

type Summary struct {
	RunID     string
	Seed      uint64
	Requested int
	Generated int
	Shards    int
	Failures  []Failure
}

type generatorServiceImpl struct {
	collection config.Collection
	layersDir  string
	synth      Synthesizer
	recorder   Recorder
	log        *slog.Logger
	opts       Options
}

func NewGeneratorService(c config.Collection, layersDir string, synth Synthesizer, recorder Recorder, log *slog.Logger, opts Options) GeneratorService {
	if log == nil {
		log = slog.Default()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &generatorServiceImpl{
		collection: c,
		layersDir:  layersDir,
		synth:      synth,
		recorder:   recorder,
		log:        log,
		opts:       opts,
	}
}

// Generate loads the catalog, draws count unique combinations and writes an
// artifact for each. Catalog and over-request errors are returned before any
// file is written. Without ContinueOnError the first artifact error stops the
// run and files already written stay on disk.
func (s *generatorServiceImpl) Generate(ctx context.Context, count int) (Summary, error) {
	categories, err := catalog.Load(s.collection.Sources(s.layersDir))
	if err != nil {
		return Summary{}, err
	}

	seed := s.opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	combos, err := sampler.New(seed).Sample(categories, count)
	if err != nil {
		return Summary{}, err
	}
	jobs := shard.Assign(combos)

	summary := Summary{
		RunID:     uuid.NewString(),
		Seed:      seed,
		Requested: count,
		Shards:    shard.Count(len(jobs)),
	}
	s.log.Info("starting generation",
		"run_id", summary.RunID,
		"collection", s.collection.Name,
		"requested", count,
		"seed", seed,
		"workers", s.opts.Workers)

	if s.recorder != nil {
		run := model.Run{
			ID:         summary.RunID,
			Collection: s.collection.Name,
			Seed:       seed,
			Requested:  count,
			CreatedAt:  time.Now().UTC(),
		}
		if err := s.recorder.CreateRun(ctx, run); err != nil {
			return summary, fmt.Errorf("recording run: %w", err)
		}
	}

	var mu sync.Mutex
	handle := func(ctx context.Context, job model.Job) error {
		err := s.generateOne(ctx, summary.RunID, job)
		mu.Lock()
		defer mu.Unlock()
		if err == nil {
			summary.Generated++
			return nil
		}
		if !s.opts.ContinueOnError {
			return err
		}
		s.log.Warn("skipping artifact", "id", job.ID, "shard", job.Shard, "error", err)
		summary.Failures = append(summary.Failures, Failure{ArtifactID: job.ID, Err: err})
		return nil
	}

	if s.opts.Workers == 1 {
		err = runSequential(ctx, jobs, handle)
	} else {
		err = runParallel(ctx, jobs, s.opts.Workers, handle)
	}
	sort.Slice(summary.Failures, func(i, j int) bool {
		return summary.Failures[i].ArtifactID < summary.Failures[j].ArtifactID
	})
	if err != nil {
		return summary, err
	}

	s.log.Info("generation finished",
		"run_id", summary.RunID,
		"generated", summary.Generated,
		"failed", len(summary.Failures),
		"shards", summary.Shards)
	return summary, nil
}

func (s *generatorServiceImpl) generateOne(ctx context.Context, runID string, job model.Job) error {
	rec, err := s.synth.Synthesize(job)
	if err != nil {
		return err
	}
	if s.recorder != nil {
		rec.RunID = runID
		if err := s.recorder.SaveArtifact(ctx, rec); err != nil {
			return fmt.Errorf("recording artifact %d: %w", job.ID, err)
		}
	}
	s.log.Info("generated artifact",
		"id", job.ID,
		"shard", fmt.Sprintf("%s%d", s.collection.ShardPrefix, job.Shard),
		"traits", job.Combination.String())
	return nil
}

func runSequential(ctx context.Context, jobs []model.Job, handle func(context.Context, model.Job) error) error {
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := handle(ctx, job); err != nil {
			return err
		}
	}
	return nil
}

func runParallel(parent context.Context, jobs []model.Job, workers int, handle func(context.Context, model.Job) error) error {
	g, ctx := errgroup.WithContext(parent)
	g.SetLimit(workers)
	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return handle(ctx, job)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return parent.Err()
}
