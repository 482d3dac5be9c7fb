package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"ArtForge/internal/model"

	"github.com/lib/pq"
)

var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          UUID PRIMARY KEY,
	collection  TEXT NOT NULL,
	seed        NUMERIC(20) NOT NULL,
	requested   INTEGER NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS artifacts (
	run_id        UUID NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	artifact_id   INTEGER NOT NULL,
	shard_id      INTEGER NOT NULL,
	dna           TEXT NOT NULL,
	image_path    TEXT NOT NULL,
	metadata_path TEXT NOT NULL,
	trait_types   TEXT[] NOT NULL,
	traits        TEXT[] NOT NULL,
	PRIMARY KEY (run_id, artifact_id),
	UNIQUE (run_id, dna)
);`

// ArtifactRepository records generation runs and the artifacts they wrote.
type ArtifactRepository struct {
	db *sql.DB
}

func NewArtifactRepository(db *sql.DB) *ArtifactRepository {
	return &ArtifactRepository{db: db}
}

func (r *ArtifactRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

func (r *ArtifactRepository) CreateRun(ctx context.Context, run model.Run) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO runs (id, collection, seed, requested, created_at) VALUES ($1, $2, $3, $4, $5)`,
		run.ID, run.Collection, strconv.FormatUint(run.Seed, 10), run.Requested, run.CreatedAt)
	return err
}

// SaveArtifact inserts rec, replacing an existing row for the same run and id.
func (r *ArtifactRepository) SaveArtifact(ctx context.Context, rec model.ArtifactRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO artifacts (run_id, artifact_id, shard_id, dna, image_path, metadata_path, trait_types, traits)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (run_id, artifact_id)
		DO UPDATE SET shard_id = excluded.shard_id, dna = excluded.dna, image_path = excluded.image_path,
			metadata_path = excluded.metadata_path, trait_types = excluded.trait_types, traits = excluded.traits`,
		rec.RunID, rec.ArtifactID, rec.ShardID, rec.DNA, rec.ImagePath, rec.MetadataPath,
		pq.Array(rec.TraitTypes), pq.Array(rec.Traits))
	return err
}

// LatestRun returns the most recent run of collection.
func (r *ArtifactRepository) LatestRun(ctx context.Context, collection string) (model.Run, error) {
	var run model.Run
	var seed string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, collection, seed, requested, created_at
		FROM runs WHERE collection = $1
		ORDER BY created_at DESC LIMIT 1`, collection).
		Scan(&run.ID, &run.Collection, &seed, &run.Requested, &run.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Run{}, ErrNotFound
	}
	if err != nil {
		return model.Run{}, err
	}
	run.Seed, err = strconv.ParseUint(seed, 10, 64)
	return run, err
}

func (r *ArtifactRepository) GetArtifact(ctx context.Context, runID string, artifactID int) (model.ArtifactRecord, error) {
	rows, err := r.db.QueryContext(ctx, selectArtifacts+` WHERE run_id = $1 AND artifact_id = $2`, runID, artifactID)
	if err != nil {
		return model.ArtifactRecord{}, err
	}
	records, err := scanArtifacts(rows)
	if err != nil {
		return model.ArtifactRecord{}, err
	}
	if len(records) == 0 {
		return model.ArtifactRecord{}, ErrNotFound
	}
	return records[0], nil
}

func (r *ArtifactRepository) ListShard(ctx context.Context, runID string, shardID int) ([]model.ArtifactRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		selectArtifacts+` WHERE run_id = $1 AND shard_id = $2 ORDER BY artifact_id`, runID, shardID)
	if err != nil {
		return nil, err
	}
	return scanArtifacts(rows)
}

// SearchByTrait finds artifacts of a run carrying value. An empty traitType
// matches value in any slot.
func (r *ArtifactRepository) SearchByTrait(ctx context.Context, runID, traitType, value string) ([]model.ArtifactRecord, error) {
	var rows *sql.Rows
	var err error
	if traitType == "" {
		rows, err = r.db.QueryContext(ctx,
			selectArtifacts+` WHERE run_id = $1 AND $2 = ANY(traits) ORDER BY artifact_id`, runID, value)
	} else {
		rows, err = r.db.QueryContext(ctx,
			selectArtifacts+` WHERE run_id = $1 AND traits[array_position(trait_types, $2)] = $3 ORDER BY artifact_id`,
			runID, traitType, value)
	}
	if err != nil {
		return nil, err
	}
	return scanArtifacts(rows)
}

const selectArtifacts = `
	SELECT run_id, artifact_id, shard_id, dna, image_path, metadata_path, trait_types, traits
	FROM artifacts`

func scanArtifacts(rows *sql.Rows) ([]model.ArtifactRecord, error) {
	defer rows.Close()

	var records []model.ArtifactRecord
	for rows.Next() {
		var rec model.ArtifactRecord
		err := rows.Scan(&rec.RunID, &rec.ArtifactID, &rec.ShardID, &rec.DNA, &rec.ImagePath, &rec.MetadataPath,
			pq.Array(&rec.TraitTypes), pq.Array(&rec.Traits))
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
