package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driven"
)

// snapshotStore keeps the single most recent index snapshot.
type snapshotStore struct {
	db *sql.DB
}

var _ driven.IndexSnapshotStore = (*snapshotStore)(nil)

// SaveSnapshot replaces the stored snapshot atomically.
func (s *snapshotStore) SaveSnapshot(ctx context.Context, snap *domain.IndexSnapshot) error {
	if snap == nil {
		return domain.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM snapshot_chunks"); err != nil {
		return fmt.Errorf("clearing snapshot chunks: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO index_snapshots (id, fingerprint, embedding_model, chunk_size, chunk_overlap, built_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			embedding_model = excluded.embedding_model,
			chunk_size = excluded.chunk_size,
			chunk_overlap = excluded.chunk_overlap,
			built_at = excluded.built_at
	`, snap.Fingerprint, snap.EmbeddingModel, snap.ChunkSize, snap.ChunkOverlap, snap.BuiltAt.UTC()); err != nil {
		return fmt.Errorf("saving snapshot header: %w", err)
	}

	insert, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshot_chunks (id, guide_id, content, position, section, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing chunk insert: %w", err)
	}
	defer insert.Close()

	for _, c := range snap.Chunks {
		if _, err := insert.ExecContext(ctx,
			c.ID, c.GuideID, c.Content, c.Position, c.Section, encodeVector(c.Embedding)); err != nil {
			return fmt.Errorf("saving chunk %s of %s: %w", c.ID, c.GuideID, err)
		}
	}

	return tx.Commit()
}

// LoadSnapshot returns the stored snapshot, chunks ordered by guide then
// position, or domain.ErrNotFound when nothing has been saved.
func (s *snapshotStore) LoadSnapshot(ctx context.Context) (*domain.IndexSnapshot, error) {
	snap := &domain.IndexSnapshot{}
	err := s.db.QueryRowContext(ctx, `
		SELECT fingerprint, embedding_model, chunk_size, chunk_overlap, built_at
		FROM index_snapshots WHERE id = 1
	`).Scan(&snap.Fingerprint, &snap.EmbeddingModel, &snap.ChunkSize, &snap.ChunkOverlap, &snap.BuiltAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading snapshot header: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, guide_id, content, position, section, embedding
		FROM snapshot_chunks ORDER BY guide_id, position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying snapshot chunks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			c    domain.Chunk
			blob []byte
		)
		if err := rows.Scan(&c.ID, &c.GuideID, &c.Content, &c.Position, &c.Section, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		c.Embedding = decodeVector(blob)
		snap.Chunks = append(snap.Chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshot chunks: %w", err)
	}
	return snap, nil
}
