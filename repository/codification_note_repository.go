package repository

import (
	"context"
	"fmt"

	"droitis-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CodificationNoteRepository handles database operations for codification
// notes. The table is read-only at serving time; writes happen through the
// ingestion CLI.
type CodificationNoteRepository struct {
	db *pgxpool.Pool
}

// NewCodificationNoteRepository creates a new codification note repository.
func NewCodificationNoteRepository(db *pgxpool.Pool) *CodificationNoteRepository {
	return &CodificationNoteRepository{db: db}
}

// ListAll returns every codification note, ordered by citation. The serving
// path loads them once at startup into an in-memory resolver.
func (r *CodificationNoteRepository) ListAll(ctx context.Context) ([]models.CodificationNote, error) {
	query := `
		SELECT id, code_id, jurisdiction, citation, normalized_citation,
			decision_name, note, created_at
		FROM codification_notes
		ORDER BY normalized_citation`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query codification notes: %w", err)
	}
	defer rows.Close()

	var notes []models.CodificationNote
	for rows.Next() {
		var note models.CodificationNote
		err := rows.Scan(
			&note.ID,
			&note.CodeID,
			&note.Jurisdiction,
			&note.Citation,
			&note.NormalizedCitation,
			&note.DecisionName,
			&note.Note,
			&note.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan codification note: %w", err)
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating codification notes: %w", err)
	}

	return notes, nil
}

// Upsert inserts a note or replaces the annotation for an existing
// (code_id, jurisdiction, citation) key. Used by the ingestion CLI only.
func (r *CodificationNoteRepository) Upsert(ctx context.Context, note *models.CodificationNote) error {
	query := `
		INSERT INTO codification_notes (
			code_id, jurisdiction, citation, normalized_citation,
			decision_name, note
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (code_id, jurisdiction, citation)
		DO UPDATE SET
			normalized_citation = EXCLUDED.normalized_citation,
			decision_name = EXCLUDED.decision_name,
			note = EXCLUDED.note
		RETURNING id, created_at`

	err := r.db.QueryRow(
		ctx, query,
		note.CodeID,
		note.Jurisdiction,
		note.Citation,
		note.NormalizedCitation,
		note.DecisionName,
		note.Note,
	).Scan(&note.ID, &note.CreatedAt)

	return err
}
