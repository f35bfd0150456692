package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/LeventeLantos/campaign-builder/internal/model"
)

const candidateColumns = `id, first_name, last_name, email, phone, specialty, created_at`

func (s *Store) FindCandidate(ctx context.Context, id string) (*model.Candidate, error) {
	var c model.Candidate
	if err := s.get(ctx, &c, `SELECT `+candidateColumns+` FROM candidates WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) FindCandidateByPhone(ctx context.Context, phone string) (*model.Candidate, error) {
	var c model.Candidate
	err := s.get(ctx, &c, `
		SELECT `+candidateColumns+`
		FROM candidates
		WHERE phone = ?
		ORDER BY created_at ASC
		LIMIT 1
	`, phone)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindCandidates returns the candidates among ids that exist, in no particular order.
func (s *Store) FindCandidates(ctx context.Context, ids []string) ([]model.Candidate, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT `+candidateColumns+` FROM candidates WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}

	var out []model.Candidate
	if err := s.selectAll(ctx, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}
