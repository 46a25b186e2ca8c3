package adapter

import (
	"context"
	"errors"

	chat "evento-chat/internal/pkg/chat/application/domain"
	repository "evento-chat/internal/repository/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgProfileRepository reads user_profiles via pgx.
type PgProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPgProfileRepository(pool *pgxpool.Pool) *PgProfileRepository {
	return &PgProfileRepository{pool: pool}
}

var _ repository.ProfileRepository = (*PgProfileRepository)(nil)

func (r *PgProfileRepository) FindByID(ctx context.Context, id string) (*chat.Profile, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgProfileRepository: nil pool")
	}
	var p chat.Profile
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, first_name, last_name
		FROM user_profiles
		WHERE id = $1::uuid
	`, id).Scan(&p.ID, &p.FirstName, &p.LastName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PgProfileRepository) FindByIDs(ctx context.Context, ids []string) (map[string]chat.Profile, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgProfileRepository: nil pool")
	}
	out := make(map[string]chat.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, first_name, last_name
		FROM user_profiles
		WHERE id::text = ANY($1::text[])
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p chat.Profile
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName); err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *PgProfileRepository) Upsert(ctx context.Context, p chat.Profile) error {
	if r == nil || r.pool == nil {
		return errors.New("PgProfileRepository: nil pool")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_profiles (id, first_name, last_name)
		VALUES ($1::uuid, $2, $3)
		ON CONFLICT (id)
		DO UPDATE SET first_name = EXCLUDED.first_name,
		              last_name = EXCLUDED.last_name
	`, p.ID, p.FirstName, p.LastName)
	return err
}
