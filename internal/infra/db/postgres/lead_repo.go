package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"autos-admin/internal/domain/model"
	"autos-admin/internal/domain/ports/repository"
)

var _ repository.LeadRepository = (*leadRepo)(nil)

type leadRepo struct {
	pool *pgxpool.Pool
}

func NewLeadRepo(pool *pgxpool.Pool) *leadRepo {
	return &leadRepo{pool: pool}
}

func (r *leadRepo) Save(ctx context.Context, tx repository.Tx, l *model.Lead) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	const q = `
INSERT INTO leads (id, full_name, email, phone)
VALUES ($1, $2, $3, NULLIF($4, ''))
ON CONFLICT (id) DO NOTHING;`
	_, err := execSQL(ctx, r.pool, tx, q, l.ID, l.FullName, l.Email, l.Phone)
	return mapErr("save lead", err)
}
