package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"

	"autos-admin/internal/domain"
	"autos-admin/internal/domain/model"
	"autos-admin/internal/domain/ports/repository"
)

var _ repository.AutoRepository = (*autoRepo)(nil)

const autoCols = `id, marca, modelo, "año", precio, descripcion, COALESCE(imagenes, '{}'),
       en_oferta, precio_oferta, vendido, reservado`

type autoRepo struct {
	pool *pgxpool.Pool
}

func NewAutoRepo(pool *pgxpool.Pool) *autoRepo {
	return &autoRepo{pool: pool}
}

func (r *autoRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Auto, error) {
	const q = `SELECT ` + autoCols + ` FROM "Autos" ORDER BY id DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, mapErr("list autos", err)
	}
	defer rows.Close()

	out := []*model.Auto{}
	for rows.Next() {
		a, err := scanAuto(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, a)
	}
	return out, mapErr("list autos", rows.Err())
}

// FindByID locks the row when called inside a transaction.
func (r *autoRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Auto, error) {
	q := `SELECT ` + autoCols + ` FROM "Autos" WHERE id = $1`
	if isTx(tx) {
		q += ` FOR UPDATE`
	}
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	a, err := scanAuto(row)
	if err != nil {
		return nil, mapErr("find auto", err)
	}
	return a, nil
}

func (r *autoRepo) Create(ctx context.Context, tx repository.Tx, a *model.Auto) error {
	const q = `
INSERT INTO "Autos" (marca, modelo, "año", precio, descripcion, imagenes, en_oferta, precio_oferta, vendido, reservado)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id;`
	row, err := pickRow(ctx, r.pool, tx, q,
		a.Marca, a.Modelo, a.Anio, a.Precio, a.Descripcion, imagenes(a), a.EnOferta, a.PrecioOferta, a.Vendido, a.Reservado,
	)
	if err != nil {
		return err
	}
	return mapErr("create auto", row.Scan(&a.ID))
}

func (r *autoRepo) Update(ctx context.Context, tx repository.Tx, a *model.Auto) error {
	const q = `
UPDATE "Autos"
   SET marca = $2, modelo = $3, "año" = $4, precio = $5, descripcion = $6, imagenes = $7,
       en_oferta = $8, precio_oferta = $9, vendido = $10, reservado = $11
 WHERE id = $1;`
	cmd, err := execSQL(ctx, r.pool, tx, q,
		a.ID, a.Marca, a.Modelo, a.Anio, a.Precio, a.Descripcion, imagenes(a), a.EnOferta, a.PrecioOferta, a.Vendido, a.Reservado,
	)
	if err != nil {
		return mapErr("update auto", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *autoRepo) Delete(ctx context.Context, tx repository.Tx, id int64) error {
	cmd, err := execSQL(ctx, r.pool, tx, `DELETE FROM "Autos" WHERE id = $1;`, id)
	if err != nil {
		return mapErr("delete auto", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func imagenes(a *model.Auto) []string {
	if a.Imagenes == nil {
		return []string{}
	}
	return a.Imagenes
}

func scanAuto(row pgx.Row) (*model.Auto, error) {
	var (
		a      model.Auto
		oferta decimal.NullDecimal
	)
	err := row.Scan(
		&a.ID, &a.Marca, &a.Modelo, &a.Anio, &a.Precio, &a.Descripcion, &a.Imagenes,
		&a.EnOferta, &oferta, &a.Vendido, &a.Reservado,
	)
	if err != nil {
		return nil, err
	}
	if oferta.Valid {
		a.PrecioOferta = &oferta.Decimal
	}
	return &a, nil
}
