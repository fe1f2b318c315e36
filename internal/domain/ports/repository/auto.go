package repository

import (
	"context"

	"autos-admin/internal/domain/model"
)

type AutoRepository interface {
	// List returns every listing, newest id first.
	List(ctx context.Context, tx Tx) ([]*model.Auto, error)
	FindByID(ctx context.Context, tx Tx, id int64) (*model.Auto, error)
	// Create inserts a and sets its ID.
	Create(ctx context.Context, tx Tx, a *model.Auto) error
	Update(ctx context.Context, tx Tx, a *model.Auto) error
	Delete(ctx context.Context, tx Tx, id int64) error
}
