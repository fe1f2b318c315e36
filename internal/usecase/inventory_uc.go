// File: internal/usecase/inventory_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"autos-admin/internal/domain"
	"autos-admin/internal/domain/model"
	"autos-admin/internal/domain/ports/adapter"
	"autos-admin/internal/domain/ports/repository"
	"autos-admin/internal/infra/logging"
	"autos-admin/internal/infra/metrics"
)

// Compile-time check
var _ InventoryUseCase = (*inventoryUC)(nil)

// InventoryUseCase manages vehicle listings and the media they reference.
// Mutations that drop media return the URLs whose objects could not be removed.
type InventoryUseCase interface {
	List(ctx context.Context) ([]*model.Auto, error)
	Get(ctx context.Context, id int64) (*model.Auto, error)
	Create(ctx context.Context, a *model.Auto) (*model.Auto, error)
	Update(ctx context.Context, id int64, patch model.AutoPatch) (*model.Auto, []string, error)
	Delete(ctx context.Context, id int64) ([]string, error)
}

type inventoryUC struct {
	autos   repository.AutoRepository
	tm      repository.TransactionManager
	storage adapter.ObjectStorage
	log     *zerolog.Logger
}

func NewInventoryUseCase(autos repository.AutoRepository, tm repository.TransactionManager, storage adapter.ObjectStorage, logger *zerolog.Logger) *inventoryUC {
	return &inventoryUC{autos: autos, tm: tm, storage: storage, log: logger}
}

func (u *inventoryUC) List(ctx context.Context) ([]*model.Auto, error) {
	return u.autos.List(ctx, repository.NoTX)
}

func (u *inventoryUC) Get(ctx context.Context, id int64) (*model.Auto, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return u.autos.FindByID(ctx, repository.NoTX, id)
}

func (u *inventoryUC) Create(ctx context.Context, a *model.Auto) (*model.Auto, error) {
	defer logging.TraceDuration(u.log, "InventoryUC.Create")()

	if a == nil {
		return nil, domain.ErrInvalidArgument
	}
	a.Normalize()
	if err := a.Validate(); err != nil {
		metrics.IncInventoryOp("create", "rejected")
		return nil, err
	}
	if err := u.autos.Create(ctx, repository.NoTX, a); err != nil {
		metrics.IncInventoryOp("create", "error")
		return nil, err
	}
	metrics.IncInventoryOp("create", "ok")
	return a, nil
}

func (u *inventoryUC) Update(ctx context.Context, id int64, patch model.AutoPatch) (*model.Auto, []string, error) {
	defer logging.TraceDuration(u.log, "InventoryUC.Update")()

	if id <= 0 {
		return nil, nil, domain.ErrInvalidArgument
	}
	var (
		updated *model.Auto
		dropped []string
	)
	err := u.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		a, err := u.autos.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		dropped = patch.Apply(a)
		a.Normalize()
		if err := a.Validate(); err != nil {
			return err
		}
		if err := u.autos.Update(ctx, tx, a); err != nil {
			return err
		}
		updated = a
		return nil
	})
	if err != nil {
		metrics.IncInventoryOp("update", outcomeInventory(err))
		return nil, nil, err
	}
	metrics.IncInventoryOp("update", "ok")
	return updated, u.removeMedia(ctx, id, dropped), nil
}

func (u *inventoryUC) Delete(ctx context.Context, id int64) ([]string, error) {
	defer logging.TraceDuration(u.log, "InventoryUC.Delete")()

	if id <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	var media []string
	err := u.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		a, err := u.autos.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		media = a.Imagenes
		return u.autos.Delete(ctx, tx, id)
	})
	if err != nil {
		metrics.IncInventoryOp("delete", outcomeInventory(err))
		return nil, err
	}
	metrics.IncInventoryOp("delete", "ok")
	return u.removeMedia(ctx, id, media), nil
}

// removeMedia attempts a storage delete for every URL, independently of earlier
// failures, and returns the URLs left behind.
func (u *inventoryUC) removeMedia(ctx context.Context, autoID int64, urls []string) []string {
	var (
		orphaned []string
		errs     []error
	)
	for _, raw := range urls {
		name := model.FileNameFromURL(raw)
		if name == "" {
			continue
		}
		if err := u.storage.Remove(ctx, name); err != nil {
			orphaned = append(orphaned, raw)
			errs = append(errs, fmt.Errorf("remove %s: %w", name, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		metrics.AddMediaOrphans(len(orphaned))
		logging.With(ctx, u.log).Warn().Err(err).Int64("auto_id", autoID).Int("orphaned", len(orphaned)).Msg("media left in storage")
	}
	return orphaned
}

func outcomeInventory(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidOffer):
		return "rejected"
	}
	return "error"
}
