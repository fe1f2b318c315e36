package model

import (
	"strings"

	"github.com/shopspring/decimal"

	"autos-admin/internal/domain"
)

const (
	MinYear = 1900
	MaxYear = 2030
)

// Auto is a vehicle listing. Imagenes keeps display order and may mix images and videos.
type Auto struct {
	ID           int64            `json:"id"`
	Marca        string           `json:"marca"`
	Modelo       string           `json:"modelo"`
	Anio         int              `json:"año"`
	Precio       decimal.Decimal  `json:"precio"`
	Descripcion  *string          `json:"descripcion"`
	Imagenes     []string         `json:"imagenes"`
	EnOferta     bool             `json:"en_oferta"`
	PrecioOferta *decimal.Decimal `json:"precio_oferta"`
	Vendido      bool             `json:"vendido"`
	Reservado    bool             `json:"reservado"`
}

// Validate checks field ranges and the offer-price invariant.
func (a *Auto) Validate() error {
	if strings.TrimSpace(a.Marca) == "" || strings.TrimSpace(a.Modelo) == "" {
		return domain.ErrInvalidArgument
	}
	if a.Anio < MinYear || a.Anio > MaxYear {
		return domain.ErrInvalidArgument
	}
	if a.Precio.IsNegative() {
		return domain.ErrInvalidArgument
	}
	if a.EnOferta {
		if a.PrecioOferta == nil || !a.PrecioOferta.IsPositive() || a.PrecioOferta.GreaterThanOrEqual(a.Precio) {
			return domain.ErrInvalidOffer
		}
	}
	return nil
}

// Normalize trims text fields and drops a stale offer price when the listing is not on sale.
func (a *Auto) Normalize() {
	a.Marca = strings.TrimSpace(a.Marca)
	a.Modelo = strings.TrimSpace(a.Modelo)
	if !a.EnOferta {
		a.PrecioOferta = nil
	}
	if a.Imagenes == nil {
		a.Imagenes = []string{}
	}
}

// AutoPatch carries a partial update. Nil means "no change".
type AutoPatch struct {
	Marca        *string          `json:"marca"`
	Modelo       *string          `json:"modelo"`
	Anio         *int             `json:"año"`
	Precio       *decimal.Decimal `json:"precio"`
	Descripcion  *string          `json:"descripcion"`
	Imagenes     *[]string        `json:"imagenes"`
	EnOferta     *bool            `json:"en_oferta"`
	PrecioOferta *decimal.Decimal `json:"precio_oferta"`
	Vendido      *bool            `json:"vendido"`
	Reservado    *bool            `json:"reservado"`
}

// Apply merges the patch onto a and returns the media URLs no longer referenced.
func (p AutoPatch) Apply(a *Auto) (dropped []string) {
	if p.Marca != nil {
		a.Marca = *p.Marca
	}
	if p.Modelo != nil {
		a.Modelo = *p.Modelo
	}
	if p.Anio != nil {
		a.Anio = *p.Anio
	}
	if p.Precio != nil {
		a.Precio = *p.Precio
	}
	if p.Descripcion != nil {
		a.Descripcion = p.Descripcion
	}
	if p.EnOferta != nil {
		a.EnOferta = *p.EnOferta
	}
	if p.PrecioOferta != nil {
		po := *p.PrecioOferta
		a.PrecioOferta = &po
	}
	if p.Vendido != nil {
		a.Vendido = *p.Vendido
	}
	if p.Reservado != nil {
		a.Reservado = *p.Reservado
	}
	if p.Imagenes != nil {
		keep := make(map[string]struct{}, len(*p.Imagenes))
		for _, u := range *p.Imagenes {
			keep[u] = struct{}{}
		}
		for _, u := range a.Imagenes {
			if _, ok := keep[u]; !ok {
				dropped = append(dropped, u)
			}
		}
		a.Imagenes = append([]string{}, (*p.Imagenes)...)
	}
	return dropped
}
