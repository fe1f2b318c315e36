package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"autos-admin/internal/domain"
	"autos-admin/internal/domain/model"
)

type autoRequest struct {
	Marca        string           `json:"marca" validate:"required,max=100"`
	Modelo       string           `json:"modelo" validate:"required,max=100"`
	Anio         int              `json:"año" validate:"required,min=1900,max=2030"`
	Precio       decimal.Decimal  `json:"precio" validate:"min=0"`
	Descripcion  *string          `json:"descripcion" validate:"omitempty,max=5000"`
	Imagenes     []string         `json:"imagenes" validate:"omitempty,dive,required,max=2048"`
	EnOferta     bool             `json:"en_oferta"`
	PrecioOferta *decimal.Decimal `json:"precio_oferta"`
	Vendido      bool             `json:"vendido"`
	Reservado    bool             `json:"reservado"`
}

func (req autoRequest) toModel() *model.Auto {
	return &model.Auto{
		Marca:        req.Marca,
		Modelo:       req.Modelo,
		Anio:         req.Anio,
		Precio:       req.Precio,
		Descripcion:  req.Descripcion,
		Imagenes:     req.Imagenes,
		EnOferta:     req.EnOferta,
		PrecioOferta: req.PrecioOferta,
		Vendido:      req.Vendido,
		Reservado:    req.Reservado,
	}
}

type autoPatchRequest struct {
	Marca        *string          `json:"marca" validate:"omitempty,min=1,max=100"`
	Modelo       *string          `json:"modelo" validate:"omitempty,min=1,max=100"`
	Anio         *int             `json:"año" validate:"omitempty,min=1900,max=2030"`
	Precio       *decimal.Decimal `json:"precio"`
	Descripcion  *string          `json:"descripcion" validate:"omitempty,max=5000"`
	Imagenes     *[]string        `json:"imagenes" validate:"omitempty,dive,required,max=2048"`
	EnOferta     *bool            `json:"en_oferta"`
	PrecioOferta *decimal.Decimal `json:"precio_oferta"`
	Vendido      *bool            `json:"vendido"`
	Reservado    *bool            `json:"reservado"`
}

func (req autoPatchRequest) toModel() model.AutoPatch {
	return model.AutoPatch{
		Marca:        req.Marca,
		Modelo:       req.Modelo,
		Anio:         req.Anio,
		Precio:       req.Precio,
		Descripcion:  req.Descripcion,
		Imagenes:     req.Imagenes,
		EnOferta:     req.EnOferta,
		PrecioOferta: req.PrecioOferta,
		Vendido:      req.Vendido,
		Reservado:    req.Reservado,
	}
}

func autoID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidArgument
	}
	return id, nil
}

func (s *Server) autosList(w http.ResponseWriter, r *http.Request) {
	autos, err := s.inventoryUC.List(r.Context())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	if autos == nil {
		autos = []*model.Auto{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"autos": autos})
}

func (s *Server) autosGet(w http.ResponseWriter, r *http.Request) {
	id, err := autoID(r)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	a, err := s.inventoryUC.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "error.auto_not_found")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) autosCreate(w http.ResponseWriter, r *http.Request) {
	var req autoRequest
	if !s.bindAndValidate(w, r, &req) {
		return
	}
	a, err := s.inventoryUC.Create(r.Context(), req.toModel())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) autosUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := autoID(r)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	var req autoPatchRequest
	if !s.bindAndValidate(w, r, &req) {
		return
	}
	a, orphaned, err := s.inventoryUC.Update(r.Context(), id, req.toModel())
	if err != nil {
		s.fail(w, r, err, "error.auto_not_found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"auto": a, "orphaned_media": nonNil(orphaned)})
}

func (s *Server) autosDelete(w http.ResponseWriter, r *http.Request) {
	id, err := autoID(r)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	orphaned, err := s.inventoryUC.Delete(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "error.auto_not_found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "orphaned_media": nonNil(orphaned)})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
