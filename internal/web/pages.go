package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/qchem/gausscat/internal/datastore/entities"
	"github.com/qchem/gausscat/internal/datastore/repository"
	"github.com/qchem/gausscat/internal/errors"
	"github.com/qchem/gausscat/internal/logger"
	"github.com/qchem/gausscat/internal/models"
)

// IDMismatchMessage is shown when an edit form posts another row's id.
const IDMismatchMessage = "Route id and form id do not match"

// section is the type-erased view of a Page.
type section interface {
	Info() SectionInfo
	register(e *echo.Echo, guard echo.MiddlewareFunc, mw ...echo.MiddlewareFunc)
	count(c echo.Context) (int64, error)
}

// Page serves the HTML views of one entity.
type Page[T entities.Record, A models.APIModel[T]] struct {
	h          *Handler
	info       SectionInfo
	repo       repository.Repository[T]
	mapper     models.Mapper[T]
	fromEntity func(T) A
	log        logger.Logger
}

// NewPage creates the pages for one entity.
func NewPage[T entities.Record, A models.APIModel[T]](h *Handler, info SectionInfo, repo repository.Repository[T], mapper models.Mapper[T], fromEntity func(T) A) *Page[T, A] {
	return &Page[T, A]{
		h:          h,
		info:       info,
		repo:       repo,
		mapper:     mapper,
		fromEntity: fromEntity,
		log:        h.log.With(logger.String("entity", info.Entity)),
	}
}

// Info describes the entity.
func (p *Page[T, A]) Info() SectionInfo { return p.info }

func (p *Page[T, A]) register(e *echo.Echo, guard echo.MiddlewareFunc, mw ...echo.MiddlewareFunc) {
	g := e.Group("/"+p.info.Entity, mw...)
	g.GET("", p.Index)
	g.GET("/Index", p.Index)
	g.GET("/Details/:id", p.Details)

	var write []echo.MiddlewareFunc
	if guard != nil {
		write = append(write, guard)
	}
	g.GET("/Create", p.CreateForm, write...)
	g.POST("/Create", p.Create, write...)
	g.GET("/Edit/:id", p.EditForm, write...)
	g.POST("/Edit/:id", p.Edit, write...)
	g.GET("/Delete/:id", p.DeleteConfirm, write...)
	g.POST("/Delete/:id", p.Delete, write...)
}

func (p *Page[T, A]) count(c echo.Context) (int64, error) {
	return p.repo.Count(c.Request().Context())
}

func (p *Page[T, A]) indexURL() string { return "/" + p.info.Entity }

// Index lists every row.
func (p *Page[T, A]) Index(c echo.Context) error {
	rows, err := p.repo.GetAll(c.Request().Context(), repository.Filter{})
	if err != nil {
		return err
	}

	vm := ListViewModel{
		PageData: p.h.pageData(c, p.info.Title),
		Section:  p.info,
		Rows:     make([]Row, 0, len(rows)),
	}
	for _, rec := range rows {
		m := toMap(p.mapper.Intermediate(rec))
		cells := make([]string, 0, len(p.info.Columns))
		for _, col := range p.info.Columns {
			cells = append(cells, display(m[col.Key]))
		}
		vm.Rows = append(vm.Rows, Row{ID: rec.PrimaryKey(), Cells: cells})
	}
	return c.Render(http.StatusOK, "index", vm)
}

// routeID parses :id. An unparsable id is a missing page.
func routeID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusNotFound, "The requested record was not found.")
	}
	return uint(id), nil
}

func (p *Page[T, A]) load(c echo.Context) (*T, error) {
	id, err := routeID(c)
	if err != nil {
		return nil, err
	}
	return p.repo.GetByID(c.Request().Context(), id)
}

func (p *Page[T, A]) recordView(c echo.Context, title string, rec T) *RecordViewModel {
	m := toMap(p.mapper.Intermediate(rec))
	vm := &RecordViewModel{
		PageData: p.h.pageData(c, title),
		Section:  p.info,
		ID:       rec.PrimaryKey(),
	}
	for _, col := range p.info.Columns {
		vm.Items = append(vm.Items, Item{Label: col.Header, Value: display(m[col.Key])})
	}
	return vm
}

// Details shows one row.
func (p *Page[T, A]) Details(c echo.Context) error {
	rec, err := p.load(c)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "details", p.recordView(c, p.info.Title, *rec))
}

func (p *Page[T, A]) renderForm(c echo.Context, status int, action string, id uint, values map[string]string, problems map[string][]string) error {
	vm := p.h.forms.Create()
	vm.PageData = p.h.pageData(c, fmt.Sprintf("%s %s", action, p.info.Title))
	vm.Section = p.info
	vm.Action = action
	vm.ID = id
	vm.Errors = problems
	if values != nil {
		vm.Values = values
	}
	if err := vm.loadLookups(c.Request().Context(), p.h.lookups, p.info.Lookups()); err != nil {
		return err
	}
	return c.Render(status, "form", vm)
}

// CreateForm shows an empty form.
func (p *Page[T, A]) CreateForm(c echo.Context) error {
	return p.renderForm(c, http.StatusOK, "Create", 0, nil, nil)
}

// Create inserts the posted row and redirects to the index.
func (p *Page[T, A]) Create(c echo.Context) error {
	body, values, problems := bindForm[A](c)
	if problems != nil {
		return p.renderForm(c, http.StatusBadRequest, "Create", 0, values, problems)
	}
	if body.GetID() != 0 {
		return p.renderForm(c, http.StatusBadRequest, "Create", 0, values,
			map[string][]string{"id": {"The id must not be set when creating."}})
	}
	if errs := body.Validate(); errs.HasErrors() {
		return p.renderForm(c, http.StatusBadRequest, "Create", 0, values, errs)
	}

	rec := body.ToEntity()
	created, err := p.repo.Create(c.Request().Context(), &rec)
	if err != nil {
		if problems := storeProblems(err); problems != nil {
			return p.renderForm(c, http.StatusBadRequest, "Create", 0, values, problems)
		}
		return err
	}

	p.h.lookups.Invalidate(p.info.Entity)
	p.log.Info("created", logger.Uint64("id", uint64((*created).PrimaryKey())))
	return c.Redirect(http.StatusSeeOther, p.indexURL())
}

// EditForm shows the form filled with the stored row.
func (p *Page[T, A]) EditForm(c echo.Context) error {
	rec, err := p.load(c)
	if err != nil {
		return err
	}
	return p.renderForm(c, http.StatusOK, "Edit", (*rec).PrimaryKey(), formValues(p.fromEntity(*rec)), nil)
}

// Edit stores the posted row and redirects to the index.
func (p *Page[T, A]) Edit(c echo.Context) error {
	id, err := routeID(c)
	if err != nil {
		return err
	}
	body, values, problems := bindForm[A](c)
	if problems != nil {
		return p.renderForm(c, http.StatusBadRequest, "Edit", id, values, problems)
	}
	if body.GetID() != id {
		return echo.NewHTTPError(http.StatusBadRequest, IDMismatchMessage)
	}
	if errs := body.Validate(); errs.HasErrors() {
		return p.renderForm(c, http.StatusBadRequest, "Edit", id, values, errs)
	}

	rec := body.ToEntity()
	if _, err := p.repo.Update(c.Request().Context(), &rec); err != nil {
		if problems := storeProblems(err); problems != nil {
			return p.renderForm(c, http.StatusBadRequest, "Edit", id, values, problems)
		}
		return err
	}

	p.h.lookups.Invalidate(p.info.Entity)
	p.log.Info("updated", logger.Uint64("id", uint64(id)))
	return c.Redirect(http.StatusSeeOther, p.indexURL())
}

// DeleteConfirm asks before deleting.
func (p *Page[T, A]) DeleteConfirm(c echo.Context) error {
	rec, err := p.load(c)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "delete", p.recordView(c, "Delete "+p.info.Title, *rec))
}

// Delete removes the row. A row still in use is shown again with a message.
func (p *Page[T, A]) Delete(c echo.Context) error {
	id, err := routeID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if _, err := p.repo.Delete(ctx, id); err != nil {
		if !errors.Is(err, repository.ErrReferenced) {
			return err
		}
		rec, getErr := p.repo.GetByID(ctx, id)
		if getErr != nil {
			return getErr
		}
		vm := p.recordView(c, "Delete "+p.info.Title, *rec)
		vm.Error = "This record is still used by other records and cannot be deleted."
		return c.Render(http.StatusConflict, "delete", vm)
	}

	p.h.lookups.Invalidate(p.info.Entity)
	p.log.Info("deleted", logger.Uint64("id", uint64(id)))
	return c.Redirect(http.StatusSeeOther, p.indexURL())
}
