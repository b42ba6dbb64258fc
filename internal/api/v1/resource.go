// internal/api/v1/resource.go
package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/qchem/gausscat/internal/datastore/entities"
	"github.com/qchem/gausscat/internal/datastore/repository"
	"github.com/qchem/gausscat/internal/errors"
	"github.com/qchem/gausscat/internal/logger"
	"github.com/qchem/gausscat/internal/models"
)

// IDMismatchMessage is the plain-text body of a PUT whose route and body ids differ.
const IDMismatchMessage = "Route id and body id do not match"

// Resource serves the CRUD template for one catalogue entity.
type Resource[T entities.Record, A models.APIModel[T]] struct {
	ctrl    *Controller
	repo    repository.Repository[T]
	mapper  models.Mapper[T]
	filters []filterParam
	log     logger.Logger
}

// NewResource creates the handlers for repo.
func NewResource[T entities.Record, A models.APIModel[T]](ctrl *Controller, repo repository.Repository[T], mapper models.Mapper[T], filters ...filterParam) *Resource[T, A] {
	return &Resource[T, A]{
		ctrl:    ctrl,
		repo:    repo,
		mapper:  mapper,
		filters: filters,
		log:     ctrl.log.With(logger.String("entity", repo.Entity())),
	}
}

// Register adds the entity routes below g. Static segments are registered
// before /:id so that they win.
func (r *Resource[T, A]) Register(g *echo.Group, write ...echo.MiddlewareFunc) {
	base := "/" + r.repo.Entity()

	g.GET(base, r.listWith(r.mapper.Full))
	g.GET(base+"/Full", r.listWith(r.mapper.Full))
	g.GET(base+"/List", r.listWith(r.mapper.Record))
	g.GET(base+"/Intermediate", r.listWith(r.mapper.Intermediate))
	g.GET(base+"/Simple", r.ListSimple)
	g.GET(base+"/:id", r.getWith(r.mapper.Full))
	g.GET(base+"/:id/Simple", r.GetSimple)
	g.GET(base+"/:id/Intermediate", r.getWith(r.mapper.Intermediate))

	g.POST(base, r.Create, write...)
	g.PUT(base+"/:id", r.Update, write...)
	g.DELETE(base+"/:id", r.Delete, write...)
}

func (r *Resource[T, A]) list(ctx echo.Context) ([]T, bool, error) {
	filter, problems := parseFilter(ctx, r.filters)
	if problems != nil {
		return nil, false, WriteValidationProblem(ctx, problems)
	}
	rows, err := r.repo.GetAll(ctx.Request().Context(), filter)
	if err != nil {
		return nil, false, r.ctrl.HandleError(ctx, err, fmt.Sprintf("failed to list %s", r.repo.Entity()))
	}
	return rows, true, nil
}

func (r *Resource[T, A]) listWith(project func(T) any) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		rows, ok, err := r.list(ctx)
		if !ok {
			return err
		}
		return ctx.JSON(http.StatusOK, models.Records(rows, project))
	}
}

// ListSimple returns the dropdown projection.
func (r *Resource[T, A]) ListSimple(ctx echo.Context) error {
	rows, ok, err := r.list(ctx)
	if !ok {
		return err
	}
	return ctx.JSON(http.StatusOK, models.Records(rows, r.mapper.Simple))
}

func (r *Resource[T, A]) get(ctx echo.Context) (*T, bool, error) {
	id, problems := parseID(ctx)
	if problems != nil {
		return nil, false, WriteValidationProblem(ctx, problems)
	}
	rec, err := r.repo.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return nil, false, r.ctrl.HandleError(ctx, err, fmt.Sprintf("failed to get %s", r.repo.Entity()))
	}
	return rec, true, nil
}

func (r *Resource[T, A]) getWith(project func(T) any) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		rec, ok, err := r.get(ctx)
		if !ok {
			return err
		}
		return ctx.JSON(http.StatusOK, project(*rec))
	}
}

// GetSimple returns one row as {id, name}.
func (r *Resource[T, A]) GetSimple(ctx echo.Context) error {
	rec, ok, err := r.get(ctx)
	if !ok {
		return err
	}
	return ctx.JSON(http.StatusOK, r.mapper.Simple(*rec))
}

// bind decodes the JSON body into an API model. A nil map means success.
func (r *Resource[T, A]) bind(ctx echo.Context) (A, map[string][]string) {
	var body A
	if err := (&echo.DefaultBinder{}).BindBody(ctx, &body); err != nil {
		msg := err.Error()
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			msg = fmt.Sprint(httpErr.Message)
		}
		return body, map[string][]string{"$": {msg}}
	}
	return body, nil
}

// Create inserts a row and answers 201 with the Full model and a Location header.
func (r *Resource[T, A]) Create(ctx echo.Context) error {
	body, problems := r.bind(ctx)
	if problems != nil {
		return WriteValidationProblem(ctx, problems)
	}
	if body.GetID() != 0 {
		return WriteValidationProblem(ctx, map[string][]string{"id": {"The id must not be set when creating."}})
	}
	if errs := body.Validate(); errs.HasErrors() {
		return WriteValidationProblem(ctx, errs)
	}

	rec := body.ToEntity()
	created, err := r.repo.Create(ctx.Request().Context(), &rec)
	if err != nil {
		return r.ctrl.HandleError(ctx, err, fmt.Sprintf("failed to create %s", r.repo.Entity()))
	}

	id := (*created).PrimaryKey()
	r.log.Info("created", logger.Uint64("id", uint64(id)))
	ctx.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("%s/%s/%d", r.ctrl.prefix, r.repo.Entity(), id))
	return ctx.JSON(http.StatusCreated, r.mapper.Full(*created))
}

// Update replaces the row named by the route id.
func (r *Resource[T, A]) Update(ctx echo.Context) error {
	id, problems := parseID(ctx)
	if problems != nil {
		return WriteValidationProblem(ctx, problems)
	}
	body, problems := r.bind(ctx)
	if problems != nil {
		return WriteValidationProblem(ctx, problems)
	}
	if body.GetID() != id {
		return ctx.String(http.StatusBadRequest, IDMismatchMessage)
	}
	if errs := body.Validate(); errs.HasErrors() {
		return WriteValidationProblem(ctx, errs)
	}

	rec := body.ToEntity()
	updated, err := r.repo.Update(ctx.Request().Context(), &rec)
	if err != nil {
		return r.ctrl.HandleError(ctx, err, fmt.Sprintf("failed to update %s", r.repo.Entity()))
	}

	r.log.Info("updated", logger.Uint64("id", uint64(id)))
	return ctx.JSON(http.StatusOK, r.mapper.Full(*updated))
}

// Delete removes the row and answers with it as it was.
func (r *Resource[T, A]) Delete(ctx echo.Context) error {
	id, problems := parseID(ctx)
	if problems != nil {
		return WriteValidationProblem(ctx, problems)
	}
	deleted, err := r.repo.Delete(ctx.Request().Context(), id)
	if err != nil {
		return r.ctrl.HandleError(ctx, err, fmt.Sprintf("failed to delete %s", r.repo.Entity()))
	}

	r.log.Info("deleted", logger.Uint64("id", uint64(id)))
	return ctx.JSON(http.StatusOK, r.mapper.Record(*deleted))
}
