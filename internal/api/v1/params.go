// internal/api/v1/params.go
package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/qchem/gausscat/internal/datastore/repository"
)

// filterParam binds one query parameter to a repository.Filter field.
type filterParam struct {
	name string
	set  func(*repository.Filter, uint)
}

var (
	filterMethodFamily = filterParam{repository.FieldMethodFamilyID, func(f *repository.Filter, v uint) {
		f.MethodFamilyID = &v
	}}
	filterElectronicState = filterParam{repository.FieldElectronicStateID, func(f *repository.Filter, v uint) {
		f.ElectronicStateID = &v
	}}
	filterSpinState = filterParam{repository.FieldSpinStateID, func(f *repository.Filter, v uint) {
		f.SpinStateID = &v
	}}
	filterESMF = filterParam{repository.FieldElectronicStateMethodFamilyID, func(f *repository.Filter, v uint) {
		f.ElectronicStateMethodFamilyID = &v
	}}
	filterSSEMF = filterParam{repository.FieldSpinStateElectronicStateMethodFamilyID, func(f *repository.Filter, v uint) {
		f.SpinStateElectronicStateMethodFamilyID = &v
	}}
	filterBaseMethod = filterParam{repository.FieldBaseMethodID, func(f *repository.Filter, v uint) {
		f.BaseMethodID = &v
	}}
)

// parseID reads the :id route parameter. A nil map means success.
func parseID(ctx echo.Context) (uint, map[string][]string) {
	raw := ctx.Param("id")
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil {
		return 0, map[string][]string{"id": {invalidValue(raw)}}
	}
	return uint(id), nil
}

// parseFilter reads the filter parameters the entity supports. Others are ignored.
func parseFilter(ctx echo.Context, params []filterParam) (repository.Filter, map[string][]string) {
	var filter repository.Filter
	var problems map[string][]string
	for _, p := range params {
		raw := strings.TrimSpace(ctx.QueryParam(p.name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseUint(raw, 10, 0)
		if err != nil {
			if problems == nil {
				problems = map[string][]string{}
			}
			problems[p.name] = append(problems[p.name], invalidValue(raw))
			continue
		}
		p.set(&filter, uint(v))
	}
	return filter, problems
}

func invalidValue(raw string) string {
	return fmt.Sprintf("The value '%s' is not valid.", raw)
}
