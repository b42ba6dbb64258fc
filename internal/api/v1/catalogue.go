// internal/api/v1/catalogue.go
package api

import (
	"github.com/labstack/echo/v4"
	"github.com/qchem/gausscat/internal/datastore/entities"
	"github.com/qchem/gausscat/internal/factory"
	"github.com/qchem/gausscat/internal/models"
)

// registrar is implemented by every Resource instantiation.
type registrar interface {
	Register(g *echo.Group, write ...echo.MiddlewareFunc)
}

// catalogueControllers returns one controller factory per entity.
func (c *Controller) catalogueControllers() []*factory.Factory[registrar] {
	r := c.Repos
	log := c.log.Module("factory")
	return []*factory.Factory[registrar]{
		factory.New(func() registrar {
			return NewResource[entities.CalculationType, models.CalculationTypeAPI](c, r.CalculationTypes, models.CalculationTypeMapper)
		}, log),
		factory.New(func() registrar {
			return NewResource[entities.SpinState, models.SpinStateAPI](c, r.SpinStates, models.SpinStateMapper)
		}, log),
		factory.New(func() registrar {
			return NewResource[entities.ElectronicState, models.ElectronicStateAPI](c, r.ElectronicStates, models.ElectronicStateMapper)
		}, log),
		factory.New(func() registrar {
			return NewResource[entities.MethodFamily, models.MethodFamilyAPI](c, r.MethodFamilies, models.MethodFamilyMapper)
		}, log),
		factory.New(func() registrar {
			return NewResource[entities.BaseMethod, models.BaseMethodAPI](c, r.BaseMethods, models.BaseMethodMapper,
				filterMethodFamily)
		}, log),
		factory.New(func() registrar {
			return NewResource[entities.ElectronicStateMethodFamily, models.ElectronicStateMethodFamilyAPI](c,
				r.ElectronicStateMethodFamilies, models.ElectronicStateMethodFamilyMapper,
				filterElectronicState, filterMethodFamily)
		}, log),
		factory.New(func() registrar {
			return NewResource[entities.SpinStateElectronicStateMethodFamily, models.SpinStateElectronicStateMethodFamilyAPI](c,
				r.SpinStateElectronicStateMethodFamilies, models.SpinStateElectronicStateMethodFamilyMapper,
				filterSpinState, filterESMF)
		}, log),
		factory.New(func() registrar {
			return NewResource[entities.FullMethod, models.FullMethodAPI](c, r.FullMethods, models.FullMethodMapper,
				filterSSEMF, filterBaseMethod)
		}, log),
	}
}

func (c *Controller) initCatalogueRoutes() {
	write := c.writeGuard()
	for _, f := range c.catalogueControllers() {
		f.Create().Register(c.Group, write...)
	}
}
