package repository

import (
	"github.com/qchem/gausscat/internal/datastore/entities"
	"gorm.io/gorm"
)

// Repositories bundles every repository over one database handle.
type Repositories struct {
	CalculationTypes                       Repository[entities.CalculationType]
	SpinStates                             Repository[entities.SpinState]
	ElectronicStates                       Repository[entities.ElectronicState]
	MethodFamilies                         Repository[entities.MethodFamily]
	BaseMethods                            Repository[entities.BaseMethod]
	ElectronicStateMethodFamilies          Repository[entities.ElectronicStateMethodFamily]
	SpinStateElectronicStateMethodFamilies Repository[entities.SpinStateElectronicStateMethodFamily]
	FullMethods                            Repository[entities.FullMethod]

	Users UserRepository
	Roles RoleRepository
}

// New creates all repositories.
func New(db *gorm.DB, opts Options) *Repositories {
	return &Repositories{
		CalculationTypes:                       NewCalculationTypeRepository(db, opts),
		SpinStates:                             NewSpinStateRepository(db, opts),
		ElectronicStates:                       NewElectronicStateRepository(db, opts),
		MethodFamilies:                         NewMethodFamilyRepository(db, opts),
		BaseMethods:                            NewBaseMethodRepository(db, opts),
		ElectronicStateMethodFamilies:          NewElectronicStateMethodFamilyRepository(db, opts),
		SpinStateElectronicStateMethodFamilies: NewSpinStateElectronicStateMethodFamilyRepository(db, opts),
		FullMethods:                            NewFullMethodRepository(db, opts),
		Users:                                  NewUserRepository(db),
		Roles:                                  NewRoleRepository(db),
	}
}

// WithTx returns repositories bound to tx. Catalogue writes through them
// publish no change events.
func (r *Repositories) WithTx(tx *gorm.DB) *Repositories {
	return &Repositories{
		CalculationTypes:                       r.CalculationTypes.WithTx(tx),
		SpinStates:                             r.SpinStates.WithTx(tx),
		ElectronicStates:                       r.ElectronicStates.WithTx(tx),
		MethodFamilies:                         r.MethodFamilies.WithTx(tx),
		BaseMethods:                            r.BaseMethods.WithTx(tx),
		ElectronicStateMethodFamilies:          r.ElectronicStateMethodFamilies.WithTx(tx),
		SpinStateElectronicStateMethodFamilies: r.SpinStateElectronicStateMethodFamilies.WithTx(tx),
		FullMethods:                            r.FullMethods.WithTx(tx),
		Users:                                  NewUserRepository(tx),
		Roles:                                  NewRoleRepository(tx),
	}
}
