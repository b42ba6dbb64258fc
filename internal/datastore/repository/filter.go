package repository

import "gorm.io/gorm"

// Filter narrows list queries by foreign key. Unset fields are ignored, as
// are fields the entity has no column for.
type Filter struct {
	MethodFamilyID                         *uint
	ElectronicStateID                      *uint
	SpinStateID                            *uint
	ElectronicStateMethodFamilyID          *uint
	SpinStateElectronicStateMethodFamilyID *uint
	BaseMethodID                           *uint
}

// IsZero reports whether no filter is set.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// filterColumn binds a Filter field to a column of one table.
type filterColumn struct {
	column string
	value  func(Filter) *uint
}

var (
	byMethodFamily    = func(f Filter) *uint { return f.MethodFamilyID }
	byElectronicState = func(f Filter) *uint { return f.ElectronicStateID }
	bySpinState       = func(f Filter) *uint { return f.SpinStateID }
	byESMF            = func(f Filter) *uint { return f.ElectronicStateMethodFamilyID }
	bySSEMF           = func(f Filter) *uint { return f.SpinStateElectronicStateMethodFamilyID }
	byBaseMethod      = func(f Filter) *uint { return f.BaseMethodID }
)

func applyFilter(db *gorm.DB, columns []filterColumn, f Filter) *gorm.DB {
	for _, c := range columns {
		if v := c.value(f); v != nil {
			db = db.Where(c.column+" = ?", *v)
		}
	}
	return db
}
