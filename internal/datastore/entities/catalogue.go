package entities

// Entity names as used in routes, events and metrics.
const (
	EntityCalculationType                      = "CalculationType"
	EntitySpinState                            = "SpinState"
	EntityElectronicState                      = "ElectronicState"
	EntityMethodFamily                         = "MethodFamily"
	EntityBaseMethod                           = "BaseMethod"
	EntityElectronicStateMethodFamily          = "ElectronicStateMethodFamily"
	EntitySpinStateElectronicStateMethodFamily = "SpinStateElectronicStateMethodFamily"
	EntityFullMethod                           = "FullMethod"
)

// Record is implemented by every catalogue entity.
type Record interface {
	PrimaryKey() uint
	EntityName() string
}

// CalculationType is a Gaussian job type.
type CalculationType struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:100;not null;uniqueIndex:idx_calculation_type_name"`
	Keyword     string `gorm:"size:50;not null;uniqueIndex:idx_calculation_type_keyword"`
	Description string `gorm:"size:2000"`
}

func (CalculationType) TableName() string  { return "calculation_types" }
func (e CalculationType) PrimaryKey() uint { return e.ID }
func (CalculationType) EntityName() string { return EntityCalculationType }

// SpinState is the reference wavefunction treatment of spin.
type SpinState struct {
	ID      uint   `gorm:"primaryKey"`
	Name    string `gorm:"size:100;not null;uniqueIndex:idx_spin_state_name"`
	Keyword string `gorm:"size:50;not null;uniqueIndex:idx_spin_state_keyword"`
}

func (SpinState) TableName() string  { return "spin_states" }
func (e SpinState) PrimaryKey() uint { return e.ID }
func (SpinState) EntityName() string { return EntitySpinState }

// ElectronicState selects ground or excited state methods. The ground state
// has an empty keyword.
type ElectronicState struct {
	ID      uint   `gorm:"primaryKey"`
	Name    string `gorm:"size:100;not null;uniqueIndex:idx_electronic_state_name"`
	Keyword string `gorm:"size:50;not null;default:''"`
}

func (ElectronicState) TableName() string  { return "electronic_states" }
func (e ElectronicState) PrimaryKey() uint { return e.ID }
func (ElectronicState) EntityName() string { return EntityElectronicState }

// MethodFamily groups related base methods.
type MethodFamily struct {
	ID              uint   `gorm:"primaryKey"`
	Name            string `gorm:"size:100;not null;uniqueIndex:idx_method_family_name"`
	Keyword         string `gorm:"size:50;not null;default:''"`
	DescriptiveName string `gorm:"size:200"`
	Description     string `gorm:"size:2000"`
}

func (MethodFamily) TableName() string  { return "method_families" }
func (e MethodFamily) PrimaryKey() uint { return e.ID }
func (MethodFamily) EntityName() string { return EntityMethodFamily }

// BaseMethod is one method keyword within a family.
type BaseMethod struct {
	ID              uint   `gorm:"primaryKey"`
	Keyword         string `gorm:"size:50;not null;uniqueIndex:idx_base_method_keyword"`
	DescriptiveName string `gorm:"size:200"`
	MethodFamilyID  uint   `gorm:"not null;index"`

	MethodFamily *MethodFamily `gorm:"foreignKey:MethodFamilyID;constraint:OnDelete:RESTRICT"`
}

func (BaseMethod) TableName() string  { return "base_methods" }
func (e BaseMethod) PrimaryKey() uint { return e.ID }
func (BaseMethod) EntityName() string { return EntityBaseMethod }

// ElectronicStateMethodFamily pairs an electronic state with an optional
// method family.
type ElectronicStateMethodFamily struct {
	ID                uint   `gorm:"primaryKey"`
	Name              string `gorm:"size:100;not null"`
	Keyword           string `gorm:"size:50;not null;default:''"`
	DescriptiveName   string `gorm:"size:200"`
	ElectronicStateID uint   `gorm:"not null;uniqueIndex:idx_esmf_pair"`
	MethodFamilyID    *uint  `gorm:"uniqueIndex:idx_esmf_pair;index"`

	ElectronicState *ElectronicState `gorm:"foreignKey:ElectronicStateID;constraint:OnDelete:RESTRICT"`
	MethodFamily    *MethodFamily    `gorm:"foreignKey:MethodFamilyID;constraint:OnDelete:RESTRICT"`
}

func (ElectronicStateMethodFamily) TableName() string  { return "electronic_state_method_families" }
func (e ElectronicStateMethodFamily) PrimaryKey() uint { return e.ID }
func (ElectronicStateMethodFamily) EntityName() string { return EntityElectronicStateMethodFamily }

// SpinStateElectronicStateMethodFamily adds an optional spin state to an
// ElectronicStateMethodFamily.
type SpinStateElectronicStateMethodFamily struct {
	ID                            uint   `gorm:"primaryKey"`
	Name                          string `gorm:"size:100;not null"`
	Keyword                       string `gorm:"size:50;not null;default:''"`
	DescriptiveName               string `gorm:"size:200"`
	SpinStateID                   *uint  `gorm:"uniqueIndex:idx_ssemf_pair;index"`
	ElectronicStateMethodFamilyID uint   `gorm:"not null;uniqueIndex:idx_ssemf_pair"`

	SpinState                   *SpinState                   `gorm:"foreignKey:SpinStateID;constraint:OnDelete:RESTRICT"`
	ElectronicStateMethodFamily *ElectronicStateMethodFamily `gorm:"foreignKey:ElectronicStateMethodFamilyID;constraint:OnDelete:RESTRICT"`
}

func (SpinStateElectronicStateMethodFamily) TableName() string {
	return "spin_state_electronic_state_method_families"
}

func (e SpinStateElectronicStateMethodFamily) PrimaryKey() uint { return e.ID }

func (SpinStateElectronicStateMethodFamily) EntityName() string {
	return EntitySpinStateElectronicStateMethodFamily
}

// FullMethod is a complete method route keyword, e.g. "UB3LYP" or "TD-CAM-B3LYP".
type FullMethod struct {
	ID                                     uint   `gorm:"primaryKey"`
	Keyword                                string `gorm:"size:50;not null;uniqueIndex:idx_full_method_keyword"`
	DescriptiveName                        string `gorm:"size:200"`
	SpinStateElectronicStateMethodFamilyID uint   `gorm:"not null;uniqueIndex:idx_full_method_pair"`
	BaseMethodID                           uint   `gorm:"not null;uniqueIndex:idx_full_method_pair;index"`

	SpinStateElectronicStateMethodFamily *SpinStateElectronicStateMethodFamily `gorm:"foreignKey:SpinStateElectronicStateMethodFamilyID;constraint:OnDelete:RESTRICT"`
	BaseMethod                           *BaseMethod                           `gorm:"foreignKey:BaseMethodID;constraint:OnDelete:RESTRICT"`
}

func (FullMethod) TableName() string  { return "full_methods" }
func (e FullMethod) PrimaryKey() uint { return e.ID }
func (FullMethod) EntityName() string { return EntityFullMethod }

// All returns every catalogue and identity model in dependency order for
// AutoMigrate.
func All() []any {
	return []any{
		&CalculationType{},
		&SpinState{},
		&ElectronicState{},
		&MethodFamily{},
		&BaseMethod{},
		&ElectronicStateMethodFamily{},
		&SpinStateElectronicStateMethodFamily{},
		&FullMethod{},
		&User{},
		&Role{},
		&UserRole{},
		&UserClaim{},
		&RoleClaim{},
	}
}
