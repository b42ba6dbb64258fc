// Package entities defines the GORM models of the Gaussian calculation catalogue.
//
// # Base Entities
//
//   - CalculationType: job types such as single point or optimisation (SP, Opt)
//   - SpinState: restricted/unrestricted/restricted-open shell (R, U, RO)
//   - ElectronicState: ground or excited state treatment (TD, CIS, ...)
//   - MethodFamily: DFT, Hartree-Fock, MPn, coupled cluster, ...
//   - BaseMethod: a concrete method keyword belonging to one family (B3LYP, MP2)
//
// # Combination Entities
//
//   - ElectronicStateMethodFamily: electronic state × method family
//   - SpinStateElectronicStateMethodFamily: spin state × the above
//   - FullMethod: spin/state/family triple + base method, i.e. a full route keyword
//
// # Identity
//
//   - User, Role, UserRole, UserClaim, RoleClaim
package entities
