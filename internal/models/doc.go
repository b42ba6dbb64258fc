// Package models holds the wire shapes of the catalogue.
//
// Every entity has four projections of the stored row:
//
//   - Record: the flat row with foreign keys as ids
//   - Full: the record with referenced entities expanded recursively
//   - Intermediate: the record with referenced entities as Simple models
//   - Simple: {id, name} for dropdowns; keyword-only entities use the keyword
//
// and an API model, the body accepted by POST and PUT and by the HTML forms,
// which validates itself field by field and converts into the entity.
package models
