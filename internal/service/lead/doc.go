// Package lead implements single-lead management: CRUD, on-create scoring,
// and per-feature score explanations.
//
// The service layer depends on repository interfaces defined in this package
// and should never import from api/. Repository implementations live in
// repository/postgres/.
package lead
