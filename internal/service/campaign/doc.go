// Package campaign implements outreach campaign management.
//
// Campaigns group leads for a sales push. The service layer owns the status
// lifecycle and lead assignment rules; it depends on the repository interface
// defined in this package and should never import from api/.
//
// Repository implementations live in repository/postgres/.
package campaign
