// Package domain holds the shared domain model for the lead-scoring CRM.
//
// Types here are plain data with no behaviour beyond small helpers; business
// logic lives in internal/service and persistence in internal/repository.
package domain
