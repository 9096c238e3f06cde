// Package ingest implements the row-level stages of the bulk lead pipeline:
// decoding uploaded delimited text into raw rows, uniform down-sampling, and
// normalizing free-text categorical values into the numeric codes the CRM
// stores. All stages are pure and never touch the network or database.
package ingest
