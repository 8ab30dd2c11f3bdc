// Package menu loads product menus written in CUE and compiles them into
// catalog records for bulk import.
//
// A menu directory holds one CUE package. Its product struct is unified
// with the embedded schema (schema.cue), so structural mistakes such as a
// zero price or a misspelled status are reported with file positions
// before any record is built. Category values accept the enum key or its
// Thai display label.
package menu
