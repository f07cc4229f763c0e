// Package loader reads league schedule exports into tables of named cells.
//
// Exports are semicolon separated text files whose encoding is not declared.
// The loader tries a configured list of encodings, skips malformed lines,
// rejects HTML error pages saved under a .csv name, and maps the export's
// German column headers onto schedule fields.
package loader
