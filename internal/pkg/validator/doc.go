// Package validator provides a small validation abstraction for request and
// domain structs.
//
// Business code depends on the Validator interface. The go-playground v10
// implementation adds two rules used by mail requests:
//
//	step=N   numeric field must be a multiple of N (quality slider steps)
//	pdfname  string must be a file name ending in .pdf (any case)
package validator
