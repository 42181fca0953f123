package dbpedia

import "errors"

var (
	// ErrNetwork indicates a transport failure or a non-2xx response from the endpoint.
	ErrNetwork = errors.New("dbpedia network error")
	// ErrParse indicates the response body was not valid SPARQL JSON.
	ErrParse = errors.New("dbpedia parse error")
	// ErrInvalidResource indicates a resource URL that cannot be written as a SPARQL IRI.
	ErrInvalidResource = errors.New("dbpedia invalid resource")
)
