package dbpedia

import (
	"fmt"
	"strings"

	"github.com/cayleygraph/quad"
)

// Predicates queried on the French DBPedia with their international counterparts as fallbacks.
var (
	frPopulation  = quad.IRI("http://fr.dbpedia.org/property/population")
	frSuperficie  = quad.IRI("http://fr.dbpedia.org/property/superficie")
	ontPopulation = quad.IRI("http://dbpedia.org/ontology/populationTotal")
	ontArea       = quad.IRI("http://dbpedia.org/ontology/area")
	ontFlag       = quad.IRI("http://dbpedia.org/ontology/flag")
	ontBlazon     = quad.IRI("http://dbpedia.org/ontology/blazon")
)

// subjectIRI returns the resource URL as an IRI term. URLs holding characters that
// an IRIREF cannot contain would break out of the <...> term and are rejected.
func subjectIRI(res Resource) (quad.IRI, error) {
	if res.URL == "" {
		return "", fmt.Errorf("%w: empty resource url", ErrInvalidResource)
	}
	if i := strings.IndexFunc(res.URL, invalidIRIRune); i >= 0 {
		return "", fmt.Errorf("%w: %q contains %q", ErrInvalidResource, res.URL, res.URL[i])
	}
	return quad.IRI(res.URL), nil
}

func invalidIRIRune(r rune) bool {
	return r <= 0x20 || strings.ContainsRune("<>\"{}|^`\\", r)
}

// valuePolicy controls how a bound value is copied into Facts.
type valuePolicy int

const (
	policyRaw valuePolicy = iota
	// policyUnderscore replaces spaces with underscores, matching MediaWiki file names.
	policyUnderscore
)

type field struct {
	name   string
	policy valuePolicy
}

// query is one of the built-in SELECT templates together with the fields it projects.
type query struct {
	name   string
	build  func(subject quad.IRI) string
	fields []field
}

var populationQuery = query{
	name: "population_or_area",
	build: func(s quad.IRI) string {
		return fmt.Sprintf(`SELECT ?population ?area WHERE {
    {%s %s|
                     %s ?population}
UNION
    {%s %s|
                     %s ?area}
}`, s, frPopulation, ontPopulation, s, frSuperficie, ontArea)
	},
	fields: []field{
		{name: KeyPopulation, policy: policyRaw},
		{name: KeyArea, policy: policyRaw},
	},
}

var imageQuery = query{
	name: "flag_or_blazon",
	build: func(s quad.IRI) string {
		return fmt.Sprintf(`SELECT ?flag ?blazon WHERE {
    {%s %s ?flag}
UNION
    {%s %s ?blazon}
}`, s, ontFlag, s, ontBlazon)
	},
	fields: []field{
		{name: KeyFlag, policy: policyUnderscore},
		{name: KeyBlazon, policy: policyUnderscore},
	},
}
