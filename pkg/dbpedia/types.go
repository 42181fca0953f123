package dbpedia

// Fact keys returned by the two built-in queries.
const (
	KeyPopulation = "population"
	KeyArea       = "area"
	KeyFlag       = "flag"
	KeyBlazon     = "blazon"
)

// Facts maps a fact key to its value as returned by the endpoint.
// A key is present only when the query bound it; an empty map means nothing was found.
type Facts map[string]string

// Get returns the value for key and whether it was present.
func (f Facts) Get(key string) (string, bool) {
	v, ok := f[key]
	return v, ok
}

// Merge copies every key of other into f, overwriting existing values.
func (f Facts) Merge(other Facts) {
	for k, v := range other {
		f[k] = v
	}
}

// Kind tags which identifier form produced a Resource.
type Kind int

const (
	KindBare Kind = iota
	KindNamespaced
	KindWikipediaURL
)

func (k Kind) String() string {
	switch k {
	case KindNamespaced:
		return "namespaced"
	case KindWikipediaURL:
		return "wikipedia_url"
	default:
		return "bare"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Resource is a resolved DBPedia resource. It is a value type and never mutated after Resolve.
type Resource struct {
	Kind      Kind   `json:"kind"`
	Namespace string `json:"namespace,omitempty"`
	BaseURL   string `json:"base_url"`
	Name      string `json:"resource"`
	URL       string `json:"resource_url"`
}
