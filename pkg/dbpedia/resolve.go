package dbpedia

import (
	"regexp"
	"strings"
)

const (
	defaultBaseURL = "http://dbpedia.org"

	// Seen in source data: the language prefix duplicated, e.g. fr:fr:Communauté_de_communes_d'Altkirch
	duplicatedPrefix = "fr:fr:"
)

var reWikipedia = regexp.MustCompile(`^https?://(?P<namespace>\w+)?\.?wikipedia\.org/wiki/(?P<resource>.+)$`)

// matcher recognises one identifier form. Matchers are tried in order; the first hit wins.
type matcher func(id string) (kind Kind, namespace, name string, ok bool)

var matchers = []matcher{
	matchDuplicatedPrefix,
	matchNamespaced,
	matchWikipediaURL,
	matchBare,
}

func matchDuplicatedPrefix(id string) (Kind, string, string, bool) {
	if !strings.HasPrefix(id, duplicatedPrefix) {
		return 0, "", "", false
	}
	// namespace:namespace:name, anything after the second colon is the name
	parts := strings.SplitN(id, ":", 3)
	return KindNamespaced, parts[0], parts[2], true
}

func matchNamespaced(id string) (Kind, string, string, bool) {
	if strings.HasPrefix(id, "http") {
		return 0, "", "", false
	}
	ns, name, found := strings.Cut(id, ":")
	if !found {
		return 0, "", "", false
	}
	return KindNamespaced, ns, name, true
}

func matchWikipediaURL(id string) (Kind, string, string, bool) {
	m := reWikipedia.FindStringSubmatch(id)
	if m == nil {
		return 0, "", "", false
	}
	return KindWikipediaURL, m[reWikipedia.SubexpIndex("namespace")], m[reWikipedia.SubexpIndex("resource")], true
}

func matchBare(id string) (Kind, string, string, bool) {
	return KindBare, "", id, true
}

// Resolve normalizes an identifier into a DBPedia resource. It never fails:
// anything unrecognised is taken as a bare resource name on the default DBPedia.
//
// Accepted forms are "Name", "ns:Name", "https://ns.wikipedia.org/wiki/Name"
// and the malformed "fr:fr:Name". Spaces become underscores before matching.
func Resolve(identifier string) Resource {
	id := strings.ReplaceAll(strings.TrimSpace(identifier), " ", "_")

	for _, m := range matchers {
		kind, ns, name, ok := m(id)
		if !ok {
			continue
		}
		return NewResource(kind, ns, name)
	}
	// matchBare always matches
	panic("unreachable")
}

// NewResource builds a Resource from an already split namespace and name.
// An empty namespace selects the default DBPedia.
func NewResource(kind Kind, namespace, name string) Resource {
	base := defaultBaseURL
	if namespace != "" {
		base = "http://" + namespace + ".dbpedia.org"
	}
	return Resource{
		Kind:      kind,
		Namespace: namespace,
		BaseURL:   base,
		Name:      name,
		URL:       base + "/resource/" + name,
	}
}
