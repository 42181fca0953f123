package dbpedia

import (
	"regexp"
	"strings"
)

var (
	reDBPedia      = regexp.MustCompile(`^https?://(?P<namespace>\w+)?\.?dbpedia\.org/resource/(?P<resource>.+)$`)
	reMediaCommons = regexp.MustCompile(`^https?://commons\.wikimedia\.org/wiki/Special:FilePath/(?P<path>.+)$`)
)

// ToWikipediaID maps a DBPedia resource URI back to a Wikipedia identifier:
// "http://fr.dbpedia.org/resource/Paris" gives "fr:Paris", "http://dbpedia.org/resource/Paris" gives "Paris".
// The boolean is false when uri is not a DBPedia resource URI.
func ToWikipediaID(uri string) (string, bool) {
	m := reDBPedia.FindStringSubmatch(uri)
	if m == nil {
		return "", false
	}
	ns := m[reDBPedia.SubexpIndex("namespace")]
	name := m[reDBPedia.SubexpIndex("resource")]
	if ns == "" {
		return name, true
	}
	return ns + ":" + name, true
}

// WikipediaURLToID turns a Wikipedia article URL into a "ns:Name" identifier.
// Identifiers that already carry a namespace, and strings that are not article URLs, are returned unchanged.
func WikipediaURLToID(raw string) string {
	if strings.Contains(raw, ":") && !strings.HasPrefix(raw, "http:") && !strings.HasPrefix(raw, "https:") {
		return raw
	}
	m := reWikipedia.FindStringSubmatch(raw)
	if m == nil {
		return raw
	}
	ns := m[reWikipedia.SubexpIndex("namespace")]
	name := m[reWikipedia.SubexpIndex("resource")]
	if ns == "" {
		return name
	}
	return ns + ":" + name
}

// MediaURLToPath strips the Wikimedia Commons Special:FilePath prefix, leaving the file name.
// Other strings are returned unchanged.
func MediaURLToPath(raw string) string {
	return reMediaCommons.ReplaceAllString(raw, "${path}")
}
