package dbpedia

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"dbpediafacts/pkg/config"
	"dbpediafacts/pkg/logging"
	"dbpediafacts/pkg/request"
)

const (
	sparqlEndpoint = "http://dbpedia.inria.fr/sparql"
	defaultGraph   = "http://fr.dbpedia.org"
)

// Client runs the built-in SPARQL queries against the DBPedia endpoint.
type Client struct {
	request *request.Client
	// SPARQLEndpoint is fixed in production; tests point it at a local server.
	SPARQLEndpoint string
	DefaultGraph   string
	Logger         *slog.Logger
}

// NewClient creates a new DBPedia client. A nil request client gets default settings.
func NewClient(r *request.Client, logger *slog.Logger) *Client {
	if r == nil {
		r = request.New(config.RequestConfig{}, nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		request:        r,
		SPARQLEndpoint: sparqlEndpoint,
		DefaultGraph:   defaultGraph,
		Logger:         logger,
	}
}

// Resolver binds one resolved resource to a client.
type Resolver struct {
	client   *Client
	resource Resource
}

// Resolve normalizes identifier and returns a Resolver for it. It never fails.
func (c *Client) Resolve(identifier string) *Resolver {
	return &Resolver{client: c, resource: Resolve(identifier)}
}

// Resource returns the resolved resource.
func (r *Resolver) Resource() Resource {
	return r.resource
}

// FetchPopulationOrArea queries population and area for the resource.
// The result holds "population" and/or "area" with their raw values; it is empty when nothing matched.
func (r *Resolver) FetchPopulationOrArea(ctx context.Context) (Facts, error) {
	return r.client.firstRow(ctx, r.resource, populationQuery)
}

// FetchFlagOrBlazon queries flag and blazon image names for the resource.
// Spaces in the returned file names are replaced with underscores.
func (r *Resolver) FetchFlagOrBlazon(ctx context.Context) (Facts, error) {
	return r.client.firstRow(ctx, r.resource, imageQuery)
}

// FetchAll runs both queries and merges their facts. The first failing query aborts.
func (r *Resolver) FetchAll(ctx context.Context) (Facts, error) {
	facts, err := r.FetchPopulationOrArea(ctx)
	if err != nil {
		return nil, err
	}
	images, err := r.FetchFlagOrBlazon(ctx)
	if err != nil {
		return nil, err
	}
	facts.Merge(images)
	return facts, nil
}

// firstRow runs q for res and projects the first binding row through the query's fields.
func (c *Client) firstRow(ctx context.Context, res Resource, q query) (Facts, error) {
	subject, err := subjectIRI(res)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", q.name, err)
	}
	text := q.build(subject)
	logging.Trace(c.Logger, "SPARQL query", "query", q.name, "text", text)

	body, err := c.querySPARQL(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %s for %s: %w", ErrNetwork, q.name, res.URL, err)
	}

	var result sparqlResponse
	if err := json.Unmarshal(body, &result); err != nil {
		logging.Trace(c.Logger, "Undecodable SPARQL response", "query", q.name, "body", string(body))
		return nil, fmt.Errorf("%w: %s for %s: %w", ErrParse, q.name, res.URL, err)
	}

	facts := make(Facts)
	if len(result.Results.Bindings) == 0 {
		c.request.Tracker().TrackAPIZero(request.NormalizeProvider(hostOf(c.SPARQLEndpoint)))
		c.Logger.Debug("No facts found", "query", q.name, "resource", res.URL)
		return facts, nil
	}

	row := result.Results.Bindings[0]
	for _, f := range q.fields {
		v, ok := row[f.name]
		if !ok {
			continue
		}
		value := v.Value
		if f.policy == policyUnderscore {
			value = strings.ReplaceAll(value, " ", "_")
		}
		facts[f.name] = value
	}

	c.Logger.Debug("Facts fetched", "query", q.name, "resource", res.URL, "keys", len(facts), "rows", len(result.Results.Bindings))
	return facts, nil
}

func (c *Client) querySPARQL(ctx context.Context, text string) ([]byte, error) {
	u, err := url.Parse(c.SPARQLEndpoint)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	q.Set("default-graph-uri", c.DefaultGraph)
	q.Set("query", text)
	q.Set("format", "json")
	u.RawQuery = q.Encode()

	headers := map[string]string{
		"Accept": "application/sparql-results+json",
	}
	return c.request.GetWithHeaders(ctx, u.String(), headers)
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Host
}

// -- Internal parsing structs --

type sparqlResponse struct {
	Results struct {
		Bindings []map[string]sparqlValue `json:"bindings"`
	} `json:"results"`
}

type sparqlValue struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}
