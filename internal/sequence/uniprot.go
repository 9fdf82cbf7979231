package sequence

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	defaultBaseURL   = "https://rest.uniprot.org"
	defaultUserAgent = "vaxscreen/1.0"
	searchFanOut     = 5
)

// Fetcher retrieves protein records by identifier or search term. The
// UniProt client implements it; the redis cache decorates it.
type Fetcher interface {
	FetchByID(ctx context.Context, proteinID string) (*ProteinRecord, error)
	Search(ctx context.Context, term string, max int) ([]ProteinRecord, error)
}

// Client queries the UniProt REST API.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

var _ Fetcher = (*Client)(nil)

// ClientConfig configures the UniProt client.
type ClientConfig struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
}

// NewClient builds a UniProt client with sane defaults.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		httpClient: cfg.HTTPClient,
	}
}

// entry mirrors the slice of the UniProtKB JSON payload this service reads.
type entry struct {
	PrimaryAccession   string `json:"primaryAccession"`
	UniProtkbID        string `json:"uniProtkbId"`
	ProteinDescription struct {
		RecommendedName struct {
			FullName struct {
				Value string `json:"value"`
			} `json:"fullName"`
		} `json:"recommendedName"`
		AlternativeNames []struct {
			FullName struct {
				Value string `json:"value"`
			} `json:"fullName"`
		} `json:"alternativeNames"`
	} `json:"proteinDescription"`
	Organism struct {
		ScientificName string `json:"scientificName"`
	} `json:"organism"`
	Sequence struct {
		Value  string `json:"value"`
		Length int    `json:"length"`
	} `json:"sequence"`
	Keywords []struct {
		Name string `json:"name"`
	} `json:"keywords"`
	Comments []struct {
		CommentType          string `json:"commentType"`
		SubcellularLocations []struct {
			Location struct {
				Value string `json:"value"`
			} `json:"location"`
		} `json:"subcellularLocations"`
	} `json:"comments"`
}

// FetchByID retrieves a single protein by UniProt accession.
// Returns ErrNotFound for unknown accessions.
func (c *Client) FetchByID(ctx context.Context, proteinID string) (*ProteinRecord, error) {
	u := fmt.Sprintf("%s/uniprotkb/%s.json", c.baseURL, url.PathEscape(proteinID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("uniprot: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("uniprot: fetch %s: %w", proteinID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("uniprot: %s: %w", proteinID, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("uniprot: fetch %s: unexpected status %s", proteinID, resp.Status)
	}

	var e entry
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		return nil, fmt.Errorf("uniprot: decode %s: %w", proteinID, err)
	}

	rec := e.toRecord()
	rec.ProteinID = proteinID
	return &rec, nil
}

// Search runs a UniProtKB query and resolves up to max matching accessions to
// full records, fanning the detail fetches out under the shared context.
func (c *Client) Search(ctx context.Context, term string, max int) ([]ProteinRecord, error) {
	q := url.Values{}
	q.Set("query", term)
	q.Set("fields", "accession")
	q.Set("format", "json")
	q.Set("size", strconv.Itoa(max))
	u := fmt.Sprintf("%s/uniprotkb/search?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("uniprot: build search request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("uniprot: search %q: %w", term, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("uniprot: search %q: unexpected status %s", term, resp.Status)
	}

	var page struct {
		Results []struct {
			PrimaryAccession string `json:"primaryAccession"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("uniprot: decode search %q: %w", term, err)
	}
	if len(page.Results) == 0 {
		return nil, nil
	}

	records := make([]*ProteinRecord, len(page.Results))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(searchFanOut)
	for i, r := range page.Results {
		g.Go(func() error {
			rec, err := c.FetchByID(gctx, r.PrimaryAccession)
			if err != nil {
				return err
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]ProteinRecord, 0, len(records))
	for _, rec := range records {
		if rec != nil {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (e entry) toRecord() ProteinRecord {
	rec := ProteinRecord{
		ProteinID:           e.PrimaryAccession,
		Name:                e.proteinName(),
		Sequence:            e.Sequence.Value,
		Organism:            e.Organism.ScientificName,
		Length:              e.Sequence.Length,
		SubcellularLocation: e.subcellularLocation(),
		Source:              SourceUniProt,
	}
	if rec.Organism == "" {
		rec.Organism = "Unknown organism"
	}
	for _, kw := range e.Keywords {
		if kw.Name != "" {
			rec.Keywords = append(rec.Keywords, kw.Name)
		}
	}
	return rec
}

func (e entry) proteinName() string {
	if v := e.ProteinDescription.RecommendedName.FullName.Value; v != "" {
		return v
	}
	if alts := e.ProteinDescription.AlternativeNames; len(alts) > 0 && alts[0].FullName.Value != "" {
		return alts[0].FullName.Value
	}
	if e.UniProtkbID != "" {
		return e.UniProtkbID
	}
	return "Unknown protein"
}

func (e entry) subcellularLocation() string {
	for _, c := range e.Comments {
		if c.CommentType == "SUBCELLULAR LOCATION" && len(c.SubcellularLocations) > 0 {
			if v := c.SubcellularLocations[0].Location.Value; v != "" {
				return v
			}
		}
	}
	return "Unknown"
}
