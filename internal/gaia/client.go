package gaia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
)

// DefaultEndpoint is the public Gaia archive TAP service.
const DefaultEndpoint = "https://gea.esac.esa.int/tap-server/tap"

// sourceTable is the catalog table queried for cone searches.
const sourceTable = "gaiadr2.gaia_source"

// HTTPDoer describes the HTTP client used by the catalog client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client issues cone-search queries against a TAP sync endpoint.
type Client struct {
	endpoint string
	http     HTTPDoer
	maxRows  int
}

// NewClient constructs a catalog client. A nil doer falls back to
// http.DefaultClient; callers owning timeouts should inject their own.
func NewClient(endpoint string, doer HTTPDoer) *Client {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultEndpoint
	}
	if doer == nil {
		doer = http.DefaultClient
	}
	return &Client{
		endpoint: strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		http:     doer,
		maxRows:  50,
	}
}

// Coord is a sky position in ICRS degrees.
type Coord struct {
	RA  float64
	Dec float64
}

// SourceBand carries the raw per-band catalog photometry for one candidate.
type SourceBand struct {
	Mag     float64
	Flux    float64
	FluxErr float64
}

// SourceRow is one cone-search candidate, nearest-first as returned by the
// service.
type SourceRow struct {
	SourceID    int64
	Parallax    float64
	ParallaxErr float64
	G           SourceBand
	BP          SourceBand
	RP          SourceBand
	DistArcsec  float64
}

// band returns the photometry for a band by name.
func (r *SourceRow) band(name string) SourceBand {
	switch name {
	case "BP":
		return r.BP
	case "RP":
		return r.RP
	default:
		return r.G
	}
}

// coneColumns lists the TAP output columns in the order they are requested.
var coneColumns = []string{
	"source_id",
	"parallax", "parallax_error",
	"phot_g_mean_mag", "phot_g_mean_flux", "phot_g_mean_flux_error",
	"phot_bp_mean_mag", "phot_bp_mean_flux", "phot_bp_mean_flux_error",
	"phot_rp_mean_mag", "phot_rp_mean_flux", "phot_rp_mean_flux_error",
}

// ConeSearch runs a cone search of the given radius (arcseconds) around the
// coordinates and returns candidate rows ordered by angular distance.
func (c *Client) ConeSearch(ctx context.Context, coord Coord, radiusArcsec float64) ([]SourceRow, error) {
	radiusDeg := radiusArcsec / 3600.0
	query := fmt.Sprintf(
		"SELECT TOP %d %s, DISTANCE(POINT('ICRS', ra, dec), POINT('ICRS', %.9f, %.9f)) AS dist"+
			" FROM %s"+
			" WHERE 1=CONTAINS(POINT('ICRS', ra, dec), CIRCLE('ICRS', %.9f, %.9f, %.9f))"+
			" ORDER BY dist ASC",
		c.maxRows, strings.Join(coneColumns, ", "),
		coord.RA, coord.Dec, sourceTable, coord.RA, coord.Dec, radiusDeg,
	)

	form := url.Values{}
	form.Set("REQUEST", "doQuery")
	form.Set("LANG", "ADQL")
	form.Set("FORMAT", "json")
	form.Set("QUERY", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/sync", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build cone search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cone search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("cone search returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return parseTAPResponse(resp.Body)
}

// tapResponse is the TAP json serialization: column metadata plus row-major
// data with nulls for missing values.
type tapResponse struct {
	Metadata []struct {
		Name string `json:"name"`
	} `json:"metadata"`
	Data [][]json.RawMessage `json:"data"`
}

func parseTAPResponse(body io.Reader) ([]SourceRow, error) {
	var payload tapResponse
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode cone search response: %w", err)
	}

	index := make(map[string]int, len(payload.Metadata))
	for i, col := range payload.Metadata {
		index[strings.ToLower(col.Name)] = i
	}

	rows := make([]SourceRow, 0, len(payload.Data))
	for _, cells := range payload.Data {
		cell := func(name string) json.RawMessage {
			i, ok := index[name]
			if !ok || i >= len(cells) {
				return nil
			}
			return cells[i]
		}
		row := SourceRow{
			SourceID:    cellInt(cell("source_id")),
			Parallax:    cellFloat(cell("parallax")),
			ParallaxErr: cellFloat(cell("parallax_error")),
			DistArcsec:  cellFloat(cell("dist")) * 3600.0,
		}
		for _, band := range Bands {
			lower := strings.ToLower(band)
			sb := SourceBand{
				Mag:     cellFloat(cell("phot_" + lower + "_mean_mag")),
				Flux:    cellFloat(cell("phot_" + lower + "_mean_flux")),
				FluxErr: cellFloat(cell("phot_" + lower + "_mean_flux_error")),
			}
			switch band {
			case "G":
				row.G = sb
			case "BP":
				row.BP = sb
			case "RP":
				row.RP = sb
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// cellFloat parses a numeric cell; nulls and malformed values become NaN so
// the finiteness checks in Lookup reject them uniformly.
func cellFloat(raw json.RawMessage) float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return math.NaN()
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return math.NaN()
	}
	return v
}

func cellInt(raw json.RawMessage) int64 {
	if len(raw) == 0 || string(raw) == "null" {
		return 0
	}
	var v int64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0
	}
	return v
}
