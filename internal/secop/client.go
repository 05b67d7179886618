// Package secop pulls contracting processes from the SECOP II open data API
// (Socrata/SODA) and maps them to local tender records.
package secop

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"procura_backend/internal/logger"
	"procura_backend/internal/models"
)

type Config struct {
	BaseURL  string // e.g. https://www.datos.gov.co/resource
	Resource string // SODA resource id, e.g. jbjy-vk9h
	PageSize int
	AppToken string // optional X-App-Token, lifts rate limits
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 50
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// record mirrors the SODA JSON schema of the SECOP II dataset. All fields
// arrive as strings; numbers and dates are parsed locally.
type record struct {
	ProcesoDeCompra         string `json:"proceso_de_compra"`
	Entidad                 string `json:"entidad"`
	NitEntidad              string `json:"nit_entidad"`
	ObjetoDelContrato       string `json:"objeto_del_contrato"`
	ValorDelContrato        string `json:"valor_del_contrato"`
	FechaDeInicio           string `json:"fecha_de_inicio"`
	FechaDeFin              string `json:"fecha_de_fin"`
	Departamento            string `json:"departamento"`
	Municipio               string `json:"municipio"`
	EstadoDelProceso        string `json:"estado_del_proceso"`
	ModalidadDeContratacion string `json:"modalidad_de_contratacion"`
}

// statusMap translates the feed's Spanish process states. A process still in
// evaluation accepts no new offers on SECOP itself, but the dataset keeps it
// listed as active, so it maps to open here and the closing date decides.
var statusMap = map[string]models.TenderStatus{
	"Abierto":       models.TenderStatusOpen,
	"En evaluación": models.TenderStatusOpen,
	"Cerrado":       models.TenderStatusClosed,
	"Adjudicado":    models.TenderStatusAwarded,
	"Cancelado":     models.TenderStatusCancelled,
}

// FetchTenders retrieves one page set of processes, following SODA paging
// until a short page.
func (c *Client) FetchTenders(ctx context.Context) ([]models.Tender, error) {
	var tenders []models.Tender

	for offset := 0; ; offset += c.cfg.PageSize {
		records, err := c.fetchPage(ctx, c.cfg.PageSize, offset)
		if err != nil {
			return nil, err
		}

		for _, r := range records {
			tender, ok := c.mapRecord(r)
			if !ok {
				continue
			}
			tenders = append(tenders, tender)
		}

		if len(records) < c.cfg.PageSize {
			break
		}
	}

	return tenders, nil
}

func (c *Client) fetchPage(ctx context.Context, limit, offset int) ([]record, error) {
	endpoint := fmt.Sprintf("%s/%s.json", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Resource)

	query := url.Values{}
	query.Set("$limit", strconv.Itoa(limit))
	query.Set("$offset", strconv.Itoa(offset))
	query.Set("$order", "fecha_de_inicio DESC")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build secop request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.AppToken != "" {
		req.Header.Set("X-App-Token", c.cfg.AppToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch secop page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("secop responded %d", resp.StatusCode)
	}

	var records []record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode secop page: %w", err)
	}
	return records, nil
}

// mapRecord converts one feed row. Rows without a process id or parseable
// dates are skipped, not fatal: the feed carries historic junk.
func (c *Client) mapRecord(r record) (models.Tender, bool) {
	if r.ProcesoDeCompra == "" || r.ObjetoDelContrato == "" {
		return models.Tender{}, false
	}

	publishedAt, err := parseDate(r.FechaDeInicio)
	if err != nil {
		logger.Debug("secop record skipped", "proceso", r.ProcesoDeCompra, "error", err)
		return models.Tender{}, false
	}
	closingAt, err := parseDate(r.FechaDeFin)
	if err != nil {
		logger.Debug("secop record skipped", "proceso", r.ProcesoDeCompra, "error", err)
		return models.Tender{}, false
	}

	value, _ := strconv.ParseFloat(r.ValorDelContrato, 64)

	status, ok := statusMap[r.EstadoDelProceso]
	if !ok {
		status = models.TenderStatusOpen
	}

	location := r.Departamento
	if r.Municipio != "" {
		location = r.Departamento + ", " + r.Municipio
	}

	return models.Tender{
		SecopID:     r.ProcesoDeCompra,
		Title:       r.ObjetoDelContrato,
		Description: r.ObjetoDelContrato,
		BuyerName:   r.Entidad,
		BuyerID:     r.NitEntidad,
		TenderValue: value,
		Currency:    "COP",
		Status:      status,
		Category:    r.ModalidadDeContratacion,
		Location:    location,
		PublishedAt: publishedAt,
		ClosingAt:   closingAt,
	}, true
}

// parseDate accepts the two shapes the dataset uses: floating timestamps and
// plain dates.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range []string{"2006-01-02T15:04:05.000", "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
