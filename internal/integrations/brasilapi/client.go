package brasilapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/vidaplan/corretora-api/internal/config"
)

// Client queries BrasilAPI for company (CNPJ) and address (CEP) data
// used to prefill lead and contract forms.
type Client interface {
	LookupCNPJ(ctx context.Context, cnpj string) (*Company, error)
	LookupCEP(ctx context.Context, cep string) (*Address, error)
}

type client struct {
	cfg        *config.Config
	httpClient *http.Client
}

// NewClient creates a BrasilAPI client
func NewClient(cfg *config.Config) Client {
	return &client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Company is the CNPJ registry record
type Company struct {
	CNPJ         string `json:"cnpj"`
	RazaoSocial  string `json:"razao_social"`
	NomeFantasia string `json:"nome_fantasia"`
	Situacao     string `json:"descricao_situacao_cadastral"`
	Porte        string `json:"porte"`
	Municipio    string `json:"municipio"`
	UF           string `json:"uf"`
	CEP          string `json:"cep"`
	Telefone     string `json:"ddd_telefone_1"`
	Email        string `json:"email"`
}

// Address is a CEP lookup result
type Address struct {
	CEP          string `json:"cep"`
	State        string `json:"state"`
	City         string `json:"city"`
	Neighborhood string `json:"neighborhood"`
	Street       string `json:"street"`
}

func (c *client) LookupCNPJ(ctx context.Context, cnpj string) (*Company, error) {
	var company Company
	if err := c.get(ctx, "/cnpj/v1/"+url.PathEscape(cnpj), &company); err != nil {
		return nil, err
	}
	return &company, nil
}

func (c *client) LookupCEP(ctx context.Context, cep string) (*Address, error) {
	var address Address
	if err := c.get(ctx, "/cep/v2/"+url.PathEscape(cep), &address); err != nil {
		return nil, err
	}
	return &address, nil
}

func (c *client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BrasilAPIBaseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("brasilapi request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("brasilapi returned %d: %s", resp.StatusCode, string(data))
	}
	return json.Unmarshal(data, out)
}

// ErrNotFound indicates the queried document or CEP does not exist
var ErrNotFound = fmt.Errorf("registro não encontrado")
