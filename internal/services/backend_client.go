package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"tenpo_transactions/internal/models"
	"tenpo_transactions/pkg/utils"

	"github.com/sirupsen/logrus"
)

const ClientIDHeader = "X-Client-Id"

var ErrMissingID = errors.New("transaction has no idTransaccion")

// Result is the uniform outcome of a write. Every HTTP status, including
// 4xx and 5xx, is reported here rather than as an error.
type Result struct {
	Status int `json:"status"`
	Data   any `json:"data"`
}

// ErrorMessage returns data.error when the backend sent one.
func (r Result) ErrorMessage() string {
	m, ok := r.Data.(map[string]any)
	if !ok {
		return ""
	}
	switch v := m["error"].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

type Gateway interface {
	ListAll(ctx context.Context) ([]models.Transaction, error)
	Create(ctx context.Context, tx models.Transaction) (Result, error)
	Update(ctx context.Context, tx models.Transaction) (Result, error)
	Delete(ctx context.Context, id int) (Result, error)
}

type BackendClient struct {
	BaseURL  string
	ClientID string
	Client   *http.Client
}

func NewBackendClient(baseURL, clientID string, client *http.Client) *BackendClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &BackendClient{
		BaseURL:  baseURL,
		ClientID: clientID,
		Client:   client,
	}
}

func (b *BackendClient) newRequest(ctx context.Context, method, endpoint string, body interface{}) (*http.Request, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.BaseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set(ClientIDHeader, b.ClientID)
	}
	return req, nil
}

// doWrite sends a non-GET request and captures whatever status comes back.
func (b *BackendClient) doWrite(ctx context.Context, method, endpoint string, body interface{}) (Result, error) {
	req, err := b.newRequest(ctx, method, endpoint, body)
	if err != nil {
		return Result{}, err
	}

	resp, err := b.Client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read response (status %d): %w", resp.StatusCode, err)
	}

	utils.Logger.WithFields(logrus.Fields{
		"method": method,
		"path":   endpoint,
		"status": resp.StatusCode,
	}).Debug("backend write completed")

	return Result{Status: resp.StatusCode, Data: decodeBody(raw)}, nil
}

func decodeBody(raw []byte) any {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return string(raw)
	}
	return data
}

func (b *BackendClient) ListAll(ctx context.Context) ([]models.Transaction, error) {
	req, err := b.newRequest(ctx, http.MethodGet, "/all", nil)
	if err != nil {
		return nil, err
	}

	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(respBody))
	}

	var list []models.Transaction
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}
	if list == nil {
		list = []models.Transaction{}
	}
	return list, nil
}

func (b *BackendClient) Create(ctx context.Context, tx models.Transaction) (Result, error) {
	return b.doWrite(ctx, http.MethodPost, "/create", tx.WithoutID())
}

func (b *BackendClient) Update(ctx context.Context, tx models.Transaction) (Result, error) {
	if !tx.IsPersisted() {
		return Result{}, ErrMissingID
	}
	return b.doWrite(ctx, http.MethodPut, "/update", tx)
}

func (b *BackendClient) Delete(ctx context.Context, id int) (Result, error) {
	return b.doWrite(ctx, http.MethodDelete, "/delete?idTransaccion="+strconv.Itoa(id), nil)
}
