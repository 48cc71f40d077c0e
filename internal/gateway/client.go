// Пакет gateway — типизированный HTTP-клиент upload-API.
// Поддерживает TLS с кастомным CA (UC_API_CA_CERT_PATH).
// Операции: вход и регистрация, списки файлов (полный и постраничный),
// загрузка, содержимое и удаление файла, список пользователей.
package gateway

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bigkaa/goartstore/upload-console/internal/domain/model"
	"github.com/bigkaa/goartstore/upload-console/internal/listquery"
)

// maxResponseBody — предел читаемого тела ответа.
const maxResponseBody = 16 << 20

// Options — параметры клиента.
type Options struct {
	// BaseURL — базовый адрес API, например http://localhost:3150/api.
	BaseURL string
	// Timeout — таймаут одного запроса.
	Timeout time.Duration
	// CACertPath — путь к CA-сертификату (пустая строка — системный пул).
	CACertPath string
}

// Client — HTTP-клиент upload-API.
// Заголовок Authorization добавляется, если передан непустой токен;
// запрос без токена всё равно отправляется, отказ — решение сервера.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New создаёт клиент upload-API.
func New(opts Options, logger *slog.Logger) (*Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if _, err := url.ParseRequestURI(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("некорректный адрес upload-API %q: %w", opts.BaseURL, err)
	}

	httpClient := &http.Client{Timeout: opts.Timeout}

	if opts.CACertPath != "" {
		tlsConfig, err := buildTLSConfig(opts.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("загрузка CA-сертификата upload-API: %w", err)
		}
		httpClient.Transport = &http.Transport{
			TLSClientConfig: tlsConfig,
		}
		logger.Info("CA-сертификат upload-API добавлен в пул доверия",
			slog.String("ca_cert", opts.CACertPath),
		)
	}

	return &Client{
		baseURL:    normalizeURL(opts.BaseURL),
		httpClient: httpClient,
		logger:     logger.With(slog.String("component", "api_gateway")),
	}, nil
}

// buildTLSConfig создаёт TLS-конфигурацию с кастомным CA.
func buildTLSConfig(caCertPath string) (*tls.Config, error) {
	caCert, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, fmt.Errorf("чтение CA-сертификата: %w", err)
	}

	caCertPool, err := x509.SystemCertPool()
	if err != nil {
		caCertPool = x509.NewCertPool()
	}
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("файл %s не содержит PEM-сертификатов", caCertPath)
	}

	return &tls.Config{
		RootCAs:    caCertPool,
		MinVersion: tls.VersionTLS12,
	}, nil
}

// Login — POST /auth/login. Токен ищется в accessToken, token,
// content.accessToken, content.token (в этом порядке).
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	payload := map[string]string{"email": email, "password": password}
	body, err := c.doJSON(ctx, "login", http.MethodPost, "/auth/login", "", payload)
	if err != nil {
		return "", err
	}

	var resp struct {
		AccessToken string          `json:"accessToken"`
		Token       string          `json:"token"`
		Content     json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("декодирование ответа login: %w", err)
	}

	for _, t := range []string{resp.AccessToken, resp.Token} {
		if t != "" {
			return t, nil
		}
	}
	if !isJSONObject(resp.Content) {
		return "", ErrNoToken
	}

	var nested struct {
		AccessToken string `json:"accessToken"`
		Token       string `json:"token"`
	}
	if err := json.Unmarshal(resp.Content, &nested); err != nil {
		return "", fmt.Errorf("декодирование content ответа login: %w", err)
	}
	for _, t := range []string{nested.AccessToken, nested.Token} {
		if t != "" {
			return t, nil
		}
	}
	return "", ErrNoToken
}

// Register — POST /auth/register.
func (c *Client) Register(ctx context.Context, email, fullName, password string) error {
	payload := map[string]string{"email": email, "fullName": fullName, "password": password}
	_, err := c.doJSON(ctx, "register", http.MethodPost, "/auth/register", "", payload)
	return err
}

// filesEnvelope — {content:{files:[...], total}}.
type filesEnvelope struct {
	Content *struct {
		Files []model.FileRecord `json:"files"`
		Total json.Number        `json:"total"`
	} `json:"content"`
}

// ListFiles — GET /files без параметров (список панели пользователя).
func (c *Client) ListFiles(ctx context.Context, token string) ([]model.FileRecord, error) {
	body, err := c.do(ctx, "list_files", http.MethodGet, "/files", nil, token, nil, "")
	if err != nil {
		return nil, err
	}

	var env filesEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("декодирование ответа list_files: %w", err)
	}
	if env.Content == nil {
		return nil, nil
	}
	return env.Content.Files, nil
}

// ListFilesPage — GET /files?page&rows&filters&searchFilters&rangedFilters.
func (c *Client) ListFilesPage(ctx context.Context, token string, q listquery.Query) (listquery.Page, error) {
	params, err := q.Params()
	if err != nil {
		return listquery.Page{}, err
	}
	query := url.Values{}
	for k, v := range params {
		query.Set(k, v)
	}

	body, err := c.do(ctx, "list_files_page", http.MethodGet, "/files", query, token, nil, "")
	if err != nil {
		return listquery.Page{}, err
	}

	var env filesEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return listquery.Page{}, fmt.Errorf("декодирование ответа list_files_page: %w", err)
	}
	if env.Content == nil {
		return listquery.Page{}, nil
	}

	total := 0
	if n, err := env.Content.Total.Int64(); err == nil && n > 0 {
		total = int(n)
	}
	return listquery.Page{Files: env.Content.Files, Total: total}, nil
}

// UploadFile — POST /files/upload, multipart с единственным полем file.
func (c *Client) UploadFile(ctx context.Context, token, filename string, content io.Reader) (*model.UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("создание multipart: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("чтение загружаемого файла: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("закрытие multipart: %w", err)
	}

	body, err := c.do(ctx, "upload_file", http.MethodPost, "/files/upload", nil, token, &buf, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}

	var result model.UploadResult
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("декодирование ответа upload_file: %w", err)
		}
	}
	return &result, nil
}

// FileContent — GET /files/{id}/content. rows должен быть массивом объектов.
func (c *Client) FileContent(ctx context.Context, token string, id int64) ([]model.Row, error) {
	path := "/files/" + strconv.FormatInt(id, 10) + "/content"
	body, err := c.do(ctx, "file_content", http.MethodGet, path, nil, token, nil, "")
	if err != nil {
		return nil, err
	}

	var env struct {
		Content *struct {
			Rows json.RawMessage `json:"rows"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("декодирование ответа file_content: %w", err)
	}
	if env.Content == nil || !isJSONArray(env.Content.Rows) {
		return nil, ErrInvalidFormat
	}

	var rows []model.Row
	if err := json.Unmarshal(env.Content.Rows, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return rows, nil
}

// DeleteFile — DELETE /files/{id}. Тело ответа не интерпретируется.
func (c *Client) DeleteFile(ctx context.Context, token string, id int64) error {
	path := "/files/" + strconv.FormatInt(id, 10)
	_, err := c.do(ctx, "delete_file", http.MethodDelete, path, nil, token, nil, "")
	return err
}

// ListUsers — GET /users. Принимает [...], {content:{users:[...]}} и {content:[...]};
// любая другая форма — пустой список.
func (c *Client) ListUsers(ctx context.Context, token string) ([]model.UserRecord, error) {
	body, err := c.do(ctx, "list_users", http.MethodGet, "/users", nil, token, nil, "")
	if err != nil {
		return nil, err
	}

	var users []model.UserRecord
	switch {
	case isJSONArray(body):
		if err := json.Unmarshal(body, &users); err != nil {
			return nil, fmt.Errorf("декодирование ответа list_users: %w", err)
		}
		return users, nil
	case isJSONObject(body):
		var env struct {
			Content json.RawMessage `json:"content"`
		}
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("декодирование ответа list_users: %w", err)
		}
		if isJSONArray(env.Content) {
			if err := json.Unmarshal(env.Content, &users); err != nil {
				return nil, fmt.Errorf("декодирование ответа list_users: %w", err)
			}
			return users, nil
		}
		if isJSONObject(env.Content) {
			var nested struct {
				Users []model.UserRecord `json:"users"`
			}
			if err := json.Unmarshal(env.Content, &nested); err != nil {
				return nil, fmt.Errorf("декодирование ответа list_users: %w", err)
			}
			return nested.Users, nil
		}
	}
	return nil, nil
}

// doJSON отправляет payload как JSON.
func (c *Client) doJSON(ctx context.Context, op, method, path, token string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("сериализация запроса %s: %w", op, err)
	}
	return c.do(ctx, op, method, path, nil, token, bytes.NewReader(data), "application/json")
}

// do выполняет запрос и возвращает тело 2xx-ответа.
// Ответ вне 2xx превращается в *APIError.
func (c *Client) do(
	ctx context.Context,
	op, method, path string,
	query url.Values,
	token string,
	body io.Reader,
	contentType string,
) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("создание запроса %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		observe(op, 0, start)
		return nil, fmt.Errorf("запрос %s к upload-API: %w", op, err)
	}
	defer resp.Body.Close()
	observe(op, resp.StatusCode, start)

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("чтение ответа %s: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, respBody)
		c.logger.Debug("upload-API вернул ошибку",
			slog.String("operation", op),
			slog.Int("status", resp.StatusCode),
			slog.String("message", apiErr.Message),
		)
		return nil, apiErr
	}
	return respBody, nil
}

// normalizeURL убирает trailing slash из URL.
func normalizeURL(rawURL string) string {
	return strings.TrimRight(rawURL, "/")
}

func isJSONArray(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '['
}

func isJSONObject(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '{'
}
