// Package client is a small HTTP client for the dashboard API, used by the
// console front end and usable as a library on its own.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/fsgmhh-Ray/ai-agent-dashboard/internal/model"
)

// APIError carries the envelope fields of a non-2xx backend response.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d code=%d message=%s", e.Status, e.Code, e.Message)
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// SetToken installs the bearer token used on authenticated endpoints.
// An empty token makes subsequent requests anonymous.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) Token() string {
	return c.token
}

// envelope mirrors the backend's APIResponse. Data is kept raw so each
// call site can decode its own payload shape.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Generate relays a prompt to the given provider. The relay endpoint does
// not use the envelope: 200 answers {"result": ...}, everything else
// answers {"error": ...}.
func (c *Client) Generate(ctx context.Context, provider, prompt string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"provider": provider,
		"prompt":   prompt,
	})
	if err != nil {
		return "", fmt.Errorf("marshal generate request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build generate request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call generate failed: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		Result string `json:"result"`
		Error  string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode generate response failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Status: resp.StatusCode, Message: body.Error}
	}
	return body.Result, nil
}

// AuthResult is the payload of register and login.
type AuthResult struct {
	Token string `json:"token"`
	User  struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	} `json:"user"`
}

// Register creates an account and stores the returned token on the client.
func (c *Client) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	var result AuthResult
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, &result)
	if err != nil {
		return nil, err
	}
	c.token = result.Token
	return &result, nil
}

// Login authenticates and stores the returned token on the client.
func (c *Client) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	var result AuthResult
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &result)
	if err != nil {
		return nil, err
	}
	c.token = result.Token
	return &result, nil
}

// Logout revokes the current token server side and clears it locally.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}

type UserInfo struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (c *Client) Me(ctx context.Context) (*UserInfo, error) {
	var user UserInfo
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) ListDocuments(ctx context.Context) ([]model.Document, error) {
	var documents []model.Document
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/documents", nil, &documents); err != nil {
		return nil, err
	}
	return documents, nil
}

func (c *Client) CreateDocument(ctx context.Context, employee, title, content string) (*model.Document, error) {
	var document model.Document
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/documents", map[string]string{
		"employee": employee,
		"title":    title,
		"content":  content,
	}, &document)
	if err != nil {
		return nil, err
	}
	return &document, nil
}

func (c *Client) DeleteDocument(ctx context.Context, documentID uint) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/documents/%d", documentID), nil, nil)
}

// UploadDocument sends one file as multipart form data and returns the
// document record created for it.
func (c *Client) UploadDocument(ctx context.Context, filename string, file io.Reader) (*model.Document, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("build multipart form failed: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("read upload file failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finish multipart form failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/documents/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("build upload request failed: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call upload failed: %w", err)
	}
	defer resp.Body.Close()

	var document model.Document
	if err := decodeEnvelope(resp, &document); err != nil {
		return nil, err
	}
	return &document, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request failed: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request failed: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp, out)
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func decodeEnvelope(resp *http.Response, out interface{}) error {
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data failed: %w", err)
		}
	}
	return nil
}
