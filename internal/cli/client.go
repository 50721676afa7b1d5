package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// RunResponse — run из API.
type RunResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Status    string         `json:"status"`
	Meta      map[string]any `json:"meta,omitempty"`
	Result    map[string]any `json:"result,omitempty"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at"`
}

// ChatMessageResponse — сообщение chat-треда из API.
type ChatMessageResponse struct {
	ID        string `json:"id"`
	ThreadID  string `json:"thread_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// RunArtifactsResponse — артефакты run из API.
type RunArtifactsResponse struct {
	Artifacts []string `json:"artifacts"`
}

// Event — live-событие из WebSocket-потока.
type Event struct {
	Event    string         `json:"event"`
	RunID    string         `json:"run_id,omitempty"`
	ThreadID string         `json:"thread_id,omitempty"`
	Node     string         `json:"node,omitempty"`
	Output   map[string]any `json:"output,omitempty"`
	Result   map[string]any `json:"result,omitempty"`
	Error    string         `json:"error,omitempty"`
	Content  string         `json:"content,omitempty"`
}

// --- Request types ---

// CreateRunRequest — создание run.
type CreateRunRequest struct {
	Name    string         `json:"name,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

type createRunResponse struct {
	RunID string `json:"run_id"`
}

// SendMessageRequest — отправка chat-сообщения.
type SendMessageRequest struct {
	Message string `json:"message"`
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Fastgraph API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Runs ---

// ListRuns возвращает все runs.
func (c *Client) ListRuns() ([]RunResponse, error) {
	var runs []RunResponse
	err := c.list("/api/v1/runs", &runs)
	return runs, err
}

// SubmitRun создаёт run и ставит его в очередь выполнения.
func (c *Client) SubmitRun(req CreateRunRequest) (string, error) {
	var resp createRunResponse
	err := c.post("/api/v1/runs", req, &resp)
	return resp.RunID, err
}

// GetRun возвращает run по ID.
func (c *Client) GetRun(id string) (*RunResponse, error) {
	var run RunResponse
	err := c.get("/api/v1/runs/"+id, &run)
	return &run, err
}

// CancelRun отменяет run.
func (c *Client) CancelRun(id string) error {
	return c.post("/api/v1/runs/"+id+"/cancel", nil, nil)
}

// ListArtifacts возвращает идентификаторы артефактов run.
func (c *Client) ListArtifacts(runID string) ([]string, error) {
	var resp RunArtifactsResponse
	err := c.get("/api/v1/runs/"+runID+"/artifacts", &resp)
	return resp.Artifacts, err
}

// --- Chat ---

// SendMessage ставит chat-сообщение в очередь обработки.
func (c *Client) SendMessage(threadID, message string) error {
	return c.post("/api/v1/chat/"+threadID+"/messages", SendMessageRequest{Message: message}, nil)
}

// GetHistory возвращает историю треда.
func (c *Client) GetHistory(threadID string) ([]ChatMessageResponse, error) {
	var history []ChatMessageResponse
	err := c.list("/api/v1/chat/"+threadID+"/history", &history)
	return history, err
}

// --- Events ---

// Watch подключается к WebSocket-потоку топика и вызывает fn для каждого
// события. Возвращается при закрытии соединения, отмене контекста или
// когда fn возвращает ошибку.
func (c *Client) Watch(ctx context.Context, topic string, fn func(Event) error) error {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/api/v1/ws/" + topic

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", wsURL, err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	for {
		var event Event
		if err := wsjson.Read(ctx, conn, &event); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				return nil
			}
			return fmt.Errorf("failed to read event: %w", err)
		}

		if err := fn(event); err != nil {
			return err
		}
	}
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) list(path string, result any) error {
	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
