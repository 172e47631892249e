// Package client habla con fconvd por el socket Unix.
package client

import (
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// Client representa un cliente del daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient crea un cliente para el socket dado
func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath, timeout: 10 * time.Second}
}

// Request representa una petición al daemon
type Request struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response representa una respuesta del daemon
type Response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Send envía una petición al daemon y retorna la respuesta
func (c *Client) Send(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("connect to daemon: %w (is fconvd running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &resp, nil
}

// call envía action+payload y decodifica Data en out
func (c *Client) call(action string, payload interface{}, out interface{}) error {
	req := &Request{Action: action}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		req.Payload = data
	}

	resp, err := c.Send(req)
	if err != nil {
		return err
	}

	if !resp.Success {
		return fmt.Errorf("%s failed: %s", action, resp.Error)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// SubmitPayload describe un lote para encolar
type SubmitPayload struct {
	Category     string   `json:"category"`
	From         string   `json:"from"`
	To           string   `json:"to"`
	TargetSizeKB int      `json:"target_size_kb,omitempty"`
	Inputs       []string `json:"inputs"`
	OutputDir    string   `json:"output_dir"`
}

// SubmitResult es el lote creado
type SubmitResult struct {
	BatchID string  `json:"batch_id"`
	JobIDs  []int64 `json:"job_ids"`
}

// Job es un trabajo tal como lo reporta el daemon
type Job struct {
	ID           int64      `json:"id"`
	BatchID      string     `json:"batch_id"`
	InputPath    string     `json:"input_path"`
	OutputPath   string     `json:"output_path"`
	Category     string     `json:"category"`
	From         string     `json:"from"`
	To           string     `json:"to"`
	TargetSizeKB int        `json:"target_size_kb,omitempty"`
	Status       string     `json:"status"`
	ErrorKind    string     `json:"error_kind,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	Quality      int        `json:"quality,omitempty"`
	OutputBytes  int64      `json:"output_bytes,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// Batch es el estado de un lote
type Batch struct {
	BatchID   string `json:"batch_id"`
	Jobs      []Job  `json:"jobs"`
	Pending   int    `json:"pending"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
}

// Submit encola un lote
func (c *Client) Submit(payload *SubmitPayload) (*SubmitResult, error) {
	var result SubmitResult
	if err := c.call("submit", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetJob obtiene un trabajo por id
func (c *Client) GetJob(id int64) (*Job, error) {
	var job Job
	if err := c.call("status", map[string]int64{"id": id}, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// GetBatch obtiene los trabajos de un lote
func (c *Client) GetBatch(batchID string) (*Batch, error) {
	var b Batch
	if err := c.call("batch", map[string]string{"batch_id": batchID}, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// ListRecent lista los trabajos recientes
func (c *Client) ListRecent(limit int) ([]Job, error) {
	var result struct {
		Jobs []Job `json:"jobs"`
	}
	if err := c.call("list", map[string]int{"limit": limit}, &result); err != nil {
		return nil, err
	}
	return result.Jobs, nil
}

// Stats obtiene los contadores de la cola
func (c *Client) Stats() (map[string]int, error) {
	var stats map[string]int
	if err := c.call("stats", nil, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// Ping verifica que el daemon responde
func (c *Client) Ping() error {
	return c.call("ping", nil, nil)
}
