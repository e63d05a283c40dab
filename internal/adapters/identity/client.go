package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ogurasousui/taskdesk-http-clean-arch/internal/core/employee"
)

// Client は外部 ID プロバイダーの管理 API を呼び出す
// employee.IdentityProvider の実装です。
type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

// NewClient は Client を生成します。
func NewClient(baseURL, secretKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		http:      &http.Client{Timeout: timeout},
	}
}

type createAccountRequest struct {
	EmailAddress   []string          `json:"email_address"`
	Password       string            `json:"password"`
	FirstName      string            `json:"first_name"`
	LastName       string            `json:"last_name,omitempty"`
	PublicMetadata map[string]string `json:"public_metadata,omitempty"`
}

type updateAccountRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type accountResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
	Message string `json:"message"`
}

// CreateAccount はアカウントを作成し、プロバイダー側の ID を返します。
func (c *Client) CreateAccount(ctx context.Context, in employee.CreateAccountInput) (string, error) {
	body := createAccountRequest{
		EmailAddress: []string{in.Email},
		Password:     in.Password,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	}
	if in.Role != "" {
		body.PublicMetadata = map[string]string{"role": in.Role}
	}

	var account accountResponse
	if err := c.do(ctx, http.MethodPost, "/v1/users", body, &account); err != nil {
		return "", err
	}
	if account.ID == "" {
		return "", fmt.Errorf("%w: response missing account id", employee.ErrIdentityProvider)
	}
	return account.ID, nil
}

// UpdateAccount はアカウントの氏名を更新します。
func (c *Client) UpdateAccount(ctx context.Context, externalID, firstName, lastName string) error {
	path := "/v1/users/" + url.PathEscape(externalID)
	return c.do(ctx, http.MethodPatch, path, updateAccountRequest{FirstName: firstName, LastName: lastName}, nil)
}

// DeleteAccount はアカウントを削除します。
func (c *Client) DeleteAccount(ctx context.Context, externalID string) error {
	path := "/v1/users/" + url.PathEscape(externalID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("identity: encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("identity: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", employee.ErrIdentityProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s", employee.ErrIdentityProvider, providerMessage(resp))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode response: %v", employee.ErrIdentityProvider, err)
		}
	}

	return nil
}

// providerMessage はエラーレスポンスからプロバイダーのメッセージを取り出します。
// メッセージは呼び出し元へそのまま提示されます。
func providerMessage(resp *http.Response) string {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil && len(raw) > 0 {
		var parsed errorResponse
		if err := json.Unmarshal(raw, &parsed); err == nil {
			if len(parsed.Errors) > 0 && parsed.Errors[0].Message != "" {
				return parsed.Errors[0].Message
			}
			if parsed.Message != "" {
				return parsed.Message
			}
		}
	}
	return fmt.Sprintf("unexpected status %d", resp.StatusCode)
}
