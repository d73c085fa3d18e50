// Package aggregator talks to the backend proxy that fronts the bank
// account-aggregation provider, and converts its loosely shaped JSON into
// the typed records the analysis pipeline consumes.
package aggregator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"askcents/internal/core"
)

// ErrUpstream wraps every non-2xx response from the proxy.
var ErrUpstream = errors.New("aggregator upstream error")

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 4 << 10

// Client calls the proxy's JSON API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for baseURL (e.g. http://localhost:3001/api).
// A nil httpClient gets one with the given timeout.
func NewClient(baseURL string, timeout time.Duration, httpClient *http.Client) *Client {
	if httpClient == nil {
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// LinkToken initializes the bank-linking flow on the client.
type LinkToken struct {
	LinkToken  string `json:"link_token"`
	Expiration string `json:"expiration"`
}

// Exchange is the result of swapping a public token for an access token.
type Exchange struct {
	AccessToken string `json:"access_token,omitempty"`
	ItemID      string `json:"item_id"`
}

// Health is the proxy's health report.
type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// StatusError carries the proxy status code and message. It matches
// ErrUpstream with errors.Is.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("aggregator: status %d", e.StatusCode)
	}
	return fmt.Sprintf("aggregator: status %d: %s", e.StatusCode, e.Message)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUpstream
}

func (c *Client) CreateLinkToken(ctx context.Context, userID string) (LinkToken, error) {
	var out LinkToken
	err := c.do(ctx, http.MethodPost, "/create_link_token", map[string]string{"user_id": userID}, &out)
	return out, err
}

func (c *Client) ExchangePublicToken(ctx context.Context, publicToken, userID string) (Exchange, error) {
	var out Exchange
	body := map[string]string{"public_token": publicToken, "user_id": userID}
	err := c.do(ctx, http.MethodPost, "/set_access_token", body, &out)
	return out, err
}

// Accounts fetches and parses the linked accounts.
func (c *Client) Accounts(ctx context.Context) ([]core.Account, error) {
	var resp struct {
		Accounts []RawAccount `json:"accounts"`
	}
	if err := c.do(ctx, http.MethodGet, "/accounts", nil, &resp); err != nil {
		return nil, err
	}
	return ParseAccounts(resp.Accounts), nil
}

// Transactions fetches and parses the most recent transactions.
func (c *Client) Transactions(ctx context.Context) ([]core.Transaction, error) {
	var resp struct {
		LatestTransactions []RawTransaction `json:"latest_transactions"`
	}
	if err := c.do(ctx, http.MethodGet, "/transactions", nil, &resp); err != nil {
		return nil, err
	}
	return ParseTransactions(resp.LatestTransactions), nil
}

// Owner is one account holder as reported by the bank.
type Owner struct {
	Names        []string `json:"names"`
	Emails       []string `json:"emails"`
	PhoneNumbers []string `json:"phone_numbers"`
}

// AccountOwners lists the holders of one linked account.
type AccountOwners struct {
	AccountID string  `json:"account_id"`
	Name      string  `json:"name"`
	Owners    []Owner `json:"owners"`
}

type rawContact struct {
	Data    string `json:"data"`
	Primary bool   `json:"primary"`
}

type rawOwner struct {
	Names        []string     `json:"names"`
	Emails       []rawContact `json:"emails"`
	PhoneNumbers []rawContact `json:"phone_numbers"`
}

// Identity fetches the account holders of every linked account. Primary
// contacts are listed first.
func (c *Client) Identity(ctx context.Context) ([]AccountOwners, error) {
	var resp struct {
		Accounts []struct {
			AccountID string     `json:"account_id"`
			Name      string     `json:"name"`
			Owners    []rawOwner `json:"owners"`
		} `json:"accounts"`
	}
	if err := c.do(ctx, http.MethodGet, "/identity", nil, &resp); err != nil {
		return nil, err
	}
	out := make([]AccountOwners, 0, len(resp.Accounts))
	for _, a := range resp.Accounts {
		ao := AccountOwners{AccountID: a.AccountID, Name: a.Name, Owners: make([]Owner, 0, len(a.Owners))}
		for _, o := range a.Owners {
			ao.Owners = append(ao.Owners, Owner{
				Names:        nonEmptyNames(o.Names),
				Emails:       contacts(o.Emails),
				PhoneNumbers: contacts(o.PhoneNumbers),
			})
		}
		out = append(out, ao)
	}
	return out, nil
}

func contacts(raw []rawContact) []string {
	out := make([]string, 0, len(raw))
	for _, primary := range []bool{true, false} {
		for _, c := range raw {
			if c.Primary == primary && strings.TrimSpace(c.Data) != "" {
				out = append(out, strings.TrimSpace(c.Data))
			}
		}
	}
	return out
}

func nonEmptyNames(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// RemoveItem disconnects the linked bank.
func (c *Client) RemoveItem(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodPost, "/item/remove", map[string]string{"user_id": userID}, nil)
}

func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	err := c.do(ctx, http.MethodGet, "/health", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func parseError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		msg = body.Error
	}
	return &StatusError{StatusCode: resp.StatusCode, Message: msg}
}
