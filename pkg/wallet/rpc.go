package wallet

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

	"github.com/google/uuid"
)

const defaultRPCTimeout = 10 * time.Second

// RPCBalanceSource reads balances with the Solana JSON-RPC getBalance call.
type RPCBalanceSource struct {
	endpoint string
	client   *http.Client
}

// NewRPCBalanceSource targets endpoint. A nil client gets a 10s timeout.
func NewRPCBalanceSource(endpoint string, client *http.Client) (*RPCBalanceSource, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("rpc endpoint must not be empty")
	}
	if client == nil {
		client = &http.Client{Timeout: defaultRPCTimeout}
	}

	return &RPCBalanceSource{endpoint: endpoint, client: client}, nil
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type balanceResponse struct {
	Result *struct {
		Value uint64 `json:"value"`
	} `json:"result"`
	Error *rpcError `json:"error"`
}

// Balance returns the lamport balance of pk.
func (s *RPCBalanceSource) Balance(ctx context.Context, pk PublicKey) (uint64, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  "getBalance",
		Params:  []any{pk.String()},
	})
	if err != nil {
		return 0, fmt.Errorf("encode getBalance request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build getBalance request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("getBalance: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read getBalance response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("getBalance: %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	var decoded balanceResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return 0, fmt.Errorf("decode getBalance response: %w", err)
	}
	if decoded.Error != nil {
		return 0, fmt.Errorf("getBalance: rpc error %d: %s", decoded.Error.Code, decoded.Error.Message)
	}
	if decoded.Result == nil {
		return 0, errors.New("getBalance: empty result")
	}

	return decoded.Result.Value, nil
}
