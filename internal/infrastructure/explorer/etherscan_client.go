// Package explorer reconstructs per-name transaction history from the
// Etherscan account API.
package explorer

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"ens_manager/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// EtherscanClient queries the txlist endpoint for the registry and resolver
// contracts and filters the results down to transactions whose input data
// references a name's node hash.
type EtherscanClient struct {
	client  *fasthttp.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *zap.Logger
}

// txListResponse mirrors the Etherscan envelope.
type txListResponse struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Result  []txListRecord `json:"result"`
}

type txListRecord struct {
	Hash      string `json:"hash"`
	From      string `json:"from"`
	To        string `json:"to"`
	TimeStamp string `json:"timeStamp"`
	MethodID  string `json:"methodId"`
	Input     string `json:"input"`
	Value     string `json:"value"`
}

// NewEtherscanClient creates a rate-limited Etherscan client. requestsPerSecond
// should stay under the API tier's limit; the limiter blocks, it never drops.
func NewEtherscanClient(baseURL, apiKey string, timeout time.Duration, requestsPerSecond float64, logger *zap.Logger) *EtherscanClient {
	return &EtherscanClient{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		logger:  logger.Named("EtherscanClient"),
	}
}

// TransactionHistory fetches transactions for the registry and, when set,
// the resolver, keeping only those whose input contains nodeHex. Results
// are ordered newest first.
func (c *EtherscanClient) TransactionHistory(ctx context.Context, registryAddr, resolverAddr, nodeHex string) ([]entity.ExplorerTransaction, error) {
	if c.apiKey == "" {
		c.logger.Debug("No explorer API key configured, skipping transaction history")
		return []entity.ExplorerTransaction{}, nil
	}

	node := strings.TrimPrefix(strings.ToLower(nodeHex), "0x")

	var all []entity.ExplorerTransaction

	contracts := []struct {
		address string
		label   string
	}{
		{registryAddr, "Registry"},
		{resolverAddr, "Resolver"},
	}
	for _, contract := range contracts {
		if contract.address == "" {
			continue
		}
		records, err := c.txList(ctx, contract.address)
		if err != nil {
			// One contract's failure should not lose the other's history.
			c.logger.Warn("Explorer txlist query failed",
				zap.String("contract", contract.label), zap.Error(err))
			continue
		}
		for _, rec := range records {
			if !strings.Contains(strings.ToLower(rec.Input), node) {
				continue
			}
			ts, err := strconv.ParseInt(rec.TimeStamp, 10, 64)
			if err != nil {
				continue
			}
			all = append(all, entity.ExplorerTransaction{
				Hash:      rec.Hash,
				From:      rec.From,
				To:        rec.To,
				Timestamp: time.Unix(ts, 0).UTC(),
				Method:    rec.MethodID,
				Contract:  contract.label,
				ValueWei:  rec.Value,
			})
		}
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].Timestamp.After(all[j].Timestamp)
	})
	return all, nil
}

func (c *EtherscanClient) txList(ctx context.Context, address string) ([]txListRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	requestURL := fmt.Sprintf("%s?module=account&action=txlist&address=%s&sort=desc&apikey=%s",
		c.baseURL, address, c.apiKey)

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, fmt.Errorf("failed to execute explorer request: %w", err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			return nil, fmt.Errorf("failed to execute explorer request: %w", err)
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("explorer request failed with status %d", resp.StatusCode())
	}

	var parsed txListResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal explorer response: %w", err)
	}
	if parsed.Status != "1" {
		// "0" covers both errors and empty result sets.
		return nil, nil
	}
	return parsed.Result, nil
}
