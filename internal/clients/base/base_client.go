package baseclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/babylonchain/staking-hub-service/internal/observability/metrics"
	"github.com/babylonchain/staking-hub-service/internal/types"
	"github.com/rs/zerolog/log"
)

// LCD responses above this size are rejected.
const maxResponseBytes = 4 << 20

var ALLOWED_METHODS = []string{"GET", "POST"}

type BaseClient interface {
	GetBaseURL() string
	GetDefaultRequestTimeout() int
	GetHttpClient() *http.Client
}

type BaseClientOptions struct {
	Timeout int
	Path    string
	Query   url.Values
	Headers map[string]string
}

// lcdError is the body a Cosmos LCD endpoint returns for a failed query.
type lcdError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func isAllowedMethods(method string) bool {
	for _, allowedMethod := range ALLOWED_METHODS {
		if method == allowedMethod {
			return true
		}
	}
	return false
}

func requestURL(client BaseClient, opts *BaseClientOptions) string {
	u := fmt.Sprintf("%s%s", client.GetBaseURL(), opts.Path)
	if len(opts.Query) > 0 {
		u = fmt.Sprintf("%s?%s", u, opts.Query.Encode())
	}
	return u
}

// errorDetail extracts the LCD error message from body, falling back to the
// raw status text.
func errorDetail(resp *http.Response) string {
	var lcdErr lcdError
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err == nil && json.Unmarshal(raw, &lcdErr) == nil && lcdErr.Message != "" {
		return lcdErr.Message
	}
	return http.StatusText(resp.StatusCode)
}

func SendRequest[I any, R any](
	ctx context.Context, client BaseClient, method string, opts *BaseClientOptions, input *I,
) (*R, *types.Error) {
	if !isAllowedMethods(method) {
		return nil, types.NewInternalServiceError(fmt.Errorf("method %s is not allowed", method))
	}
	url := requestURL(client, opts)
	timeout := client.GetDefaultRequestTimeout()
	if opts.Timeout != 0 {
		timeout = opts.Timeout
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Millisecond)
	defer cancel()

	var body io.Reader
	if input != nil && method == http.MethodPost {
		payload, err := json.Marshal(input)
		if err != nil {
			return nil, types.NewErrorWithMsg(
				http.StatusInternalServerError,
				types.InternalServiceError,
				"failed to marshal request body",
			)
		}
		body = bytes.NewBuffer(payload)
	}
	req, requestError := http.NewRequestWithContext(ctxWithTimeout, method, url, body)
	if requestError != nil {
		return nil, types.NewErrorWithMsg(
			http.StatusInternalServerError, types.InternalServiceError, requestError.Error(),
		)
	}
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	recordLatency := metrics.StartClientRequestDurationTimer(client.GetBaseURL(), method)
	resp, err := client.GetHttpClient().Do(req)
	if err != nil {
		if errors.Is(ctxWithTimeout.Err(), context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			recordLatency(http.StatusRequestTimeout)
			return nil, types.NewErrorWithMsg(
				http.StatusRequestTimeout,
				types.RequestTimeout,
				fmt.Sprintf("request timeout after %d ms at %s", timeout, url),
			)
		}
		recordLatency(http.StatusServiceUnavailable)
		log.Ctx(ctx).Error().Err(err).Msgf("failed to send request to %s", url)
		return nil, types.NewErrorWithMsg(
			http.StatusServiceUnavailable,
			types.ServiceUnavailable,
			fmt.Sprintf("failed to send request to %s", url),
		)
	}
	defer resp.Body.Close()
	recordLatency(resp.StatusCode)

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, types.NewErrorWithMsg(
			resp.StatusCode,
			types.InternalServiceError,
			fmt.Sprintf("lcd error when calling %s: %s", url, errorDetail(resp)),
		)
	} else if resp.StatusCode >= http.StatusBadRequest {
		return nil, types.NewErrorWithMsg(
			resp.StatusCode,
			types.BadRequest,
			fmt.Sprintf("query rejected by %s: %s", url, errorDetail(resp)),
		)
	}

	var output R
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&output); err != nil {
		return nil, types.NewErrorWithMsg(
			http.StatusInternalServerError,
			types.InternalServiceError,
			fmt.Sprintf("failed to decode response from %s", url),
		)
	}

	return &output, nil
}
