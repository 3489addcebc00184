package trust

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vanguard/pkg/domain/interfaces"
	"github.com/secmon-lab/vanguard/pkg/domain/model"
	"github.com/secmon-lab/vanguard/pkg/utils/safe"
)

const verifyPath = "/v1/verify-and-permit-upload"

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the remote trust-verification service. A transport failure
// is returned as-is; the fail-open fallback decision belongs to the caller.
type Client struct {
	baseURL    string
	httpClient HTTPClient
}

var _ interfaces.TrustClient = (*Client)(nil)

type Option func(*Client)

func WithHTTPClient(client HTTPClient) Option {
	return func(x *Client) {
		x.httpClient = client
	}
}

func New(baseURL string, options ...Option) *Client {
	client := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range options {
		opt(client)
	}
	return client
}

func (x *Client) VerifyAndPermitUpload(ctx context.Context, req *model.UploadRequest) (*model.UploadPermission, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal upload request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, x.baseURL+verifyPath, bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create trust request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := x.httpClient.Do(httpReq)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to reach trust service", goerr.V("url", x.baseURL))
	}
	defer safe.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, goerr.New("trust service returned unexpected status",
			goerr.V("code", resp.StatusCode),
			goerr.V("body", string(raw)),
		)
	}

	var perm model.UploadPermission
	if err := json.NewDecoder(resp.Body).Decode(&perm); err != nil {
		return nil, goerr.Wrap(err, "failed to decode trust response")
	}

	return &perm, nil
}
