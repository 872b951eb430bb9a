package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/rcap107/caparezzology/internal/logging"
)

// DefaultTimeout bounds a single GET when the request does not set one.
const DefaultTimeout = 10 * time.Second

// AccessTokenParam is the query key used for InjectQuery.
const AccessTokenParam = "access_token"

// Injection selects where a credential is placed on the request.
type Injection int

const (
	// InjectQuery adds the credential as the access_token query parameter.
	InjectQuery Injection = iota
	// InjectHeader adds the credential to a header chosen by HeaderFor.
	InjectHeader
)

// Credentials resolves named secrets.
type Credentials interface {
	Get(name string) (string, bool)
}

// Request describes a single GET.
type Request struct {
	URL        string
	Credential string
	Query      url.Values
	Headers    map[string]string
	Timeout    time.Duration
	Inject     Injection
}

// Response is the raw result of a GET, returned for any status code.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client issues credential-backed GET requests. It never retries.
type Client struct {
	rc     *resty.Client
	creds  Credentials
	logger *logging.Logger
}

// New creates a Client on top of httpClient.
func New(httpClient *http.Client, creds Credentials, logger *logging.Logger) *Client {
	rc := resty.NewWithClient(httpClient).
		SetRetryCount(0).
		SetLogger(logger)
	return &Client{rc: rc, creds: creds, logger: logger}
}

// HeaderFor picks the header carrying a credential when it is not sent as a
// query parameter.
func HeaderFor(name, value string) (string, string) {
	switch strings.ToLower(name) {
	case "genius_key", "api_key", "token":
		return "Authorization", "Bearer " + value
	case "client", "client_id":
		return "X-Client-ID", value
	default:
		return "Authorization", value
	}
}

// Get issues one GET and returns the raw response.
func (c *Client) Get(ctx context.Context, req Request) (*Response, error) {
	query := url.Values{}
	for k, vs := range req.Query {
		query[k] = append([]string(nil), vs...)
	}
	headers := make(map[string]string, len(req.Headers)+1)
	for k, v := range req.Headers {
		headers[k] = v
	}

	if req.Credential != "" {
		var secret string
		var ok bool
		if c.creds != nil {
			secret, ok = c.creds.Get(req.Credential)
		}
		if !ok || secret == "" {
			return nil, &ConfigurationError{Credential: req.Credential}
		}
		if req.Inject == InjectQuery {
			query.Set(AccessTokenParam, secret)
		} else {
			k, v := HeaderFor(req.Credential, secret)
			headers[k] = v
		}
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c.logger.Debugf("GET %s", req.URL)
	resp, err := c.rc.R().
		SetContext(ctx).
		SetQueryParamsFromValues(query).
		SetHeaders(headers).
		Get(req.URL)
	if err != nil {
		// *url.Error repeats the full request URL, query credentials included.
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return nil, &NetworkError{URL: req.URL, Err: err}
	}
	c.logger.Debugf("GET %s -> %d", req.URL, resp.StatusCode())

	return &Response{
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
		Body:       resp.Body(),
	}, nil
}

// GetJSON issues one GET, requires a 2xx status and decodes the body into v.
func (c *Client) GetJSON(ctx context.Context, req Request, v any) error {
	resp, err := c.Get(ctx, req)
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return &HTTPStatusError{URL: req.URL, StatusCode: resp.StatusCode}
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return &DecodeError{URL: req.URL, Err: err}
	}
	return nil
}
