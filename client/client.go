package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/diamondburned/postlist/postlist"
	"github.com/pkg/errors"
)

// DefaultTimeout is the timeout of every request made by a new client.
const DefaultTimeout = 10 * time.Second

// StatusCoder is an interface that ErrUnexpectedStatusCode implements.
type StatusCoder interface {
	StatusCode() int
}

// ErrGetStatusCode gets the status code from error, or returns orCode if it
// can't get any.
func ErrGetStatusCode(err error, orCode int) int {
	var scode StatusCoder
	if errors.As(err, &scode) {
		return scode.StatusCode()
	}
	return orCode
}

type ErrUnexpectedStatusCode struct {
	Code   int
	Body   string
	ErrMsg string
}

func (err ErrUnexpectedStatusCode) StatusCode() int {
	return err.Code
}

func (err ErrUnexpectedStatusCode) Error() string {
	var errstr = fmt.Sprintf("Unexpected status code %d", err.Code)
	switch {
	case err.ErrMsg != "":
		errstr += ": " + err.ErrMsg
	case err.Body != "":
		errstr += ", body: " + err.Body
	}

	return errstr
}

// Client is a thin HTTP client for the post API.
type Client struct {
	http.Client
	host  *url.URL
	agent string

	// forwardedFor is the address of the visitor the requests are made on
	// behalf of. The API rate limits on it.
	forwardedFor string
}

// NewClient makes a new client for the API served under host.
func NewClient(host string) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(host, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "Failed to parse host URL")
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("host URL %q is missing a scheme or host", host)
	}

	var client = &Client{
		Client: http.Client{
			Timeout: DefaultTimeout,
		},
		host: u,
	}

	return client, nil
}

// NewClientFromRequest creates a new client that forwards the user agent and
// the remote address of the given request.
func NewClientFromRequest(host string, r *http.Request) (*Client, error) {
	c, err := NewClient(host)
	if err != nil {
		return nil, err
	}

	c.SetUserAgent(r.UserAgent())
	c.SetForwardedFor(r.RemoteAddr)

	return c, nil
}

func (c *Client) SetUserAgent(userAgent string) {
	c.agent = userAgent
}

// SetForwardedFor sets the visitor address sent as X-Forwarded-For. The port,
// if any, is dropped.
func (c *Client) SetForwardedFor(addr string) {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	c.forwardedFor = addr
}

// Host returns the stringified URL.
func (c *Client) Host() string {
	return c.host.String()
}

// Endpoint returns the API root.
func (c *Client) Endpoint() string {
	return c.Host() + "/api"
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	// Override the UserAgent if we have one.
	if c.agent != "" {
		req.Header.Set("User-Agent", c.agent)
	}
	if c.forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", c.forwardedFor)
	}

	r, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}

	if r.StatusCode < 200 || r.StatusCode > 299 {
		// Start reading the body for the error.
		defer r.Body.Close()

		var unexp = ErrUnexpectedStatusCode{Code: r.StatusCode}

		b, err := ioutil.ReadAll(r.Body)
		if err == nil {
			var errResp postlist.ErrResponse
			if json.Unmarshal(b, &errResp); errResp.Error != "" {
				unexp.ErrMsg = errResp.Error
			} else {
				if len(b) > 100 {
					unexp.Body = string(b[:97]) + "..."
				} else {
					unexp.Body = string(b)
				}
			}
		}

		return nil, unexp
	}

	return r, nil
}

func (c *Client) DoJSON(req *http.Request, resp interface{}) error {
	q, err := c.Do(req)
	if err != nil {
		return err
	}
	defer q.Body.Close()

	if resp != nil {
		if err := json.NewDecoder(q.Body).Decode(resp); err != nil {
			return errors.Wrap(err, "Failed to decode response")
		}
	}

	return nil
}

func (c *Client) Get(ctx context.Context, path string, resp interface{}, v url.Values) error {
	var url = c.Endpoint() + path
	if len(v) > 0 {
		url += "?" + v.Encode()
	}

	r, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return errors.Wrap(err, "Failed to create request")
	}
	r.Header.Set("Accept", "application/json")

	return c.DoJSON(r, resp)
}
