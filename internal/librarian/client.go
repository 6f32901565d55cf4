package librarian

import (
	"context"
	"io"
	"net/url"
)

// TokenParam is the query parameter every authenticated call carries.
const TokenParam = "authToken"

// Doer is what the Client needs from a transport. *Transport implements
// it; tests substitute fakes.
type Doer interface {
	Send(ctx context.Context, method, path string, query url.Values, body any) (Payload, error)
	Raw(ctx context.Context, req RawRequest) (*RawResponse, error)
}

// Client shapes typed calls for each librarian resource. Each method
// maps to exactly one transport call and never retries.
type Client struct {
	transport Doer
	token     string

	Projects  *ProjectsService
	Users     *UsersService
	Addons    *AddonsService
	Servos    *ServosService
	Databases *DatabasesService
	SSL       *SSLService
	Stats     *StatsService
	Images    *ImagesService
}

type service struct {
	client *Client
}

// NewClient returns a Client that sends through transport, authenticating
// with token. A nil transport yields a client whose every call fails with
// ErrNotInitialized.
func NewClient(transport Doer, token string) *Client {
	c := &Client{transport: transport, token: token}
	c.wire()
	return c
}

func (c *Client) wire() {
	s := service{client: c}
	c.Projects = (*ProjectsService)(&s)
	c.Users = (*UsersService)(&s)
	c.Addons = (*AddonsService)(&s)
	c.Servos = (*ServosService)(&s)
	c.Databases = (*DatabasesService)(&s)
	c.SSL = (*SSLService)(&s)
	c.Stats = (*StatsService)(&s)
	c.Images = (*ImagesService)(&s)
}

// WithToken returns a copy of c authenticating with token.
func (c *Client) WithToken(token string) *Client {
	return NewClient(c.transport, token)
}

// Token returns the token the client authenticates with.
func (c *Client) Token() string {
	return c.token
}

func (c *Client) query(extra url.Values) url.Values {
	q := url.Values{}
	for k, v := range extra {
		q[k] = v
	}
	q.Set(TokenParam, c.token)
	return q
}

func (c *Client) ready() bool {
	return c != nil && c.transport != nil
}

// call sends one authenticated JSON request and decodes a non-null
// payload into out when out is non-nil.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out any) (Payload, error) {
	if !c.ready() {
		return nil, ErrNotInitialized
	}
	payload, err := c.transport.Send(ctx, method, path, c.query(query), body)
	if err != nil {
		return nil, err
	}
	if out != nil {
		if err := payload.Decode(out); err != nil {
			return nil, err
		}
	}
	return payload, nil
}

// raw sends one authenticated streamed request.
func (c *Client) raw(ctx context.Context, req RawRequest) (*RawResponse, error) {
	if !c.ready() {
		return nil, ErrNotInitialized
	}
	req.Query = c.query(req.Query)
	return c.transport.Raw(ctx, req)
}

// rawJSON sends a streamed request whose response is a JSON envelope.
func (c *Client) rawJSON(ctx context.Context, req RawRequest, out any) error {
	resp, err := c.raw(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	payload, err := interpret(resp.StatusCode, data)
	if err != nil {
		return err
	}
	if out != nil {
		return payload.Decode(out)
	}
	return nil
}

// route joins escaped path segments.
func route(parts ...string) string {
	p := ""
	for _, part := range parts {
		p += "/" + url.PathEscape(part)
	}
	return p
}
