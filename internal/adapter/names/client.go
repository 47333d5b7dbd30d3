package names

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"golang.org/x/time/rate"

	"outpost/internal/app/ports"
	"outpost/internal/domain/survival"
)

type ClientConfig struct {
	URL     string
	Timeout time.Duration
	// Rate is the number of requests allowed per second.
	Rate float64
}

// Client fetches names from a remote service answering
// GET <url>?count=N with [{"name": "...", "gender": "female"}].
type Client struct {
	url     string
	timeout time.Duration
	http    *client.Client
	limiter *rate.Limiter
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("names: empty url")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.Rate <= 0 {
		cfg.Rate = 1
	}
	c, err := client.NewClient(client.WithDialTimeout(cfg.Timeout))
	if err != nil {
		return nil, fmt.Errorf("names: new client: %w", err)
	}
	return &Client{
		url:     cfg.URL,
		timeout: cfg.Timeout,
		http:    c,
		limiter: rate.NewLimiter(rate.Limit(cfg.Rate), 1),
	}, nil
}

type remoteName struct {
	Name   string `json:"name"`
	Gender string `json:"gender"`
}

func (c *Client) Fetch(ctx context.Context, count int) ([]ports.Name, error) {
	if count <= 0 {
		return nil, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("names: rate limiter: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u, err := url.Parse(c.url)
	if err != nil {
		return nil, fmt.Errorf("names: parse url: %w", err)
	}
	q := u.Query()
	q.Set("count", strconv.Itoa(count))
	u.RawQuery = q.Encode()

	status, body, err := c.http.Get(ctx, nil, u.String())
	if err != nil {
		return nil, fmt.Errorf("names: request: %w", err)
	}
	if status != consts.StatusOK {
		return nil, fmt.Errorf("names: unexpected status %d", status)
	}
	var raw []remoteName
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("names: decode: %w", err)
	}
	out := make([]ports.Name, 0, len(raw))
	for _, r := range raw {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			continue
		}
		out = append(out, ports.Name{Name: name, Gender: parseGender(r.Gender)})
	}
	return out, nil
}

func parseGender(s string) survival.Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "female", "f":
		return survival.GenderFemale
	case "male", "m":
		return survival.GenderMale
	default:
		return survival.GenderOther
	}
}
