package names

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outpost/internal/app/ports"
	"outpost/internal/domain/survival"
)

func TestClient_FetchDecodesNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("count"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"name":"Rue","gender":"F"},{"name":" ","gender":"m"},{"name":"Kit","gender":"?"}]`))
	}))
	defer srv.Close()

	c, err := NewClient(ClientConfig{URL: srv.URL, Timeout: time.Second, Rate: 100})
	require.NoError(t, err)
	got, err := c.Fetch(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []ports.Name{
		{Name: "Rue", Gender: survival.GenderFemale},
		{Name: "Kit", Gender: survival.GenderOther},
	}, got)
}

func TestClient_FetchNonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := NewClient(ClientConfig{URL: srv.URL, Rate: 100})
	require.NoError(t, err)
	_, err = c.Fetch(context.Background(), 1)
	assert.Error(t, err)
}

func TestNewClient_RequiresURL(t *testing.T) {
	_, err := NewClient(ClientConfig{})
	assert.Error(t, err)
}

type stubProvider struct {
	names []ports.Name
	err   error
	calls int
}

func (s *stubProvider) Fetch(context.Context, int) ([]ports.Name, error) {
	s.calls++
	return s.names, s.err
}

func TestPool_FallbackCyclesWithSuffix(t *testing.T) {
	p := NewPool(nil, PoolConfig{})
	first, gender := p.Next()
	assert.Equal(t, "Ada", first)
	assert.Equal(t, survival.GenderFemale, gender)
	for i := 1; i < len(fallback); i++ {
		p.Next()
	}
	again, _ := p.Next()
	assert.Equal(t, "Ada 2", again)
}

func TestPool_RefillsInBackground(t *testing.T) {
	prov := &stubProvider{names: []ports.Name{{Name: "Zed", Gender: survival.GenderMale}}}
	p := NewPool(prov, PoolConfig{Low: 1})

	name, _ := p.Next()
	assert.Equal(t, "Ada", name)
	p.Wait()

	name, gender := p.Next()
	assert.Equal(t, "Zed", name)
	assert.Equal(t, survival.GenderMale, gender)
	p.Wait()
}

func TestPool_FetchErrorKeepsFallback(t *testing.T) {
	prov := &stubProvider{err: errors.New("offline")}
	p := NewPool(prov, PoolConfig{})
	p.Next()
	p.Wait()
	name, _ := p.Next()
	assert.Equal(t, "Bram", name)
	p.Wait()
	assert.GreaterOrEqual(t, prov.calls, 1)
}

func TestPool_Prefetch(t *testing.T) {
	prov := &stubProvider{names: []ports.Name{{Name: "Oli", Gender: survival.GenderOther}}}
	p := NewPool(prov, PoolConfig{Low: 1})
	require.NoError(t, p.Prefetch(context.Background()))
	name, _ := p.Next()
	assert.Equal(t, "Oli", name)
	p.Wait()
}
