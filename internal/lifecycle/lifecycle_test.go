package lifecycle_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nova-metrics/eventpipe/internal/lifecycle"
)

type fakeStore struct {
	err error
}

func (s *fakeStore) Count(ctx context.Context) (int64, error) {
	return 0, s.err
}

type fakeCloser struct {
	closed *[]string
	name   string
}

func (c *fakeCloser) Close() error {
	*c.closed = append(*c.closed, c.name)
	return nil
}

func TestReadiness_StoreUnreachable(t *testing.T) {
	m := lifecycle.New(nil, &fakeStore{err: errors.New("down")})
	assert.Error(t, m.Readiness(context.Background()))
}

func TestReadiness_Healthy(t *testing.T) {
	m := lifecycle.New(nil, &fakeStore{})
	assert.NoError(t, m.Readiness(context.Background()))
}

func TestLiveness_AlwaysOK(t *testing.T) {
	m := lifecycle.New(nil, nil)
	require.NoError(t, m.Liveness(context.Background()))
}

func TestShutdown_ClosesInReverseOrder(t *testing.T) {
	var closed []string
	m := lifecycle.New(nil, nil)
	m.Track("first", &fakeCloser{closed: &closed, name: "first"})
	m.Track("second", &fakeCloser{closed: &closed, name: "second"})

	m.Shutdown(context.Background())

	assert.Equal(t, []string{"second", "first"}, closed)
}
