package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionURLUsesPublishedPort(t *testing.T) {
	engine := newFakeEngine()
	// The engine maps the configured port 4444 to a different host port.
	engine.portMap[4444] = 32768
	engine.portMap[5900] = 32769

	s, err := New(engine, chromeCaps(), Options{})
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))

	url, err := s.ConnectionURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:32768/wd/hub", url,
		"URL carries the published mapping, not the configured port")
}

func TestConnectionURLHonorsHostAddress(t *testing.T) {
	engine := newFakeEngine()
	engine.portMap[4444] = 40000
	engine.hostAddr = "10.1.2.3"

	s, err := New(engine, chromeCaps(), Options{})
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))

	url, err := s.ConnectionURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "http://10.1.2.3:40000/wd/hub", url)
}

func TestConnectionURLBeforeStartFails(t *testing.T) {
	engine := newFakeEngine()
	s, err := New(engine, chromeCaps(), Options{})
	require.NoError(t, err)

	_, err = s.ConnectionURL(context.Background())
	assert.Error(t, err)
}

func TestConnectionURLUnpublishedPortFails(t *testing.T) {
	engine := newFakeEngine() // empty port map
	s, err := New(engine, chromeCaps(), Options{})
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))

	_, err = s.ConnectionURL(context.Background())
	assert.Error(t, err)
}

func TestVNCAddress(t *testing.T) {
	engine := newFakeEngine()
	engine.portMap[5900] = 33000

	s, err := New(engine, chromeCaps(), Options{})
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))

	addr, err := s.VNCAddress(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "localhost:33000", addr)
}

func TestCustomPortsArePublished(t *testing.T) {
	engine := newFakeEngine()
	engine.portMap[4445] = 34000

	s, err := New(engine, chromeCaps(), Options{Port: 4445, VNCPort: 5901})
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))

	assert.Equal(t, []int{4445, 5901}, engine.lastConfigs[0].ExposedPorts)

	url, err := s.ConnectionURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:34000/wd/hub", url)
}
