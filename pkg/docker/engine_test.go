/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

package docker

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/radius-project/spoke/pkg/errors"
)

type fakeAPI struct {
	networks       map[string]network.Inspect
	containers     map[string]container.InspectResponse
	created        []string
	started        []string
	removed        []string
	removedNets    []string
	connected      []string
	pulled         []string
	connectErr     error
	createErr      error
	removeErr      error
	removeNetErr   error
	inspectNetErr  error
	inspectContErr error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		networks:   map[string]network.Inspect{},
		containers: map[string]container.InspectResponse{},
	}
}

func (f *fakeAPI) NetworkInspect(_ context.Context, id string, _ network.InspectOptions) (network.Inspect, error) {
	if f.inspectNetErr != nil {
		return network.Inspect{}, f.inspectNetErr
	}
	if n, ok := f.networks[id]; ok {
		return n, nil
	}
	return network.Inspect{}, cerrdefs.ErrNotFound
}

func (f *fakeAPI) NetworkCreate(_ context.Context, name string, _ network.CreateOptions) (network.CreateResponse, error) {
	f.networks[name] = network.Inspect{Name: name}
	return network.CreateResponse{ID: "net-" + name}, nil
}

func (f *fakeAPI) NetworkRemove(_ context.Context, id string) error {
	if f.removeNetErr != nil {
		return f.removeNetErr
	}
	f.removedNets = append(f.removedNets, id)
	return nil
}

func (f *fakeAPI) NetworkConnect(_ context.Context, networkID, containerID string, _ *network.EndpointSettings) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = append(f.connected, networkID+"/"+containerID)
	return nil
}

func (f *fakeAPI) ContainerInspect(_ context.Context, id string) (container.InspectResponse, error) {
	if f.inspectContErr != nil {
		return container.InspectResponse{}, f.inspectContErr
	}
	if c, ok := f.containers[id]; ok {
		return c, nil
	}
	return container.InspectResponse{}, cerrdefs.ErrNotFound
}

func (f *fakeAPI) ContainerCreate(_ context.Context, _ *container.Config, _ *container.HostConfig,
	_ *network.NetworkingConfig, _ *ocispec.Platform, name string) (container.CreateResponse, error) {
	if f.createErr != nil {
		return container.CreateResponse{}, f.createErr
	}
	f.created = append(f.created, name)
	return container.CreateResponse{ID: "cafebabe0123" + name}, nil
}

func (f *fakeAPI) ContainerStart(_ context.Context, id string, _ container.StartOptions) error {
	f.started = append(f.started, id)
	return nil
}

func (f *fakeAPI) ContainerRemove(_ context.Context, id string, _ container.RemoveOptions) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeAPI) ImagePull(_ context.Context, ref string, _ image.PullOptions) (io.ReadCloser, error) {
	f.pulled = append(f.pulled, ref)
	return io.NopCloser(bytes.NewReader(nil)), nil
}

func (f *fakeAPI) Close() error { return nil }

func TestEnsureNetworkCreatesMissing(t *testing.T) {
	fake := newFakeAPI()
	e := &Engine{client: fake}

	require.NoError(t, e.EnsureNetwork(context.Background(), "airgap"))
	_, ok := fake.networks["airgap"]
	assert.True(t, ok)

	// second call is a no-op
	require.NoError(t, e.EnsureNetwork(context.Background(), "airgap"))
}

func TestNetworkExists(t *testing.T) {
	fake := newFakeAPI()
	fake.networks["kind"] = network.Inspect{Name: "kind"}
	e := &Engine{client: fake}

	ok, err := e.NetworkExists(context.Background(), "kind")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.NetworkExists(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRemoveContainerToleratesAbsence(t *testing.T) {
	fake := newFakeAPI()
	fake.removeErr = cerrdefs.ErrNotFound
	e := &Engine{client: fake}

	assert.NoError(t, e.RemoveContainer(context.Background(), "registry.localhost"))
}

func TestRemoveNetworkToleratesAbsence(t *testing.T) {
	fake := newFakeAPI()
	fake.removeNetErr = cerrdefs.ErrNotFound
	e := &Engine{client: fake}

	assert.NoError(t, e.RemoveNetwork(context.Background(), "airgap"))
}

func TestConnectToleratesAlreadyConnected(t *testing.T) {
	fake := newFakeAPI()
	fake.connectErr = errors.New("endpoint with name registry.localhost already exists in network kind")
	e := &Engine{client: fake}

	assert.NoError(t, e.Connect(context.Background(), "kind", "registry.localhost"))
}

func TestConnectPropagatesOtherErrors(t *testing.T) {
	fake := newFakeAPI()
	fake.connectErr = errors.New("daemon unavailable")
	e := &Engine{client: fake}

	assert.Error(t, e.Connect(context.Background(), "kind", "registry.localhost"))
}

func TestRunContainerPullsCreatesStarts(t *testing.T) {
	fake := newFakeAPI()
	e := &Engine{client: fake}

	id, err := e.RunContainer(context.Background(), RunSpec{
		Name:          "registry.localhost",
		Image:         "docker.io/library/registry:2",
		Network:       "airgap",
		RestartAlways: true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, []string{"docker.io/library/registry:2"}, fake.pulled)
	assert.Equal(t, []string{"registry.localhost"}, fake.created)
	assert.Len(t, fake.started, 1)
}

func TestContainerIPPrefersNetworkOrder(t *testing.T) {
	fake := newFakeAPI()
	fake.containers["registry.localhost"] = container.InspectResponse{
		NetworkSettings: &container.NetworkSettings{
			Networks: map[string]*network.EndpointSettings{
				"airgap": {IPAddress: "172.20.0.2"},
				"kind":   {IPAddress: "172.18.0.5"},
			},
		},
	}
	e := &Engine{client: fake}

	ip, err := e.ContainerIP(context.Background(), "registry.localhost", "kind", "airgap")
	require.NoError(t, err)
	assert.Equal(t, "172.18.0.5", ip)
}

func TestContainerIPResolvesByNetworkID(t *testing.T) {
	fake := newFakeAPI()
	fake.networks["kind"] = network.Inspect{Name: "kind", ID: "abc123"}
	fake.containers["registry.localhost"] = container.InspectResponse{
		NetworkSettings: &container.NetworkSettings{
			Networks: map[string]*network.EndpointSettings{
				"kind-old": {NetworkID: "abc123", IPAddress: "172.18.0.5"},
				"bridge":   {IPAddress: "172.17.0.3"},
			},
		},
	}
	e := &Engine{client: fake}

	ip, err := e.ContainerIP(context.Background(), "registry.localhost", "kind")
	require.NoError(t, err)
	assert.Equal(t, "172.18.0.5", ip)
}

func TestContainerIPFallsBackToAnyNetwork(t *testing.T) {
	fake := newFakeAPI()
	fake.containers["registry.localhost"] = container.InspectResponse{
		NetworkSettings: &container.NetworkSettings{
			Networks: map[string]*network.EndpointSettings{
				"bridge": {IPAddress: "172.17.0.3"},
			},
		},
	}
	e := &Engine{client: fake}

	ip, err := e.ContainerIP(context.Background(), "registry.localhost", "kind")
	require.NoError(t, err)
	assert.Equal(t, "172.17.0.3", ip)
}

func TestContainerIPNoNetworks(t *testing.T) {
	fake := newFakeAPI()
	fake.containers["registry.localhost"] = container.InspectResponse{
		NetworkSettings: &container.NetworkSettings{},
	}
	e := &Engine{client: fake}

	_, err := e.ContainerIP(context.Background(), "registry.localhost")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeRegistryIPUnresolved, apperrors.CodeOf(err))
}
