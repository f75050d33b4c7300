package remote_test

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geophile/osh/internal/cluster"
	"github.com/geophile/osh/internal/ops"
	"github.com/geophile/osh/internal/pipeline"
	"github.com/geophile/osh/internal/remote"
)

func newGen(t *testing.T, count int) pipeline.Operator {
	t.Helper()
	gen, err := ops.NewGen(&count, nil, nil)
	require.NoError(t, err)
	return gen
}

func TestNewBindsSubPipeline(t *testing.T) {
	sub := pipeline.NewPipeline(newGen(t, 3))
	sub.SetCLITokens([]string{"gen", "3"})

	r, err := remote.New(sub)
	require.NoError(t, err)
	require.NoError(t, r.Setup(nil))

	assert.Contains(t, r.String(), "_remote(pipeline(gen")
}

func TestSetupAcceptsPipelineWithoutCLITokens(t *testing.T) {
	sub := pipeline.NewPipeline(newGen(t, 1))
	_ = cluster.Host{Name: "h1", Address: "h1.example.com", User: "root", DBProfile: "prod"}

	r, err := remote.New(sub)
	require.NoError(t, err)
	require.NoError(t, r.Setup(nil))
}

// TestRequestRoundTripsHost confirms a Request carries the dispatching
// host through the same JSON encoding remoteosh decodes with, so the
// remote side can recover its worker identity from the wire.
func TestRequestRoundTripsHost(t *testing.T) {
	host := cluster.Host{Name: "h1", Address: "h1.example.com", User: "deploy", Identity: "/key", DBProfile: "prod"}
	request := remote.Request{
		Verbosity: 1,
		Pipeline:  []string{"gen", "3"},
		Host:      host,
	}

	raw, err := sonic.Marshal(request)
	require.NoError(t, err)

	var decoded remote.Request
	require.NoError(t, sonic.Unmarshal(raw, &decoded))

	assert.Equal(t, request, decoded)
	assert.Equal(t, host, decoded.Host)
}

func TestReceiveRejectsInput(t *testing.T) {
	sub := pipeline.NewPipeline(newGen(t, 1))
	r, err := remote.New(sub)
	require.NoError(t, err)
	require.NoError(t, r.Setup(nil))

	err = r.Receive(nil, []interface{}{1})
	assert.Error(t, err)
}
