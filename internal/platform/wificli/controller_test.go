package wificli

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecutor struct {
	calls [][]string
	outs  map[string]string
	errs  map[string]error
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{outs: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeExecutor) key(name string, args ...string) string {
	return name + " " + strings.Join(args, " ")
}

func (f *fakeExecutor) Execute(name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	k := f.key(name, args...)
	if err, ok := f.errs[k]; ok {
		return nil, err
	}
	return []byte(f.outs[k]), nil
}

func TestIsConnected_ParsesCompletedState(t *testing.T) {
	exec := newFakeExecutor()
	exec.outs["wpa_cli -i wlan0 status"] = "bssid=aa:bb\nwpa_state=COMPLETED\nip_address=10.0.0.5\n"
	c := New("wlan0", exec)
	assert.True(t, c.IsConnected())
}

func TestIsConnected_FalseWhenNotCompleted(t *testing.T) {
	exec := newFakeExecutor()
	exec.outs["wpa_cli -i wlan0 status"] = "wpa_state=SCANNING\n"
	c := New("wlan0", exec)
	assert.False(t, c.IsConnected())
}

func TestIsConnected_FalseOnExecError(t *testing.T) {
	exec := newFakeExecutor()
	exec.errs["wpa_cli -i wlan0 status"] = errors.New("no such interface")
	c := New("wlan0", exec)
	assert.False(t, c.IsConnected())
}

func TestApplyClientConfig_StartAsync_RequiresConfigureFirst(t *testing.T) {
	exec := newFakeExecutor()
	c := New("wlan0", exec)

	err := c.StartAsync(context.Background())
	assert.Error(t, err, "StartAsync before ApplyClientConfig must fail")

	exec.outs["wpa_cli -i wlan0 add_network"] = "0\n"
	require.NoError(t, c.ApplyClientConfig(context.Background(), "myssid", "mypassword"))
	assert.NoError(t, c.StartAsync(context.Background()))
	assert.True(t, c.IsStarted())
}

func TestStopAsync_ResetsConfiguredAndStarted(t *testing.T) {
	exec := newFakeExecutor()
	exec.outs["wpa_cli -i wlan0 add_network"] = "0\n"
	c := New("wlan0", exec)

	require.NoError(t, c.ApplyClientConfig(context.Background(), "ssid", "pw"))
	require.NoError(t, c.StartAsync(context.Background()))

	require.NoError(t, c.StopAsync(context.Background()))
	assert.False(t, c.IsStarted())

	err := c.StartAsync(context.Background())
	assert.Error(t, err, "StartAsync after Stop must require configuring again")
}

func TestConnectAsync_DisconnectAsync_InvokeWpaCli(t *testing.T) {
	exec := newFakeExecutor()
	c := New("wlan0", exec)

	require.NoError(t, c.ConnectAsync(context.Background()))
	require.NoError(t, c.DisconnectAsync(context.Background()))

	assert.Contains(t, exec.calls, []string{"wpa_cli", "-i", "wlan0", "reassociate"})
	assert.Contains(t, exec.calls, []string{"wpa_cli", "-i", "wlan0", "disconnect"})
}
