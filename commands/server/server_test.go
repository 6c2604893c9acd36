package server

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arabica-labs/arabica/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

func TestParseFlags(t *testing.T) {
	f, err := parseFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, "tcp://localhost:46658", f.bind)
	assert.False(t, f.debug)

	f, err = parseFlags([]string{"-bind", "tcp://0.0.0.0:26658", "-metrics", "", "-debug"})
	require.NoError(t, err)
	assert.Equal(t, "tcp://0.0.0.0:26658", f.bind)
	assert.Equal(t, "", f.metrics)
	assert.True(t, f.debug)

	_, err = parseFlags([]string{"-unknown"})
	assert.True(t, errors.ErrInput.Is(err))
}

func TestInitCmd(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, "config"), 0700))
	genFile := filepath.Join(home, "config", "genesis.json")
	require.NoError(t, ioutil.WriteFile(genFile, []byte(`{"chain_id": "arabica-devnet", "app_state": null}`), 0600))

	calls := 0
	gen := func(h string) (json.RawMessage, error) {
		calls++
		assert.Equal(t, home, h)
		return json.RawMessage(`{"cash": []}`), nil
	}
	logger := log.NewNopLogger()

	require.NoError(t, InitCmd(gen, logger, home, nil))
	doc, err := readGenesis(genFile)
	require.NoError(t, err)
	assert.JSONEq(t, `{"cash": []}`, string(doc["app_state"]))
	assert.JSONEq(t, `"arabica-devnet"`, string(doc["chain_id"]))

	err = InitCmd(gen, logger, home, nil)
	assert.True(t, errors.ErrState.Is(err))
	assert.Equal(t, 1, calls)

	require.NoError(t, InitCmd(gen, logger, home, []string{"-i"}))
	assert.Equal(t, 2, calls)

	err = InitCmd(gen, logger, t.TempDir(), nil)
	assert.True(t, errors.ErrInput.Is(err))
}

func TestRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	srv := httptest.NewServer(NewRouter(abci.NewBaseApplication(), reg))
	defer srv.Close()

	get := func(path string) (int, string) {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := ioutil.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	code, body := get("/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body)

	code, body = get("/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, strings.Contains(body, "go_goroutines"))

	code, body = get("/abci_info")
	assert.Equal(t, http.StatusOK, code)
	var info abci.ResponseInfo
	require.NoError(t, json.Unmarshal([]byte(body), &info))

	code, _ = get("/unknown")
	assert.Equal(t, http.StatusNotFound, code)
}
