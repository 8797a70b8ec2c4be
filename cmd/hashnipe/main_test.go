package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rxtech-lab/hashnipe/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testWallet = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"
	testAgent  = "0x1234567890123456789012345678901234567890"
)

const upstreamLaunch = `{
  "id": 812,
  "genesisId": "1042",
  "status": "STARTED",
  "startsAt": "2025-03-01T12:00:00.000Z",
  "endsAt": "2025-03-02T12:00:00.000Z",
  "totalParticipants": 312,
  "totalPoints": "48211.5",
  "totalVirtuals": 90500,
  "virtual": {"id": 22001, "name": "Agent Smith", "symbol": "SMITH", "tokenAddress": null}
}`

func newUpstream(t *testing.T) *httptest.Server {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/geneses":
			fmt.Fprintf(w, `{"data": [%s], "meta": {"pagination": {"page": 1, "pageSize": 10, "pageCount": 1, "total": 1}}}`, upstreamLaunch)
		case "/api/geneses/1042":
			fmt.Fprintf(w, `{"data": %s}`, upstreamLaunch)
		case "/api/virtuals":
			fmt.Fprint(w, `{"data": [{"id": 5, "name": "Proto", "symbol": "PRT", "tokenAddress": "0x1234567890123456789012345678901234567890", "holderCount": 77}], "meta": {"pagination": {"page": 1, "pageSize": 10, "pageCount": 1, "total": 1}}}`)
		case "/backend/swapquote":
			fmt.Fprint(w, `{"success": true, "data": {"toTokenAmount": "2500000000000000000", "toToken": {"decimal": 18}}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message": "Not Found"}`)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

// run executes the CLI against the fake upstream and returns its output
func run(t *testing.T, env map[string]string, args ...string) (string, error) {
	t.Helper()
	ts := newUpstream(t)
	vars := map[string]string{
		"HASHNIPE_VIRTUALS_API_URL": ts.URL,
		"HASHNIPE_BACKEND_URL":      ts.URL + "/backend",
	}
	for k, v := range env {
		vars[k] = v
	}
	lookup := func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}

	var out bytes.Buffer
	root := newRootCmd(lookup)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestLaunchesCmd(t *testing.T) {
	out, err := run(t, nil, "launches", "--filter", "active")
	require.NoError(t, err)
	assert.Contains(t, out, "1042")
	assert.Contains(t, out, "Agent Smith ($SMITH)")
	assert.Contains(t, out, "Page 1 of 1 (1 total)")
}

func TestLaunchesCmd_JSON(t *testing.T) {
	out, err := run(t, nil, "launches", "--json")
	require.NoError(t, err)

	var page struct {
		Items []struct {
			GenesisID string `json:"genesisId"`
			Score     struct {
				Participants float64 `json:"participants"`
			} `json:"score"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "1042", page.Items[0].GenesisID)
	assert.Equal(t, 30.0, page.Items[0].Score.Participants)
}

func TestLaunchesCmd_UnknownFilter(t *testing.T) {
	_, err := run(t, nil, "launches", "--filter", "hot")
	require.Error(t, err)
	assert.Contains(t, errs.UserMessage(err), "unknown filter")
}

func TestTopCmd(t *testing.T) {
	out, err := run(t, nil, "top")
	require.NoError(t, err)
	assert.Contains(t, out, "1042")
	assert.Contains(t, out, "Top 1 of 1 active launches")
}

func TestTokensCmd(t *testing.T) {
	out, err := run(t, nil, "tokens", "Prototype")
	require.NoError(t, err)
	assert.Contains(t, out, "Proto")
	assert.Contains(t, out, testAgent)

	_, err = run(t, nil, "tokens", "meme")
	require.Error(t, err)
	assert.Contains(t, errs.UserMessage(err), "unknown token category")

	_, err = run(t, nil, "tokens")
	assert.Error(t, err)
}

func TestScoreCmd(t *testing.T) {
	out, err := run(t, nil, "score", "1042")
	require.NoError(t, err)
	assert.Contains(t, out, "participants")
	assert.Contains(t, out, "30.0")
	assert.Contains(t, out, "Score: ")

	_, err = run(t, nil, "score", "404")
	require.Error(t, err)
	assert.Equal(t, "Not Found", errs.UserMessage(err))
}

func TestQuoteCmd(t *testing.T) {
	env := map[string]string{
		"HASHNIPE_WALLET_ADDRESS": testWallet,
		"HASHNIPE_BEARER_TOKEN":   "static-token",
	}

	out, err := run(t, env, "quote", "buy", testAgent, "150")
	require.NoError(t, err)
	assert.Contains(t, out, "-> 2.5 "+testAgent)

	_, err = run(t, env, "quote", "hold", testAgent, "150")
	require.Error(t, err)
	assert.Contains(t, errs.UserMessage(err), "invalid trade direction")

	_, err = run(t, env, "quote", "buy", testAgent, "lots")
	require.Error(t, err)
	assert.Equal(t, "Please enter a valid amount", errs.UserMessage(err))

	_, err = run(t, map[string]string{"HASHNIPE_BEARER_TOKEN": "static-token"}, "quote", "buy", testAgent, "150")
	require.Error(t, err)
	assert.Equal(t, "No wallet connected", errs.UserMessage(err))
}

func TestInvalidConfiguration(t *testing.T) {
	_, err := run(t, map[string]string{"HASHNIPE_PAGE_SIZE": "500"}, "launches")
	assert.Error(t, err)
}
