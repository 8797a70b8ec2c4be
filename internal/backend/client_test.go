package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rxtech-lab/hashnipe/internal/auth"
	"github.com/rxtech-lab/hashnipe/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	wallet   = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"
	virtual  = "0x0b3e328455c4059EEb9e3f84b5543F74E24e7E1b"
	agentTok = "0x1234567890123456789012345678901234567890"
)

type BackendClientTestSuite struct {
	suite.Suite
	server  *httptest.Server
	client  *Client
	handler http.HandlerFunc
}

func (s *BackendClientTestSuite) SetupTest() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handler(w, r)
	}))
	s.client = NewClient(s.server.URL+"/api", auth.NewStatic("secret-token", wallet),
		WithHTTPClient(s.server.Client()), WithTimeout(2*time.Second))
}

func (s *BackendClientTestSuite) TearDownTest() {
	s.server.Close()
}

func (s *BackendClientTestSuite) TestSwapQuote() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		s.Equal("/api/swapquote", r.URL.Path)
		s.Equal("Bearer secret-token", r.Header.Get("Authorization"))
		q := r.URL.Query()
		s.Equal("8453", q.Get("chainId"))
		s.Equal(virtual, q.Get("fromTokenAddress"))
		s.Equal(agentTok, q.Get("toTokenAddress"))
		s.Equal("1000000000000000000", q.Get("amountInBN"))
		s.Equal("1", q.Get("slippage"))
		s.Equal(wallet, q.Get("userWalletAddress"))
		fmt.Fprint(w, `{"success": true, "data": {"toTokenAmount": "2500000000000000000", "toToken": {"decimal": 18}}}`)
	}

	quote, err := s.client.SwapQuote(context.Background(), SwapRequest{
		ChainID:           8453,
		FromTokenAddress:  virtual,
		ToTokenAddress:    agentTok,
		AmountInBN:        "1000000000000000000",
		Slippage:          1,
		UserWalletAddress: wallet,
	})
	s.Require().NoError(err)
	s.Equal("2500000000000000000", quote.ToTokenAmount)
	s.Equal(18, quote.ToTokenDecimals)
}

func (s *BackendClientTestSuite) TestSwapQuote_NumericAmountAndStringDecimal() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success": true, "data": {"toTokenAmount": 123456, "toToken": {"decimal": "6"}}}`)
	}
	quote, err := s.client.SwapQuote(context.Background(), SwapRequest{})
	s.Require().NoError(err)
	s.Equal("123456", quote.ToTokenAmount)
	s.Equal(6, quote.ToTokenDecimals)
}

func (s *BackendClientTestSuite) TestSwapQuote_Unsuccessful() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success": false, "message": "No route found"}`)
	}
	_, err := s.client.SwapQuote(context.Background(), SwapRequest{})
	s.Require().Error(err)
	s.Equal("No route found", errs.UserMessage(err))
}

func (s *BackendClientTestSuite) TestSwapQuote_RateLimited() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"message": "slow down"}`)
	}
	_, err := s.client.SwapQuote(context.Background(), SwapRequest{})
	var rl *errs.RateLimitError
	s.Require().True(errors.As(err, &rl))
	s.Equal("Too many requests. Please try again in 7 seconds.", errs.UserMessage(err))
}

func (s *BackendClientTestSuite) TestSwap() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodPost, r.Method)
		s.Equal("/api/swap", r.URL.Path)
		s.Equal("application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		s.Require().NoError(json.NewDecoder(r.Body).Decode(&body))
		s.Equal(float64(8453), body["chainId"])
		s.Equal("5000", body["amountInBN"])
		s.Equal(wallet, body["userWalletAddress"])
		s.Equal(0.5, body["slippage"])

		fmt.Fprint(w, `{"success": true, "message": "Swap submitted", "data": {"txHash": "0xabc"}}`)
	}

	res, err := s.client.Swap(context.Background(), SwapRequest{
		ChainID:           8453,
		FromTokenAddress:  virtual,
		ToTokenAddress:    agentTok,
		AmountInBN:        "5000",
		Slippage:          0.5,
		UserWalletAddress: wallet,
	})
	s.Require().NoError(err)
	s.True(res.Success)
	s.Equal("Swap submitted", res.Message)
	s.Equal("0xabc", res.DataJSON()["txHash"])
}

func (s *BackendClientTestSuite) TestSwap_Failed() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success": false, "data": "reverted"}`)
	}
	res, err := s.client.Swap(context.Background(), SwapRequest{})
	s.Require().Error(err)
	s.Require().NotNil(res)
	s.Equal("Swap failed", errs.UserMessage(err))
	s.Equal("reverted", res.DataJSON()["value"])
}

func (s *BackendClientTestSuite) TestSnipe() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		s.Equal("/api/snipe", r.URL.Path)
		var body SnipeRequest
		s.Require().NoError(json.NewDecoder(r.Body).Decode(&body))
		s.Equal("1042", body.GenesisID)
		s.Equal("100", body.Amount)
		fmt.Fprint(w, `{"data": {"deposit": {"finalAmount": "99.5"}, "agent": {"launchTime": "2025-03-02T12:00:00Z"}}}`)
	}

	res, err := s.client.Snipe(context.Background(), SnipeRequest{
		GenesisID:     "1042",
		Name:          "Agent Smith",
		WalletAddress: wallet,
		Token:         virtual,
		Amount:        "100",
	})
	s.Require().NoError(err)
	s.Equal("99.5", res.FinalAmount)
	s.Require().NotNil(res.LaunchTime)
	s.Equal(time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC), res.LaunchTime.UTC())
	s.NotNil(res.Raw["data"])
}

func (s *BackendClientTestSuite) TestGetBalance() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		s.Equal("/api/getBalance", r.URL.Path)
		s.Equal(virtual, r.URL.Query().Get("tokenAddress"))
		s.Equal(wallet, r.URL.Query().Get("walletAddress"))
		fmt.Fprint(w, `{"data": {"formattedBalance": 42.75}}`)
	}

	bal, err := s.client.GetBalance(context.Background(), virtual, wallet)
	s.Require().NoError(err)
	s.Equal("42.75", bal.Formatted)
}

func (s *BackendClientTestSuite) TestUnauthorized() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}
	_, err := s.client.GetBalance(context.Background(), virtual, wallet)
	var ae *errs.AuthError
	s.True(errors.As(err, &ae))
	s.Equal(http.StatusUnauthorized, errs.HTTPStatus(err))
}

func (s *BackendClientTestSuite) TestMalformedBody() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": `)
	}
	_, err := s.client.GetBalance(context.Background(), virtual, wallet)
	s.Equal(errs.MalformedMessage, errs.UserMessage(err))
}

func TestBackendClientTestSuite(t *testing.T) {
	suite.Run(t, new(BackendClientTestSuite))
}

func TestMissingTokenSkipsRequest(t *testing.T) {
	hits := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer ts.Close()

	client := NewClient(ts.URL, auth.NewStatic("", wallet), WithHTTPClient(ts.Client()))
	_, err := client.GetBalance(context.Background(), virtual, wallet)
	require.ErrorIs(t, err, errs.ErrTokenNotFound)
	assert.Equal(t, "Authentication token not found. Please sign in again.", errs.UserMessage(err))
	assert.Equal(t, 0, hits)
	assert.Equal(t, uint64(0), client.Requests())
}
