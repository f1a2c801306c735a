package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/openbilateral/bilateral/pkg/exchange"
	"github.com/openbilateral/bilateral/pkg/exchange/store"
	"github.com/openbilateral/bilateral/pkg/exchange/types"
	"github.com/openbilateral/bilateral/pkg/host"
	"github.com/openbilateral/bilateral/pkg/storage"
)

const (
	testContract = "0xc0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c4"
	testAdmin    = "0xadadadadadadadadadadadadadadadadadadada3"
	testAsker    = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa1"
	testBidder   = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb2"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	log := zap.NewNop().Sugar()
	engine := exchange.New(
		store.New(storage.NewMemKV()),
		host.NewRegistry(),
		common.HexToAddress(testContract),
		log,
	)
	return NewServer(engine, log).Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func instantiate(t *testing.T, h http.Handler) {
	t.Helper()
	rec := doJSON(t, h, "POST", "/api/v1/contract", InstantiateRequest{
		Sender:       testAdmin,
		BindName:     "bilateral.sc",
		ContractName: "Bilateral Trade",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("instantiate: status %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t)
	rec := doJSON(t, h, "GET", "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestContractLifecycle(t *testing.T) {
	h := newTestHandler(t)

	// Before instantiation the contract info query is a 404.
	rec := doJSON(t, h, "GET", "/api/v1/contract", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("pre-instantiate status = %d, want 404", rec.Code)
	}

	instantiate(t, h)

	rec = doJSON(t, h, "GET", "/api/v1/contract", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var info types.ContractInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Admin != common.HexToAddress(testAdmin) {
		t.Errorf("admin = %s", info.Admin.Hex())
	}
	if info.ContractVersion != types.ContractVersion {
		t.Errorf("version = %q", info.ContractVersion)
	}
}

func TestCreateAndGetAsk(t *testing.T) {
	h := newTestHandler(t)
	instantiate(t, h)

	rec := doJSON(t, h, "POST", "/api/v1/asks", CreateAskRequest{
		Sender: testAsker,
		ID:     "ask-1",
		Quote:  types.Coins{types.NewCoin(100, "quote")},
		Funds:  types.Coins{types.NewCoin(100, "base")},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create: status %d, body %s", rec.Code, rec.Body.String())
	}
	var resp CallResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Instructions) != 0 {
		t.Errorf("no fee configured but got instructions: %+v", resp.Instructions)
	}

	rec = doJSON(t, h, "GET", "/api/v1/asks/ask-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status %d", rec.Code)
	}
	var order types.AskOrder
	if err := json.Unmarshal(rec.Body.Bytes(), &order); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if order.Owner != common.HexToAddress(testAsker) {
		t.Errorf("owner = %s", order.Owner.Hex())
	}
}

func TestGetAsk_NotFound(t *testing.T) {
	h := newTestHandler(t)
	instantiate(t, h)

	rec := doJSON(t, h, "GET", "/api/v1/asks/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestCreateAsk_InvalidSender(t *testing.T) {
	h := newTestHandler(t)
	instantiate(t, h)

	rec := doJSON(t, h, "POST", "/api/v1/asks", CreateAskRequest{
		Sender: "not-an-address",
		ID:     "ask-1",
		Quote:  types.Coins{types.NewCoin(100, "quote")},
		Funds:  types.Coins{types.NewCoin(100, "base")},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	h := newTestHandler(t)
	instantiate(t, h)

	// Seed one ask and one bid.
	rec := doJSON(t, h, "POST", "/api/v1/asks", CreateAskRequest{
		Sender: testAsker,
		ID:     "a1",
		Quote:  types.Coins{types.NewCoin(100, "quote")},
		Funds:  types.Coins{types.NewCoin(100, "base")},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("seed ask: %d %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, h, "POST", "/api/v1/bids", CreateBidRequest{
		Sender: testBidder,
		ID:     "b1",
		Base:   types.CoinsBase(types.Coins{types.NewCoin(100, "base")}),
		Funds:  types.Coins{types.NewCoin(99, "quote")},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("seed bid: %d %s", rec.Code, rec.Body.String())
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{
			name: "duplicate ask id", method: "POST", path: "/api/v1/asks",
			body: CreateAskRequest{
				Sender: testAsker, ID: "a1",
				Quote: types.Coins{types.NewCoin(1, "quote")},
				Funds: types.Coins{types.NewCoin(1, "base")},
			},
			want: http.StatusConflict,
		},
		{
			name: "missing quote", method: "POST", path: "/api/v1/asks",
			body: CreateAskRequest{
				Sender: testAsker, ID: "a2",
				Funds: types.Coins{types.NewCoin(1, "base")},
			},
			want: http.StatusBadRequest,
		},
		{
			name: "cancel by wrong owner", method: "POST", path: "/api/v1/asks/a1/cancel",
			body: CancelRequest{Sender: testBidder},
			want: http.StatusForbidden,
		},
		{
			name: "cancel unknown id", method: "POST", path: "/api/v1/asks/nope/cancel",
			body: CancelRequest{Sender: testAsker},
			want: http.StatusForbidden,
		},
		{
			name: "match quote mismatch", method: "POST", path: "/api/v1/matches",
			body: ExecuteMatchRequest{Sender: testAdmin, AskID: "a1", BidID: "b1"},
			want: http.StatusConflict,
		},
		{
			name: "match by non-admin", method: "POST", path: "/api/v1/matches",
			body: ExecuteMatchRequest{Sender: testAsker, AskID: "a1", BidID: "b1"},
			want: http.StatusForbidden,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, tt.method, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d; body %s", rec.Code, tt.want, rec.Body.String())
			}
			var errResp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if errResp.Error == "" {
				t.Error("empty error message")
			}
		})
	}
}

func TestMatchFlow(t *testing.T) {
	h := newTestHandler(t)
	instantiate(t, h)

	rec := doJSON(t, h, "POST", "/api/v1/asks", CreateAskRequest{
		Sender: testAsker,
		ID:     "a1",
		Quote:  types.Coins{types.NewCoin(100, "quote")},
		Funds:  types.Coins{types.NewCoin(100, "base")},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create ask: %d %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, h, "POST", "/api/v1/bids", CreateBidRequest{
		Sender: testBidder,
		ID:     "b1",
		Base:   types.CoinsBase(types.Coins{types.NewCoin(100, "base")}),
		Funds:  types.Coins{types.NewCoin(100, "quote")},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create bid: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, "POST", "/api/v1/matches", ExecuteMatchRequest{
		Sender: testAdmin, AskID: "a1", BidID: "b1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("match: %d %s", rec.Code, rec.Body.String())
	}
	var resp CallResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Instructions) != 2 {
		t.Fatalf("instructions = %+v, want 2 transfers", resp.Instructions)
	}
	for _, in := range resp.Instructions {
		if in.Type != "transfer_funds" {
			t.Errorf("instruction type = %q", in.Type)
		}
	}

	// Both sides are gone afterwards.
	if rec := doJSON(t, h, "GET", "/api/v1/asks/a1", nil); rec.Code != http.StatusNotFound {
		t.Errorf("ask after match: status = %d", rec.Code)
	}
	if rec := doJSON(t, h, "GET", "/api/v1/bids/b1", nil); rec.Code != http.StatusNotFound {
		t.Errorf("bid after match: status = %d", rec.Code)
	}
}
