package server

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iwvelando/givewise/internal/estimate"
	"github.com/iwvelando/givewise/pkg/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	return NewHandler(zap.NewNop(), DefaultConfig(), estimate.DefaultInput(), "1.2.3")
}

func perform(t *testing.T, handler http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func decodeEstimate(t *testing.T, rr *httptest.ResponseRecorder) estimateResponse {
	t.Helper()
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp estimateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestHandleEstimateQuery(t *testing.T) {
	handler := newTestHandler(t)

	rr := perform(t, handler, http.MethodGet, "/api/estimate?amount=1000&province=ON&income=300000", nil)
	resp := decodeEstimate(t, rr)

	if math.Abs(resp.Credit.Total-393.30) > 0.005 {
		t.Fatalf("expected credit 393.30, got %v", resp.Credit.Total)
	}
	if resp.Input.GiftType != estimate.Cash {
		t.Fatalf("expected default gift type cash, got %s", resp.Input.GiftType)
	}
	if resp.Display.Credit != "$393" {
		t.Fatalf("expected display credit $393, got %s", resp.Display.Credit)
	}
	if resp.Display.NetCost != "$607" {
		t.Fatalf("expected display net cost $607, got %s", resp.Display.NetCost)
	}
	if len(resp.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", resp.Warnings)
	}
}

func TestHandleEstimateDefaults(t *testing.T) {
	handler := newTestHandler(t)

	resp := decodeEstimate(t, perform(t, handler, http.MethodGet, "/api/estimate", nil))

	if resp.Input != estimate.DefaultInput() {
		t.Fatalf("expected default input, got %+v", resp.Input)
	}
	if resp.ProvinceName != "Ontario" {
		t.Fatalf("expected Ontario, got %s", resp.ProvinceName)
	}
}

func TestHandleEstimatePostSecurities(t *testing.T) {
	handler := newTestHandler(t)

	body := []byte(`{"amount": 1000, "province": "ON", "income": 80000, "giftType": "securities", "adjustedCostBase": 500}`)
	resp := decodeEstimate(t, perform(t, handler, http.MethodPost, "/api/estimate", body))

	if math.Abs(resp.CapitalGainsTaxSaved-133.825) > 0.005 {
		t.Fatalf("expected capital gains saved 133.825, got %v", resp.CapitalGainsTaxSaved)
	}
	if math.Abs(resp.NetCost-504.875) > 0.005 {
		t.Fatalf("expected net cost 504.875, got %v", resp.NetCost)
	}
	if resp.Display.CapitalGainsTaxSaved != "$134" {
		t.Fatalf("expected display capital gains $134, got %s", resp.Display.CapitalGainsTaxSaved)
	}
}

func TestHandleEstimatePostPartialUsesDefaults(t *testing.T) {
	handler := newTestHandler(t)

	resp := decodeEstimate(t, perform(t, handler, http.MethodPost, "/api/estimate", []byte(`{"province": "QC"}`)))

	if resp.Input.Province != "QC" {
		t.Fatalf("expected province QC, got %s", resp.Input.Province)
	}
	if resp.Input.Amount != estimate.DefaultInput().Amount {
		t.Fatalf("expected default amount, got %v", resp.Input.Amount)
	}
}

func TestHandleEstimateUnknownProvinceWarns(t *testing.T) {
	handler := newTestHandler(t)

	resp := decodeEstimate(t, perform(t, handler, http.MethodGet, "/api/estimate?province=YT", nil))

	if !resp.FallbackProvince {
		t.Fatal("expected fallback province flag")
	}
	if resp.ProvinceName != "Other / Territories" {
		t.Fatalf("expected fallback name, got %s", resp.ProvinceName)
	}
	if len(resp.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", resp.Warnings)
	}
}

func TestHandleEstimateBadInput(t *testing.T) {
	handler := newTestHandler(t)

	tests := []struct {
		name   string
		method string
		target string
		body   []byte
		want   string
	}{
		{"non-numeric amount", http.MethodGet, "/api/estimate?amount=lots", nil, "invalid amount"},
		{"unknown gift type", http.MethodGet, "/api/estimate?giftType=bonds", nil, "expected gift type"},
		{"non-finite income", http.MethodGet, "/api/estimate?income=Inf", nil, "income must be a finite number"},
		{"malformed json", http.MethodPost, "/api/estimate", []byte(`{"amount":`), "failed to decode input"},
		{"json gift type", http.MethodPost, "/api/estimate", []byte(`{"giftType":"bonds"}`), "failed to decode input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := perform(t, handler, tt.method, tt.target, tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
			}
			var body map[string]string
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if !strings.Contains(body["error"], tt.want) {
				t.Fatalf("expected error containing %q, got %q", tt.want, body["error"])
			}
		})
	}
}

func TestHandleEstimateLargeAmountDisplay(t *testing.T) {
	handler := newTestHandler(t)

	rr := perform(t, handler, http.MethodGet, "/api/estimate?amount=1e20", nil)
	resp := decodeEstimate(t, rr)

	if resp.Display.Donation != "$100,000,000,000,000,000,000" {
		t.Fatalf("expected grouped donation display, got %s", resp.Display.Donation)
	}
	if strings.HasPrefix(resp.Display.FederalCredit, "-") {
		t.Fatalf("expected positive federal credit display, got %s", resp.Display.FederalCredit)
	}
}

func TestHandleNonFiniteResult(t *testing.T) {
	handler := newTestHandler(t)
	body := []byte(`{"amount":1.7e308,"adjustedCostBase":-1.7e308,"giftType":"securities"}`)

	for _, target := range []string{"/api/estimate", "/api/compare"} {
		t.Run(target, func(t *testing.T) {
			rr := perform(t, handler, http.MethodPost, target, body)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected status 422, got %d: %s", rr.Code, rr.Body.String())
			}
			var resp map[string]string
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if !strings.Contains(resp["error"], "finite") {
				t.Fatalf("unexpected error %q", resp["error"])
			}
		})
	}
}

func TestHandleCompareWarningsPerGiftType(t *testing.T) {
	handler := newTestHandler(t)

	rr := perform(t, handler, http.MethodGet, "/api/compare?amount=1000&province=ON&adjustedCostBase=2000", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp compareResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Cash.Warnings) != 0 {
		t.Fatalf("expected no cash warnings, got %v", resp.Cash.Warnings)
	}
	if len(resp.Securities.Warnings) != 1 || !strings.Contains(resp.Securities.Warnings[0], "adjusted cost base") {
		t.Fatalf("expected adjusted cost base warning for securities, got %v", resp.Securities.Warnings)
	}
}

func TestHandleEstimateBodyTooLarge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SetBodySizeBytes(16)
	handler := NewHandler(zap.NewNop(), cfg, estimate.DefaultInput(), "")

	body := []byte(`{"province": "ON", "amount": 1000, "income": 100000}`)
	rr := perform(t, handler, http.MethodPost, "/api/estimate", body)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestHandleCompare(t *testing.T) {
	handler := newTestHandler(t)

	rr := perform(t, handler, http.MethodGet, "/api/compare?amount=1000&province=ON&income=80000&adjustedCostBase=500", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp compareResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Cash.Input.GiftType != estimate.Cash || resp.Securities.Input.GiftType != estimate.Securities {
		t.Fatalf("unexpected gift types %s / %s", resp.Cash.Input.GiftType, resp.Securities.Input.GiftType)
	}
	if math.Abs(resp.Advantage-133.825) > 0.005 {
		t.Fatalf("expected advantage 133.825, got %v", resp.Advantage)
	}
	if resp.AdvantageDisplay != "$134" {
		t.Fatalf("expected advantage display $134, got %s", resp.AdvantageDisplay)
	}
}

func TestHandleProvinces(t *testing.T) {
	handler := newTestHandler(t)

	rr := perform(t, handler, http.MethodGet, "/api/provinces", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp provincesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Provinces) != 11 {
		t.Fatalf("expected 11 provinces, got %d", len(resp.Provinces))
	}
	if resp.Provinces[len(resp.Provinces)-1].Code != "OTHER" {
		t.Fatalf("expected OTHER last, got %s", resp.Provinces[len(resp.Provinces)-1].Code)
	}
	on := testutil.FindProvince(resp.Provinces, "ON")
	if on == nil || on.Over200Rate != 0.1115 {
		t.Fatalf("expected Ontario over-200 rate 0.1115, got %+v", on)
	}
	if resp.Federal.HighIncomeThreshold != 246752 {
		t.Fatalf("unexpected federal threshold %v", resp.Federal.HighIncomeThreshold)
	}
}

func TestHandleIncomeBrackets(t *testing.T) {
	handler := newTestHandler(t)

	rr := perform(t, handler, http.MethodGet, "/api/income-brackets", nil)
	var brackets []estimate.IncomeBracket
	if err := json.Unmarshal(rr.Body.Bytes(), &brackets); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(brackets) != 5 {
		t.Fatalf("expected 5 brackets, got %d", len(brackets))
	}
}

func TestHandleIncomeBracketsIncludesConfiguredIncome(t *testing.T) {
	defaults := estimate.DefaultInput()
	defaults.Income = 80000
	handler := NewHandler(zap.NewNop(), DefaultConfig(), defaults, "")

	rr := perform(t, handler, http.MethodGet, "/api/income-brackets", nil)
	var brackets []estimate.IncomeBracket
	if err := json.Unmarshal(rr.Body.Bytes(), &brackets); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(brackets) != 6 {
		t.Fatalf("expected 6 brackets, got %d", len(brackets))
	}
	if brackets[1].Income != 80000 || brackets[1].Label != "$80,000" {
		t.Fatalf("expected configured income as second bracket, got %+v", brackets[1])
	}
}

func TestHandleVersion(t *testing.T) {
	rr := perform(t, newTestHandler(t), http.MethodGet, "/api/version", nil)
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["version"] != "1.2.3" {
		t.Fatalf("expected version 1.2.3, got %s", body["version"])
	}

	rr = perform(t, NewHandler(nil, nil, estimate.DefaultInput(), "  "), http.MethodGet, "/api/version", nil)
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["version"] != "dev" {
		t.Fatalf("expected version dev, got %s", body["version"])
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rr := perform(t, newTestHandler(t), http.MethodDelete, "/api/estimate", nil)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rr.Code)
	}
}

func TestStaticIndex(t *testing.T) {
	rr := perform(t, newTestHandler(t), http.MethodGet, "/", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "GiveWise") {
		t.Fatal("expected index page")
	}
}

func TestCORSAllowedOrigin(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowedOrigins = []string{"http://localhost:5173"}
	handler := NewHandler(zap.NewNop(), cfg, estimate.DefaultInput(), "")

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("expected CORS header for allowed origin, got %q", got)
	}
}
