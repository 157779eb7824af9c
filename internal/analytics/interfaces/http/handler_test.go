package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/optionanalytics/internal/analytics/application"
	"github.com/wyfcoding/optionanalytics/internal/analytics/domain"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	svc := application.NewAnalyticsService(domain.NewEngine(), nil, nil, nil)
	NewAnalyticsHandler(svc).RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func optionPayload() map[string]any {
	return map[string]any{
		"symbol":         "AAPL-C-100",
		"type":           "CALL",
		"spot":           100.0,
		"strike":         100.0,
		"time_to_expiry": 1.0,
		"rate":           0.05,
		"volatility":     0.2,
	}
}

func TestEvaluateGreeksEndpoint(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/v1/analytics/greeks", optionPayload())
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Code int    `json:"code"`
		Msg  string `json:"message"`
		Data struct {
			Greeks struct {
				Symbol string `json:"symbol"`
				Price  string `json:"price"`
				Delta  string `json:"delta"`
			} `json:"greeks"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, "AAPL-C-100", resp.Data.Greeks.Symbol)
	assert.NotEmpty(t, resp.Data.Greeks.Price)
}

func TestEvaluateGreeksEndpointRejectsMissingFields(t *testing.T) {
	router := newTestRouter()

	// 缺少必填的 volatility
	payload := optionPayload()
	delete(payload, "volatility")

	w := doJSON(t, router, http.MethodPost, "/api/v1/analytics/greeks", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEvaluateGreeksEndpointRejectsInvalidLeg(t *testing.T) {
	router := newTestRouter()

	payload := optionPayload()
	payload["volatility"] = -0.2

	w := doJSON(t, router, http.MethodPost, "/api/v1/analytics/greeks", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSweepEndpoint(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/v1/analytics/sweep", map[string]any{
		"option":    optionPayload(),
		"dimension": "price",
		"range":     map[string]any{"min": 80.0, "max": 120.0, "step_count": 4},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Dimension string `json:"dimension"`
			Samples   []struct {
				ParameterValue float64 `json:"parameter_value"`
			} `json:"samples"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "price", resp.Data.Dimension)
	require.Len(t, resp.Data.Samples, 5)
	assert.InDelta(t, 80, resp.Data.Samples[0].ParameterValue, 1e-12)
	assert.InDelta(t, 120, resp.Data.Samples[4].ParameterValue, 1e-12)
}

func TestSweepEndpointRejectsUnknownDimension(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/v1/analytics/sweep", map[string]any{
		"option":    optionPayload(),
		"dimension": "dividend",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSurfaceEndpoint(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/v1/analytics/surface", map[string]any{
		"option":      optionPayload(),
		"x_dimension": "price",
		"y_dimension": "volatility",
		"x_range":     map[string]any{"min": 90.0, "max": 110.0, "step_count": 2},
		"y_range":     map[string]any{"min": 0.1, "max": 0.3, "step_count": 2},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Points []struct {
				X float64 `json:"x"`
				Y float64 `json:"y"`
				Z float64 `json:"z"`
			} `json:"points"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Points, 9)
}

func TestAggregateEndpoint(t *testing.T) {
	router := newTestRouter()

	leg := func(side string) map[string]any {
		return map[string]any{
			"type":           "CALL",
			"side":           side,
			"quantity":       1,
			"spot":           100.0,
			"strike":         100.0,
			"time_to_expiry": 1.0,
			"rate":           0.05,
			"volatility":     0.2,
		}
	}

	w := doJSON(t, router, http.MethodPost, "/api/v1/analytics/portfolio/aggregate", map[string]any{
		"legs":      []map[string]any{leg("LONG"), leg("SHORT")},
		"dimension": "price",
		"range":     map[string]any{"min": 80.0, "max": 120.0, "step_count": 4},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Points []struct {
				Delta float64 `json:"delta"`
				Value float64 `json:"value"`
			} `json:"points"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.Len(t, resp.Data.Points, 5)
	for _, p := range resp.Data.Points {
		assert.InDelta(t, 0, p.Delta, 1e-12)
		assert.InDelta(t, 0, p.Value, 1e-12)
	}
}

func TestAggregateEndpointRejectsEmptyLegs(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/v1/analytics/portfolio/aggregate", map[string]any{
		"legs":      []map[string]any{},
		"dimension": "price",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistoryEndpointWithoutRepository(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/history/AAPL-C-100", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Symbol string `json:"symbol"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "AAPL-C-100", resp.Data.Symbol)
}
