package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSessionResolver struct {
	result checkout.Result
	got    string
}

func (m *mockSessionResolver) Resolve(_ context.Context, sessionID string) checkout.Result {
	m.got = sessionID
	return m.result
}

func TestSuccess_Rendered(t *testing.T) {
	name := "Ana"
	resolver := &mockSessionResolver{result: checkout.Result{
		Outcome: checkout.OutcomeRendered,
		Summary: &domain.OrderSummary{
			CustomerName: &name,
			Products: []domain.PurchasedProduct{
				{ID: "prod_1", Name: "Tee", ImageURL: "https://files.example.com/tee.png", Quantity: 2},
			},
		},
	}}
	handler := NewOrdersHandler(resolver)

	rec := httptest.NewRecorder()
	handler.Success(rec, httptest.NewRequest("GET", "/success?session_id=cs_test_1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cs_test_1", resolver.got)
	assert.JSONEq(t, `{
		"customerName": "Ana",
		"products": [{"id": "prod_1", "name": "Tee", "imageUrl": "https://files.example.com/tee.png", "quantity": 2}]
	}`, rec.Body.String())
}

func TestSuccess_NoCustomerName(t *testing.T) {
	resolver := &mockSessionResolver{result: checkout.Result{
		Outcome: checkout.OutcomeRendered,
		Summary: &domain.OrderSummary{Products: []domain.PurchasedProduct{}},
	}}
	handler := NewOrdersHandler(resolver)

	rec := httptest.NewRecorder()
	handler.Success(rec, httptest.NewRequest("GET", "/success?session_id=cs_test_2", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Contains(t, body, "customerName")
	assert.Nil(t, body["customerName"])
}

func TestSuccess_Redirect(t *testing.T) {
	resolver := &mockSessionResolver{result: checkout.Result{Outcome: checkout.OutcomeRedirect, RedirectTo: "/"}}
	handler := NewOrdersHandler(resolver)

	rec := httptest.NewRecorder()
	handler.Success(rec, httptest.NewRequest("GET", "/success", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Empty(t, resolver.got)
}

func TestSuccess_PermanentRedirect(t *testing.T) {
	resolver := &mockSessionResolver{result: checkout.Result{Outcome: checkout.OutcomeRedirect, RedirectTo: "/", Permanent: true}}
	handler := NewOrdersHandler(resolver)

	rec := httptest.NewRecorder()
	handler.Success(rec, httptest.NewRequest("GET", "/success", nil))

	assert.Equal(t, http.StatusPermanentRedirect, rec.Code)
}

func TestSuccess_Failures(t *testing.T) {
	tests := []struct {
		outcome    checkout.Outcome
		wantStatus int
		wantCode   string
	}{
		{checkout.OutcomeNotFound, http.StatusNotFound, "not_found"},
		{checkout.OutcomeUnavailable, http.StatusServiceUnavailable, "service_unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.outcome.String(), func(t *testing.T) {
			resolver := &mockSessionResolver{result: checkout.Result{Outcome: tt.outcome, Err: errors.New("provider said no")}}
			handler := NewOrdersHandler(resolver)

			rec := httptest.NewRecorder()
			handler.Success(rec, httptest.NewRequest("GET", "/success?session_id=cs_bad", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.NotContains(t, resp.Error, "provider said no")
		})
	}
}
