package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"quickkart/internal/discount"
	"quickkart/internal/model"
	"quickkart/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCouponService is a mock implementation of service.CouponService.
type MockCouponService struct {
	mock.Mock
}

func (m *MockCouponService) Candidates(ctx context.Context, deviceID string) ([]model.Coupon, error) {
	args := m.Called(ctx, deviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Coupon), args.Error(1)
}

func (m *MockCouponService) Apply(ctx context.Context, deviceID, code string) (*service.CouponApplication, error) {
	args := m.Called(ctx, deviceID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CouponApplication), args.Error(1)
}

var _ service.CouponService = (*MockCouponService)(nil)

func TestCouponHandler_Candidates(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		method         string
		deviceID       string
		mockReturn     []model.Coupon
		mockError      error
		expectedStatus int
		expectService  bool
		expectedCount  int
	}{
		{
			name:     "Returns eligible coupons",
			method:   http.MethodGet,
			deviceID: "device-1",
			mockReturn: []model.Coupon{
				{Code: "SAVE50", DiscountType: model.DiscountFixed, DiscountValue: 50, Criteria: model.CriteriaAll},
				{Code: "PCT10", DiscountType: model.DiscountPercentage, DiscountValue: 10, Criteria: model.CriteriaAll},
			},
			expectedStatus: http.StatusOK,
			expectService:  true,
			expectedCount:  2,
		},
		{
			name:           "Empty cart yields no candidates",
			method:         http.MethodGet,
			deviceID:       "device-1",
			mockReturn:     []model.Coupon{},
			expectedStatus: http.StatusOK,
			expectService:  true,
			expectedCount:  0,
		},
		{
			name:           "Missing device id",
			method:         http.MethodGet,
			deviceID:       "",
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
		{
			name:           "Method not allowed",
			method:         http.MethodPost,
			deviceID:       "device-1",
			expectedStatus: http.StatusMethodNotAllowed,
			expectService:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockCouponService)
			if tt.expectService {
				mockService.On("Candidates", mock.Anything, tt.deviceID).Return(tt.mockReturn, tt.mockError)
			}

			h := NewCouponHandler(mockService, logger)

			req := httptest.NewRequest(tt.method, "/api/coupons", nil)
			if tt.deviceID != "" {
				req.Header.Set("X-Device-ID", tt.deviceID)
			}
			w := httptest.NewRecorder()

			h.Candidates(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)

			if tt.expectedStatus == http.StatusOK {
				var coupons []model.Coupon
				require.NoError(t, json.NewDecoder(w.Body).Decode(&coupons))
				assert.Len(t, coupons, tt.expectedCount)
			}
		})
	}
}

func TestCouponHandler_Apply(t *testing.T) {
	logger := zerolog.Nop()

	application := &service.CouponApplication{
		Coupon: model.Coupon{Code: "SAVE50", DiscountType: model.DiscountFixed, DiscountValue: 50, Criteria: model.CriteriaAll},
		Allocation: discount.Allocation{
			TotalApplied: 50,
		},
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		mockReturn     *service.CouponApplication
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			requestBody:    applyCouponRequest{Code: "SAVE50"},
			mockReturn:     application,
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Unknown code",
			requestBody:    applyCouponRequest{Code: "NOPE"},
			mockError:      model.ErrCouponNotFound,
			expectedStatus: http.StatusBadRequest,
			expectService:  true,
		},
		{
			name:           "Rejected code",
			requestBody:    applyCouponRequest{Code: "MIN500"},
			mockError:      model.ErrCouponRejected("order subtotal must be at least 500 to use this coupon"),
			expectedStatus: http.StatusBadRequest,
			expectService:  true,
		},
		{
			name:           "Missing code",
			requestBody:    applyCouponRequest{},
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
		{
			name:           "Invalid JSON",
			requestBody:    "not-json",
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockCouponService)
			if tt.expectService {
				body := tt.requestBody.(applyCouponRequest)
				mockService.On("Apply", mock.Anything, "device-1", body.Code).Return(tt.mockReturn, tt.mockError)
			}

			h := NewCouponHandler(mockService, logger)

			var body bytes.Buffer
			if s, ok := tt.requestBody.(string); ok {
				body.WriteString(s)
			} else {
				require.NoError(t, json.NewEncoder(&body).Encode(tt.requestBody))
			}

			req := httptest.NewRequest(http.MethodPost, "/api/coupons/apply", &body)
			req.Header.Set("X-Device-ID", "device-1")
			w := httptest.NewRecorder()

			h.Apply(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}
