package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

func TestForgotPasswordHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name            string
		reqBody         ForgotPasswordRequest
		mockSetup       func(m *MockPasswordForgetter)
		expectedCode    int
		expectedMessage string
	}{
		{
			name:    "known email",
			reqBody: ForgotPasswordRequest{Email: "john@example.com"},
			mockSetup: func(m *MockPasswordForgetter) {
				m.EXPECT().ForgotPassword(gomock.Any(), "john@example.com").Return(nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			// The service hides whether the email exists; the handler
			// returns the same confirmation either way
			name:    "unknown email",
			reqBody: ForgotPasswordRequest{Email: "nobody@example.com"},
			mockSetup: func(m *MockPasswordForgetter) {
				m.EXPECT().ForgotPassword(gomock.Any(), "nobody@example.com").Return(nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:            "missing email",
			reqBody:         ForgotPasswordRequest{},
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "Email is required",
		},
		{
			name:    "internal server error",
			reqBody: ForgotPasswordRequest{Email: "john@example.com"},
			mockSetup: func(m *MockPasswordForgetter) {
				m.EXPECT().ForgotPassword(gomock.Any(), "john@example.com").Return(errors.New("db error"))
			},
			expectedCode:    http.StatusInternalServerError,
			expectedMessage: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := NewMockPasswordForgetter(ctrl)
			if tt.mockSetup != nil {
				tt.mockSetup(mockSvc)
			}

			handler := NewForgotPasswordHandler(mockSvc)

			bodyBytes, _ := json.Marshal(tt.reqBody)
			req := httptest.NewRequest(http.MethodPost, "/api/auth/forgot-password", bytes.NewBuffer(bodyBytes))
			rr := httptest.NewRecorder()
			handler(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)

			if tt.expectedMessage != "" {
				var resp ErrorResponse
				assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, tt.expectedMessage, resp.Error.Message)
			} else {
				var resp MessageResponse
				assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.True(t, resp.Success)
				assert.Equal(t, "If the email exists, a password reset link has been sent", resp.Message)
			}
		})
	}
}
