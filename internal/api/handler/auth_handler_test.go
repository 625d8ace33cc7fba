package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/campusconnect/campusconnect-api/internal/api/middleware"
	"github.com/campusconnect/campusconnect-api/internal/core/domain"
	"github.com/campusconnect/campusconnect-api/internal/core/ports"
)

type stubAuthServices struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error)
	verifyFn   func(ctx context.Context, email, code string) (*ports.Session, error)
	resendFn   func(ctx context.Context, email string) error
	loginFn    func(ctx context.Context, email, password string) (*ports.LoginResult, error)
	requestFn  func(ctx context.Context, email string) (*ports.ResetRequestResult, error)
	resetFn    func(ctx context.Context, email, code, newPassword string) error
	meFn       func(ctx context.Context, accountID string) (*domain.AccountSummary, error)
	updateFn   func(ctx context.Context, accountID string, patch domain.ProfilePatch) (*ports.Session, error)
}

func (s *stubAuthServices) Register(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthServices) Verify(ctx context.Context, email, code string) (*ports.Session, error) {
	return s.verifyFn(ctx, email, code)
}

func (s *stubAuthServices) ResendCode(ctx context.Context, email string) error {
	return s.resendFn(ctx, email)
}

func (s *stubAuthServices) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthServices) RequestReset(ctx context.Context, email string) (*ports.ResetRequestResult, error) {
	return s.requestFn(ctx, email)
}

func (s *stubAuthServices) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	return s.resetFn(ctx, email, code, newPassword)
}

func (s *stubAuthServices) Me(ctx context.Context, accountID string) (*domain.AccountSummary, error) {
	return s.meFn(ctx, accountID)
}

func (s *stubAuthServices) UpdateProfile(ctx context.Context, accountID string, patch domain.ProfilePatch) (*ports.Session, error) {
	return s.updateFn(ctx, accountID, patch)
}

func newAuthHandler(s *stubAuthServices) *AuthHandler {
	return NewAuthHandler(s, s, s, s)
}

func newJSONContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

var aliceSummary = domain.AccountSummary{
	ID:         "acc-1",
	Name:       "Alice",
	Email:      "alice@cit.edu",
	Phone:      "0300",
	Role:       domain.RoleStudent,
	AccessCode: "CIT25",
	IsVerified: true,
}

func TestAuthHandler_Signup_Success(t *testing.T) {
	stub := &stubAuthServices{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
			if in.Name != "Alice" || in.AccessCode != "cit25" || in.Phone != "0300" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.RegisterResult{Email: "alice@cit.edu"}, nil
		},
	}

	c, rec := newJSONContext(http.MethodPost, "/auth/signup",
		`{"name":"Alice","email":"Alice@CIT.edu","password":"secret1","phone":"0300","accessCode":"cit25"}`)
	if err := newAuthHandler(stub).Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	resp := decodeBody(t, rec)
	if resp["email"] != "alice@cit.edu" || resp["message"] == "" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if _, ok := resp["token"]; ok {
		t.Fatalf("signup must not return a token")
	}
}

func TestAuthHandler_Signup_MissingFields(t *testing.T) {
	stub := &stubAuthServices{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.RegisterResult, error) {
			t.Fatalf("service should not be called")
			return nil, nil
		},
	}

	c, _ := newJSONContext(http.MethodPost, "/auth/signup", `{"name":"Alice","email":"alice@cit.edu"}`)
	err := newAuthHandler(stub).Signup(c)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if !strings.Contains(err.Error(), "accessCode is required") {
		t.Fatalf("expected json field name in message, got %q", err.Error())
	}
}

func TestAuthHandler_Signup_PropagatesDomainErrors(t *testing.T) {
	for _, want := range []error{domain.ErrForbidden, domain.ErrAccountExists} {
		stub := &stubAuthServices{
			registerFn: func(context.Context, ports.RegisterInput) (*ports.RegisterResult, error) {
				return nil, want
			},
		}
		c, _ := newJSONContext(http.MethodPost, "/auth/signup",
			`{"name":"Bob","email":"bob@cit.edu","password":"secret1","phone":"1","accessCode":"XX99"}`)
		if err := newAuthHandler(stub).Signup(c); !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
	}
}

func TestAuthHandler_Signup_MalformedJSON(t *testing.T) {
	c, _ := newJSONContext(http.MethodPost, "/auth/signup", `{"name":`)
	err := newAuthHandler(&stubAuthServices{}).Signup(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_VerifyEmail_Success(t *testing.T) {
	stub := &stubAuthServices{
		verifyFn: func(_ context.Context, email, code string) (*ports.Session, error) {
			if email != "alice@cit.edu" || code != "123456" {
				t.Fatalf("unexpected args: %s %s", email, code)
			}
			return &ports.Session{Token: "jwt", Account: aliceSummary}, nil
		},
	}

	c, rec := newJSONContext(http.MethodPost, "/auth/verify-email", `{"email":"alice@cit.edu","code":"123456"}`)
	if err := newAuthHandler(stub).VerifyEmail(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeBody(t, rec)
	if resp["token"] != "jwt" || resp["id"] != "acc-1" || resp["email"] != "alice@cit.edu" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_ResendCode(t *testing.T) {
	stub := &stubAuthServices{
		resendFn: func(_ context.Context, email string) error {
			if email == "gone@cit.edu" {
				return domain.ErrAccountNotFound
			}
			return nil
		},
	}

	c, rec := newJSONContext(http.MethodPost, "/auth/resend-code", `{"email":"alice@cit.edu"}`)
	if err := newAuthHandler(stub).ResendCode(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, _ = newJSONContext(http.MethodPost, "/auth/resend-code", `{"email":"gone@cit.edu"}`)
	if err := newAuthHandler(stub).ResendCode(c); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthServices{
		loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
			return &ports.LoginResult{Session: &ports.Session{Token: "jwt", Account: aliceSummary}}, nil
		},
	}

	c, rec := newJSONContext(http.MethodPost, "/auth/login", `{"email":"alice@cit.edu","password":"secret1"}`)
	if err := newAuthHandler(stub).Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeBody(t, rec)
	for _, key := range []string{"id", "name", "email", "phone", "whatsapp", "role", "token"} {
		if _, ok := resp[key]; !ok {
			t.Fatalf("missing %q in %+v", key, resp)
		}
	}
	if _, ok := resp["password"]; ok {
		t.Fatalf("password must never be returned")
	}
}

func TestAuthHandler_Login_Unverified(t *testing.T) {
	stub := &stubAuthServices{
		loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
			return &ports.LoginResult{VerificationRequired: true, Email: "alice@cit.edu"}, nil
		},
	}

	c, rec := newJSONContext(http.MethodPost, "/auth/login", `{"email":"alice@cit.edu","password":"secret1"}`)
	if err := newAuthHandler(stub).Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	resp := decodeBody(t, rec)
	if resp["requiresVerification"] != true || resp["email"] != "alice@cit.edu" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if _, ok := resp["token"]; ok {
		t.Fatalf("unverified login must not return a token")
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthServices{
		loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}

	c, _ := newJSONContext(http.MethodPost, "/auth/login", `{"email":"alice@cit.edu","password":"wrong"}`)
	if err := newAuthHandler(stub).Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_ForgotAndReset(t *testing.T) {
	stub := &stubAuthServices{
		requestFn: func(_ context.Context, email string) (*ports.ResetRequestResult, error) {
			return &ports.ResetRequestResult{Email: email}, nil
		},
		resetFn: func(_ context.Context, email, code, pw string) error {
			if code != "654321" || pw != "newpass1" {
				return domain.ErrInvalidCode
			}
			return nil
		},
	}
	h := newAuthHandler(stub)

	c, rec := newJSONContext(http.MethodPost, "/auth/forgot-password", `{"email":"alice@cit.edu"}`)
	if err := h.ForgotPassword(c); err != nil {
		t.Fatalf("forgot error: %v", err)
	}
	if resp := decodeBody(t, rec); resp["email"] != "alice@cit.edu" {
		t.Fatalf("unexpected payload: %+v", resp)
	}

	c, rec = newJSONContext(http.MethodPost, "/auth/reset-password",
		`{"email":"alice@cit.edu","code":"654321","newPassword":"newpass1"}`)
	if err := h.ResetPassword(c); err != nil {
		t.Fatalf("reset error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, _ = newJSONContext(http.MethodPost, "/auth/reset-password",
		`{"email":"alice@cit.edu","code":"000000","newPassword":"newpass1"}`)
	if err := h.ResetPassword(c); !errors.Is(err, domain.ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
}

func TestProfileHandler_RequiresAccount(t *testing.T) {
	h := NewProfileHandler(&stubAuthServices{})
	c, _ := newJSONContext(http.MethodGet, "/auth/me", "")

	err := h.Me(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestProfileHandler_UpdateProfile(t *testing.T) {
	stub := &stubAuthServices{
		updateFn: func(_ context.Context, id string, patch domain.ProfilePatch) (*ports.Session, error) {
			if id != "acc-1" || patch.Name == nil || *patch.Name != "Alicia" || patch.Phone != nil {
				t.Fatalf("unexpected patch for %s: %+v", id, patch)
			}
			updated := aliceSummary
			updated.Name = *patch.Name
			return &ports.Session{Token: "fresh", Account: updated}, nil
		},
	}

	c, rec := newJSONContext(http.MethodPut, "/auth/profile", `{"name":"Alicia"}`)
	acc := aliceSummary
	c.Set(middleware.ContextAccount, &acc)

	if err := NewProfileHandler(stub).UpdateProfile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decodeBody(t, rec)
	if resp["name"] != "Alicia" || resp["token"] != "fresh" || resp["accessCode"] != "CIT25" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAdminHandler_GetAccount(t *testing.T) {
	stub := &stubAuthServices{
		meFn: func(_ context.Context, id string) (*domain.AccountSummary, error) {
			if id != "acc-1" {
				return nil, domain.ErrAccountNotFound
			}
			s := aliceSummary
			return &s, nil
		},
	}
	h := NewAdminHandler(stub)

	c, rec := newJSONContext(http.MethodGet, "/admin/accounts/acc-1", "")
	c.SetParamNames("id")
	c.SetParamValues("acc-1")
	if err := h.GetAccount(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp := decodeBody(t, rec); resp["id"] != "acc-1" {
		t.Fatalf("unexpected payload: %+v", resp)
	}

	c, _ = newJSONContext(http.MethodGet, "/admin/accounts/nope", "")
	c.SetParamNames("id")
	c.SetParamValues("nope")
	if err := h.GetAccount(c); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
