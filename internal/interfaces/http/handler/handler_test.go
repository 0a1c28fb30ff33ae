package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/erp/console/internal/application/screen"
	"github.com/erp/console/internal/application/session"
	"github.com/erp/console/internal/domain/identity"
	"github.com/erp/console/internal/domain/shared"
	"github.com/erp/console/internal/infrastructure/apiclient"
	"github.com/erp/console/internal/infrastructure/printing"
	"github.com/erp/console/internal/interfaces/http/dto"
	"github.com/erp/console/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockSessions is a mock of the per-client session manager
type MockSessions struct {
	mock.Mock
}

func (m *MockSessions) Login(ctx context.Context, creds identity.Credentials) (string, identity.Session, error) {
	args := m.Called(ctx, creds)
	return args.String(0), args.Get(1).(identity.Session), args.Error(2)
}

func (m *MockSessions) Logout(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSessions) Resolve(ctx context.Context, id string) (identity.Session, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(identity.Session), args.Error(1)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func authRouter(s Sessions) *gin.Engine {
	h := NewAuthHandler(s, "/login", "/dashboard")
	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.POST("/auth/logout", h.Logout)
	r.GET("/auth/session", h.Session)
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Login(t *testing.T) {
	email := gofakeit.Email()
	creds := identity.Credentials{Email: email, Password: "secret"}
	body := `{"email":"` + email + `","password":"secret"}`

	t.Run("success issues the session cookie", func(t *testing.T) {
		s := new(MockSessions)
		id := identity.Identity{Name: gofakeit.Name(), Role: identity.RoleManager}
		sid := gofakeit.UUID()
		s.On("Login", mock.Anything, creds).
			Return(sid, identity.NewSession(id, "tok", time.Now().Add(time.Hour)), nil)

		w := postJSON(authRouter(s), "/auth/login", body)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		assert.True(t, resp.Success)
		assert.Equal(t, "/dashboard", resp.Redirect)
		assert.Equal(t, "Welcome back, "+id.Name, resp.Toast.Message)
		assert.Contains(t, w.Body.String(), `"session_id":"`+sid+`"`)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, middleware.SessionCookie, cookies[0].Name)
		assert.Equal(t, sid, cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
		s.AssertExpectations(t)
	})

	t.Run("rejected credentials", func(t *testing.T) {
		s := new(MockSessions)
		s.On("Login", mock.Anything, creds).
			Return("", identity.Session{}, shared.NewDomainError(session.ErrLoginFailed.Code, "Invalid email or password"))

		w := postJSON(authRouter(s), "/auth/login", body)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		resp := decode(t, w)
		assert.Equal(t, dto.ErrCodeLoginFailed, resp.Error.Code)
		assert.Equal(t, "Invalid email or password", resp.Toast.Message)
		assert.Empty(t, resp.Redirect)
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("storage failure", func(t *testing.T) {
		s := new(MockSessions)
		s.On("Login", mock.Anything, creds).Return("", identity.Session{}, errors.New("disk full"))

		w := postJSON(authRouter(s), "/auth/login", body)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, dto.ErrCodeSessionStorage, decode(t, w).Error.Code)
	})

	t.Run("missing password", func(t *testing.T) {
		s := new(MockSessions)
		w := postJSON(authRouter(s), "/auth/login", `{"email":"a@b.c"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		s.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
	})
}

func TestAuthHandler_LogoutAndSession(t *testing.T) {
	sid := gofakeit.UUID()
	withCookie := func(req *http.Request) *http.Request {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: sid})
		return req
	}
	ana := identity.NewSession(identity.Identity{Name: "Ana", Role: identity.RoleUser}, "tok", time.Time{})

	s := new(MockSessions)
	s.On("Resolve", mock.Anything, sid).Return(ana, nil).Once()
	s.On("Resolve", mock.Anything, "").Return(identity.Session{}, nil)
	s.On("Logout", mock.Anything, sid).Return(nil).Once()
	r := authRouter(s)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, withCookie(httptest.NewRequest(http.MethodGet, "/auth/session", nil)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":true`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/session", nil))
	assert.Contains(t, w.Body.String(), `"authenticated":false`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withCookie(httptest.NewRequest(http.MethodPost, "/auth/logout", nil)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/login", decode(t, w).Redirect)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Negative(t, cookies[0].MaxAge)

	s.On("Logout", mock.Anything, sid).Return(errors.New("redis down"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, withCookie(httptest.NewRequest(http.MethodPost, "/auth/logout", nil)))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "/login", decode(t, w).Redirect)
	s.AssertExpectations(t)
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"domain", screen.ErrNotPrintable, http.StatusNotFound, dto.ErrCodeNotPrintable},
		{"pdf disabled", screen.ErrPDFDisabled, http.StatusNotImplemented, dto.ErrCodePDFDisabled},
		{"api not found", &apiclient.APIError{Status: http.StatusNotFound, Message: "Sale not found"}, http.StatusNotFound, dto.ErrCodeNotFound},
		{"api conflict", &apiclient.APIError{Status: http.StatusConflict, Message: "In use"}, http.StatusConflict, dto.ErrCodeInvalidInput},
		{"api down", &apiclient.APIError{Status: http.StatusServiceUnavailable}, http.StatusBadGateway, dto.ErrCodeUpstream},
		{"render", printing.NewRenderError("TIMEOUT", "timed out", nil), http.StatusInternalServerError, dto.ErrCodeRenderFailed},
		{"other", errors.New("boom"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			h := BaseHandler{}
			h.HandleError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decode(t, w).Error.Code)
		})
	}
}

func TestReadDraft_Multipart(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("draft", `{"name":"Green Tea"}`))
	part, err := mw.CreateFormFile("file", "tea.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/products", &buf)
	c.Request.Header.Set("Content-Type", mw.FormDataContentType())

	draft, file, err := readDraft(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Green Tea"}`, string(draft))
	require.NotNil(t, file)
	assert.Equal(t, "tea.png", file.Name)
	assert.Equal(t, []byte("png-bytes"), file.Data)
}

// screenFixture serves a registry over an in-process API
func screenFixture(t *testing.T, routes map[string]http.HandlerFunc) (*screen.Registry, *screen.MarkerStore) {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, h := range routes {
		mux.HandleFunc(pattern, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := apiclient.New(apiclient.Config{BaseURL: srv.URL}, apiclient.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	templates, err := printing.NewTemplateEngine(printing.Company{Name: "Corner Shop"})
	require.NoError(t, err)
	markers := screen.NewMarkerStore(time.Minute)
	return screen.Build(screen.Deps{Client: client, Templates: templates, Markers: markers, PageSize: 20}), markers
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestScreenHandler_Print(t *testing.T) {
	screens, markers := screenFixture(t, map[string]http.HandlerFunc{
		"GET /sales/{id}": func(w http.ResponseWriter, r *http.Request) {
			if r.PathValue("id") == "missing" {
				writeJSON(w, http.StatusNotFound, map[string]any{"message": "Sale not found"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"id": r.PathValue("id"), "invoiceNumber": "INV-" + r.PathValue("id"), "shopName": "Main Street",
				"saleDate": "2024-03-04T00:00:00Z", "paymentStatus": "paid", "totalAmount": "40.00",
				"items": []map[string]any{{"productId": "p1", "productName": "Green Tea", "quantity": "2", "rate": "20"}},
			})
		},
	})
	h := NewScreenHandler(screens, markers, "/console/v1")
	r := gin.New()
	r.GET("/:entity/:id/print", h.Print)
	r.GET("/:entity/:id/print.pdf", h.PrintPDF)
	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	w := get("/sales/42/print?print=1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "INV-42")
	assert.Contains(t, w.Body.String(), "window.print()")

	w = get("/sales/missing/print")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Sale not found", decode(t, w).Error.Message)

	w = get("/sales/42/print.pdf")
	assert.Equal(t, http.StatusNotImplemented, w.Code)

	w = get("/nope/1/print")
	assert.Equal(t, dto.ErrCodeUnknownScreen, decode(t, w).Error.Code)
}

func TestScreenHandler_SubmitValidation(t *testing.T) {
	screens, markers := screenFixture(t, nil)
	h := NewScreenHandler(screens, markers, "/console/v1")
	r := gin.New()
	r.POST("/:entity", h.Create)

	w := postJSON(r, "/warehouses", `{"name":"North Depot"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decode(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "This field is required", resp.Errors["location"])
}

func TestScreenHandler_Delete(t *testing.T) {
	var deletes atomic.Int32
	screens, markers := screenFixture(t, map[string]http.HandlerFunc{
		"GET /shops": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{}, "total": 0})
		},
		"DELETE /shops/{id}": func(w http.ResponseWriter, r *http.Request) {
			deletes.Add(1)
			switch r.PathValue("id") {
			case "gone":
				writeJSON(w, http.StatusNotFound, map[string]any{"message": "Shop not found"})
			case "locked":
				writeJSON(w, http.StatusConflict, map[string]any{"message": "Shop has open sales"})
			case "broken":
				writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "database offline"})
			default:
				w.WriteHeader(http.StatusNoContent)
			}
		},
	})
	h := NewScreenHandler(screens, markers, "/console/v1")
	r := gin.New()
	r.GET("/:entity", h.List)
	r.DELETE("/:entity/:id", h.Delete)
	do := func(method, path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
		return w
	}

	tests := []struct {
		id      string
		status  int
		message string
	}{
		{"sh1", http.StatusOK, "Shop deleted successfully"},
		{"gone", http.StatusNotFound, "Shop not found"},
		{"locked", http.StatusConflict, "Shop has open sales"},
		{"broken", http.StatusBadGateway, "database offline"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			w := do(http.MethodDelete, "/shops/"+tt.id+"?confirm=true")
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			resp := decode(t, w)
			require.NotNil(t, resp.Toast)
			assert.Equal(t, tt.message, resp.Toast.Message)
		})
	}

	t.Run("bad list parameters are refused before the API", func(t *testing.T) {
		before := deletes.Load()
		for _, path := range []string{
			"/shops/sh1?confirm=true&page=abc",
			"/shops/sh1?confirm=true&page_size=500",
		} {
			w := do(http.MethodDelete, path)
			assert.Equal(t, http.StatusBadRequest, w.Code, path)
		}
		assert.Equal(t, before, deletes.Load())

		w := do(http.MethodGet, "/shops?page=abc")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestProductHandler_Select(t *testing.T) {
	screens, _ := screenFixture(t, map[string]http.HandlerFunc{
		"GET /packing-units": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "units offline"})
		},
	})
	products, ok := screens.Products()
	require.True(t, ok)
	h := NewProductHandler(products)
	r := gin.New()
	r.POST("/products/select", h.Select)

	t.Run("unknown field", func(t *testing.T) {
		w := postJSON(r, "/products/select", `{"field":"colour","value":"red"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidInput, decode(t, w).Error.Code)
	})

	t.Run("missing field name", func(t *testing.T) {
		w := postJSON(r, "/products/select", `{"value":"red"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("option fetch failure still resets the draft", func(t *testing.T) {
		w := postJSON(r, "/products/select",
			`{"field":"quantityUnit","value":"kg","draft":{"quantityUnit":"piece","packingUnit":"box","pouch":"small"}}`)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		resp := decode(t, w)
		assert.Equal(t, "units offline", resp.Error.Message)
		require.NotNil(t, resp.Toast)

		data, ok := resp.Data.(map[string]any)
		require.True(t, ok)
		draft := data["draft"].(map[string]any)
		assert.Equal(t, "kg", draft["quantityUnit"])
		assert.NotContains(t, draft, "packingUnit")
	})
}
