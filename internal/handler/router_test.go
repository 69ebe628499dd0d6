//go:build unit

package handler_test

import (
	"net/http"
	"testing"
	"time"

	"bakery-flashsale/internal/domain/reservation"
	"bakery-flashsale/internal/domain/user"
	"bakery-flashsale/internal/handler"
	"bakery-flashsale/internal/handler/api"
	"bakery-flashsale/internal/handler/middleware"
	"bakery-flashsale/internal/metrics"
	"bakery-flashsale/internal/pkg/config"
	"bakery-flashsale/internal/pkg/jwt"
	"bakery-flashsale/internal/testutil/httptest"
	commandsmock "bakery-flashsale/internal/testutil/mock/commands"
	queriesmock "bakery-flashsale/internal/testutil/mock/queries"
	"bakery-flashsale/internal/usecase"
	"bakery-flashsale/internal/usecase/commands"
	"bakery-flashsale/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type routerFixture struct {
	engine      *gin.Engine
	jwt         *jwt.Service
	saleCmds    *commandsmock.MockSaleCommands
	reserveCmds *commandsmock.MockReservationCommands
	expiryCmds  *commandsmock.MockExpiryCommands
	saleQ       *queriesmock.MockSaleQueries
	stockQ      *queriesmock.MockStockQueries
	reserveQ    *queriesmock.MockReservationQueries
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.NewTestConfig()
	cfg.CORS = config.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000"},
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Authorization", "Content-Type", "Idempotency-Key"},
		MaxAge:       time.Hour,
	}

	ctrl := gomock.NewController(t)
	f := &routerFixture{
		engine:      gin.New(),
		jwt:         jwt.NewService(cfg.JWT.Secret, cfg.JWT.Issuer),
		saleCmds:    commandsmock.NewMockSaleCommands(ctrl),
		reserveCmds: commandsmock.NewMockReservationCommands(ctrl),
		expiryCmds:  commandsmock.NewMockExpiryCommands(ctrl),
		saleQ:       queriesmock.NewMockSaleQueries(ctrl),
		stockQ:      queriesmock.NewMockStockQueries(ctrl),
		reserveQ:    queriesmock.NewMockReservationQueries(ctrl),
	}

	handler.NewRouter(
		f.engine,
		cfg,
		middleware.NewLogger(cfg.Log),
		metrics.New(),
		handler.Handlers{
			Sale:        api.NewSaleHandler(f.saleCmds, f.saleQ, f.stockQ),
			Reservation: api.NewReservationHandler(f.reserveCmds, f.expiryCmds, f.reserveQ),
		},
		middleware.NewAuthMiddleware(usecase.NewTokenValidator(f.jwt)),
	)
	return f
}

func (f *routerFixture) token(t *testing.T, role user.Role) (uuid.UUID, string) {
	t.Helper()
	userID := uuid.New()
	token, err := f.jwt.GenerateToken(userID, role, time.Hour)
	require.NoError(t, err)
	return userID, token
}

func summary(userID uuid.UUID, status reservation.Status) commands.ReservationSummary {
	return commands.ReservationSummary{
		ID:        uuid.New(),
		SaleID:    uuid.New(),
		ProductID: uuid.New(),
		UserID:    userID,
		Quantity:  1,
		Status:    status,
		ExpiresAt: time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC),
	}
}

func TestRouter_Authorization(t *testing.T) {
	saleID := uuid.New()
	reservationID := uuid.New()
	reserveBody := map[string]any{"sale_id": saleID, "product_id": uuid.New(), "quantity": 1}

	t.Run("トークンなしは401", func(t *testing.T) {
		f := newRouterFixture(t)
		paths := []struct{ method, path string }{
			{http.MethodPost, "/api/reservations"},
			{http.MethodGet, "/api/reservations/" + reservationID.String()},
			{http.MethodPost, "/api/reservations/" + reservationID.String() + "/cancel"},
			{http.MethodPost, "/api/reservations/" + reservationID.String() + "/confirm"},
			{http.MethodPost, "/api/reservations/" + reservationID.String() + "/release"},
			{http.MethodPost, "/api/sales"},
			{http.MethodPost, "/api/sales/" + saleID.String() + "/cancel"},
			{http.MethodGet, "/api/sales/" + saleID.String() + "/items/" + uuid.NewString() + "/reservations"},
		}
		for _, p := range paths {
			w := httptest.PerformRequest(t, f.engine, p.method, p.path, nil, "")
			httptest.AssertErrorResponse(t, w, http.StatusUnauthorized, "unauthorized")
		}
	})

	t.Run("不正なトークンは401", func(t *testing.T) {
		f := newRouterFixture(t)
		other := jwt.NewService("another-secret", "")
		token, err := other.GenerateToken(uuid.New(), user.RoleCustomer, time.Hour)
		require.NoError(t, err)

		w := httptest.PerformRequest(t, f.engine, http.MethodPost, "/api/reservations", reserveBody, token)
		httptest.AssertErrorResponse(t, w, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("ロールが違えば403", func(t *testing.T) {
		f := newRouterFixture(t)
		_, customer := f.token(t, user.RoleCustomer)
		_, operator := f.token(t, user.RoleOperator)
		_, service := f.token(t, user.RoleService)

		cases := []struct {
			name   string
			method string
			path   string
			token  string
		}{
			{name: "顧客は確定できない", method: http.MethodPost, path: "/api/reservations/" + reservationID.String() + "/confirm", token: customer},
			{name: "運営は確定できない", method: http.MethodPost, path: "/api/reservations/" + reservationID.String() + "/confirm", token: operator},
			{name: "顧客はセールを作れない", method: http.MethodPost, path: "/api/sales", token: customer},
			{name: "決済サービスはセールを中止できない", method: http.MethodPost, path: "/api/sales/" + saleID.String() + "/cancel", token: service},
			{name: "顧客は強制解放できない", method: http.MethodPost, path: "/api/reservations/" + reservationID.String() + "/release", token: customer},
			{name: "決済サービスは強制解放できない", method: http.MethodPost, path: "/api/reservations/" + reservationID.String() + "/release", token: service},
			{name: "運営は予約できない", method: http.MethodPost, path: "/api/reservations", token: operator},
			{name: "決済サービスは予約を取り消せない", method: http.MethodPost, path: "/api/reservations/" + reservationID.String() + "/cancel", token: service},
			{name: "運営は顧客の保留一覧を見られない", method: http.MethodGet, path: "/api/sales/" + saleID.String() + "/items/" + uuid.NewString() + "/reservations", token: operator},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				w := httptest.PerformRequest(t, f.engine, tc.method, tc.path, reserveBody, tc.token)
				httptest.AssertErrorResponse(t, w, http.StatusForbidden, "forbidden")
			})
		}
	})

	t.Run("顧客は予約できる", func(t *testing.T) {
		f := newRouterFixture(t)
		userID, token := f.token(t, user.RoleCustomer)
		f.reserveCmds.EXPECT().Reserve(gomock.Any(), gomock.Any()).
			Return(&commands.ReserveResult{Reservation: summary(userID, reservation.StatusPending)}, nil)

		w := httptest.PerformRequest(t, f.engine, http.MethodPost, "/api/reservations", reserveBody, token)
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("決済サービスは確定できる", func(t *testing.T) {
		f := newRouterFixture(t)
		_, token := f.token(t, user.RoleService)
		s := summary(uuid.New(), reservation.StatusCompleted)
		f.reserveCmds.EXPECT().ConfirmPurchase(gomock.Any(), reservationID).Return(&s, nil)

		w := httptest.PerformRequest(t, f.engine, http.MethodPost, "/api/reservations/"+reservationID.String()+"/confirm", nil, token)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("運営は保留を強制解放できる", func(t *testing.T) {
		f := newRouterFixture(t)
		_, token := f.token(t, user.RoleOperator)
		s := summary(uuid.New(), reservation.StatusExpired)
		f.expiryCmds.EXPECT().ReleaseHold(gomock.Any(), reservationID, reservation.ReasonCancelled).Return(&s, nil)

		w := httptest.PerformRequest(t, f.engine, http.MethodPost, "/api/reservations/"+reservationID.String()+"/release", nil, token)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("運営はセールを中止できる", func(t *testing.T) {
		f := newRouterFixture(t)
		_, token := f.token(t, user.RoleOperator)
		f.saleCmds.EXPECT().CancelSale(gomock.Any(), saleID).Return(nil)

		w := httptest.PerformRequest(t, f.engine, http.MethodPost, "/api/sales/"+saleID.String()+"/cancel", nil, token)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("顧客は自分の保留一覧を見られる", func(t *testing.T) {
		f := newRouterFixture(t)
		userID, token := f.token(t, user.RoleCustomer)
		productID := uuid.New()
		f.reserveQ.EXPECT().ListOutstanding(gomock.Any(), saleID, productID, user.Actor{UserID: userID, Role: user.RoleCustomer}).
			Return([]queries.ReservationView{}, nil)

		w := httptest.PerformRequest(t, f.engine, http.MethodGet, "/api/sales/"+saleID.String()+"/items/"+productID.String()+"/reservations", nil, token)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("在庫照会は認証不要", func(t *testing.T) {
		f := newRouterFixture(t)
		f.stockQ.EXPECT().GetSaleStock(gomock.Any(), saleID).
			Return(&queries.SaleStockView{SaleID: saleID, Status: "active"}, nil)

		w := httptest.PerformRequest(t, f.engine, http.MethodGet, "/api/sales/"+saleID.String()+"/stock", nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRouter_Operational(t *testing.T) {
	t.Run("ヘルスチェック", func(t *testing.T) {
		f := newRouterFixture(t)
		w := httptest.PerformRequest(t, f.engine, http.MethodGet, "/health", nil, "")

		var body map[string]string
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &body)
		assert.Equal(t, "ok", body["status"])
	})

	t.Run("リクエストIDを採番して返す", func(t *testing.T) {
		f := newRouterFixture(t)
		w := httptest.PerformRequest(t, f.engine, http.MethodGet, "/health", nil, "")
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("受け取ったリクエストIDを引き継ぐ", func(t *testing.T) {
		f := newRouterFixture(t)
		w := httptest.PerformRequestWithHeaders(t, f.engine, http.MethodGet, "/health", nil, "",
			map[string]string{"X-Request-ID": "gateway-123"})
		assert.Equal(t, "gateway-123", w.Header().Get("X-Request-ID"))
	})

	t.Run("メトリクスにHTTPリクエスト数が出る", func(t *testing.T) {
		f := newRouterFixture(t)
		httptest.PerformRequest(t, f.engine, http.MethodGet, "/health", nil, "")

		w := httptest.PerformRequest(t, f.engine, http.MethodGet, "/metrics", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "flashsale_http_requests_total")
		assert.Contains(t, w.Body.String(), `route="/health"`)
	})
}
