//go:build e2e

package e2e

import (
	"context"
	"net/http"
	"testing"
	"time"

	"bakery-flashsale/internal/domain/user"
	reqdto "bakery-flashsale/internal/handler/dto/request"
	resdto "bakery-flashsale/internal/handler/dto/response"
	"bakery-flashsale/internal/pkg/config"
	"bakery-flashsale/internal/pkg/jwt"
	"bakery-flashsale/internal/testutil/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Token mints a bearer token the way the storefront auth service would.
func Token(t *testing.T, cfg config.Config, userID uuid.UUID, role user.Role) string {
	t.Helper()
	token, err := jwt.NewService(cfg.JWT.Secret, cfg.JWT.Issuer).GenerateToken(userID, role, time.Hour)
	require.NoError(t, err, "トークンの発行に失敗")
	return token
}

// CreateActiveSale opens a one-item sale through the operator API and returns its ids.
func CreateActiveSale(t *testing.T, router *gin.Engine, cfg config.Config, stock, perUserLimit int) (uuid.UUID, uuid.UUID) {
	t.Helper()
	productID := uuid.New()
	now := time.Now().UTC()
	req := reqdto.CreateSaleRequest{
		Name:     "閉店前の食パン",
		StartsAt: now.Add(-time.Minute),
		EndsAt:   now.Add(time.Hour),
		Items: []reqdto.CreateSaleItemRequest{{
			ProductID:     productID,
			FlashPrice:    decimal.RequireFromString("180"),
			OriginalPrice: decimal.RequireFromString("240"),
			StockLimit:    stock,
			PerUserLimit:  perUserLimit,
		}},
	}

	token := Token(t, cfg, uuid.New(), user.RoleOperator)
	w := httptest.PerformRequest(t, router, http.MethodPost, "/api/sales", req, token)
	var created resdto.CreateSaleResponse
	httptest.AssertSuccessResponse(t, w, http.StatusCreated, &created)
	return uuid.MustParse(created.ID), productID
}

type Counters struct {
	StockLimit   int
	Remaining    int
	PendingCount int
	SoldCount    int
}

func ReadCounters(t *testing.T, pool *pgxpool.Pool, saleID, productID uuid.UUID) Counters {
	t.Helper()
	var c Counters
	err := pool.QueryRow(context.Background(),
		`SELECT stock_limit, remaining, pending_count, sold_count FROM sale_items WHERE sale_id = $1 AND product_id = $2`,
		saleID, productID).Scan(&c.StockLimit, &c.Remaining, &c.PendingCount, &c.SoldCount)
	require.NoError(t, err, "在庫カウンタの取得に失敗")
	require.Equal(t, c.StockLimit, c.Remaining+c.PendingCount+c.SoldCount, "在庫の内訳が合わない")
	return c
}

func OutboxTopics(t *testing.T, pool *pgxpool.Pool) []string {
	t.Helper()
	rows, err := pool.Query(context.Background(), `SELECT topic FROM outbox_events ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()

	var topics []string
	for rows.Next() {
		var topic string
		require.NoError(t, rows.Scan(&topic))
		topics = append(topics, topic)
	}
	require.NoError(t, rows.Err())
	return topics
}
