package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/tharu280/tourAgent/internal/domain/model"
	"github.com/tharu280/tourAgent/internal/usecase"
)

// MaxQueryLength はクエリの最大文字数
const MaxQueryLength = 1000

// TripPlanHandler は旅行計画APIのハンドラー
type TripPlanHandler struct {
	planUseCase usecase.TripPlanUseCase
}

// NewTripPlanHandler は新しいTripPlanHandlerインスタンスを作成
func NewTripPlanHandler(planUseCase usecase.TripPlanUseCase) *TripPlanHandler {
	return &TripPlanHandler{
		planUseCase: planUseCase,
	}
}

// PostPlanTrip は旅行計画を生成するエンドポイント
// POST /plan-trip
func (h *TripPlanHandler) PostPlanTrip(c *gin.Context) {
	var req model.TripPlanRequest

	// リクエストボディのバインド
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "リクエストの形式が正しくありません",
			"details": err.Error(),
		})
		return
	}

	// バリデーション
	if err := h.validateRequest(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "バリデーションエラー",
			"details": err.Error(),
		})
		return
	}

	// UseCase呼び出し
	response, err := h.planUseCase.PlanTrip(c.Request.Context(), &req)
	if err != nil {
		// 内部のエラー内容は返さない
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "サービスエラーが発生しました。しばらくしてから再度お試しください",
		})
		return
	}

	// 成功レスポンス
	c.JSON(http.StatusOK, response)
}

// validateRequest はリクエストの詳細バリデーションを行う
func (h *TripPlanHandler) validateRequest(req *model.TripPlanRequest) error {
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return &ValidationError{Field: "query", Message: "クエリは必須です"}
	}
	if utf8.RuneCountInString(req.Query) > MaxQueryLength {
		return &ValidationError{Field: "query", Message: "クエリは1000文字以内で指定してください"}
	}
	return nil
}

// ValidationError はバリデーションエラーを表す
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// HealthChecker は依存サービスの疎通確認。nil なら常に正常とみなす
type HealthChecker func(ctx context.Context) error

// NewHealthCheck はヘルスチェックのエンドポイントを返す
// GET /api/health
func NewHealthCheck(check HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			if err := check(c.Request.Context()); err != nil {
				log.Printf("❌ ヘルスチェック失敗: %v", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "service": "tour-agent"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "tour-agent"})
	}
}

// NewRouter はAPIのルーティングを設定したGinエンジンを返す
func NewRouter(h *TripPlanHandler, check HealthChecker) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/api/health", NewHealthCheck(check))
	r.POST("/plan-trip", h.PostPlanTrip)

	return r
}
