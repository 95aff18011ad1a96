package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/tharu280/tourAgent/internal/config"
	"github.com/tharu280/tourAgent/internal/domain/repository"
	"github.com/tharu280/tourAgent/internal/domain/service"
	"github.com/tharu280/tourAgent/internal/infrastructure/ai"
	"github.com/tharu280/tourAgent/internal/infrastructure/database"
	"github.com/tharu280/tourAgent/internal/infrastructure/firestore"
	"github.com/tharu280/tourAgent/internal/infrastructure/maps"
	"github.com/tharu280/tourAgent/internal/infrastructure/retry"
	repoImpl "github.com/tharu280/tourAgent/internal/repository"
	"github.com/tharu280/tourAgent/internal/usecase"
)

// App はプロセス全体で共有する依存関係
type App struct {
	TripPlanUseCase usecase.TripPlanUseCase

	closers      []func() error
	healthChecks []func(ctx context.Context) error
}

// HealthCheck は接続を持つ外部サービスの疎通を確認する
func (a *App) HealthCheck(ctx context.Context) error {
	for _, check := range a.healthChecks {
		if err := check(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close は外部サービスのクライアントを後から作ったものから順に閉じる
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("⚠️ クライアントのクローズに失敗: %v", err)
		}
	}
	a.closers = nil
}

// New は設定から各リポジトリ・ステージ・ユースケースを組み立てる
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{}

	geminiClient := ai.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, ai.WithTimeout(cfg.HTTPTimeout*2))
	language := ai.NewGeminiTripRepository(geminiClient, newRetryPolicy(cfg))

	geocoder, err := app.buildGeocoder(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	router, err := buildRouter(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	places, err := app.buildPlaces(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	pipeline, err := service.NewTripPipelineService(service.TripStages{
		Guardrail:  service.NewGuardrailStage(language),
		Extractor:  service.NewExtractorStage(language),
		Geocoder:   service.NewGeocoderStage(geocoder),
		Router:     service.NewRouterStage(router),
		Attraction: service.NewAttractionSamplerStage(places, cfg.SamplerConcurrency),
		Ranker:     service.NewRankerStage(language),
		Itinerary:  service.NewItineraryStage(language),
	})
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("パイプラインの構築に失敗: %w", err)
	}

	app.TripPlanUseCase = usecase.NewTripPlanUseCase(pipeline)
	log.Printf("✅ 依存関係の初期化完了 (routing=%s, places=%s, geocode cache=%t)",
		cfg.RoutingProvider, cfg.PlacesProvider, cfg.GeocodeCacheEnabled())
	return app, nil
}

// newRetryPolicy は既定のリトライ方針に設定値を上書きする
func newRetryPolicy(cfg *config.Config) retry.Policy {
	policy := retry.DefaultPolicy(ai.IsTransientError)
	if cfg.LLMMaxRetries >= 0 {
		policy.MaxRetries = cfg.LLMMaxRetries
	}
	if cfg.LLMRetryBase > 0 {
		policy.BaseDelay = cfg.LLMRetryBase
	}
	if cfg.LLMRetryIncrement > 0 {
		policy.Increment = cfg.LLMRetryIncrement
	}
	return policy
}

func (a *App) buildGeocoder(ctx context.Context, cfg *config.Config) (repository.GeocodingRepository, error) {
	var geocoder repository.GeocodingRepository = maps.NewNominatimGeocoder(cfg.NominatimURL, cfg.NominatimUserAgent, cfg.HTTPTimeout)
	if !cfg.GeocodeCacheEnabled() {
		return geocoder, nil
	}

	fsClient, err := firestore.NewFirestoreClient(ctx, cfg.FirestoreProjectID, cfg.GoogleCredentials)
	if err != nil {
		return nil, fmt.Errorf("Firestore初期化失敗: %w", err)
	}
	a.closers = append(a.closers, fsClient.Close)

	cache := repoImpl.NewFirestoreGeocodeCacheRepository(fsClient.GetClient(), cfg.GeocodeCacheTTL)
	return repoImpl.NewCachedGeocodingRepository(geocoder, cache), nil
}

func buildRouter(cfg *config.Config) (repository.RoutingRepository, error) {
	switch cfg.RoutingProvider {
	case config.RoutingOpenRouteService:
		return maps.NewOpenRouteServiceProvider(cfg.ORSAPIKey, "", cfg.HTTPTimeout), nil
	case config.RoutingGoogle:
		return maps.NewGoogleDirectionsProvider(cfg.GoogleMapsAPIKey, "", cfg.HTTPTimeout), nil
	default:
		return nil, fmt.Errorf("対応していないルーティングプロバイダです: %s", cfg.RoutingProvider)
	}
}

func (a *App) buildPlaces(ctx context.Context, cfg *config.Config) (repository.PlacesRepository, error) {
	switch cfg.PlacesProvider {
	case config.PlacesGeoapify:
		return maps.NewGeoapifyPlacesProvider(cfg.GeoapifyAPIKey, "", cfg.HTTPTimeout), nil
	case config.PlacesPostgres:
		pg, err := database.NewPostgreSQLClient(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("PostgreSQL初期化失敗: %w", err)
		}
		a.closers = append(a.closers, pg.Close)
		a.healthChecks = append(a.healthChecks, pg.HealthCheck)
		return repoImpl.NewPostgresPlacesRepository(pg), nil
	case config.PlacesSupabase:
		sb, err := database.NewSupabaseClient(cfg.SupabaseURL, cfg.SupabaseAnonKey)
		if err != nil {
			return nil, fmt.Errorf("Supabase初期化失敗: %w", err)
		}
		return repoImpl.NewSupabasePlacesRepository(sb), nil
	default:
		return nil, fmt.Errorf("対応していない観光地検索プロバイダです: %s", cfg.PlacesProvider)
	}
}
