package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 設定キー（環境変数名と同じ）
const (
	keyPort                     = "PORT"
	keyGeminiAPIKey             = "GEMINI_API_KEY"
	keyGeminiModel              = "GEMINI_MODEL"
	keyORSAPIKey                = "ORS_API_KEY"
	keyGoogleMapsAPIKey         = "GOOGLE_MAPS_API_KEY"
	keyGeoapifyAPIKey           = "GEOAPIFY_API_KEY"
	keyRoutingProvider          = "ROUTING_PROVIDER"
	keyPlacesProvider           = "PLACES_PROVIDER"
	keyNominatimURL             = "NOMINATIM_URL"
	keyNominatimUserAgent       = "NOMINATIM_USER_AGENT"
	keyFirestoreProjectID       = "FIRESTORE_PROJECT_ID"
	keyGoogleCredentials        = "GOOGLE_APPLICATION_CREDENTIALS"
	keyGeocodeCacheTTLHours     = "GEOCODE_CACHE_TTL_HOURS"
	keyDatabaseURL              = "DATABASE_URL"
	keySupabaseURL              = "SUPABASE_URL"
	keySupabaseAnonKey          = "SUPABASE_ANON_KEY"
	keyLLMMaxRetries            = "LLM_MAX_RETRIES"
	keyLLMRetryBaseSeconds      = "LLM_RETRY_BASE_SECONDS"
	keyLLMRetryIncrementSeconds = "LLM_RETRY_INCREMENT_SECONDS"
	keySamplerConcurrency       = "SAMPLER_CONCURRENCY"
	keyHTTPTimeoutSeconds       = "HTTP_TIMEOUT_SECONDS"
)

// ルーティング・観光地検索のプロバイダ
const (
	RoutingOpenRouteService = "openrouteservice"
	RoutingGoogle           = "google"

	PlacesGeoapify = "geoapify"
	PlacesPostgres = "postgres"
	PlacesSupabase = "supabase"
)

// Config はアプリケーション全体の設定
type Config struct {
	Port string

	GeminiAPIKey string
	GeminiModel  string

	ORSAPIKey        string
	GoogleMapsAPIKey string
	GeoapifyAPIKey   string
	RoutingProvider  string
	PlacesProvider   string

	NominatimURL       string
	NominatimUserAgent string

	FirestoreProjectID string
	GoogleCredentials  string
	GeocodeCacheTTL    time.Duration

	DatabaseURL     string
	SupabaseURL     string
	SupabaseAnonKey string

	LLMMaxRetries     int
	LLMRetryBase      time.Duration
	LLMRetryIncrement time.Duration

	SamplerConcurrency int
	HTTPTimeout        time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyPort, "8080")
	v.SetDefault(keyGeminiModel, "gemini-2.5-flash-lite")
	v.SetDefault(keyRoutingProvider, RoutingOpenRouteService)
	v.SetDefault(keyPlacesProvider, PlacesGeoapify)
	v.SetDefault(keyNominatimURL, "https://nominatim.openstreetmap.org")
	v.SetDefault(keyNominatimUserAgent, "tour-agent/1.0")
	v.SetDefault(keyGeocodeCacheTTLHours, 168)
	v.SetDefault(keyLLMMaxRetries, 3)
	v.SetDefault(keyLLMRetryBaseSeconds, 5)
	v.SetDefault(keyLLMRetryIncrementSeconds, 15)
	v.SetDefault(keySamplerConcurrency, 4)
	v.SetDefault(keyHTTPTimeoutSeconds, 30)
}

// allKeys は環境変数から読み込むキーの一覧
var allKeys = []string{
	keyPort, keyGeminiAPIKey, keyGeminiModel, keyORSAPIKey, keyGoogleMapsAPIKey, keyGeoapifyAPIKey,
	keyRoutingProvider, keyPlacesProvider, keyNominatimURL, keyNominatimUserAgent,
	keyFirestoreProjectID, keyGoogleCredentials, keyGeocodeCacheTTLHours,
	keyDatabaseURL, keySupabaseURL, keySupabaseAnonKey,
	keyLLMMaxRetries, keyLLMRetryBaseSeconds, keyLLMRetryIncrementSeconds,
	keySamplerConcurrency, keyHTTPTimeoutSeconds,
}

// Load は .env（存在すれば）と環境変数から設定を読み込む
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		log.Printf("⚠️ .envファイルが見つかりません。環境変数を使用します")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	for _, key := range allKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("環境変数のバインドに失敗 %s: %w", key, err)
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Port: v.GetString(keyPort),

		GeminiAPIKey: v.GetString(keyGeminiAPIKey),
		GeminiModel:  v.GetString(keyGeminiModel),

		ORSAPIKey:        v.GetString(keyORSAPIKey),
		GoogleMapsAPIKey: v.GetString(keyGoogleMapsAPIKey),
		GeoapifyAPIKey:   v.GetString(keyGeoapifyAPIKey),
		RoutingProvider:  strings.ToLower(v.GetString(keyRoutingProvider)),
		PlacesProvider:   strings.ToLower(v.GetString(keyPlacesProvider)),

		NominatimURL:       v.GetString(keyNominatimURL),
		NominatimUserAgent: v.GetString(keyNominatimUserAgent),

		FirestoreProjectID: v.GetString(keyFirestoreProjectID),
		GoogleCredentials:  v.GetString(keyGoogleCredentials),
		GeocodeCacheTTL:    time.Duration(v.GetInt(keyGeocodeCacheTTLHours)) * time.Hour,

		DatabaseURL:     v.GetString(keyDatabaseURL),
		SupabaseURL:     v.GetString(keySupabaseURL),
		SupabaseAnonKey: v.GetString(keySupabaseAnonKey),

		LLMMaxRetries:     v.GetInt(keyLLMMaxRetries),
		LLMRetryBase:      time.Duration(v.GetInt(keyLLMRetryBaseSeconds)) * time.Second,
		LLMRetryIncrement: time.Duration(v.GetInt(keyLLMRetryIncrementSeconds)) * time.Second,

		SamplerConcurrency: v.GetInt(keySamplerConcurrency),
		HTTPTimeout:        time.Duration(v.GetInt(keyHTTPTimeoutSeconds)) * time.Second,
	}
}

// Validate は選択されたプロバイダに必要な設定が揃っているかを確認する
func (c *Config) Validate() error {
	var missing []string
	require := func(key, value string) {
		if value == "" {
			missing = append(missing, key)
		}
	}

	require(keyGeminiAPIKey, c.GeminiAPIKey)

	switch c.RoutingProvider {
	case RoutingOpenRouteService:
		require(keyORSAPIKey, c.ORSAPIKey)
	case RoutingGoogle:
		require(keyGoogleMapsAPIKey, c.GoogleMapsAPIKey)
	default:
		return fmt.Errorf("%s が不正です: %q", keyRoutingProvider, c.RoutingProvider)
	}

	switch c.PlacesProvider {
	case PlacesGeoapify:
		require(keyGeoapifyAPIKey, c.GeoapifyAPIKey)
	case PlacesPostgres:
		require(keyDatabaseURL, c.DatabaseURL)
	case PlacesSupabase:
		require(keySupabaseURL, c.SupabaseURL)
		require(keySupabaseAnonKey, c.SupabaseAnonKey)
	default:
		return fmt.Errorf("%s が不正です: %q", keyPlacesProvider, c.PlacesProvider)
	}

	if len(missing) > 0 {
		return errors.New("必要な環境変数が設定されていません: " + strings.Join(missing, ", "))
	}
	if c.LLMMaxRetries < 0 {
		return fmt.Errorf("%s は0以上で指定してください", keyLLMMaxRetries)
	}
	return nil
}

// GeocodeCacheEnabled はFirestoreのジオコーディングキャッシュを使うかどうか
func (c *Config) GeocodeCacheEnabled() bool {
	return c.FirestoreProjectID != ""
}
