package repository

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tharu280/tourAgent/internal/domain/model"
	"github.com/tharu280/tourAgent/internal/domain/repository"
)

const geocodeCacheCollection = "geocodeCache"

// FirestoreGeocodeCacheRepository Firestoreを使用したジオコーディング結果のキャッシュ
// expireAt フィールドにFirestoreのTTLポリシーを設定して古いエントリを削除する
type FirestoreGeocodeCacheRepository struct {
	client *firestore.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewFirestoreGeocodeCacheRepository 新しいキャッシュリポジトリを作成
func NewFirestoreGeocodeCacheRepository(client *firestore.Client, ttl time.Duration) repository.GeocodeCacheRepository {
	return &FirestoreGeocodeCacheRepository{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
}

// firestoreGeocodeEntry Firestoreに保存するドキュメント
type firestoreGeocodeEntry struct {
	Query     string    `firestore:"query"`
	Found     bool      `firestore:"found"`
	Lat       float64   `firestore:"lat"`
	Lng       float64   `firestore:"lng"`
	CreatedAt time.Time `firestore:"createdAt"`
	ExpireAt  time.Time `firestore:"expireAt"`
}

// Get はキャッシュ済みの結果を返す。未登録または期限切れの場合は nil
func (r *FirestoreGeocodeCacheRepository) Get(ctx context.Context, placeName string) (*model.GeocodeResult, error) {
	doc, err := r.client.Collection(geocodeCacheCollection).Doc(geocodeCacheKey(placeName)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("ジオコーディングキャッシュの取得に失敗しました: %w", err)
	}

	var entry firestoreGeocodeEntry
	if err := doc.DataTo(&entry); err != nil {
		return nil, fmt.Errorf("データの変換に失敗しました: %w", err)
	}

	// TTLによる削除は即時ではないため期限を自前でも確認する
	if !entry.ExpireAt.IsZero() && r.now().After(entry.ExpireAt) {
		return nil, nil
	}

	return &model.GeocodeResult{
		Query:  entry.Query,
		Found:  entry.Found,
		Coords: model.LatLng{Lat: entry.Lat, Lng: entry.Lng},
	}, nil
}

// Put は結果をキャッシュに保存する
func (r *FirestoreGeocodeCacheRepository) Put(ctx context.Context, result *model.GeocodeResult) error {
	if result == nil {
		return nil
	}
	now := r.now()
	entry := firestoreGeocodeEntry{
		Query:     result.Query,
		Found:     result.Found,
		Lat:       result.Coords.Lat,
		Lng:       result.Coords.Lng,
		CreatedAt: now,
		ExpireAt:  now.Add(r.ttl),
	}

	key := geocodeCacheKey(result.Query)
	if _, err := r.client.Collection(geocodeCacheCollection).Doc(key).Set(ctx, entry); err != nil {
		log.Printf("❌ Failed to save geocode cache %s: %v", key, err)
		return fmt.Errorf("ジオコーディングキャッシュの保存に失敗しました: %w", err)
	}

	log.Printf("✅ Geocode cache saved: %s (expires in %s)", key, r.ttl)
	return nil
}

// geocodeCacheKey 地名をドキュメントIDに正規化する（"/" はIDに使えない）
func geocodeCacheKey(placeName string) string {
	key := strings.ToLower(strings.Join(strings.Fields(placeName), " "))
	return strings.ReplaceAll(key, "/", "_")
}
