package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"Attendance-App/internal/domain/model"
	"Attendance-App/internal/domain/repository"
)

const trailSnapshotsCollection = "trailSnapshots"

// FirestoreTrailSnapshotRepository Firestoreを使用したトレイルスナップショットのキャッシュ
type FirestoreTrailSnapshotRepository struct {
	client *firestore.Client
}

// NewFirestoreTrailSnapshotRepository 新しいFirestoreTrailSnapshotRepositoryインスタンスを作成
func NewFirestoreTrailSnapshotRepository(client *firestore.Client) repository.TrailSnapshotRepository {
	return &FirestoreTrailSnapshotRepository{
		client: client,
	}
}

// Save トレイルをFirestoreに保存し、スナップショットIDを返す
// expireAtフィールドはFirestoreのTTLポリシーで削除に使われる
func (r *FirestoreTrailSnapshotRepository) Save(ctx context.Context, view *model.TrailView, ttl time.Duration) (string, error) {
	snapshotID := newSnapshotID()

	data := view.ToFirestoreTrailSnapshot(ttl)
	if _, err := r.client.Collection(trailSnapshotsCollection).Doc(snapshotID).Set(ctx, data); err != nil {
		log.Printf("❌ Failed to save trail snapshot %s: %v", snapshotID, err)
		return "", fmt.Errorf("トレイルスナップショットの保存に失敗しました: %w", err)
	}

	log.Printf("✅ Trail snapshot saved: %s (expires in %v)", snapshotID, ttl)
	return snapshotID, nil
}

// Get 指定されたスナップショットをFirestoreから取得する
func (r *FirestoreTrailSnapshotRepository) Get(ctx context.Context, snapshotID string) (*model.TrailView, error) {
	doc, err := r.client.Collection(trailSnapshotsCollection).Doc(snapshotID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: %s", model.ErrSnapshotNotFound, snapshotID)
		}
		return nil, fmt.Errorf("トレイルスナップショットの取得に失敗しました: %w", err)
	}

	var data model.FirestoreTrailSnapshot
	if err := doc.DataTo(&data); err != nil {
		return nil, fmt.Errorf("データの変換に失敗しました: %w", err)
	}

	// TTLによる削除は即時ではないため期限切れは自前で判定する
	if data.IsExpired(time.Now()) {
		return nil, fmt.Errorf("%w: %s", model.ErrSnapshotNotFound, snapshotID)
	}

	log.Printf("✅ Trail snapshot retrieved: %s", snapshotID)
	return &model.TrailView{
		SnapshotID: snapshotID,
		UserID:     data.UserID,
		Date:       data.Date,
		TimeZone:   data.TimeZone,
		Samples:    data.ToSamples(),
		Report:     data.ToFilterReport(),
	}, nil
}
