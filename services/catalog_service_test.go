package services_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"landmark-quest-system/services"
	"landmark-quest-system/services/mock"
	"landmark-quest-system/testutil"

	"go.uber.org/mock/gomock"
)

const catalogDoc = `[
  {"id": "sights", "type": "Mark Sights", "title": "Tourist", "count": 3, "reward_type": "coins", "reward_amount": 40},
  {"id": "walk", "type": "steps", "title": "Walker", "count": 5000, "reward_type": "experience", "reward_amount": 300, "promo_code": " summer26 "},
  {"id": "loot", "type": "capture-landmarks", "title": "Looter", "count": 1, "reward_type": "item", "reward_amount": 1, "item_id": "lantern", "is_active": false},
  {"id": "zero", "type": "steps", "title": "Nothing", "count": 0, "reward_type": "coins", "reward_amount": 1},
  {"id": "gem", "type": "steps", "title": "Gem", "count": 1, "reward_type": "gems", "reward_amount": 1},
  {"id": "noitem", "type": "steps", "title": "No item", "count": 1, "reward_type": "item", "reward_amount": 1},
  {"id": "coinitem", "type": "steps", "title": "Coin item", "count": 1, "reward_type": "coins", "reward_amount": 1, "item_id": "x"},
  {"id": "walk", "type": "steps", "title": "Duplicate", "count": 1, "reward_type": "coins", "reward_amount": 1}
]`

func TestSyncCatalog(t *testing.T) {
	db := testutil.NewDB(t)
	svc, err := services.NewCatalogService(db, 8)
	if err != nil {
		t.Fatal(err)
	}

	report, err := svc.SyncCatalog([]byte(catalogDoc))
	if err != nil {
		t.Fatal(err)
	}
	if report.Upserted != 3 || len(report.Skipped) != 5 {
		t.Fatalf("report = %+v, want 3 upserted and 5 skipped", report)
	}

	sights, err := svc.Quest("sights")
	if err != nil {
		t.Fatal(err)
	}
	if sights.Type != "mark_sights" || !sights.IsActive {
		t.Errorf("sights = %+v", sights)
	}
	walk, _ := svc.Quest("walk")
	if walk.PromoCode != "SUMMER26" || walk.Title != "Walker" {
		t.Errorf("walk = %+v", walk)
	}
	loot, _ := svc.Quest("loot")
	if loot.Type != "capture_landmarks" || loot.IsActive {
		t.Errorf("loot = %+v", loot)
	}

	active, err := svc.ActiveQuests()
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 2 {
		t.Errorf("active = %d, want 2", len(active))
	}
	if _, err := svc.ActiveQuest("loot"); !errors.Is(err, services.ErrQuestNotFound) {
		t.Errorf("inactive quest err = %v", err)
	}
}

func TestSyncCatalog_PurgesCache(t *testing.T) {
	db := testutil.NewDB(t)
	svc, _ := services.NewCatalogService(db, 8)

	if _, err := svc.SyncCatalog([]byte(`[{"id":"q","type":"steps","title":"Old","count":1,"reward_type":"coins","reward_amount":1}]`)); err != nil {
		t.Fatal(err)
	}
	if q, _ := svc.Quest("q"); q.Title != "Old" {
		t.Fatalf("title = %q", q.Title)
	}
	if _, err := svc.SyncCatalog([]byte(`[{"id":"q","type":"steps","title":"New","count":1,"reward_type":"coins","reward_amount":1,"is_active":false}]`)); err != nil {
		t.Fatal(err)
	}
	q, err := svc.Quest("q")
	if err != nil {
		t.Fatal(err)
	}
	if q.Title != "New" || q.IsActive {
		t.Errorf("quest after resync = %+v", q)
	}
}

func TestSyncCatalog_CapsRewardAmount(t *testing.T) {
	svc, _ := services.NewCatalogService(testutil.NewDB(t), 8)

	report, err := svc.SyncCatalog([]byte(`[{"id":"huge","type":"steps","title":"Huge","count":1,"reward_type":"experience","reward_amount":9223372036854775000}]`))
	if err != nil {
		t.Fatal(err)
	}
	if report.Upserted != 0 || len(report.Skipped) != 1 || report.Skipped[0].ID != "huge" {
		t.Errorf("report = %+v, want huge skipped", report)
	}
}

func TestSyncCatalog_RejectsMalformedDocument(t *testing.T) {
	svc, _ := services.NewCatalogService(testutil.NewDB(t), 8)

	if _, err := svc.SyncCatalog([]byte(`{"id":"q"}`)); !errors.Is(err, services.ErrInvalid) {
		t.Errorf("err = %v, want invalid", err)
	}
}

func TestRefreshCatalog_FromObjectStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, _ := services.NewCatalogService(testutil.NewDB(t), 8)
	fetcher := mock.NewMockObjectFetcher(ctrl)
	src := services.ObjectCatalogSource{Fetcher: fetcher, Key: "catalog/quests.json"}

	fetcher.EXPECT().FetchObject(gomock.Any(), "catalog/quests.json").Return([]byte(catalogDoc), nil)
	report, err := svc.RefreshCatalog(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	if report.Upserted != 3 {
		t.Errorf("upserted = %d, want 3", report.Upserted)
	}

	boom := errors.New("bucket unavailable")
	fetcher.EXPECT().FetchObject(gomock.Any(), "catalog/quests.json").Return(nil, boom)
	if _, err := svc.RefreshCatalog(context.Background(), src); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped fetch error", err)
	}
}

func TestRefreshCatalog_FromFile(t *testing.T) {
	svc, _ := services.NewCatalogService(testutil.NewDB(t), 8)
	path := filepath.Join(t.TempDir(), "quests.json")
	if err := os.WriteFile(path, []byte(catalogDoc), 0o600); err != nil {
		t.Fatal(err)
	}

	report, err := svc.RefreshCatalog(context.Background(), services.FileCatalogSource{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	if report.Upserted != 3 {
		t.Errorf("upserted = %d, want 3", report.Upserted)
	}
}

func TestNormalizeQuestType(t *testing.T) {
	tests := map[string]string{
		"Mark Sights":       "mark_sights",
		"mark-sights":       "mark_sights",
		"capture_landmarks": "capture_landmarks",
		"  Steps ":          "steps",
	}
	for in, want := range tests {
		if got := services.NormalizeQuestType(in); got != want {
			t.Errorf("NormalizeQuestType(%q) = %q, want %q", in, got, want)
		}
	}
}
