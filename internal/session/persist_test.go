package session

import (
	"context"
	"testing"

	"github.com/betbot/gomarket/ledger/types"
	"github.com/betbot/gomarket/pkg/persistence"
)

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	svc := persistence.NewJSONFileService(dir)

	gw := &fakeGateway{
		products: []types.Product{wireProduct("1", "电子书", "550000000", "0xseller")},
		purchases: []types.Purchase{{
			ProductID: "1", Buyer: "0xbuyer", Seller: "0xseller", PricePaid: "550000000", Timestamp: "1700000000",
		}},
	}
	w := &fakeWallet{connected: true, account: "0xbuyer"}

	s1 := New(Config{
		Gateway:       gw,
		Wallet:        w,
		ModuleAddress: "0xmarket",
		Snapshot:      svc.NewStore("session", "0xbuyer", "snapshot"),
	})
	if err := s1.LoadCatalog(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := s1.LoadCallerData(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := s1.SaveSnapshot(); err != nil {
		t.Fatalf("SaveSnapshot 报错: %v", err)
	}

	// 新会话冷启动：首轮加载前即可看到缓存数据
	s2 := New(Config{
		Gateway:       &fakeGateway{},
		Wallet:        w,
		ModuleAddress: "0xmarket",
		Snapshot:      svc.NewStore("session", "0xbuyer", "snapshot"),
	})
	if err := s2.RestoreSnapshot(); err != nil {
		t.Fatalf("RestoreSnapshot 报错: %v", err)
	}
	products := s2.Products()
	if len(products) != 1 || products[0].Name != "电子书" || products[0].Price != 550_000_000 {
		t.Fatalf("恢复的商品错误: %+v", products)
	}
	if len(s2.Purchases()) != 1 {
		t.Fatal("购买记录未恢复")
	}
}

// 快照不存在不算错误
func TestRestoreSnapshotMissing(t *testing.T) {
	svc := persistence.NewJSONFileService(t.TempDir())
	s := New(Config{
		Gateway:       &fakeGateway{},
		Wallet:        &fakeWallet{},
		ModuleAddress: "0xmarket",
		Snapshot:      svc.NewStore("session", "0xnobody", "snapshot"),
	})
	if err := s.RestoreSnapshot(); err != nil {
		t.Fatalf("缺失快照应返回 nil: %v", err)
	}
}

// 未配置快照存储时保存与恢复都是空操作
func TestSnapshotUnconfigured(t *testing.T) {
	s := newTestSession(&fakeGateway{}, &fakeWallet{})
	if err := s.SaveSnapshot(); err != nil {
		t.Fatal(err)
	}
	if err := s.RestoreSnapshot(); err != nil {
		t.Fatal(err)
	}
}
