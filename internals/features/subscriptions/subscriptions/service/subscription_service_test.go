package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gerejaku_backend/internals/constants"
	churchModel "gerejaku_backend/internals/features/churches/churches/model"
	"gerejaku_backend/internals/features/subscriptions/subscriptions/model"
	"gerejaku_backend/internals/features/subscriptions/subscriptions/repository"

	"github.com/google/uuid"
	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"gorm.io/gorm"
)

const serverKey = "SB-Mid-server-abc"

type fakeSubRepo struct {
	church   *churchModel.ChurchModel
	payments map[string]*model.SubscriptionPaymentModel
	tokens   map[uuid.UUID]string
}

func newFakeSubRepo(tier string) *fakeSubRepo {
	return &fakeSubRepo{
		church:   &churchModel.ChurchModel{ChurchID: uuid.New(), ChurchName: "GKI Test", ChurchSubscriptionTier: tier},
		payments: map[string]*model.SubscriptionPaymentModel{},
		tokens:   map[uuid.UUID]string{},
	}
}

func (f *fakeSubRepo) FindChurch(_ context.Context, id uuid.UUID) (*churchModel.ChurchModel, error) {
	if id != f.church.ChurchID {
		return nil, gorm.ErrRecordNotFound
	}
	return f.church, nil
}

func (f *fakeSubRepo) CreatePayment(_ context.Context, p *model.SubscriptionPaymentModel) error {
	p.SubscriptionPaymentID = uuid.New()
	f.payments[p.SubscriptionPaymentOrderID] = p
	return nil
}

func (f *fakeSubRepo) SetSnapToken(_ context.Context, id uuid.UUID, token string) error {
	f.tokens[id] = token
	return nil
}

func (f *fakeSubRepo) RecentPayments(context.Context, uuid.UUID, int) ([]model.SubscriptionPaymentModel, error) {
	return nil, nil
}

func (f *fakeSubRepo) ApplyNotification(_ context.Context, orderID string, fn func(p *model.SubscriptionPaymentModel) (*repository.PaymentUpdate, error)) error {
	p, ok := f.payments[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *p
	up, err := fn(&cp)
	if err != nil || up == nil {
		return err
	}
	p.SubscriptionPaymentStatus = up.Status
	if v, ok := up.Fields["subscription_payment_paid_at"].(time.Time); ok {
		p.SubscriptionPaymentPaidAt = &v
	}
	if up.UpgradeTier {
		f.church.ChurchSubscriptionTier = p.SubscriptionPaymentTier
	}
	return nil
}

type fakeSnap struct {
	last *snap.Request
	fail bool
}

func (s *fakeSnap) CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error) {
	s.last = req
	if s.fail {
		return nil, &midtrans.Error{Message: "boom", StatusCode: 500}
	}
	return &snap.Response{Token: "snap-token-1", RedirectURL: "https://app.sandbox.midtrans.com/snap/v2/vtweb/snap-token-1"}, nil
}

func signed(n Notification) Notification {
	n.SignatureKey = Signature(n.OrderID, n.StatusCode, n.GrossAmount, serverKey)
	return n
}

func TestSignatureKnownVector(t *testing.T) {
	want := "0442e9ea2365dea24a1575fae0a70a1af611e5c2be588a9f01b007fd678982a1e733c7509aacafbfa4d5978b025fb8c6873eae060b53d26c5417a3f1e3e4f5dc"
	if got := Signature("SUB-1", "200", "99000.00", serverKey); got != want {
		t.Fatalf("Signature = %s", got)
	}
}

func TestVerifySignature(t *testing.T) {
	n := signed(Notification{OrderID: "SUB-1", StatusCode: "200", GrossAmount: "99000.00"})
	if !VerifySignature(n, serverKey) {
		t.Fatal("valid signature rejected")
	}
	upper := n
	upper.SignatureKey = strings.ToUpper(n.SignatureKey)
	if !VerifySignature(upper, serverKey) {
		t.Fatal("hex case should not matter")
	}
	tampered := n
	tampered.GrossAmount = "1.00"
	if VerifySignature(tampered, serverKey) {
		t.Fatal("tampered amount accepted")
	}
	if VerifySignature(n, "") {
		t.Fatal("empty server key must never verify")
	}
	if VerifySignature(Notification{OrderID: "SUB-1"}, serverKey) {
		t.Fatal("missing signature accepted")
	}
}

func TestMapStatus(t *testing.T) {
	tests := []struct {
		tx, fraud, want string
	}{
		{"settlement", "", model.PaymentPaid},
		{"capture", "accept", model.PaymentPaid},
		{"capture", "challenge", model.PaymentPending},
		{"pending", "", model.PaymentPending},
		{"expire", "", model.PaymentExpired},
		{"deny", "", model.PaymentFailed},
		{"cancel", "", model.PaymentFailed},
		{"refund", "", model.PaymentPending},
	}
	for _, tt := range tests {
		t.Run(tt.tx+"/"+tt.fraud, func(t *testing.T) {
			if got := MapStatus(tt.tx, tt.fraud); got != tt.want {
				t.Fatalf("MapStatus = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAmountMatches(t *testing.T) {
	if !amountMatches("99000.00", 99000) || !amountMatches("99000", 99000) {
		t.Fatal("equal amounts rejected")
	}
	if amountMatches("99000.50", 99000) || amountMatches("9900.00", 99000) || amountMatches("", 99000) {
		t.Fatal("different amounts accepted")
	}
}

func TestCheckoutThenSettlementUpgradesTier(t *testing.T) {
	repo := newFakeSubRepo(constants.TierFree)
	sn := &fakeSnap{}
	svc := NewSubscriptionService(repo, sn, serverKey)
	ctx := context.Background()

	res, err := svc.Checkout(ctx, repo.church.ChurchID, constants.TierStandard, Customer{Name: "Owner", Email: "o@example.org"})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if res.SnapToken != "snap-token-1" || res.Amount != constants.TierPrice(constants.TierStandard) {
		t.Fatalf("result = %+v", res)
	}
	if len(res.OrderID) > 64 || !strings.HasPrefix(res.OrderID, "SUB-") {
		t.Fatalf("order id = %q", res.OrderID)
	}
	if sn.last.TransactionDetails.GrossAmt != res.Amount || sn.last.TransactionDetails.OrderID != res.OrderID {
		t.Fatalf("snap request = %+v", sn.last.TransactionDetails)
	}
	p := repo.payments[res.OrderID]
	if repo.tokens[p.SubscriptionPaymentID] != "snap-token-1" {
		t.Fatal("snap token not stored")
	}

	pending := signed(Notification{OrderID: res.OrderID, StatusCode: "201", GrossAmount: "99000.00", TransactionStatus: "pending"})
	if st, err := svc.HandleNotification(ctx, pending, nil); err != nil || st != model.PaymentPending {
		t.Fatalf("pending: %s, %v", st, err)
	}
	if repo.church.ChurchSubscriptionTier != constants.TierFree {
		t.Fatal("pending must not upgrade")
	}

	settle := signed(Notification{OrderID: res.OrderID, StatusCode: "200", GrossAmount: "99000.00", TransactionStatus: "settlement"})
	st, err := svc.HandleNotification(ctx, settle, []byte(`{"order_id":"x"}`))
	if err != nil || st != model.PaymentPaid {
		t.Fatalf("settlement: %s, %v", st, err)
	}
	if repo.church.ChurchSubscriptionTier != constants.TierStandard || p.SubscriptionPaymentPaidAt == nil {
		t.Fatalf("tier=%s paid_at=%v", repo.church.ChurchSubscriptionTier, p.SubscriptionPaymentPaidAt)
	}

	// a late failure for a paid order is ignored
	late := signed(Notification{OrderID: res.OrderID, StatusCode: "202", GrossAmount: "99000.00", TransactionStatus: "expire"})
	if st, err := svc.HandleNotification(ctx, late, nil); err != nil || st != model.PaymentPaid {
		t.Fatalf("late expire: %s, %v", st, err)
	}
}

func TestNotificationRejections(t *testing.T) {
	repo := newFakeSubRepo(constants.TierFree)
	svc := NewSubscriptionService(repo, &fakeSnap{}, serverKey)
	ctx := context.Background()
	res, err := svc.Checkout(ctx, repo.church.ChurchID, constants.TierPremium, Customer{})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	bad := Notification{OrderID: res.OrderID, StatusCode: "200", GrossAmount: "249000.00", TransactionStatus: "settlement", SignatureKey: "deadbeef"}
	if _, err := svc.HandleNotification(ctx, bad, nil); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("bad signature: %v", err)
	}
	unknown := signed(Notification{OrderID: "SUB-nope", StatusCode: "200", GrossAmount: "249000.00", TransactionStatus: "settlement"})
	if _, err := svc.HandleNotification(ctx, unknown, nil); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("unknown order: %v", err)
	}
	cheap := signed(Notification{OrderID: res.OrderID, StatusCode: "200", GrossAmount: "1000.00", TransactionStatus: "settlement"})
	if _, err := svc.HandleNotification(ctx, cheap, nil); !errors.Is(err, ErrAmountMismatch) {
		t.Fatalf("amount mismatch: %v", err)
	}
	if repo.church.ChurchSubscriptionTier != constants.TierFree {
		t.Fatal("rejected notifications must not upgrade")
	}
}

func TestCheckoutPreconditions(t *testing.T) {
	repo := newFakeSubRepo(constants.TierStandard)
	svc := NewSubscriptionService(repo, &fakeSnap{}, serverKey)
	ctx := context.Background()

	if _, err := svc.Checkout(ctx, repo.church.ChurchID, constants.TierFree, Customer{}); !errors.Is(err, ErrNotPaidTier) {
		t.Fatalf("free tier: %v", err)
	}
	if _, err := svc.Checkout(ctx, repo.church.ChurchID, constants.TierStandard, Customer{}); !errors.Is(err, ErrAlreadyOnTier) {
		t.Fatalf("same tier: %v", err)
	}
	if _, err := svc.Checkout(ctx, uuid.New(), constants.TierPremium, Customer{}); !errors.Is(err, ErrChurchNotFound) {
		t.Fatalf("unknown church: %v", err)
	}

	failing := NewSubscriptionService(repo, &fakeSnap{fail: true}, serverKey)
	if _, err := failing.Checkout(ctx, repo.church.ChurchID, constants.TierPremium, Customer{}); !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("gateway failure: %v", err)
	}
}

func TestTiersCoverEveryTier(t *testing.T) {
	tiers := Tiers()
	if len(tiers) != len(constants.AllTiers) {
		t.Fatalf("tiers = %d", len(tiers))
	}
	for _, ti := range tiers {
		if len(ti.Features) != len(constants.AllFeatures) {
			t.Fatalf("%s matrix has %d features", ti.Tier, len(ti.Features))
		}
	}
}
