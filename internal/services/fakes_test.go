package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/castqueue/castqueue/internal/models"
	"github.com/castqueue/castqueue/internal/neynar"
	"github.com/castqueue/castqueue/internal/repositories"
	"github.com/google/uuid"
)

// fakeSignerClient lets each test script the provider with function fields.
type fakeSignerClient struct {
	createSigner        func(ctx context.Context) (*neynar.Signer, error)
	lookupSigner        func(ctx context.Context, signerUUID string) (*neynar.Signer, error)
	registerSignedKey   func(ctx context.Context, signerUUID string, appFid int64, deadline int64, signature string, sponsored bool) (*neynar.Signer, error)
	searchUserByAddress func(ctx context.Context, address string) (*neynar.User, error)
	publishCast         func(ctx context.Context, signerUUID, text string) (string, error)
}

func (f *fakeSignerClient) CreateSigner(ctx context.Context) (*neynar.Signer, error) {
	return f.createSigner(ctx)
}

func (f *fakeSignerClient) LookupSigner(ctx context.Context, signerUUID string) (*neynar.Signer, error) {
	return f.lookupSigner(ctx, signerUUID)
}

func (f *fakeSignerClient) RegisterSignedKey(ctx context.Context, signerUUID string, appFid int64, deadline int64, signature string, sponsored bool) (*neynar.Signer, error) {
	return f.registerSignedKey(ctx, signerUUID, appFid, deadline, signature, sponsored)
}

func (f *fakeSignerClient) SearchUserByAddress(ctx context.Context, address string) (*neynar.User, error) {
	return f.searchUserByAddress(ctx, address)
}

func (f *fakeSignerClient) PublishCast(ctx context.Context, signerUUID, text string) (string, error) {
	return f.publishCast(ctx, signerUUID, text)
}

type fakeKeySigner struct {
	address    string
	signatures []string
	lastFid    int64
	lastKey    string
	lastDL     time.Time
}

func (f *fakeKeySigner) AddressHex() string { return f.address }

func (f *fakeKeySigner) SignKeyRequest(requestFid int64, publicKey string, deadline time.Time) (string, error) {
	f.lastFid = requestFid
	f.lastKey = publicKey
	f.lastDL = deadline
	sig := fmt.Sprintf("0xsig-%d", len(f.signatures))
	f.signatures = append(f.signatures, sig)
	return sig, nil
}

// fakeUserRepo is an in-memory UserRepository keyed by fid.
type fakeUserRepo struct {
	mu         sync.Mutex
	users      map[int64]*models.User
	upserts    int
	upsertErr  error
	setPlanErr error
	incrErr    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*models.User)}
}

func (f *fakeUserRepo) Upsert(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts++
	if existing, ok := f.users[user.Fid]; ok {
		user.Plan = existing.Plan
		user.CastsUsed = existing.CastsUsed
		user.MaxFreeCasts = existing.MaxFreeCasts
		user.CreatedAt = existing.CreatedAt
	} else {
		user.Plan = models.PlanFree
		user.MaxFreeCasts = 5
		user.CreatedAt = time.Now()
	}
	copied := *user
	f.users[user.Fid] = &copied
	return nil
}

func (f *fakeUserRepo) GetByFid(ctx context.Context, fid int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[fid]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) SetSignerUUID(ctx context.Context, fid int64, signerUUID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[fid]
	if !ok {
		return repositories.ErrNotFound
	}
	user.SignerUUID = &signerUUID
	return nil
}

func (f *fakeUserRepo) IncrementCastsUsed(ctx context.Context, fid int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.incrErr != nil {
		return f.incrErr
	}
	user, ok := f.users[fid]
	if !ok {
		return repositories.ErrNotFound
	}
	user.CastsUsed++
	return nil
}

func (f *fakeUserRepo) SetPlan(ctx context.Context, fid int64, plan models.Plan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setPlanErr != nil {
		return f.setPlanErr
	}
	user, ok := f.users[fid]
	if !ok {
		return repositories.ErrNotFound
	}
	user.Plan = plan
	return nil
}

// fakeCastRepo is an in-memory CastRepository with the same status-guarded
// transitions as the SQL implementation.
type fakeCastRepo struct {
	mu        sync.Mutex
	casts     map[uuid.UUID]*models.ScheduledCast
	due       []*models.PendingCast
	selectErr error
	createErr error
}

func newFakeCastRepo() *fakeCastRepo {
	return &fakeCastRepo{casts: make(map[uuid.UUID]*models.ScheduledCast)}
}

func (f *fakeCastRepo) Create(ctx context.Context, cast *models.ScheduledCast) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	cast.ID = uuid.New()
	cast.Status = models.CastStatusPending
	cast.CreatedAt = time.Now()
	copied := *cast
	f.casts[cast.ID] = &copied
	return nil
}

func (f *fakeCastRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ScheduledCast, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cast, ok := f.casts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *cast
	return &copied, nil
}

func (f *fakeCastRepo) ListByFid(ctx context.Context, fid int64, limit int) ([]*models.ScheduledCast, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*models.ScheduledCast
	for _, cast := range f.casts {
		if cast.Fid == fid && cast.Status != models.CastStatusCancelled {
			copied := *cast
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (f *fakeCastRepo) SelectDue(ctx context.Context, limit int) ([]*models.PendingCast, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	if len(f.due) > limit {
		return f.due[:limit], nil
	}
	return f.due, nil
}

func (f *fakeCastRepo) MarkSent(ctx context.Context, id uuid.UUID, castHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cast, ok := f.casts[id]
	if !ok || cast.Status != models.CastStatusPending {
		return repositories.ErrNotFound
	}
	now := time.Now()
	cast.Status = models.CastStatusSent
	cast.CastHash = &castHash
	cast.SentAt = &now
	return nil
}

func (f *fakeCastRepo) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cast, ok := f.casts[id]
	if !ok || cast.Status != models.CastStatusPending {
		return repositories.ErrNotFound
	}
	cast.Status = models.CastStatusFailed
	cast.ErrorMessage = &errorMessage
	return nil
}

func (f *fakeCastRepo) Cancel(ctx context.Context, id uuid.UUID, fid int64) (*models.ScheduledCast, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cast, ok := f.casts[id]
	if !ok || cast.Fid != fid || cast.Status != models.CastStatusPending {
		return nil, repositories.ErrNotFound
	}
	cast.Status = models.CastStatusCancelled
	copied := *cast
	return &copied, nil
}

// fakePaymentRepo is an in-memory PaymentRepository keyed by tx hash.
type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[string]*models.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[string]*models.Payment)}
}

func (f *fakePaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.payments[payment.TransactionHash]; ok {
		return fmt.Errorf("duplicate transaction hash")
	}
	payment.ID = uuid.New()
	payment.CreatedAt = time.Now()
	copied := *payment
	f.payments[payment.TransactionHash] = &copied
	return nil
}

func (f *fakePaymentRepo) GetByTransactionHash(ctx context.Context, txHash string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment, ok := f.payments[txHash]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *payment
	return &copied, nil
}
