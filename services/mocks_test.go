package services

import (
	"context"
	"sync"
	"time"

	"anneta.link/models"
	"anneta.link/pkg/queryparams"
	"anneta.link/repositories"
)

// fakeCatalogRepo is an in-memory catalog that counts its queries so
// resolver tests can assert how often the "database" was hit.
type fakeCatalogRepo struct {
	mu           sync.Mutex
	orgs         map[string]models.Organization
	causes       map[string]models.Cause
	singleCalls  int
	batchCalls   int
	deletedKeys  []string
	deactivated  []string
	createdCount int
}

func newFakeCatalogRepo(orgs ...models.Organization) *fakeCatalogRepo {
	repo := &fakeCatalogRepo{
		orgs:   make(map[string]models.Organization),
		causes: make(map[string]models.Cause),
	}
	for _, org := range orgs {
		repo.orgs[org.Key] = org
	}
	return repo
}

func (f *fakeCatalogRepo) Create(ctx context.Context, org *models.Organization) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orgs[org.Key] = *org
	f.createdCount++
	return nil
}

func (f *fakeCatalogRepo) Update(ctx context.Context, org *models.Organization) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orgs[org.Key] = *org
	return nil
}

func (f *fakeCatalogRepo) FindByKey(ctx context.Context, key string) (*models.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.singleCalls++
	org, ok := f.orgs[key]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &org, nil
}

func (f *fakeCatalogRepo) FindManyByKeys(ctx context.Context, keys []string) ([]models.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchCalls++
	var result []models.Organization
	for _, key := range keys {
		if org, ok := f.orgs[key]; ok {
			result = append(result, org)
		}
	}
	return result, nil
}

func (f *fakeCatalogRepo) FindAllActive(ctx context.Context) ([]models.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []models.Organization
	for _, org := range f.orgs {
		if org.Active {
			result = append(result, org)
		}
	}
	return result, nil
}

func (f *fakeCatalogRepo) DeleteByKey(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orgs[key]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.orgs, key)
	f.deletedKeys = append(f.deletedKeys, key)
	return nil
}

func (f *fakeCatalogRepo) SetActive(ctx context.Context, key string, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	org, ok := f.orgs[key]
	if !ok {
		return repositories.ErrNotFound
	}
	org.Active = active
	f.orgs[key] = org
	if !active {
		f.deactivated = append(f.deactivated, key)
	}
	return nil
}

func (f *fakeCatalogRepo) FindActiveCauses(ctx context.Context) ([]models.Cause, error) {
	var result []models.Cause
	for _, cause := range f.causes {
		if cause.Active {
			result = append(result, cause)
		}
	}
	return result, nil
}

func (f *fakeCatalogRepo) FindCauseByKey(ctx context.Context, key string) (*models.Cause, error) {
	cause, ok := f.causes[key]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &cause, nil
}

var _ repositories.IOrganizationRepository = (*fakeCatalogRepo)(nil)

// fakeDonationRepo keeps donations in a map and mimics the conditional
// finalize semantics of the real repository.
type fakeDonationRepo struct {
	mu         sync.Mutex
	donations  map[uint]*models.Donation
	splitCount map[string]int64
	nextID     uint
}

func newFakeDonationRepo() *fakeDonationRepo {
	return &fakeDonationRepo{
		donations:  make(map[uint]*models.Donation),
		splitCount: make(map[string]int64),
		nextID:     1,
	}
}

func (f *fakeDonationRepo) Create(ctx context.Context, donation *models.Donation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	donation.ID = f.nextID
	f.nextID++
	f.donations[donation.ID] = donation
	return nil
}

func (f *fakeDonationRepo) FindByID(ctx context.Context, id uint) (*models.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	donation, ok := f.donations[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *donation
	return &copied, nil
}

func (f *fakeDonationRepo) FindAllPaginated(ctx context.Context, params queryparams.ListParams) ([]models.Donation, int64, error) {
	return nil, 0, nil
}

func (f *fakeDonationRepo) ReplaceSplits(ctx context.Context, donationID uint, splits []models.OrganizationDonation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	donation, ok := f.donations[donationID]
	if !ok {
		return repositories.ErrNotFound
	}
	donation.Splits = splits
	return nil
}

func (f *fakeDonationRepo) Finalize(ctx context.Context, id uint, payerIBAN, paymentMethod string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	donation, ok := f.donations[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if donation.Finalized {
		return repositories.ErrAlreadyFinalized
	}
	donation.Finalized = true
	donation.PayerIBAN = payerIBAN
	donation.PaymentMethod = paymentMethod
	return nil
}

func (f *fakeDonationRepo) CountSplitsByOrganizationKey(ctx context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.splitCount[key], nil
}

func (f *fakeDonationRepo) AssignTransferByDateRange(ctx context.Context, transferID uint, from, to time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeDonationRepo) CountByTransferID(ctx context.Context, transferID uint) (int64, error) {
	return 0, nil
}

func (f *fakeDonationRepo) MarkSentToOrganization(ctx context.Context, ids []uint) (int64, error) {
	return int64(len(ids)), nil
}

func (f *fakeDonationRepo) SumFinalized(ctx context.Context, filter repositories.StatsFilter) (int64, error) {
	return 0, nil
}

func (f *fakeDonationRepo) CountFinalized(ctx context.Context, filter repositories.StatsFilter) (int64, error) {
	return 0, nil
}

func (f *fakeDonationRepo) CountAll(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.donations)), nil
}

var _ repositories.IDonationRepository = (*fakeDonationRepo)(nil)

// fakeRecurringRepo only implements what the catalog guard needs.
type fakeRecurringRepo struct {
	splitCount map[string]int64
}

func (f *fakeRecurringRepo) Create(ctx context.Context, recurring *models.RecurringDonation) error {
	return nil
}

func (f *fakeRecurringRepo) FindByID(ctx context.Context, id uint) (*models.RecurringDonation, error) {
	return nil, repositories.ErrNotFound
}

func (f *fakeRecurringRepo) FindActiveByDonorID(ctx context.Context, donorID uint) ([]models.RecurringDonation, error) {
	return nil, nil
}

func (f *fakeRecurringRepo) Deactivate(ctx context.Context, id uint) error { return nil }

func (f *fakeRecurringRepo) ReplaceSplits(ctx context.Context, recurringID uint, splits []models.OrganizationRecurringDonation) error {
	return nil
}

func (f *fakeRecurringRepo) CountSplitsByOrganizationKey(ctx context.Context, key string) (int64, error) {
	return f.splitCount[key], nil
}

func (f *fakeRecurringRepo) CountAll(ctx context.Context) (int64, error) { return 0, nil }

var _ repositories.IRecurringDonationRepository = (*fakeRecurringRepo)(nil)

// fakeEventRepo records webhook audit inserts.
type fakeEventRepo struct {
	events []models.PaymentEvent
}

func (f *fakeEventRepo) Create(ctx context.Context, event *models.PaymentEvent) error {
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeEventRepo) FindByDonationID(ctx context.Context, donationID uint) ([]models.PaymentEvent, error) {
	return f.events, nil
}

var _ repositories.IPaymentEventRepository = (*fakeEventRepo)(nil)

// fakeGateway returns canned callbacks keyed by token.
type fakeGateway struct {
	redirectURL string
	redirectErr error
	redirects   []PaymentRedirectRequest
	callbacks   map[string]*PaymentCallback
	decodeErr   error
}

func (f *fakeGateway) RequestRedirect(ctx context.Context, req PaymentRedirectRequest) (string, error) {
	if f.redirectErr != nil {
		return "", f.redirectErr
	}
	f.redirects = append(f.redirects, req)
	return f.redirectURL, nil
}

func (f *fakeGateway) DecodeCallback(token string) (*PaymentCallback, error) {
	if f.decodeErr != nil {
		return nil, f.decodeErr
	}
	cb, ok := f.callbacks[token]
	if !ok {
		return nil, ErrTokenInvalid
	}
	return cb, nil
}

var _ IPaymentGateway = (*fakeGateway)(nil)

// countingNotifier tallies sends per kind.
type countingNotifier struct {
	confirmations int
	external      int
	dedications   int
}

func (n *countingNotifier) SendConfirmation(ctx context.Context, donationID uint) error {
	n.confirmations++
	return nil
}

func (n *countingNotifier) SendExternalConfirmation(ctx context.Context, donationID uint) error {
	n.external++
	return nil
}

func (n *countingNotifier) SendDedication(ctx context.Context, donationID uint) error {
	n.dedications++
	return nil
}

var _ INotificationService = (*countingNotifier)(nil)
