package services

import (
	"context"
	"errors"
	"fmt"

	"anneta.link/configs"
	"anneta.link/configs/configslog"
	"anneta.link/models"
	"anneta.link/pkg/allocator"
	"anneta.link/pkg/queryparams"
	"anneta.link/pkg/validation"
	"anneta.link/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DonationServiceError are the donation orchestration failures.
type DonationServiceError string

func (e DonationServiceError) Error() string { return string(e) }

const (
	ErrDonationNotFound       DonationServiceError = "donation not found"
	ErrInvalidAmount          DonationServiceError = "donation amount is below the minimum or not a valid number"
	ErrInvalidEmail           DonationServiceError = "email address is not valid"
	ErrInvalidIDCode          DonationServiceError = "national ID code is not valid"
	ErrNoCauseSelection       DonationServiceError = "at least one cause with a positive proportion is required"
	ErrCauseNotFound          DonationServiceError = "selected cause not found"
	ErrDonationCreationFailed DonationServiceError = "donation could not be created"
	ErrRecurringNotFound      DonationServiceError = "recurring donation not found"
	ErrRecurringInactive      DonationServiceError = "recurring donation is no longer active"
)

// CauseSelection is the donor's chosen weight for one cause, out of
// allocator.Denominator. Organization weights inside the cause come from
// the catalog.
type CauseSelection struct {
	CauseKey   string
	Proportion int64
}

// DonationInput is everything the intake form submits for a single donation.
type DonationInput struct {
	Amount decimal.Decimal
	IDCode string // optional; donors may give with email only
	Name   string
	Email  string

	Comment           string
	DedicationName    string
	DedicationEmail   string
	DedicationMessage string

	// External forces the full amount to the configured external
	// organization, bypassing proportional allocation.
	External bool

	Causes []CauseSelection
}

// RecurringDonationInput creates a standing-order template. No payment is
// initiated; the donor sets up the order at their bank.
type RecurringDonationInput struct {
	Amount decimal.Decimal
	IDCode string
	Name   string
	Email  string

	Bank        string
	CompanyName string
	CompanyCode string
	Comment     string

	Causes []CauseSelection
}

// DonationResult is a created donation plus the gateway redirect the donor
// must be sent to.
type DonationResult struct {
	Donation    *models.Donation
	RedirectURL string
}

// IDonationService orchestrates donation intake and the recurring lifecycle.
type IDonationService interface {
	CreateDonation(ctx context.Context, input DonationInput) (*DonationResult, error)
	CreateRecurringDonation(ctx context.Context, input RecurringDonationInput) (*models.RecurringDonation, error)
	DeactivateRecurringDonation(ctx context.Context, id uint) error
	InstantiateFromRecurring(ctx context.Context, recurringID uint, actualAmountCents int64, payerIBAN string) (*models.Donation, error)
	GetDonationByID(ctx context.Context, id uint) (*models.Donation, error)
	GetDonationsPaginated(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error)
}

// DonationService implements IDonationService.
type DonationService struct {
	donationRepo  repositories.IDonationRepository
	donorRepo     repositories.IDonorRepository
	recurringRepo repositories.IRecurringDonationRepository
	catalogRepo   repositories.IOrganizationRepository
	gateway       IPaymentGateway
	cfg           *configs.AppConfig
	db            *gorm.DB
}

func NewDonationService(cfg *configs.AppConfig) IDonationService {
	return &DonationService{
		donationRepo:  repositories.NewDonationRepository(),
		donorRepo:     repositories.NewDonorRepository(),
		recurringRepo: repositories.NewRecurringDonationRepository(),
		catalogRepo:   repositories.NewOrganizationRepository(),
		gateway:       NewPaymentGateway(cfg.Payment),
		cfg:           cfg,
		db:            configs.GetDB(),
	}
}

// --- validation helpers ---

func validateIdentity(idCode, email string) error {
	if idCode != "" && !validation.ValidateIDCode(idCode) {
		return ErrInvalidIDCode
	}
	if !validation.ValidateEmail(email) {
		return ErrInvalidEmail
	}
	return nil
}

// buildCauseTree turns the donor's cause weights plus the catalog's
// per-cause organization weights into the allocator's input tree.
func (s *DonationService) buildCauseTree(ctx context.Context, selections []CauseSelection) ([]allocator.CauseShare, error) {
	var causes []allocator.CauseShare
	for _, sel := range selections {
		if sel.Proportion == 0 {
			continue
		}
		cause, err := s.catalogRepo.FindCauseByKey(ctx, sel.CauseKey)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrCauseNotFound, sel.CauseKey)
			}
			return nil, err
		}
		share := allocator.CauseShare{Proportion: sel.Proportion}
		for _, co := range cause.Organizations {
			share.Orgs = append(share.Orgs, allocator.OrgShare{
				Key:        co.OrganizationKey,
				Proportion: co.Proportion,
			})
		}
		causes = append(causes, share)
	}
	if len(causes) == 0 {
		return nil, ErrNoCauseSelection
	}
	return causes, nil
}

// findOrCreateDonor upserts the donor by ID code, or by email when no ID
// code was given. Existing donors get their name/email refreshed.
func findOrCreateDonor(ctx context.Context, repo repositories.IDonorRepository, idCode, name, email string, recurring bool) (*models.Donor, error) {
	var donor *models.Donor
	var err error
	if idCode != "" {
		donor, err = repo.FindByIDCode(ctx, idCode)
	} else {
		donor, err = repo.FindByEmail(ctx, email)
	}
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	if donor == nil {
		donor = &models.Donor{IDCode: idCode, Name: name, Email: email, Recurring: recurring}
		if err := repo.Create(ctx, donor); err != nil {
			return nil, err
		}
		return donor, nil
	}

	donor.Name = name
	donor.Email = email
	if recurring {
		donor.Recurring = true
	}
	if err := repo.Update(ctx, donor); err != nil {
		return nil, err
	}
	return donor, nil
}

// --- operations ---

// CreateDonation validates the input, persists the donation with its splits
// and asks the gateway for a redirect. A gateway failure is returned to the
// caller; the donation row stays unfinalized and splitful, which is inert:
// finalization can only ever come from a provider callback.
func (s *DonationService) CreateDonation(ctx context.Context, input DonationInput) (*DonationResult, error) {
	if !validation.ValidateAmount(input.Amount) {
		return nil, ErrInvalidAmount
	}
	if err := validateIdentity(input.IDCode, input.Email); err != nil {
		return nil, err
	}
	amountCents := validation.AmountToCents(input.Amount)

	var splits []allocator.Split
	if input.External {
		splits = []allocator.Split{{OrganizationKey: s.cfg.ExternalOrganizationKey, Amount: amountCents}}
	} else {
		tree, err := s.buildCauseTree(ctx, input.Causes)
		if err != nil {
			return nil, err
		}
		splits, err = allocator.Allocate(amountCents, tree)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDonationCreationFailed, err)
		}
	}

	var donation *models.Donation
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := repositories.ContextWithTx(ctx, tx)
		donorRepoTx := repositories.NewDonorRepositoryTx(tx)
		donationRepoTx := repositories.NewDonationRepositoryTx(tx)

		donor, err := findOrCreateDonor(txCtx, donorRepoTx, input.IDCode, input.Name, input.Email, false)
		if err != nil {
			return err
		}

		donation = &models.Donation{
			DonorID:           &donor.ID,
			Amount:            amountCents,
			Comment:           input.Comment,
			DedicationName:    input.DedicationName,
			DedicationEmail:   input.DedicationEmail,
			DedicationMessage: input.DedicationMessage,
			External:          input.External,
		}
		if err := donationRepoTx.Create(txCtx, donation); err != nil {
			return err
		}

		rows := make([]models.OrganizationDonation, len(splits))
		for i, sp := range splits {
			rows[i] = models.OrganizationDonation{
				DonationID:      donation.ID,
				OrganizationKey: sp.OrganizationKey,
				Amount:          sp.Amount,
			}
		}
		return donationRepoTx.ReplaceSplits(txCtx, donation.ID, rows)
	})
	if txErr != nil {
		configslog.Log.Error("CreateDonation transaction failed", zap.Error(txErr))
		if errors.As(txErr, new(DonationServiceError)) {
			return nil, txErr
		}
		return nil, ErrDonationCreationFailed
	}

	redirectURL, err := s.gateway.RequestRedirect(ctx, PaymentRedirectRequest{
		AmountCents:     amountCents,
		Reference:       fmt.Sprintf("donation %d", donation.ID),
		Email:           input.Email,
		Name:            input.Name,
		ReturnURL:       s.cfg.PublicBaseURL + "/api/payments/callback",
		NotificationURL: s.cfg.PublicBaseURL + "/api/payments/callback",
	})
	if err != nil {
		// The unfinalized donation is left in place on purpose; see above.
		configslog.Log.Error("payment redirect request failed",
			zap.Uint("donationID", donation.ID), zap.Error(err))
		return nil, err
	}

	configslog.SLog.Infof("donation %d created: %d cents across %d organizations", donation.ID, amountCents, len(splits))
	return &DonationResult{Donation: donation, RedirectURL: redirectURL}, nil
}

// CreateRecurringDonation stores the template and its intended allocation.
// The donor executes the standing order at their own bank, so there is no
// gateway call here.
func (s *DonationService) CreateRecurringDonation(ctx context.Context, input RecurringDonationInput) (*models.RecurringDonation, error) {
	if !validation.ValidateAmount(input.Amount) {
		return nil, ErrInvalidAmount
	}
	if err := validateIdentity(input.IDCode, input.Email); err != nil {
		return nil, err
	}
	amountCents := validation.AmountToCents(input.Amount)

	tree, err := s.buildCauseTree(ctx, input.Causes)
	if err != nil {
		return nil, err
	}
	splits, err := allocator.Allocate(amountCents, tree)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDonationCreationFailed, err)
	}

	var recurring *models.RecurringDonation
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := repositories.ContextWithTx(ctx, tx)
		donorRepoTx := repositories.NewDonorRepositoryTx(tx)
		recurringRepoTx := repositories.NewRecurringDonationRepositoryTx(tx)

		donor, err := findOrCreateDonor(txCtx, donorRepoTx, input.IDCode, input.Name, input.Email, true)
		if err != nil {
			return err
		}

		recurring = &models.RecurringDonation{
			DonorID:     &donor.ID,
			Amount:      amountCents,
			Active:      true,
			Bank:        input.Bank,
			CompanyName: input.CompanyName,
			CompanyCode: input.CompanyCode,
			Comment:     input.Comment,
		}
		if err := recurringRepoTx.Create(txCtx, recurring); err != nil {
			return err
		}

		rows := make([]models.OrganizationRecurringDonation, len(splits))
		for i, sp := range splits {
			rows[i] = models.OrganizationRecurringDonation{
				RecurringDonationID: recurring.ID,
				OrganizationKey:     sp.OrganizationKey,
				Amount:              sp.Amount,
			}
		}
		return recurringRepoTx.ReplaceSplits(txCtx, recurring.ID, rows)
	})
	if txErr != nil {
		configslog.Log.Error("CreateRecurringDonation transaction failed", zap.Error(txErr))
		return nil, ErrDonationCreationFailed
	}

	configslog.SLog.Infof("recurring donation %d created: %d cents per period", recurring.ID, amountCents)
	return recurring, nil
}

// DeactivateRecurringDonation marks the template inactive. History keeps
// pointing at it.
func (s *DonationService) DeactivateRecurringDonation(ctx context.Context, id uint) error {
	err := s.recurringRepo.Deactivate(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrRecurringNotFound
	}
	return err
}

// InstantiateFromRecurring records an actually-received standing-order
// payment against its template. The template's splits are re-expressed for
// the received amount; the donation is born finalized because the money has
// already settled at the bank.
func (s *DonationService) InstantiateFromRecurring(ctx context.Context, recurringID uint, actualAmountCents int64, payerIBAN string) (*models.Donation, error) {
	if actualAmountCents <= 0 {
		return nil, ErrInvalidAmount
	}

	recurring, err := s.recurringRepo.FindByID(ctx, recurringID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRecurringNotFound
		}
		return nil, err
	}
	if !recurring.Active {
		return nil, ErrRecurringInactive
	}

	template := make([]allocator.Split, len(recurring.Splits))
	for i, sp := range recurring.Splits {
		template[i] = allocator.Split{OrganizationKey: sp.OrganizationKey, Amount: sp.Amount}
	}
	resized, err := allocator.Resize(template, actualAmountCents, recurring.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDonationCreationFailed, err)
	}

	var donation *models.Donation
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := repositories.ContextWithTx(ctx, tx)
		donationRepoTx := repositories.NewDonationRepositoryTx(tx)

		donation = &models.Donation{
			DonorID:             recurring.DonorID,
			Amount:              actualAmountCents,
			Finalized:           true,
			PaymentMethod:       "bank_transfer",
			PayerIBAN:           payerIBAN,
			RecurringDonationID: &recurring.ID,
		}
		if err := donationRepoTx.Create(txCtx, donation); err != nil {
			return err
		}

		rows := make([]models.OrganizationDonation, len(resized))
		for i, sp := range resized {
			rows[i] = models.OrganizationDonation{
				DonationID:      donation.ID,
				OrganizationKey: sp.OrganizationKey,
				Amount:          sp.Amount,
			}
		}
		return donationRepoTx.ReplaceSplits(txCtx, donation.ID, rows)
	})
	if txErr != nil {
		configslog.Log.Error("InstantiateFromRecurring transaction failed",
			zap.Uint("recurringID", recurringID), zap.Error(txErr))
		return nil, ErrDonationCreationFailed
	}

	configslog.SLog.Infof("recurring donation %d instantiated as donation %d (%d cents, template %d cents)",
		recurringID, donation.ID, actualAmountCents, recurring.Amount)
	return donation, nil
}

func (s *DonationService) GetDonationByID(ctx context.Context, id uint) (*models.Donation, error) {
	donation, err := s.donationRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrDonationNotFound
		}
		return nil, err
	}
	return donation, nil
}

func (s *DonationService) GetDonationsPaginated(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error) {
	params.Validate()
	donations, totalCount, err := s.donationRepo.FindAllPaginated(ctx, params)
	if err != nil {
		return nil, err
	}
	return &queryparams.PaginatedResult{
		Data: donations,
		Meta: queryparams.PaginationMeta{
			CurrentPage: params.Page, PerPage: params.PerPage,
			TotalItems: totalCount, TotalPages: queryparams.CalculateTotalPages(totalCount, params.PerPage),
		},
	}, nil
}

var _ IDonationService = (*DonationService)(nil)
