package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/athens-bank/athens/internal/metrics"
	"github.com/athens-bank/athens/internal/model"
	"github.com/athens-bank/athens/internal/plaid"
	"github.com/athens-bank/athens/internal/sharecode"
	"github.com/athens-bank/athens/internal/store"
)

// LinkedAccount is one live account view: the persisted bank document
// joined with the balances fetched from the aggregation service.
type LinkedAccount struct {
	BankDocumentID   string          `json:"bankDocumentId"`
	AccountID        string          `json:"accountId"`
	Name             string          `json:"name"`
	OfficialName     string          `json:"officialName"`
	Mask             string          `json:"mask"`
	Type             string          `json:"type"`
	Subtype          string          `json:"subtype"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	CurrentBalance   decimal.Decimal `json:"currentBalance"`
	Currency         string          `json:"currency"`
	ShareableID      string          `json:"sharableId"`
}

// BankService runs the link exchange and serves bank reads.
type BankService struct {
	aggregator Aggregator
	funding    Funding
	banks      Banks
	codec      *sharecode.Codec
	cache      RenderCache
	metrics    metrics.Recorder
	logger     *slog.Logger
}

// NewBankService wires a BankService.
func NewBankService(aggregator Aggregator, funding Funding, banks Banks, codec *sharecode.Codec, cache RenderCache, rec metrics.Recorder, logger *slog.Logger) *BankService {
	return &BankService{
		aggregator: aggregator,
		funding:    funding,
		banks:      banks,
		codec:      codec,
		cache:      cache,
		metrics:    rec,
		logger:     logger,
	}
}

// CreateLinkToken mints a short-lived token that opens the link widget for
// the given user. The widget shows the user's full name as the client name.
func (s *BankService) CreateLinkToken(ctx context.Context, user *model.User) (string, error) {
	token, err := s.aggregator.CreateLinkToken(ctx, user.AccountID, user.FullName())
	if err != nil {
		return "", err
	}
	s.metrics.IncLinkTokenIssued()
	return token, nil
}

// ExchangePublicToken completes a bank link: it trades the public token
// for an access token, picks the item's first account, mints a processor
// token, attaches the account as a funding source, persists the bank
// document and invalidates the user's home render.
//
// When the item exposes several accounts only the first is linked; the
// rest are logged and ignored.
func (s *BankService) ExchangePublicToken(ctx context.Context, user *model.User, publicToken string) (*model.BankAccount, error) {
	start := time.Now()

	bank, err := s.exchange(ctx, user, publicToken)
	if err != nil {
		s.metrics.IncBankLinked("failed")
		return nil, err
	}

	s.metrics.IncBankLinked("success")
	s.metrics.ObserveExchangeDuration(time.Since(start))

	if err := s.cache.InvalidateHome(ctx, user.AccountID); err != nil {
		s.logger.Warn("home render invalidation failed",
			slog.String("account_id", user.AccountID),
			slog.String("error", err.Error()))
	}

	s.logger.Info("bank linked",
		slog.String("account_id", user.AccountID),
		slog.String("bank_document_id", bank.DocumentID))
	return bank, nil
}

func (s *BankService) exchange(ctx context.Context, user *model.User, publicToken string) (*model.BankAccount, error) {
	result, err := s.aggregator.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		return nil, err
	}

	accounts, err := s.aggregator.GetAccounts(ctx, result.AccessToken)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, ErrNoAccounts
	}
	account := accounts[0]
	if len(accounts) > 1 {
		s.logger.Warn("item exposes multiple accounts, linking the first",
			slog.String("item_id", result.ItemID),
			slog.Int("accounts", len(accounts)))
	}

	processorToken, err := s.aggregator.CreateProcessorToken(ctx, result.AccessToken, account.AccountID, plaid.ProcessorDwolla)
	if err != nil {
		return nil, err
	}

	// The funding source carries the linked account's display name.
	fundingSourceURL, err := s.funding.CreateFundingSource(ctx, user.DwollaCustomerURL, processorToken, account.Name)
	if err != nil {
		return nil, err
	}
	if fundingSourceURL == "" {
		return nil, ErrNoFundingSource
	}

	shareableID, err := s.codec.Encode(account.AccountID)
	if err != nil {
		return nil, err
	}

	return s.banks.Create(ctx, &model.BankAccount{
		UserID:           user.AccountID,
		BankID:           result.ItemID,
		AccountID:        account.AccountID,
		AccessToken:      result.AccessToken,
		FundingSourceURL: fundingSourceURL,
		ShareableID:      shareableID,
	})
}

// Banks lists the caller's persisted bank documents.
func (s *BankService) Banks(ctx context.Context, user *model.User) ([]model.BankAccount, error) {
	return s.banks.ListByUser(ctx, user.AccountID)
}

// Bank fetches one bank document by its document id.
func (s *BankService) Bank(ctx context.Context, documentID string) (*model.BankAccount, error) {
	bank, err := s.banks.GetByDocumentID(ctx, documentID)
	if err != nil {
		if errors.Is(err, store.ErrBankNotFound) {
			return nil, ErrBankNotFound
		}
		return nil, err
	}
	return bank, nil
}

// BankByAccountID resolves a bank document by the underlying account id.
// Anything other than exactly one match reports not found.
func (s *BankService) BankByAccountID(ctx context.Context, accountID string) (*model.BankAccount, error) {
	bank, err := s.banks.GetByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrBankNotFound) {
			return nil, ErrBankNotFound
		}
		return nil, err
	}
	return bank, nil
}

// BankByShareableID decodes a shareable id and resolves its bank document.
func (s *BankService) BankByShareableID(ctx context.Context, code string) (*model.BankAccount, error) {
	accountID, err := s.codec.Decode(code)
	if err != nil {
		return nil, ErrBankNotFound
	}
	return s.BankByAccountID(ctx, accountID)
}

// LinkedAccounts joins every persisted bank of the user with live balances
// from the aggregation service. A bank whose access token no longer works
// is skipped with a warning rather than failing the whole view.
func (s *BankService) LinkedAccounts(ctx context.Context, user *model.User) ([]LinkedAccount, error) {
	banks, err := s.banks.ListByUser(ctx, user.AccountID)
	if err != nil {
		return nil, err
	}

	out := make([]LinkedAccount, 0, len(banks))
	for _, bank := range banks {
		accounts, err := s.aggregator.GetAccounts(ctx, bank.AccessToken)
		if err != nil {
			s.logger.Warn("skipping bank with unusable access token",
				slog.String("bank_document_id", bank.DocumentID),
				slog.String("error", err.Error()))
			continue
		}
		for _, account := range accounts {
			if account.AccountID != bank.AccountID {
				continue
			}
			out = append(out, LinkedAccount{
				BankDocumentID:   bank.DocumentID,
				AccountID:        account.AccountID,
				Name:             account.Name,
				OfficialName:     account.OfficialName,
				Mask:             account.Mask,
				Type:             account.Type,
				Subtype:          account.Subtype,
				AvailableBalance: balanceOrZero(account.Balances.Available),
				CurrentBalance:   balanceOrZero(account.Balances.Current),
				Currency:         account.Balances.ISOCurrencyCode,
				ShareableID:      bank.ShareableID,
			})
		}
	}
	return out, nil
}

func balanceOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
