package service

import (
	"context"
	"strings"

	"github.com/asaskevich/govalidator"

	"voteledger/internal/audit"
	"voteledger/internal/broadcast"
	"voteledger/internal/ledger/models"
	"voteledger/internal/ledger/store"
	"voteledger/internal/sheets"
	dErrors "voteledger/pkg/domain-errors"
	"voteledger/pkg/requestcontext"
)

// RegisterVoterInput carries the fields of a registration request.
type RegisterVoterInput struct {
	WalletID   string
	Name       string
	ExternalID string
	Email      string
}

// RegisterVoter adds a voter keyed by the normalized wallet id.
func (s *Service) RegisterVoter(ctx context.Context, in RegisterVoterInput) (models.Voter, error) {
	action := audit.ActionRegisterVoter
	actor := strings.TrimSpace(in.WalletID)

	wallet, err := models.NormalizeWallet(in.WalletID)
	if err != nil {
		return models.Voter{}, s.recordFailure(ctx, action, actor, err, "wallet_id", actor)
	}
	actor = wallet

	name := strings.TrimSpace(in.Name)
	externalID := strings.TrimSpace(in.ExternalID)
	email := strings.TrimSpace(in.Email)
	if name == "" || externalID == "" {
		err := dErrors.New(dErrors.CodeMissingField, "name and idNumber are required")
		return models.Voter{}, s.recordFailure(ctx, action, actor, err, "wallet_id", wallet)
	}
	if email != "" && !govalidator.IsEmail(email) {
		err := dErrors.New(dErrors.CodeInvalidField, "email is not a valid address")
		return models.Voter{}, s.recordFailure(ctx, action, actor, err, "wallet_id", wallet)
	}

	voter := models.Voter{
		WalletID:     wallet,
		Name:         name,
		ExternalID:   externalID,
		Email:        email,
		RegisteredAt: requestcontext.Now(ctx).UTC(),
		Status:       models.VoterStatusActive,
	}
	_, err = s.ledger.Update(func(st *store.State) error {
		if err := st.InsertVoter(voter); err != nil {
			return err
		}
		s.notify(ctx, broadcast.EventVoterRegistered, voter)
		key, row := sheets.VoterRow(voter)
		s.syncUpsert(ctx, sheets.SheetVoters, key, row)
		return nil
	})
	if err != nil {
		err = translate(err,
			dErrors.CodeInternal, "voter could not be stored",
			dErrors.CodeDuplicateVoter, "wallet is already registered")
		return models.Voter{}, s.recordFailure(ctx, action, actor, err, "wallet_id", wallet)
	}

	s.recordSuccess(ctx, action, actor, "wallet_id", wallet, "name", name)
	s.metrics.IncrementVotersRegistered()
	s.persist(ctx)
	return voter, nil
}

// VoterExists reports whether the wallet is registered. Malformed wallets are
// simply not registered.
func (s *Service) VoterExists(ctx context.Context, walletID string) bool {
	_, ok := s.FindVoter(ctx, walletID)
	return ok
}

// FindVoter looks up a voter by wallet id.
func (s *Service) FindVoter(_ context.Context, walletID string) (models.Voter, bool) {
	wallet, err := models.NormalizeWallet(walletID)
	if err != nil {
		return models.Voter{}, false
	}
	var (
		voter models.Voter
		found bool
	)
	_ = s.ledger.View(func(st *store.State) error {
		v, err := st.Voter(wallet)
		if err == nil {
			voter, found = v, true
		}
		return nil
	})
	return voter, found
}

// ListVoters returns every voter in registration order.
func (s *Service) ListVoters(_ context.Context) []models.Voter {
	var voters []models.Voter
	_ = s.ledger.View(func(st *store.State) error {
		voters = st.Voters()
		return nil
	})
	return voters
}
