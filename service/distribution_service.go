package service

import (
	"context"
	"fmt"

	"harvester/events"
	"harvester/models"
)

type distributionService struct {
	uowFactory UnitOfWorkFactory
	settings   SettingsService
}

// NewDistributionService creates a new distribution service
func NewDistributionService(uowFactory UnitOfWorkFactory, settings SettingsService) DistributionService {
	return &distributionService{
		uowFactory: uowFactory,
		settings:   settings,
	}
}

// allocation is one recipient's computed share before it is written
type allocation struct {
	user        models.UserRef
	sandAmount  int64
	isHarvester bool
}

// EqualSplit divides totalSand evenly among the participants; the modular
// leftover goes entirely to the first participant so no sand is lost.
func (s *distributionService) EqualSplit(ctx context.Context, initiator models.UserRef, totalSand int64, participants []models.UserRef) (*models.DistributionResult, error) {
	if totalSand < 1 {
		return nil, &ValidationError{Field: "total_sand", Reason: "must be at least 1"}
	}
	if len(participants) < 1 {
		return nil, &ValidationError{Field: "participants", Reason: "at least one participant required"}
	}

	n := int64(len(participants))
	share := totalSand / n
	leftover := totalSand % n

	allocations := make([]allocation, 0, len(participants))
	for i, participant := range participants {
		sand := share
		if i == 0 {
			sand += leftover
		}
		allocations = append(allocations, allocation{user: participant, sandAmount: sand})
	}

	return s.distribute(ctx, initiator, totalSand, 0, allocations, 0)
}

// PercentageSplit gives each tagged participant userCutPercent of the total;
// whatever remains after the per-user cuts is credited to the guild treasury.
// Rejects cut totals that would overcommit beyond 100%.
func (s *distributionService) PercentageSplit(ctx context.Context, initiator models.UserRef, totalSand int64, participants []models.UserRef, userCutPercent int64) (*models.DistributionResult, error) {
	if totalSand < 1 {
		return nil, &ValidationError{Field: "total_sand", Reason: "must be at least 1"}
	}
	if len(participants) < 1 {
		return nil, &ValidationError{Field: "participants", Reason: "at least one participant required"}
	}
	if userCutPercent < 0 || userCutPercent > 100 {
		return nil, &ValidationError{Field: "user_cut_percent", Reason: "must be between 0 and 100"}
	}

	n := int64(len(participants))
	if n*userCutPercent > 100 {
		return nil, &ValidationError{
			Field:  "user_cut_percent",
			Reason: fmt.Sprintf("%d participants at %d%% would allocate %d%% of the total", n, userCutPercent, n*userCutPercent),
		}
	}

	userSand := totalSand * userCutPercent / 100
	guildSand := totalSand - n*userSand

	allocations := make([]allocation, 0, len(participants))
	for _, participant := range participants {
		allocations = append(allocations, allocation{user: participant, sandAmount: userSand})
	}

	guildCutPercent := 100 - n*userCutPercent
	return s.distribute(ctx, initiator, totalSand, guildSand, allocations, float64(guildCutPercent))
}

// HarvesterSplit gives the harvester harvesterPercent of the total off the
// top, then divides the remainder equally among harvester and participants.
// The modular leftover folds back into the harvester's share.
func (s *distributionService) HarvesterSplit(ctx context.Context, harvester models.UserRef, totalSand int64, participants []models.UserRef, harvesterPercent int64) (*models.DistributionResult, error) {
	if totalSand < 1 {
		return nil, &ValidationError{Field: "total_sand", Reason: "must be at least 1"}
	}
	if harvesterPercent < 0 || harvesterPercent > 100 {
		return nil, &ValidationError{Field: "harvester_percent", Reason: "must be between 0 and 100"}
	}

	harvesterBase := totalSand * harvesterPercent / 100
	remaining := totalSand - harvesterBase

	recipients := int64(len(participants)) + 1 // harvester always shares the remainder
	share := remaining / recipients
	leftover := remaining % recipients

	allocations := make([]allocation, 0, recipients)
	allocations = append(allocations, allocation{
		user:        harvester,
		sandAmount:  harvesterBase + share + leftover,
		isHarvester: true,
	})
	for _, participant := range participants {
		allocations = append(allocations, allocation{user: participant, sandAmount: share})
	}

	return s.distribute(ctx, harvester, totalSand, 0, allocations, 0)
}

// GetExpedition retrieves an expedition and its participant allocations
func (s *distributionService) GetExpedition(ctx context.Context, id int64) (*models.Expedition, []*models.ExpeditionParticipant, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	expedition, err := uow.ExpeditionRepository().GetByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get expedition: %w", err)
	}
	if expedition == nil {
		return nil, nil, &NotFoundError{Entity: "expedition", ID: id}
	}

	participants, err := uow.ExpeditionRepository().GetParticipants(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get participants: %w", err)
	}

	return expedition, participants, nil
}

// distribute writes a fully computed split: the expedition record, one
// participant row and one expedition deposit per recipient, melange credits
// for positive currency shares, and the guild treasury share, all inside a
// single transaction so a partial distribution is never observable.
func (s *distributionService) distribute(ctx context.Context, initiator models.UserRef, totalSand, guildSand int64, allocations []allocation, guildCutPercent float64) (*models.DistributionResult, error) {
	var allocated int64
	for _, alloc := range allocations {
		allocated += alloc.sandAmount
	}
	if allocated+guildSand != totalSand {
		return nil, fmt.Errorf("split does not conserve sand: allocated %d + guild %d != total %d", allocated, guildSand, totalSand)
	}

	rate := s.settings.ActiveRate()
	rateValue := rate.Float64()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if _, err := uow.UserRepository().Upsert(ctx, initiator.ID, initiator.Username); err != nil {
		return nil, fmt.Errorf("failed to upsert initiator: %w", err)
	}

	expedition := &models.Expedition{
		InitiatorID:        initiator.ID,
		InitiatorUsername:  initiator.Username,
		TotalSand:          totalSand,
		SandPerMelange:     rateValue,
		GuildCutPercentage: guildCutPercent,
	}
	if err := uow.ExpeditionRepository().Create(ctx, expedition); err != nil {
		return nil, fmt.Errorf("failed to create expedition: %w", err)
	}

	result := &models.DistributionResult{
		Expedition:   expedition,
		Participants: make([]*models.ExpeditionParticipant, 0, len(allocations)),
		GuildSand:    guildSand,
	}

	for _, alloc := range allocations {
		melange, _, err := rate.Convert(alloc.sandAmount)
		if err != nil {
			return nil, fmt.Errorf("failed to convert share for user %d: %w", alloc.user.ID, err)
		}

		if _, err := uow.UserRepository().Upsert(ctx, alloc.user.ID, alloc.user.Username); err != nil {
			return nil, fmt.Errorf("failed to upsert participant: %w", err)
		}

		participant := &models.ExpeditionParticipant{
			ExpeditionID:  expedition.ID,
			UserID:        alloc.user.ID,
			Username:      alloc.user.Username,
			SandAmount:    alloc.sandAmount,
			MelangeAmount: melange,
			IsHarvester:   alloc.isHarvester,
		}
		if err := uow.ExpeditionRepository().CreateParticipant(ctx, participant); err != nil {
			return nil, fmt.Errorf("failed to create participant: %w", err)
		}
		result.Participants = append(result.Participants, participant)

		deposit := &models.Deposit{
			UserID:         alloc.user.ID,
			Username:       alloc.user.Username,
			SandAmount:     alloc.sandAmount,
			Type:           models.DepositTypeExpedition,
			ExpeditionID:   &expedition.ID,
			MelangeAmount:  &melange,
			ConversionRate: &rateValue,
		}
		if err := uow.DepositRepository().Create(ctx, deposit); err != nil {
			return nil, fmt.Errorf("failed to record expedition deposit: %w", err)
		}

		if melange > 0 {
			if _, err := creditMelange(ctx, uow, alloc.user.ID, melange); err != nil {
				return nil, err
			}
		}
	}

	if guildSand > 0 {
		guildMelange, _, err := rate.Convert(guildSand)
		if err != nil {
			return nil, fmt.Errorf("failed to convert guild share: %w", err)
		}
		result.GuildMelange = guildMelange

		balance, err := uow.TreasuryRepository().Credit(ctx, guildSand, guildMelange)
		if err != nil {
			return nil, fmt.Errorf("failed to credit treasury: %w", err)
		}

		txn := &models.GuildTransaction{
			Type:          models.GuildTransactionTypeExpeditionCut,
			SandAmount:    guildSand,
			MelangeAmount: guildMelange,
			ExpeditionID:  &expedition.ID,
			AdminUserID:   initiator.ID,
			AdminUsername: initiator.Username,
		}
		if err := recordGuildTransaction(ctx, uow, txn, balance); err != nil {
			return nil, err
		}
	}

	uow.EventBus().Publish(events.ExpeditionCompletedEvent{
		ExpeditionID: expedition.ID,
		InitiatorID:  initiator.ID,
		TotalSand:    totalSand,
		Participants: len(allocations),
		GuildSand:    guildSand,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}
