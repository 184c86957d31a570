package service

import (
	"context"
	"fmt"

	"harvester/events"
	"harvester/models"
)

type paymentService struct {
	uowFactory UnitOfWorkFactory
}

// NewPaymentService creates a new payment service
func NewPaymentService(uowFactory UnitOfWorkFactory) PaymentService {
	return &paymentService{
		uowFactory: uowFactory,
	}
}

// PayUser settles pending melange for one user. A nil amount pays the full
// pending balance. The paid-total bump and the settlement record commit
// together; over-payment is rejected before anything is written.
func (s *paymentService) PayUser(ctx context.Context, userID int64, admin models.UserRef, amount *int64) (*models.MelangePayment, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	user, err := uow.UserRepository().GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, &NotFoundError{Entity: "user", ID: userID}
	}

	pending := user.PendingMelange()
	if pending == 0 {
		return nil, &ValidationError{Field: "user_id", Reason: "user has no pending melange"}
	}

	payAmount := pending
	if amount != nil {
		payAmount = *amount
	}
	if payAmount < 1 {
		return nil, &ValidationError{Field: "amount", Reason: "must be at least 1"}
	}
	if payAmount > pending {
		return nil, &ValidationError{
			Field:  "amount",
			Reason: fmt.Sprintf("%d exceeds pending balance of %d", payAmount, pending),
		}
	}

	payment, err := s.settle(ctx, uow, user, admin, payAmount)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return payment, nil
}

// PayAll settles the full pending balance for every user who has one. The
// whole payroll commits as a single transaction; any failure rolls back
// every settlement in the batch.
func (s *paymentService) PayAll(ctx context.Context, admin models.UserRef) (*models.PayrollResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	users, err := uow.UserRepository().GetUsersWithPendingMelange(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users with pending melange: %w", err)
	}

	result := &models.PayrollResult{
		Payments: make([]*models.MelangePayment, 0, len(users)),
	}

	for _, user := range users {
		pending := user.PendingMelange()
		if pending <= 0 {
			continue
		}

		payment, err := s.settle(ctx, uow, user, admin, pending)
		if err != nil {
			return nil, fmt.Errorf("payroll aborted at user %d: %w", user.UserID, err)
		}

		result.UsersPaid++
		result.TotalPaid += pending
		result.Payments = append(result.Payments, payment)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}

// ListPayments returns one page of a user's settlement history, newest first
func (s *paymentService) ListPayments(ctx context.Context, userID int64, page, pageSize int) ([]*models.MelangePayment, error) {
	limit, offset := pageBounds(page, pageSize)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	payments, err := uow.PaymentRepository().GetByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return payments, nil
}

// settle bumps the user's paid total under the no-overpay guard and appends
// the settlement record inside the caller's transaction.
func (s *paymentService) settle(ctx context.Context, uow UnitOfWork, user *models.User, admin models.UserRef, amount int64) (*models.MelangePayment, error) {
	applied, err := uow.UserRepository().AddPaidMelange(ctx, user.UserID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to add paid melange: %w", err)
	}
	if !applied {
		// Guard rejected under a concurrent settlement.
		return nil, &ValidationError{
			Field:  "amount",
			Reason: fmt.Sprintf("%d no longer covered by user %d's pending balance", amount, user.UserID),
		}
	}

	payment := &models.MelangePayment{
		UserID:        user.UserID,
		Username:      user.Username,
		MelangeAmount: amount,
		AdminUserID:   &admin.ID,
		AdminUsername: &admin.Username,
	}
	if err := uow.PaymentRepository().Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	uow.EventBus().Publish(events.PaymentMadeEvent{
		PaymentID: payment.ID,
		UserID:    user.UserID,
		Amount:    amount,
		AdminID:   admin.ID,
	})

	return payment, nil
}
