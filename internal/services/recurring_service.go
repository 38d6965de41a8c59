package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/events"
	"moneta/internal/logger"
	"moneta/internal/models"
)

// recurringService advances recurring transactions: cloning the next
// occurrence and rolling the schedule forward.
type recurringService struct {
	db                 *gorm.DB
	transactionService TransactionServicer
	categoryService    CategoryServicer
	userService        UserServicer
	publisher          events.Publisher
}

// NewRecurringService creates a new RecurringServicer.
func NewRecurringService(db *gorm.DB, transactionService TransactionServicer, categoryService CategoryServicer, userService UserServicer, publisher events.Publisher) RecurringServicer {
	return &recurringService{
		db:                 db,
		transactionService: transactionService,
		categoryService:    categoryService,
		userService:        userService,
		publisher:          publisher,
	}
}

// NextDate computes the next occurrence after from. Month and year steps
// use calendar-aware arithmetic, so adding a month to Jan 31 lands on the
// nearest valid day rather than a fixed number of days later.
func (s *recurringService) NextDate(from time.Time, frequency models.RecurringFrequency, interval int) *time.Time {
	return nextOccurrence(from, frequency, interval)
}

// nextOccurrence returns nil for an unrecognized frequency: the schedule
// simply stops advancing, which is not an error.
func nextOccurrence(from time.Time, frequency models.RecurringFrequency, interval int) *time.Time {
	if interval < 1 {
		interval = 1
	}
	var next time.Time
	switch frequency {
	case models.FrequencyDaily:
		next = from.AddDate(0, 0, interval)
	case models.FrequencyWeekly:
		next = from.AddDate(0, 0, 7*interval)
	case models.FrequencyMonthly:
		next = from.AddDate(0, interval, 0)
	case models.FrequencyYearly:
		next = from.AddDate(interval, 0, 0)
	default:
		return nil
	}
	return &next
}

// CreateNextOccurrence clones the recurring transaction into a new record
// dated at its scheduled next date, then advances the source's schedule.
// The chain stays flat: the clone's parent is the source's own parent when
// it has one, otherwise the source itself.
func (s *recurringService) CreateNextOccurrence(userID, transactionID string) (*models.Transaction, error) {
	source, err := s.transactionService.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}
	if !source.Recurring.IsRecurring {
		return nil, apperrors.ErrNotRecurring
	}
	if source.Recurring.NextDate == nil {
		return nil, apperrors.WithMessage(apperrors.ErrNotRecurring, "transaction has no next occurrence scheduled")
	}

	parentID := source.ID
	if source.Recurring.ParentTransactionID != nil {
		parentID = *source.Recurring.ParentTransactionID
	}

	occurrenceDate := *source.Recurring.NextDate
	next := &models.Transaction{
		UserID:        userID,
		CategoryID:    source.CategoryID,
		Title:         source.Title,
		Description:   source.Description,
		Type:          source.Type,
		Status:        models.TransactionStatusCompleted,
		Amount:        source.Amount,
		Currency:      source.Currency,
		ExchangeRate:  source.ExchangeRate,
		BaseAmount:    source.BaseAmount,
		PaymentMethod: source.PaymentMethod,
		Tags:          source.Tags,
		Date:          occurrenceDate,
		Version:       1,
		Recurring: models.Recurring{
			IsRecurring:         true,
			Frequency:           source.Recurring.Frequency,
			Interval:            source.Recurring.Interval,
			ParentTransactionID: &parentID,
		},
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(next).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.categoryService.RecordUsage(tx, next.CategoryID, next.BaseAmount, next.Date); err != nil {
			return err
		}
		if err := s.userService.AwardPoints(tx, userID, pointsPerTransaction); err != nil {
			return err
		}

		// Roll the source's schedule forward from the occurrence just spent.
		advanced := nextOccurrence(occurrenceDate, source.Recurring.Frequency, source.Recurring.Interval)
		if err := tx.Model(source).Update("recurring_next_date", advanced).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.PublishTransactionEvent(userID, events.TransactionAdded, next.ID, next.Version)
	return next, nil
}

// ProcessDue advances every recurring transaction whose next date has
// passed. Failures on individual transactions are logged and skipped so
// one bad record cannot stall the rest of the batch.
func (s *recurringService) ProcessDue(now time.Time) (int, error) {
	var due []models.Transaction
	if err := s.db.
		Where("recurring_is_recurring = ? AND recurring_next_date IS NOT NULL AND recurring_next_date <= ?", true, now).
		Find(&due).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	log := logger.Get()
	log.Infow("processing due recurring transactions", "due", len(due))

	processed := 0
	for _, t := range due {
		if _, err := s.CreateNextOccurrence(t.UserID, t.ID); err != nil {
			log.Errorw("failed to advance recurring transaction",
				"transaction_id", t.ID,
				"error", err,
			)
			continue
		}
		processed++
	}

	log.Infow("recurring processing complete", "processed", processed, "due", len(due))
	return processed, nil
}
