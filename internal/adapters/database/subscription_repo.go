package database

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"weathersub.app/internal/ports"
	"weathersub.app/pkg/errors"
)

// SubscriptionModel represents the database model for subscriptions.
// The store enforces uniqueness of (email, city) and of each token.
type SubscriptionModel struct {
	ID                uint   `gorm:"primaryKey"`
	Email             string `gorm:"size:255;not null;uniqueIndex:idx_subscriptions_email_city"`
	City              string `gorm:"size:255;not null;uniqueIndex:idx_subscriptions_email_city"`
	Frequency         string `gorm:"size:16;not null;index:idx_subscriptions_frequency_confirmed"`
	Confirmed         bool   `gorm:"not null;default:false;index:idx_subscriptions_frequency_confirmed"`
	ConfirmationToken string `gorm:"size:64;not null;uniqueIndex"`
	UnsubscribeToken  string `gorm:"size:64;not null;uniqueIndex"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (SubscriptionModel) TableName() string {
	return "subscriptions"
}

// Migrate creates or updates the subscriptions table and its indexes
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&SubscriptionModel{}); err != nil {
		return errors.NewDatabaseError("failed to migrate subscriptions table", err)
	}
	return nil
}

var _ ports.SubscriptionRepository = (*SubscriptionRepositoryAdapter)(nil)

// SubscriptionRepositoryAdapter implements the SubscriptionRepository port using GORM
type SubscriptionRepositoryAdapter struct {
	db *gorm.DB
}

func NewSubscriptionRepositoryAdapter(db *gorm.DB) *SubscriptionRepositoryAdapter {
	return &SubscriptionRepositoryAdapter{db: db}
}

// Create inserts a new subscription and sets its ID. A uniqueness violation
// is reported as an AlreadyExists error.
func (r *SubscriptionRepositoryAdapter) Create(ctx context.Context, sub *ports.SubscriptionData) error {
	if sub == nil {
		return errors.NewValidationError("subscription cannot be nil")
	}
	if sub.ConfirmationToken == "" || sub.UnsubscribeToken == "" {
		return errors.NewValidationError("subscription tokens are required")
	}

	model := r.dataToModel(sub)
	model.ID = 0
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateKey(err) {
			return errors.NewAlreadyExistsError("subscription already exists")
		}
		return errors.NewDatabaseError("failed to create subscription", err)
	}

	sub.ID = model.ID
	sub.CreatedAt = model.CreatedAt
	sub.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *SubscriptionRepositoryAdapter) FindByID(ctx context.Context, id uint) (*ports.SubscriptionData, error) {
	if id == 0 {
		return nil, errors.NewValidationError("subscription ID cannot be zero")
	}

	var model SubscriptionModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		return nil, r.findError(err, "failed to find subscription by ID")
	}

	return r.modelToData(&model), nil
}

func (r *SubscriptionRepositoryAdapter) FindByEmailAndCity(ctx context.Context, email, city string) (*ports.SubscriptionData, error) {
	if email == "" {
		return nil, errors.NewValidationError("email cannot be empty")
	}
	if city == "" {
		return nil, errors.NewValidationError("city cannot be empty")
	}

	var model SubscriptionModel
	err := r.db.WithContext(ctx).Where("email = ? AND city = ?", email, city).First(&model).Error
	if err != nil {
		return nil, r.findError(err, "failed to find subscription")
	}

	return r.modelToData(&model), nil
}

// FindPendingByConfirmationToken only matches subscriptions not yet confirmed
func (r *SubscriptionRepositoryAdapter) FindPendingByConfirmationToken(ctx context.Context, token string) (*ports.SubscriptionData, error) {
	if token == "" {
		return nil, errors.NewValidationError("token cannot be empty")
	}

	var model SubscriptionModel
	err := r.db.WithContext(ctx).
		Where("confirmation_token = ? AND confirmed = ?", token, false).
		First(&model).Error
	if err != nil {
		return nil, r.findError(err, "failed to find subscription by confirmation token")
	}

	return r.modelToData(&model), nil
}

func (r *SubscriptionRepositoryAdapter) FindByUnsubscribeToken(ctx context.Context, token string) (*ports.SubscriptionData, error) {
	if token == "" {
		return nil, errors.NewValidationError("token cannot be empty")
	}

	var model SubscriptionModel
	err := r.db.WithContext(ctx).Where("unsubscribe_token = ?", token).First(&model).Error
	if err != nil {
		return nil, r.findError(err, "failed to find subscription by unsubscribe token")
	}

	return r.modelToData(&model), nil
}

// MarkConfirmed is a conditional update: it only succeeds while the
// subscription exists and is still pending, so of two racing confirmations
// exactly one wins.
func (r *SubscriptionRepositoryAdapter) MarkConfirmed(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&SubscriptionModel{}).
		Where("id = ? AND confirmed = ?", id, false).
		Updates(map[string]interface{}{
			"confirmed":  true,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return errors.NewDatabaseError("failed to confirm subscription", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("pending subscription not found")
	}

	return nil
}

// Delete permanently removes a subscription
func (r *SubscriptionRepositoryAdapter) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Unscoped().Delete(&SubscriptionModel{}, id)
	if result.Error != nil {
		return errors.NewDatabaseError("failed to delete subscription", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("subscription not found")
	}

	return nil
}

func (r *SubscriptionRepositoryAdapter) ListConfirmedByFrequency(ctx context.Context, frequency string) ([]*ports.SubscriptionData, error) {
	if frequency == "" {
		return nil, errors.NewValidationError("frequency cannot be empty")
	}

	var models []SubscriptionModel
	err := r.db.WithContext(ctx).
		Where("frequency = ? AND confirmed = ?", frequency, true).
		Order("id").
		Find(&models).Error
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list confirmed subscriptions", err)
	}

	subscriptions := make([]*ports.SubscriptionData, len(models))
	for i := range models {
		subscriptions[i] = r.modelToData(&models[i])
	}

	return subscriptions, nil
}

func (r *SubscriptionRepositoryAdapter) CountConfirmedByFrequency(ctx context.Context, frequency string) (int64, error) {
	if frequency == "" {
		return 0, errors.NewValidationError("frequency cannot be empty")
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&SubscriptionModel{}).
		Where("frequency = ? AND confirmed = ?", frequency, true).
		Count(&count).Error
	if err != nil {
		return 0, errors.NewDatabaseError("failed to count subscriptions by frequency", err)
	}

	return count, nil
}

func (r *SubscriptionRepositoryAdapter) findError(err error, msg string) error {
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.NewNotFoundError("subscription not found")
	}
	return errors.NewDatabaseError(msg, err)
}

// isDuplicateKey recognises unique violations whether or not the dialector
// translated them to gorm.ErrDuplicatedKey.
func isDuplicateKey(err error) bool {
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

func (r *SubscriptionRepositoryAdapter) dataToModel(data *ports.SubscriptionData) *SubscriptionModel {
	return &SubscriptionModel{
		ID:                data.ID,
		Email:             data.Email,
		City:              data.City,
		Frequency:         data.Frequency,
		Confirmed:         data.Confirmed,
		ConfirmationToken: data.ConfirmationToken,
		UnsubscribeToken:  data.UnsubscribeToken,
		CreatedAt:         data.CreatedAt,
		UpdatedAt:         data.UpdatedAt,
	}
}

func (r *SubscriptionRepositoryAdapter) modelToData(model *SubscriptionModel) *ports.SubscriptionData {
	return &ports.SubscriptionData{
		ID:                model.ID,
		Email:             model.Email,
		City:              model.City,
		Frequency:         model.Frequency,
		Confirmed:         model.Confirmed,
		ConfirmationToken: model.ConfirmationToken,
		UnsubscribeToken:  model.UnsubscribeToken,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
}
