package store

import (
	"food-delivery-relay/models"

	"gorm.io/gorm"
)

// HistoryRepo keeps the status audit trail in a gorm database
type HistoryRepo struct {
	DB *gorm.DB
}

func NewHistoryRepo(db *gorm.DB) *HistoryRepo {
	return &HistoryRepo{DB: db}
}

// Record appends one status change
func (r *HistoryRepo) Record(entry models.OrderStatusHistory) error {
	return r.DB.Create(&entry).Error
}

// ForOrder lists the changes recorded for orderID, oldest first
func (r *HistoryRepo) ForOrder(orderID string) ([]models.OrderStatusHistory, error) {
	var out []models.OrderStatusHistory
	err := r.DB.Where("order_id = ?", orderID).Order("id asc").Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
