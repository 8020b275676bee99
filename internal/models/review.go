package models

import "time"

// Review — отзыв пользователя о туре. Пара (TourID, UserID) уникальна.
type Review struct {
	ID        string    `json:"id"`
	Review    string    `json:"review"`
	Rating    int       `json:"rating"`
	TourID    string    `json:"tour"`
	UserID    string    `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReviewInput данные для создания отзыва.
// Tour и User подставляются из пути и сессии, если не переданы явно.
type ReviewInput struct {
	Review string `json:"review" validate:"required"`
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	TourID string `json:"tour" validate:"omitempty,uuid"`
	UserID string `json:"user" validate:"omitempty,uuid"`
}

// ReviewPatch — частичное обновление отзыва.
type ReviewPatch struct {
	Review *string `json:"review" validate:"omitempty,min=1"`
	Rating *int    `json:"rating" validate:"omitempty,min=1,max=5"`
}
