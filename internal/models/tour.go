package models

import "time"

// Tour — тур. Поле SecretTour служебное: такие туры не попадают в публичные выборки.
type Tour struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Slug            string      `json:"slug"`
	Duration        int         `json:"duration"`
	MaxGroupSize    int         `json:"maxGroupSize"`
	Difficulty      string      `json:"difficulty"`
	RatingsAverage  float64     `json:"ratingsAverage"`
	RatingsQuantity int         `json:"ratingsQuantity"`
	Price           float64     `json:"price"`
	PriceDiscount   *float64    `json:"priceDiscount,omitempty"`
	Summary         string      `json:"summary"`
	Description     string      `json:"description"`
	SecretTour      bool        `json:"-"`
	StartDates      []time.Time `json:"startDates"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// TourInput данные для создания тура.
type TourInput struct {
	Name          string      `json:"name" validate:"required,min=10,max=40"`
	Duration      int         `json:"duration" validate:"required,gt=0"`
	MaxGroupSize  int         `json:"maxGroupSize" validate:"required,gt=0"`
	Difficulty    string      `json:"difficulty" validate:"required,oneof=easy medium difficult"`
	Price         float64     `json:"price" validate:"required,gt=0"`
	PriceDiscount *float64    `json:"priceDiscount" validate:"omitempty,gte=0"`
	Summary       string      `json:"summary" validate:"required"`
	Description   string      `json:"description"`
	SecretTour    bool        `json:"secretTour"`
	StartDates    []time.Time `json:"startDates"`
}

// TourPatch — частичное обновление тура; nil означает «не менять».
type TourPatch struct {
	Name          *string      `json:"name" validate:"omitempty,min=10,max=40"`
	Duration      *int         `json:"duration" validate:"omitempty,gt=0"`
	MaxGroupSize  *int         `json:"maxGroupSize" validate:"omitempty,gt=0"`
	Difficulty    *string      `json:"difficulty" validate:"omitempty,oneof=easy medium difficult"`
	Price         *float64     `json:"price" validate:"omitempty,gt=0"`
	PriceDiscount *float64     `json:"priceDiscount" validate:"omitempty,gte=0"`
	Summary       *string      `json:"summary"`
	Description   *string      `json:"description"`
	SecretTour    *bool        `json:"secretTour"`
	StartDates    *[]time.Time `json:"startDates"`
}

// TourStats агрегат по уровню сложности.
type TourStats struct {
	Difficulty string  `json:"difficulty"`
	NumTours   int     `json:"numTours"`
	NumRatings int     `json:"numRatings"`
	AvgRating  float64 `json:"avgRating"`
	AvgPrice   float64 `json:"avgPrice"`
	MinPrice   float64 `json:"minPrice"`
	MaxPrice   float64 `json:"maxPrice"`
}

// MonthlyPlan число стартов туров в месяце и их названия.
type MonthlyPlan struct {
	Month         int      `json:"month"`
	NumTourStarts int      `json:"numTourStarts"`
	Tours         []string `json:"tours"`
}
