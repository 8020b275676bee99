package repository

import "github.com/magabrotheeeer/tourbooking/internal/query"

// TourSchema описывает коллекцию туров для построителя запросов.
var TourSchema = query.NewSchema("tours",
	[]query.Column{
		{Field: "id", Expr: "id::text", Type: query.String},
		{Field: "name", Expr: "name", Type: query.String},
		{Field: "slug", Expr: "slug", Type: query.String},
		{Field: "duration", Expr: "duration", Type: query.Int},
		{Field: "maxGroupSize", Expr: "max_group_size", Type: query.Int},
		{Field: "difficulty", Expr: "difficulty", Type: query.String},
		{Field: "ratingsAverage", Expr: "ratings_average", Type: query.Float},
		{Field: "ratingsQuantity", Expr: "ratings_quantity", Type: query.Int},
		{Field: "price", Expr: "price", Type: query.Float},
		{Field: "priceDiscount", Expr: "price_discount", Type: query.Float},
		{Field: "summary", Expr: "summary", Type: query.String},
		{Field: "description", Expr: "description", Type: query.String},
		{Field: "createdAt", Expr: "created_at", Type: query.Time},
		{Field: "secretTour", Expr: "secret_tour", Type: query.Bool},
	},
	[]string{"secretTour"},
	query.SortField{Field: "createdAt", Desc: true},
)

// UserSchema описывает коллекцию пользователей. Пароль и состояние сброса
// в схему не входят и не могут попасть в ответ.
var UserSchema = query.NewSchema("users",
	[]query.Column{
		{Field: "id", Expr: "id::text", Type: query.String},
		{Field: "name", Expr: "name", Type: query.String},
		{Field: "email", Expr: "email", Type: query.String},
		{Field: "photo", Expr: "photo", Type: query.String},
		{Field: "role", Expr: "role", Type: query.String},
		{Field: "createdAt", Expr: "created_at", Type: query.Time},
		{Field: "active", Expr: "active", Type: query.Bool},
	},
	[]string{"active"},
	query.SortField{Field: "createdAt", Desc: true},
)

// ReviewSchema описывает коллекцию отзывов.
var ReviewSchema = query.NewSchema("reviews",
	[]query.Column{
		{Field: "id", Expr: "id::text", Type: query.String},
		{Field: "review", Expr: "review", Type: query.String},
		{Field: "rating", Expr: "rating", Type: query.Int},
		{Field: "tour", Expr: "tour_id::text", Type: query.String},
		{Field: "user", Expr: "user_id::text", Type: query.String},
		{Field: "createdAt", Expr: "created_at", Type: query.Time},
	},
	nil,
	query.SortField{Field: "createdAt", Desc: true},
)
