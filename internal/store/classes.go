package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrClassNotFound signals a missing or inactive class record.
	ErrClassNotFound = errors.New("class not found")
)

// defaultPageSize is assumed when an offset is supplied without a limit.
const defaultPageSize = 50

// Class models a single advertised class session.
type Class struct {
	ID                     int64     `json:"id"`
	Name                   string    `json:"name"`
	Description            string    `json:"description"`
	AgeGroupMin            int       `json:"ageGroupMin"`
	AgeGroupMax            int       `json:"ageGroupMax"`
	Price                  *string   `json:"price,omitempty"`
	IsFeatured             bool      `json:"isFeatured"`
	Venue                  string    `json:"venue"`
	Address                string    `json:"address"`
	Postcode               string    `json:"postcode"`
	Town                   string    `json:"town"`
	ParkingAvailable       *bool     `json:"parkingAvailable,omitempty"`
	NearestTubeStation     *string   `json:"nearestTubeStation,omitempty"`
	TransportAccessibility *string   `json:"transportAccessibility,omitempty"`
	DistanceFromSearch     *float64  `json:"distanceFromSearch,omitempty"`
	DayOfWeek              string    `json:"dayOfWeek"`
	Time                   string    `json:"time"`
	Category               string    `json:"category"`
	Subcategory            *string   `json:"subcategory,omitempty"`
	Rating                 *float64  `json:"rating,omitempty"`
	ReviewCount            int       `json:"reviewCount"`
	IsActive               bool      `json:"isActive"`
	BookingEnabled         bool      `json:"bookingEnabled"`
	BookingType            *string   `json:"bookingType,omitempty"`
	MaxCapacity            *int      `json:"maxCapacity,omitempty"`
	BookingPrice           *float64  `json:"bookingPrice,omitempty"`
	ProviderID             *int64    `json:"providerId,omitempty"`
	CreatedAt              time.Time `json:"createdAt"`
}

// ClassFilter constrains the results returned by ListClasses. Every present
// field is applied conjunctively; inactive rows are always excluded.
type ClassFilter struct {
	Town     string
	Category string
	AgeMin   *int
	AgeMax   *int
	Featured *bool
	Limit    int
	Offset   int
}

const classColumns = `
	id, name, description, age_group_min, age_group_max, price, is_featured,
	venue, address, postcode, town, parking_available, nearest_tube_station,
	transport_accessibility, distance_from_search, day_of_week, time, category,
	subcategory, rating, review_count, is_active, booking_enabled, booking_type,
	max_capacity, booking_price, provider_id, created_at`

// ListClasses returns active classes matching the provided filter, most
// recently created first.
func (s *Store) ListClasses(ctx context.Context, filter ClassFilter) ([]Class, error) {
	query := `SELECT` + classColumns + `
		FROM classes`

	clauses := []string{"is_active = TRUE"}
	var args []any

	if town := strings.TrimSpace(filter.Town); town != "" {
		args = append(args, town)
		clauses = append(clauses, fmt.Sprintf("town = $%d", len(args)))
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		args = append(args, category)
		clauses = append(clauses, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.AgeMin != nil {
		args = append(args, *filter.AgeMin)
		clauses = append(clauses, fmt.Sprintf("age_group_min >= $%d", len(args)))
	}
	if filter.AgeMax != nil {
		args = append(args, *filter.AgeMax)
		clauses = append(clauses, fmt.Sprintf("age_group_max <= $%d", len(args)))
	}
	if filter.Featured != nil {
		args = append(args, *filter.Featured)
		clauses = append(clauses, fmt.Sprintf("is_featured = $%d", len(args)))
	}

	query += "\n\t\tWHERE " + strings.Join(clauses, " AND ")
	query += "\n\t\tORDER BY created_at DESC, id DESC"

	limit := filter.Limit
	if limit <= 0 && filter.Offset > 0 {
		limit = defaultPageSize
	}
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf("\n\t\tLIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf("\n\t\tOFFSET $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select classes: %w", err)
	}
	defer rows.Close()

	return scanClassRows(rows)
}

// ClassByID returns a single active class, or ErrClassNotFound when the row
// is absent or inactive.
func (s *Store) ClassByID(ctx context.Context, id int64) (Class, error) {
	row := s.db.QueryRowContext(ctx, `SELECT`+classColumns+`
		FROM classes
		WHERE id = $1 AND is_active = TRUE`, id)

	c, err := scanClass(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Class{}, ErrClassNotFound
		}
		return Class{}, fmt.Errorf("select class: %w", err)
	}
	return c, nil
}

// SearchClasses matches the term case-insensitively against class name or
// description, disjunctively across the two fields.
func (s *Store) SearchClasses(ctx context.Context, term string, limit int) ([]Class, error) {
	pattern := "%" + strings.TrimSpace(term) + "%"

	rows, err := s.db.QueryContext(ctx, `SELECT`+classColumns+`
		FROM classes
		WHERE is_active = TRUE AND (name ILIKE $1 OR description ILIKE $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search classes: %w", err)
	}
	defer rows.Close()

	return scanClassRows(rows)
}

// Categories lists the distinct categories across active classes.
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT category
		FROM classes
		WHERE is_active = TRUE AND category IS NOT NULL
		ORDER BY category ASC`)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	return scanStrings(rows)
}

// Towns lists the distinct towns across active classes, optionally narrowed
// by a case-insensitive substring.
func (s *Store) Towns(ctx context.Context, search string, limit int) ([]string, error) {
	query := `
		SELECT DISTINCT town
		FROM classes
		WHERE is_active = TRUE AND town IS NOT NULL`

	var args []any
	if search = strings.TrimSpace(search); search != "" {
		args = append(args, "%"+search+"%")
		query += fmt.Sprintf(" AND town ILIKE $%d", len(args))
	}

	args = append(args, limit)
	query += fmt.Sprintf("\n\t\tORDER BY town ASC\n\t\tLIMIT $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select towns: %w", err)
	}
	defer rows.Close()

	return scanStrings(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClass(row rowScanner) (Class, error) {
	var c Class
	err := row.Scan(
		&c.ID, &c.Name, &c.Description, &c.AgeGroupMin, &c.AgeGroupMax, &c.Price,
		&c.IsFeatured, &c.Venue, &c.Address, &c.Postcode, &c.Town,
		&c.ParkingAvailable, &c.NearestTubeStation, &c.TransportAccessibility,
		&c.DistanceFromSearch, &c.DayOfWeek, &c.Time, &c.Category, &c.Subcategory,
		&c.Rating, &c.ReviewCount, &c.IsActive, &c.BookingEnabled, &c.BookingType,
		&c.MaxCapacity, &c.BookingPrice, &c.ProviderID, &c.CreatedAt,
	)
	return c, err
}

func scanClassRows(rows *sql.Rows) ([]Class, error) {
	var classes []Class
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, fmt.Errorf("scan class: %w", err)
		}
		classes = append(classes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate classes: %w", err)
	}
	return classes, nil
}

func scanStrings(rows *sql.Rows) ([]string, error) {
	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan value: %w", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate values: %w", err)
	}
	return values, nil
}
