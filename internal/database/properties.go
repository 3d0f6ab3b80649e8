package database

import (
	"context"
	"database/sql"
	"fmt"

	"imobdesk/server/internal/models"
)

// GetAllProperties returns the actor's listings, optionally filtered by
// status and city
func (d *Database) GetAllProperties(ctx context.Context, userID, status, city string) ([]models.Property, error) {
	query := `
		SELECT id, title, street, neighborhood, property_type, city, postal_code,
		       price, bedrooms, bathrooms, area, status, description, user_id,
		       latitude, longitude, created_at, updated_at
		FROM properties
		WHERE user_id = ?
		AND (? = '' OR status = ?)
		AND (? = '' OR LOWER(city) = LOWER(?))
		ORDER BY created_at DESC
	`
	rows, err := d.db.QueryContext(ctx, query, userID, status, status, city, city)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, *p)
	}
	return properties, rows.Err()
}

// GetPropertyByID returns one listing with its images
func (d *Database) GetPropertyByID(ctx context.Context, id, userID string) (*models.Property, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, title, street, neighborhood, property_type, city, postal_code,
		       price, bedrooms, bathrooms, area, status, description, user_id,
		       latitude, longitude, created_at, updated_at
		FROM properties
		WHERE id = ? AND user_id = ?
	`, id, userID)

	p, err := scanProperty(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	images, err := d.GetPropertyImages(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Images = images
	return p, nil
}

// InsertProperty persists a new listing
func (d *Database) InsertProperty(ctx context.Context, p *models.Property) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO properties
		(id, title, street, neighborhood, property_type, city, postal_code,
		 price, bedrooms, bathrooms, area, status, description, user_id,
		 latitude, longitude, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID, p.Title, nullString(p.Street), nullString(p.Neighborhood),
		nullString(p.PropertyType), nullString(p.City), nullString(p.PostalCode),
		p.Price, p.Bedrooms, p.Bathrooms, p.Area, p.Status,
		nullString(p.Description), p.UserID, p.Latitude, p.Longitude,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert property: %w", err)
	}
	return nil
}

// UpdateProperty overwrites the mutable columns of a listing
func (d *Database) UpdateProperty(ctx context.Context, p *models.Property) error {
	result, err := d.db.ExecContext(ctx, `
		UPDATE properties SET
			title = ?, street = ?, neighborhood = ?, property_type = ?,
			city = ?, postal_code = ?, price = ?, bedrooms = ?, bathrooms = ?,
			area = ?, status = ?, description = ?, latitude = ?, longitude = ?,
			updated_at = ?
		WHERE id = ? AND user_id = ?
	`,
		p.Title, nullString(p.Street), nullString(p.Neighborhood),
		nullString(p.PropertyType), nullString(p.City), nullString(p.PostalCode),
		p.Price, p.Bedrooms, p.Bathrooms, p.Area, p.Status,
		nullString(p.Description), p.Latitude, p.Longitude, p.UpdatedAt,
		p.ID, p.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update property: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("property not found: %s", p.ID)
	}
	return nil
}

// DeleteProperty removes a listing; images cascade
func (d *Database) DeleteProperty(ctx context.Context, id, userID string) error {
	result, err := d.db.ExecContext(ctx,
		"DELETE FROM properties WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("property not found: %s", id)
	}
	return nil
}

// GetPropertyImages returns a listing's images ordered by position
func (d *Database) GetPropertyImages(ctx context.Context, propertyID string) ([]models.PropertyImage, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, property_id, url, position
		FROM property_images
		WHERE property_id = ?
		ORDER BY position
	`, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []models.PropertyImage
	for rows.Next() {
		var img models.PropertyImage
		if err := rows.Scan(&img.ID, &img.PropertyID, &img.URL, &img.Position); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// AddPropertyImage appends an image to a listing
func (d *Database) AddPropertyImage(ctx context.Context, img *models.PropertyImage) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO property_images (id, property_id, url, position)
		VALUES (?, ?, ?, ?)
	`, img.ID, img.PropertyID, img.URL, img.Position)
	if err != nil {
		return fmt.Errorf("failed to insert property image: %w", err)
	}
	return nil
}

// DeletePropertyImage removes a single image
func (d *Database) DeletePropertyImage(ctx context.Context, id string) error {
	_, err := d.db.ExecContext(ctx, "DELETE FROM property_images WHERE id = ?", id)
	return err
}

// GetPropertyStats aggregates the actor's portfolio
func (d *Database) GetPropertyStats(ctx context.Context, userID string) (models.PropertyStats, error) {
	query := `
		SELECT
			COUNT(*) as total_properties,
			COALESCE(SUM(CASE WHEN status = 'disponivel' THEN 1 ELSE 0 END), 0) as total_available,
			COALESCE(SUM(CASE WHEN status = 'vendido' THEN 1 ELSE 0 END), 0) as total_sold,
			COALESCE(AVG(price), 0) as average_price,
			COALESCE(AVG(CAST(price AS FLOAT) / NULLIF(area, 0)), 0) as price_per_sqm
		FROM properties
		WHERE user_id = ? AND price IS NOT NULL
	`
	var stats models.PropertyStats
	err := d.db.QueryRowContext(ctx, query, userID).Scan(
		&stats.TotalProperties,
		&stats.TotalAvailable,
		&stats.TotalSold,
		&stats.AveragePrice,
		&stats.PricePerSqm,
	)
	return stats, err
}

func scanProperty(row rowScanner) (*models.Property, error) {
	var p models.Property
	var street, neighborhood, propertyType, city, postalCode, description sql.NullString
	var price sql.NullInt64
	var bedrooms, bathrooms, area sql.NullInt64
	var latitude, longitude sql.NullFloat64

	err := row.Scan(
		&p.ID,
		&p.Title,
		&street,
		&neighborhood,
		&propertyType,
		&city,
		&postalCode,
		&price,
		&bedrooms,
		&bathrooms,
		&area,
		&p.Status,
		&description,
		&p.UserID,
		&latitude,
		&longitude,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Street = street.String
	p.Neighborhood = neighborhood.String
	p.PropertyType = propertyType.String
	p.City = city.String
	p.PostalCode = postalCode.String
	p.Description = description.String
	if price.Valid {
		p.Price = int(price.Int64)
	}
	if bedrooms.Valid {
		b := int(bedrooms.Int64)
		p.Bedrooms = &b
	}
	if bathrooms.Valid {
		b := int(bathrooms.Int64)
		p.Bathrooms = &b
	}
	if area.Valid {
		a := int(area.Int64)
		p.Area = &a
	}
	if latitude.Valid {
		lat := latitude.Float64
		p.Latitude = &lat
	}
	if longitude.Valid {
		lon := longitude.Float64
		p.Longitude = &lon
	}
	return &p, nil
}
