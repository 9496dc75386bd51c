package model

import "time"

type MediaItem struct {
	ID        string    `db:"id" json:"id"`
	URL       string    `db:"url" json:"url"`
	AltText   *string   `db:"alt_text" json:"alt_text"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
