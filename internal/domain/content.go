package domain

import "time"

// Release represents a catalog entry on the label site.
type Release struct {
	ID          string     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Artist      string     `json:"artist" db:"artist"`
	CatalogNo   string     `json:"catalogNo" db:"catalog_no"`
	CoverURL    string     `json:"coverUrl,omitempty" db:"cover_url"`
	Description string     `json:"description,omitempty" db:"description"`
	ReleasedAt  *time.Time `json:"releasedAt" db:"released_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// Artist represents a roster artist profile.
type Artist struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Bio       string    `json:"bio,omitempty" db:"bio"`
	ImageURL  string    `json:"imageUrl,omitempty" db:"image_url"`
	Links     []string  `json:"links" db:"links"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// NewsPost represents a news article on the label site. Posts created by
// the feed importer carry the source item's GUID so re-imports are
// idempotent.
type NewsPost struct {
	ID          string     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Summary     string     `json:"summary,omitempty" db:"summary"`
	Body        string     `json:"body,omitempty" db:"body"`
	Link        string     `json:"link,omitempty" db:"link"`
	ImageURL    string     `json:"imageUrl,omitempty" db:"image_url"`
	SourceGUID  string     `json:"-" db:"source_guid"`
	PublishedAt *time.Time `json:"publishedAt" db:"published_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}
