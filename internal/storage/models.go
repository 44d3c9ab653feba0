package storage

// Asset is a normalized uploaded image.
type Asset struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"` // "logo" or "photo"
	ContentType string `json:"content_type"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Data        []byte `json:"-"`
	CreatedAt   int64  `json:"created_at"`
}

// AssetStats summarizes the asset table.
type AssetStats struct {
	Count int
	Bytes int64
}
