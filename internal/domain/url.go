package domain

// URLMapping is the persisted link between a short code and the URL it
// resolves to. ID always equals ShortCode.
type URLMapping struct {
	ID          string `db:"id" json:"id"`
	ShortCode   string `db:"short_code" json:"short_code"`
	OriginalURL string `db:"original_url" json:"original_url"`
}

func NewURLMapping(shortCode, originalURL string) (*URLMapping, error) {
	if shortCode == "" {
		return nil, ErrMissingCode
	}
	if originalURL == "" {
		return nil, ErrEmptyInput
	}

	return &URLMapping{
		ID:          shortCode,
		ShortCode:   shortCode,
		OriginalURL: originalURL,
	}, nil
}
