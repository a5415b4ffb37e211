package dto

// UploadMediaRequest contains upload details passed from handler to flow.
type UploadMediaRequest struct {
	UserID           uint   `json:"-"`
	OriginalFilename string `json:"-"`
	DeclaredType     string `json:"-"`
	Category         string `json:"-"`
	Content          []byte `json:"-"`
	Compress         bool   `json:"-"`
	Quality          string `json:"-"`
}

// UploadMediaResponse represents a successful media upload response.
type UploadMediaResponse struct {
	Message            string `json:"message"`
	UUID               string `json:"uuid"`
	URL                string `json:"url"`
	MediaType          string `json:"media_type"`
	MimeType           string `json:"mime_type"`
	Filename           string `json:"filename"`
	Width              int    `json:"width,omitempty"`
	Height             int    `json:"height,omitempty"`
	OriginalSize       int64  `json:"original_size"`
	FinalSize          int64  `json:"final_size"`
	CompressionApplied bool   `json:"compression_applied"`
	CompressionSavings string `json:"compression_savings,omitempty"`
	CompressionError   string `json:"compression_error,omitempty"`
	StoredLocally      bool   `json:"stored_locally"`
}

// CompressionStatusResponse reports pipeline availability to clients.
type CompressionStatusResponse struct {
	CompressionAvailable bool     `json:"compression_available"`
	CompressionEnabled   bool     `json:"compression_enabled"`
	StorageAvailable     bool     `json:"storage_available"`
	SupportedCategories  []string `json:"supported_categories"`
}

// MediaAssetInfo represents a stored media asset in listings.
type MediaAssetInfo struct {
	UUID               string `json:"uuid"`
	URL                string `json:"url"`
	MediaType          string `json:"media_type"`
	MimeType           string `json:"mime_type"`
	OriginalFilename   string `json:"original_filename"`
	OriginalSize       int64  `json:"original_size"`
	StoredSize         int64  `json:"stored_size"`
	CompressionApplied bool   `json:"compression_applied"`
	StoredLocally      bool   `json:"stored_locally"`
	CreatedAt          string `json:"created_at"`
}

// ListMediaResponse represents a page of the user's media assets.
type ListMediaResponse struct {
	Assets []MediaAssetInfo `json:"assets"`
	Total  int64            `json:"total"`
}
