package dto

// UpdateProfileRequest represents the request to update profile fields.
// Nil fields are left untouched.
type UpdateProfileRequest struct {
	DisplayName *string  `json:"display_name,omitempty" validate:"omitempty,max=100"`
	Headline    *string  `json:"headline,omitempty" validate:"omitempty,max=200"`
	Bio         *string  `json:"bio,omitempty" validate:"omitempty,max=500"`
	About       *string  `json:"about,omitempty" validate:"omitempty,max=5000"`
	Location    *string  `json:"location,omitempty" validate:"omitempty,max=100"`
	WebsiteURL  *string  `json:"website_url,omitempty" validate:"omitempty,url,max=500"`
	Skills      []string `json:"skills,omitempty" validate:"omitempty,max=30,dive,max=50"`
}

// ProfileResponse represents a user's profile
type ProfileResponse struct {
	UserID                uint     `json:"user_id"`
	Username              string   `json:"username"`
	DisplayName           *string  `json:"display_name,omitempty"`
	Headline              *string  `json:"headline,omitempty"`
	Bio                   *string  `json:"bio,omitempty"`
	About                 *string  `json:"about,omitempty"`
	Location              *string  `json:"location,omitempty"`
	WebsiteURL            *string  `json:"website_url,omitempty"`
	Skills                []string `json:"skills,omitempty"`
	ProfilePicture        *string  `json:"profile_picture,omitempty"`
	BannerImage           *string  `json:"banner_image,omitempty"`
	ProfileSetupCompleted bool     `json:"profile_setup_completed"`
	LikesCount            int      `json:"likes_count"`
	ViewsCount            int      `json:"views_count"`
	ProjectsCount         int      `json:"projects_count"`
}

// UpdateProfileImageResponse represents the result of a picture or banner upload.
type UpdateProfileImageResponse struct {
	Message            string `json:"message"`
	URL                string `json:"url"`
	CompressionApplied bool   `json:"compression_applied"`
	PointsAwarded      int    `json:"points_awarded,omitempty"`
}
