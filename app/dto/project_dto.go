package dto

// CreateProjectRequest represents the request to create a portfolio project
type CreateProjectRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=200"`
	Description string   `json:"description" validate:"omitempty,max=5000"`
	ProjectURL  string   `json:"project_url" validate:"omitempty,url,max=500"`
	Tags        []string `json:"tags" validate:"omitempty,max=20,dive,max=50"`
}

// UpdateProjectRequest represents a partial project update. Nil fields are
// left untouched.
type UpdateProjectRequest struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	ProjectURL  *string  `json:"project_url,omitempty" validate:"omitempty,url,max=500"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=50"`
	IsPublished *bool    `json:"is_published,omitempty"`
}

// ProjectMediaInfo represents a media item inside a project gallery
type ProjectMediaInfo struct {
	ID        uint   `json:"id"`
	MediaURL  string `json:"media_url"`
	MediaType string `json:"media_type"`
	Caption   string `json:"caption,omitempty"`
	Order     int    `json:"order"`
}

// ProjectResponse represents a portfolio project
type ProjectResponse struct {
	UUID        string             `json:"uuid"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	ProjectURL  string             `json:"project_url,omitempty"`
	Tags        []string           `json:"tags,omitempty"`
	CoverImage  string             `json:"cover_image,omitempty"`
	IsPublished bool               `json:"is_published"`
	Views       int                `json:"views"`
	Clicks      int                `json:"clicks"`
	Media       []ProjectMediaInfo `json:"media,omitempty"`
	CreatedAt   string             `json:"created_at"`
}

// ListProjectsResponse represents a page of projects
type ListProjectsResponse struct {
	Projects []ProjectResponse `json:"projects"`
	Total    int64             `json:"total"`
}
