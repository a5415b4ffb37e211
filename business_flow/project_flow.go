package businessflow

import (
	"context"
	"strings"

	"github.com/lib/pq"
	"github.com/webstar-labs/webstar/app/dto"
	"github.com/webstar-labs/webstar/app/services"
	"github.com/webstar-labs/webstar/models"
	"github.com/webstar-labs/webstar/repository"
	"github.com/webstar-labs/webstar/utils"
	"gorm.io/gorm"
)

// ProjectFlow handles portfolio project management
type ProjectFlow interface {
	CreateProject(ctx context.Context, userID uint, request *dto.CreateProjectRequest) (*dto.ProjectResponse, error)
	UpdateProject(ctx context.Context, userID uint, projectUUID string, request *dto.UpdateProjectRequest) (*dto.ProjectResponse, error)
	DeleteProject(ctx context.Context, userID uint, projectUUID string) error
	GetProject(ctx context.Context, projectUUID string) (*dto.ProjectResponse, error)
	ListProjects(ctx context.Context, userID uint, page, pageSize int) (*dto.ListProjectsResponse, error)
	UploadProjectCover(ctx context.Context, userID uint, projectUUID string, content []byte, filename string) (*dto.ProjectResponse, error)
	AddProjectMedia(ctx context.Context, userID uint, projectUUID string, content []byte, filename, category, caption string) (*dto.ProjectResponse, error)
}

// ProjectFlowImpl implements the project business flow
type ProjectFlowImpl struct {
	projectRepo repository.ProjectRepository
	profileRepo repository.ProfileRepository
	pointsRepo  repository.PointsRepository
	pipeline    MediaPipeline
	db          *gorm.DB
}

// NewProjectFlow creates a new project flow instance
func NewProjectFlow(
	projectRepo repository.ProjectRepository,
	profileRepo repository.ProfileRepository,
	pointsRepo repository.PointsRepository,
	pipeline MediaPipeline,
	db *gorm.DB,
) ProjectFlow {
	return &ProjectFlowImpl{
		projectRepo: projectRepo,
		profileRepo: profileRepo,
		pointsRepo:  pointsRepo,
		pipeline:    pipeline,
		db:          db,
	}
}

// CreateProject creates an unpublished project
func (pf *ProjectFlowImpl) CreateProject(ctx context.Context, userID uint, request *dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	title := strings.TrimSpace(request.Title)
	if title == "" {
		return nil, NewBusinessError("PROJECT_TITLE_REQUIRED", "Project title is required", ErrProjectTitleRequired)
	}

	project := &models.Project{
		UserID:      userID,
		Title:       title,
		Tags:        pq.StringArray(request.Tags),
		IsPublished: utils.ToPtr(false),
	}
	if request.Description != "" {
		project.Description = &request.Description
	}
	if request.ProjectURL != "" {
		project.ProjectURL = &request.ProjectURL
	}

	err := repository.WithTransaction(ctx, pf.db, func(txCtx context.Context) error {
		if err := pf.projectRepo.Save(txCtx, project); err != nil {
			return err
		}
		return pf.profileRepo.IncrementProjectsCount(txCtx, userID, 1)
	})
	if err != nil {
		return nil, NewBusinessError("PROJECT_CREATE_FAILED", "Project creation failed", err)
	}

	return toProjectResponse(project), nil
}

// UpdateProject applies the non-nil fields of the request. Publishing a
// project for the first time awards points.
func (pf *ProjectFlowImpl) UpdateProject(ctx context.Context, userID uint, projectUUID string, request *dto.UpdateProjectRequest) (*dto.ProjectResponse, error) {
	var updated *models.Project
	err := repository.WithTransaction(ctx, pf.db, func(txCtx context.Context) error {
		project, err := pf.ownedProject(txCtx, userID, projectUUID)
		if err != nil {
			return err
		}

		wasPublished := utils.IsTrue(project.IsPublished)

		if request.Title != nil {
			project.Title = strings.TrimSpace(*request.Title)
			if project.Title == "" {
				return ErrProjectTitleRequired
			}
		}
		if request.Description != nil {
			project.Description = request.Description
		}
		if request.ProjectURL != nil {
			project.ProjectURL = request.ProjectURL
		}
		if request.Tags != nil {
			project.Tags = pq.StringArray(request.Tags)
		}
		if request.IsPublished != nil {
			project.IsPublished = request.IsPublished
		}

		if err := pf.projectRepo.Update(txCtx, project); err != nil {
			return err
		}

		if !wasPublished && utils.IsTrue(project.IsPublished) {
			if err := pf.pointsRepo.AwardPoints(txCtx, userID, utils.PointsProjectPublished,
				models.PointsActionProjectPublished, "Project published: "+project.Title); err != nil {
				return err
			}
		}

		updated = project
		return nil
	})
	if err != nil {
		return nil, NewBusinessError("PROJECT_UPDATE_FAILED", "Project update failed", err)
	}

	return toProjectResponse(updated), nil
}

// DeleteProject removes a project the user owns
func (pf *ProjectFlowImpl) DeleteProject(ctx context.Context, userID uint, projectUUID string) error {
	err := repository.WithTransaction(ctx, pf.db, func(txCtx context.Context) error {
		project, err := pf.ownedProject(txCtx, userID, projectUUID)
		if err != nil {
			return err
		}
		if err := pf.projectRepo.Delete(txCtx, project.ID); err != nil {
			return err
		}
		return pf.profileRepo.IncrementProjectsCount(txCtx, userID, -1)
	})
	if err != nil {
		return NewBusinessError("PROJECT_DELETE_FAILED", "Project deletion failed", err)
	}
	return nil
}

// GetProject returns a project by UUID
func (pf *ProjectFlowImpl) GetProject(ctx context.Context, projectUUID string) (*dto.ProjectResponse, error) {
	project, err := pf.projectRepo.ByUUID(ctx, projectUUID)
	if err != nil {
		return nil, NewBusinessError("PROJECT_LOAD_FAILED", "Failed to load project", err)
	}
	if project == nil {
		return nil, NewBusinessError("PROJECT_NOT_FOUND", "Project not found", ErrProjectNotFound)
	}
	return toProjectResponse(project), nil
}

// ListProjects returns a page of the user's projects
func (pf *ProjectFlowImpl) ListProjects(ctx context.Context, userID uint, page, pageSize int) (*dto.ListProjectsResponse, error) {
	if page < 1 {
		return nil, NewBusinessError("INVALID_PAGE", "Page must be at least 1", ErrInvalidPage)
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, NewBusinessError("INVALID_PAGE_SIZE", "Page size must be between 1 and 100", ErrInvalidPageSize)
	}

	projects, err := pf.projectRepo.ListByUser(ctx, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("PROJECT_LIST_FAILED", "Failed to list projects", err)
	}

	total, err := pf.projectRepo.Count(ctx, models.ProjectFilter{UserID: &userID})
	if err != nil {
		return nil, NewBusinessError("PROJECT_LIST_FAILED", "Failed to count projects", err)
	}

	resp := &dto.ListProjectsResponse{
		Projects: make([]dto.ProjectResponse, 0, len(projects)),
		Total:    total,
	}
	for _, project := range projects {
		resp.Projects = append(resp.Projects, *toProjectResponse(project))
	}
	return resp, nil
}

// UploadProjectCover stores a cover image through the media pipeline.
func (pf *ProjectFlowImpl) UploadProjectCover(ctx context.Context, userID uint, projectUUID string, content []byte, filename string) (*dto.ProjectResponse, error) {
	stored, err := pf.pipeline.ProcessAndStore(ctx, content, filename, "", services.MediaCategoryPhoto, true, "")
	if err != nil {
		return nil, err
	}

	var updated *models.Project
	err = repository.WithTransaction(ctx, pf.db, func(txCtx context.Context) error {
		project, err := pf.ownedProject(txCtx, userID, projectUUID)
		if err != nil {
			return err
		}
		project.CoverImage = &stored.URL
		if err := pf.projectRepo.Update(txCtx, project); err != nil {
			return err
		}
		updated = project
		return nil
	})
	if err != nil {
		return nil, NewBusinessError("PROJECT_COVER_FAILED", "Project cover upload failed", err)
	}

	return toProjectResponse(updated), nil
}

// AddProjectMedia stores a gallery item through the media pipeline. Only
// photo and video are accepted for galleries.
func (pf *ProjectFlowImpl) AddProjectMedia(ctx context.Context, userID uint, projectUUID string, content []byte, filename, category, caption string) (*dto.ProjectResponse, error) {
	if category != services.MediaCategoryPhoto && category != services.MediaCategoryVideo {
		return nil, NewBusinessErrorf("UNSUPPORTED_CATEGORY", "Category %q is not allowed in project galleries", ErrUnsupportedCategory, category)
	}

	stored, err := pf.pipeline.ProcessAndStore(ctx, content, filename, "", category, true, "")
	if err != nil {
		return nil, err
	}

	var updated *models.Project
	err = repository.WithTransaction(ctx, pf.db, func(txCtx context.Context) error {
		project, err := pf.ownedProject(txCtx, userID, projectUUID)
		if err != nil {
			return err
		}

		media := &models.ProjectMedia{
			ProjectID: project.ID,
			MediaURL:  stored.URL,
			MediaType: category,
			Order:     len(project.Media),
		}
		if caption != "" {
			media.Caption = &caption
		}
		if err := pf.projectRepo.AddMedia(txCtx, media); err != nil {
			return err
		}

		project.Media = append(project.Media, *media)
		updated = project
		return nil
	})
	if err != nil {
		return nil, NewBusinessError("PROJECT_MEDIA_FAILED", "Project media upload failed", err)
	}

	return toProjectResponse(updated), nil
}

// ownedProject loads a project and checks ownership.
func (pf *ProjectFlowImpl) ownedProject(ctx context.Context, userID uint, projectUUID string) (*models.Project, error) {
	project, err := pf.projectRepo.ByUUID(ctx, projectUUID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	if project.UserID != userID {
		return nil, ErrProjectAccessDenied
	}
	return project, nil
}

func toProjectResponse(project *models.Project) *dto.ProjectResponse {
	resp := &dto.ProjectResponse{
		UUID:        project.UUID.String(),
		Title:       project.Title,
		Tags:        []string(project.Tags),
		IsPublished: utils.IsTrue(project.IsPublished),
		Views:       project.Views,
		Clicks:      project.Clicks,
		CreatedAt:   project.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if project.Description != nil {
		resp.Description = *project.Description
	}
	if project.ProjectURL != nil {
		resp.ProjectURL = *project.ProjectURL
	}
	if project.CoverImage != nil {
		resp.CoverImage = *project.CoverImage
	}
	for _, media := range project.Media {
		info := dto.ProjectMediaInfo{
			ID:        media.ID,
			MediaURL:  media.MediaURL,
			MediaType: media.MediaType,
			Order:     media.Order,
		}
		if media.Caption != nil {
			info.Caption = *media.Caption
		}
		resp.Media = append(resp.Media, info)
	}
	return resp
}
