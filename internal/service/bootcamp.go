package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/utafrali/devcamper/internal/domain"
	"github.com/utafrali/devcamper/internal/event"
	"github.com/utafrali/devcamper/internal/geocoder"
	"github.com/utafrali/devcamper/internal/policy"
	"github.com/utafrali/devcamper/internal/repository"
	"github.com/utafrali/devcamper/internal/storage"
	apperrors "github.com/utafrali/devcamper/pkg/errors"
	"github.com/utafrali/devcamper/pkg/slug"
	"github.com/utafrali/devcamper/pkg/validator"
)

// sniffLen is how much of an upload is read to detect its real type.
const sniffLen = 3072

// BootcampService implements the business logic for bootcamps.
type BootcampService struct {
	repo          repository.BootcampRepository
	geocoder      geocoder.Geocoder
	storage       storage.Storage
	producer      *event.Producer
	logger        *slog.Logger
	maxUploadSize int64
}

// NewBootcampService creates a new bootcamp service. Photos larger than
// maxUploadSize bytes are rejected.
func NewBootcampService(
	repo repository.BootcampRepository,
	geo geocoder.Geocoder,
	store storage.Storage,
	producer *event.Producer,
	logger *slog.Logger,
	maxUploadSize int64,
) *BootcampService {
	return &BootcampService{
		repo:          repo,
		geocoder:      geo,
		storage:       store,
		producer:      producer,
		logger:        logger,
		maxUploadSize: maxUploadSize,
	}
}

// CreateBootcampInput holds the fields accepted when publishing a bootcamp.
type CreateBootcampInput struct {
	Name          string   `json:"name" validate:"required,max=50"`
	Description   string   `json:"description" validate:"required,max=500"`
	Website       string   `json:"website" validate:"omitempty,http_url"`
	Phone         string   `json:"phone" validate:"omitempty,max=20,phone"`
	Email         string   `json:"email" validate:"omitempty,email"`
	Address       string   `json:"address" validate:"required"`
	Careers       []string `json:"careers" validate:"required,min=1,dive,career"`
	Housing       bool     `json:"housing"`
	JobAssistance bool     `json:"job_assistance"`
	JobGuarantee  bool     `json:"job_guarantee"`
	AcceptGI      bool     `json:"accept_gi"`
}

// UpdateBootcampInput holds a partial bootcamp update. Nil fields are left
// unchanged. Derived averages and the photo cannot be set here.
type UpdateBootcampInput struct {
	Name          *string  `json:"name" validate:"omitempty,min=1,max=50"`
	Description   *string  `json:"description" validate:"omitempty,min=1,max=500"`
	Website       *string  `json:"website" validate:"omitempty,http_url"`
	Phone         *string  `json:"phone" validate:"omitempty,max=20,phone"`
	Email         *string  `json:"email" validate:"omitempty,email"`
	Address       *string  `json:"address" validate:"omitempty,min=1"`
	Careers       []string `json:"careers" validate:"omitempty,min=1,dive,career"`
	Housing       *bool    `json:"housing"`
	JobAssistance *bool    `json:"job_assistance"`
	JobGuarantee  *bool    `json:"job_guarantee"`
	AcceptGI      *bool    `json:"accept_gi"`
}

// PhotoUpload is an uploaded bootcamp photo.
type PhotoUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Data        io.Reader
}

// List returns one page of bootcamps and the total match count.
func (s *BootcampService) List(ctx context.Context, filter domain.BootcampFilter) ([]domain.Bootcamp, int, error) {
	bootcamps, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list bootcamps: %w", err)
	}
	return bootcamps, total, nil
}

// Get returns a single bootcamp.
func (s *BootcampService) Get(ctx context.Context, id string) (*domain.Bootcamp, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get bootcamp: %w", err)
	}
	return b, nil
}

// Create publishes a bootcamp owned by actor. Non-admins may own only one.
// The address is geocoded into the bootcamp's location.
func (s *BootcampService) Create(ctx context.Context, actor domain.Actor, input *CreateBootcampInput) (*domain.Bootcamp, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	ownsOne := false
	if !actor.IsAdmin() {
		var err error
		if ownsOne, err = s.repo.ExistsByUser(ctx, actor.ID); err != nil {
			return nil, fmt.Errorf("check existing bootcamp: %w", err)
		}
	}
	if err := policy.AuthorizeBootcampCreation(actor, ownsOne); err != nil {
		return nil, err
	}

	loc, err := geocode(ctx, s.geocoder, s.logger, input.Address)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	b := &domain.Bootcamp{
		ID:            uuid.New().String(),
		UserID:        actor.ID,
		Name:          input.Name,
		Slug:          slug.Generate(input.Name),
		Description:   input.Description,
		Website:       input.Website,
		Phone:         input.Phone,
		Email:         input.Email,
		Address:       input.Address,
		Location:      loc,
		Careers:       input.Careers,
		Housing:       input.Housing,
		JobAssistance: input.JobAssistance,
		JobGuarantee:  input.JobGuarantee,
		AcceptGI:      input.AcceptGI,
		Photo:         domain.DefaultPhoto,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.insert(ctx, actor, b); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "bootcamp created",
		slog.String("bootcamp_id", b.ID),
		slog.String("user_id", actor.ID),
	)
	s.producer.PublishBootcampCreated(ctx, b)
	return b, nil
}

// insert writes b. For non-admins the store rechecks the one-bootcamp rule
// atomically with the insert.
func (s *BootcampService) insert(ctx context.Context, actor domain.Actor, b *domain.Bootcamp) error {
	if actor.IsAdmin() {
		if err := s.repo.Create(ctx, b); err != nil {
			return fmt.Errorf("create bootcamp: %w", err)
		}
		return nil
	}

	created, err := s.repo.CreateSole(ctx, b)
	if err != nil {
		return fmt.Errorf("create bootcamp: %w", err)
	}
	if !created {
		return policy.AuthorizeBootcampCreation(actor, true)
	}
	return nil
}

// Update applies a partial update on behalf of the owner or an admin.
func (s *BootcampService) Update(ctx context.Context, actor domain.Actor, id string, input *UpdateBootcampInput) (*domain.Bootcamp, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get bootcamp: %w", err)
	}
	if err := policy.Authorize(b.UserID, actor, "bootcamp", id); err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name != b.Name {
		b.Name = *input.Name
		b.Slug = slug.Generate(b.Name)
	}
	if input.Address != nil && *input.Address != b.Address {
		loc, err := geocode(ctx, s.geocoder, s.logger, *input.Address)
		if err != nil {
			return nil, err
		}
		b.Address = *input.Address
		b.Location = loc
	}
	if input.Description != nil {
		b.Description = *input.Description
	}
	if input.Website != nil {
		b.Website = *input.Website
	}
	if input.Phone != nil {
		b.Phone = *input.Phone
	}
	if input.Email != nil {
		b.Email = *input.Email
	}
	if input.Careers != nil {
		b.Careers = input.Careers
	}
	if input.Housing != nil {
		b.Housing = *input.Housing
	}
	if input.JobAssistance != nil {
		b.JobAssistance = *input.JobAssistance
	}
	if input.JobGuarantee != nil {
		b.JobGuarantee = *input.JobGuarantee
	}
	if input.AcceptGI != nil {
		b.AcceptGI = *input.AcceptGI
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("update bootcamp: %w", err)
	}

	s.producer.PublishBootcampUpdated(ctx, b)
	return b, nil
}

// Delete removes a bootcamp on behalf of the owner or an admin. The database
// cascade removes its courses and reviews in the same statement, so there are
// no averages left to recompute.
func (s *BootcampService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get bootcamp: %w", err)
	}
	if err := policy.Authorize(b.UserID, actor, "bootcamp", id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete bootcamp: %w", err)
	}

	if b.Photo != "" && b.Photo != domain.DefaultPhoto {
		if err := s.storage.Delete(ctx, b.Photo); err != nil {
			s.logger.WarnContext(ctx, "failed to remove bootcamp photo",
				slog.String("bootcamp_id", id),
				slog.String("photo", b.Photo),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "bootcamp deleted", slog.String("bootcamp_id", id))
	s.producer.PublishBootcampDeleted(ctx, id)
	return nil
}

// SearchByRadius returns bootcamps within distance of the postal code.
// No store query is issued when the postal code cannot be geocoded.
func (s *BootcampService) SearchByRadius(ctx context.Context, zipcode string, distance float64, unit domain.DistanceUnit) ([]domain.Bootcamp, error) {
	if math.IsNaN(distance) || math.IsInf(distance, 0) || distance < 0 {
		return nil, apperrors.InvalidInput("distance must be a non-negative number")
	}

	loc, err := geocode(ctx, s.geocoder, s.logger, zipcode)
	if err != nil {
		return nil, err
	}

	radians := domain.RadiusRadians(distance, unit)
	bootcamps, err := s.repo.WithinRadius(ctx, loc.Latitude, loc.Longitude, radians)
	if err != nil {
		return nil, fmt.Errorf("search bootcamps by radius: %w", err)
	}
	return bootcamps, nil
}

// UploadPhoto stores a new photo for the bootcamp. Both the declared content
// type and the sniffed bytes must be an image. Rejected uploads leave the
// bootcamp unchanged.
func (s *BootcampService) UploadPhoto(ctx context.Context, actor domain.Actor, id string, upload *PhotoUpload) (*domain.Bootcamp, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get bootcamp: %w", err)
	}
	if err := policy.Authorize(b.UserID, actor, "bootcamp", id); err != nil {
		return nil, err
	}

	if upload == nil || upload.Data == nil {
		return nil, apperrors.InvalidInput("please upload a file")
	}
	if !domain.IsImageContentType(upload.ContentType) {
		return nil, apperrors.InvalidFileType(upload.ContentType)
	}
	if upload.Size > s.maxUploadSize {
		return nil, apperrors.FileTooLarge(upload.Size, s.maxUploadSize)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(upload.Data, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if detected := mimetype.Detect(head); !domain.IsImageContentType(detected.String()) {
		return nil, apperrors.InvalidFileType(detected.String())
	}

	name := domain.PhotoFileName(b.ID, upload.FileName)
	if _, err := s.storage.Upload(ctx, &storage.UploadInput{
		Key:         name,
		ContentType: upload.ContentType,
		Size:        upload.Size,
		Data:        io.MultiReader(bytes.NewReader(head), upload.Data),
	}); err != nil {
		s.logger.ErrorContext(ctx, "photo upload failed",
			slog.String("bootcamp_id", id),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.StorageFailed(err)
	}

	if err := s.repo.SetPhoto(ctx, b.ID, name); err != nil {
		return nil, fmt.Errorf("record bootcamp photo: %w", err)
	}
	b.Photo = name

	s.logger.InfoContext(ctx, "bootcamp photo uploaded",
		slog.String("bootcamp_id", id),
		slog.String("photo", name),
	)
	s.producer.PublishBootcampUpdated(ctx, b)
	return b, nil
}
