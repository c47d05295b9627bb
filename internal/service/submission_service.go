package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/verdantlab/ecoquest-api/internal/dto"
	"github.com/verdantlab/ecoquest-api/internal/models"
	"github.com/verdantlab/ecoquest-api/internal/repository"
	"github.com/verdantlab/ecoquest-api/pkg/ai"
)

// ErrSubmissionNotFound indicates a submission could not be located.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrDuplicateAttempt indicates the student already submitted for this challenge.
var ErrDuplicateAttempt = errors.New("challenge already attempted")

// ErrUnsupportedImage indicates the evidence file is not an accepted photo format.
var ErrUnsupportedImage = errors.New("unsupported image type")

// FileUploader stores an evidence photo and returns its public URL.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// SubmissionService handles evidence intake and submission reads.
type SubmissionService interface {
	List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error)
	GetByID(ctx context.Context, id string) (dto.SubmissionResponse, error)
	Create(ctx context.Context, payload dto.SubmissionCreateRequest, file *multipart.FileHeader) (dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions     repository.SubmissionRepository
	challenges      repository.ChallengeRepository
	validator       *validator.Validate
	uploader        FileUploader
	analyzer        ai.Analyzer
	analysisTimeout time.Duration
	logger          zerolog.Logger
}

// NewSubmissionService constructs a SubmissionService instance. The analyzer
// is optional; without it submissions simply carry no advisory analysis.
func NewSubmissionService(submissions repository.SubmissionRepository, challenges repository.ChallengeRepository, validate *validator.Validate, uploader FileUploader, analyzer ai.Analyzer, analysisTimeout time.Duration, logger zerolog.Logger) SubmissionService {
	if analysisTimeout <= 0 {
		analysisTimeout = 30 * time.Second
	}

	return &submissionService{
		submissions:     submissions,
		challenges:      challenges,
		validator:       validate,
		uploader:        uploader,
		analyzer:        analyzer,
		analysisTimeout: analysisTimeout,
		logger:          logger.With().Str("component", "submission_service").Logger(),
	}
}

func (s *submissionService) List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{
		UserID:      filter.UserID,
		ChallengeID: filter.ChallengeID,
		SchoolID:    filter.SchoolID,
		Status:      filter.Status,
	})
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) GetByID(ctx context.Context, id string) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) Create(ctx context.Context, payload dto.SubmissionCreateRequest, file *multipart.FileHeader) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if file == nil {
		return dto.SubmissionResponse{}, fmt.Errorf("evidence photo is required")
	}

	challenge, err := s.challenges.GetByID(ctx, payload.ChallengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrChallengeNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	// One attempt per challenge. The composite unique index on
	// (user_id, challenge_id) closes the race this read leaves open.
	if _, err := s.submissions.GetByUserAndChallenge(ctx, payload.UserID, payload.ChallengeID); err == nil {
		return dto.SubmissionResponse{}, ErrDuplicateAttempt
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.SubmissionResponse{}, err
	}

	if err := validateImageType(file); err != nil {
		return dto.SubmissionResponse{}, err
	}

	reader, err := file.Open()
	if err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("failed to open evidence photo: %w", err)
	}
	defer reader.Close()

	imageURL, err := s.uploader.Upload(ctx, file.Filename, reader)
	if err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("failed to upload evidence photo: %w", err)
	}

	submission := models.Submission{
		UserID:       payload.UserID,
		ChallengeID:  payload.ChallengeID,
		AssignmentID: payload.AssignmentID,
		Description:  payload.Description,
		ImageURL:     imageURL,
		Status:       models.SubmissionStatusPending,
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.SubmissionResponse{}, ErrDuplicateAttempt
		}
		return dto.SubmissionResponse{}, err
	}

	created, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Str("submission_id", created.ID).
		Uint("user_id", created.UserID).
		Uint("challenge_id", created.ChallengeID).
		Msg("submission created")

	s.scheduleAnalysis(created, challenge)

	return dto.NewSubmissionResponse(created), nil
}

// scheduleAnalysis runs the advisory image analysis in the background. The
// submission stays reviewable whether or not the analysis ever lands.
func (s *submissionService) scheduleAnalysis(submission models.Submission, challenge models.Challenge) {
	if s.analyzer == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.analysisTimeout)
		defer cancel()

		analysis, err := s.analyzer.AnalyzeEvidence(ctx, ai.AnalysisInput{
			ImageURL:       submission.ImageURL,
			Description:    submission.Description,
			ChallengeTitle: challenge.Title,
		})
		if err != nil {
			s.logger.Warn().Err(err).Str("submission_id", submission.ID).Msg("evidence analysis failed")
			return
		}

		if err := s.submissions.SetAnalysis(ctx, submission.ID, analysis); err != nil {
			s.logger.Warn().Err(err).Str("submission_id", submission.ID).Msg("failed to store evidence analysis")
			return
		}

		s.logger.Debug().Str("submission_id", submission.ID).Msg("evidence analysis stored")
	}()
}

func validateImageType(file *multipart.FileHeader) error {
	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open evidence photo: %w", err)
	}
	defer reader.Close()

	mime, err := mimetype.DetectReader(reader)
	if err != nil {
		return fmt.Errorf("failed to detect file type: %w", err)
	}

	allowed := []string{"image/jpeg", "image/png", "image/webp", "image/heic"}
	for _, a := range allowed {
		if mime.Is(a) {
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrUnsupportedImage, mime.String())
}
