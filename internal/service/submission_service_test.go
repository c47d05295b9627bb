package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/verdantlab/ecoquest-api/internal/dto"
	"github.com/verdantlab/ecoquest-api/internal/models"
	"github.com/verdantlab/ecoquest-api/internal/repository"
	"github.com/verdantlab/ecoquest-api/pkg/ai"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

type uploaderStub struct {
	uploads int
}

func (u *uploaderStub) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	u.uploads++
	_, _ = io.Copy(io.Discard, reader)
	return "https://cdn.example.com/" + name, nil
}

type analyzerStub struct {
	mu     sync.Mutex
	calls  int
	result string
}

func (a *analyzerStub) AnalyzeEvidence(ctx context.Context, input ai.AnalysisInput) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	return a.result, nil
}

func buildPhotoHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {"form-data; name=\"photo\"; filename=\"" + filename + "\""},
		"Content-Type":        {"application/octet-stream"},
	})
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	writer.Close()

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(int64(len(content) + 1024))
	require.NoError(t, err)
	files := form.File["photo"]
	require.Len(t, files, 1)
	return files[0]
}

func seedIntakeScenario(t *testing.T, db *gorm.DB) (models.User, models.Challenge) {
	t.Helper()

	student := models.User{Name: "Asha", Email: "asha@example.com", PasswordHash: "x", Role: models.RoleStudent}
	require.NoError(t, db.Create(&student).Error)

	challenge := models.Challenge{Title: "Waste Audit", Description: "Sort classroom waste", Category: "waste", Points: 80}
	require.NoError(t, db.Create(&challenge).Error)

	return student, challenge
}

func newIntakeService(db *gorm.DB, uploader FileUploader, analyzer ai.Analyzer) SubmissionService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewChallengeRepository(db),
		validate,
		uploader,
		analyzer,
		time.Second,
		testLogger(),
	)
}

func TestSubmissionServiceCreateStoresEvidence(t *testing.T) {
	db := openTestDB(t)
	student, challenge := seedIntakeScenario(t, db)
	uploader := &uploaderStub{}
	svc := newIntakeService(db, uploader, nil)

	payload := dto.SubmissionCreateRequest{
		UserID:      student.ID,
		ChallengeID: challenge.ID,
		Description: "Separated wet and dry waste for a week",
	}

	created, err := svc.Create(context.Background(), payload, buildPhotoHeader(t, "audit.png", pngHeader))
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusPending, created.Status)
	require.Equal(t, "https://cdn.example.com/audit.png", created.ImageURL)
	require.Equal(t, 1, uploader.uploads)
	require.Nil(t, created.AIAnalysis)
}

func TestSubmissionServiceRejectsSecondAttempt(t *testing.T) {
	db := openTestDB(t)
	student, challenge := seedIntakeScenario(t, db)
	svc := newIntakeService(db, &uploaderStub{}, nil)

	payload := dto.SubmissionCreateRequest{
		UserID:      student.ID,
		ChallengeID: challenge.ID,
		Description: "First attempt",
	}

	_, err := svc.Create(context.Background(), payload, buildPhotoHeader(t, "one.png", pngHeader))
	require.NoError(t, err)

	payload.Description = "Second attempt"
	_, err = svc.Create(context.Background(), payload, buildPhotoHeader(t, "two.png", pngHeader))
	require.ErrorIs(t, err, ErrDuplicateAttempt)
}

// blindDuplicateRepo misses the pre-check lookup so a duplicate create
// reaches the database, the way a racing second request would.
type blindDuplicateRepo struct {
	repository.SubmissionRepository
}

func (r *blindDuplicateRepo) GetByUserAndChallenge(_ context.Context, _, _ uint) (models.Submission, error) {
	return models.Submission{}, gorm.ErrRecordNotFound
}

func TestSubmissionServiceMapsDuplicateKeyFromRace(t *testing.T) {
	db := openTestDB(t)
	student, challenge := seedIntakeScenario(t, db)

	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewSubmissionService(
		&blindDuplicateRepo{SubmissionRepository: repository.NewSubmissionRepository(db)},
		repository.NewChallengeRepository(db),
		validate,
		&uploaderStub{},
		nil,
		time.Second,
		testLogger(),
	)

	payload := dto.SubmissionCreateRequest{
		UserID:      student.ID,
		ChallengeID: challenge.ID,
		Description: "First attempt",
	}

	_, err := svc.Create(context.Background(), payload, buildPhotoHeader(t, "one.png", pngHeader))
	require.NoError(t, err)

	payload.Description = "Racing attempt"
	_, err = svc.Create(context.Background(), payload, buildPhotoHeader(t, "two.png", pngHeader))
	require.ErrorIs(t, err, ErrDuplicateAttempt)
}

func TestSubmissionServiceRejectsNonImage(t *testing.T) {
	db := openTestDB(t)
	student, challenge := seedIntakeScenario(t, db)
	uploader := &uploaderStub{}
	svc := newIntakeService(db, uploader, nil)

	payload := dto.SubmissionCreateRequest{
		UserID:      student.ID,
		ChallengeID: challenge.ID,
		Description: "Here is a document instead",
	}

	_, err := svc.Create(context.Background(), payload, buildPhotoHeader(t, "notes.txt", []byte("plain text evidence")))
	require.ErrorIs(t, err, ErrUnsupportedImage)
	require.Zero(t, uploader.uploads)
}

func TestSubmissionServiceUnknownChallenge(t *testing.T) {
	db := openTestDB(t)
	student, _ := seedIntakeScenario(t, db)
	svc := newIntakeService(db, &uploaderStub{}, nil)

	payload := dto.SubmissionCreateRequest{
		UserID:      student.ID,
		ChallengeID: 9999,
		Description: "Evidence for nothing",
	}

	_, err := svc.Create(context.Background(), payload, buildPhotoHeader(t, "img.png", pngHeader))
	require.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestSubmissionServiceAnalysisLandsAsynchronously(t *testing.T) {
	db := openTestDB(t)
	student, challenge := seedIntakeScenario(t, db)
	analyzer := &analyzerStub{result: "The photo matches the description closely."}
	svc := newIntakeService(db, &uploaderStub{}, analyzer)

	payload := dto.SubmissionCreateRequest{
		UserID:      student.ID,
		ChallengeID: challenge.ID,
		Description: "Sorted the bins",
	}

	created, err := svc.Create(context.Background(), payload, buildPhotoHeader(t, "bins.png", pngHeader))
	require.NoError(t, err)
	require.Nil(t, created.AIAnalysis)

	require.Eventually(t, func() bool {
		var stored models.Submission
		if err := db.First(&stored, "id = ?", created.ID).Error; err != nil {
			return false
		}
		return stored.AIAnalysis != nil && *stored.AIAnalysis == analyzer.result
	}, 2*time.Second, 20*time.Millisecond)
}
