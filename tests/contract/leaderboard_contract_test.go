package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/verdantlab/ecoquest-api/internal/dto"
	"github.com/verdantlab/ecoquest-api/internal/handler"
)

type stubLeaderboardService struct {
	schools  []dto.SchoolRankEntry
	students []dto.StudentRankEntry
}

func (s stubLeaderboardService) Schools(context.Context, int) ([]dto.SchoolRankEntry, error) {
	return s.schools, nil
}

func (s stubLeaderboardService) Students(context.Context, dto.LeaderboardQuery) ([]dto.StudentRankEntry, error) {
	return s.students, nil
}

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()

	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", name))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)
	return schema
}

func newLeaderboardApp(svc stubLeaderboardService) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/leaderboard")
	handler.NewLeaderboardHandler(svc, zerolog.Nop()).Register(group)
	return app
}

func fetchPayload(t *testing.T, app *fiber.App, target string) interface{} {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload
}

func TestStudentLeaderboardContract(t *testing.T) {
	schema := compileSchema(t, "leaderboard_students.schema.json")

	svc := stubLeaderboardService{
		students: []dto.StudentRankEntry{
			{Rank: 1, UserID: 7, Name: "Asha", Points: 420, SchoolName: "Green Valley High", ClassName: "7A"},
			{Rank: 2, UserID: 3, Name: "Bilal", Points: 300, SchoolName: "Riverside School", ClassName: "7B"},
		},
	}

	payload := fetchPayload(t, newLeaderboardApp(svc), "/api/v1/leaderboard/students")
	require.NoError(t, schema.Validate(payload))
}

func TestSchoolLeaderboardContract(t *testing.T) {
	schema := compileSchema(t, "leaderboard_schools.schema.json")

	svc := stubLeaderboardService{
		schools: []dto.SchoolRankEntry{
			{Rank: 1, SchoolID: 2, Name: "Riverside School", Points: 1200, Location: "Chennai, Tamil Nadu"},
			{Rank: 2, SchoolID: 1, Name: "Green Valley High", Points: 980, Location: "Pune, Maharashtra"},
		},
	}

	payload := fetchPayload(t, newLeaderboardApp(svc), "/api/v1/leaderboard/schools")
	require.NoError(t, schema.Validate(payload))
}
