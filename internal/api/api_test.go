package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/vytor/birdtalk/internal/clock"
	"github.com/vytor/birdtalk/internal/jobs"
	"github.com/vytor/birdtalk/internal/models"
	"github.com/vytor/birdtalk/internal/quiz"
	"github.com/vytor/birdtalk/internal/repository/sqlite"
	"github.com/vytor/birdtalk/internal/services"
	"github.com/vytor/birdtalk/internal/testutil"
	"github.com/vytor/birdtalk/internal/worker"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

var apiDay = civil.Date{Year: 2024, Month: time.April, Day: 20}

type APITestSuite struct {
	suite.Suite
	db      *sqlx.DB
	pool    *worker.Pool
	server  *Server
	handler http.Handler
	packID  uint64
}

func (s *APITestSuite) SetupTest() {
	ctx := context.Background()
	s.db = testutil.NewTestSqlx(s.T())

	birdRepo := sqlite.NewBirdRepository(s.db)
	packRepo := sqlite.NewPackRepository(s.db)
	statsRepo := sqlite.NewStatsRepository(s.db.DB)
	profileRepo := sqlite.NewProfileRepository(s.db.DB)

	birds := testutil.Birds(4)
	for _, b := range birds {
		s.Require().NoError(birdRepo.Upsert(ctx, b))
	}
	id, err := packRepo.Create(ctx, models.BirdPack{Name: "Garden", Birds: birds})
	s.Require().NoError(err)
	s.packID = id

	s.pool = worker.NewPool("stats", 1, 16)
	s.pool.Start(ctx)

	c := clock.Fixed(apiDay)
	progressSvc := services.NewProgressService(statsRepo, jobs.NewWorkerQueue(s.pool, statsRepo), c)
	catalogSvc := services.NewCatalogService(birdRepo, packRepo)
	s.server = &Server{
		ProfileService:  services.NewProfileService(profileRepo, progressSvc),
		CatalogService:  catalogSvc,
		ProgressService: progressSvc,
		PlayService: services.NewPlayService(catalogSvc, progressSvc, c,
			services.PlayConfig{Shuffle: true, SessionTTL: time.Hour, MediaBaseURL: "https://media.test"},
			services.WithRandom(func() quiz.Shuffler { return rand.New(rand.NewPCG(3, 5)) }),
		),
		DB:           pingerFunc(func(ctx context.Context) error { return s.db.PingContext(ctx) }),
		MediaBaseURL: "https://media.test",
		Clock:        c,
	}
	s.handler = s.server.Routes()
}

func (s *APITestSuite) TearDownTest() {
	s.pool.Stop()
	testutil.MustClose(s.T(), s.db)
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

func (s *APITestSuite) do(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *APITestSuite) decode(rec *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Error.Code
}

func profileCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == profileCookieName {
			return c
		}
	}
	return nil
}

func (s *APITestSuite) createProfile(name string) *http.Cookie {
	rec := s.do(http.MethodPost, "/api/profiles", `{"username": "`+name+`"}`)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	c := profileCookie(rec)
	s.Require().NotNil(c)
	return c
}

func (s *APITestSuite) TestHealth() {
	rec := s.do(http.MethodGet, "/healthz", "")
	s.Equal(http.StatusOK, rec.Code)
	s.NotEmpty(rec.Header().Get("X-Request-ID"))

	rec = s.do(http.MethodGet, "/readyz", "")
	s.Equal(http.StatusOK, rec.Code)

	s.server.DB = pingerFunc(func(context.Context) error { return stderrors.New("gone") })
	rec = s.do(http.MethodGet, "/readyz", "")
	s.Equal(http.StatusServiceUnavailable, rec.Code)
}

func (s *APITestSuite) TestProfiles() {
	cookie := s.createProfile("robin")
	id, err := strconv.ParseInt(cookie.Value, 10, 64)
	s.Require().NoError(err)

	rec := s.do(http.MethodGet, "/api/profiles", "", cookie)
	s.Equal(http.StatusOK, rec.Code)
	var list struct {
		Profiles []models.Profile `json:"profiles"`
		Current  *int64           `json:"current"`
	}
	s.decode(rec, &list)
	s.Require().Len(list.Profiles, 1)
	s.Equal("robin", list.Profiles[0].Username)
	s.Require().NotNil(list.Current)
	s.Equal(id, *list.Current)

	rec = s.do(http.MethodPost, "/api/profiles", `{"username": "  "}`)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("VALIDATION_ERROR", errorCode(s.T(), rec))

	rec = s.do(http.MethodPost, "/api/profiles/999/select", "")
	s.Equal(http.StatusNotFound, rec.Code)
	rec = s.do(http.MethodPost, "/api/profiles/abc/select", "")
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/profiles/"+cookie.Value+"/select", "")
	s.Equal(http.StatusOK, rec.Code)
	s.NotNil(profileCookie(rec))

	rec = s.do(http.MethodDelete, "/api/profiles/"+cookie.Value, "", cookie)
	s.Equal(http.StatusNoContent, rec.Code)
	cleared := profileCookie(rec)
	s.Require().NotNil(cleared)
	s.Empty(cleared.Value)

	rec = s.do(http.MethodGet, "/api/stats", "", cookie)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *APITestSuite) TestCatalog() {
	rec := s.do(http.MethodGet, "/api/birds", "")
	s.Equal(http.StatusOK, rec.Code)
	var birds []models.BirdView
	s.decode(rec, &birds)
	s.Require().Len(birds, 4)
	s.Equal("https://media.test/bird_images/1.jpg", birds[0].ImageURL)
	s.Equal("https://media.test/bird_sounds/1.mp3", birds[0].SoundURL)

	rec = s.do(http.MethodGet, "/api/packs", "")
	s.Equal(http.StatusOK, rec.Code)
	var packs []models.BirdPack
	s.decode(rec, &packs)
	s.Require().Len(packs, 1)
	s.Equal("Garden", packs[0].Name)

	rec = s.do(http.MethodGet, "/api/packs/"+strconv.FormatUint(s.packID, 10), "")
	s.Equal(http.StatusOK, rec.Code)
	var p packResponse
	s.decode(rec, &p)
	s.Equal("Garden", p.Name)
	s.Len(p.Birds, 4)

	// Unparseable tokens fall back to the pack of the day, which does not exist yet.
	rec = s.do(http.MethodGet, "/api/packs/not..a..pack", "")
	s.Equal(http.StatusNotFound, rec.Code)
	s.Contains(rec.Body.String(), "no pack of the day for 2024-04-20 yet")

	rec = s.do(http.MethodGet, "/api/packs/404", "")
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *APITestSuite) TestPlayRequiresProfile() {
	rec := s.do(http.MethodPost, "/api/play?pack=1", "")
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal("PROFILE_REQUIRED", errorCode(s.T(), rec))

	rec = s.do(http.MethodGet, "/api/stats", "", &http.Cookie{Name: profileCookieName, Value: "nope"})
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *APITestSuite) TestPlayThroughAPack() {
	cookie := s.createProfile("wren")
	packToken := strconv.FormatUint(s.packID, 10)

	rec := s.do(http.MethodPost, "/api/play?pack="+packToken, "", cookie)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var round models.Round
	s.decode(rec, &round)
	s.Require().NotEmpty(round.SessionID)
	s.Equal(packToken, round.Pack)
	s.Nil(round.CorrectBirdID)
	s.NotEmpty(round.SoundURL)
	base := "/api/play/" + round.SessionID

	rec = s.do(http.MethodPost, base+"/next", "", cookie)
	s.Equal(http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, base+"/answer", `{"bird_id": "x"}`, cookie)
	s.Equal(http.StatusBadRequest, rec.Code)

	// The round's sound is the only hint to the answer, as in the real game.
	rec = s.do(http.MethodGet, "/api/birds", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	var birds []models.BirdView
	s.decode(rec, &birds)
	bySound := make(map[string]uint64, len(birds))
	for _, b := range birds {
		bySound[b.SoundURL] = b.ID
	}

	answer := func(id uint64) models.Verdict {
		rec := s.do(http.MethodPost, base+"/answer", `{"bird_id": `+strconv.FormatUint(id, 10)+`}`, cookie)
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
		var v models.Verdict
		s.decode(rec, &v)
		return v
	}

	for i := 0; !round.Complete; i++ {
		s.Require().Less(i, 100, "game did not finish")
		target, ok := bySound[round.SoundURL]
		s.Require().True(ok, "round sound %q", round.SoundURL)
		if i == 0 {
			for _, c := range round.Choices {
				if c.ID != target {
					s.False(answer(c.ID).Correct)
					break
				}
			}
		}
		s.True(answer(target).Correct)

		rec = s.do(http.MethodGet, base, "", cookie)
		s.Require().Equal(http.StatusOK, rec.Code)
		var answered models.Round
		s.decode(rec, &answered)
		s.Require().NotNil(answered.CorrectBirdID)
		s.Equal(target, *answered.CorrectBirdID)

		rec = s.do(http.MethodPost, base+"/next", "", cookie)
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
		round = models.Round{}
		s.decode(rec, &round)
	}

	s.Require().NotNil(round.Result)
	s.Equal(100, round.PercentComplete)
	s.Len(round.Result.Gains.NewlyLearned, 4)

	rec = s.do(http.MethodPost, base+"/next", "", cookie)
	s.Equal(http.StatusConflict, rec.Code)

	rec = s.do(http.MethodGet, "/api/stats", "", cookie)
	s.Require().Equal(http.StatusOK, rec.Code)
	var summary struct {
		XP           uint32 `json:"xp"`
		BirdsLearned uint32 `json:"birds_learned"`
	}
	s.decode(rec, &summary)
	s.Equal(uint32(4), summary.BirdsLearned)
	s.GreaterOrEqual(summary.XP, uint32(4*10+4*3))

	other := s.createProfile("kite")
	rec = s.do(http.MethodGet, base, "", other)
	s.Equal(http.StatusNotFound, rec.Code, "sessions are private to a profile")
}

func (s *APITestSuite) TestAnswerKeepsLargeBirdIDs() {
	cookie := s.createProfile("heron")
	rec := s.do(http.MethodPost, "/api/play?pack="+strconv.FormatUint(s.packID, 10), "", cookie)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var round models.Round
	s.decode(rec, &round)

	rec = s.do(http.MethodPost, "/api/play/"+round.SessionID+"/answer", `{"bird_id": 18446744073709551615}`, cookie)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "not one of this round's choices")
}

func (s *APITestSuite) TestStatsSchema() {
	rec := s.do(http.MethodGet, "/api/stats/schema", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var schema struct {
		Properties map[string]struct {
			Type  string `json:"type"`
			Items *struct {
				Type   string `json:"type"`
				Format string `json:"format"`
			} `json:"items"`
		} `json:"properties"`
	}
	s.decode(rec, &schema)
	days, ok := schema.Properties["daily_packs_completed"]
	s.Require().True(ok)
	s.Equal("array", days.Type)
	s.Require().NotNil(days.Items)
	s.Equal("string", days.Items.Type)
	s.Equal("date", days.Items.Format)
	s.Contains(schema.Properties, "bird_stats")
}

func (s *APITestSuite) TestUnknownRoute() {
	rec := s.do(http.MethodGet, "/api/nothing-here", "")
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("application/json", rec.Header().Get("Content-Type"))
}

func TestRecoveryMiddleware(t *testing.T) {
	h := loggingMiddleware(recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", errorCode(t, rec))
}

func TestRateLimit(t *testing.T) {
	srv := &Server{RateLimitPerMinute: 2, Clock: clock.Fixed(apiDay)}
	h := srv.Routes()

	codes := make([]int, 0, 3)
	for range 3 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats/schema", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "health checks are not rate limited")
}

func TestRequestValue(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
		err  bool
	}{
		{name: "string", body: `{"bird_id": " 42 "}`, want: "42"},
		{name: "number", body: `{"bird_id": 42}`, want: "42"},
		{name: "above 2^53", body: `{"bird_id": 9007199254740993}`, want: "9007199254740993"},
		{name: "max uint64", body: `{"bird_id": 18446744073709551615}`, want: "18446744073709551615"},
		{name: "missing", body: `{}`, want: ""},
		{name: "empty body", body: ``, want: ""},
		{name: "object", body: `{"bird_id": {}}`, err: true},
		{name: "broken", body: `{"bird_id": `, err: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			got, err := requestValue(req, "bird_id")
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
