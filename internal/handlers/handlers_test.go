package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/learnflow-api/internal/auth"
	"github.com/yukikurage/learnflow-api/internal/constants"
	"github.com/yukikurage/learnflow-api/internal/dto"
	apierrors "github.com/yukikurage/learnflow-api/internal/errors"
	"github.com/yukikurage/learnflow-api/internal/mailer"
	"github.com/yukikurage/learnflow-api/internal/repository"
	"github.com/yukikurage/learnflow-api/internal/services"
	"github.com/yukikurage/learnflow-api/internal/testutil"
	"gorm.io/gorm"
)

const strongPassword = "Sup3r$ecret"

// HandlersTestSuite drives the full v1 router against an in-memory database
type HandlersTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
	ai     *httptest.Server
}

func (suite *HandlersTestSuite) SetupTest() {
	suite.db = testutil.NewDB(suite.T())

	// Fake OpenAI endpoint returning three milestones
	suite.ai = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"chatcmpl-1","object":"chat.completion","choices":[{"index":0,"finish_reason":"stop",`+
			`"message":{"role":"assistant","content":"{\"milestones\":[\"Read the tour\",\"Write a CLI\",\"Ship a service\"]}"}}]}`)
	}))
	suite.T().Cleanup(suite.ai.Close)
	aiConfig := openai.DefaultConfig("test-key")
	aiConfig.BaseURL = suite.ai.URL + "/v1"

	userRepo := repository.NewUserRepository(suite.db)
	goalRepo := repository.NewGoalRepository(suite.db)
	resourceRepo := repository.NewResourceRepository(suite.db)
	activityRepo := repository.NewActivityRepository(suite.db)
	notificationRepo := repository.NewNotificationRepository(suite.db)

	tokens := auth.NewTokenManager("test-secret", "learnflow-test", time.Hour)
	authService := services.NewAuthService(userRepo, repository.NewSessionRepository(suite.db), tokens, auth.NewMemoryDenylist(), 24*time.Hour)
	activityService := services.NewActivityService(activityRepo)
	notificationService := services.NewNotificationService(notificationRepo, goalRepo, resourceRepo, activityRepo, userRepo)
	goalService := services.NewGoalService(goalRepo, resourceRepo, activityService, notificationService, services.NewAIServiceWithConfig(aiConfig))
	resourceService := services.NewResourceService(resourceRepo, goalRepo, activityService, notificationService, suite.T().TempDir())
	reminderService := services.NewReminderService(repository.NewReminderRepository(suite.db), goalRepo, userRepo, notificationService, &mailer.Recorder{})
	analyticsService := services.NewAnalyticsService(userRepo, goalRepo, resourceRepo, activityRepo)

	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.router.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	RegisterRoutes(suite.router.Group("/api/v1"), Handlers{
		Auth:      NewAuthHandler(authService, analyticsService),
		Goal:      NewGoalHandler(goalService),
		Resource:  NewResourceHandler(resourceService),
		Activity:  NewActivityHandler(activityService),
		Reminder:  NewReminderHandler(reminderService, notificationService),
		Analytics: NewAnalyticsHandler(analyticsService, services.NewReportService(analyticsService)),
	}, authService)
}

func (suite *HandlersTestSuite) request(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlersTestSuite) decode(w *httptest.ResponseRecorder, v interface{}) {
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (suite *HandlersTestSuite) register(email string) dto.AuthResponse {
	w := suite.request(http.MethodPost, "/auth/register", "", dto.RegisterRequest{
		Name:            "Ada",
		Email:           email,
		Password:        strongPassword,
		ConfirmPassword: strongPassword,
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var resp dto.AuthResponse
	suite.decode(w, &resp)
	return resp
}

func (suite *HandlersTestSuite) createGoal(token, title string, milestones ...string) dto.GoalDTO {
	w := suite.request(http.MethodPost, "/goals", token, dto.CreateGoalRequest{Title: title, Milestones: milestones})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var goal dto.GoalDTO
	suite.decode(w, &goal)
	return goal
}

func (suite *HandlersTestSuite) errorCode(w *httptest.ResponseRecorder) string {
	var apiErr apierrors.APIError
	suite.decode(w, &apiErr)
	return apiErr.Code
}

func (suite *HandlersTestSuite) TestRegisterAndMe() {
	session := suite.register("ada@example.com")
	suite.NotEmpty(session.AccessToken)
	suite.NotEmpty(session.RefreshToken)
	suite.Equal("Bearer", session.TokenType)

	w := suite.request(http.MethodGet, "/auth/me", session.AccessToken, nil)
	suite.Equal(http.StatusOK, w.Code)
	var me dto.UserDTO
	suite.decode(w, &me)
	suite.Equal("ada@example.com", me.Email)
	suite.True(me.Preferences.InAppNotifications)
}

func (suite *HandlersTestSuite) TestRegisterValidation() {
	w := suite.request(http.MethodPost, "/auth/register", "", dto.RegisterRequest{
		Name: "Ada", Email: "ada@example.com", Password: "password", ConfirmPassword: "password",
	})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal(apierrors.ErrCodeWeakPassword, suite.errorCode(w))

	suite.register("ada@example.com")
	w = suite.request(http.MethodPost, "/auth/register", "", dto.RegisterRequest{
		Name: "Ada", Email: "ADA@example.com", Password: strongPassword, ConfirmPassword: strongPassword,
	})
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.request(http.MethodPost, "/auth/register", "", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestLoginErrors() {
	suite.register("ada@example.com")

	w := suite.request(http.MethodPost, "/auth/login", "", dto.LoginRequest{Email: "ada@example.com", Password: "Wr0ng$pass"})
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal(apierrors.ErrCodeInvalidCredentials, suite.errorCode(w))

	w = suite.request(http.MethodPost, "/auth/login", "", dto.LoginRequest{Email: "nobody@example.com", Password: strongPassword})
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestRememberMeRefreshUsesSessionCookie() {
	suite.register("ada@example.com")

	w := suite.request(http.MethodPost, "/auth/login", "", dto.LoginRequest{
		Email: "ada@example.com", Password: strongPassword, RememberMe: true,
	})
	suite.Require().Equal(http.StatusOK, w.Code)
	var login dto.AuthResponse
	suite.decode(w, &login)
	cookies := w.Result().Cookies()
	suite.Require().NotEmpty(cookies)

	// refresh with an empty body and only the session cookie
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var refreshed dto.AuthResponse
	suite.decode(w, &refreshed)
	suite.NotEqual(login.RefreshToken, refreshed.RefreshToken)

	// the rotated-out token is no longer accepted
	w = suite.request(http.MethodPost, "/auth/refresh", "", dto.RefreshRequest{RefreshToken: login.RefreshToken})
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal(apierrors.ErrCodeSessionExpired, suite.errorCode(w))

	w = suite.request(http.MethodPost, "/auth/refresh", "", dto.RefreshRequest{RefreshToken: refreshed.RefreshToken})
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlersTestSuite) TestLogoutRevokesAccessToken() {
	session := suite.register("ada@example.com")

	w := suite.request(http.MethodPost, "/auth/logout", session.AccessToken, nil)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.request(http.MethodGet, "/auth/me", session.AccessToken, nil)
	suite.Equal(http.StatusUnauthorized, w.Code)

	w = suite.request(http.MethodPost, "/auth/refresh", "", dto.RefreshRequest{RefreshToken: session.RefreshToken})
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlersTestSuite) TestUpdateProfileAndStats() {
	session := suite.register("ada@example.com")
	suite.register("grace@example.com")

	name, tz := "Ada L.", "Asia/Tokyo"
	w := suite.request(http.MethodPut, "/auth/me", session.AccessToken, dto.UpdateProfileRequest{Name: &name, Timezone: &tz})
	suite.Equal(http.StatusOK, w.Code)
	var me dto.UserDTO
	suite.decode(w, &me)
	suite.Equal("Ada L.", me.Name)
	suite.Equal("Asia/Tokyo", me.Timezone)

	taken := "grace@example.com"
	w = suite.request(http.MethodPut, "/auth/me", session.AccessToken, dto.UpdateProfileRequest{Email: &taken})
	suite.Equal(http.StatusConflict, w.Code)

	suite.createGoal(session.AccessToken, "Learn Go")
	w = suite.request(http.MethodGet, "/auth/stats", session.AccessToken, nil)
	suite.Equal(http.StatusOK, w.Code)
	var stats services.UserStats
	suite.decode(w, &stats)
	suite.Equal(1, stats.TotalGoals)
}

func (suite *HandlersTestSuite) TestRequiresAuthentication() {
	for _, path := range []string{"/goals", "/resources", "/activities", "/reminders", "/analytics/summary", "/reports/export"} {
		w := suite.request(http.MethodGet, path, "", nil)
		suite.Equal(http.StatusUnauthorized, w.Code, path)
	}
}

func (suite *HandlersTestSuite) TestGoalLifecycle() {
	token := suite.register("ada@example.com").AccessToken

	goal := suite.createGoal(token, "Learn Go", "Tour", "Concurrency")
	suite.Equal(0, goal.Progress)
	suite.Equal("general", goal.Category)
	suite.Equal("active", goal.Status)
	suite.Require().Len(goal.Milestones, 2)

	done := true
	path := fmt.Sprintf("/goals/%d/milestones/%d", goal.ID, goal.Milestones[0].ID)
	w := suite.request(http.MethodPut, path, token, dto.UpdateMilestoneRequest{IsCompleted: &done})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated dto.GoalDTO
	suite.decode(w, &updated)
	suite.Equal(50, updated.Progress)

	w = suite.request(http.MethodPut, fmt.Sprintf("/goals/%d", goal.ID), token, dto.UpdateGoalRequest{IsCompleted: &done})
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.decode(w, &updated)
	suite.Equal("completed", updated.Status)
	suite.NotNil(updated.CompletedAt)

	w = suite.request(http.MethodGet, "/goals?status=completed", token, nil)
	var list dto.GoalListResponse
	suite.decode(w, &list)
	suite.Equal(1, list.Total)

	w = suite.request(http.MethodGet, "/goals/categories", token, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "general")

	w = suite.request(http.MethodDelete, fmt.Sprintf("/goals/%d", goal.ID), token, nil)
	suite.Equal(http.StatusOK, w.Code)
	w = suite.request(http.MethodGet, fmt.Sprintf("/goals/%d", goal.ID), token, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestGoalValidation() {
	token := suite.register("ada@example.com").AccessToken

	w := suite.request(http.MethodPost, "/goals", token, dto.CreateGoalRequest{Title: "  "})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, "/goals", token, dto.CreateGoalRequest{Title: "Learn Go", Priority: "urgent"})
	suite.Equal(http.StatusBadRequest, w.Code)

	bad := "next tuesday"
	w = suite.request(http.MethodPost, "/goals", token, dto.CreateGoalRequest{Title: "Learn Go", TargetDate: &bad})
	suite.Equal(http.StatusBadRequest, w.Code)

	date := "2030-01-31"
	w = suite.request(http.MethodPost, "/goals", token, dto.CreateGoalRequest{Title: "Learn Go", TargetDate: &date})
	suite.Require().Equal(http.StatusCreated, w.Code)
	var goal dto.GoalDTO
	suite.decode(w, &goal)
	suite.Require().NotNil(goal.TargetDate)
	suite.Equal(time.Date(2030, 1, 31, 0, 0, 0, 0, time.UTC), goal.TargetDate.UTC())

	w = suite.request(http.MethodGet, "/goals/abc", token, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestGoalOfAnotherUserIsNotFound() {
	owner := suite.register("ada@example.com").AccessToken
	other := suite.register("grace@example.com").AccessToken
	goal := suite.createGoal(owner, "Learn Go", "Tour")

	paths := []struct{ method, path string }{
		{http.MethodGet, fmt.Sprintf("/goals/%d", goal.ID)},
		{http.MethodPut, fmt.Sprintf("/goals/%d", goal.ID)},
		{http.MethodDelete, fmt.Sprintf("/goals/%d", goal.ID)},
		{http.MethodPost, fmt.Sprintf("/goals/%d/milestones", goal.ID)},
		{http.MethodDelete, fmt.Sprintf("/goals/%d/milestones/%d", goal.ID, goal.Milestones[0].ID)},
	}
	for _, p := range paths {
		w := suite.request(p.method, p.path, other, map[string]string{"title": "x"})
		suite.Equal(http.StatusNotFound, w.Code, p.method+" "+p.path)
	}

	w := suite.request(http.MethodGet, fmt.Sprintf("/goals/%d", goal.ID), owner, nil)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlersTestSuite) TestStudySessionAndActivities() {
	token := suite.register("ada@example.com").AccessToken
	goal := suite.createGoal(token, "Learn Go")

	w := suite.request(http.MethodPost, fmt.Sprintf("/goals/%d/progress", goal.ID), token, dto.StudySessionRequest{Minutes: 45})
	suite.Equal(http.StatusCreated, w.Code)

	w = suite.request(http.MethodPost, fmt.Sprintf("/goals/%d/progress", goal.ID), token, dto.StudySessionRequest{Minutes: 0})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodGet, "/activities?type=study_session&limit=10", token, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var page dto.ActivityListResponse
	suite.decode(w, &page)
	suite.Require().Len(page.Activities, 1)
	suite.Equal(45, page.Activities[0].Duration)
	suite.Equal(int64(1), page.Pagination.Total)
	suite.Equal(10, page.Pagination.Limit)

	w = suite.request(http.MethodGet, "/activities?goal_id=abc", token, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestSuggestMilestones() {
	token := suite.register("ada@example.com").AccessToken

	w := suite.request(http.MethodPost, "/goals/suggest-milestones", token, dto.SuggestMilestonesRequest{Title: "Learn Go"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Milestones []string `json:"milestones"`
	}
	suite.decode(w, &resp)
	suite.Equal([]string{"Read the tour", "Write a CLI", "Ship a service"}, resp.Milestones)

	w = suite.request(http.MethodPost, "/goals/suggest-milestones", token, dto.SuggestMilestonesRequest{})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestResources() {
	token := suite.register("ada@example.com").AccessToken
	goal := suite.createGoal(token, "Learn Go")

	w := suite.request(http.MethodPost, "/resources", token, dto.CreateResourceRequest{
		Title: "Go by Example", Type: "link", URL: "https://gobyexample.com", GoalID: &goal.ID, Tags: []string{"go"},
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var link dto.ResourceDTO
	suite.decode(w, &link)
	suite.Equal("https://gobyexample.com", link.URL)
	suite.Nil(link.File)

	w = suite.request(http.MethodPost, "/resources", token, dto.CreateResourceRequest{Title: "Bad", Type: "link", URL: "ftp://x"})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, "/resources", token, dto.CreateResourceRequest{Title: "Bad", Type: "video"})
	suite.Equal(http.StatusBadRequest, w.Code)

	// switching to a note only needs the new content
	text := "channels are typed pipes"
	w = suite.request(http.MethodPut, fmt.Sprintf("/resources/%d", link.ID), token, dto.UpdateResourceRequest{Content: &text})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var note dto.ResourceDTO
	suite.decode(w, &note)
	suite.Equal("note", string(note.Type))
	suite.Equal(text, note.Content)
	suite.Empty(note.URL)

	w = suite.request(http.MethodGet, "/resources?tag=go&type=note", token, nil)
	var list dto.ResourceListResponse
	suite.decode(w, &list)
	suite.Equal(1, list.Total)

	other := suite.register("grace@example.com").AccessToken
	w = suite.request(http.MethodGet, fmt.Sprintf("/resources/%d", link.ID), other, nil)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.request(http.MethodDelete, fmt.Sprintf("/resources/%d", link.ID), token, nil)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlersTestSuite) upload(token, fileName string, content []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", fileName)
	suite.Require().NoError(err)
	_, err = part.Write(content)
	suite.Require().NoError(err)
	suite.Require().NoError(mw.WriteField("title", "Cheat sheet"))
	suite.Require().NoError(mw.WriteField("tags", "go,pdf"))
	suite.Require().NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resources/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlersTestSuite) TestUploadResource() {
	token := suite.register("ada@example.com").AccessToken

	w := suite.upload(token, "cheat sheet.pdf", []byte("%PDF-1.4 fake"))
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var resource dto.ResourceDTO
	suite.decode(w, &resource)
	suite.Equal("file", string(resource.Type))
	suite.Require().NotNil(resource.File)
	suite.Equal(int64(13), resource.File.Size)
	suite.Equal([]string{"go", "pdf"}, resource.Tags)

	w = suite.upload(token, "payload.exe", []byte("MZ"))
	suite.Equal(http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resources/upload", strings.NewReader(""))
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestRemindersAndNotifications() {
	token := suite.register("ada@example.com").AccessToken

	next := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	w := suite.request(http.MethodPost, "/reminders", token, dto.CreateReminderRequest{Title: "Study", Type: "daily", NextReminder: next})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var reminder struct {
		ID           uint64 `json:"id"`
		IsActive     bool   `json:"is_active"`
		EmailEnabled bool   `json:"email_enabled"`
		Message      string `json:"message"`
	}
	suite.decode(w, &reminder)
	suite.True(reminder.IsActive)
	suite.True(reminder.EmailEnabled)
	suite.Equal(constants.DefaultReminderMessage, reminder.Message)

	past := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	w = suite.request(http.MethodPost, "/reminders", token, dto.CreateReminderRequest{Title: "Study", NextReminder: past})
	suite.Equal(http.StatusBadRequest, w.Code)
	w = suite.request(http.MethodPost, "/reminders", token, dto.CreateReminderRequest{NextReminder: next})
	suite.Equal(http.StatusBadRequest, w.Code)

	inactive := false
	w = suite.request(http.MethodPut, fmt.Sprintf("/reminders/%d", reminder.ID), token, dto.UpdateReminderRequest{IsActive: &inactive})
	suite.Equal(http.StatusOK, w.Code)
	suite.decode(w, &reminder)
	suite.False(reminder.IsActive)

	// completing a goal yields an achievement notification
	goal := suite.createGoal(token, "Learn Go")
	done := true
	suite.request(http.MethodPut, fmt.Sprintf("/goals/%d", goal.ID), token, dto.UpdateGoalRequest{IsCompleted: &done})

	w = suite.request(http.MethodGet, "/reminders/notifications", token, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var inbox dto.NotificationListResponse
	suite.decode(w, &inbox)
	suite.Require().NotEmpty(inbox.Notifications)
	suite.Equal(int64(len(inbox.Notifications)), inbox.UnreadCount)

	w = suite.request(http.MethodPut, fmt.Sprintf("/reminders/notifications/%d", inbox.Notifications[0].ID), token, nil)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.request(http.MethodPut, "/reminders/notifications/bulk", token, nil)
	suite.Equal(http.StatusOK, w.Code)
	w = suite.request(http.MethodGet, "/reminders/notifications", token, nil)
	suite.decode(w, &inbox)
	suite.Zero(inbox.UnreadCount)

	w = suite.request(http.MethodDelete, "/reminders/notifications/bulk", token, nil)
	suite.Equal(http.StatusOK, w.Code)
	w = suite.request(http.MethodGet, "/reminders/notifications", token, nil)
	suite.decode(w, &inbox)
	suite.Empty(inbox.Notifications)

	w = suite.request(http.MethodDelete, fmt.Sprintf("/reminders/%d", reminder.ID), token, nil)
	suite.Equal(http.StatusOK, w.Code)
	w = suite.request(http.MethodGet, fmt.Sprintf("/reminders/%d", reminder.ID), token, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestAnalytics() {
	token := suite.register("ada@example.com").AccessToken
	suite.createGoal(token, "Learn Go")

	w := suite.request(http.MethodGet, "/analytics/summary", token, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var summary map[string]interface{}
	suite.decode(w, &summary)
	suite.Equal(float64(1), summary["total_goals"])
	suite.Equal(float64(1), summary["active_goals"])

	w = suite.request(http.MethodGet, "/analytics", token, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var overview services.Overview
	suite.decode(w, &overview)
	suite.Equal(1, overview.GoalsByCategory["general"])
	suite.Len(overview.DailyStudy, 30)
	suite.Equal(100, overview.GoalTrend)
}

func (suite *HandlersTestSuite) TestReportDownloads() {
	token := suite.register("ada@example.com").AccessToken
	suite.createGoal(token, "Learn Go")

	w := suite.request(http.MethodGet, "/reports/analytics?period=week&format=csv", token, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Equal("text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	suite.Contains(w.Header().Get("Content-Disposition"), "attachment; filename=\"learnflow-comprehensive-report-week-")
	suite.Contains(w.Body.String(), "Total Goals")

	w = suite.request(http.MethodGet, "/reports/analytics?period=decade", token, nil)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodGet, "/reports/export?format=json&type=goals", token, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Header().Get("Content-Disposition"), ".json")

	w = suite.request(http.MethodGet, "/reports/export?format=csv&type=all", token, nil)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodGet, "/reports/export?format=html", token, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

// TestHandlersTestSuite runs the test suite
func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		db     Pinger
		status int
	}{
		{"database up", fakePinger{}, http.StatusOK},
		{"database down", fakePinger{err: errors.New("connection refused")}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", NewHealthHandler(tt.db).Health)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
