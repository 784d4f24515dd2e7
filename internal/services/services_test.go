package services

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/learnflow-api/internal/auth"
	apierrors "github.com/yukikurage/learnflow-api/internal/errors"
	"github.com/yukikurage/learnflow-api/internal/mailer"
	"github.com/yukikurage/learnflow-api/internal/models"
	"github.com/yukikurage/learnflow-api/internal/report"
	"github.com/yukikurage/learnflow-api/internal/repository"
	"github.com/yukikurage/learnflow-api/internal/testutil"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	testSecret = "test-secret"
	testIssuer = "learnflow-test"
	// satisfies every rule of the strength checklist
	strongPassword = "Sup3r$ecret"
)

// ServicesTestSuite wires every service against one in-memory database.
type ServicesTestSuite struct {
	suite.Suite
	db     *gorm.DB
	now    time.Time
	mail   *mailer.Recorder
	tokens *auth.TokenManager

	auth          *AuthService
	activities    *ActivityService
	notifications *NotificationService
	goals         *GoalService
	resources     *ResourceService
	reminders     *ReminderService
	analytics     *AnalyticsService
	reports       *ReportService
}

func (suite *ServicesTestSuite) SetupTest() {
	suite.db = testutil.NewDB(suite.T())
	suite.now = time.Now().UTC().Truncate(time.Second)
	suite.mail = &mailer.Recorder{}
	clock := func() time.Time { return suite.now }

	userRepo := repository.NewUserRepository(suite.db)
	goalRepo := repository.NewGoalRepository(suite.db)
	resourceRepo := repository.NewResourceRepository(suite.db)
	activityRepo := repository.NewActivityRepository(suite.db)
	notificationRepo := repository.NewNotificationRepository(suite.db)
	reminderRepo := repository.NewReminderRepository(suite.db)

	suite.tokens = auth.NewTokenManager(testSecret, testIssuer, time.Hour).WithClock(clock)
	suite.auth = NewAuthService(userRepo, repository.NewSessionRepository(suite.db), suite.tokens, auth.NewMemoryDenylist(), 24*time.Hour)
	suite.activities = NewActivityService(activityRepo)
	suite.notifications = NewNotificationService(notificationRepo, goalRepo, resourceRepo, activityRepo, userRepo)
	suite.goals = NewGoalService(goalRepo, resourceRepo, suite.activities, suite.notifications, nil)
	suite.resources = NewResourceService(resourceRepo, goalRepo, suite.activities, suite.notifications, suite.T().TempDir())
	suite.reminders = NewReminderService(reminderRepo, goalRepo, userRepo, suite.notifications, suite.mail)
	suite.analytics = NewAnalyticsService(userRepo, goalRepo, resourceRepo, activityRepo)
	suite.reports = NewReportService(suite.analytics)

	suite.auth.now = clock
	suite.activities.now = clock
	suite.notifications.now = clock
	suite.goals.now = clock
	suite.resources.now = clock
	suite.reminders.now = clock
	suite.analytics.now = clock
}

func (suite *ServicesTestSuite) createUser(email string) *models.User {
	user := testutil.CreateUser(suite.T(), suite.db, email, strongPassword)
	user.Preferences = datatypes.NewJSONType(models.DefaultPreferences())
	suite.Require().NoError(suite.db.Save(user).Error)
	return user
}

func (suite *ServicesTestSuite) createGoal(userID uint64, title string, milestones ...string) *models.Goal {
	goal, err := suite.goals.CreateGoal(CreateGoalInput{UserID: userID, Title: title, Milestones: milestones})
	suite.Require().NoError(err)
	return goal
}

func (suite *ServicesTestSuite) countActivities(userID uint64, t models.ActivityType) int {
	activities, _, err := suite.activities.List(ListActivitiesInput{UserID: userID, Type: &t})
	suite.Require().NoError(err)
	return len(activities)
}

func (suite *ServicesTestSuite) notificationTitles(userID uint64) []string {
	list, err := suite.notifications.List(userID)
	suite.Require().NoError(err)
	titles := make([]string, len(list.Notifications))
	for i, n := range list.Notifications {
		titles[i] = n.Title
	}
	return titles
}

func boolPtr(b bool) *bool { return &b }

// Auth

func (suite *ServicesTestSuite) TestRegister_LogsIn() {
	result, err := suite.auth.Register(RegisterInput{
		Name:            "Ada",
		Email:           " Ada@Example.com ",
		Password:        strongPassword,
		ConfirmPassword: strongPassword,
	})
	suite.Require().NoError(err)
	suite.Equal("ada@example.com", result.User.Email)
	suite.Equal("UTC", result.User.Timezone)
	suite.NotEmpty(result.Tokens.AccessToken)
	suite.NotEmpty(result.Tokens.RefreshToken)
	suite.Equal("Bearer", result.Tokens.TokenType)

	claims, err := suite.auth.Authenticate(context.Background(), result.Tokens.AccessToken)
	suite.Require().NoError(err)
	suite.Equal(result.User.ID, claims.UserID)
}

func (suite *ServicesTestSuite) TestRegister_DuplicateEmailConflicts() {
	input := RegisterInput{Name: "Ada", Email: "ada@example.com", Password: strongPassword, ConfirmPassword: strongPassword}
	_, err := suite.auth.Register(input)
	suite.Require().NoError(err)

	input.Email = "ADA@example.com"
	_, err = suite.auth.Register(input)
	suite.ErrorIs(err, ErrEmailTaken)
	suite.True(apierrors.IsKind(err, apierrors.KindConflict))
}

// staleEmailLookup never finds an existing user, as when two registrations
// for one email both pass the lookup before either is stored.
type staleEmailLookup struct {
	repository.UserRepository
}

func (staleEmailLookup) FindByEmail(string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (suite *ServicesTestSuite) TestRegister_RacedDuplicateConflicts() {
	svc := NewAuthService(staleEmailLookup{repository.NewUserRepository(suite.db)}, repository.NewSessionRepository(suite.db), suite.tokens, auth.NewMemoryDenylist(), 24*time.Hour)

	input := RegisterInput{Name: "Ada", Email: "ada@example.com", Password: strongPassword, ConfirmPassword: strongPassword}
	_, err := svc.Register(input)
	suite.Require().NoError(err)

	_, err = svc.Register(input)
	suite.ErrorIs(err, ErrEmailTaken)
	suite.True(apierrors.IsKind(err, apierrors.KindConflict))

	bob, err := svc.Register(RegisterInput{Name: "Bob", Email: "bob@example.com", Password: strongPassword, ConfirmPassword: strongPassword})
	suite.Require().NoError(err)
	taken := "ada@example.com"
	_, err = svc.UpdateProfile(bob.User.ID, UpdateProfileInput{Email: &taken})
	suite.ErrorIs(err, ErrEmailTaken)
}

func (suite *ServicesTestSuite) TestRegister_Validation() {
	tooLong := "Aa1!" + strings.Repeat("x", 80)
	cases := []struct {
		name  string
		input RegisterInput
		want  error
	}{
		{"missing name", RegisterInput{Email: "a@b.co", Password: strongPassword, ConfirmPassword: strongPassword}, ErrMissingFields},
		{"bad email", RegisterInput{Name: "A", Email: "not-an-email", Password: strongPassword, ConfirmPassword: strongPassword}, ErrInvalidEmail},
		{"mismatch", RegisterInput{Name: "A", Email: "a@b.co", Password: strongPassword, ConfirmPassword: strongPassword + "x"}, ErrPasswordMismatch},
		{"weak", RegisterInput{Name: "A", Email: "a@b.co", Password: "password", ConfirmPassword: "password"}, ErrWeakPassword},
		{"too long for bcrypt", RegisterInput{Name: "A", Email: "a@b.co", Password: tooLong, ConfirmPassword: tooLong}, ErrPasswordTooLong},
	}
	for _, tc := range cases {
		suite.Run(tc.name, func() {
			_, err := suite.auth.Register(tc.input)
			suite.ErrorIs(err, tc.want)
			suite.True(apierrors.IsKind(err, apierrors.KindValidation))
		})
	}
}

func (suite *ServicesTestSuite) TestLogin_WrongPasswordCreatesNoSession() {
	suite.createUser("ada@example.com")

	_, err := suite.auth.Login(LoginInput{Email: "ada@example.com", Password: "Wr0ng$pass"})
	suite.ErrorIs(err, ErrIncorrectPassword)
	suite.True(apierrors.IsKind(err, apierrors.KindAuth))

	var sessions int64
	suite.Require().NoError(suite.db.Model(&models.RefreshSession{}).Count(&sessions).Error)
	suite.Zero(sessions)
}

func (suite *ServicesTestSuite) TestLogin_UnknownEmail() {
	_, err := suite.auth.Login(LoginInput{Email: "nobody@example.com", Password: strongPassword})
	suite.ErrorIs(err, ErrUserNotFound)
	suite.True(apierrors.IsKind(err, apierrors.KindNotFound))
}

func (suite *ServicesTestSuite) TestRefresh_RotatesToken() {
	suite.createUser("ada@example.com")
	login, err := suite.auth.Login(LoginInput{Email: "ada@example.com", Password: strongPassword})
	suite.Require().NoError(err)

	refreshed, err := suite.auth.Refresh(login.Tokens.RefreshToken, "test")
	suite.Require().NoError(err)
	suite.NotEqual(login.Tokens.RefreshToken, refreshed.Tokens.RefreshToken)

	_, err = suite.auth.Refresh(login.Tokens.RefreshToken, "test")
	suite.ErrorIs(err, ErrInvalidRefreshToken)

	_, err = suite.auth.Refresh(refreshed.Tokens.RefreshToken, "test")
	suite.NoError(err)
}

// rendezvousSessions holds every FindByHash caller until all expected
// callers have loaded their session.
type rendezvousSessions struct {
	repository.SessionRepository
	arrived sync.WaitGroup
}

func (r *rendezvousSessions) FindByHash(hash string) (*models.RefreshSession, error) {
	session, err := r.SessionRepository.FindByHash(hash)
	r.arrived.Done()
	r.arrived.Wait()
	return session, err
}

func (suite *ServicesTestSuite) TestRefresh_ConcurrentUseIssuesOnePair() {
	suite.createUser("ada@example.com")
	login, err := suite.auth.Login(LoginInput{Email: "ada@example.com", Password: strongPassword})
	suite.Require().NoError(err)

	sessions := &rendezvousSessions{SessionRepository: repository.NewSessionRepository(suite.db)}
	sessions.arrived.Add(2)
	svc := NewAuthService(repository.NewUserRepository(suite.db), sessions, suite.tokens, auth.NewMemoryDenylist(), 24*time.Hour)
	svc.now = suite.auth.now

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := svc.Refresh(login.Tokens.RefreshToken, "test")
			errs <- err
		}()
	}

	var ok, rejected int
	for i := 0; i < 2; i++ {
		switch err := <-errs; {
		case err == nil:
			ok++
		case errors.Is(err, ErrInvalidRefreshToken):
			rejected++
		default:
			suite.Fail("unexpected refresh error", err.Error())
		}
	}
	suite.Equal(1, ok)
	suite.Equal(1, rejected)
}

func (suite *ServicesTestSuite) TestRefresh_ExpiredSession() {
	suite.createUser("ada@example.com")
	login, err := suite.auth.Login(LoginInput{Email: "ada@example.com", Password: strongPassword})
	suite.Require().NoError(err)

	suite.now = suite.now.Add(25 * time.Hour)
	_, err = suite.auth.Refresh(login.Tokens.RefreshToken, "test")
	suite.ErrorIs(err, ErrInvalidRefreshToken)
}

func (suite *ServicesTestSuite) TestAuthenticate_ExpiredToken() {
	user := suite.createUser("ada@example.com")
	past := suite.now.Add(-2 * time.Hour)
	token, _, err := suite.tokens.WithClock(func() time.Time { return past }).NewAccessToken(user.ID, user.Email)
	suite.Require().NoError(err)

	_, err = suite.auth.Authenticate(context.Background(), token)
	suite.ErrorIs(err, ErrSessionExpired)
}

func (suite *ServicesTestSuite) TestAuthenticate_ForeignSignature() {
	other := auth.NewTokenManager("another-secret", testIssuer, time.Hour)
	token, _, err := other.NewAccessToken(1, "ada@example.com")
	suite.Require().NoError(err)

	_, err = suite.auth.Authenticate(context.Background(), token)
	suite.ErrorIs(err, ErrNotAuthenticated)
}

func (suite *ServicesTestSuite) TestLogout_RevokesTokens() {
	suite.createUser("ada@example.com")
	login, err := suite.auth.Login(LoginInput{Email: "ada@example.com", Password: strongPassword})
	suite.Require().NoError(err)
	ctx := context.Background()

	claims, err := suite.auth.Authenticate(ctx, login.Tokens.AccessToken)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.auth.Logout(ctx, claims.UserID, claims))

	_, err = suite.auth.Authenticate(ctx, login.Tokens.AccessToken)
	suite.ErrorIs(err, ErrSessionExpired)
	_, err = suite.auth.Refresh(login.Tokens.RefreshToken, "")
	suite.ErrorIs(err, ErrInvalidRefreshToken)
}

func (suite *ServicesTestSuite) TestUpdateProfile() {
	ada := suite.createUser("ada@example.com")
	suite.createUser("bob@example.com")

	taken := "bob@example.com"
	_, err := suite.auth.UpdateProfile(ada.ID, UpdateProfileInput{Email: &taken})
	suite.ErrorIs(err, ErrEmailTaken)

	tz := "Mars/Olympus"
	_, err = suite.auth.UpdateProfile(ada.ID, UpdateProfileInput{Timezone: &tz})
	suite.ErrorIs(err, ErrUnknownTimezone)

	_, err = suite.auth.UpdateProfile(0, UpdateProfileInput{})
	suite.ErrorIs(err, ErrNotAuthenticated)

	name, tz := "Ada Lovelace", "Europe/London"
	updated, err := suite.auth.UpdateProfile(ada.ID, UpdateProfileInput{Name: &name, Timezone: &tz})
	suite.Require().NoError(err)
	suite.Equal("Ada Lovelace", updated.Name)
	suite.Equal("Europe/London", updated.Timezone)
	suite.Equal("ada@example.com", updated.Email)
}

// Goals and milestones

func (suite *ServicesTestSuite) TestGoalProgressFollowsMilestones() {
	user := suite.createUser("ada@example.com")
	goal := suite.createGoal(user.ID, "Learn Go", "Tour", "Project")
	suite.Equal(0, goal.Progress)
	suite.Equal(1, suite.countActivities(user.ID, models.ActivityGoalCreated))

	goal, err := suite.goals.UpdateMilestone(user.ID, goal.ID, goal.Milestones[0].ID, UpdateMilestoneInput{IsCompleted: boolPtr(true)})
	suite.Require().NoError(err)
	suite.Equal(50, goal.Progress)

	goal, err = suite.goals.UpdateMilestone(user.ID, goal.ID, goal.Milestones[1].ID, UpdateMilestoneInput{IsCompleted: boolPtr(true)})
	suite.Require().NoError(err)
	suite.Equal(100, goal.Progress)
	suite.Equal(2, suite.countActivities(user.ID, models.ActivityMilestoneCompleted))
	suite.Zero(suite.countActivities(user.ID, models.ActivityGoalCompleted))

	goal, err = suite.goals.UpdateGoal(user.ID, goal.ID, UpdateGoalInput{IsCompleted: boolPtr(true)})
	suite.Require().NoError(err)
	suite.True(goal.IsCompleted)
	suite.Require().NotNil(goal.CompletedAt)

	_, err = suite.goals.UpdateGoal(user.ID, goal.ID, UpdateGoalInput{IsCompleted: boolPtr(true)})
	suite.Require().NoError(err)
	suite.Equal(1, suite.countActivities(user.ID, models.ActivityGoalCompleted))
	suite.Contains(suite.notificationTitles(user.ID), "🎯 First Goal Complete!")
}

func (suite *ServicesTestSuite) TestReopenGoalLogsNothing() {
	user := suite.createUser("ada@example.com")
	goal := suite.createGoal(user.ID, "Learn Go")

	_, err := suite.goals.UpdateGoal(user.ID, goal.ID, UpdateGoalInput{IsCompleted: boolPtr(true)})
	suite.Require().NoError(err)
	reopened, err := suite.goals.UpdateGoal(user.ID, goal.ID, UpdateGoalInput{IsCompleted: boolPtr(false)})
	suite.Require().NoError(err)

	suite.False(reopened.IsCompleted)
	suite.Nil(reopened.CompletedAt)
	suite.Equal(1, suite.countActivities(user.ID, models.ActivityGoalCompleted))
}

func (suite *ServicesTestSuite) TestAchievementsSurviveClearedNotifications() {
	user := suite.createUser("ada@example.com")
	first := suite.createGoal(user.ID, "Learn Go")
	second := suite.createGoal(user.ID, "Learn Rust")

	_, err := suite.goals.UpdateGoal(user.ID, first.ID, UpdateGoalInput{IsCompleted: boolPtr(true)})
	suite.Require().NoError(err)
	suite.Contains(suite.notificationTitles(user.ID), "🎯 First Goal Complete!")

	_, err = suite.notifications.ClearAll(user.ID)
	suite.Require().NoError(err)

	_, err = suite.goals.UpdateGoal(user.ID, second.ID, UpdateGoalInput{IsCompleted: boolPtr(true)})
	suite.Require().NoError(err)
	suite.NotContains(suite.notificationTitles(user.ID), "🎯 First Goal Complete!")
}

func (suite *ServicesTestSuite) TestMilestoneUncompleteAppendsNothing() {
	user := suite.createUser("ada@example.com")
	goal := suite.createGoal(user.ID, "Learn Go", "Tour")
	msID := goal.Milestones[0].ID

	_, err := suite.goals.UpdateMilestone(user.ID, goal.ID, msID, UpdateMilestoneInput{IsCompleted: boolPtr(true)})
	suite.Require().NoError(err)
	goal, err = suite.goals.UpdateMilestone(user.ID, goal.ID, msID, UpdateMilestoneInput{IsCompleted: boolPtr(false)})
	suite.Require().NoError(err)

	suite.Equal(0, goal.Progress)
	suite.Equal(1, suite.countActivities(user.ID, models.ActivityMilestoneCompleted))
	suite.Contains(suite.notificationTitles(user.ID), "✅ Milestone Complete")
}

func (suite *ServicesTestSuite) TestAddAndDeleteMilestoneRecalculates() {
	user := suite.createUser("ada@example.com")
	goal := suite.createGoal(user.ID, "Learn Go", "Tour")
	_, err := suite.goals.UpdateMilestone(user.ID, goal.ID, goal.Milestones[0].ID, UpdateMilestoneInput{IsCompleted: boolPtr(true)})
	suite.Require().NoError(err)

	goal, err = suite.goals.AddMilestone(user.ID, goal.ID, "Project")
	suite.Require().NoError(err)
	suite.Equal(50, goal.Progress)
	suite.Require().Len(goal.Milestones, 2)
	suite.Equal(1, goal.Milestones[1].OrderIndex)

	goal, err = suite.goals.DeleteMilestone(user.ID, goal.ID, goal.Milestones[0].ID)
	suite.Require().NoError(err)
	suite.Equal(0, goal.Progress)

	_, err = suite.goals.AddMilestone(user.ID, goal.ID, "  ")
	suite.ErrorIs(err, ErrMilestoneTitle)
}

func (suite *ServicesTestSuite) TestGoalsAreScopedToOwner() {
	ada := suite.createUser("ada@example.com")
	bob := suite.createUser("bob@example.com")
	goal := suite.createGoal(ada.ID, "Learn Go")

	_, err := suite.goals.GetGoal(bob.ID, goal.ID)
	suite.ErrorIs(err, ErrGoalNotFound)
	suite.ErrorIs(suite.goals.DeleteGoal(bob.ID, goal.ID), ErrGoalNotFound)
	_, err = suite.goals.UpdateGoal(bob.ID, goal.ID, UpdateGoalInput{IsCompleted: boolPtr(true)})
	suite.ErrorIs(err, ErrGoalNotFound)
}

func (suite *ServicesTestSuite) TestDeleteGoalCascades() {
	ada := suite.createUser("ada@example.com")
	bob := suite.createUser("bob@example.com")
	goal := suite.createGoal(ada.ID, "Learn Go", "Tour")
	bobGoal := suite.createGoal(bob.ID, "Learn Rust", "Book")

	_, err := suite.resources.CreateResource(CreateResourceInput{
		UserID: ada.ID, GoalID: &goal.ID, Title: "Go docs",
		Content: models.LinkContent{URL: "https://go.dev/doc"},
	})
	suite.Require().NoError(err)
	_, err = suite.reminders.CreateReminder(CreateReminderInput{
		UserID: ada.ID, GoalID: &goal.ID, Title: "Study", Type: models.ReminderDaily,
		NextReminder: suite.now.Add(time.Hour), InAppEnabled: true,
	})
	suite.Require().NoError(err)
	_, err = suite.goals.LogStudySession(ada.ID, goal.ID, 30, "")
	suite.Require().NoError(err)

	suite.Require().NoError(suite.goals.DeleteGoal(ada.ID, goal.ID))

	for _, model := range []interface{}{&models.Resource{}, &models.Milestone{}, &models.Reminder{}} {
		var count int64
		suite.Require().NoError(suite.db.Model(model).Where("goal_id = ?", goal.ID).Count(&count).Error)
		suite.Zero(count)
	}
	var activities int64
	suite.Require().NoError(suite.db.Model(&models.Activity{}).Where("goal_id = ?", goal.ID).Count(&activities).Error)
	suite.Zero(activities)

	kept, err := suite.goals.GetGoal(bob.ID, bobGoal.ID)
	suite.Require().NoError(err)
	suite.Len(kept.Milestones, 1)
	suite.Equal(1, suite.countActivities(bob.ID, models.ActivityGoalCreated))
}

func (suite *ServicesTestSuite) TestLogStudySession() {
	user := suite.createUser("ada@example.com")
	goal := suite.createGoal(user.ID, "Learn Go")

	_, err := suite.goals.LogStudySession(user.ID, goal.ID, 0, "")
	suite.ErrorIs(err, ErrInvalidStudyLength)

	activity, err := suite.goals.LogStudySession(user.ID, goal.ID, 45, "chapter 3")
	suite.Require().NoError(err)
	suite.Equal(45, activity.Duration)
	suite.Equal("chapter 3", activity.Description)

	summary, err := suite.analytics.Summary(user.ID)
	suite.Require().NoError(err)
	suite.Equal(45, summary.StudyMinutes)
	suite.Equal(1, summary.Streak)
}

func (suite *ServicesTestSuite) TestListGoalsFilters() {
	user := suite.createUser("ada@example.com")
	_, err := suite.goals.CreateGoal(CreateGoalInput{UserID: user.ID, Title: "Learn Go", Category: "programming", Priority: models.PriorityHigh})
	suite.Require().NoError(err)
	_, err = suite.goals.CreateGoal(CreateGoalInput{UserID: user.ID, Title: "Spanish", Category: "languages"})
	suite.Require().NoError(err)

	_, err = suite.goals.CreateGoal(CreateGoalInput{UserID: user.ID, Title: "Bad", Priority: "urgent"})
	suite.ErrorIs(err, ErrInvalidPriority)

	goals, err := suite.goals.ListGoals(ListGoalsInput{UserID: user.ID, Search: "go"})
	suite.Require().NoError(err)
	suite.Require().Len(goals, 1)
	suite.Equal("Learn Go", goals[0].Title)

	categories, err := suite.goals.Categories(user.ID)
	suite.Require().NoError(err)
	suite.Equal([]string{"languages", "programming"}, categories)
}

// Resources

func (suite *ServicesTestSuite) TestCreateResourceValidation() {
	user := suite.createUser("ada@example.com")

	_, err := suite.resources.CreateResource(CreateResourceInput{UserID: user.ID, Title: "Docs", Content: models.LinkContent{URL: "ftp://example.com"}})
	suite.ErrorIs(err, ErrInvalidURL)
	_, err = suite.resources.CreateResource(CreateResourceInput{UserID: user.ID, Title: "Note", Content: models.NoteContent{Text: " "}})
	suite.ErrorIs(err, ErrResourceContent)
	_, err = suite.resources.CreateResource(CreateResourceInput{UserID: user.ID, Title: "Docs"})
	suite.ErrorIs(err, ErrInvalidResourceType)
	missing := uint64(999)
	_, err = suite.resources.CreateResource(CreateResourceInput{UserID: user.ID, Title: "Docs", GoalID: &missing, Content: models.NoteContent{Text: "x"}})
	suite.ErrorIs(err, ErrLinkedGoalNotFound)

	res, err := suite.resources.CreateResource(CreateResourceInput{UserID: user.ID, Title: "Notes", Content: models.NoteContent{Text: "# Heading"}})
	suite.Require().NoError(err)
	suite.Equal(models.ResourceTypeNote, res.Type)
	suite.Equal("general", res.Category)
	suite.Equal(1, suite.countActivities(user.ID, models.ActivityResourceAdded))
}

func (suite *ServicesTestSuite) TestUploadAndDeleteResource() {
	user := suite.createUser("ada@example.com")

	_, err := suite.resources.UploadResource(UploadInput{UserID: user.ID, FileName: "run.exe", Size: 3, File: strings.NewReader("abc")})
	suite.ErrorIs(err, ErrUploadExtension)

	res, err := suite.resources.UploadResource(UploadInput{
		UserID:   user.ID,
		FileName: "slides.pdf",
		Size:     5,
		MIMEType: "application/pdf",
		File:     strings.NewReader("%PDF-"),
	})
	suite.Require().NoError(err)
	suite.Equal(models.ResourceTypeFile, res.Type)
	suite.Equal("slides.pdf", res.Title)
	suite.Equal(int64(5), res.FileSize)

	data, err := os.ReadFile(res.FilePath)
	suite.Require().NoError(err)
	suite.Equal("%PDF-", string(data))
	suite.Equal(".pdf", filepath.Ext(res.FilePath))

	suite.Require().NoError(suite.resources.DeleteResource(user.ID, res.ID))
	_, err = os.Stat(res.FilePath)
	suite.True(os.IsNotExist(err))
	_, err = suite.resources.GetResource(user.ID, res.ID)
	suite.ErrorIs(err, ErrResourceNotFound)
}

func (suite *ServicesTestSuite) TestUpdateResourceSwitchesContent() {
	user := suite.createUser("ada@example.com")
	res, err := suite.resources.CreateResource(CreateResourceInput{UserID: user.ID, Title: "Docs", Content: models.LinkContent{URL: "https://go.dev"}})
	suite.Require().NoError(err)

	rating := 6
	_, err = suite.resources.UpdateResource(user.ID, res.ID, UpdateResourceInput{Rating: &rating})
	suite.ErrorIs(err, ErrInvalidRating)

	updated, err := suite.resources.UpdateResource(user.ID, res.ID, UpdateResourceInput{Content: models.NoteContent{Text: "summary"}})
	suite.Require().NoError(err)
	suite.Equal(models.ResourceTypeNote, updated.Type)
	suite.Empty(updated.URL)
	suite.Equal(models.NoteContent{Text: "summary"}, updated.Content())
}

func (suite *ServicesTestSuite) TestResourceAchievement() {
	user := suite.createUser("ada@example.com")
	for i := 0; i < 11; i++ {
		_, err := suite.resources.CreateResource(CreateResourceInput{UserID: user.ID, Title: "Note", Content: models.NoteContent{Text: "x"}})
		suite.Require().NoError(err)
	}

	count := 0
	for _, title := range suite.notificationTitles(user.ID) {
		if title == "📚 Resource Collector!" {
			count++
		}
	}
	suite.Equal(1, count)
}

// Notifications and reminders

func (suite *ServicesTestSuite) TestNotificationReadState() {
	user := suite.createUser("ada@example.com")
	for _, title := range []string{"one", "two"} {
		suite.Require().NoError(suite.notifications.Notify(&models.Notification{UserID: user.ID, Type: models.NotificationSystem, Title: title}))
	}

	list, err := suite.notifications.List(user.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(2), list.Unread)

	n, err := suite.notifications.MarkRead(user.ID, list.Notifications[0].ID)
	suite.Require().NoError(err)
	suite.True(n.IsRead)
	suite.NotNil(n.ReadAt)

	_, err = suite.notifications.MarkRead(user.ID, 9999)
	suite.ErrorIs(err, ErrNotificationNotFound)

	marked, err := suite.notifications.MarkAllRead(user.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(1), marked)

	cleared, err := suite.notifications.ClearAll(user.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(2), cleared)
}

func (suite *ServicesTestSuite) TestCreateReminderValidation() {
	user := suite.createUser("ada@example.com")

	_, err := suite.reminders.CreateReminder(CreateReminderInput{UserID: user.ID, NextReminder: suite.now.Add(time.Hour)})
	suite.ErrorIs(err, ErrReminderTitle)
	_, err = suite.reminders.CreateReminder(CreateReminderInput{UserID: user.ID, Title: "Study", NextReminder: suite.now.Add(-time.Minute)})
	suite.ErrorIs(err, ErrReminderInPast)
	_, err = suite.reminders.CreateReminder(CreateReminderInput{UserID: user.ID, Title: "Study", Type: "hourly", NextReminder: suite.now.Add(time.Hour)})
	suite.ErrorIs(err, ErrReminderType)

	reminder, err := suite.reminders.CreateReminder(CreateReminderInput{UserID: user.ID, Title: "Study", NextReminder: suite.now.Add(time.Hour)})
	suite.Require().NoError(err)
	suite.Equal(models.ReminderCustom, reminder.Type)
	suite.Equal("Time for your scheduled reminder!", reminder.Message)
	suite.True(reminder.IsActive)
}

func (suite *ServicesTestSuite) TestProcessDueReminders() {
	user := suite.createUser("ada@example.com")
	first := suite.now.Add(time.Hour)

	daily, err := suite.reminders.CreateReminder(CreateReminderInput{UserID: user.ID, Title: "Daily", Type: models.ReminderDaily, NextReminder: first, InAppEnabled: true, EmailEnabled: true})
	suite.Require().NoError(err)
	weekly, err := suite.reminders.CreateReminder(CreateReminderInput{UserID: user.ID, Title: "Weekly", Type: models.ReminderWeekly, NextReminder: first, InAppEnabled: true})
	suite.Require().NoError(err)
	custom, err := suite.reminders.CreateReminder(CreateReminderInput{UserID: user.ID, Title: "Once", Type: models.ReminderCustom, NextReminder: first, InAppEnabled: true})
	suite.Require().NoError(err)
	later, err := suite.reminders.CreateReminder(CreateReminderInput{UserID: user.ID, Title: "Later", Type: models.ReminderDaily, NextReminder: first.Add(48 * time.Hour), InAppEnabled: true})
	suite.Require().NoError(err)

	fired, err := suite.reminders.ProcessDueReminders(context.Background(), first.Add(time.Minute))
	suite.Require().NoError(err)
	suite.Equal(3, fired)

	reload := func(id uint64) *models.Reminder {
		r, err := suite.reminders.GetReminder(user.ID, id)
		suite.Require().NoError(err)
		return r
	}
	suite.True(reload(daily.ID).NextReminder.Equal(first.Add(24 * time.Hour)))
	suite.True(reload(weekly.ID).NextReminder.Equal(first.Add(7 * 24 * time.Hour)))
	suite.False(reload(custom.ID).IsActive)
	suite.Nil(reload(later.ID).LastFiredAt)

	titles := suite.notificationTitles(user.ID)
	suite.ElementsMatch([]string{"Daily", "Weekly", "Once"}, titles)

	sent := suite.mail.Sent()
	suite.Require().Len(sent, 1)
	suite.Equal("ada@example.com", sent[0].To)
	suite.Equal("Daily", sent[0].Subject)

	fired, err = suite.reminders.ProcessDueReminders(context.Background(), first.Add(2*time.Minute))
	suite.Require().NoError(err)
	suite.Zero(fired)
}

func (suite *ServicesTestSuite) TestGenerateDeadlineNotifications() {
	user := suite.createUser("ada@example.com")
	day := func(n int) *time.Time {
		t := time.Date(suite.now.Year(), suite.now.Month(), suite.now.Day(), 12, 0, 0, 0, time.UTC).AddDate(0, 0, n)
		return &t
	}
	for i, n := range []int{7, 1, 0, 3} {
		_, err := suite.goals.CreateGoal(CreateGoalInput{UserID: user.ID, Title: []string{"Week", "Tomorrow", "Today", "Later"}[i], TargetDate: day(n)})
		suite.Require().NoError(err)
	}

	sent, err := suite.reminders.GenerateDeadlineNotifications(context.Background(), suite.now)
	suite.Require().NoError(err)
	suite.Equal(4, sent)

	titles := suite.notificationTitles(user.ID)
	suite.Contains(titles, "⏰ Deadline Approaching")
	suite.Contains(titles, "🚨 Deadline Tomorrow")
	suite.Contains(titles, "⚠️ Deadline Today")
	suite.Contains(titles, "📚 Daily Study Reminder")

	sent, err = suite.reminders.GenerateDeadlineNotifications(context.Background(), suite.now)
	suite.Require().NoError(err)
	suite.Zero(sent)
}

// Analytics and reports

func (suite *ServicesTestSuite) TestReportWindowExcludesOlderGoals() {
	user := suite.createUser("ada@example.com")
	current := suite.now
	suite.now = current.AddDate(0, -2, 0)
	suite.createGoal(user.ID, "Old goal")
	suite.now = current
	suite.createGoal(user.ID, "New goal")

	doc, err := suite.reports.Generate(ReportInput{UserID: user.ID, Period: "month"})
	suite.Require().NoError(err)
	suite.Equal("application/json; charset=utf-8", doc.ContentType)
	suite.True(strings.HasPrefix(doc.FileName, "learnflow-comprehensive-report-month-"))

	var r report.Report
	suite.Require().NoError(json.Unmarshal(doc.Body, &r))
	suite.Equal(1, r.Summary.TotalGoals)

	doc, err = suite.reports.Generate(ReportInput{UserID: user.ID, Period: "all", Format: "csv"})
	suite.Require().NoError(err)
	suite.Contains(string(doc.Body), "Total Goals,2")

	_, err = suite.reports.Generate(ReportInput{UserID: user.ID, Period: "decade"})
	suite.ErrorIs(err, ErrInvalidPeriod)
	_, err = suite.reports.Generate(ReportInput{UserID: user.ID, Format: "pdf"})
	suite.ErrorIs(err, ErrInvalidFormat)
}

func (suite *ServicesTestSuite) TestExport() {
	user := suite.createUser("ada@example.com")

	_, err := suite.reports.Export(ExportInput{UserID: user.ID, Format: "csv"})
	suite.ErrorIs(err, ErrCSVNeedsSingleType)
	_, err = suite.reports.Export(ExportInput{UserID: user.ID, Type: "goals", Format: "csv"})
	suite.ErrorIs(err, ErrNothingToExport)

	suite.createGoal(user.ID, "Learn Go", "Tour")
	doc, err := suite.reports.Export(ExportInput{UserID: user.ID, Type: "goals", Format: "csv"})
	suite.Require().NoError(err)
	suite.Contains(string(doc.Body), "Learn Go")
	suite.True(strings.HasPrefix(doc.FileName, "learnflow-goals-"))

	doc, err = suite.reports.Export(ExportInput{UserID: user.ID})
	suite.Require().NoError(err)
	var export report.Export
	suite.Require().NoError(json.Unmarshal(doc.Body, &export))
	suite.Len(export.Goals, 1)
	suite.Len(export.Progress, 1)
	suite.True(strings.HasPrefix(doc.FileName, "learnflow-complete-data-"))
}

func (suite *ServicesTestSuite) TestOverviewAndStats() {
	user := suite.createUser("ada@example.com")
	goal := suite.createGoal(user.ID, "Learn Go", "Tour")
	_, err := suite.goals.LogStudySession(user.ID, goal.ID, 90, "")
	suite.Require().NoError(err)

	overview, err := suite.analytics.Overview(user.ID)
	suite.Require().NoError(err)
	suite.Equal(1, overview.GoalsByCategory["general"])
	suite.Len(overview.DailyStudy, 30)
	suite.Equal(90, overview.DailyStudy[29].Minutes)
	suite.Equal(100, overview.GoalTrend)

	stats, err := suite.analytics.UserStats(user.ID)
	suite.Require().NoError(err)
	suite.Equal(1, stats.TotalGoals)
	suite.Equal(1.5, stats.StudyHours)
	suite.Equal(1, stats.CurrentStreak)

	_, err = suite.analytics.Summary(9999)
	suite.ErrorIs(err, ErrAccountNotFound)
}

func (suite *ServicesTestSuite) TestSuggestMilestonesWithoutAI() {
	_, err := suite.goals.SuggestMilestones(context.Background(), "Learn Go", "")
	suite.ErrorIs(err, ErrAINotConfigured)
	suite.True(apierrors.IsKind(err, apierrors.KindUnavailable))
}

func TestServicesTestSuite(t *testing.T) {
	suite.Run(t, new(ServicesTestSuite))
}
