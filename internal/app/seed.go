package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/learnflow-api/internal/logger"
	"github.com/yukikurage/learnflow-api/internal/models"
	"github.com/yukikurage/learnflow-api/internal/services"
)

// Demo account created by Seed.
const (
	DemoEmail    = "alex@example.com"
	DemoPassword = "Password123!"
)

type seedGoal struct {
	title       string
	description string
	category    string
	priority    models.Priority
	days        int
	milestones  []string
	completed   int
	done        bool
}

var seedGoals = []seedGoal{
	{
		title:       "Master React.js",
		description: "Learn React.js fundamentals including hooks, context, and state management. Build at least 3 projects to practice.",
		category:    "programming",
		priority:    models.PriorityHigh,
		days:        60,
		milestones: []string{
			"Complete React fundamentals course",
			"Build a todo app",
			"Learn React hooks",
			"Build a portfolio website",
			"Learn state management (Redux/Context)",
		},
		completed: 3,
	},
	{
		title:       "Learn UI/UX Design",
		description: "Understand design principles, user research, and prototyping tools like Figma.",
		category:    "design",
		priority:    models.PriorityMedium,
		days:        90,
		milestones: []string{
			"Complete design fundamentals course",
			"Learn Figma basics",
			"Design 5 mobile app screens",
			"Create a design system",
		},
		completed: 2,
	},
	{
		title:       "Learn Spanish",
		description: "Achieve conversational level in Spanish through daily practice and lessons.",
		category:    "languages",
		priority:    models.PriorityMedium,
		days:        180,
		milestones: []string{
			"Learn basic vocabulary (500 words)",
			"Master present tense conjugations",
			"Have first conversation with native speaker",
			"Watch Spanish movie without subtitles",
		},
		completed: 1,
	},
	{
		title:       "Complete Machine Learning Course",
		description: "Finish Stanford's Machine Learning course and implement 3 ML projects.",
		category:    "science",
		priority:    models.PriorityHigh,
		days:        -10,
		milestones: []string{
			"Complete all course lectures",
			"Implement linear regression",
			"Build a neural network from scratch",
			"Create a recommendation system",
		},
		completed: 4,
		done:      true,
	},
}

type seedResource struct {
	goal     int
	title    string
	desc     string
	category string
	tags     []string
	rating   int
	content  models.ResourceContent
}

var seedResources = []seedResource{
	{0, "React Official Documentation", "Comprehensive guide to React concepts and API reference.", "article",
		[]string{"react", "javascript", "frontend", "documentation"}, 5, models.LinkContent{URL: "https://react.dev"}},
	{0, "React Hooks Tutorial", "Complete tutorial on using React hooks effectively.", "video",
		[]string{"react", "hooks", "tutorial", "youtube"}, 4, models.LinkContent{URL: "https://www.youtube.com/results?search_query=react+hooks"}},
	{1, "Design Systems Notes", "Personal notes on creating and maintaining design systems.", "note",
		[]string{"design-system", "ui", "notes", "figma"}, 0, models.NoteContent{Text: "# Design Systems Notes\n\n" +
			"## Key Principles\n1. Consistency\n2. Scalability\n3. Accessibility\n4. Documentation\n\n" +
			"## Tools\n- Figma for design\n- Storybook for documentation\n- Design tokens for consistency\n"}},
	{1, "The Design of Everyday Things", "Classic book on design principles and user psychology.", "book",
		[]string{"design", "ux", "psychology", "book"}, 5, models.NoteContent{Text: "Don Norman. Read chapters 1-3 first."}},
	{2, "SpanishDict", "Comprehensive Spanish learning platform with exercises.", "tool",
		[]string{"spanish", "language", "dictionary", "exercises"}, 4, models.LinkContent{URL: "https://www.spanishdict.com"}},
}

// Seed creates the demo account with sample goals, resources and study
// sessions. It reports false without changes when the account exists.
func Seed(s *Services) (bool, error) {
	result, err := s.Auth.Register(services.RegisterInput{
		Name:            "Alex Johnson",
		Email:           DemoEmail,
		Password:        DemoPassword,
		ConfirmPassword: DemoPassword,
		UserAgent:       "learnctl",
	})
	if errors.Is(err, services.ErrEmailTaken) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create demo user: %w", err)
	}
	userID := result.User.ID

	bio := "Passionate learner exploring technology and design."
	if _, err := s.Auth.UpdateProfile(userID, services.UpdateProfileInput{Bio: &bio}); err != nil {
		return false, err
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	goalIDs := make([]uint64, len(seedGoals))
	for i, sg := range seedGoals {
		target := today.AddDate(0, 0, sg.days)
		goal, err := s.Goals.CreateGoal(services.CreateGoalInput{
			UserID:      userID,
			Title:       sg.title,
			Description: sg.description,
			Category:    sg.category,
			Priority:    sg.priority,
			TargetDate:  &target,
			Milestones:  sg.milestones,
		})
		if err != nil {
			return false, fmt.Errorf("failed to seed goal %q: %w", sg.title, err)
		}
		goalIDs[i] = goal.ID

		done := true
		for _, m := range goal.Milestones[:sg.completed] {
			if _, err := s.Goals.UpdateMilestone(userID, goal.ID, m.ID, services.UpdateMilestoneInput{IsCompleted: &done}); err != nil {
				return false, err
			}
		}
		if sg.done {
			if _, err := s.Goals.UpdateGoal(userID, goal.ID, services.UpdateGoalInput{IsCompleted: &done}); err != nil {
				return false, err
			}
		}
	}

	for _, sr := range seedResources {
		goalID := goalIDs[sr.goal]
		if _, err := s.Resources.CreateResource(services.CreateResourceInput{
			UserID:      userID,
			GoalID:      &goalID,
			Title:       sr.title,
			Description: sr.desc,
			Category:    sr.category,
			Tags:        sr.tags,
			Rating:      sr.rating,
			Content:     sr.content,
		}); err != nil {
			return false, fmt.Errorf("failed to seed resource %q: %w", sr.title, err)
		}
	}

	for i, minutes := range []int{90, 45, 30} {
		if _, err := s.Goals.LogStudySession(userID, goalIDs[i], minutes, ""); err != nil {
			return false, err
		}
	}

	logger.Info("seeded demo account", "email", DemoEmail, "goals", len(seedGoals), "resources", len(seedResources))
	return true, nil
}
