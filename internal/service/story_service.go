package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storysmith/internal/cache"
	"storysmith/internal/credits"
	"storysmith/internal/errors"
	"storysmith/internal/gemini"
	"storysmith/internal/model"
	"storysmith/internal/repository"
)

// Genres is the fixed set of selectable genre labels.
var Genres = []string{"Any", "Fantasy", "Sci-Fi", "Adventure", "Mystery", "Horror", "Romance"}

// Preset is a one-click prompt suggestion.
type Preset struct {
	Title  string `json:"title"`
	Prompt string `json:"prompt"`
}

// Presets are the quick-story prompts offered on the dashboard.
var Presets = []Preset{
	{Title: "Robot Adventure", Prompt: "a robot exploring alien planets"},
	{Title: "Magic School", Prompt: "a young wizard at magic school"},
	{Title: "Time Travel", Prompt: "scientist invents time machine"},
}

const storyPromptTemplate = `Write a complete short story (about %d words) about: "%s"

Genre: %s
Creativity: %.1f

Requirements:
- Engaging hook in first paragraph
- Clear beginning, middle, climax, resolution
- Vivid descriptions and interesting characters
- Fun and immersive tone

Format: Clean prose only.
`

// GenerateResult is the outcome of a successful story generation.
type GenerateResult struct {
	Story     model.Story `json:"story"`
	Cost      int         `json:"cost"`
	Remaining int         `json:"remaining_credits"`
}

// Export is a downloadable plain-text rendering of a story.
type Export struct {
	Filename string
	Content  string
}

// StoryService brokers story generation and history access.
type StoryService interface {
	Generate(ctx context.Context, email, prompt, genre string, length int, creativity float64) (*GenerateResult, error)
	ListStories(ctx context.Context, email string) (model.StoryList, error)
	ExportStory(ctx context.Context, email string, storyID uuid.UUID) (*Export, error)
}

type storyService struct {
	repo      repository.UserRepository
	generator gemini.Generator
	cache     *cache.Client
	now       func() time.Time
}

// NewStoryService creates a story service backed by the given generator.
func NewStoryService(repo repository.UserRepository, generator gemini.Generator, cache *cache.Client) StoryService {
	return &storyService{
		repo:      repo,
		generator: generator,
		cache:     cache,
		now:       time.Now,
	}
}

// Generate runs one story generation: refill, quote, sufficiency check,
// backend call with model fallback, then spend and history append. On
// any backend failure nothing is deducted and no story is appended; the
// refill alone is still persisted.
func (s *storyService) Generate(ctx context.Context, email, prompt, genre string, length int, creativity float64) (*GenerateResult, error) {
	user, err := s.findUser(ctx, email)
	if err != nil {
		return nil, err
	}

	balance, refilledAt, refilled := credits.Regenerate(user.Credits, user.LastRefill, s.now())
	if refilled {
		user.Credits = balance
		user.LastRefill = refilledAt
	}

	cost := credits.Quote(length)
	if user.Credits <= 0 || user.Credits < cost {
		if refilled {
			if err := s.repo.SaveProgress(ctx, user); err != nil {
				return nil, fmt.Errorf("persist refill: %w", err)
			}
			_ = s.cache.Delete(ctx, s.profileKey(email))
		}
		return nil, errors.ErrInsufficientCredits
	}

	storyPrompt := fmt.Sprintf(storyPromptTemplate, length, prompt, genre, creativity)
	text, servedBy, err := s.generator.Generate(ctx, storyPrompt, creativity)
	if err != nil {
		if refilled {
			if saveErr := s.repo.SaveProgress(ctx, user); saveErr != nil {
				return nil, fmt.Errorf("persist refill: %w", saveErr)
			}
			_ = s.cache.Delete(ctx, s.profileKey(email))
		}
		return nil, err
	}

	story := model.Story{
		ID:        uuid.New(),
		Prompt:    prompt,
		Text:      text,
		Model:     servedBy,
		Genre:     genre,
		Length:    length,
		CreatedAt: s.now(),
	}

	user.Credits = credits.Spend(user.Credits, cost)
	user.Stories = append(user.Stories, story)

	if err := s.repo.SaveProgress(ctx, user); err != nil {
		return nil, fmt.Errorf("persist story: %w", err)
	}
	_ = s.cache.Delete(ctx, s.profileKey(email))

	return &GenerateResult{
		Story:     story,
		Cost:      cost,
		Remaining: user.Credits,
	}, nil
}

// ListStories returns the user's story history in insertion order.
func (s *storyService) ListStories(ctx context.Context, email string) (model.StoryList, error) {
	user, err := s.findUser(ctx, email)
	if err != nil {
		return nil, err
	}
	return user.Stories, nil
}

// ExportStory renders one story as a plain-text download named
// {username}_story_{unix-timestamp}.txt.
func (s *storyService) ExportStory(ctx context.Context, email string, storyID uuid.UUID) (*Export, error) {
	user, err := s.findUser(ctx, email)
	if err != nil {
		return nil, err
	}

	for _, story := range user.Stories {
		if story.ID == storyID {
			return &Export{
				Filename: fmt.Sprintf("%s_story_%d.txt", user.Username, story.CreatedAt.Unix()),
				Content:  story.Text,
			}, nil
		}
	}
	return nil, errors.ErrStoryNotFound
}

func (s *storyService) findUser(ctx context.Context, email string) (*model.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *storyService) profileKey(email string) string {
	return fmt.Sprintf("profile:%s", email)
}
