// Package food looks up nutrition data for free-text queries through the
// chat model.
package food

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/z-diet/backend/internal/model/meal"
	"github.com/zhouzirui/z-diet/backend/internal/service/ai"
	"github.com/zhouzirui/z-diet/backend/pkg/logger"
)

var (
	ErrLookupFailed = errors.New("failed to get nutrition data")
	ErrParseFailed  = errors.New("failed to parse nutrition data")
)

// Settings tunes the lookup request.
type Settings struct {
	Temperature float32
	MaxTokens   int
}

// Service runs the lookup prompt against a chat model.
type Service struct {
	chain    compose.Runnable[map[string]any, *schema.Message]
	settings Settings
	log      *logrus.Entry
}

// NewService compiles the lookup chain around chatModel.
func NewService(ctx context.Context, chatModel model.BaseChatModel, settings Settings) (*Service, error) {
	template := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage(ai.FoodSearchUserTemplate),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(template)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile food lookup chain: %w", err)
	}

	return &Service{
		chain:    runnable,
		settings: settings,
		log:      logger.Component("food"),
	}, nil
}

// Search asks the model for foods matching query.
func (s *Service) Search(ctx context.Context, query string) ([]meal.FoodItem, error) {
	opts := []model.Option{}
	if s.settings.Temperature > 0 {
		opts = append(opts, model.WithTemperature(s.settings.Temperature))
	}
	if s.settings.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(s.settings.MaxTokens))
	}

	resp, err := s.chain.Invoke(ctx, map[string]any{
		"system": ai.FoodSearchSystemPrompt,
		"query":  query,
	}, compose.WithChatModelOption(opts...))
	if err != nil {
		s.log.WithError(err).Error("nutrition lookup failed")
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}

	content := "[]"
	if resp != nil && strings.TrimSpace(resp.Content) != "" {
		content = resp.Content
	}

	foods, err := ParseFoods(content)
	if err != nil {
		s.log.WithField("content", content).Error("failed to parse AI response")
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"query": query,
		"foods": len(foods),
	}).Info("nutrition lookup completed")
	return foods, nil
}

// ParseFoods extracts a food array from model output that may be wrapped in
// prose or code fences. The span from the first '[' to the last ']' is
// tried first, then the whole content.
func ParseFoods(content string) ([]meal.FoodItem, error) {
	if start, end := strings.Index(content, "["), strings.LastIndex(content, "]"); start >= 0 && end > start {
		var foods []meal.FoodItem
		if err := json.Unmarshal([]byte(content[start:end+1]), &foods); err == nil {
			return nonNil(foods), nil
		}
	}

	var foods []meal.FoodItem
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &foods); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	return nonNil(foods), nil
}

func nonNil(foods []meal.FoodItem) []meal.FoodItem {
	if foods == nil {
		return []meal.FoodItem{}
	}
	return foods
}
