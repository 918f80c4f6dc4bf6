package service

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/atinyakov/ContentAI/internal/models"
)

const (
	defaultIdeaCount = 5
	maxIdeaCount     = 10
)

// GenerateInput describes the content the user wants ideas for.
type GenerateInput struct {
	Niche    string
	Audience string
	Platform string
	Style    string
	Count    int
}

var ideaFormats = []struct{ title, description string }{
	{"%s myths that %s still believe", "Debunk the most common misconceptions about %s in a short series."},
	{"A day in the life: %s edition", "Show the routine behind %s and invite followers to share theirs."},
	{"Beginner mistakes in %s", "List three mistakes newcomers make in %s and how to avoid them."},
	{"%s before and after", "Compare a starting point and the result to show progress in %s."},
	{"Quick wins for %s", "Share one tip about %s that takes under five minutes to apply."},
	{"Tools I use for %s", "Walk through the tools and resources that make %s easier."},
	{"Ask me anything about %s", "Collect questions about %s and answer the best ones."},
	{"The future of %s", "Give three predictions for where %s is heading next year."},
	{"%s on a budget", "Explain how to get started with %s without spending much."},
	{"Behind the scenes of %s", "Show the unpolished process behind your %s content."},
}

var trendFormats = []string{
	"Short-form %s tutorials",
	"%s challenges with user duets",
	"Myth-busting %s carousels",
	"Live Q&A sessions on %s",
	"%s transformations and progress diaries",
}

// ContentService produces content ideas and trends. Output is deterministic
// for a given input and day.
type ContentService struct {
	now func() time.Time
}

func NewContentService() *ContentService {
	return &ContentService{now: time.Now}
}

// Generate returns in.Count ideas (defaultIdeaCount when zero).
func (s *ContentService) Generate(in GenerateInput) ([]models.Idea, error) {
	niche := strings.TrimSpace(in.Niche)
	if niche == "" {
		return nil, invalid("niche", "niche is required")
	}
	count := in.Count
	if count == 0 {
		count = defaultIdeaCount
	}
	if count < 0 || count > maxIdeaCount {
		return nil, invalid("idea_count", fmt.Sprintf("must be between 1 and %d", maxIdeaCount))
	}
	audience := strings.TrimSpace(in.Audience)
	if audience == "" {
		audience = "most people"
	}

	tags := hashtags(niche, in.Platform)
	offset := s.seed(niche, in.Audience, in.Platform, in.Style)
	ideas := make([]models.Idea, 0, count)
	for i := 0; i < count; i++ {
		f := ideaFormats[(offset+i)%len(ideaFormats)]
		args := []any{niche}
		if strings.Count(f.title, "%s") == 2 {
			args = append(args, audience)
		}
		title := fmt.Sprintf(f.title, args...)
		desc := fmt.Sprintf(f.description, niche)
		if in.Style != "" {
			desc += " Keep the tone " + strings.TrimSpace(in.Style) + "."
		}
		ideas = append(ideas, models.Idea{Title: title, Description: desc, Hashtags: tags})
	}
	return ideas, nil
}

// Trends returns popular hashtags and topics for niche. The user must be
// entitled to paid features.
func (s *ContentService) Trends(user models.User, niche string) (tags, trends []string, err error) {
	if !user.Entitled(s.now()) {
		return nil, nil, ErrPremiumRequired
	}
	niche = strings.TrimSpace(niche)
	if niche == "" {
		return nil, nil, invalid("niche", "niche is required")
	}
	offset := s.seed(niche)
	for i := 0; i < 3; i++ {
		trends = append(trends, fmt.Sprintf(trendFormats[(offset+i)%len(trendFormats)], niche))
	}
	return hashtags(niche, ""), trends, nil
}

// seed mixes the inputs with the current day so results rotate daily.
func (s *ContentService) seed(parts ...string) int {
	h := fnv.New32a()
	h.Write([]byte(s.now().UTC().Format(time.DateOnly)))
	for _, p := range parts {
		h.Write([]byte{0})
		h.Write([]byte(strings.ToLower(p)))
	}
	return int(h.Sum32() % uint32(len(ideaFormats)))
}

func hashtags(niche, platform string) []string {
	tag := "#" + strings.ToLower(strings.Join(strings.Fields(niche), ""))
	out := []string{tag, tag + "tips", tag + "community"}
	if p := strings.ToLower(strings.TrimSpace(platform)); p != "" {
		out = append(out, "#"+strings.Join(strings.Fields(p), "")+"creator")
	}
	return out
}
