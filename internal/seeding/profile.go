package seeding

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/angelmondragon/activity-seeder/internal/reviews"
	"github.com/angelmondragon/activity-seeder/internal/sampling"
	"github.com/angelmondragon/activity-seeder/pkg/enums"
	pkgerrors "github.com/angelmondragon/activity-seeder/pkg/errors"
)

// Profile holds the weight tables and review templates of a run.
type Profile struct {
	StatusWeights []sampling.Weighted[enums.OrderStatus] `yaml:"status_weights"`
	RatingWeights []sampling.Weighted[int]               `yaml:"rating_weights"`
	Templates     map[enums.Sentiment]reviews.Templates  `yaml:"templates"`
}

// DefaultProfile is the dessert-shop profile the seeder ships with.
func DefaultProfile() Profile {
	return Profile{
		StatusWeights: []sampling.Weighted[enums.OrderStatus]{
			{Value: enums.OrderStatusInKitchen, Weight: 0.05},
			{Value: enums.OrderStatusOnTheWay, Weight: 0.10},
			{Value: enums.OrderStatusReceived, Weight: 0.85},
		},
		RatingWeights: []sampling.Weighted[int]{
			{Value: 5, Weight: 50},
			{Value: 4, Weight: 25},
			{Value: 3, Weight: 10},
			{Value: 2, Weight: 10},
			{Value: 1, Weight: 5},
		},
		Templates: map[enums.Sentiment]reviews.Templates{
			enums.SentimentPositive: {
				Titles: []string{
					"Excellent experience",
					"Highly recommended",
					"Everything was delicious",
					"Beyond my expectations",
					"I will be back for sure",
					"Best dessert I have ever had",
					"Amazing flavor",
					"Perfect for sharing",
					"Exceptional quality",
					"My favorite place",
				},
				Bodies: []string{
					"Everything was delicious, the flavor is amazing and the presentation spotless.",
					"Loved how fresh the ingredients were, you can tell the quality.",
					"The order arrived in perfect shape and tasted spectacular.",
					"I always order here and they have never let me down.",
					"The desserts have a homemade taste that reminds me of my grandmother's kitchen.",
					"Great value for money, generous portions and a unique flavor.",
					"Texture and balance of flavors are spot on.",
					"Ordered for a family gathering and everyone loved it.",
					"Easily the best cheesecake I have tried in the city.",
					"Friendly service and the order arrived earlier than expected.",
				},
			},
			enums.SentimentNeutral: {
				Titles: []string{
					"It was fine",
					"Met expectations",
					"Ordinary, nothing special",
					"Acceptable",
					"Average",
				},
				Bodies: []string{
					"The product was fine but nothing out of the ordinary.",
					"It delivered what I expected, no more and no less.",
					"Acceptable overall, although the packaging could be better.",
					"Decent flavor but I have had better elsewhere.",
					"Fine for the price, not sure I would order again.",
				},
			},
			enums.SentimentNegative: {
				Titles: []string{
					"Did not like it much",
					"Could be better",
					"Expected more",
					"Disappointing",
					"Would not recommend",
				},
				Bodies: []string{
					"The dessert arrived a bit dry and did not taste as expected.",
					"The portion was very small for the price.",
					"The flavor did not convince me, it needed more sweetness.",
					"The order took too long and arrived lukewarm.",
					"It looked nothing like the product photo.",
				},
			},
		},
	}
}

// LoadProfile reads a YAML profile from path. Sections missing from the file
// keep their default values; an empty path returns the defaults.
func LoadProfile(path string) (Profile, error) {
	profile := DefaultProfile()
	if path == "" {
		return profile, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, pkgerrors.Wrap(pkgerrors.CodeConfig, err, "reading generation profile").
			WithDetails(map[string]any{"path": path})
	}

	var override Profile
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return Profile{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decoding generation profile").
			WithDetails(map[string]any{"path": path})
	}
	if len(override.StatusWeights) > 0 {
		profile.StatusWeights = override.StatusWeights
	}
	if len(override.RatingWeights) > 0 {
		profile.RatingWeights = override.RatingWeights
	}
	for sentiment, tpl := range override.Templates {
		profile.Templates[sentiment] = tpl
	}
	if err := profile.Validate(); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// Validate checks values the generators cannot check on their own.
func (p Profile) Validate() error {
	for _, w := range p.StatusWeights {
		if !w.Value.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order status %q in profile", w.Value))
		}
	}
	for sentiment := range p.Templates {
		known := false
		for _, s := range enums.Sentiments {
			known = known || s == sentiment
		}
		if !known {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown sentiment %q in profile", sentiment))
		}
	}
	return nil
}
