package enums

// Sentiment buckets review ratings for template selection.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Sentiments lists every bucket in a stable order.
var Sentiments = []Sentiment{
	SentimentPositive,
	SentimentNeutral,
	SentimentNegative,
}

// String implements fmt.Stringer.
func (s Sentiment) String() string {
	return string(s)
}

// SentimentForRating maps 4-5 to positive, 3 to neutral and anything lower to negative.
func SentimentForRating(rating int) Sentiment {
	switch {
	case rating >= 4:
		return SentimentPositive
	case rating == 3:
		return SentimentNeutral
	default:
		return SentimentNegative
	}
}
