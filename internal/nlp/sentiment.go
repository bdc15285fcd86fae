package nlp

import (
	"strings"
	"sync"

	"github.com/abadojack/whatlanggo"
	"github.com/cdipaolo/sentiment"
)

// Sentiment labels a classifier may return. Any other value, including the
// empty string, counts as no opinion.
const (
	LabelPositive = "POSITIVE"
	LabelNegative = "NEGATIVE"
)

// SentimentClassifier labels a short block of text.
type SentimentClassifier interface {
	Classify(text string) string
}

// ModelClassifier labels English text with the pretrained naive Bayes
// sentiment model. It stays silent on empty text and on text reliably
// detected as another language. The model is restored once; calls are
// serialized because its text sanitizer is stateful.
type ModelClassifier struct {
	once  sync.Once
	mu    sync.Mutex
	model sentiment.Models
	err   error
}

// NewModelClassifier restores the model eagerly so a broken model surfaces
// at startup rather than on the first classification.
func NewModelClassifier() (*ModelClassifier, error) {
	c := &ModelClassifier{}
	return c, c.load()
}

func (c *ModelClassifier) load() error {
	c.once.Do(func() {
		c.model, c.err = sentiment.Restore()
	})
	return c.err
}

func (c *ModelClassifier) Classify(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if info := whatlanggo.Detect(text); info.IsReliable() && info.Lang != whatlanggo.Eng {
		return ""
	}
	if c.load() != nil {
		return ""
	}

	c.mu.Lock()
	analysis := c.model.SentimentAnalysis(text, sentiment.English)
	c.mu.Unlock()

	if analysis.Score == 1 {
		return LabelPositive
	}
	return LabelNegative
}
