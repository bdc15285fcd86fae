// Package nlp derives genres, themes, writing styles and tone from free text
// using fixed keyword tables plus light statistical signals.
package nlp

import (
	"github.com/rs/zerolog"
)

// Engine bundles the taxonomy with the matchers and classifiers built from it.
type Engine struct {
	taxonomy  *Taxonomy
	themes    *PhraseMatcher
	styles    *PhraseMatcher
	sentiment SentimentClassifier
	entities  EntityRecognizer
	logger    zerolog.Logger
}

type Option func(*Engine)

func WithSentimentClassifier(c SentimentClassifier) Option {
	return func(e *Engine) { e.sentiment = c }
}

func WithEntityRecognizer(r EntityRecognizer) Option {
	return func(e *Engine) { e.entities = r }
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine builds an Engine over tax. Without options it uses the pretrained
// sentiment model, restored on first use, and the prose entity recognizer.
func NewEngine(tax *Taxonomy, opts ...Option) *Engine {
	e := &Engine{
		taxonomy:  tax,
		themes:    NewPhraseMatcher(tax.Themes),
		styles:    NewPhraseMatcher(tax.WritingStyles),
		sentiment: &ModelClassifier{},
		entities:  NewProseRecognizer(),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *Engine) Taxonomy() *Taxonomy {
	return e.taxonomy
}
