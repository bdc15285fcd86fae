package nlp

import (
	"sync"

	"github.com/jdkato/prose/v2"
)

// EntityRecognizer returns the surface text of named entities found in text.
type EntityRecognizer interface {
	Entities(text string) []string
}

// ProseRecognizer runs the prose named-entity model. The model is loaded by
// the first call and reused afterwards; calls are serialized.
type ProseRecognizer struct {
	mu    sync.Mutex
	model *prose.Model
}

func NewProseRecognizer() *ProseRecognizer {
	return &ProseRecognizer{}
}

func (r *ProseRecognizer) Entities(text string) []string {
	if text == "" {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	opts := []prose.DocOpt{prose.WithSegmentation(false)}
	if r.model != nil {
		opts = append(opts, prose.UsingModel(r.model))
	}
	doc, err := prose.NewDocument(text, opts...)
	if err != nil {
		return nil
	}
	if r.model == nil {
		r.model = doc.Model
	}

	ents := doc.Entities()
	out := make([]string, 0, len(ents))
	for _, ent := range ents {
		out = append(out, ent.Text)
	}
	return out
}
